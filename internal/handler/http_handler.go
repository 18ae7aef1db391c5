package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/talkroom/chat-room-service/internal/audit"
	"github.com/talkroom/chat-room-service/internal/domain"
	"github.com/talkroom/chat-room-service/internal/service"
	"github.com/talkroom/chat-room-service/pkg/log"
	"github.com/talkroom/chat-room-service/pkg/middleware"
	"github.com/talkroom/chat-room-service/pkg/response"
	"github.com/talkroom/chat-room-service/pkg/session"
)

// Handler handles HTTP requests for the chat room service.
type Handler struct {
	chatService service.ChatService
	sessions    *session.Manager
	auth        *middleware.SessionAuth
}

// NewHandler creates a new HTTP handler.
func NewHandler(chatService service.ChatService, sessions *session.Manager, auth *middleware.SessionAuth) *Handler {
	return &Handler{
		chatService: chatService,
		sessions:    sessions,
		auth:        auth,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/login", h.Login)

	r.GET("/chat", h.GetChatList)
	r.POST("/chat", h.auth.RequireSession(), h.SaveChat)

	r.POST("/room", h.CreateRoom)
	r.GET("/room", h.auth.RequireSession(), h.GetRoomList)
}

// Login opens a session for a nickname and returns the session token.
func (h *Handler) Login(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "nickname is required")
		return
	}

	token, err := h.sessions.Issue(req.Nickname)
	if err != nil {
		l.Error().Err(err).Msg("failed to issue session")
		response.InternalError(c, "failed to log in")
		return
	}

	maxAge := int(h.sessions.TTL().Seconds())
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", false, true)

	audit.Log(ctx, audit.ActionLogin, req.Nickname, "user logged in")
	response.Success(c, domain.SessionInfo{
		Nickname: req.Nickname,
		Token:    token,
	})
}

// GetChatList lists a room's chats, optionally bounded by an inclusive
// created-at range.
func (h *Handler) GetChatList(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	roomIDStr := c.Query("roomId")
	if roomIDStr == "" {
		response.BadRequest(c, "roomId is required")
		return
	}
	roomID, err := strconv.ParseUint(roomIDStr, 10, 64)
	if err != nil {
		response.BadRequest(c, "roomId must be an integer")
		return
	}

	filter := domain.ChatFilter{RoomID: uint(roomID)}
	if fromStr := c.Query("from"); fromStr != "" {
		from, err := domain.ParseLocalTime(fromStr)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		filter.From = &from.Time
	}
	if toStr := c.Query("to"); toStr != "" {
		to, err := domain.ParseLocalTime(toStr)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		filter.To = &to.Time
	}

	chats, err := h.chatService.FindChatList(ctx, filter)
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			response.NotFound(c, "room not found")
			return
		}
		l.Error().Err(err).Uint(log.FieldRoomID, filter.RoomID).Msg("failed to list chats")
		response.InternalError(c, "failed to list chats")
		return
	}

	response.Success(c, chats)
}

// SaveChat stores a message authored by the session user.
func (h *Handler) SaveChat(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.SaveChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sender := middleware.Nickname(c)
	chat, err := h.chatService.SaveChat(ctx, sender, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			response.NotFound(c, "room not found")
		case errors.Is(err, service.ErrInvalidChat):
			response.BadRequest(c, err.Error())
		case errors.Is(err, service.ErrNotRoomMember):
			response.Forbidden(c, err.Error())
		default:
			l.Error().Err(err).Uint(log.FieldRoomID, req.RoomID).Msg("failed to save chat")
			response.InternalError(c, "failed to save chat")
		}
		return
	}

	response.Success(c, chat)
}

// CreateRoom creates a new room.
func (h *Handler) CreateRoom(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind create room request")
		response.BadRequest(c, "title and at least one user are required")
		return
	}

	room, err := h.chatService.CreateRoom(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRoom) {
			response.BadRequest(c, err.Error())
			return
		}
		l.Error().Err(err).Msg("failed to create room")
		response.InternalError(c, "failed to create room")
		return
	}

	response.Success(c, room)
}

// GetRoomList lists the rooms the session user belongs to.
func (h *Handler) GetRoomList(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	nickname := middleware.Nickname(c)
	rooms, err := h.chatService.FindRoomList(ctx, nickname)
	if err != nil {
		l.Error().Err(err).Str(log.FieldNickname, nickname).Msg("failed to list rooms")
		response.InternalError(c, "failed to list rooms")
		return
	}

	response.Success(c, rooms)
}
