package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/talkroom/chat-room-service/pkg/response"
	"github.com/talkroom/chat-room-service/pkg/session"
)

const (
	NicknameKey   = "nickname"
	SessionCookie = "session"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// SessionAuth resolves the caller's nickname from a session token.
type SessionAuth struct {
	sessions *session.Manager
}

// NewSessionAuth creates a session auth middleware.
func NewSessionAuth(sessions *session.Manager) *SessionAuth {
	return &SessionAuth{sessions: sessions}
}

// RequireSession returns a Gin middleware that rejects requests without
// a valid session. The token is read from the Authorization bearer
// header first, then from the session cookie.
func (a *SessionAuth) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			token, _ = c.Cookie(SessionCookie)
		}
		if token == "" {
			response.Unauthorized(c, "login required")
			return
		}

		claims, err := a.sessions.Verify(token)
		if err != nil {
			response.Unauthorized(c, err.Error())
			return
		}

		c.Set(NicknameKey, claims.Nickname)
		c.Next()
	}
}

// Nickname extracts the session nickname from the Gin context. Empty
// when the request did not pass RequireSession.
func Nickname(c *gin.Context) string {
	if v, exists := c.Get(NicknameKey); exists {
		return v.(string)
	}
	return ""
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader(AuthHeaderKey)
	if !strings.HasPrefix(header, BearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(header, BearerPrefix)
}
