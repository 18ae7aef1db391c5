package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/talkroom/chat-room-service/internal/domain"
	"github.com/talkroom/chat-room-service/pkg/log"
)

// GormRoomRepository implements RoomRepository using GORM.
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a new GORM-based room repository.
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	return &GormRoomRepository{db: db}
}

// Create creates a new room and fills in the assigned id.
func (r *GormRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	l := log.Ctx(ctx)

	model := domain.RoomToModel(room)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		l.Error().Err(err).Msg("failed to create room in db")
		return err
	}

	room.ID = model.ID
	room.CreatedAt = model.CreatedAt
	l.Debug().Uint(log.FieldRoomID, room.ID).Msg("room created in db")
	return nil
}

// GetByID retrieves a room by id with its chat history.
func (r *GormRoomRepository) GetByID(ctx context.Context, id uint) (*domain.Room, error) {
	l := log.Ctx(ctx)

	var model domain.RoomModel
	err := r.db.WithContext(ctx).
		Preload("Chats", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		l.Error().Err(err).Uint(log.FieldRoomID, id).Msg("failed to get room by id")
		return nil, err
	}
	return model.ToDomain(), nil
}

// Exists reports whether a room with the given id exists.
func (r *GormRoomRepository) Exists(ctx context.Context, id uint) (bool, error) {
	l := log.Ctx(ctx)

	var count int64
	err := r.db.WithContext(ctx).Model(&domain.RoomModel{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		l.Error().Err(err).Uint(log.FieldRoomID, id).Msg("failed to check room existence")
		return false, err
	}
	return count > 0, nil
}

// likeEscaper neutralises LIKE wildcards in a pattern fragment. The
// escape character is '!' because a backslash inside a string literal
// is itself an escape on MySQL but not on PostgreSQL or SQLite.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// FindByMember retrieves every room whose member list contains the
// nickname, chats preloaded oldest-first. The users column holds a JSON
// array, so a LIKE on the JSON-encoded nickname (quotes included, with
// the same escaping Value writes) prefilters candidates in SQL and the
// exact membership check happens on the decoded list.
func (r *GormRoomRepository) FindByMember(ctx context.Context, nickname string) ([]domain.Room, error) {
	l := log.Ctx(ctx)

	token, err := json.Marshal(nickname)
	if err != nil {
		return nil, err
	}
	pattern := "%" + likeEscaper.Replace(string(token)) + "%"

	var models []domain.RoomModel
	err = r.db.WithContext(ctx).
		Where("users LIKE ? ESCAPE '!'", pattern).
		Preload("Chats", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		l.Error().Err(err).Str(log.FieldNickname, nickname).Msg("failed to find rooms by member")
		return nil, err
	}

	rooms := make([]domain.Room, 0, len(models))
	for i := range models {
		room := models[i].ToDomain()
		if room.HasMember(nickname) {
			rooms = append(rooms, *room)
		}
	}

	return rooms, nil
}
