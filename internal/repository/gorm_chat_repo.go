package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/talkroom/chat-room-service/internal/domain"
	"github.com/talkroom/chat-room-service/pkg/log"
)

// GormChatRepository implements ChatRepository using GORM.
type GormChatRepository struct {
	db *gorm.DB
}

// NewGormChatRepository creates a new GORM-based chat repository.
func NewGormChatRepository(db *gorm.DB) *GormChatRepository {
	return &GormChatRepository{db: db}
}

// Create persists a new chat and fills in the assigned id.
func (r *GormChatRepository) Create(ctx context.Context, chat *domain.Chat) error {
	l := log.Ctx(ctx)

	model := domain.ChatToModel(chat)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		l.Error().Err(err).Uint(log.FieldRoomID, chat.RoomID).Msg("failed to create chat in db")
		return err
	}

	chat.ID = model.ID
	l.Debug().Uint(log.FieldChatID, chat.ID).Uint(log.FieldRoomID, chat.RoomID).Msg("chat created in db")
	return nil
}

// FindByRoom retrieves a room's chats, bounded by the filter's
// inclusive created-at range when set, oldest-first.
func (r *GormChatRepository) FindByRoom(ctx context.Context, filter domain.ChatFilter) ([]domain.Chat, error) {
	l := log.Ctx(ctx)

	query := r.db.WithContext(ctx).
		Where("room_id = ?", filter.RoomID)

	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var models []domain.ChatModel
	if err := query.Order("created_at ASC, id ASC").Find(&models).Error; err != nil {
		l.Error().Err(err).Uint(log.FieldRoomID, filter.RoomID).Msg("failed to list chats from db")
		return nil, err
	}

	chats := make([]domain.Chat, len(models))
	for i := range models {
		chats[i] = *models[i].ToDomain()
	}

	return chats, nil
}
