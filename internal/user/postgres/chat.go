package postgres

import (
	"context"
	"errors"

	chatDatamodel "github.com/frahmantamala/chat-users/internal/core/datamodel/chat"
	"github.com/frahmantamala/chat-users/internal/user"
	"gorm.io/gorm"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Create(ctx context.Context, c *chatDatamodel.Chat) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ChatRepository) GetChatByID(ctx context.Context, id string) (*user.ChatRef, error) {
	var row chatDatamodel.Chat
	err := r.db.WithContext(ctx).Select("id", "user_id").Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user.ChatRef{ID: row.ID, UserID: row.UserID}, nil
}
