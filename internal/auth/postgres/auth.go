package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/chat-users/internal/auth"
	authDatamodel "github.com/frahmantamala/chat-users/internal/core/datamodel/auth"
	chatDatamodel "github.com/frahmantamala/chat-users/internal/core/datamodel/chat"
	groupDatamodel "github.com/frahmantamala/chat-users/internal/core/datamodel/group"
	userDatamodel "github.com/frahmantamala/chat-users/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetUserByID(ctx context.Context, userID string) (*auth.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).
		Select("id", "email", "name", "role").
		Where("id = ?", userID).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &auth.User{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}, nil
}

func (r *Repository) GetCredentialsByEmail(ctx context.Context, email string) (*auth.Credentials, error) {
	var a authDatamodel.Auth
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &auth.Credentials{
		UserID:       a.ID,
		PasswordHash: a.Password,
		Active:       a.Active,
	}, nil
}

func (r *Repository) Create(ctx context.Context, a *authDatamodel.Auth) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *Repository) UpdatePasswordByID(ctx context.Context, userID, passwordHash string) error {
	result := r.db.WithContext(ctx).
		Model(&authDatamodel.Auth{}).
		Where("id = ?", userID).
		Update("password", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no credentials for user %s", userID)
	}
	return nil
}

func (r *Repository) UpdateEmailByID(ctx context.Context, userID, email string) error {
	result := r.db.WithContext(ctx).
		Model(&authDatamodel.Auth{}).
		Where("id = ?", userID).
		Update("email", email)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no credentials for user %s", userID)
	}
	return nil
}

// DeleteByID removes the user's group memberships, chats, user row and
// credentials in one transaction.
func (r *Repository) DeleteByID(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&groupDatamodel.Member{}).Error; err != nil {
			return fmt.Errorf("delete group memberships: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&chatDatamodel.Chat{}).Error; err != nil {
			return fmt.Errorf("delete chats: %w", err)
		}

		result := tx.Where("id = ?", userID).Delete(&userDatamodel.User{})
		if result.Error != nil {
			return fmt.Errorf("delete user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("user %s not found", userID)
		}

		if err := tx.Where("id = ?", userID).Delete(&authDatamodel.Auth{}).Error; err != nil {
			return fmt.Errorf("delete credentials: %w", err)
		}
		return nil
	})
}
