package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID              string                 `gorm:"primaryKey;column:id"`
	Name            string                 `gorm:"column:name;not null"`
	Email           string                 `gorm:"column:email;uniqueIndex;not null"`
	Role            string                 `gorm:"column:role;not null;default:pending"`
	ProfileImageURL string                 `gorm:"column:profile_image_url"`
	Settings        map[string]interface{} `gorm:"column:settings;serializer:json"`
	Info            map[string]interface{} `gorm:"column:info;serializer:json"`
	LastActiveAt    time.Time              `gorm:"column:last_active_at"`
	CreatedAt       time.Time              `gorm:"column:created_at"`
	UpdatedAt       time.Time              `gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
