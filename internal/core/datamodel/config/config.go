package config

import "time"

// Config is a keyed JSON document. Data holds the serialized payload.
type Config struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Key       string    `gorm:"column:key;uniqueIndex;not null"`
	Data      string    `gorm:"column:data;not null"`
	Version   int       `gorm:"column:version;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Config) TableName() string {
	return "config"
}
