package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	configDatamodel "github.com/frahmantamala/chat-users/internal/core/datamodel/config"
	"github.com/frahmantamala/chat-users/internal/permission"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConfigKey is the config row holding the permission configuration.
const ConfigKey = "user_permissions"

type ConfigRepository struct {
	db *gorm.DB
}

func NewConfigRepository(db *gorm.DB) permission.Repository {
	return &ConfigRepository{db: db}
}

func (r *ConfigRepository) Load(ctx context.Context) (*permission.Config, error) {
	var row configDatamodel.Config
	err := r.db.WithContext(ctx).Where("key = ?", ConfigKey).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var cfg permission.Config
	if err := json.Unmarshal([]byte(row.Data), &cfg); err != nil {
		return nil, fmt.Errorf("decode permission config: %w", err)
	}
	return &cfg, nil
}

func (r *ConfigRepository) Save(ctx context.Context, cfg permission.Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode permission config: %w", err)
	}

	row := configDatamodel.Config{
		Key:     ConfigKey,
		Data:    string(data),
		Version: 1,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"data":       gorm.Expr("excluded.data"),
			"version":    gorm.Expr("config.version + 1"),
			"updated_at": gorm.Expr("excluded.updated_at"),
		}),
	}).Create(&row).Error
}
