package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	userDatamodel "github.com/frahmantamala/chat-users/internal/core/datamodel/user"
	"github.com/frahmantamala/chat-users/internal/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sortable maps accepted order_by values to columns. Anything else sorts by created_at.
var sortable = map[string]string{
	"name":           "name",
	"email":          "email",
	"role":           "role",
	"created_at":     "created_at",
	"last_active_at": "last_active_at",
	"updated_at":     "updated_at",
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user.FromDataModel(&row), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user.FromDataModel(&row), nil
}

// GetFirstUser returns the earliest created account, the primary admin.
func (r *UserRepository) GetFirstUser(ctx context.Context) (*user.User, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user.FromDataModel(&row), nil
}

// List returns matching users and the total match count. limit <= 0 returns every match.
func (r *UserRepository) List(ctx context.Context, filter user.ListFilter, skip, limit int) (*user.UserList, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&userDatamodel.User{})
		if filter.Query != "" {
			like := "%" + strings.ToLower(filter.Query) + "%"
			q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, err
	}

	column, ok := sortable[filter.OrderBy]
	if !ok {
		column = "created_at"
	}
	desc := filter.Direction != "asc"

	q := base().
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	if limit > 0 {
		q = q.Offset(skip).Limit(limit)
	}

	var rows []*userDatamodel.User
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	users := make([]*user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, user.FromDataModel(row))
	}
	return &user.UserList{Users: users, Total: total}, nil
}

func (r *UserRepository) UpdateSettingsByID(ctx context.Context, id string, settings user.Settings) (*user.User, error) {
	return r.updateFields(ctx, id, &userDatamodel.User{Settings: settings}, "settings")
}

func (r *UserRepository) UpdateInfoByID(ctx context.Context, id string, info map[string]interface{}) (*user.User, error) {
	return r.updateFields(ctx, id, &userDatamodel.User{Info: info}, "info")
}

func (r *UserRepository) UpdateByID(ctx context.Context, id string, update user.Update) (*user.User, error) {
	values := &userDatamodel.User{
		Role:            update.Role,
		Name:            update.Name,
		Email:           update.Email,
		ProfileImageURL: update.ProfileImageURL,
	}
	return r.updateFields(ctx, id, values, "role", "name", "email", "profile_image_url")
}

func (r *UserRepository) UpdateLastActiveByID(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		UpdateColumn("last_active_at", time.Now()).Error
}

// updateFields writes the selected columns from values, so zero values are
// stored too, then reloads the row. A missing row yields (nil, nil).
func (r *UserRepository) updateFields(ctx context.Context, id string, values *userDatamodel.User, columns ...string) (*user.User, error) {
	values.UpdatedAt = time.Now()
	selected := append(columns, "updated_at")

	result := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Select(selected).
		Updates(values)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}
