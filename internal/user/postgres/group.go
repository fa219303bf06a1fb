package postgres

import (
	"context"

	groupDatamodel "github.com/frahmantamala/chat-users/internal/core/datamodel/group"
	"github.com/frahmantamala/chat-users/internal/user"
	"gorm.io/gorm"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create stores the group together with its members.
func (r *GroupRepository) Create(ctx context.Context, g *groupDatamodel.Group) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *GroupRepository) ListByMemberID(ctx context.Context, userID string) ([]*user.Group, error) {
	memberOf := r.db.Model(&groupDatamodel.Member{}).Select("group_id").Where("user_id = ?", userID)

	var rows []*groupDatamodel.Group
	err := r.db.WithContext(ctx).
		Preload("Members").
		Where("id IN (?)", memberOf).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	groups := make([]*user.Group, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, user.GroupFromDataModel(row))
	}
	return groups, nil
}
