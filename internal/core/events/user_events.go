package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeUserUpdated        = "user.updated"
	EventTypeUserDeleted        = "user.deleted"
	EventTypePermissionsUpdated = "permissions.updated"
)

type UserUpdatedEvent struct {
	BaseEvent
	UserID    string `json:"user_id"`
	UpdatedBy string `json:"updated_by"`
	Role      string `json:"role"`
}

func NewUserUpdatedEvent(userID, updatedBy, role string) *UserUpdatedEvent {
	return &UserUpdatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserUpdated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":    userID,
				"updated_by": updatedBy,
				"role":       role,
			},
		},
		UserID:    userID,
		UpdatedBy: updatedBy,
		Role:      role,
	}
}

type UserDeletedEvent struct {
	BaseEvent
	UserID    string `json:"user_id"`
	DeletedBy string `json:"deleted_by"`
}

func NewUserDeletedEvent(userID, deletedBy string) *UserDeletedEvent {
	return &UserDeletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserDeleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":    userID,
				"deleted_by": deletedBy,
			},
		},
		UserID:    userID,
		DeletedBy: deletedBy,
	}
}

// PermissionsUpdatedEvent reports a write to the permission configuration.
// Scope is "global", "roles" or "role:<name>".
type PermissionsUpdatedEvent struct {
	BaseEvent
	Scope string `json:"scope"`
}

func NewPermissionsUpdatedEvent(scope string) *PermissionsUpdatedEvent {
	return &PermissionsUpdatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePermissionsUpdated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"scope": scope,
			},
		},
		Scope: scope,
	}
}
