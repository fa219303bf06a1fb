package user

import (
	"context"
	"time"

	"github.com/frahmantamala/chat-users/internal"
	groupDatamodel "github.com/frahmantamala/chat-users/internal/core/datamodel/group"
	userDatamodel "github.com/frahmantamala/chat-users/internal/core/datamodel/user"
)

// PageSize is the number of users returned per page by List.
const PageSize = 30

// SharedChatPrefix marks a user id that refers to a shared chat instead of a user.
const SharedChatPrefix = "shared-"

type User struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	Email           string                 `json:"email"`
	Role            string                 `json:"role"`
	ProfileImageURL string                 `json:"profile_image_url"`
	Settings        Settings               `json:"settings,omitempty"`
	Info            map[string]interface{} `json:"info,omitempty"`
	LastActiveAt    time.Time              `json:"last_active_at"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// Settings is a free-form document. Only ui.toolServers has meaning here.
type Settings map[string]interface{}

// UI returns the "ui" sub-map, creating it when missing. A ui value that is
// not an object is left in place and a detached empty map is returned; callers
// that persist settings run Validate first.
func (s Settings) UI() map[string]interface{} {
	switch ui := s["ui"].(type) {
	case map[string]interface{}:
		return ui
	case nil:
		created := map[string]interface{}{}
		s["ui"] = created
		return created
	default:
		return map[string]interface{}{}
	}
}

// Validate rejects a ui value that is present but not an object.
func (s Settings) Validate() error {
	switch s["ui"].(type) {
	case nil, map[string]interface{}:
		return nil
	}
	return internal.NewValidationFieldErrors([]internal.ValidationError{{
		Field:   "ui",
		Message: "ui must be an object",
		Code:    "type",
	}})
}

type UserList struct {
	Users []*User `json:"users"`
	Total int64   `json:"total"`
}

// PublicProfile is what any verified caller may see about another user.
type PublicProfile struct {
	Name            string `json:"name"`
	ProfileImageURL string `json:"profile_image_url"`
	Active          bool   `json:"active"`
}

type Group struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UserIDs     []string  `json:"user_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ChatRef is the part of a chat needed to resolve shared chat ids.
type ChatRef struct {
	ID     string
	UserID string
}

// ListFilter narrows and orders a user listing. Empty fields are ignored.
type ListFilter struct {
	Query     string
	OrderBy   string
	Direction string
}

// Update carries the fields an admin may change on a user row.
type Update struct {
	Role            string
	Name            string
	Email           string
	ProfileImageURL string
}

// Repository is the users table. Lookups return (nil, nil) when nothing matches.
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetFirstUser(ctx context.Context) (*User, error)
	List(ctx context.Context, filter ListFilter, skip, limit int) (*UserList, error)
	UpdateSettingsByID(ctx context.Context, id string, settings Settings) (*User, error)
	UpdateInfoByID(ctx context.Context, id string, info map[string]interface{}) (*User, error)
	UpdateByID(ctx context.Context, id string, update Update) (*User, error)
	UpdateLastActiveByID(ctx context.Context, id string) error
}

// CredentialStore owns the auths table and the delete cascade.
type CredentialStore interface {
	UpdatePasswordByID(ctx context.Context, userID, passwordHash string) error
	UpdateEmailByID(ctx context.Context, userID, email string) error
	DeleteByID(ctx context.Context, userID string) error
}

type ChatRepository interface {
	GetChatByID(ctx context.Context, id string) (*ChatRef, error)
}

type GroupRepository interface {
	ListByMemberID(ctx context.Context, userID string) ([]*Group, error)
}

type Presence interface {
	ActiveUserIDs(ctx context.Context) ([]string, error)
	IsActive(ctx context.Context, userID string) (bool, error)
}

type PermissionResolver interface {
	HasPermission(role, key string) bool
}

type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role,
		ProfileImageURL: u.ProfileImageURL,
		Settings:        u.Settings,
		Info:            u.Info,
		LastActiveAt:    u.LastActiveAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role,
		ProfileImageURL: u.ProfileImageURL,
		Settings:        Settings(u.Settings),
		Info:            u.Info,
		LastActiveAt:    u.LastActiveAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func GroupFromDataModel(g *groupDatamodel.Group) *Group {
	ids := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		ids = append(ids, m.UserID)
	}
	return &Group{
		ID:          g.ID,
		UserID:      g.UserID,
		Name:        g.Name,
		Description: g.Description,
		UserIDs:     ids,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}
