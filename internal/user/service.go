package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/chat-users/internal"
	"github.com/frahmantamala/chat-users/internal/auth"
	"github.com/frahmantamala/chat-users/internal/core/events"
	"github.com/frahmantamala/chat-users/internal/metrics"
)

const toolServersPermission = "features.direct_tool_servers"

// Deps groups the collaborators the user service calls.
type Deps struct {
	Users       Repository
	Credentials CredentialStore
	Chats       ChatRepository
	Groups      GroupRepository
	Presence    Presence
	Permissions PermissionResolver
	Hasher      PasswordHasher
	Events      events.Publisher
}

type Service struct {
	deps   Deps
	logger *slog.Logger
}

func NewService(deps Deps, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		deps:   deps,
		logger: logger,
	}
}

func (s *Service) ActiveUsers(ctx context.Context) ([]string, error) {
	ids, err := s.deps.Presence.ActiveUserIDs(ctx)
	if err != nil {
		s.logger.Error("failed to list active users", "error", err)
		return nil, internal.NewInternalError("failed to list active users", internal.ErrCodeDefault, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// List returns one fixed-size page of users.
func (s *Service) List(ctx context.Context, q ListQuery) (*UserList, error) {
	list, err := s.deps.Users.List(ctx, q.Filter(), q.Offset(), PageSize)
	if err != nil {
		s.logger.Error("failed to list users", "error", err, "page", q.Page)
		return nil, internal.NewInternalError("failed to list users", internal.ErrCodeDefault, err)
	}
	return list, nil
}

func (s *Service) All(ctx context.Context) (*UserList, error) {
	list, err := s.deps.Users.List(ctx, ListFilter{}, 0, 0)
	if err != nil {
		s.logger.Error("failed to list all users", "error", err)
		return nil, internal.NewInternalError("failed to list users", internal.ErrCodeDefault, err)
	}
	return list, nil
}

func (s *Service) Groups(ctx context.Context, userID string) ([]*Group, error) {
	groups, err := s.deps.Groups.ListByMemberID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list groups", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("failed to list groups", internal.ErrCodeDefault, err)
	}
	if groups == nil {
		groups = []*Group{}
	}
	return groups, nil
}

// Profile resolves id, following a shared chat reference to its owner, and
// returns the public view of that user.
func (s *Service) Profile(ctx context.Context, id string) (*PublicProfile, error) {
	userID := id
	if strings.HasPrefix(id, SharedChatPrefix) {
		chatID := strings.TrimPrefix(id, SharedChatPrefix)
		chat, err := s.deps.Chats.GetChatByID(ctx, chatID)
		if err != nil {
			s.logger.Error("failed to resolve shared chat", "error", err, "chat_id", chatID)
			return nil, internal.NewInternalError("failed to resolve shared chat", internal.ErrCodeDefault, err)
		}
		if chat == nil {
			return nil, internal.ErrUserNotFound
		}
		userID = chat.UserID
	}

	u, err := s.deps.Users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to get user", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("failed to get user", internal.ErrCodeDefault, err)
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}

	active, err := s.deps.Presence.IsActive(ctx, userID)
	if err != nil {
		// presence outages report the user as inactive
		s.logger.Warn("presence lookup failed", "error", err, "user_id", userID)
		active = false
	}

	return &PublicProfile{
		Name:            u.Name,
		ProfileImageURL: u.ProfileImageURL,
		Active:          active,
	}, nil
}

// ActiveStatus does not check that the user exists; unknown ids are inactive.
func (s *Service) ActiveStatus(ctx context.Context, id string) (bool, error) {
	active, err := s.deps.Presence.IsActive(ctx, id)
	if err != nil {
		s.logger.Error("failed to get active status", "error", err, "user_id", id)
		return false, internal.NewInternalError("failed to get active status", internal.ErrCodeDefault, err)
	}
	return active, nil
}

func (s *Service) Settings(ctx context.Context, userID string) (Settings, error) {
	u, err := s.mustGet(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Settings, nil
}

// UpdateSettings stores settings for the caller. ui.toolServers is dropped
// for non-admins who lack the direct tool servers feature.
func (s *Service) UpdateSettings(ctx context.Context, caller *auth.User, settings Settings) (Settings, error) {
	if settings == nil {
		settings = Settings{}
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	ui := settings.UI()

	if !caller.IsAdmin() {
		if _, ok := ui["toolServers"]; ok && !s.deps.Permissions.HasPermission(caller.Role, toolServersPermission) {
			delete(ui, "toolServers")
			metrics.ToolServersStrippedTotal.Inc()
			s.logger.Info("removed ui.toolServers from settings update", "user_id", caller.ID, "role", caller.Role)
		}
	}

	u, err := s.deps.Users.UpdateSettingsByID(ctx, caller.ID, settings)
	if err != nil {
		s.logger.Error("failed to update settings", "error", err, "user_id", caller.ID)
		return nil, internal.NewInternalError("failed to update settings", internal.ErrCodeDefault, err)
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}
	return u.Settings, nil
}

func (s *Service) Info(ctx context.Context, userID string) (map[string]interface{}, error) {
	u, err := s.mustGet(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Info, nil
}

// UpdateInfo shallow-merges form into the stored info map.
func (s *Service) UpdateInfo(ctx context.Context, userID string, form map[string]interface{}) (map[string]interface{}, error) {
	u, err := s.mustGet(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]interface{}, len(u.Info)+len(form))
	for k, v := range u.Info {
		merged[k] = v
	}
	for k, v := range form {
		merged[k] = v
	}

	updated, err := s.deps.Users.UpdateInfoByID(ctx, userID, merged)
	if err != nil {
		s.logger.Error("failed to update info", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("failed to update info", internal.ErrCodeDefault, err)
	}
	if updated == nil {
		return nil, internal.ErrUserNotFound
	}
	return updated.Info, nil
}

// UpdateByID applies an admin edit to another account.
func (s *Service) UpdateByID(ctx context.Context, caller *auth.User, userID string, form UpdateUserForm) (*User, error) {
	form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, err
	}

	first, err := s.primaryAdmin(ctx)
	if err != nil {
		return nil, s.mutationFailed("update", err)
	}
	if first != nil && first.ID == userID {
		if caller.ID != userID {
			s.logger.Warn("blocked update of primary admin by another admin", "caller_id", caller.ID, "user_id", userID)
			return nil, s.mutationFailed("update", internal.ErrActionProhibited)
		}
		if form.Role != auth.RoleAdmin {
			s.logger.Warn("blocked primary admin self demotion", "user_id", userID, "role", form.Role)
			return nil, s.mutationFailed("update", internal.ErrActionProhibited)
		}
	}

	u, err := s.deps.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, s.mutationFailed("update", internal.NewInternalError("failed to get user", internal.ErrCodeDefault, err))
	}
	if u == nil {
		return nil, s.mutationFailed("update", internal.ErrUserNotFound)
	}

	if form.Email != u.Email {
		existing, err := s.deps.Users.GetByEmail(ctx, form.Email)
		if err != nil {
			return nil, s.mutationFailed("update", internal.NewInternalError("failed to check email", internal.ErrCodeDefault, err))
		}
		if existing != nil && existing.ID != userID {
			return nil, s.mutationFailed("update", internal.ErrEmailTaken)
		}
	}

	if form.Password != "" {
		hashed, err := s.deps.Hasher.HashPassword(form.Password)
		if err != nil {
			return nil, s.mutationFailed("update", internal.NewInternalError("failed to hash password", internal.ErrCodeDefault, err))
		}
		if err := s.deps.Credentials.UpdatePasswordByID(ctx, userID, hashed); err != nil {
			return nil, s.mutationFailed("update", internal.ErrDefault.WithCause(err))
		}
	}

	// the email lives on both the credentials row and the user row
	if err := s.deps.Credentials.UpdateEmailByID(ctx, userID, form.Email); err != nil {
		return nil, s.mutationFailed("update", internal.ErrDefault.WithCause(err))
	}

	updated, err := s.deps.Users.UpdateByID(ctx, userID, Update{
		Role:            form.Role,
		Name:            form.Name,
		Email:           form.Email,
		ProfileImageURL: form.ProfileImageURL,
	})
	if err != nil {
		return nil, s.mutationFailed("update", internal.ErrDefault.WithCause(err))
	}
	if updated == nil {
		return nil, s.mutationFailed("update", internal.ErrDefault)
	}

	metrics.UserMutationsTotal.WithLabelValues("update", "ok").Inc()
	s.logger.Info("user updated", "user_id", userID, "updated_by", caller.ID, "role", updated.Role)
	s.publish(ctx, events.NewUserUpdatedEvent(userID, caller.ID, updated.Role))

	return updated, nil
}

// DeleteByID removes an account. The primary admin and the caller's own
// account can never be deleted.
func (s *Service) DeleteByID(ctx context.Context, caller *auth.User, userID string) (bool, error) {
	first, err := s.primaryAdmin(ctx)
	if err != nil {
		return false, s.mutationFailed("delete", err)
	}
	if first != nil && first.ID == userID {
		s.logger.Warn("blocked deletion of primary admin", "caller_id", caller.ID, "user_id", userID)
		return false, s.mutationFailed("delete", internal.ErrActionProhibited)
	}

	if caller.ID == userID {
		s.logger.Warn("blocked self deletion", "user_id", userID)
		return false, s.mutationFailed("delete", internal.ErrActionProhibited)
	}

	if err := s.deps.Credentials.DeleteByID(ctx, userID); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", userID)
		return false, s.mutationFailed("delete", internal.ErrDeleteUser.WithCause(err))
	}

	metrics.UserMutationsTotal.WithLabelValues("delete", "ok").Inc()
	s.logger.Info("user deleted", "user_id", userID, "deleted_by", caller.ID)
	s.publish(ctx, events.NewUserDeletedEvent(userID, caller.ID))

	return true, nil
}

func (s *Service) UpdateLastActiveByID(ctx context.Context, userID string) error {
	return s.deps.Users.UpdateLastActiveByID(ctx, userID)
}

// primaryAdmin looks up the first user. Lookup failures become
// PRIMARY_ADMIN_CHECK_FAILED so they are never mistaken for a decision.
func (s *Service) primaryAdmin(ctx context.Context) (*User, error) {
	first, err := s.deps.Users.GetFirstUser(ctx)
	if err != nil {
		s.logger.Error("error checking primary admin status", "error", err)
		return nil, internal.ErrPrimaryAdminCheck.WithCause(err)
	}
	return first, nil
}

func (s *Service) mustGet(ctx context.Context, userID string) (*User, error) {
	u, err := s.deps.Users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to get user", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("failed to get user", internal.ErrCodeDefault, err)
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

func (s *Service) mutationFailed(action string, err error) error {
	result := "error"
	switch {
	case errors.Is(err, internal.ErrActionProhibited):
		result = "forbidden"
	case errors.Is(err, internal.ErrEmailTaken):
		result = "conflict"
	case errors.Is(err, internal.ErrUserNotFound):
		result = "not_found"
	}
	metrics.UserMutationsTotal.WithLabelValues(action, result).Inc()
	return err
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.deps.Events == nil {
		return
	}
	if err := s.deps.Events.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
