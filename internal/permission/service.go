package permission

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frahmantamala/chat-users/internal"
	"github.com/frahmantamala/chat-users/internal/core/events"
	"github.com/frahmantamala/chat-users/internal/metrics"
)

type RoleBasedView struct {
	Roles  map[string]Permissions `json:"roles"`
	Global Permissions            `json:"global"`
}

type Service struct {
	store  *Store
	events events.Publisher
	logger *slog.Logger
}

func NewService(store *Store, publisher events.Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		events: publisher,
		logger: logger,
	}
}

// ForRole returns the effective permission set for a role.
func (s *Service) ForRole(role string) Permissions {
	var override *Permissions
	if p, ok := s.store.Role(role); ok {
		override = &p
	}
	return Effective(s.store.Global(), override)
}

func (s *Service) HasPermission(role, key string) bool {
	return s.ForRole(role).Has(key)
}

func (s *Service) Defaults() Permissions {
	return s.store.Global()
}

func (s *Service) UpdateDefaults(ctx context.Context, p Permissions) (Permissions, error) {
	cfg, err := s.store.ReplaceGlobal(ctx, p)
	if err != nil {
		return Permissions{}, internal.NewInternalError("failed to update default permissions", internal.ErrCodeDefault, err)
	}
	s.published(ctx, "global")
	return cfg.Global, nil
}

// RoleBased lists every stored override plus the backfilled roles. Backfilled
// entries are not written to the store.
func (s *Service) RoleBased() RoleBasedView {
	cfg := s.store.Snapshot()
	for _, role := range BackfilledRoles {
		if _, ok := cfg.Roles[role]; !ok {
			cfg.Roles[role] = DefaultPermissions()
		}
	}
	return RoleBasedView{Roles: cfg.Roles, Global: cfg.Global}
}

func (s *Service) UpdateRoleBased(ctx context.Context, bulk BulkUpdate) (Config, error) {
	cfg, err := s.store.ApplyBulk(ctx, bulk)
	if err != nil {
		return Config{}, internal.NewInternalError("failed to update role permissions", internal.ErrCodeDefault, err)
	}
	s.published(ctx, "roles")
	return cfg, nil
}

// RolePermissions returns the role's stored override, or the global layer when
// the role has none.
func (s *Service) RolePermissions(role string) Permissions {
	if p, ok := s.store.Role(role); ok {
		return p
	}
	return s.store.Global()
}

func (s *Service) UpdateRole(ctx context.Context, role string, p Permissions) (Permissions, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return Permissions{}, internal.NewValidationError("role is required", internal.ErrCodeInvalidPermissions)
	}

	cfg, err := s.store.ReplaceRole(ctx, role, p)
	if err != nil {
		return Permissions{}, internal.NewInternalError("failed to update role permissions", internal.ErrCodeDefault, err)
	}
	s.published(ctx, "role:"+role)
	return cfg.Roles[role], nil
}

func (s *Service) published(ctx context.Context, scope string) {
	metrics.PermissionUpdatesTotal.WithLabelValues(scopeLabel(scope)).Inc()
	s.logger.Info("permission configuration updated", "scope", scope)

	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, events.NewPermissionsUpdatedEvent(scope)); err != nil {
		s.logger.Error("failed to publish permissions updated event", "scope", scope, "error", err)
	}
}

func scopeLabel(scope string) string {
	if strings.HasPrefix(scope, "role:") {
		return "role"
	}
	return scope
}
