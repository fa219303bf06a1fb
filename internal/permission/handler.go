package permission

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/chat-users/internal"
	"github.com/frahmantamala/chat-users/internal/auth"
	"github.com/frahmantamala/chat-users/internal/transport"
	"github.com/frahmantamala/chat-users/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ForRole(role string) Permissions
	Defaults() Permissions
	UpdateDefaults(ctx context.Context, p Permissions) (Permissions, error)
	RoleBased() RoleBasedView
	UpdateRoleBased(ctx context.Context, bulk BulkUpdate) (Config, error)
	RolePermissions(role string) Permissions
	UpdateRole(ctx context.Context, role string, p Permissions) (Permissions, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// GetUserPermissions handles GET /users/permissions
func (h *Handler) GetUserPermissions(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return
	}

	h.WriteJSON(w, http.StatusOK, h.Service.ForRole(user.Role))
}

// GetDefaultPermissions handles GET /users/default/permissions
func (h *Handler) GetDefaultPermissions(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.Service.Defaults())
}

// UpdateDefaultPermissions handles POST /users/default/permissions
func (h *Handler) UpdateDefaultPermissions(w http.ResponseWriter, r *http.Request) {
	var form Permissions
	if err := h.DecodeJSON(r, &form); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	updated, err := h.Service.UpdateDefaults(r.Context(), form)
	if err != nil {
		h.Logger.Error("UpdateDefaultPermissions: service failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

// GetRoleBasedPermissions handles GET /users/default/permissions/roles
func (h *Handler) GetRoleBasedPermissions(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.Service.RoleBased())
}

// UpdateRoleBasedPermissions handles POST /users/default/permissions/roles
func (h *Handler) UpdateRoleBasedPermissions(w http.ResponseWriter, r *http.Request) {
	var form BulkUpdate
	if err := h.DecodeJSON(r, &form); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	updated, err := h.Service.UpdateRoleBased(r.Context(), form)
	if err != nil {
		h.Logger.Error("UpdateRoleBasedPermissions: service failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

// GetRolePermissions handles GET /users/default/permissions/role/{role}
func (h *Handler) GetRolePermissions(w http.ResponseWriter, r *http.Request) {
	role := chi.URLParam(r, "role")
	h.WriteJSON(w, http.StatusOK, h.Service.RolePermissions(role))
}

// UpdateRolePermissions handles POST /users/default/permissions/role/{role}
func (h *Handler) UpdateRolePermissions(w http.ResponseWriter, r *http.Request) {
	role := chi.URLParam(r, "role")

	var form Permissions
	if err := h.DecodeJSON(r, &form); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	updated, err := h.Service.UpdateRole(r.Context(), role, form)
	if err != nil {
		h.Logger.Error("UpdateRolePermissions: service failed", "role", role, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}
