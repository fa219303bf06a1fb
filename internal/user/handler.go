package user

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
	ActiveUsers(ctx context.Context) ([]string, error)
	List(ctx context.Context, q ListQuery) (*UserList, error)
	All(ctx context.Context) (*UserList, error)
	Groups(ctx context.Context, userID string) ([]*Group, error)
	Profile(ctx context.Context, id string) (*PublicProfile, error)
	ActiveStatus(ctx context.Context, id string) (bool, error)
	Settings(ctx context.Context, userID string) (Settings, error)
	UpdateSettings(ctx context.Context, caller *auth.User, settings Settings) (Settings, error)
	Info(ctx context.Context, userID string) (map[string]interface{}, error)
	UpdateInfo(ctx context.Context, userID string, form map[string]interface{}) (map[string]interface{}, error)
	UpdateByID(ctx context.Context, caller *auth.User, userID string, form UpdateUserForm) (*User, error)
	DeleteByID(ctx context.Context, caller *auth.User, userID string) (bool, error)
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

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return nil, false
	}
	return u, true
}

// GetActiveUsers handles GET /users/active
func (h *Handler) GetActiveUsers(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Service.ActiveUsers(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ActiveUsersResponse{UserIDs: ids})
}

// GetUsers handles GET /users/
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	q, err := ParseListQuery(r.URL.Query().Get)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	list, err := h.Service.List(r.Context(), q)
	if err != nil {
		h.Logger.Error("GetUsers: service List failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, list)
}

// GetAllUsers handles GET /users/all
func (h *Handler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.All(r.Context())
	if err != nil {
		h.Logger.Error("GetAllUsers: service All failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, list)
}

// GetUserGroups handles GET /users/groups
func (h *Handler) GetUserGroups(w http.ResponseWriter, r *http.Request) {
	u, ok := h.caller(w, r)
	if !ok {
		return
	}

	groups, err := h.Service.Groups(r.Context(), u.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, groups)
}

// GetSettings handles GET /users/user/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	u, ok := h.caller(w, r)
	if !ok {
		return
	}

	settings, err := h.Service.Settings(r.Context(), u.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, settings)
}

// UpdateSettings handles POST /users/user/settings/update
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	u, ok := h.caller(w, r)
	if !ok {
		return
	}

	var form Settings
	if err := h.DecodeJSON(r, &form); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	settings, err := h.Service.UpdateSettings(r.Context(), u, form)
	if err != nil {
		h.Logger.Error("UpdateSettings: service failed", "user_id", u.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, settings)
}

// GetInfo handles GET /users/user/info
func (h *Handler) GetInfo(w http.ResponseWriter, r *http.Request) {
	u, ok := h.caller(w, r)
	if !ok {
		return
	}

	info, err := h.Service.Info(r.Context(), u.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, info)
}

// UpdateInfo handles POST /users/user/info/update
func (h *Handler) UpdateInfo(w http.ResponseWriter, r *http.Request) {
	u, ok := h.caller(w, r)
	if !ok {
		return
	}

	var form map[string]interface{}
	if err := h.DecodeJSON(r, &form); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	info, err := h.Service.UpdateInfo(r.Context(), u.ID, form)
	if err != nil {
		h.Logger.Error("UpdateInfo: service failed", "user_id", u.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, info)
}

// GetUserByID handles GET /users/{user_id}
func (h *Handler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Service.Profile(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, profile)
}

// GetUserActiveStatus handles GET /users/{user_id}/active
func (h *Handler) GetUserActiveStatus(w http.ResponseWriter, r *http.Request) {
	active, err := h.Service.ActiveStatus(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ActiveStatusResponse{Active: active})
}

// UpdateUserByID handles POST /users/{user_id}/update
func (h *Handler) UpdateUserByID(w http.ResponseWriter, r *http.Request) {
	u, ok := h.caller(w, r)
	if !ok {
		return
	}
	userID := chi.URLParam(r, "user_id")

	var form UpdateUserForm
	if err := h.DecodeJSON(r, &form); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	updated, err := h.Service.UpdateByID(r.Context(), u, userID, form)
	if err != nil {
		h.Logger.Warn("UpdateUserByID: service failed", "user_id", userID, "caller_id", u.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

// DeleteUserByID handles DELETE /users/{user_id}
func (h *Handler) DeleteUserByID(w http.ResponseWriter, r *http.Request) {
	u, ok := h.caller(w, r)
	if !ok {
		return
	}
	userID := chi.URLParam(r, "user_id")

	deleted, err := h.Service.DeleteByID(r.Context(), u, userID)
	if err != nil {
		h.Logger.Warn("DeleteUserByID: service failed", "user_id", userID, "caller_id", u.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, deleted)
}
