package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/chat-users/internal"
	"github.com/frahmantamala/chat-users/internal/transport"
)

// RoleAuthorization gates routes on the caller's role.
type RoleAuthorization struct {
	*transport.BaseHandler
}

func NewRoleAuthorization(logger *slog.Logger) *RoleAuthorization {
	return &RoleAuthorization{BaseHandler: transport.NewBaseHandler(logger)}
}

func (ra *RoleAuthorization) check(allow func(*User) bool, denyMessage string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				ra.Logger.Warn("authorization check failed: user not found in context", "path", r.URL.Path)
				ra.WriteAppError(w, internal.ErrUnauthorized)
				return
			}

			if !allow(user) {
				ra.Logger.WarnContext(r.Context(), denyMessage, "user_id", user.ID, "role", user.Role, "path", r.URL.Path)
				ra.WriteAppError(w, internal.ErrAccessProhibited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireVerified admits any caller whose account is not pending.
func (ra *RoleAuthorization) RequireVerified() func(http.Handler) http.Handler {
	return ra.check((*User).IsVerified, "access denied: account not verified")
}

func (ra *RoleAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.check((*User).IsAdmin, "access denied: admin role required")
}
