package presence

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/chat-users/internal/auth"
	"github.com/frahmantamala/chat-users/internal/metrics"
)

// LastActiveStamper records the caller's last activity on the user row.
type LastActiveStamper interface {
	UpdateLastActiveByID(ctx context.Context, userID string) error
}

// Heartbeat marks the authenticated caller active. It must run after the auth
// middleware; failures are logged and never block the request.
func Heartbeat(tracker Tracker, stamper LastActiveStamper, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, ok := auth.UserFromContext(r.Context()); ok {
				if err := tracker.Touch(r.Context(), user.ID); err != nil {
					logger.Warn("Heartbeat: presence touch failed", "user_id", user.ID, "error", err)
				} else {
					metrics.PresenceHeartbeatsTotal.Inc()
				}
				if stamper != nil {
					if err := stamper.UpdateLastActiveByID(r.Context(), user.ID); err != nil {
						logger.Warn("Heartbeat: last active update failed", "user_id", user.ID, "error", err)
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
