package events

import (
	"context"
	"log/slog"
)

// Subscriber is the registration side of the bus.
type Subscriber interface {
	Subscribe(eventType string, handler Handler)
}

// LogAuditTrail writes one structured log line per account or permission change.
func LogAuditTrail(bus Subscriber, logger *slog.Logger) {
	audit := logger.With("component", "audit")

	bus.Subscribe(EventTypeUserUpdated, func(ctx context.Context, event Event) error {
		if e, ok := event.(*UserUpdatedEvent); ok {
			audit.InfoContext(ctx, "user updated",
				"event_id", e.ID, "user_id", e.UserID, "updated_by", e.UpdatedBy, "role", e.Role)
		}
		return nil
	})

	bus.Subscribe(EventTypeUserDeleted, func(ctx context.Context, event Event) error {
		if e, ok := event.(*UserDeletedEvent); ok {
			audit.InfoContext(ctx, "user deleted",
				"event_id", e.ID, "user_id", e.UserID, "deleted_by", e.DeletedBy)
		}
		return nil
	})

	bus.Subscribe(EventTypePermissionsUpdated, func(ctx context.Context, event Event) error {
		if e, ok := event.(*PermissionsUpdatedEvent); ok {
			audit.InfoContext(ctx, "permissions updated", "event_id", e.ID, "scope", e.Scope)
		}
		return nil
	})
}
