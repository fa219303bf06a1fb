// Package presence tracks which users have been seen recently. A user is
// active while their last heartbeat is younger than the tracker's TTL.
package presence

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/chat-users/internal/core/events"
)

type Tracker interface {
	Touch(ctx context.Context, userID string) error
	Forget(ctx context.Context, userID string) error
	ActiveUserIDs(ctx context.Context) ([]string, error)
	IsActive(ctx context.Context, userID string) (bool, error)
}

// ForgetDeletedUsers drops deleted users from the tracker.
func ForgetDeletedUsers(bus events.Subscriber, tracker Tracker, logger *slog.Logger) {
	bus.Subscribe(events.EventTypeUserDeleted, func(ctx context.Context, event events.Event) error {
		deleted, ok := event.(*events.UserDeletedEvent)
		if !ok {
			return fmt.Errorf("unexpected event payload %T", event)
		}
		if err := tracker.Forget(ctx, deleted.UserID); err != nil {
			return fmt.Errorf("forget user %s: %w", deleted.UserID, err)
		}
		logger.Info("presence: forgot deleted user", "user_id", deleted.UserID)
		return nil
	})
}
