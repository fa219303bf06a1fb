package events_test

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/frahmantamala/chat-users/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LogAuditTrail", func() {
	var (
		ctx context.Context
		buf *bytes.Buffer
		bus *events.EventBus
	)

	BeforeEach(func() {
		ctx = context.Background()
		buf = &bytes.Buffer{}
		logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
		bus = events.NewEventBus(logger)
		events.LogAuditTrail(bus, logger)
	})

	It("should subscribe to every account and permission event", func() {
		Expect(bus.HandlerCount(events.EventTypeUserUpdated)).To(Equal(1))
		Expect(bus.HandlerCount(events.EventTypeUserDeleted)).To(Equal(1))
		Expect(bus.HandlerCount(events.EventTypePermissionsUpdated)).To(Equal(1))
	})

	It("should log who deleted whom", func() {
		Expect(bus.PublishSync(ctx, events.NewUserDeletedEvent("u-1", "admin-1"))).To(Succeed())

		Expect(buf.String()).To(ContainSubstring("component=audit"))
		Expect(buf.String()).To(ContainSubstring("user_id=u-1"))
		Expect(buf.String()).To(ContainSubstring("deleted_by=admin-1"))
	})

	It("should log the permission scope", func() {
		Expect(bus.PublishSync(ctx, events.NewPermissionsUpdatedEvent("role:premium"))).To(Succeed())

		Expect(buf.String()).To(ContainSubstring("scope=role:premium"))
	})
})
