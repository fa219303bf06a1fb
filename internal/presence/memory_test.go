package presence_test

import (
	"context"
	"time"

	"github.com/frahmantamala/chat-users/internal/presence"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("MemoryTracker", func() {
	var (
		ctx     context.Context
		now     time.Time
		tracker *presence.MemoryTracker
	)

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
		tracker = presence.NewMemoryTracker(3 * time.Minute).WithClock(func() time.Time { return now })
	})

	It("should report touched users as active, sorted by id", func() {
		Expect(tracker.Touch(ctx, "u-2")).To(Succeed())
		Expect(tracker.Touch(ctx, "u-1")).To(Succeed())

		ids, err := tracker.ActiveUserIDs(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(ids).To(Equal([]string{"u-1", "u-2"}))
	})

	It("should return an empty list when nobody is around", func() {
		ids, err := tracker.ActiveUserIDs(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(ids).NotTo(BeNil())
		Expect(ids).To(BeEmpty())
	})

	It("should expire users once the ttl has passed", func() {
		Expect(tracker.Touch(ctx, "u-1")).To(Succeed())
		now = now.Add(time.Minute)
		Expect(tracker.Touch(ctx, "u-2")).To(Succeed())

		now = now.Add(2*time.Minute + time.Second)

		active, err := tracker.IsActive(ctx, "u-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(active).To(BeFalse())

		ids, err := tracker.ActiveUserIDs(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(ids).To(Equal([]string{"u-2"}))
	})

	It("should keep users active right at the ttl boundary", func() {
		Expect(tracker.Touch(ctx, "u-1")).To(Succeed())
		now = now.Add(3 * time.Minute)

		active, err := tracker.IsActive(ctx, "u-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(active).To(BeTrue())
	})

	It("should forget a user immediately", func() {
		Expect(tracker.Touch(ctx, "u-1")).To(Succeed())
		Expect(tracker.Forget(ctx, "u-1")).To(Succeed())

		active, err := tracker.IsActive(ctx, "u-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(active).To(BeFalse())
	})

	It("should report unknown users as inactive", func() {
		active, err := tracker.IsActive(ctx, "nobody")
		Expect(err).NotTo(HaveOccurred())
		Expect(active).To(BeFalse())
	})
})
