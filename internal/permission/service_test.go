package permission_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/frahmantamala/chat-users/internal"
	"github.com/frahmantamala/chat-users/internal/core/events"
	"github.com/frahmantamala/chat-users/internal/permission"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Service", func() {
	var (
		ctx       context.Context
		repo      *mockConfigRepository
		publisher *mockPublisher
		service   *permission.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newMockConfigRepository()
		publisher = &mockPublisher{}
		service = permission.NewService(permission.NewStore(repo, slogger), publisher, slogger)
	})

	Describe("ForRole and HasPermission", func() {
		It("should fall back to the global layer", func() {
			Expect(service.ForRole("user")).To(Equal(permission.DefaultPermissions()))
			Expect(service.HasPermission("user", "features.direct_tool_servers")).To(BeFalse())
		})

		It("should apply a stored role override", func() {
			p := permission.DefaultPermissions()
			p.Features.DirectToolServers = true
			_, err := service.UpdateRole(ctx, "premium", p)
			Expect(err).NotTo(HaveOccurred())

			Expect(service.HasPermission("premium", "features.direct_tool_servers")).To(BeTrue())
			Expect(service.HasPermission("user", "features.direct_tool_servers")).To(BeFalse())
		})
	})

	Describe("UpdateDefaults", func() {
		It("should store the layer and publish an event", func() {
			p := permission.DefaultPermissions()
			p.Sharing.PublicTools = false

			updated, err := service.UpdateDefaults(ctx, p)

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Sharing.PublicTools).To(BeFalse())
			Expect(service.Defaults().Sharing.PublicTools).To(BeFalse())
			Expect(publisher.Events()).To(HaveLen(1))
			Expect(publisher.Events()[0].EventType()).To(Equal(events.EventTypePermissionsUpdated))
		})

		It("should return an internal error when persistence fails", func() {
			repo.SetShouldFail(true)

			_, err := service.UpdateDefaults(ctx, permission.DefaultPermissions())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(500))
			Expect(publisher.Events()).To(BeEmpty())
		})
	})

	Describe("RoleBased", func() {
		It("should backfill user and premium without storing them", func() {
			view := service.RoleBased()

			Expect(view.Roles).To(HaveKey("user"))
			Expect(view.Roles).To(HaveKey("premium"))
			Expect(view.Global).To(Equal(permission.DefaultPermissions()))
			Expect(repo.saves).To(Equal(0))
		})

		It("should keep stored overrides over the backfill", func() {
			p := permission.DefaultPermissions()
			p.Workspace.Tools = true
			_, err := service.UpdateRole(ctx, "user", p)
			Expect(err).NotTo(HaveOccurred())

			Expect(service.RoleBased().Roles["user"].Workspace.Tools).To(BeTrue())
		})
	})

	Describe("UpdateRoleBased", func() {
		It("should return the flattened configuration", func() {
			chat := permission.DefaultChat()
			chat.Export = false

			cfg, err := service.UpdateRoleBased(ctx, permission.BulkUpdate{
				Roles:  map[string]permission.Permissions{"premium": permission.DefaultPermissions()},
				Global: &permission.GlobalPatch{Chat: &chat},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Roles).To(HaveKey("premium"))
			Expect(cfg.Global.Chat.Export).To(BeFalse())
		})
	})

	Describe("RolePermissions", func() {
		It("should return the global layer for an unknown role", func() {
			Expect(service.RolePermissions("ghost")).To(Equal(service.Defaults()))
		})
	})

	Describe("UpdateRole", func() {
		It("should reject an empty role name", func() {
			_, err := service.UpdateRole(ctx, "  ", permission.DefaultPermissions())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidPermissions))
		})

		It("should wrap persistence failures", func() {
			repo.SetShouldFail(true)
			_, err := service.UpdateRole(ctx, "premium", permission.DefaultPermissions())
			Expect(errors.Unwrap(err)).To(HaveOccurred())
		})
	})
})
