package postgres_test

import (
	"context"

	chatDatamodel "github.com/frahmantamala/chat-users/internal/core/datamodel/chat"
	groupDatamodel "github.com/frahmantamala/chat-users/internal/core/datamodel/group"
	userPostgres "github.com/frahmantamala/chat-users/internal/user/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Group Repository", func() {
	var (
		ctx  context.Context
		db   *gorm.DB
		repo *userPostgres.GroupRepository
	)

	BeforeEach(func() {
		ctx = context.Background()
		db = openTestDB()
		repo = userPostgres.NewGroupRepository(db)

		Expect(repo.Create(ctx, &groupDatamodel.Group{
			ID:      "g-everyone",
			UserID:  "u-admin",
			Name:    "Everyone",
			Members: []groupDatamodel.Member{{UserID: "u-admin"}, {UserID: "u-bob"}},
		})).To(Succeed())
		Expect(repo.Create(ctx, &groupDatamodel.Group{
			ID:      "g-admins",
			UserID:  "u-admin",
			Name:    "Admins",
			Members: []groupDatamodel.Member{{UserID: "u-admin"}},
		})).To(Succeed())
	})

	It("should return only groups listing the user", func() {
		groups, err := repo.ListByMemberID(ctx, "u-bob")

		Expect(err).NotTo(HaveOccurred())
		Expect(groups).To(HaveLen(1))
		Expect(groups[0].ID).To(Equal("g-everyone"))
		Expect(groups[0].UserIDs).To(ConsistOf("u-admin", "u-bob"))
	})

	It("should return every group for a member of all", func() {
		groups, err := repo.ListByMemberID(ctx, "u-admin")
		Expect(err).NotTo(HaveOccurred())
		Expect(groups).To(HaveLen(2))
	})

	It("should return an empty list for a stranger", func() {
		groups, err := repo.ListByMemberID(ctx, "u-nobody")
		Expect(err).NotTo(HaveOccurred())
		Expect(groups).To(BeEmpty())
	})
})

var _ = Describe("Chat Repository", func() {
	var (
		ctx  context.Context
		repo *userPostgres.ChatRepository
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = userPostgres.NewChatRepository(openTestDB())
	})

	It("should resolve a chat to its owner", func() {
		Expect(repo.Create(ctx, &chatDatamodel.Chat{ID: "c1", UserID: "u-bob", Title: "hello"})).To(Succeed())

		ref, err := repo.GetChatByID(ctx, "c1")

		Expect(err).NotTo(HaveOccurred())
		Expect(ref.UserID).To(Equal("u-bob"))
	})

	It("should return nil for a missing chat", func() {
		ref, err := repo.GetChatByID(ctx, "missing")
		Expect(err).NotTo(HaveOccurred())
		Expect(ref).To(BeNil())
	})
})
