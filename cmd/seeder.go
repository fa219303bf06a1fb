package cmd

import (
	"context"
	"errors"
	"log"

	"github.com/frahmantamala/chat-users/internal/auth"
	authRepo "github.com/frahmantamala/chat-users/internal/auth/postgres"
	authDatamodel "github.com/frahmantamala/chat-users/internal/core/datamodel/auth"
	chatDatamodel "github.com/frahmantamala/chat-users/internal/core/datamodel/chat"
	groupDatamodel "github.com/frahmantamala/chat-users/internal/core/datamodel/group"
	userDatamodel "github.com/frahmantamala/chat-users/internal/core/datamodel/user"
	userRepo "github.com/frahmantamala/chat-users/internal/user/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const seedPassword = "password"

type seedUser struct {
	Name  string
	Email string
	Role  string
}

// The first user created becomes the primary admin.
var seedUsers = []seedUser{
	{Name: "Padil Admin", Email: "padil@mail.com", Role: auth.RoleAdmin},
	{Name: "Fadhil", Email: "fadhil@mail.com", Role: auth.RoleUser},
	{Name: "Pending Person", Email: "pending@mail.com", Role: auth.RolePending},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		cfg, err := loadConfig(configDir)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		if clearData {
			if err := clearTables(ctx, db); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			log.Println("cleared existing data")
		}

		gdb, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		hash, err := auth.HashPassword(seedPassword, cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}

		users := userRepo.NewUserRepository(gdb)

		ids := make(map[string]string, len(seedUsers))
		for _, su := range seedUsers {
			existing, err := users.GetByEmail(ctx, su.Email)
			if err != nil {
				log.Fatalf("failed to look up %s: %v", su.Email, err)
			}
			if existing != nil {
				log.Printf("user %s already exists", su.Email)
				ids[su.Email] = existing.ID
				continue
			}

			u := &userDatamodel.User{
				Name:            su.Name,
				Email:           su.Email,
				Role:            su.Role,
				ProfileImageURL: "/user.png",
			}
			err = gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				if err := userRepo.NewUserRepository(tx).Create(ctx, u); err != nil {
					return err
				}
				return authRepo.NewRepository(tx).Create(ctx, &authDatamodel.Auth{
					ID:       u.ID,
					Email:    su.Email,
					Password: hash,
					Active:   true,
				})
			})
			if err != nil {
				log.Fatalf("failed to seed user %s: %v", su.Email, err)
			}
			ids[su.Email] = u.ID
			log.Printf("seeded %s user: %s", su.Role, su.Email)
		}

		if err := seedSharing(ctx, gdb, ids); err != nil {
			log.Fatalf("failed to seed chats and groups: %v", err)
		}

		log.Println("seeding finished; every account uses password:", seedPassword)
	},
}

// seedSharing adds a shared chat and a group so the shared profile and group
// endpoints have something to return.
func seedSharing(ctx context.Context, db *gorm.DB, ids map[string]string) error {
	member, ok := ids["fadhil@mail.com"]
	if !ok {
		return errors.New("sample user missing")
	}
	admin := ids[seedUsers[0].Email]

	// GET /users/shared-welcome resolves to the owner of this chat
	chatID := "welcome"
	var count int64
	if err := db.WithContext(ctx).Model(&chatDatamodel.Chat{}).Where("id = ?", chatID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		shareID := "shared-" + chatID
		if err := userRepo.NewChatRepository(db).Create(ctx, &chatDatamodel.Chat{
			ID:      chatID,
			UserID:  member,
			Title:   "Welcome",
			ShareID: &shareID,
		}); err != nil {
			return err
		}
	}

	if err := db.WithContext(ctx).Model(&groupDatamodel.Group{}).Where("name = ?", "Everyone").Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return userRepo.NewGroupRepository(db).Create(ctx, &groupDatamodel.Group{
			UserID:      admin,
			Name:        "Everyone",
			Description: "All seeded users",
			Members: []groupDatamodel.Member{
				{UserID: admin},
				{UserID: member},
			},
		})
	}
	return nil
}

func clearTables(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `TRUNCATE group_members, groups, chats, auths, users`)
	return err
}
