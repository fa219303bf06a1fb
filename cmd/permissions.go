package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/frahmantamala/chat-users/internal"
	"github.com/frahmantamala/chat-users/internal/permission"
	permissionRepo "github.com/frahmantamala/chat-users/internal/permission/postgres"
	"github.com/frahmantamala/chat-users/pkg/logger"
	"github.com/spf13/cobra"
)

var permissionsCmd = &cobra.Command{
	Use:   "permissions",
	Short: "Inspect or reset the stored permission configuration",
}

var showPermissionsCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective permission configuration as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openPermissionStore(cmd.Context())
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(store.Snapshot())
	},
}

var resetPermissionsCmd = &cobra.Command{
	Use:   "reset",
	Short: "Overwrite the stored configuration with the built-in defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}
		db, err := initDB(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		gdb, err := initGorm(db)
		if err != nil {
			return err
		}

		if err := permissionRepo.NewConfigRepository(gdb).Save(cmd.Context(), permission.DefaultConfig()); err != nil {
			return fmt.Errorf("reset permissions: %w", err)
		}
		logger.LoggerWrapper().Info("permission configuration reset to defaults")
		return nil
	},
}

func openPermissionStore(ctx context.Context) (*permission.Store, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(configDir)
	if err != nil {
		return nil, err
	}
	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	gdb, err := initGorm(db)
	if err != nil {
		return nil, err
	}

	loadCtx, cancel := internal.WithStoreTimeout(ctx, 0)
	defer cancel()

	store := permission.NewStore(permissionRepo.NewConfigRepository(gdb), logger.LoggerWrapper())
	if err := store.Load(loadCtx); err != nil {
		return nil, err
	}
	return store, nil
}

func init() {
	permissionsCmd.AddCommand(showPermissionsCmd)
	permissionsCmd.AddCommand(resetPermissionsCmd)
}
