package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/chat-users/api"
	"github.com/frahmantamala/chat-users/internal"
	"github.com/frahmantamala/chat-users/internal/auth"
	authRepo "github.com/frahmantamala/chat-users/internal/auth/postgres"
	"github.com/frahmantamala/chat-users/internal/core/events"
	"github.com/frahmantamala/chat-users/internal/permission"
	permissionRepo "github.com/frahmantamala/chat-users/internal/permission/postgres"
	"github.com/frahmantamala/chat-users/internal/presence"
	"github.com/frahmantamala/chat-users/internal/transport/middleware"
	"github.com/frahmantamala/chat-users/internal/transport/rest"
	"github.com/frahmantamala/chat-users/internal/user"
	userRepo "github.com/frahmantamala/chat-users/internal/user/postgres"
	"github.com/frahmantamala/chat-users/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Redis  *redis.Client
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(context.Background(), deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	if deps.Redis != nil {
		if err := deps.Redis.Close(); err != nil {
			deps.Logger.Error("Redis close error", "error", err)
		}
	}
	if err := deps.DB.Close(); err != nil {
		deps.Logger.Error("Database close error", "error", err)
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(ctx context.Context, deps *Dependencies) error {
	cfg := deps.Config
	log := deps.Logger

	bus := events.NewEventBus(log)
	events.LogAuditTrail(bus, log)

	permissionStore := permission.NewStore(permissionRepo.NewConfigRepository(deps.Gorm), log)
	loadCtx, cancel := internal.WithStoreTimeout(ctx, 0)
	defer cancel()
	if err := permissionStore.Load(loadCtx); err != nil {
		return fmt.Errorf("load permissions: %w", err)
	}
	permissionService := permission.NewService(permissionStore, bus, log)

	var tracker presence.Tracker
	switch cfg.Presence.Backend {
	case "redis":
		tracker = presence.NewRedisTracker(deps.Redis, cfg.Presence.KeyOrDefault(), cfg.Presence.TTL)
	default:
		tracker = presence.NewMemoryTracker(cfg.Presence.TTL)
	}
	presence.ForgetDeletedUsers(bus, tracker, log)

	credentials := authRepo.NewRepository(deps.Gorm)
	users := userRepo.NewUserRepository(deps.Gorm)

	authService := auth.NewService(
		credentials,
		auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration),
		log,
	)

	userService := user.NewService(user.Deps{
		Users:       users,
		Credentials: credentials,
		Chats:       userRepo.NewChatRepository(deps.Gorm),
		Groups:      userRepo.NewGroupRepository(deps.Gorm),
		Presence:    tracker,
		Permissions: permissionService,
		Hasher:      auth.NewBcryptHasher(cfg.Security.BCryptCost),
		Events:      bus,
	}, log)

	var validator *middleware.OpenAPIValidator
	if cfg.OpenAPI.ValidateRequests {
		v, err := middleware.NewOpenAPIValidator(api.OpenAPI, log)
		if err != nil {
			return err
		}
		validator = v
	}

	metricsPath := ""
	if cfg.Observability.Metrics.Enabled {
		metricsPath = cfg.Observability.Metrics.Path
	}

	routerDeps := rest.RouterDeps{
		DB:                deps.DB.DB,
		AuthHandler:       auth.NewHandler(authService),
		UserHandler:       user.NewHandler(userService),
		PermissionHandler: permission.NewHandler(permissionService),
		Presence:          tracker,
		LastActive:        users,
		RateLimiter:       middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		OpenAPI:           validator,
		AllowedOrigins:    cfg.Server.Origins(),
		MetricsPath:       metricsPath,
		Logger:            log,
	}
	if deps.Redis != nil {
		routerDeps.Redis = deps.Redis
	}

	rest.RegisterAllRoutes(deps.Router, routerDeps)
	return nil
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	var rdb *redis.Client
	if config.Presence.Backend == "redis" {
		rdb, err = presence.Connect(ctx, presence.RedisConfig{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
			Timeout:  config.Redis.Timeout,
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to connect redis: %w", err)
		}
	}

	return &Dependencies{
		Config: config,
		Logger: logger.LoggerWrapper(),
		DB:     db,
		Gorm:   gdb,
		Redis:  rdb,
		Router: chi.NewRouter(),
	}, nil
}

// initDB opens the shared connection pool.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm layers gorm over the existing pool so both share one set of
// connections.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
}
