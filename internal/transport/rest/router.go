package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/chat-users/api"
	"github.com/frahmantamala/chat-users/internal/auth"
	"github.com/frahmantamala/chat-users/internal/permission"
	"github.com/frahmantamala/chat-users/internal/presence"
	"github.com/frahmantamala/chat-users/internal/transport/middleware"
	"github.com/frahmantamala/chat-users/internal/transport/swagger"
	"github.com/frahmantamala/chat-users/internal/user"
	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	DB                *sql.DB
	Redis             redis.UniversalClient
	AuthHandler       *auth.Handler
	UserHandler       *user.Handler
	PermissionHandler *permission.Handler
	Presence          presence.Tracker
	LastActive        presence.LastActiveStamper
	RateLimiter       *middleware.RateLimiter
	OpenAPI           *middleware.OpenAPIValidator
	AllowedOrigins    []string
	MetricsPath       string
	Logger            *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, deps RouterDeps) {
	healthHandler := NewHealthHandler(deps.DB, deps.Redis)
	roles := auth.NewRoleAuthorization(deps.Logger)

	router.Use(middleware.CORS(deps.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(deps.Logger, "/api/v1/health", "/api/v1/ping", deps.MetricsPath))
	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	router.Use(middleware.Metrics)

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(api.OpenAPI)
	})
	router.Handle("/swagger/*", swagger.Handler("/openapi.yml"))

	if deps.MetricsPath != "" {
		router.Handle(deps.MetricsPath, promhttp.Handler())
	}

	// request validation runs after auth so an anonymous caller sees 401
	// whatever the body looks like
	validate := func(next http.Handler) http.Handler { return next }
	if deps.OpenAPI != nil {
		validate = deps.OpenAPI.Middleware
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.With(validate).Post("/auths/signin", deps.AuthHandler.Login)

		r.Route("/users", func(ur chi.Router) {
			ur.Use(deps.AuthHandler.AuthMiddleware)
			ur.Use(presence.Heartbeat(deps.Presence, deps.LastActive, deps.Logger))
			ur.Use(roles.RequireVerified())

			ur.Group(func(vr chi.Router) {
				vr.Use(validate)

				vr.Get("/active", deps.UserHandler.GetActiveUsers)
				vr.Get("/groups", deps.UserHandler.GetUserGroups)
				vr.Get("/permissions", deps.PermissionHandler.GetUserPermissions)

				vr.Get("/user/settings", deps.UserHandler.GetSettings)
				vr.Post("/user/settings/update", deps.UserHandler.UpdateSettings)
				vr.Get("/user/info", deps.UserHandler.GetInfo)
				vr.Post("/user/info/update", deps.UserHandler.UpdateInfo)
			})

			ur.Group(func(ar chi.Router) {
				ar.Use(roles.RequireAdmin())
				if deps.RateLimiter != nil {
					ar.Use(deps.RateLimiter.Middleware)
				}
				ar.Use(validate)

				ar.Get("/", deps.UserHandler.GetUsers)
				ar.Get("/all", deps.UserHandler.GetAllUsers)

				ar.Get("/default/permissions", deps.PermissionHandler.GetDefaultPermissions)
				ar.Post("/default/permissions", deps.PermissionHandler.UpdateDefaultPermissions)
				ar.Get("/default/permissions/roles", deps.PermissionHandler.GetRoleBasedPermissions)
				ar.Post("/default/permissions/roles", deps.PermissionHandler.UpdateRoleBasedPermissions)
				ar.Get("/default/permissions/role/{role}", deps.PermissionHandler.GetRolePermissions)
				ar.Post("/default/permissions/role/{role}", deps.PermissionHandler.UpdateRolePermissions)

				ar.Post("/{user_id}/update", deps.UserHandler.UpdateUserByID)
				ar.Delete("/{user_id}", deps.UserHandler.DeleteUserByID)
			})

			ur.With(validate).Get("/{user_id}", deps.UserHandler.GetUserByID)
			ur.With(validate).Get("/{user_id}/active", deps.UserHandler.GetUserActiveStatus)
		})
	})
}
