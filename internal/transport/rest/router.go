package rest

import (
	"log/slog"
	"time"

	"github.com/frahmantamala/wanderhub/internal/auth"
	"github.com/frahmantamala/wanderhub/internal/location"
	"github.com/frahmantamala/wanderhub/internal/rbac"
	"github.com/frahmantamala/wanderhub/internal/transport/middleware"
	"github.com/frahmantamala/wanderhub/internal/transport/swagger"
	"github.com/frahmantamala/wanderhub/internal/user"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
)

const (
	APIPrefix       = "/api/v1"
	RoleAdmin       = "admin"
	RoleEditor      = "editor"
	loginRateWindow = time.Minute
)

// Dependencies is everything the router needs; nil handlers leave their routes out.
type Dependencies struct {
	DB              *sqlx.DB
	Guard           *auth.Guard
	AuthHandler     *auth.Handler
	UserHandler     *user.Handler
	RBACHandler     *rbac.Handler
	LocationHandler *location.Handler
	Logger          *slog.Logger
	AllowedOrigins  []string
	LoginRateLimit  int
	IsDevelopment   bool
}

func RegisterAllRoutes(router *chi.Mux, deps Dependencies) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	healthHandler := NewHealthHandler(deps.DB, logger)

	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.SecureHeaders(logger, deps.IsDevelopment))
	router.Use(middleware.CORS(deps.AllowedOrigins))

	router.Get(swagger.SpecPath, swagger.SpecHandler)
	router.Handle("/swagger/*", swagger.Handler())

	router.Route(APIPrefix, func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if deps.AuthHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Use(middleware.Throttle(deps.LoginRateLimit, loginRateWindow, logger))
				sr.Post("/login", deps.AuthHandler.Login)
				sr.Post("/register", deps.AuthHandler.Register)
			})
		}

		if deps.LocationHandler != nil {
			r.Get("/locations", deps.LocationHandler.ListLocations)
			r.Get("/locations/{id}", deps.LocationHandler.GetLocation)
		}

		if deps.Guard == nil {
			return
		}
		guard := deps.Guard

		r.Group(func(pr chi.Router) {
			pr.Use(guard.Authenticate)
			pr.Use(guard.Require(auth.ActiveUser()))

			if h := deps.UserHandler; h != nil {
				pr.Get("/users/me", h.GetCurrentUser)
				pr.Patch("/users/me", h.UpdateCurrentUser)
				pr.Put("/users/me/password", h.ChangePassword)

				pr.Group(func(ar chi.Router) {
					ar.Use(guard.Require(auth.RoleIn(RoleAdmin)))
					ar.Get("/users", h.ListUsers)
					ar.Get("/users/{id}", h.GetUser)
				})
				pr.Group(func(sr chi.Router) {
					sr.Use(guard.Require(auth.Superuser()))
					sr.Patch("/users/{id}", h.UpdateUser)
					sr.Post("/users/{id}/deactivate", h.DeactivateUser)
				})
			}

			if h := deps.RBACHandler; h != nil {
				pr.Group(func(ar chi.Router) {
					ar.Use(guard.Require(auth.RoleIn(RoleAdmin)))
					ar.Get("/roles", h.ListRoles)
					ar.Get("/roles/{id}", h.GetRole)
					ar.Get("/permissions", h.ListPermissions)
					ar.Get("/permissions/{id}", h.GetPermission)
				})
				pr.Group(func(sr chi.Router) {
					sr.Use(guard.Require(auth.Superuser()))
					sr.Post("/roles", h.CreateRole)
					sr.Patch("/roles/{id}", h.UpdateRole)
					sr.Delete("/roles/{id}", h.DeleteRole)
					sr.Post("/permissions", h.CreatePermission)
					sr.Patch("/permissions/{id}", h.UpdatePermission)
					sr.Delete("/permissions/{id}", h.DeletePermission)
				})
			}

			if h := deps.LocationHandler; h != nil {
				pr.Group(func(er chi.Router) {
					er.Use(guard.Require(auth.RoleIn(RoleAdmin, RoleEditor)))
					er.Post("/locations", h.CreateLocation)
					er.Patch("/locations/{id}", h.UpdateLocation)
					er.Delete("/locations/{id}", h.DeleteLocation)
				})
			}
		})
	})
}
