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

	"github.com/frahmantamala/wanderhub/internal"
	"github.com/frahmantamala/wanderhub/internal/auth"
	"github.com/frahmantamala/wanderhub/internal/core/events"
	"github.com/frahmantamala/wanderhub/internal/location"
	locationPostgres "github.com/frahmantamala/wanderhub/internal/location/postgres"
	"github.com/frahmantamala/wanderhub/internal/rbac"
	rbacPostgres "github.com/frahmantamala/wanderhub/internal/rbac/postgres"
	"github.com/frahmantamala/wanderhub/internal/transport"
	"github.com/frahmantamala/wanderhub/internal/transport/rest"
	"github.com/frahmantamala/wanderhub/internal/transport/swagger"
	"github.com/frahmantamala/wanderhub/internal/user"
	userPostgres "github.com/frahmantamala/wanderhub/internal/user/postgres"
	"github.com/frahmantamala/wanderhub/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 30 * time.Second

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startHTTPServer(cmd.Context())
	},
}

type Dependencies struct {
	Config   *internal.Config
	GormDB   *gorm.DB
	DB       *sqlx.DB
	EventBus *events.EventBus
	Router   *chi.Mux
	Logger   *slog.Logger
}

func startHTTPServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	deps, err := initializeDependencies(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	lg := deps.Logger

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
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
	defer signal.Stop(sigChan)

	serverErrChan := make(chan error, 1)
	go func() {
		lg.Info("starting HTTP server", "address", addr)
		serverErrChan <- server.ListenAndServe()
	}()

	var runErr error
	select {
	case sig := <-sigChan:
		lg.Info("received signal, shutting down", "signal", sig.String())
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		lg.Error("server shutdown error", "error", err)
	}
	deps.EventBus.Close()
	if err := deps.EventBus.Wait(shutdownCtx); err != nil {
		lg.Warn("event handlers still running at shutdown", "error", err)
	}
	if err := deps.DB.Close(); err != nil {
		lg.Error("database close error", "error", err)
	}

	lg.Info("server stopped")
	return runErr
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Logging.Level, config.Logging.Format)
	lg := logger.LoggerWrapper()

	gormDB, err := initDB(ctx, config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database pool: %w", err)
	}

	if _, err := swagger.Load(ctx); err != nil {
		return nil, err
	}

	bus := events.NewEventBus(lg)
	registerAccountEventHandlers(bus, lg)

	rbacService := rbac.NewService(rbacPostgres.NewRBACRepository(gormDB), lg)
	userService := user.NewService(
		userPostgres.NewUserRepository(gormDB),
		rbacService,
		bus,
		config.Security.BCryptCost,
		lg,
	)
	locationService := location.NewService(locationPostgres.NewLocationRepository(gormDB), lg)

	tokens := auth.NewJWTTokenGenerator(
		config.Security.JWTSecret,
		config.Security.AccessTokenDuration,
		config.Security.JWTIssuer,
	)
	guard := auth.NewGuard(tokens, auth.NewIdentityResolver(userService, lg), lg)
	authService := auth.NewService(userService, userService, tokens, lg)

	db := sqlx.NewDb(sqlDB, "pgx")
	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Dependencies{
		DB:              db,
		Guard:           guard,
		AuthHandler:     auth.NewHandler(authService),
		UserHandler:     user.NewHandler(userService),
		RBACHandler:     rbac.NewHandler(rbacService),
		LocationHandler: location.NewHandler(transport.NewBaseHandler(lg), locationService),
		Logger:          lg,
		AllowedOrigins:  config.Server.Origins(),
		LoginRateLimit:  config.Server.LoginRateLimit,
		IsDevelopment:   !isEnvOnly(),
	})

	return &Dependencies{
		Config:   config,
		GormDB:   gormDB,
		DB:       db,
		EventBus: bus,
		Router:   router,
		Logger:   lg,
	}, nil
}

// initDB opens the gorm session over pgx and applies the pool settings.
func initDB(ctx context.Context, cfg internal.DatabaseConfig) (*gorm.DB, error) {
	gormDB, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := internal.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return gormDB, nil
}
