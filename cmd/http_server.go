package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/teamideas/idea-portal/internal"
	"github.com/teamideas/idea-portal/internal/backend"
	"github.com/teamideas/idea-portal/internal/core/events"
	"github.com/teamideas/idea-portal/internal/dashboard"
	"github.com/teamideas/idea-portal/internal/guard"
	"github.com/teamideas/idea-portal/internal/idea"
	"github.com/teamideas/idea-portal/internal/session"
	"github.com/teamideas/idea-portal/internal/session/storage"
	"github.com/teamideas/idea-portal/internal/transport/rest"
	"github.com/teamideas/idea-portal/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server that fronts the idea service`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
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

	// Signal handling for graceful shutdown
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
		if sqlDB, err := deps.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				deps.Logger.Error("Database close error", "error", err)
			}
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.InitWithFormat(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	db, err := initStorage(config.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credential storage: %w", err)
	}

	bus := events.NewEventBus(lg)
	registerAuditSubscribers(bus, lg)

	client := backend.NewClient(backend.Config{
		BaseURL: config.Backend.BaseURL,
		Timeout: config.Backend.Timeout,
	}, lg)

	credentialRepo := storage.NewCredentialRepository(db)
	sessionStore := session.NewStore(credentialRepo, client, config.Session.Secret, lg)

	ideaService := idea.NewService(client, bus, lg)
	expansion := dashboard.NewExpansionState()

	secureCookies := strings.HasPrefix(config.Server.BaseURL, "https://")
	sessionHandler := session.NewHandler(sessionStore, ideaService, bus, config.Session.Cookie(), secureCookies)
	ideaHandler := idea.NewHandler(ideaService, sessionStore)
	dashboardHandler, err := dashboard.NewHandler(client, sessionStore, ideaService, expansion, config.Google.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard handler: %w", err)
	}

	guardMW := guard.NewMiddleware(sessionStore, config.Session.Cookie(), lg)

	router := chi.NewRouter()
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap sql db: %w", err)
	}
	rest.RegisterAllRoutes(router, sqlDB, guardMW, sessionHandler, ideaHandler, dashboardHandler, config.Server.AllowedOrigins, lg)

	return &Dependencies{
		Config: config,
		DB:     db,
		Router: router,
		Logger: lg,
	}, nil
}

// initStorage opens the credential store. SQLite is the single-node default
// and migrates its own schema; postgres deployments run the migrate command.
func initStorage(cfg internal.SessionConfig) (*gorm.DB, error) {
	switch cfg.Driver() {
	case internal.StorageDriverPostgres:
		sqlxDB, err := sqlx.Connect("pgx", cfg.StorageDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		sqlxDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlxDB.SetMaxIdleConns(cfg.MaxIdleConns)
		if cfg.ConnMaxLifetime > 0 {
			sqlxDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}

		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to open gorm over postgres: %w", err)
		}
		return db, nil

	default:
		db, err := gorm.Open(gormsqlite.Open(cfg.StorageDSN), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		if err := db.AutoMigrate(&storage.Credential{}); err != nil {
			return nil, fmt.Errorf("failed to migrate sqlite store: %w", err)
		}
		return db, nil
	}
}

// registerAuditSubscribers writes an audit line for every portal event.
func registerAuditSubscribers(bus *events.EventBus, lg *slog.Logger) {
	audit := func(ctx context.Context, event events.Event) error {
		lg.Info("audit",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
			"payload", event.Payload())
		return nil
	}

	bus.Subscribe(events.EventTypeUserSignedIn, audit)
	bus.Subscribe(events.EventTypeUserSignedOut, audit)
	bus.Subscribe(events.EventTypeIdeaSubmitted, audit)
}
