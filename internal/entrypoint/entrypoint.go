package entrypoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/Neutralizer/BookManipulator/internal/audit"
	"github.com/Neutralizer/BookManipulator/internal/auth"
	"github.com/Neutralizer/BookManipulator/internal/config"
	"github.com/Neutralizer/BookManipulator/internal/database"
	auditrepo "github.com/Neutralizer/BookManipulator/internal/database/audit"
	"github.com/Neutralizer/BookManipulator/internal/database/books"
	"github.com/Neutralizer/BookManipulator/internal/database/users"
	http_controllers "github.com/Neutralizer/BookManipulator/internal/http"
	"github.com/Neutralizer/BookManipulator/internal/readonly"
	"github.com/Neutralizer/BookManipulator/internal/scheduler"
	"github.com/Neutralizer/BookManipulator/internal/services"
	"github.com/Neutralizer/BookManipulator/internal/tasks"
)

// App holds the wired server and everything that must be released on shutdown.
type App struct {
	Router *gin.Engine
	DB     *database.Database

	cfg        *config.Config
	logger     *zap.Logger
	audit      *audit.Service
	limiter    *auth.RateLimiter
	sessionsDB *sql.DB // non-nil only when owned separately from DB
	taskClient *tasks.Client
	taskCancel context.CancelFunc
	scheduler  *scheduler.AuditCleanupScheduler
}

// OpenDatabase opens the configured database and seeds sample books under
// the dev profile.
func OpenDatabase(cfg *config.Config, logger *zap.Logger) (*database.Database, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.IsDev() {
		seeded, err := db.SeedSampleBooks()
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to seed sample books: %w", err)
		}
		if seeded > 0 {
			logger.Info("seeded sample books", zap.Int("count", seeded))
		}
	}
	return db, nil
}

// NewUserService builds the account service with the configured bcrypt cost.
func NewUserService(db *database.Database, cfg config.Auth) *services.UserService {
	return services.NewUserService(users.NewRepository(db.DB), auth.NewBcryptEncoder(cfg.BcryptCost))
}

// Build wires every component. Background workers are started; call Close
// to stop them.
func Build(cfg *config.Config, version string, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("starting book manipulator",
		zap.String("version", version),
		zap.String("profile", cfg.Profile),
		zap.String("database_driver", cfg.Database.Driver),
	)

	db, err := OpenDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}
	app := &App{DB: db, cfg: cfg, logger: logger}

	fail := func(err error) (*App, error) {
		app.Close(context.Background())
		return nil, err
	}

	bookService := services.NewBookService(books.NewRepository(db.DB))
	userService := NewUserService(db, cfg.Auth)

	if count, err := users.NewRepository(db.DB).Count(); err == nil && count == 0 {
		logger.Warn("no users found; create one with the create-user command")
	}

	app.audit = audit.NewService(auditrepo.NewRepository(db.DB), logger)

	secret := cfg.Auth.SessionSecret
	if secret == "" {
		secret, err = auth.GenerateSecret()
		if err != nil {
			return fail(fmt.Errorf("failed to generate session secret: %w", err))
		}
		logger.Warn("generated session secret; sessions and tokens will not survive a restart (set AUTH_SESSION_SECRET to persist)")
	}

	sessionsDB, err := app.openSessionsDB()
	if err != nil {
		return fail(err)
	}
	sessionManager, err := auth.NewSessionManager(sessionsDB, cfg.Auth)
	if err != nil {
		return fail(fmt.Errorf("failed to initialize session manager: %w", err))
	}

	app.limiter = auth.NewRateLimiter(auth.RateLimitConfigFrom(cfg.Auth))
	tokens := auth.NewTokenIssuer([]byte(secret), cfg.Auth.TokenExpiry)
	authMiddleware := auth.NewMiddleware(userService, sessionManager, tokens, app.limiter, logger)
	authController := auth.NewAuthController(userService, sessionManager, tokens, app.limiter, app.audit, logger)

	if err := app.startBackgroundWork(); err != nil {
		return fail(err)
	}

	readOnly := readonly.NewMiddleware(cfg.ReadOnly.Enabled)
	if readOnly.IsEnabled() {
		logger.Info("read-only mode enabled; write operations will be blocked")
	}

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	app.Router = http_controllers.NewRouter(http_controllers.RouterConfig{
		Books:          bookService,
		Users:          userService,
		Database:       db,
		Audit:          app.audit,
		AuthMiddleware: authMiddleware,
		AuthController: authController,
		SessionManager: sessionManager,
		CSRFSecret:     secret,
		SecureCookies:  cfg.Auth.SecureCookies,
		ReadOnly:       readOnly,
		Logger:         logger,
		Version:        version,
	})

	return app, nil
}

// openSessionsDB reuses the main database when it is sqlite. The session
// store only speaks sqlite, so other drivers get a separate file.
func (a *App) openSessionsDB() (*sql.DB, error) {
	if a.cfg.Database.DriverName() == config.DriverSQLite {
		sqlDB, err := a.DB.DB.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get SQL DB for sessions: %w", err)
		}
		return sqlDB, nil
	}

	sqlDB, err := sql.Open("sqlite3", a.cfg.Auth.SessionDBPath+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sessions database: %w", err)
	}
	a.sessionsDB = sqlDB
	a.logger.Info("sessions stored separately", zap.String("path", a.cfg.Auth.SessionDBPath))
	return sqlDB, nil
}

func (a *App) startBackgroundWork() error {
	if a.cfg.Tasks.Enabled {
		dbPath := a.cfg.Tasks.DBPath
		if dbPath == "" {
			dbPath = tasks.DBPathFor(a.cfg.Database.Path)
		}

		client, err := tasks.NewClient(dbPath, tasks.ConfigFrom(a.cfg.Tasks), a.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		a.taskClient = client
		client.Register(tasks.NewCleanupAuditEventsQueue(a.audit, a.logger))

		var ctx context.Context
		ctx, a.taskCancel = context.WithCancel(context.Background())
		go client.Start(ctx)
	}

	a.scheduler = scheduler.NewAuditCleanupScheduler(
		a.cfg.Audit.CleanupSchedule,
		a.cfg.Audit.RetentionDays,
		scheduler.QueueFor(a.taskClient),
		a.audit,
		a.logger,
	)
	if err := a.scheduler.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start audit cleanup scheduler: %w", err)
	}
	return nil
}

// Close stops background work and releases resources. It is safe on a
// partially built App.
func (a *App) Close(ctx context.Context) {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.taskClient != nil {
		a.taskClient.Stop(ctx)
		if a.taskCancel != nil {
			a.taskCancel()
		}
		if err := a.taskClient.Close(); err != nil {
			a.logger.Warn("error closing task client", zap.Error(err))
		}
	}
	a.limiter.Stop()
	a.audit.Wait()
	if a.sessionsDB != nil {
		if err := a.sessionsDB.Close(); err != nil {
			a.logger.Warn("error closing sessions database", zap.Error(err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.logger.Warn("error closing database", zap.Error(err))
		}
	}
}

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down gracefully.
func (a *App) Serve() error {
	timeout := time.Duration(a.cfg.Global.ShutdownTimeoutInSeconds) * time.Second
	addr := fmt.Sprintf("%s:%d", a.cfg.HTTP.Host, a.cfg.HTTP.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		a.Close(context.Background())
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}

	a.logger.Info("shutting down server", zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := srv.Shutdown(ctx)
	a.Close(ctx)
	if err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	a.logger.Info("server exiting")
	return nil
}

// Run builds the application and serves it.
func Run(cfg *config.Config, version string, logger *zap.Logger) error {
	app, err := Build(cfg, version, logger)
	if err != nil {
		return err
	}
	return app.Serve()
}
