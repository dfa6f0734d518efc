package main

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/BradenHooton/inkwell/internal/auth"
	"github.com/BradenHooton/inkwell/internal/background"
	"github.com/BradenHooton/inkwell/internal/config"
	"github.com/BradenHooton/inkwell/internal/database"
	"github.com/BradenHooton/inkwell/internal/handlers"
	middlewareCustom "github.com/BradenHooton/inkwell/internal/middleware"
	"github.com/BradenHooton/inkwell/internal/repositories"
	"github.com/BradenHooton/inkwell/internal/routes"
	"github.com/BradenHooton/inkwell/internal/services"
	pkglogger "github.com/BradenHooton/inkwell/pkg/logger"
)

// revocationStore is satisfied by both the Postgres and Redis repositories.
type revocationStore interface {
	RevokeToken(ctx context.Context, jti, accountID string, expiresAt time.Time, reason string) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger, err := pkglogger.New(os.Stdout, pkglogger.Options{
		Env:       cfg.Server.Env,
		Level:     cfg.Server.LogLevel,
		SentryDSN: cfg.Server.SentryDSN,
	})
	if err != nil {
		logger.Warn("sentry disabled", slog.Any("error", err))
	}
	slog.SetDefault(logger)
	defer pkglogger.Flush(2 * time.Second)

	// exit flushes buffered Sentry events before terminating
	exit := func(code int) {
		pkglogger.Flush(2 * time.Second)
		os.Exit(code)
	}

	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("activation_mode", cfg.Lifecycle.ActivationMode),
		slog.String("mail_provider", cfg.Mail.Provider),
		slog.String("revocation_store", cfg.Auth.RevocationStore),
	)

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		exit(1)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		migrateCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := db.Migrate(migrateCtx)
		cancel()
		if err != nil {
			logger.Error("failed to run migrations", slog.Any("error", err))
			exit(1)
		}
	}

	// Initialize repositories
	accountRepo := repositories.NewAccountRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	auditRepo := repositories.NewAuditLogRepository(db)

	revocation, closeRevocation, err := newRevocationStore(cfg, db, logger)
	if err != nil {
		logger.Error("failed to initialize revocation store", slog.Any("error", err))
		exit(1)
	}
	defer closeRevocation()

	// Initialize cleanup manager
	cleanupManager := background.NewCleanupManager(revocation, accountRepo, logger, cfg.Auth.CleanupInterval)

	// Initialize token manager
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, auth.SessionPolicy{
		DefaultTTL:  cfg.Auth.SessionTTL,
		RememberTTL: cfg.Auth.SessionRememberTTL,
	})

	mailer, err := services.NewMailer(context.Background(), cfg.Mail, logger)
	if err != nil {
		logger.Error("failed to initialize mailer", slog.Any("error", err))
		exit(1)
	}

	// Initialize services
	auditService := services.NewAuditService(auditRepo, logger)
	notificationService := services.NewNotificationService(notificationRepo, logger)
	accountService := services.NewAccountService(
		accountRepo,
		notificationService,
		mailer,
		tokenManager,
		revocation,
		auditService,
		cfg.Lifecycle,
		logger,
	).WithRevocationHorizon(cfg.Auth.SessionRememberTTL)
	adminService := services.NewAdminService(accountRepo, auditService, logger)

	// Bootstrap first admin account if configured
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureAdminAccount(ctx, cfg, adminService, logger); err != nil {
		logger.Error("failed to ensure admin account", slog.Any("error", err))
	}
	cancel()

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.ClientMeta)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(cfg.Server.AllowedOrigins))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, routes.Handlers{
		Auth:          handlers.NewAuthHandler(accountService),
		User:          handlers.NewUserHandler(accountService),
		Admin:         handlers.NewAdminHandler(adminService),
		Audit:         handlers.NewAuditHandler(auditService),
		Notifications: handlers.NewNotificationHandler(notificationService),
		Health:        handlers.NewHealthHandler(db),
	}, routes.Security{
		TokenManager: tokenManager,
		Revocation:   revocation,
		Revoke:       auth.RevocationConfig{FailClosed: cfg.IsProduction()},
		Accounts:     accountRepo,
		RateLimit:    middlewareCustom.RateLimitConfig{RequestsPerMinute: cfg.Server.AuthRateLimitRPM},
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		exit(1)
	}

	logger.Info("server stopped gracefully")
}

// newRevocationStore picks the signed-out token store named by
// REVOCATION_STORE. The returned func releases any client it opened.
func newRevocationStore(cfg *config.Config, db *database.DB, logger *slog.Logger) (revocationStore, func(), error) {
	if cfg.Auth.RevocationStore != config.RevocationStoreRedis {
		return repositories.NewTokenRevocationRepository(db), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Redis.Addr, err)
	}

	logger.Info("using redis revocation store", slog.String("addr", cfg.Redis.Addr))
	return repositories.NewRedisRevocationRepository(client), func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close redis client", slog.Any("error", err))
		}
	}, nil
}

// ensureAdminAccount creates the first admin account if ADMIN_EMAIL and
// ADMIN_PASSWORD are set
func ensureAdminAccount(ctx context.Context, cfg *config.Config, admin *services.AdminService, logger *slog.Logger) error {
	if cfg.Auth.AdminEmail == "" || cfg.Auth.AdminPassword == "" {
		logger.Info("no ADMIN_EMAIL or ADMIN_PASSWORD set, skipping admin account creation")
		return nil
	}

	account, err := admin.EnsureAdmin(ctx, "Admin", cfg.Auth.AdminEmail, cfg.Auth.AdminPassword, cfg.Lifecycle.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to ensure admin account: %w", err)
	}

	logger.Info("admin account ready", slog.String("account_id", account.ID))
	return nil
}
