package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/courseboard/courseboard/internal/app"
	"github.com/courseboard/courseboard/internal/authz"
	"github.com/courseboard/courseboard/internal/courses"
	"github.com/courseboard/courseboard/internal/enrollment"
	"github.com/courseboard/courseboard/internal/identity"
	identityhttp "github.com/courseboard/courseboard/internal/identity/http"
	"github.com/courseboard/courseboard/internal/observability"
	"github.com/courseboard/courseboard/internal/platform/cache"
	"github.com/courseboard/courseboard/internal/platform/db"
	"github.com/courseboard/courseboard/internal/roles"
	roleshttp "github.com/courseboard/courseboard/internal/roles/http"
	"github.com/courseboard/courseboard/internal/shared"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if err := db.Migrate(cfg.MigrationsURL, cfg.PGDSN); err != nil {
		logger.Error("apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "courseboard_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	identityRepo := identity.NewRepository(pool)
	identityService := identity.NewService(identityRepo)

	policy := authz.NewPolicy(identityService)
	authzMiddleware := authz.Middleware{Policy: policy, Logger: logger}

	rolesService := roles.NewService(roles.NewRepository(pool))
	coursesService := courses.NewService(courses.NewRepository(pool))
	enrollmentService := enrollment.NewService(enrollment.NewRepository(pool), identityService)

	identityHandler := identityhttp.NewHandler(logger, identityService, sessionManager, policy, authzMiddleware)
	rolesHandler := roleshttp.NewHandler(logger, rolesService, authzMiddleware)
	coursesHandler := courses.NewHandler(logger, coursesService, authzMiddleware)
	enrollmentHandler := enrollment.NewHandler(logger, enrollmentService, coursesService, identityService, authzMiddleware)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessionManager,
		CSRFManager:       csrfManager,
		IdentityHandler:   identityHandler,
		RolesHandler:      rolesHandler,
		CoursesHandler:    coursesHandler,
		EnrollmentHandler: enrollmentHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
