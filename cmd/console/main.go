package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rbac-console/console/internal/app"
	"github.com/rbac-console/console/internal/auth"
	"github.com/rbac-console/console/internal/observability"
	"github.com/rbac-console/console/internal/permissions"
	"github.com/rbac-console/console/internal/platform/cache"
	"github.com/rbac-console/console/internal/rbac"
	"github.com/rbac-console/console/internal/rbacapi"
	"github.com/rbac-console/console/internal/roles"
	"github.com/rbac-console/console/internal/setting"
	"github.com/rbac-console/console/internal/shared"
	"github.com/rbac-console/console/internal/users"
	"github.com/rbac-console/console/internal/view"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	metrics := observability.NewMetrics()

	api, err := rbacapi.NewClient(cfg.APIBaseURL, cfg.APITimeout, rbacapi.WithObserver(metrics))
	if err != nil {
		logger.Error("rbac api client", slog.Any("error", err))
		os.Exit(1)
	}

	engine, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	gate := rbac.NewGate(rbac.NewTable(rbac.DefaultRoutes()))
	rbacMiddleware := rbac.Middleware{Gate: gate, Logger: logger, Observer: metrics}
	pages := &view.Renderer{Engine: engine, CSRF: csrfManager, Gate: gate, Logger: logger}

	authHandler := auth.NewHandler(logger, auth.NewService(api), pages, sessionManager, csrfManager)
	usersHandler := users.NewHandler(logger, pages, api, rbacMiddleware)
	rolesHandler := roles.NewHandler(logger, pages, api, rbacMiddleware)
	permissionsHandler := permissions.NewHandler(logger, pages, api, rbacMiddleware)
	settingHandler := setting.NewHandler(logger, pages, api, usersHandler, rolesHandler, permissionsHandler)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Pages:              pages,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		RBACMiddleware:     rbacMiddleware,
		AuthHandler:        authHandler,
		SettingHandler:     settingHandler,
		UsersHandler:       usersHandler,
		RolesHandler:       rolesHandler,
		PermissionsHandler: permissionsHandler,
		Metrics:            metrics,
		AccessLog:          !cfg.IsProduction(),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("api", cfg.APIBaseURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
