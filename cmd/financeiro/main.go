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

	"github.com/cbmgo/financeiro/internal/app"
	"github.com/cbmgo/financeiro/internal/audit"
	"github.com/cbmgo/financeiro/internal/auth"
	"github.com/cbmgo/financeiro/internal/ledger"
	"github.com/cbmgo/financeiro/internal/observability"
	"github.com/cbmgo/financeiro/internal/platform/cache"
	"github.com/cbmgo/financeiro/internal/platform/db"
	"github.com/cbmgo/financeiro/internal/platform/pdf"
	"github.com/cbmgo/financeiro/internal/processos"
	"github.com/cbmgo/financeiro/internal/rbac"
	"github.com/cbmgo/financeiro/internal/reports"
	"github.com/cbmgo/financeiro/internal/settings"
	"github.com/cbmgo/financeiro/internal/users"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, aggregate caching disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	pdfClient := pdf.NewClient(cfg.GotenbergURL)
	if err := pdfClient.Ping(ctx); err != nil {
		logger.Warn("gotenberg ping", slog.Any("error", err))
	}

	rbacService := rbac.NewService(pool)
	if err := rbacService.Seed(ctx); err != nil {
		logger.Error("seed permissions", slog.Any("error", err))
		os.Exit(1)
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	recorder := audit.NewRecorder(pool)
	googleClient := auth.NewGoogleClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)
	authService := auth.NewService(auth.NewRepository(pool), rbacService, tokens, googleClient, recorder)

	usersService := users.NewService(users.NewRepository(pool), rbacService)
	auditService := audit.NewService(pool)

	ledgerCache := ledger.NewCache(redisClient, 10*time.Minute)
	ledgerService := ledger.NewService(logger, ledger.NewRepository(pool), ledgerCache, pdfClient)
	processosService := processos.NewService(logger, processos.NewRepository(pool), ledgerCache)
	settingsService := settings.NewService(logger, settings.NewRepository(pool), cfg.UploadDir)
	reportsService := reports.NewService(reports.NewRepository(pool), pdfClient)

	metrics := observability.NewMetrics()
	rbacMW := rbac.Middleware{Tokens: tokens, Logger: logger}

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		AuthHandler:        auth.NewHandler(logger, authService),
		UsersHandler:       users.NewHandler(logger, usersService),
		PermissionsHandler: rbac.NewPermissionsHandler(logger, rbacService),
		ReportsHandler:     reports.NewHandler(logger, reportsService, rbacMW),
		LedgerHandler:      ledger.NewHandler(logger, ledgerService),
		ProcessosHandler:   processos.NewHandler(logger, processosService),
		SettingsHandler:    settings.NewHandler(logger, settingsService),
		AuditHandler:       audit.NewHandler(logger, auditService),
		RBACMiddleware:     rbacMW,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
			os.Exit(1)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server run", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
