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

	"leadcapture-platform/internal/analytics"
	"leadcapture-platform/internal/audit"
	"leadcapture-platform/internal/auth"
	"leadcapture-platform/internal/clients"
	"leadcapture-platform/internal/config"
	"leadcapture-platform/internal/httpapi"
	"leadcapture-platform/internal/leads"
	"leadcapture-platform/internal/monitoring"
	"leadcapture-platform/internal/telephony"
	"leadcapture-platform/pkg/logger"
	"leadcapture-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	// Local development convenience; production injects real env vars.
	_ = godotenv.Load()

	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := monitoring.Init()

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	clientSvc := clients.NewService(clients.NewRepository(db))
	leadSvc := leads.NewService(leads.NewRepository(db))
	auditSvc := audit.NewService(audit.NewPostgresRepo(db))
	analyticsSvc := analytics.NewService(analytics.NewPostgresRepo(db))

	// Webhook token lookups are hot and read-mostly; front them with Redis.
	resolver := clients.NewCachedResolver(clientSvc, rdb, cfg.Webhook.TokenCacheTTL)

	webhook := telephony.WebhookHandler{
		Clients: resolver,
		Leads:   leadSvc,
		Metrics: metrics,
	}

	api := httpapi.Handlers{
		Auth:      authManager,
		Clients:   clientSvc,
		Leads:     leadSvc,
		Analytics: analyticsSvc,
		Audit:     auditSvc,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	r.Use(metrics.GinMiddleware())

	registerRoutes(r, routeDeps{
		cfg:     cfg,
		db:      db,
		rdb:     rdb,
		metrics: metrics,
		auth:    authManager,
		webhook: webhook,
		api:     api,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
