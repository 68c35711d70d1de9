package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"debtflow/internal/auth"
	"debtflow/internal/backend"
	"debtflow/internal/cache"
	"debtflow/internal/config"
	"debtflow/internal/core"
	apphttp "debtflow/internal/http"
	applog "debtflow/internal/log"
	"debtflow/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	if cfg.JWTSecret == "" || cfg.AuthPass == "" {
		logger.Error("JWT_SECRET and AUTH_PASS must be set")
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}
	}()

	// Summary cache: Redis when configured, otherwise a process-local LRU.
	var summaryCache cache.Cache[core.DebtSummary]
	cacheManager := cache.NewManager()
	if cfg.RedisAddr != "" {
		summaryCache = cache.NewRedisCache[core.DebtSummary](cfg.RedisAddr, "debtflow", 5*time.Minute)
		logger.Info("Using Redis summary cache", "addr", cfg.RedisAddr)
	} else {
		lru := cache.NewLRUCache[core.DebtSummary](16, 5*time.Minute)
		cacheManager.Register(lru)
		summaryCache = lru
	}
	cacheManager.StartCleanup(time.Minute)
	defer cacheManager.Stop()

	summaries := services.NewSummaryService(result.Store, summaryCache, cfg.UpcomingWindow())

	// Typed nils must not reach the service as non-nil interfaces.
	var records services.DebtRecordReader
	if result.Records != nil {
		records = result.Records
	}
	var publisher services.SyncPublisher
	if result.AMQP != nil {
		publisher = result.AMQP
	}
	debts := services.NewDebtService(result.Store, records, publisher, summaries)

	authMgr := auth.NewManager(cfg.JWTSecret, cfg.AuthUser, cfg.AuthPass, cfg.SessionTTL)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Debts:     debts,
		Store:     result.Store,
		Summaries: summaries,
		Auth:      authMgr,
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting debtflow server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
