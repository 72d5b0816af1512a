// Package main is the entry point for the tour group settlement API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"tourledger/internal/domain/auth"
	"tourledger/internal/domain/billing"
	"tourledger/internal/domain/settlement"
	v1 "tourledger/internal/infrastructure/http/v1"
	"tourledger/internal/infrastructure/metrics"
	"tourledger/internal/infrastructure/storage/postgres"
	"tourledger/internal/infrastructure/storage/postgres/settlement_repo"
	"tourledger/pkg/logger"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log)
	log.Info("starting tourledger server")

	// --- Database ---
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	pool.LogStats(ctx)

	txManager := postgres.NewTxManager(pool)
	repo := settlement_repo.New(txManager)

	// --- Services ---
	settlementService, err := settlement.NewService(settlement.ServiceConfig{
		Repo:      repo,
		Directory: repo,
		TxManager: txManager,
		Config:    cfg.Settlement,
	})
	if err != nil {
		log.Fatalw("failed to create settlement service", "error", err)
	}
	billService := billing.NewService(repo, txManager, cfg.Settlement.MaxGroupSize)

	log.Infow("settlement engine configured",
		"max_group_size", cfg.Settlement.MaxGroupSize,
		"admin_cost_fallback", cfg.Settlement.AdministrativeCostFallback.String(),
	)

	// --- Metrics ---
	m := metrics.New()
	m.RegisterPoolStats(func() (int32, int32, int32) {
		s := pool.Stats()
		return s.TotalConns, s.AcquiredConns, s.IdleConns
	})

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		DB:                pool,
		Logger:            log,
		JWTValidator:      auth.NewJWTService(cfg.JWT),
		SettlementService: settlementService,
		BillService:       billService,
		Metrics:           m,
		Development:       cfg.Logger.Development,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      gzhttp.GzipHandler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
