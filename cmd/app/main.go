package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/osmith/BadgeForge_Go/internal/catalog"
	"github.com/osmith/BadgeForge_Go/internal/concurrency"
	"github.com/osmith/BadgeForge_Go/internal/condition"
	"github.com/osmith/BadgeForge_Go/internal/config"
	"github.com/osmith/BadgeForge_Go/internal/database"
	"github.com/osmith/BadgeForge_Go/internal/database/postgres"
	"github.com/osmith/BadgeForge_Go/internal/evaluator"
	"github.com/osmith/BadgeForge_Go/internal/handler"
	"github.com/osmith/BadgeForge_Go/internal/leaderboard"
	"github.com/osmith/BadgeForge_Go/internal/processor"
	"github.com/osmith/BadgeForge_Go/internal/queue"
	"github.com/osmith/BadgeForge_Go/internal/reward"
	"github.com/osmith/BadgeForge_Go/internal/server"
	"github.com/osmith/BadgeForge_Go/internal/wallet"
	"github.com/osmith/BadgeForge_Go/internal/webhook"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	initLogger(cfg)
	handler.InitValidator()

	pool, err := database.NewPool(cfg.GetDBConnString(), 10, 30*time.Minute, time.Hour)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	ctx := context.Background()
	if err := database.InitSchema(ctx, pool); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	// Repositories
	events := postgres.NewEventRepository(pool)
	rules := postgres.NewRuleRepository(pool)
	entities := postgres.NewEntityRepository(pool)
	states := postgres.NewUserStateRepository(pool)
	wallets := postgres.NewWalletRepository(pool)
	history := postgres.NewRewardHistoryRepository(pool)
	webhooks := postgres.NewWebhookRepository(pool)

	cat, err := catalog.New(ctx, entities)
	if err != nil {
		log.Fatalf("Failed to load entity catalog: %v", err)
	}

	// Core engine wiring. Wallet, reward engine and processor each get their
	// own lock manager so a processing pass never blocks on itself.
	walletService := wallet.NewService(wallets, concurrency.NewLockManager(), cfg.WalletAllowNegative)
	conditionEngine := condition.NewEngine()
	rewardEngine := reward.NewEngine(walletService, states, history, cat, concurrency.NewLockManager())
	eval := evaluator.New(rules, events, wallets, states, cat, conditionEngine, rewardEngine,
		cfg.EvaluatorHistoryWindow, cfg.WalletAllowNegative)

	boards := leaderboard.New(wallets, states, history, cat,
		time.Duration(cfg.LeaderboardCacheTTLSeconds)*time.Second)
	cat.OnChange(boards.InvalidateCategory)

	deadLetter, err := processor.NewDeadLetterWriter(cfg.DeadLetterPath)
	if err != nil {
		log.Fatalf("Failed to open dead letter file: %v", err)
	}
	defer deadLetter.Close()

	q := queue.New(cfg.QueueCapacity)
	proc := processor.New(q, events, eval, concurrency.NewLockManager(), deadLetter, processor.Config{
		Workers:    cfg.ProcessorWorkers,
		MaxRetries: cfg.ProcessorMaxRetries,
	})
	proc.SetInvalidator(boards)
	if err := proc.Start(); err != nil {
		log.Fatalf("Failed to start queue processor: %v", err)
	}

	webhookService := webhook.NewService(webhooks)

	srv := server.NewServer(server.Options{
		Port:              cfg.Port,
		EngineID:          cfg.EngineID,
		SimulationEnabled: cfg.SimulationEnabled,
		CatalogStrict:     cfg.EventCatalogStrict,
		DBPool:            pool,
		Queue:             q,
		Catalog:           cat,
		Events:            events,
		Rules:             rules,
		States:            states,
		History:           history,
		Entities:          entities,
		Wallets:           walletService,
		Evaluator:         eval,
		Processor:         proc,
		Boards:            boards,
		Webhooks:          webhookService,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	case sig := <-stop:
		slog.Info("Shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}

	// Stop intake, then drain the workers.
	q.Close()
	proc.Stop()

	slog.Info("Shutdown complete")
}
