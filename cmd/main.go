package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"oracle-service/internal/chain"
	"oracle-service/internal/climate"
	"oracle-service/internal/config"
	"oracle-service/internal/database/postgres"
	"oracle-service/internal/database/redis"
	"oracle-service/internal/event"
	"oracle-service/internal/handlers"
	"oracle-service/internal/repository"
	"oracle-service/internal/services"
	"oracle-service/internal/worker"

	"github.com/gofiber/fiber/v3"
)

func setupLogging() (*os.File, error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic: %v\n", r)
		}
	}()

	logDir := filepath.Join("/insurance", "log", "oracle_service")
	err := os.MkdirAll(logDir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	handler := slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(handler))

	return file, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		fmt.Printf("Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := postgres.Connect(cfg.PostgresCfg)
	if err != nil {
		slog.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient, err := redis.NewRedisClient(cfg.RedisCfg)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// Event publishing degrades gracefully: the publisher is nil-safe, so a
	// missing broker never blocks policy processing.
	var publisher *event.PolicyEventPublisher
	rabbitConn, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
	if err != nil {
		slog.Warn("RabbitMQ unavailable, policy events disabled", "error", err)
	} else {
		defer rabbitConn.Close()
		publisher = event.NewPolicyEventPublisher(rabbitConn)
	}

	signer, err := chain.NewSigner(cfg.LedgerCfg.SigningKey)
	if err != nil {
		slog.Error("Failed to load oracle signing key", "error", err)
		os.Exit(1)
	}
	slog.Info("Oracle signer loaded", "address", signer.Address().Hex())

	chainClient, err := chain.NewClient(
		cfg.LedgerCfg.RPCURL,
		cfg.LedgerCfg.ChainID,
		signer,
		cfg.LedgerCfg.FlightContractAddr,
		cfg.LedgerCfg.RainfallContractAddr,
	)
	if err != nil {
		slog.Error("Failed to connect to ledger RPC", "error", err, "rpc_url", cfg.LedgerCfg.RPCURL)
		os.Exit(1)
	}
	defer chainClient.Close()

	appRepo := repository.NewApplicationRepository(db)
	policyRepo := repository.NewPolicyRepository(db)
	claimRepo := repository.NewClaimRepository(db)

	rainfallSource := climate.NewCachedRainfallSource(
		climate.NewOpenMeteoClient(cfg.ClimateCfg.BaseURL),
		redisClient,
		cfg.ClimateCfg.CacheTTL,
	)
	flightOutcomes := services.NewHTTPFlightOutcomeSource(cfg.FlightDataCfg.BaseURL, cfg.FlightDataCfg.APIKey)

	flightRisk := services.NewFlightRiskService(cfg.PricingCfg)
	rainfallRisk := services.NewRainfallRiskService(rainfallSource, cfg.ClimateCfg, cfg.PricingCfg)
	payments := services.NewPaymentVerificationService(
		chainClient,
		cfg.LedgerCfg.FlightContractAddr,
		cfg.LedgerCfg.RainfallContractAddr,
	)
	signerService := services.NewOracleSignerService(signer)
	applicationService := services.NewApplicationService(appRepo, policyRepo, flightRisk, rainfallRisk, payments)
	reconciliation := services.NewReconciliationService(
		chainClient.FlightLedger(),
		chainClient.RainfallLedger(),
		flightOutcomes,
		rainfallSource,
		policyRepo,
		publisher,
		cfg.ReconcileCfg.GracePeriod,
		cfg.ReconcileCfg.CallTimeout,
	)

	reconcileWorker := worker.NewReconcileWorker(cfg.ReconcileCfg.Interval, reconciliation.Reconcile)
	reconcileWorker.Start()

	app := fiber.New()
	app.Get("/checkhealth", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("Oracle service is healthy")
	})

	handlers.NewApplicationHandler(applicationService, signerService).Register(app)
	handlers.NewPolicyHandler(policyRepo, claimRepo).Register(app)

	go func() {
		slog.Info("Starting oracle-service", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("Server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down oracle-service")
	reconcileWorker.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
