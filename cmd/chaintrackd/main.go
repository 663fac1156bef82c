package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"chaintrack/config"
	"chaintrack/internal/messaging/producer"
	ledger "chaintrack/ledger/client"
	"chaintrack/ledger/client/ethereum"
	"chaintrack/orchestrator"
	httphandler "chaintrack/service/http"
	"chaintrack/storage/cache"
	"chaintrack/storage/store"
	"chaintrack/syncer"
	"chaintrack/wallet"
)

// Service configuration file path
const serviceConfigPath = "./config/chaintrack.defaults.yml"

func parseDurationOr(logger *log.Logger, name, s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		logger.Printf("Warning: Invalid %s '%s', using default %s", name, s, fallback)
		return fallback
	}
	return d
}

func main() {
	logger := log.New(os.Stdout, "[CHAINTRACK] ", log.LstdFlags|log.Lshortfile)
	logger.Println("Starting chaintrack service...")

	// 1. Load service configuration
	cfg, err := config.LoadServiceConfig(serviceConfigPath)
	if err != nil {
		logger.Fatalf("Failed to load service configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Initialize the submission-attempt journal
	var journal store.Store
	if cfg.Database.DSN != "" {
		logger.Println("Initializing database connection...")
		journal, err = store.NewPostgresStore(ctx, cfg.Database.DSN, cfg.Database.MinConnections, cfg.Database.MaxConnections, logger)
		if err != nil {
			logger.Fatalf("Failed to initialize database store: %v", err)
		}
	} else {
		logger.Println("database.dsn not configured, using in-process attempt journal.")
		journal = store.NewMemoryStore(logger)
	}
	defer journal.Close()

	// 3. Initialize the ledger client and wallet
	ledgerCfg, err := config.LoadLedgerConfig(cfg.LedgerClientConfigPath)
	if err != nil {
		logger.Fatalf("Failed to load ledger configuration: %v", err)
	}
	chainCfg, err := ledger.LoadChainSpecificConfig(ledgerCfg.LedgerType, filepath.Dir(cfg.LedgerClientConfigPath))
	if err != nil {
		logger.Fatalf("Failed to load chain-specific configuration: %v", err)
	}
	ledgerCfg.ChainSpecific = chainCfg

	client, err := ledger.New(ledgerCfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize ledger client: %v", err)
	}
	defer client.Close()

	ledgerTimeout := time.Duration(ledgerCfg.TimeoutSeconds) * time.Second
	var w wallet.Wallet
	if ethCfg, ok := chainCfg.(*ethereum.EthereumConfig); ok {
		w, err = wallet.NewEthereumWallet(ethCfg, ledgerTimeout, logger)
		if err != nil {
			logger.Fatalf("Failed to initialize wallet: %v", err)
		}
	} else {
		if cfg.Identity == "" {
			logger.Fatalf("identity must be configured when running with the mock ledger")
		}
		w = wallet.NewMockWallet(cfg.Identity, logger)
	}
	defer w.Close()

	// 4. Initialize the outcome producer
	var outcomes producer.Producer
	if len(cfg.KafkaProducer.Brokers) == 1 && cfg.KafkaProducer.Brokers[0] == "mock://local" {
		logger.Println("Kafka brokers set to mock://local, using in-process outcome producer.")
		outcomes = producer.NewMockProducer(logger)
	} else {
		outcomes, err = producer.NewKafkaProducer(cfg.KafkaProducer, logger)
		if err != nil {
			logger.Fatalf("Failed to initialize Kafka producer: %v", err)
		}
	}
	defer outcomes.Close()

	// 5. Start the synchronization engine, scoped to the wallet identity
	entityCache := cache.New()
	engine := syncer.New(cfg.Sync, client, entityCache, logger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		engine.Run(ctx)
	}()
	engine.Connect(ctx, w.Address())

	// 6. Create the orchestrator and HTTP boundary
	orch := orchestrator.New(client, w, entityCache, journal, outcomes, logger)
	handler := httphandler.NewHandler(orch, entityCache, engine, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/parties", handler.Parties)
	mux.HandleFunc("/v1/products", handler.Products)
	mux.HandleFunc("/v1/history", handler.ProductHistory)
	mux.HandleFunc("/v1/transactions", handler.SubmitTransaction)
	mux.HandleFunc("/v1/attempts", handler.Attempts)
	mux.HandleFunc("/health", handler.HealthCheck)

	httpServer := &http.Server{
		Addr:    cfg.API.ListenAddress,
		Handler: mux,
		// Submissions wait for ledger inclusion, so writes get a long timeout.
		ReadTimeout:  parseDurationOr(logger, "api.read_timeout", cfg.API.ReadTimeout, 10*time.Second),
		WriteTimeout: parseDurationOr(logger, "api.write_timeout", cfg.API.WriteTimeout, 120*time.Second),
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Printf("HTTP server listening on %s", cfg.API.ListenAddress)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("HTTP server startup failed: %v", err)
		}
		logger.Println("HTTP server stopped listening.")
	}()

	// 7. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Printf("Received shutdown signal: %s, starting graceful shutdown...", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP server shutdown failed: %v", err)
	} else {
		logger.Println("HTTP server shutdown.")
	}

	engine.Disconnect()
	cancel()
	wg.Wait()
	logger.Println("Chaintrack service shutdown.")
}
