package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yuzvak/retail-coordination-service/internal/application/ports"
	"github.com/yuzvak/retail-coordination-service/internal/config"
	"github.com/yuzvak/retail-coordination-service/internal/domain/checkout"
	"github.com/yuzvak/retail-coordination-service/internal/domain/dispatch"
	"github.com/yuzvak/retail-coordination-service/internal/domain/express"
	"github.com/yuzvak/retail-coordination-service/internal/domain/store"
	"github.com/yuzvak/retail-coordination-service/internal/infrastructure/bus"
	"github.com/yuzvak/retail-coordination-service/internal/infrastructure/http/server"
	"github.com/yuzvak/retail-coordination-service/internal/infrastructure/monitoring"
	"github.com/yuzvak/retail-coordination-service/internal/infrastructure/optimizer"
	"github.com/yuzvak/retail-coordination-service/internal/infrastructure/persistence/memory"
	"github.com/yuzvak/retail-coordination-service/internal/infrastructure/persistence/postgres"
	"github.com/yuzvak/retail-coordination-service/internal/infrastructure/persistence/redis"
	"github.com/yuzvak/retail-coordination-service/internal/infrastructure/rpc"
	"github.com/yuzvak/retail-coordination-service/internal/infrastructure/scheduler"
	"github.com/yuzvak/retail-coordination-service/internal/pkg/clock"
	"github.com/yuzvak/retail-coordination-service/internal/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.json", "Path to configuration file")
	flag.Parse()

	log := logger.NewLogger()
	log.Info("Starting Retail Coordination Service")

	cfg, configErr := config.LoadConfig(*configPath)
	if configErr != nil {
		log.Fatal("Failed to load configuration", "error", configErr)
	}

	var db *sql.DB
	var stockRepo store.StockRepository
	if cfg.Database.Host != "" {
		conn, dbErr := postgres.NewConnection(cfg.Database)
		if dbErr != nil {
			log.Fatal("Failed to connect to database", "error", dbErr)
		}
		defer conn.Close()

		if migrationErr := postgres.RunMigrations(cfg.Database); migrationErr != nil {
			log.Fatal("Failed to run migrations", "error", migrationErr)
		}

		db = conn.GetDB()
		stockRepo = postgres.NewStockRepository(conn)

		dbMetricsCollector := monitoring.NewDBMetricsCollector(db)
		dbMetricsCollector.StartCollecting(context.Background(), 30*time.Second)
	} else {
		log.Warn("No database configured, using in-memory stock repository")
		stockRepo = memory.NewStockRepository()
	}

	var eventBus ports.EventBus
	var redisClient *goredis.Client
	if cfg.Redis.Host != "" {
		redisConn, err := redis.NewConnection(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", "error", err)
		}
		defer redisConn.Close()
		redisClient = redisConn.GetClient()
		eventBus = bus.NewRedisBus(redisClient, log)
	} else {
		log.Warn("No Redis configured, using in-process event bus")
		eventBus = bus.NewMemoryBus(log)
	}
	defer eventBus.Close()

	directory := rpc.NewDirectory(
		cfg.Store,
		time.Duration(cfg.Dispatch.StockQueryTimeoutSeconds)*time.Second,
		log,
	)
	solver := optimizer.NewSubprocess(
		cfg.Optimizer.Command,
		cfg.Optimizer.Args,
		cfg.Optimizer.Prompt,
		log,
	)
	dispatcher := dispatch.NewDispatcher(
		directory,
		solver,
		dispatch.LexicographicDistance,
		time.Duration(cfg.Optimizer.TimeoutSeconds)*time.Second,
		time.Duration(cfg.Dispatch.ReservationTimeoutSeconds)*time.Second,
		log,
	)

	storeService := store.NewService(cfg.Store.ID, cfg.Store.Name, stockRepo, eventBus, dispatcher, log)

	bank := rpc.NewBankClient(
		cfg.Bank.BaseURL,
		time.Duration(cfg.Bank.TimeoutSeconds)*time.Second,
		log,
	)
	for _, checkoutName := range cfg.Store.Checkouts {
		desk := checkout.NewCashDesk(
			checkoutName,
			cfg.Store.Name,
			stockRepo,
			bank,
			eventBus,
			cfg.Express.ItemLimit,
			log,
		)
		storeService.RegisterDesk(desk)
	}

	policy := express.Policy{
		EvaluationWindow: cfg.Express.EvaluationWindow(),
		EvaluationPeriod: cfg.Express.EvaluationPeriod(),
		Threshold:        cfg.Express.Threshold,
		ItemLimit:        cfg.Express.ItemLimit,
	}
	coordinator := express.NewCoordinator(cfg.Store.Name, policy, eventBus, clock.NewRealClock(), log)

	unsubscribeStore := storeService.Start()
	defer unsubscribeStore()
	unsubscribeCoordinator := coordinator.Start()
	defer unsubscribeCoordinator()

	lowStockScheduler := scheduler.NewLowStockScheduler(
		storeService,
		log,
		time.Duration(cfg.Stock.CheckIntervalSeconds)*time.Second,
	)

	httpServer := server.NewServer(cfg, storeService, coordinator, db, redisClient, log)

	serverCtx, serverStopCtx := context.WithCancel(context.Background())

	go lowStockScheduler.Start(serverCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigChan
		shutdownCtx, cancel := context.WithTimeout(serverCtx, 30*time.Second)
		defer cancel()

		log.Info("Shutting down server...")
		lowStockScheduler.Stop()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown error", "error", err)
		}

		serverStopCtx()
	}()

	log.Info("Server starting",
		"address", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		"store", cfg.Store.Name,
		"checkouts", len(cfg.Store.Checkouts),
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("Server failed", "error", err)
	}

	<-serverCtx.Done()
	log.Info("Server stopped")
}
