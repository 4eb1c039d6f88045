package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yuzvak/retail-coordination-service/internal/config"
	"github.com/yuzvak/retail-coordination-service/internal/domain/express"
	"github.com/yuzvak/retail-coordination-service/internal/domain/store"
	"github.com/yuzvak/retail-coordination-service/internal/infrastructure/http/handlers"
	"github.com/yuzvak/retail-coordination-service/internal/pkg/logger"
)

type Server struct {
	server          *http.Server
	logger          *logger.Logger
	healthHandler   *handlers.HealthHandler
	checkoutHandler *handlers.CheckoutHandler
	stockHandler    *handlers.StockHandler
}

func NewServer(
	cfg *config.Config,
	storeService *store.Service,
	coordinator *express.Coordinator,
	db *sql.DB,
	redisClient *redis.Client,
	log *logger.Logger,
) *Server {
	checkoutHandler := handlers.NewCheckoutHandler(storeService, coordinator, log)
	stockHandler := handlers.NewStockHandler(storeService, log)
	healthHandler := handlers.NewHealthHandler(db, redisClient, log)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		server:          server,
		logger:          log,
		healthHandler:   healthHandler,
		checkoutHandler: checkoutHandler,
		stockHandler:    stockHandler,
	}
}

func (s *Server) ListenAndServe() error {
	s.server.Handler = s.setupRoutes()
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
