package scheduler

import (
	"context"
	"time"

	"github.com/yuzvak/retail-coordination-service/internal/domain/store"
	"github.com/yuzvak/retail-coordination-service/internal/pkg/logger"
)

// LowStockScheduler re-runs the store's low-stock check on a fixed
// interval. Rebalancing has no retry logic of its own; this periodic
// re-check is what picks up shortages a failed dispatch left behind.
type LowStockScheduler struct {
	store    *store.Service
	logger   *logger.Logger
	interval time.Duration
	stopChan chan struct{}
}

func NewLowStockScheduler(storeService *store.Service, log *logger.Logger, interval time.Duration) *LowStockScheduler {
	return &LowStockScheduler{
		store:    storeService,
		logger:   log,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (s *LowStockScheduler) Start(ctx context.Context) {
	s.logger.Info("Starting low-stock scheduler", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Low-stock scheduler stopped")
			return
		case <-s.stopChan:
			s.logger.Info("Low-stock scheduler stopped")
			return
		case <-ticker.C:
			if err := s.store.CheckLowStock(ctx); err != nil {
				s.logger.Error("Scheduled low-stock check failed", "error", err)
			}
		}
	}
}

func (s *LowStockScheduler) Stop() {
	close(s.stopChan)
}
