package handlers

import (
	"database/sql"
	"net/http"
	"runtime"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yuzvak/retail-coordination-service/internal/infrastructure/http/response"
	"github.com/yuzvak/retail-coordination-service/internal/pkg/logger"
)

// HealthHandler reports node health. The db and redis clients are optional;
// a store node running on the in-memory bus and repository reports them as
// not configured.
type HealthHandler struct {
	db        *sql.DB
	redis     *redis.Client
	log       *logger.Logger
	startTime time.Time
}

func NewHealthHandler(db *sql.DB, redisClient *redis.Client, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		redis:     redisClient,
		log:       log,
		startTime: time.Now().UTC(),
	}
}

type MemoryMetrics struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"total_alloc"`
	Sys        uint64 `json:"sys"`
	NumGC      uint32 `json:"num_gc"`
}

type ServicesStatus struct {
	App      string `json:"app"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

type HealthData struct {
	ServicesStatus ServicesStatus `json:"services_status"`
	Uptime         string         `json:"uptime"`
	Memory         MemoryMetrics  `json:"memory"`
	Goroutines     int            `json:"goroutines"`
}

func (h *HealthHandler) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbStatus := "NOT_CONFIGURED"
		if h.db != nil {
			dbStatus = "UP"
			if err := h.db.Ping(); err != nil {
				dbStatus = "DOWN"
			}
		}

		redisStatus := "NOT_CONFIGURED"
		if h.redis != nil {
			redisStatus = "UP"
			if err := h.redis.Ping(r.Context()).Err(); err != nil {
				redisStatus = "DOWN"
			}
		}

		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		data := HealthData{
			ServicesStatus: ServicesStatus{
				App:      "UP",
				Database: dbStatus,
				Redis:    redisStatus,
			},
			Uptime: time.Since(h.startTime).String(),
			Memory: MemoryMetrics{
				Alloc:      memStats.Alloc,
				TotalAlloc: memStats.TotalAlloc,
				Sys:        memStats.Sys,
				NumGC:      memStats.NumGC,
			},
			Goroutines: runtime.NumGoroutine(),
		}

		statusCode := http.StatusOK
		if dbStatus == "DOWN" || redisStatus == "DOWN" {
			statusCode = http.StatusServiceUnavailable
		}

		response.WriteJSON(w, statusCode, response.DataResponse[HealthData]{Data: data})
	}
}
