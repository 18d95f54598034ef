package handler

import (
	"net/http"
	"runtime"
	"time"

	"erauchess-api/internal/cache"
	"erauchess-api/internal/credential"
	"erauchess-api/internal/middleware"
	"erauchess-api/internal/service"
	"erauchess-api/pkg/response"
)

// AdminHandler serves officer-only diagnostics.
type AdminHandler struct {
	club      *service.ClubService
	cache     cache.Cache
	pool      *credential.Pool
	startTime time.Time
}

// NewAdminHandler creates a new admin handler. cache may be nil.
func NewAdminHandler(club *service.ClubService, c cache.Cache, pool *credential.Pool) *AdminHandler {
	return &AdminHandler{
		club:      club,
		cache:     c,
		pool:      pool,
		startTime: time.Now(),
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	storeStats, err := h.club.Stats(r.Context())
	if err != nil {
		response.Error(w, r, err)
		return
	}

	stats := make(map[string]any)

	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["store"] = storeStats

	cacheBackend := "none"
	if h.cache != nil {
		cacheBackend = h.cache.Backend()
	}
	stats["cache"] = map[string]any{"backend": cacheBackend}

	if h.pool != nil {
		stats["digest"] = map[string]any{
			"workers":    h.pool.Size(),
			"iterations": credential.Iterations,
		}
	}

	if tok, ok := middleware.TokenFromContext(r.Context()); ok {
		stats["requested_by"] = tok.User
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]any{
		"alloc_mb":      float64(memStats.Alloc) / 1024 / 1024,
		"sys_mb":        float64(memStats.Sys) / 1024 / 1024,
		"heap_inuse_mb": float64(memStats.HeapInuse) / 1024 / 1024,
		"num_gc":        memStats.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}

	stats["runtime"] = map[string]any{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, r, stats)
}
