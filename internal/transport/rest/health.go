// Package rest holds the non-GraphQL HTTP endpoints: health probes and
// cache statistics.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mirrosha26/CoreBackend/internal/query/cache"
)

// dbPinger defines the minimal interface for DB health checks.
type dbPinger interface {
	Ping(ctx context.Context) error
}

// cacheStats exposes result-cache counters.
type cacheStats interface {
	Snapshot() cache.Stats
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	db      dbPinger
	cache   cacheStats
	version string
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(db dbPinger, cache cacheStats, version string) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, version: version}
}

// HealthResponse is the JSON response for /health and /ready.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Live is the liveness probe. Always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Ready is the readiness probe. Pings DB: 200 if OK, 503 if not.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "down",
			Timestamp: time.Now(),
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Health is the full health check: DB ping with latency plus result
// cache effectiveness.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	components := make(map[string]CompStatus)
	overallStatus := "ok"

	start := time.Now()
	err := h.db.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		components["database"] = CompStatus{Status: "down"}
		overallStatus = "down"
	} else {
		components["database"] = CompStatus{
			Status:  "ok",
			Latency: latency.String(),
		}
	}

	stats := h.cache.Snapshot()
	components["query_cache"] = CompStatus{
		Status: "ok",
		Detail: fmt.Sprintf("hit_rate=%.2f live_keys=%d", stats.HitRate(), stats.LiveKeys),
	}

	status := http.StatusOK
	if overallStatus != "ok" {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, HealthResponse{
		Status:     overallStatus,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}

// CacheStats returns the raw result-cache counters.
func (h *HealthHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	stats := h.cache.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"hits":          stats.Hits,
		"misses":        stats.Misses,
		"sets":          stats.Sets,
		"invalidations": stats.Invalidations,
		"liveKeys":      stats.LiveKeys,
		"hitRate":       stats.HitRate(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
