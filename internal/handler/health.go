package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/cleberrangel/timelyai-api/internal/database"
	"github.com/cleberrangel/timelyai-api/internal/metrics"
	"github.com/cleberrangel/timelyai-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

const (
	// acima disso o hub é reportado como degradado
	maxWSConnections = 1000
	maxHeapMB        = 512
	probeTimeout     = 2 * time.Second
)

// Pinger é um serviço remoto cuja disponibilidade entra no health check
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serve /health/* e /metrics. Todos os campos são opcionais:
// db é nil com STORAGE=memory.
type HealthHandler struct {
	db          *sql.DB
	hub         *websocket.Hub
	recommender Pinger
	version     string
	started     time.Time
}

func NewHealthHandler(db *sql.DB, hub *websocket.Hub, recommender Pinger, version string) *HealthHandler {
	return &HealthHandler{db: db, hub: hub, recommender: recommender, version: version, started: time.Now()}
}

// Live GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready GET /health/ready: só o que impede de atender (banco e memória)
func (h *HealthHandler) Ready(c *gin.Context) {
	h.report(c, h.probe(c.Request.Context(), false))
}

// Detailed GET /health: inclui hub e backend de recomendações
func (h *HealthHandler) Detailed(c *gin.Context) {
	h.report(c, h.probe(c.Request.Context(), true))
}

func (h *HealthHandler) probe(ctx context.Context, detailed bool) map[string]metrics.HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out := map[string]metrics.HealthStatus{
		"memory": metrics.CheckMemoryHealth(maxHeapMB),
	}
	if h.db != nil {
		out["database"] = metrics.CheckDatabaseHealth(ctx, h.db)
	}
	if !detailed {
		return out
	}

	if h.hub != nil {
		ws := metrics.HealthStatus{Status: metrics.StatusHealthy}
		if h.hub.Connections() > maxWSConnections {
			ws = metrics.HealthStatus{Status: metrics.StatusDegraded, Message: "WebSocket connections near limit"}
		}
		out["websocket"] = ws
	}
	if h.recommender != nil {
		// Fora do ar não derruba a API, só a degrada
		start := time.Now()
		rec := metrics.HealthStatus{Status: metrics.StatusHealthy}
		if err := h.recommender.Ping(ctx); err != nil {
			rec = metrics.HealthStatus{Status: metrics.StatusDegraded, Message: err.Error()}
		}
		rec.Latency = time.Since(start).Milliseconds()
		out["recommender"] = rec
	}
	return out
}

// healthResponse acrescenta as estatísticas do pool quando há banco
type healthResponse struct {
	metrics.HealthCheck
	Pool *database.PoolStats `json:"database_pool,omitempty"`
}

func (h *HealthHandler) report(c *gin.Context, components map[string]metrics.HealthStatus) {
	resp := healthResponse{HealthCheck: metrics.HealthCheck{
		Status:     metrics.DetermineOverallStatus(components),
		Version:    h.version,
		Uptime:     time.Since(h.started).Round(time.Second).String(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: components,
	}}
	if h.db != nil {
		stats := database.GetPoolStats(h.db)
		resp.Pool = &stats
	}

	code := http.StatusOK
	if resp.Status == metrics.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}

// Metrics GET /metrics
func (h *HealthHandler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, metrics.Get().Snapshot())
}

func percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// MetricsSummary GET /metrics/summary: taxas derivadas para painéis
func (h *HealthHandler) MetricsSummary(c *gin.Context) {
	s := metrics.Get().Snapshot()

	c.JSON(http.StatusOK, gin.H{
		"version":        h.version,
		"uptime_seconds": s.UptimeSeconds,
		"requests": gin.H{
			"total":          s.Requests.Total,
			"success_rate":   percent(s.Requests.Successful, s.Requests.Total),
			"avg_latency_ms": s.Requests.AvgLatencyMs,
		},
		"tasks":  s.Tasks,
		"charts": s.Charts,
		"recommendations": gin.H{
			"requested":      s.Recommendations.Requested,
			"failure_rate":   percent(s.Recommendations.Failed, s.Recommendations.Requested),
			"avg_latency_ms": s.Recommendations.AvgLatencyMs,
		},
		"auth": gin.H{
			"attempts":     s.Auth.Attempts,
			"success_rate": percent(s.Auth.Successes, s.Auth.Attempts),
		},
		"websocket_connections": s.WebSocket.Connections,
	})
}
