package metrics

import (
	"context"
	"database/sql"
	"runtime"
	"time"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// slowPing acima disso o banco é reportado como degradado
const slowPing = 100 * time.Millisecond

// HealthStatus é o estado de um componente
type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency int64  `json:"latency_ms,omitempty"`
}

// HealthCheck é a resposta de GET /health
type HealthCheck struct {
	Status     string                  `json:"status"`
	Version    string                  `json:"version"`
	Uptime     string                  `json:"uptime"`
	Timestamp  string                  `json:"timestamp"`
	Components map[string]HealthStatus `json:"components"`
}

// CheckDatabaseHealth faz um ping no pool
func CheckDatabaseHealth(ctx context.Context, db *sql.DB) HealthStatus {
	if db == nil {
		return HealthStatus{Status: StatusUnhealthy, Message: "database connection not initialized"}
	}

	start := time.Now()
	err := db.PingContext(ctx)
	took := time.Since(start)

	st := HealthStatus{Status: StatusHealthy, Latency: took.Milliseconds()}
	switch {
	case err != nil:
		st.Status, st.Message = StatusUnhealthy, err.Error()
	case took > slowPing:
		st.Status, st.Message = StatusDegraded, "high latency"
	}
	return st
}

// CheckMemoryHealth compara o heap com o limite; a partir de 80% já degrada
func CheckMemoryHealth(maxHeapMB uint64) HealthStatus {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	switch heap := mem.HeapAlloc / mb; {
	case heap > maxHeapMB:
		return HealthStatus{Status: StatusUnhealthy, Message: "heap memory exceeds limit"}
	case heap > maxHeapMB*80/100:
		return HealthStatus{Status: StatusDegraded, Message: "heap memory usage high"}
	}
	return HealthStatus{Status: StatusHealthy}
}

var severity = map[string]int{StatusHealthy: 0, StatusDegraded: 1, StatusUnhealthy: 2}

// DetermineOverallStatus retorna o pior estado entre os componentes
func DetermineOverallStatus(components map[string]HealthStatus) string {
	worst := StatusHealthy
	for _, c := range components {
		if severity[c.Status] > severity[worst] {
			worst = c.Status
		}
	}
	return worst
}
