// Package metrics guarda contadores em memória do processo, expostos em
// /metrics, e as verificações usadas pelos endpoints de health.
package metrics

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// pair conta sucessos e falhas de uma mesma operação
type pair struct {
	ok, failed atomic.Int64
}

func (p *pair) add(success bool) {
	if success {
		p.ok.Add(1)
	} else {
		p.failed.Add(1)
	}
}

// timed soma latências para calcular a média
type timed struct {
	count, totalMs atomic.Int64
}

func (t *timed) observe(ms int64) {
	t.count.Add(1)
	t.totalMs.Add(ms)
}

func (t *timed) avg() float64 {
	n := t.count.Load()
	if n == 0 {
		return 0
	}
	return float64(t.totalMs.Load()) / float64(n)
}

type endpoint struct {
	errors atomic.Int64
	timed
}

// Metrics agrupa os contadores por área da API. Todos os métodos são
// seguros para uso concorrente.
type Metrics struct {
	startedAt time.Time

	requests pair
	latency  timed

	taskCreated, taskUpdated, taskDeleted, taskErrors atomic.Int64

	goalsSaved atomic.Int64

	renders       pair
	clicks        atomic.Int64
	hovers        atomic.Int64
	recs          pair
	recsLatency   timed
	feedback      atomic.Int64
	eventsListed  atomic.Int64
	eventsCreated atomic.Int64
	eventErrors   atomic.Int64
	exports       pair

	wsConnections atomic.Int64
	wsIn, wsOut   atomic.Int64

	auth pair

	mu        sync.RWMutex
	endpoints map[string]*endpoint
}

var (
	global *Metrics
	once   sync.Once
)

// Init cria a instância global
func Init() {
	once.Do(func() { global = New() })
}

// New cria uma instância isolada (testes)
func New() *Metrics {
	return &Metrics{
		startedAt: time.Now(),
		endpoints: make(map[string]*endpoint),
	}
}

// Get retorna a instância global, criando-a se preciso
func Get() *Metrics {
	Init()
	return global
}

func (m *Metrics) IncrementRequests(success bool, latencyMs int64) {
	m.requests.add(success)
	m.latency.observe(latencyMs)
}

// TaskOp identifica a mutação de tarefa contabilizada
type TaskOp int

const (
	TaskCreated TaskOp = iota
	TaskUpdated
	TaskDeleted
)

// IncrementTask conta a mutação; falhas vão para um contador único
func (m *Metrics) IncrementTask(op TaskOp, success bool) {
	if !success {
		m.taskErrors.Add(1)
		return
	}
	switch op {
	case TaskCreated:
		m.taskCreated.Add(1)
	case TaskUpdated:
		m.taskUpdated.Add(1)
	case TaskDeleted:
		m.taskDeleted.Add(1)
	}
}

func (m *Metrics) IncrementGoalsSaved() { m.goalsSaved.Add(1) }

func (m *Metrics) IncrementChartRendered(success bool) { m.renders.add(success) }

func (m *Metrics) IncrementChartClick() { m.clicks.Add(1) }

func (m *Metrics) IncrementChartHover() { m.hovers.Add(1) }

// IncrementRecommendation conta uma chamada ao serviço de recomendações
func (m *Metrics) IncrementRecommendation(success bool, latencyMs int64) {
	m.recs.add(success)
	m.recsLatency.observe(latencyMs)
}

func (m *Metrics) IncrementFeedback() { m.feedback.Add(1) }

// IncrementEvents conta chamadas à agenda: created distingue criação de listagem
func (m *Metrics) IncrementEvents(created, success bool) {
	switch {
	case !success:
		m.eventErrors.Add(1)
	case created:
		m.eventsCreated.Add(1)
	default:
		m.eventsListed.Add(1)
	}
}

func (m *Metrics) IncrementExport(success bool) { m.exports.add(success) }

func (m *Metrics) IncrementWSConnection() { m.wsConnections.Add(1) }

func (m *Metrics) DecrementWSConnection() { m.wsConnections.Add(-1) }

func (m *Metrics) IncrementWSMessageIn() { m.wsIn.Add(1) }

func (m *Metrics) IncrementWSMessageOut() { m.wsOut.Add(1) }

// IncrementAuth conta uma resolução de token
func (m *Metrics) IncrementAuth(success bool) { m.auth.add(success) }

// TrackEndpoint acumula por "METHOD rota"; status >= 400 conta como erro
func (m *Metrics) TrackEndpoint(path, method string, statusCode int, latencyMs int64) {
	key := method + " " + path

	m.mu.RLock()
	e := m.endpoints[key]
	m.mu.RUnlock()

	if e == nil {
		m.mu.Lock()
		if e = m.endpoints[key]; e == nil {
			e = &endpoint{}
			m.endpoints[key] = e
		}
		m.mu.Unlock()
	}

	e.observe(latencyMs)
	if statusCode >= 400 {
		e.errors.Add(1)
	}
}

// Uptime desde a criação da instância
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startedAt)
}

// EndpointSnapshot é o resumo de uma rota
type EndpointSnapshot struct {
	Requests     int64   `json:"requests"`
	Errors       int64   `json:"errors"`
	ErrorRate    float64 `json:"error_rate"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

type RequestsSnapshot struct {
	Total        int64   `json:"total"`
	Successful   int64   `json:"successful"`
	Failed       int64   `json:"failed"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

type TasksSnapshot struct {
	Created int64 `json:"created"`
	Updated int64 `json:"updated"`
	Deleted int64 `json:"deleted"`
	Errors  int64 `json:"errors"`
}

type ChartsSnapshot struct {
	Rendered int64 `json:"rendered"`
	Errors   int64 `json:"errors"`
	Clicks   int64 `json:"clicks"`
	Hovers   int64 `json:"hovers"`
}

type RecommendationsSnapshot struct {
	Requested    int64   `json:"requested"`
	Failed       int64   `json:"failed"`
	Feedback     int64   `json:"feedback"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

type EventsSnapshot struct {
	Listed  int64 `json:"listed"`
	Created int64 `json:"created"`
	Errors  int64 `json:"errors"`
}

type CountSnapshot struct {
	Ok     int64 `json:"ok"`
	Failed int64 `json:"failed"`
}

type WebSocketSnapshot struct {
	Connections int64 `json:"connections"`
	MessagesIn  int64 `json:"messages_in"`
	MessagesOut int64 `json:"messages_out"`
}

type AuthSnapshot struct {
	Attempts  int64 `json:"attempts"`
	Successes int64 `json:"successes"`
	Failures  int64 `json:"failures"`
}

type RuntimeSnapshot struct {
	Goroutines  int    `json:"goroutines"`
	HeapAllocMB uint64 `json:"heap_alloc_mb"`
	HeapInUseMB uint64 `json:"heap_inuse_mb"`
	NumGC       uint32 `json:"num_gc"`
}

// Snapshot é a leitura pontual servida em GET /metrics
type Snapshot struct {
	UptimeSeconds   float64                     `json:"uptime_seconds"`
	StartTime       string                      `json:"start_time"`
	Requests        RequestsSnapshot            `json:"requests"`
	Tasks           TasksSnapshot               `json:"tasks"`
	GoalsSaved      int64                       `json:"goals_saved"`
	Charts          ChartsSnapshot              `json:"charts"`
	Recommendations RecommendationsSnapshot     `json:"recommendations"`
	Events          EventsSnapshot              `json:"events"`
	Exports         CountSnapshot               `json:"exports"`
	WebSocket       WebSocketSnapshot           `json:"websocket"`
	Auth            AuthSnapshot                `json:"auth"`
	Runtime         RuntimeSnapshot             `json:"runtime"`
	Endpoints       map[string]EndpointSnapshot `json:"endpoints,omitempty"`
}

const mb = 1 << 20

func (m *Metrics) Snapshot() Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	ok, failed := m.requests.ok.Load(), m.requests.failed.Load()
	authOK, authFailed := m.auth.ok.Load(), m.auth.failed.Load()
	recsOK, recsFailed := m.recs.ok.Load(), m.recs.failed.Load()

	s := Snapshot{
		UptimeSeconds: m.Uptime().Seconds(),
		StartTime:     m.startedAt.Format(time.RFC3339),
		Requests: RequestsSnapshot{
			Total:        ok + failed,
			Successful:   ok,
			Failed:       failed,
			AvgLatencyMs: m.latency.avg(),
		},
		Tasks: TasksSnapshot{
			Created: m.taskCreated.Load(),
			Updated: m.taskUpdated.Load(),
			Deleted: m.taskDeleted.Load(),
			Errors:  m.taskErrors.Load(),
		},
		GoalsSaved: m.goalsSaved.Load(),
		Charts: ChartsSnapshot{
			Rendered: m.renders.ok.Load(),
			Errors:   m.renders.failed.Load(),
			Clicks:   m.clicks.Load(),
			Hovers:   m.hovers.Load(),
		},
		Recommendations: RecommendationsSnapshot{
			Requested:    recsOK + recsFailed,
			Failed:       recsFailed,
			Feedback:     m.feedback.Load(),
			AvgLatencyMs: m.recsLatency.avg(),
		},
		Events: EventsSnapshot{
			Listed:  m.eventsListed.Load(),
			Created: m.eventsCreated.Load(),
			Errors:  m.eventErrors.Load(),
		},
		Exports: CountSnapshot{Ok: m.exports.ok.Load(), Failed: m.exports.failed.Load()},
		WebSocket: WebSocketSnapshot{
			Connections: m.wsConnections.Load(),
			MessagesIn:  m.wsIn.Load(),
			MessagesOut: m.wsOut.Load(),
		},
		Auth: AuthSnapshot{
			Attempts:  authOK + authFailed,
			Successes: authOK,
			Failures:  authFailed,
		},
		Runtime: RuntimeSnapshot{
			Goroutines:  runtime.NumGoroutine(),
			HeapAllocMB: mem.HeapAlloc / mb,
			HeapInUseMB: mem.HeapInuse / mb,
			NumGC:       mem.NumGC,
		},
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.endpoints) == 0 {
		return s
	}
	s.Endpoints = make(map[string]EndpointSnapshot, len(m.endpoints))
	for key, e := range m.endpoints {
		n, errs := e.count.Load(), e.errors.Load()
		es := EndpointSnapshot{Requests: n, Errors: errs, AvgLatencyMs: e.avg()}
		if n > 0 {
			es.ErrorRate = float64(errs) / float64(n) * 100
		}
		s.Endpoints[key] = es
	}
	return s
}
