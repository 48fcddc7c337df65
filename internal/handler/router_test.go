package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cleberrangel/timelyai-api/internal/client"
	"github.com/cleberrangel/timelyai-api/internal/identity"
	"github.com/cleberrangel/timelyai-api/internal/model"
	"github.com/cleberrangel/timelyai-api/internal/repository"
	"github.com/cleberrangel/timelyai-api/internal/service"
	"github.com/cleberrangel/timelyai-api/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const testToken = "test-token"

type testAPI struct {
	router      *gin.Engine
	recommender *httptest.Server
	calendar    *httptest.Server
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	recServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/generate-recs":
			w.Write([]byte(`{"status":"success","recommendations":[{"task":"Essay","start":"09:00"}]}`))
		case "/api/feedback":
			w.Write([]byte(`{"status":"ok"}`))
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(recServer.Close)

	api := newTestAPIWithRecommender(t, recServer.URL)
	api.recommender = recServer
	return api
}

// newTestAPIWithRecommender monta a API apontando o cliente de recomendações
// para recURL, que pode estar fora do ar
func newTestAPIWithRecommender(t *testing.T, recURL string) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	calServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"id":"e1","summary":"Study","start":{"dateTime":"2030-01-01T10:00:00Z"}}]}`))
	}))
	t.Cleanup(calServer.Close)

	store := repository.NewMemoryStore()
	hub := websocket.NewHub("")
	recClient := client.NewRecommenderClient(client.RecommenderOptions{
		BaseURL:           recURL,
		RetryBackoff:      time.Millisecond,
		RequestsPerSecond: 100,
	})

	analytics := service.NewAnalyticsService(store, store, hub, time.Minute)
	t.Cleanup(analytics.Close)

	router := NewRouter(Routes{
		Resolver:        identity.NewStaticResolver(testToken),
		Health:          NewHealthHandler(nil, hub, recClient, "test"),
		Tasks:           NewTaskHandler(service.NewTaskService(store, analytics, hub), service.NewExcelGenerator(store, store)),
		Goals:           NewGoalHandler(service.NewGoalService(store, analytics)),
		Analytics:       NewAnalyticsHandler(analytics),
		Recommendations: NewRecommendationHandler(service.NewRecommendationService(recClient, store)),
		Events:          NewEventHandler(service.NewEventService(client.NewCalendarClient(calServer.URL + "/calendar/v3/"))),
		WebSocket:       NewWebSocketHandler(hub),
	})

	return &testAPI{router: router, calendar: calServer}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Meta    *struct {
		Total int `json:"total"`
	} `json:"meta"`
}

func (a *testAPI) do(t *testing.T, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("Invalid JSON %q: %v", w.Body.String(), err)
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("Invalid data %s: %v", env.Data, err)
		}
	}
	return env
}

type taskJSON struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	DueDate  string `json:"dueDate"`
	Duration string `json:"duration"`
	Category string `json:"category"`
}

func TestHealthEndpointsArePublic(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{"/health", "/health/live", "/health/ready", "/metrics", "/metrics/summary"} {
		w := httptest.NewRecorder()
		api.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d: %s", path, w.Code, w.Body.String())
		}
	}
}

func TestAPIRequiresToken(t *testing.T) {
	api := newTestAPI(t)

	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
	if env := decode(t, w, nil); env.Success || env.Error == "" {
		t.Errorf("Unexpected envelope %+v", env)
	}
}

func TestTaskCRUD(t *testing.T) {
	api := newTestAPI(t)

	// Formato da extensão: {"taskDetails": {...}}
	w := api.do(t, http.MethodPost, "/api/tasks", "alice", map[string]interface{}{
		"taskDetails": map[string]string{"title": "Essay", "dueDate": "2024-10-03", "duration": "2", "category": "School"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created taskJSON
	decode(t, w, &created)
	if created.DueDate != "10/3/24" || created.ID == "" {
		t.Errorf("Unexpected task %+v", created)
	}

	// Campos na raiz e valores padrão
	w = api.do(t, http.MethodPost, "/api/tasks", "alice", map[string]string{})
	var defaults taskJSON
	decode(t, w, &defaults)
	if defaults.Title != "Untitled Task" || defaults.Category != "Other" || defaults.Duration != "TBD" {
		t.Errorf("Defaults not applied: %+v", defaults)
	}

	w = api.do(t, http.MethodGet, "/api/tasks", "alice", nil)
	var list []taskJSON
	env := decode(t, w, &list)
	if len(list) != 2 || env.Meta == nil || env.Meta.Total != 2 {
		t.Errorf("Expected 2 tasks, got %d", len(list))
	}

	w = api.do(t, http.MethodPut, "/api/tasks/"+created.ID, "alice", map[string]string{"title": "Final essay"})
	var updated taskJSON
	decode(t, w, &updated)
	if w.Code != http.StatusOK || updated.Title != "Final essay" || updated.Duration != "2" {
		t.Errorf("Unexpected update %d %+v", w.Code, updated)
	}

	if w = api.do(t, http.MethodGet, "/api/tasks/"+created.ID, "bob", nil); w.Code != http.StatusNotFound {
		t.Errorf("Other user should get 404, got %d", w.Code)
	}

	if w = api.do(t, http.MethodDelete, "/api/tasks/"+created.ID, "alice", nil); w.Code != http.StatusOK {
		t.Errorf("Expected 200 on delete, got %d", w.Code)
	}
	if w = api.do(t, http.MethodDelete, "/api/tasks/"+created.ID, "alice", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 on second delete, got %d", w.Code)
	}
}

func TestTaskInvalidPayload(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}

	if w := api.do(t, http.MethodPost, "/api/tasks", "", map[string]string{"duration": "-3"}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for negative duration, got %d", w.Code)
	}
}

func TestGoalsEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/goals", "alice", map[string]interface{}{
		"goals": map[string]float64{"School": 40, "Hobbies": 10},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = api.do(t, http.MethodGet, "/api/goals", "alice", nil)
	var got struct {
		Goals map[string]float64 `json:"goals"`
	}
	decode(t, w, &got)
	if got.Goals["School"] != 40 || len(got.Goals) != 2 {
		t.Errorf("Unexpected goals %v", got.Goals)
	}

	w = api.do(t, http.MethodPost, "/api/goals", "alice", map[string]interface{}{
		"goals": map[string]float64{"School": 120},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid goal, got %d", w.Code)
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	api := newTestAPI(t)

	api.do(t, http.MethodPost, "/api/tasks", "alice", map[string]string{"duration": "4", "category": "School"})
	api.do(t, http.MethodPost, "/api/tasks", "alice", map[string]string{"duration": "3", "category": "Clubs"})
	api.do(t, http.MethodPost, "/api/tasks", "alice", map[string]string{"duration": "3", "category": "Friends"})
	api.do(t, http.MethodPost, "/api/goals", "alice", map[string]interface{}{"goals": map[string]float64{"Clubs": 25}})

	w := api.do(t, http.MethodGet, "/api/analytics/slices", "alice", nil)
	var slices struct {
		Slices []struct {
			Label   string  `json:"label"`
			Percent float64 `json:"percent"`
		} `json:"slices"`
	}
	decode(t, w, &slices)
	if len(slices.Slices) != 3 || slices.Slices[0].Label != "School" || slices.Slices[0].Percent != 40 {
		t.Fatalf("Unexpected slices %+v", slices.Slices)
	}

	w = api.do(t, http.MethodGet, "/api/analytics/chart", "alice", nil)
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "image/svg+xml") {
		t.Errorf("Unexpected content type %s", ct)
	}
	if n := strings.Count(w.Body.String(), `class="wedge"`); n != 3 {
		t.Errorf("Expected 3 wedges, got %d", n)
	}

	w = api.do(t, http.MethodPost, "/api/analytics/chart/click", "alice", map[string]int{"wedge": 1})
	var st service.ChartState
	decode(t, w, &st)
	if st.State != "selected" || st.Selected == nil || st.Selected.Label != "Clubs" {
		t.Fatalf("Unexpected state %+v", st)
	}
	if st.Selected.Goal == nil || *st.Selected.Goal != 25 {
		t.Errorf("Expected goal 25, got %v", st.Selected.Goal)
	}

	w = api.do(t, http.MethodGet, "/api/analytics/chart", "alice", nil)
	if !strings.Contains(w.Body.String(), "Goal: 25%") {
		t.Errorf("Overlay with goal missing from SVG")
	}

	w = api.do(t, http.MethodPost, "/api/analytics/chart/click", "alice", map[string]float64{"x": 150, "y": 150})
	decode(t, w, &st)
	if st.State != "idle" {
		t.Errorf("Click in the hole should return to idle, got %s", st.State)
	}

	if w = api.do(t, http.MethodPost, "/api/analytics/chart/click", "alice", map[string]int{}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without coordinates, got %d", w.Code)
	}

	w = api.do(t, http.MethodPost, "/api/analytics/chart/hover", "alice", map[string]interface{}{"wedge": 0, "active": true})
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 on hover, got %d", w.Code)
	}
}

func TestRecommendationEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/recommendations", "alice", map[string]string{"userId": "ignored"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var recs struct {
		Status          string            `json:"status"`
		Recommendations []json.RawMessage `json:"recommendations"`
	}
	decode(t, w, &recs)
	if recs.Status != "success" || len(recs.Recommendations) != 1 {
		t.Errorf("Unexpected recommendations %+v", recs)
	}

	w = api.do(t, http.MethodGet, "/api/recommendations/history", "alice", nil)
	var history []json.RawMessage
	decode(t, w, &history)
	if len(history) != 1 {
		t.Errorf("Expected 1 history entry, got %d", len(history))
	}

	w = api.do(t, http.MethodPost, "/api/recommendations/feedback", "alice", map[string]interface{}{
		"recommendations": []map[string]string{{"task": "Essay"}},
		"wasAccepted":     true,
	})
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 on feedback, got %d: %s", w.Code, w.Body.String())
	}
}

func TestEventsEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/events?limit=5", "", nil)
	var events []struct {
		ID        string `json:"id"`
		StartTime string `json:"start_time"`
	}
	decode(t, w, &events)
	if w.Code != http.StatusOK || len(events) != 1 || events[0].StartTime != "2030-01-01T10:00:00Z" {
		t.Errorf("Unexpected events %d %+v", w.Code, events)
	}

	if w = api.do(t, http.MethodGet, "/api/events?limit=abc", "", nil); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid limit, got %d", w.Code)
	}

	if w = api.do(t, http.MethodPost, "/api/events", "", map[string]string{"summary": "x"}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing times, got %d", w.Code)
	}
}

func TestExportEndpoint(t *testing.T) {
	api := newTestAPI(t)

	api.do(t, http.MethodPost, "/api/tasks", "alice", map[string]string{"title": "Essay", "duration": "2", "category": "School"})

	w := api.do(t, http.MethodGet, "/api/tasks/export", "alice", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), ".xlsx") {
		t.Errorf("Missing attachment header")
	}

	wb, err := excelize.OpenReader(w.Body)
	if err != nil {
		t.Fatalf("Invalid workbook: %v", err)
	}
	defer wb.Close()

	rows, _ := wb.GetRows(service.TasksSheet)
	if len(rows) != 2 || rows[1][0] != "Essay" {
		t.Errorf("Unexpected rows %v", rows)
	}
}

func TestRecommenderOutageIsBadGateway(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(down.Close)

	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	for name, url := range map[string]string{"upstream 503": down.URL, "connection refused": closedURL} {
		t.Run(name, func(t *testing.T) {
			api := newTestAPIWithRecommender(t, url)

			w := api.do(t, http.MethodPost, "/api/recommendations", "alice", nil)
			if w.Code != http.StatusBadGateway {
				t.Fatalf("Expected 502, got %d: %s", w.Code, w.Body.String())
			}
			if env := decode(t, w, nil); env.Success || env.Error == "" {
				t.Errorf("Unexpected envelope %+v", env)
			}

			w = api.do(t, http.MethodPost, "/api/recommendations/feedback", "alice", map[string]interface{}{
				"recommendations": []string{"a"},
				"wasAccepted":     false,
			})
			if w.Code != http.StatusBadGateway {
				t.Errorf("Feedback: expected 502, got %d", w.Code)
			}
		})
	}
}

func TestErrorStatusMapping(t *testing.T) {
	code, _ := errorStatus(io.EOF)
	if code != http.StatusInternalServerError {
		t.Errorf("Unknown errors should map to 500, got %d", code)
	}

	wrapped := map[error]int{
		fmt.Errorf("%w: status 503", model.ErrRecommenderUnavailable): http.StatusBadGateway,
		fmt.Errorf("%w: dial tcp", model.ErrTimeout):                  http.StatusGatewayTimeout,
		fmt.Errorf("%w: eof", model.ErrInvalidResponse):               http.StatusBadGateway,
	}
	for err, want := range wrapped {
		if code, _ := errorStatus(err); code != want {
			t.Errorf("errorStatus(%v) = %d, want %d", err, code, want)
		}
	}
}
