package metrics

import (
	"context"
	"sync"
	"testing"
)

func TestSnapshotCounters(t *testing.T) {
	m := New()

	m.IncrementRequests(true, 10)
	m.IncrementRequests(false, 30)
	m.IncrementTask(TaskCreated, true)
	m.IncrementTask(TaskCreated, true)
	m.IncrementTask(TaskDeleted, true)
	m.IncrementTask(TaskUpdated, false)
	m.IncrementChartRendered(true)
	m.IncrementChartClick()
	m.IncrementRecommendation(true, 100)
	m.IncrementRecommendation(false, 300)
	m.IncrementEvents(true, true)
	m.IncrementAuth(false)

	s := m.Snapshot()

	if s.Requests.Total != 2 || s.Requests.Failed != 1 {
		t.Errorf("Unexpected request counters %+v", s.Requests)
	}
	if s.Requests.AvgLatencyMs != 20 {
		t.Errorf("Expected avg latency 20, got %v", s.Requests.AvgLatencyMs)
	}
	if s.Tasks.Created != 2 || s.Tasks.Deleted != 1 || s.Tasks.Updated != 0 || s.Tasks.Errors != 1 {
		t.Errorf("Unexpected task counters %+v", s.Tasks)
	}
	if s.Charts.Rendered != 1 || s.Charts.Clicks != 1 {
		t.Errorf("Unexpected chart counters %+v", s.Charts)
	}
	if s.Recommendations.Requested != 2 || s.Recommendations.Failed != 1 || s.Recommendations.AvgLatencyMs != 200 {
		t.Errorf("Unexpected recommendation counters %+v", s.Recommendations)
	}
	if s.Events.Created != 1 || s.Events.Listed != 0 {
		t.Errorf("Unexpected event counters %+v", s.Events)
	}
	if s.Auth.Failures != 1 || s.Auth.Attempts != 1 {
		t.Errorf("Unexpected auth counters %+v", s.Auth)
	}
}

func TestTrackEndpointConcurrent(t *testing.T) {
	m := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status := 200
			if i%5 == 0 {
				status = 500
			}
			m.TrackEndpoint("/api/tasks", "GET", status, 2)
		}(i)
	}
	wg.Wait()

	em := m.Snapshot().Endpoints["GET /api/tasks"]
	if em.Requests != 50 || em.Errors != 10 {
		t.Errorf("Unexpected endpoint metrics %+v", em)
	}
	if em.ErrorRate != 20 {
		t.Errorf("Expected 20%% error rate, got %v", em.ErrorRate)
	}
}

func TestDetermineOverallStatus(t *testing.T) {
	tests := []struct {
		name       string
		components map[string]HealthStatus
		want       string
	}{
		{"empty", map[string]HealthStatus{}, StatusHealthy},
		{"all healthy", map[string]HealthStatus{"a": {Status: StatusHealthy}}, StatusHealthy},
		{"degraded", map[string]HealthStatus{"a": {Status: StatusHealthy}, "b": {Status: StatusDegraded}}, StatusDegraded},
		{"unhealthy wins", map[string]HealthStatus{"a": {Status: StatusDegraded}, "b": {Status: StatusUnhealthy}}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineOverallStatus(tt.components); got != tt.want {
				t.Errorf("DetermineOverallStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCheckDatabaseHealthNil(t *testing.T) {
	if s := CheckDatabaseHealth(context.Background(), nil); s.Status != StatusUnhealthy {
		t.Errorf("Expected unhealthy for nil db, got %s", s.Status)
	}
}

func TestCheckMemoryHealthThresholds(t *testing.T) {
	if s := CheckMemoryHealth(1 << 20); s.Status != StatusHealthy {
		t.Errorf("Expected healthy with a huge limit, got %s", s.Status)
	}
	if s := CheckMemoryHealth(0); s.Status != StatusUnhealthy && s.Status != StatusDegraded {
		t.Errorf("Expected a zero limit to be reported, got %s", s.Status)
	}
}
