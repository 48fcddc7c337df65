package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cleberrangel/timelyai-api/internal/model"
	"github.com/cleberrangel/timelyai-api/internal/repository"
)

type sentMessage struct {
	userID  string
	msgType string
	data    interface{}
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (n *recordingNotifier) Notify(userID, msgType string, data interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{userID, msgType, data})
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.sent))
	for i, m := range n.sent {
		out[i] = m.msgType
	}
	return out
}

// failingStore falha em todas as leituras
type failingStore struct {
	*repository.MemoryStore
}

var errStoreDown = errors.New("store down")

func (failingStore) ListTasks(ctx context.Context, userID string) ([]model.Task, error) {
	return nil, errStoreDown
}

type fakeRecommender struct {
	recs      []json.RawMessage
	err       error
	feedbacks []model.FeedbackRequest
}

func (f *fakeRecommender) GenerateRecommendations(ctx context.Context, userID string) ([]json.RawMessage, error) {
	return f.recs, f.err
}

func (f *fakeRecommender) SendFeedback(ctx context.Context, feedback model.FeedbackRequest) error {
	f.feedbacks = append(f.feedbacks, feedback)
	return f.err
}

type fakeCalendar struct {
	limit   int64
	token   string
	events  []model.Event
	err     error
	created model.EventRequest
}

func (f *fakeCalendar) ListUpcoming(ctx context.Context, accessToken string, limit int64) ([]model.Event, error) {
	f.token = accessToken
	f.limit = limit
	return f.events, f.err
}

func (f *fakeCalendar) Insert(ctx context.Context, accessToken string, req model.EventRequest) (*model.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = req
	return &model.Event{ID: "evt-1", Summary: req.Summary, StartTime: req.StartTime}, nil
}

type fixture struct {
	store     *repository.MemoryStore
	notifier  *recordingNotifier
	analytics *AnalyticsService
	tasks     *TaskService
	goals     *GoalService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	notifier := &recordingNotifier{}
	analytics := NewAnalyticsService(store, store, notifier, time.Minute)
	t.Cleanup(analytics.Close)

	return &fixture{
		store:     store,
		notifier:  notifier,
		analytics: analytics,
		tasks:     NewTaskService(store, analytics, notifier),
		goals:     NewGoalService(store, analytics),
	}
}

func (f *fixture) create(t *testing.T, user string, d model.TaskDetails) *model.Task {
	t.Helper()
	task, err := f.tasks.Create(context.Background(), user, d)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return task
}
