package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/cleberrangel/timelyai-api/internal/model"
)

func newTestMemoryStore() *MemoryStore {
	s := NewMemoryStore()
	base := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
	var tick int
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return s
}

func TestMemoryStoreTaskCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestMemoryStore()

	for i := 0; i < 3; i++ {
		_, err := s.CreateTask(ctx, model.Task{ID: fmt.Sprintf("t%d", i), UserID: "u1", Title: "x", Category: "School"})
		if err != nil {
			t.Fatalf("CreateTask failed: %v", err)
		}
	}
	s.CreateTask(ctx, model.Task{ID: "other", UserID: "u2"})

	tasks, _ := s.ListTasks(ctx, "u1")
	if len(tasks) != 3 {
		t.Fatalf("Expected 3 tasks, got %d", len(tasks))
	}
	for i, task := range tasks {
		if task.ID != fmt.Sprintf("t%d", i) {
			t.Errorf("Expected creation order, got %s at %d", task.ID, i)
		}
	}

	task, _ := s.GetTask(ctx, "u2", "t0")
	if task != nil {
		t.Error("Tasks must be isolated per user")
	}

	ok, _ := s.UpdateTask(ctx, model.Task{ID: "t1", UserID: "u1", Title: "new"})
	if !ok {
		t.Fatal("Expected update to succeed")
	}
	task, _ = s.GetTask(ctx, "u1", "t1")
	if task.Title != "new" || !task.UpdatedAt.After(task.CreatedAt) {
		t.Errorf("Unexpected task after update %+v", task)
	}

	ok, _ = s.UpdateTask(ctx, model.Task{ID: "missing", UserID: "u1"})
	if ok {
		t.Error("Update of missing task must report false")
	}

	ok, _ = s.DeleteTask(ctx, "u1", "t0")
	if !ok {
		t.Error("Expected delete to succeed")
	}
	ok, _ = s.DeleteTask(ctx, "u1", "t0")
	if ok {
		t.Error("Second delete must report false")
	}
}

func TestMemoryStoreGoalsAreCopied(t *testing.T) {
	ctx := context.Background()
	s := newTestMemoryStore()

	goals := model.Goals{"School": 40}
	s.ReplaceGoals(ctx, "u1", goals)
	goals["School"] = 99

	got, _ := s.GetGoals(ctx, "u1")
	if got["School"] != 40 {
		t.Errorf("Stored goals must not alias caller map, got %v", got["School"])
	}

	got["Clubs"] = 10
	again, _ := s.GetGoals(ctx, "u1")
	if _, ok := again["Clubs"]; ok {
		t.Error("Returned goals must not alias stored map")
	}

	empty, _ := s.GetGoals(ctx, "nobody")
	if empty == nil || len(empty) != 0 {
		t.Errorf("Expected empty non-nil goals, got %v", empty)
	}
}

func TestMemoryStoreHistoryLimits(t *testing.T) {
	ctx := context.Background()
	s := newTestMemoryStore()

	for i := 0; i < HistoryMaxRows+20; i++ {
		user := "u1"
		if i%2 == 1 {
			user = "u2"
		}
		s.CreateRecord(ctx, model.RecommendationRecord{
			UserID:          user,
			Recommendations: []json.RawMessage{json.RawMessage(fmt.Sprintf(`"rec %d"`, i))},
		})
	}

	page, _ := s.ListByUser(ctx, "u1")
	if len(page) != HistoryPageSize {
		t.Fatalf("Expected %d entries, got %d", HistoryPageSize, len(page))
	}
	if page[0].ID <= page[1].ID {
		t.Error("History must be newest first")
	}

	deleted, _ := s.CleanupOldHistory(ctx)
	if deleted != 20 {
		t.Errorf("Expected 20 rows pruned, got %d", deleted)
	}
	deleted, _ = s.CleanupOldHistory(ctx)
	if deleted != 0 {
		t.Errorf("Second cleanup must be a no-op, got %d", deleted)
	}
}
