package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cleberrangel/timelyai-api/internal/model"
)

// MemoryStore implementa os três repositórios em memória (STORAGE=memory)
type MemoryStore struct {
	mu      sync.RWMutex
	tasks   map[string]map[string]model.Task
	goals   map[string]model.Goals
	history []model.RecommendationRecord
	nextID  int64
	now     func() time.Time
}

// NewMemoryStore cria um armazenamento vazio
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks: make(map[string]map[string]model.Task),
		goals: make(map[string]model.Goals),
		now:   time.Now,
	}
}

// CreateTask implementa o repositório de tarefas
func (s *MemoryStore) CreateTask(ctx context.Context, task model.Task) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	task.CreatedAt = now
	task.UpdatedAt = now

	if s.tasks[task.UserID] == nil {
		s.tasks[task.UserID] = make(map[string]model.Task)
	}
	s.tasks[task.UserID][task.ID] = task
	return &task, nil
}

// ListTasks implementa o repositório de tarefas
func (s *MemoryStore) ListTasks(ctx context.Context, userID string) ([]model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]model.Task, 0, len(s.tasks[userID]))
	for _, t := range s.tasks[userID] {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// GetTask implementa o repositório de tarefas
func (s *MemoryStore) GetTask(ctx context.Context, userID, taskID string) (*model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[userID][taskID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// UpdateTask implementa o repositório de tarefas
func (s *MemoryStore) UpdateTask(ctx context.Context, task model.Task) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tasks[task.UserID][task.ID]
	if !ok {
		return false, nil
	}
	task.CreatedAt = existing.CreatedAt
	task.UpdatedAt = s.now()
	s.tasks[task.UserID][task.ID] = task
	return true, nil
}

// DeleteTask implementa o repositório de tarefas
func (s *MemoryStore) DeleteTask(ctx context.Context, userID, taskID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[userID][taskID]; !ok {
		return false, nil
	}
	delete(s.tasks[userID], taskID)
	return true, nil
}

// GetGoals implementa o repositório de metas
func (s *MemoryStore) GetGoals(ctx context.Context, userID string) (model.Goals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := model.Goals{}
	for k, v := range s.goals[userID] {
		out[k] = v
	}
	return out, nil
}

// ReplaceGoals implementa o repositório de metas
func (s *MemoryStore) ReplaceGoals(ctx context.Context, userID string, goals model.Goals) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make(model.Goals, len(goals))
	for k, v := range goals {
		copied[k] = v
	}
	s.goals[userID] = copied
	return nil
}

// CreateRecord implementa o repositório de histórico
func (s *MemoryStore) CreateRecord(ctx context.Context, record model.RecommendationRecord) (*model.RecommendationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	record.ID = s.nextID
	record.CreatedAt = s.now()
	s.history = append(s.history, record)
	return &record, nil
}

// ListByUser implementa o repositório de histórico (mais recentes primeiro)
func (s *MemoryStore) ListByUser(ctx context.Context, userID string) ([]model.RecommendationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.RecommendationRecord{}
	for i := len(s.history) - 1; i >= 0 && len(out) < HistoryPageSize; i-- {
		if s.history[i].UserID == userID {
			out = append(out, s.history[i])
		}
	}
	return out, nil
}

// CleanupOldHistory implementa o repositório de histórico
func (s *MemoryStore) CleanupOldHistory(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	excess := len(s.history) - HistoryMaxRows
	if excess <= 0 {
		return 0, nil
	}
	s.history = append([]model.RecommendationRecord(nil), s.history[excess:]...)
	return int64(excess), nil
}
