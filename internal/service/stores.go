package service

import (
	"context"
	"encoding/json"

	"github.com/cleberrangel/timelyai-api/internal/model"
)

// TaskStore é implementado por repository.TaskRepository e repository.MemoryStore
type TaskStore interface {
	CreateTask(ctx context.Context, task model.Task) (*model.Task, error)
	ListTasks(ctx context.Context, userID string) ([]model.Task, error)
	GetTask(ctx context.Context, userID, taskID string) (*model.Task, error)
	UpdateTask(ctx context.Context, task model.Task) (bool, error)
	DeleteTask(ctx context.Context, userID, taskID string) (bool, error)
}

// GoalStore persiste o mapa de metas do usuário
type GoalStore interface {
	GetGoals(ctx context.Context, userID string) (model.Goals, error)
	ReplaceGoals(ctx context.Context, userID string, goals model.Goals) error
}

// RecommendationStore guarda o histórico de recomendações
type RecommendationStore interface {
	CreateRecord(ctx context.Context, record model.RecommendationRecord) (*model.RecommendationRecord, error)
	ListByUser(ctx context.Context, userID string) ([]model.RecommendationRecord, error)
	CleanupOldHistory(ctx context.Context) (int64, error)
}

// Notifier entrega mensagens em tempo real ao usuário (websocket.Hub)
type Notifier interface {
	Notify(userID, msgType string, data interface{})
}

// Recommender é o backend externo de recomendações
type Recommender interface {
	GenerateRecommendations(ctx context.Context, userID string) ([]json.RawMessage, error)
	SendFeedback(ctx context.Context, feedback model.FeedbackRequest) error
}

// Calendar acessa o Google Calendar em nome do token do usuário
type Calendar interface {
	ListUpcoming(ctx context.Context, accessToken string, limit int64) ([]model.Event, error)
	Insert(ctx context.Context, accessToken string, req model.EventRequest) (*model.Event, error)
}

type noopNotifier struct{}

func (noopNotifier) Notify(string, string, interface{}) {}
