package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/cleberrangel/timelyai-api/internal/logger"
	"github.com/cleberrangel/timelyai-api/internal/metrics"
	"github.com/cleberrangel/timelyai-api/internal/model"
	"github.com/cleberrangel/timelyai-api/internal/websocket"
	"github.com/google/uuid"
)

// isoDateLayout é o formato enviado pelo <input type="date"> da extensão
const isoDateLayout = "2006-01-02"

// shortDateLayout é o formato exibido na lista de tarefas (M/D/YY)
const shortDateLayout = "1/2/06"

// TaskService implementa o CRUD de tarefas. Toda alteração redesenha o
// gráfico do usuário e avisa a extensão.
type TaskService struct {
	store     TaskStore
	analytics *AnalyticsService
	notifier  Notifier
	newID     func() string
}

// NewTaskService cria o serviço de tarefas
func NewTaskService(store TaskStore, analytics *AnalyticsService, notifier Notifier) *TaskService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &TaskService{
		store:     store,
		analytics: analytics,
		notifier:  notifier,
		newID:     func() string { return uuid.New().String() },
	}
}

// NormalizeDueDate converte YYYY-MM-DD em M/D/YY. Vazio vira "TBD" e
// qualquer outro valor é mantido.
func NormalizeDueDate(due string) string {
	due = strings.TrimSpace(due)
	if due == "" {
		return model.DefaultDueDate
	}
	if t, err := time.Parse(isoDateLayout, due); err == nil {
		return t.Format(shortDateLayout)
	}
	return due
}

// NormalizeDetails aplica os valores padrão de criação
func NormalizeDetails(d model.TaskDetails) model.TaskDetails {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		d.Title = model.DefaultTitle
	}
	d.Duration = strings.TrimSpace(d.Duration)
	if d.Duration == "" {
		d.Duration = model.DefaultDuration
	}
	d.Category = strings.TrimSpace(d.Category)
	if d.Category == "" {
		d.Category = model.DefaultCategory
	}
	d.DueDate = NormalizeDueDate(d.DueDate)
	return d
}

// validateDuration rejeita apenas durações numéricas negativas; texto livre é aceito
func validateDuration(duration string) error {
	if v, err := strconv.ParseFloat(strings.TrimSpace(duration), 64); err == nil && v < 0 {
		return model.ErrInvalidTask
	}
	return nil
}

// List retorna as tarefas do usuário
func (s *TaskService) List(ctx context.Context, userID string) ([]model.Task, error) {
	return s.store.ListTasks(ctx, userID)
}

// Get retorna uma tarefa ou model.ErrTaskNotFound
func (s *TaskService) Get(ctx context.Context, userID, taskID string) (*model.Task, error) {
	task, err := s.store.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, model.ErrTaskNotFound
	}
	return task, nil
}

// Create grava uma nova tarefa já normalizada
func (s *TaskService) Create(ctx context.Context, userID string, details model.TaskDetails) (*model.Task, error) {
	if err := validateDuration(details.Duration); err != nil {
		return nil, err
	}
	d := NormalizeDetails(details)

	task, err := s.store.CreateTask(ctx, model.Task{
		ID:       s.newID(),
		UserID:   userID,
		Title:    d.Title,
		DueDate:  d.DueDate,
		Duration: d.Duration,
		Category: d.Category,
	})
	metrics.Get().IncrementTask(metrics.TaskCreated, err == nil)
	if err != nil {
		logger.AuditMutation(ctx, logger.AuditActionTaskCreate, "task", "", err)
		return nil, err
	}

	logger.AuditMutation(ctx, logger.AuditActionTaskCreate, "task", task.ID, nil)
	logger.Get(ctx).Info().Str("task_id", task.ID).Str("category", task.Category).Msg("Tarefa criada")

	s.afterMutation(ctx, userID)
	return task, nil
}

// Update altera apenas os campos não vazios de details
func (s *TaskService) Update(ctx context.Context, userID, taskID string, details model.TaskDetails) (*model.Task, error) {
	if err := validateDuration(details.Duration); err != nil {
		return nil, err
	}

	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(details.Title); v != "" {
		task.Title = v
	}
	if v := strings.TrimSpace(details.DueDate); v != "" {
		task.DueDate = NormalizeDueDate(v)
	}
	if v := strings.TrimSpace(details.Duration); v != "" {
		task.Duration = v
	}
	if v := strings.TrimSpace(details.Category); v != "" {
		task.Category = v
	}

	found, err := s.store.UpdateTask(ctx, *task)
	if err == nil && !found {
		// removida entre o Get e o Update
		err = model.ErrTaskNotFound
	}
	metrics.Get().IncrementTask(metrics.TaskUpdated, err == nil)
	logger.AuditMutation(ctx, logger.AuditActionTaskUpdate, "task", taskID, err)
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, userID)
	return s.Get(ctx, userID, taskID)
}

// Delete remove a tarefa
func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	found, err := s.store.DeleteTask(ctx, userID, taskID)
	if err == nil && !found {
		err = model.ErrTaskNotFound
	}
	metrics.Get().IncrementTask(metrics.TaskDeleted, err == nil)
	logger.AuditMutation(ctx, logger.AuditActionTaskDelete, "task", taskID, err)
	if err != nil {
		return err
	}

	s.afterMutation(ctx, userID)
	return nil
}

func (s *TaskService) afterMutation(ctx context.Context, userID string) {
	if s.analytics != nil {
		s.analytics.Refresh(ctx, userID)
	}
	s.notifier.Notify(userID, websocket.TypeTasksChanged, nil)
}
