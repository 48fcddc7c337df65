package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cleberrangel/timelyai-api/internal/logger"
	"github.com/cleberrangel/timelyai-api/internal/model"
)

// TaskRepository gerencia tarefas no PostgreSQL
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository cria um novo repositório de tarefas
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// CreateTask insere uma tarefa já normalizada
func (r *TaskRepository) CreateTask(ctx context.Context, task model.Task) (*model.Task, error) {
	query := `
		INSERT INTO tasks (id, user_id, title, due_date, duration, category, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	created := task
	err := r.db.QueryRowContext(ctx, query, task.ID, task.UserID, task.Title, task.DueDate,
		task.Duration, task.Category).Scan(&created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		logger.Get(ctx).Error().Err(err).Str("task_id", task.ID).Msg("Erro ao criar tarefa")
		return nil, fmt.Errorf("erro ao criar tarefa: %w", err)
	}

	return &created, nil
}

// ListTasks retorna as tarefas do usuário em ordem de criação
func (r *TaskRepository) ListTasks(ctx context.Context, userID string) ([]model.Task, error) {
	query := `
		SELECT id, user_id, title, due_date, duration, category, created_at, updated_at
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar tarefas: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.DueDate, &t.Duration,
			&t.Category, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("erro ao escanear tarefa: %w", err)
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

// GetTask retorna a tarefa ou nil quando não existe para o usuário
func (r *TaskRepository) GetTask(ctx context.Context, userID, taskID string) (*model.Task, error) {
	query := `
		SELECT id, user_id, title, due_date, duration, category, created_at, updated_at
		FROM tasks
		WHERE user_id = $1 AND id::text = $2
	`

	var t model.Task
	err := r.db.QueryRowContext(ctx, query, userID, taskID).Scan(&t.ID, &t.UserID, &t.Title,
		&t.DueDate, &t.Duration, &t.Category, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao buscar tarefa: %w", err)
	}

	return &t, nil
}

// UpdateTask grava os campos editáveis. Retorna false se a tarefa não existe.
func (r *TaskRepository) UpdateTask(ctx context.Context, task model.Task) (bool, error) {
	query := `
		UPDATE tasks
		SET title = $3, due_date = $4, duration = $5, category = $6, updated_at = NOW()
		WHERE user_id = $1 AND id::text = $2
	`

	result, err := r.db.ExecContext(ctx, query, task.UserID, task.ID, task.Title,
		task.DueDate, task.Duration, task.Category)
	if err != nil {
		return false, fmt.Errorf("erro ao atualizar tarefa: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}

// DeleteTask remove a tarefa. Retorna false se a tarefa não existe.
func (r *TaskRepository) DeleteTask(ctx context.Context, userID, taskID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE user_id = $1 AND id::text = $2", userID, taskID)
	if err != nil {
		return false, fmt.Errorf("erro ao deletar tarefa: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}
