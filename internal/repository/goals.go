package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cleberrangel/timelyai-api/internal/model"
)

// GoalRepository gerencia as metas por categoria
type GoalRepository struct {
	db *sql.DB
}

// NewGoalRepository cria um novo repositório de metas
func NewGoalRepository(db *sql.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// GetGoals retorna as metas do usuário (mapa vazio quando não há)
func (r *GoalRepository) GetGoals(ctx context.Context, userID string) (model.Goals, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT category, percent FROM goals WHERE user_id = $1", userID)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar metas: %w", err)
	}
	defer rows.Close()

	goals := model.Goals{}
	for rows.Next() {
		var category string
		var percent float64
		if err := rows.Scan(&category, &percent); err != nil {
			return nil, fmt.Errorf("erro ao escanear meta: %w", err)
		}
		goals[category] = percent
	}

	return goals, rows.Err()
}

// ReplaceGoals substitui todas as metas do usuário numa transação
func (r *GoalRepository) ReplaceGoals(ctx context.Context, userID string, goals model.Goals) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("erro ao iniciar transação: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM goals WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("erro ao limpar metas: %w", err)
	}

	for category, percent := range goals {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO goals (user_id, category, percent, updated_at) VALUES ($1, $2, $3, NOW())",
			userID, category, percent,
		); err != nil {
			return fmt.Errorf("erro ao inserir meta %s: %w", category, err)
		}
	}

	return tx.Commit()
}
