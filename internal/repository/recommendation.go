package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/cleberrangel/timelyai-api/internal/logger"
	"github.com/cleberrangel/timelyai-api/internal/model"
)

// Limites do histórico de recomendações
const (
	HistoryPageSize = 50
	HistoryMaxRows  = 1000
)

// RecommendationRepository guarda o histórico de recomendações geradas
type RecommendationRepository struct {
	db *sql.DB
}

// NewRecommendationRepository cria um novo repositório de histórico
func NewRecommendationRepository(db *sql.DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// CreateRecord insere uma entrada no histórico
func (r *RecommendationRepository) CreateRecord(ctx context.Context, record model.RecommendationRecord) (*model.RecommendationRecord, error) {
	recsJSON, err := json.Marshal(record.Recommendations)
	if err != nil {
		return nil, fmt.Errorf("erro ao serializar recomendações: %w", err)
	}

	query := `
		INSERT INTO recommendation_history (user_id, recommendations, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, created_at
	`

	created := record
	if err := r.db.QueryRowContext(ctx, query, record.UserID, recsJSON).Scan(&created.ID, &created.CreatedAt); err != nil {
		logger.Get(ctx).Error().Err(err).Str("user_id", record.UserID).Msg("Erro ao criar entrada no histórico")
		return nil, fmt.Errorf("erro ao criar entrada no histórico: %w", err)
	}

	return &created, nil
}

// ListByUser retorna as últimas 50 entradas do usuário
func (r *RecommendationRepository) ListByUser(ctx context.Context, userID string) ([]model.RecommendationRecord, error) {
	query := `
		SELECT id, user_id, recommendations, created_at
		FROM recommendation_history
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, HistoryPageSize)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar histórico: %w", err)
	}
	defer rows.Close()

	history := []model.RecommendationRecord{}
	for rows.Next() {
		var h model.RecommendationRecord
		var recsJSON []byte
		if err := rows.Scan(&h.ID, &h.UserID, &recsJSON, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("erro ao escanear histórico: %w", err)
		}
		if len(recsJSON) > 0 {
			if err := json.Unmarshal(recsJSON, &h.Recommendations); err != nil {
				return nil, fmt.Errorf("erro ao deserializar recomendações: %w", err)
			}
		}
		history = append(history, h)
	}

	return history, rows.Err()
}

// CleanupOldHistory remove registros antigos mantendo apenas os últimos 1000
func (r *RecommendationRepository) CleanupOldHistory(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM recommendation_history
		WHERE id NOT IN (
			SELECT id FROM recommendation_history
			ORDER BY created_at DESC, id DESC
			LIMIT $1
		)
	`

	result, err := r.db.ExecContext(ctx, query, HistoryMaxRows)
	if err != nil {
		return 0, fmt.Errorf("erro ao limpar histórico antigo: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected > 0 {
		logger.Get(ctx).Info().Int64("rows_deleted", rowsAffected).Msg("Histórico antigo removido")
	}
	return rowsAffected, nil
}
