package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cleberrangel/timelyai-api/internal/logger"
	"github.com/cleberrangel/timelyai-api/internal/metrics"
	"github.com/cleberrangel/timelyai-api/internal/model"
)

// DefaultHistoryCleanupInterval é o intervalo da poda do histórico
const DefaultHistoryCleanupInterval = time.Hour

// RecommendationService repassa pedidos ao backend de recomendações e
// registra o histórico
type RecommendationService struct {
	client  Recommender
	history RecommendationStore
}

// NewRecommendationService cria o serviço de recomendações
func NewRecommendationService(client Recommender, history RecommendationStore) *RecommendationService {
	return &RecommendationService{client: client, history: history}
}

// Generate pede recomendações para o usuário e grava no histórico.
// Falha ao gravar o histórico não impede a resposta.
func (s *RecommendationService) Generate(ctx context.Context, userID string) ([]json.RawMessage, error) {
	log := logger.Get(ctx)
	start := time.Now()

	recs, err := s.client.GenerateRecommendations(ctx, userID)
	metrics.Get().IncrementRecommendation(err == nil, time.Since(start).Milliseconds())
	logger.AuditMutation(ctx, logger.AuditActionRecsGenerate, "recommendations", userID, err)
	if err != nil {
		return nil, err
	}

	if _, err := s.history.CreateRecord(ctx, model.RecommendationRecord{
		UserID:          userID,
		Recommendations: recs,
	}); err != nil {
		log.Warn().Err(err).Msg("Falha ao gravar histórico de recomendações")
	}

	log.Info().Int("count", len(recs)).Dur("latency", time.Since(start)).Msg("Recomendações geradas")
	return recs, nil
}

// History lista as recomendações mais recentes do usuário
func (s *RecommendationService) History(ctx context.Context, userID string) ([]model.RecommendationRecord, error) {
	return s.history.ListByUser(ctx, userID)
}

// Feedback envia ao backend se o usuário aceitou a recomendação. O userId
// do corpo é sempre o da identidade autenticada.
func (s *RecommendationService) Feedback(ctx context.Context, userID string, feedback model.FeedbackRequest) error {
	feedback.UserID = userID
	if feedback.Recommendations == nil {
		feedback.Recommendations = []json.RawMessage{}
	}

	err := s.client.SendFeedback(ctx, feedback)
	logger.AuditMutation(ctx, logger.AuditActionRecsFeedback, "recommendations", userID, err)
	if err != nil {
		return err
	}
	metrics.Get().IncrementFeedback()
	return nil
}

// StartHistoryCleanup poda o histórico periodicamente até ctx ser cancelado
func (s *RecommendationService) StartHistoryCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultHistoryCleanupInterval
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.cleanup(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *RecommendationService) cleanup(ctx context.Context) {
	removed, err := s.history.CleanupOldHistory(ctx)
	if err != nil {
		logger.Get(ctx).Error().Err(err).Msg("Erro na limpeza do histórico de recomendações")
		return
	}
	if removed > 0 {
		logger.Get(ctx).Info().Int64("removed", removed).Msg("Histórico de recomendações podado")
	}
}
