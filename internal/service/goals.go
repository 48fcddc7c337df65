package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/cleberrangel/timelyai-api/internal/logger"
	"github.com/cleberrangel/timelyai-api/internal/metrics"
	"github.com/cleberrangel/timelyai-api/internal/model"
)

// GoalService mantém as metas exibidas no overlay do gráfico
type GoalService struct {
	store     GoalStore
	analytics *AnalyticsService
}

// NewGoalService cria o serviço de metas
func NewGoalService(store GoalStore, analytics *AnalyticsService) *GoalService {
	return &GoalService{store: store, analytics: analytics}
}

// ValidateGoals exige categoria não vazia e percentual em [0,100]
func ValidateGoals(goals model.Goals) error {
	for category, percent := range goals {
		if strings.TrimSpace(category) == "" {
			return fmt.Errorf("%w: categoria vazia", model.ErrInvalidGoal)
		}
		if math.IsNaN(percent) || percent < 0 || percent > 100 {
			return fmt.Errorf("%w: %s=%v", model.ErrInvalidGoal, category, percent)
		}
	}
	return nil
}

// Get retorna as metas do usuário (mapa vazio quando não há)
func (s *GoalService) Get(ctx context.Context, userID string) (model.Goals, error) {
	return s.store.GetGoals(ctx, userID)
}

// Save substitui todas as metas do usuário
func (s *GoalService) Save(ctx context.Context, userID string, goals model.Goals) (model.Goals, error) {
	if err := ValidateGoals(goals); err != nil {
		return nil, err
	}
	if goals == nil {
		goals = model.Goals{}
	}

	err := s.store.ReplaceGoals(ctx, userID, goals)
	logger.AuditMutation(ctx, logger.AuditActionGoalsUpdate, "goals", userID, err)
	if err != nil {
		return nil, err
	}
	metrics.Get().IncrementGoalsSaved()

	if s.analytics != nil {
		s.analytics.Refresh(ctx, userID)
	}
	return goals, nil
}
