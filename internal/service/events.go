package service

import (
	"context"

	"github.com/cleberrangel/timelyai-api/internal/logger"
	"github.com/cleberrangel/timelyai-api/internal/metrics"
	"github.com/cleberrangel/timelyai-api/internal/model"
)

// DefaultEventLimit é a quantidade de eventos listados quando nada é pedido
const DefaultEventLimit = 10

// MaxEventLimit limita o parâmetro limit de GET /api/events
const MaxEventLimit = 50

// EventService lista e cria eventos no Google Calendar com o token do usuário
type EventService struct {
	calendar Calendar
}

// NewEventService cria o serviço de eventos
func NewEventService(calendar Calendar) *EventService {
	return &EventService{calendar: calendar}
}

// List retorna os próximos eventos do calendário principal
func (s *EventService) List(ctx context.Context, accessToken string, limit int) ([]model.Event, error) {
	if limit <= 0 {
		limit = DefaultEventLimit
	}
	if limit > MaxEventLimit {
		limit = MaxEventLimit
	}

	events, err := s.calendar.ListUpcoming(ctx, accessToken, int64(limit))
	metrics.Get().IncrementEvents(false, err == nil)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Create insere um evento no calendário principal
func (s *EventService) Create(ctx context.Context, accessToken string, req model.EventRequest) (*model.Event, error) {
	event, err := s.calendar.Insert(ctx, accessToken, req)
	metrics.Get().IncrementEvents(true, err == nil)

	resourceID := ""
	if event != nil {
		resourceID = event.ID
	}
	logger.AuditMutation(ctx, logger.AuditActionEventCreate, "event", resourceID, err)
	if err != nil {
		return nil, err
	}
	return event, nil
}
