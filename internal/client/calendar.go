package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cleberrangel/timelyai-api/internal/model"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	primaryCalendar = "primary"

	// DefaultEventsLimit máximo de eventos listados por chamada
	DefaultEventsLimit = 10
)

// CalendarClient acessa o Google Calendar com o token do próprio usuário
type CalendarClient struct {
	endpoint string
	base     *http.Client
	now      func() time.Time
}

// NewCalendarClient cria o cliente. endpoint vazio usa o endpoint do Google.
func NewCalendarClient(endpoint string) *CalendarClient {
	return &CalendarClient{
		endpoint: endpoint,
		base:     &http.Client{Timeout: DefaultTimeout},
		now:      time.Now,
	}
}

func (c *CalendarClient) service(ctx context.Context, accessToken string) (*calendar.Service, error) {
	// O client do oauth2 herda o transporte base pelo contexto
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.base)
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})

	opts := []option.ClientOption{option.WithHTTPClient(oauth2.NewClient(ctx, ts))}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}

	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrCalendarUnavailable, err)
	}
	return srv, nil
}

// ListUpcoming lista os próximos eventos do calendário principal
func (c *CalendarClient) ListUpcoming(ctx context.Context, accessToken string, limit int64) ([]model.Event, error) {
	if limit <= 0 {
		limit = DefaultEventsLimit
	}

	srv, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	events, err := srv.Events.List(primaryCalendar).
		TimeMin(c.now().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(limit).
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapCalendarError(err)
	}

	out := make([]model.Event, 0, len(events.Items))
	for _, item := range events.Items {
		out = append(out, toEvent(item))
	}
	return out, nil
}

// Insert cria um evento no calendário principal
func (c *CalendarClient) Insert(ctx context.Context, accessToken string, req model.EventRequest) (*model.Event, error) {
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: start_time deve ser RFC3339", model.ErrInvalidEvent)
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil || !end.After(start) {
		return nil, fmt.Errorf("%w: end_time deve ser RFC3339 e posterior ao início", model.ErrInvalidEvent)
	}

	srv, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	event := &calendar.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Location:    req.Location,
		Start:       &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)},
	}

	created, err := srv.Events.Insert(primaryCalendar, event).Context(ctx).Do()
	if err != nil {
		return nil, mapCalendarError(err)
	}

	result := toEvent(created)
	return &result, nil
}

func toEvent(item *calendar.Event) model.Event {
	ev := model.Event{
		ID:       item.Id,
		Summary:  item.Summary,
		Location: item.Location,
	}
	if item.Start != nil {
		// Eventos de dia inteiro só têm Date
		ev.StartTime = item.Start.DateTime
		if ev.StartTime == "" {
			ev.StartTime = item.Start.Date
		}
	}
	return ev
}

func mapCalendarError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return model.ErrUnauthorized
		case http.StatusTooManyRequests:
			return model.ErrRateLimited
		}
	}
	return fmt.Errorf("%w: %v", model.ErrCalendarUnavailable, err)
}
