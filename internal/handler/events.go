package handler

import (
	"net/http"
	"strconv"

	"github.com/cleberrangel/timelyai-api/internal/middleware"
	"github.com/cleberrangel/timelyai-api/internal/model"
	"github.com/cleberrangel/timelyai-api/internal/service"
	"github.com/gin-gonic/gin"
)

// EventHandler faz o proxy para o Google Calendar
type EventHandler struct {
	events *service.EventService
}

// NewEventHandler cria o handler de eventos
func NewEventHandler(events *service.EventService) *EventHandler {
	return &EventHandler{events: events}
}

// List GET /api/events?limit=N
func (h *EventHandler) List(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			badRequest(c, "limit inválido", err)
			return
		}
		limit = n
	}

	events, err := h.events.List(c.Request.Context(), c.GetString(middleware.ContextAccessToken), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    events,
		Meta:    &model.Meta{Total: len(events)},
	})
}

// Create POST /api/events
func (h *EventHandler) Create(c *gin.Context) {
	var req model.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "payload inválido", err)
		return
	}

	middleware.SanitizeFields(middleware.TaskFieldConfig(), &req.Summary, &req.Description, &req.Location)

	event, err := h.events.Create(c.Request.Context(), c.GetString(middleware.ContextAccessToken), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, event)
}
