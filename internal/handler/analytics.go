package handler

import (
	"net/http"

	"github.com/cleberrangel/timelyai-api/internal/model"
	"github.com/cleberrangel/timelyai-api/internal/service"
	"github.com/gin-gonic/gin"
)

// AnalyticsHandler expõe as fatias e o gráfico interativo
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler cria o handler de analytics
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Slices GET /api/analytics/slices
func (h *AnalyticsHandler) Slices(c *gin.Context) {
	slices, goals, err := h.analytics.Slices(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"slices": slices, "goals": goals})
}

// Chart GET /api/analytics/chart
func (h *AnalyticsHandler) Chart(c *gin.Context) {
	svg := h.analytics.SVG(c.Request.Context(), userID(c))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/svg+xml; charset=utf-8", []byte(svg))
}

// Click POST /api/analytics/chart/click com {x,y} ou {wedge}
func (h *AnalyticsHandler) Click(c *gin.Context) {
	var req model.ClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "payload inválido", err)
		return
	}

	ctx := c.Request.Context()
	var st service.ChartState
	switch {
	case req.Wedge != nil:
		st = h.analytics.ClickWedge(ctx, userID(c), *req.Wedge)
	case req.X != nil && req.Y != nil:
		st = h.analytics.ClickAt(ctx, userID(c), *req.X, *req.Y)
	default:
		badRequest(c, "informe wedge ou x e y", nil)
		return
	}
	respond(c, http.StatusOK, st)
}

// Hover POST /api/analytics/chart/hover
func (h *AnalyticsHandler) Hover(c *gin.Context) {
	var req model.HoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "payload inválido", err)
		return
	}
	respond(c, http.StatusOK, h.analytics.Hover(c.Request.Context(), userID(c), req.Wedge, req.Active))
}
