package handler

import (
	"net/http"

	"github.com/cleberrangel/timelyai-api/internal/model"
	"github.com/cleberrangel/timelyai-api/internal/service"
	"github.com/gin-gonic/gin"
)

// RecommendationHandler repassa pedidos ao backend de recomendações
type RecommendationHandler struct {
	recs *service.RecommendationService
}

// NewRecommendationHandler cria o handler de recomendações
func NewRecommendationHandler(recs *service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recs: recs}
}

// Generate POST /api/recommendations. O corpo é opcional; o usuário vem do token.
func (h *RecommendationHandler) Generate(c *gin.Context) {
	recs, err := h.recs.Generate(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    gin.H{"status": "success", "recommendations": recs},
		Meta:    &model.Meta{Total: len(recs)},
	})
}

// History GET /api/recommendations/history
func (h *RecommendationHandler) History(c *gin.Context) {
	history, err := h.recs.History(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    history,
		Meta:    &model.Meta{Total: len(history)},
	})
}

// Feedback POST /api/recommendations/feedback
func (h *RecommendationHandler) Feedback(c *gin.Context) {
	var req model.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "payload inválido", err)
		return
	}

	if err := h.recs.Feedback(c.Request.Context(), userID(c), req); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"recorded": true})
}
