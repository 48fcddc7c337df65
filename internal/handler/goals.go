package handler

import (
	"net/http"

	"github.com/cleberrangel/timelyai-api/internal/model"
	"github.com/cleberrangel/timelyai-api/internal/service"
	"github.com/gin-gonic/gin"
)

// GoalHandler expõe as metas por categoria
type GoalHandler struct {
	goals *service.GoalService
}

// NewGoalHandler cria o handler de metas
func NewGoalHandler(goals *service.GoalService) *GoalHandler {
	return &GoalHandler{goals: goals}
}

// Get GET /api/goals
func (h *GoalHandler) Get(c *gin.Context) {
	goals, err := h.goals.Get(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, model.GoalsRequest{Goals: goals})
}

// Save POST /api/goals
func (h *GoalHandler) Save(c *gin.Context) {
	var req model.GoalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "payload inválido", err)
		return
	}

	goals, err := h.goals.Save(c.Request.Context(), userID(c), req.Goals)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, model.GoalsRequest{Goals: goals})
}
