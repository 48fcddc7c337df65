package handler

import (
	"errors"
	"net/http"

	"github.com/cleberrangel/timelyai-api/internal/logger"
	"github.com/cleberrangel/timelyai-api/internal/middleware"
	"github.com/cleberrangel/timelyai-api/internal/model"
	"github.com/gin-gonic/gin"
)

// errorStatus mapeia os erros de domínio para status HTTP
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrTaskNotFound):
		return http.StatusNotFound, "tarefa não encontrada"
	case errors.Is(err, model.ErrInvalidGoal):
		return http.StatusBadRequest, "meta inválida"
	case errors.Is(err, model.ErrInvalidTask):
		return http.StatusBadRequest, "tarefa inválida"
	case errors.Is(err, model.ErrInvalidEvent):
		return http.StatusBadRequest, "evento inválido"
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusUnauthorized, "token inválido ou expirado"
	case errors.Is(err, model.ErrRateLimited):
		return http.StatusTooManyRequests, "limite de requisições excedido"
	case errors.Is(err, model.ErrNoRecommendations), errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, "nenhuma recomendação encontrada"
	case errors.Is(err, model.ErrTimeout):
		return http.StatusGatewayTimeout, "timeout no serviço remoto"
	case errors.Is(err, model.ErrInvalidResponse), errors.Is(err, model.ErrRecommenderUnavailable),
		errors.Is(err, model.ErrCalendarUnavailable):
		return http.StatusBadGateway, "falha no serviço remoto"
	default:
		return http.StatusInternalServerError, "erro interno"
	}
}

// respondError escreve o envelope de erro padrão
func respondError(c *gin.Context, err error) {
	status, msg := errorStatus(err)

	log := logger.FromGin(c)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg("Erro ao processar requisição")
	} else {
		log.Debug().Err(err).Int("status", status).Msg("Requisição rejeitada")
	}

	c.JSON(status, model.ErrorResponse{
		Success: false,
		Error:   msg,
		Details: err.Error(),
	})
}

func badRequest(c *gin.Context, msg string, err error) {
	resp := model.ErrorResponse{Success: false, Error: msg}
	if err != nil {
		resp.Details = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, model.Response{Success: true, Data: data})
}

func userID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserID)
}
