package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/cleberrangel/timelyai-api/internal/logger"
	"github.com/cleberrangel/timelyai-api/internal/metrics"
	"github.com/gin-gonic/gin"
)

// unmatchedRoute agrupa 404s de rotas inexistentes num único endpoint
const unmatchedRoute = "unmatched"

// Observe conta cada requisição nos contadores globais e, para mutações
// sob /api, grava um evento de auditoria com o usuário resolvido.
func Observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		took := time.Since(start).Milliseconds()
		status := c.Writer.Status()
		m := metrics.Get()

		// Rota registrada (/api/tasks/:id), não o path concreto
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		m.IncrementRequests(status < http.StatusBadRequest, took)
		m.TrackEndpoint(route, c.Request.Method, status, took)

		if isMutation(c.Request.Method) && strings.HasPrefix(c.Request.URL.Path, "/api/") {
			logger.AuditRequest(c.Request.Context(), c.Request.Method, c.Request.URL.Path, status, took,
				c.GetString(ContextUserID), c.ClientIP())
		}
	}
}

func isMutation(method string) bool {
	return method != http.MethodGet && method != http.MethodHead && method != http.MethodOptions
}
