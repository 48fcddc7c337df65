package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cleberrangel/timelyai-api/internal/identity"
	"github.com/cleberrangel/timelyai-api/internal/logger"
	"github.com/cleberrangel/timelyai-api/internal/metrics"
	"github.com/cleberrangel/timelyai-api/internal/model"
	"github.com/gin-gonic/gin"
)

// HeaderUserID permite escolher o usuário com o StaticResolver (dev/testes)
const HeaderUserID = "X-User-ID"

// Chaves gravadas no contexto gin pelo middleware de identidade
const (
	ContextUserID      = "user_id"
	ContextEmail       = "email"
	ContextAccessToken = "access_token"
)

// BearerToken extrai o token do header "Authorization: Bearer {token}"
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// Identity retorna um middleware que resolve o token Bearer em usuário
func Identity(resolver identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" {
			deny(c, "header Authorization ausente", nil)
			return
		}

		token, ok := BearerToken(authHeader)
		if !ok {
			deny(c, "formato inválido, esperado: Bearer {token}", nil)
			return
		}

		ctx := identity.WithUserHint(c.Request.Context(), SanitizeID(c.GetHeader(HeaderUserID)))
		id, err := resolver.Resolve(ctx, token)
		if err != nil {
			if errors.Is(err, model.ErrUnauthorized) {
				deny(c, "token inválido ou expirado", err)
				return
			}
			metrics.Get().IncrementAuth(false)
			logger.FromGin(c).Error().Err(err).Msg("Falha ao validar token")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"error":   "serviço de identidade indisponível",
			})
			return
		}

		metrics.Get().IncrementAuth(true)

		c.Request = c.Request.WithContext(logger.WithUserInfo(c.Request.Context(), id.UserID, id.Email))
		c.Set(ContextUserID, id.UserID)
		c.Set(ContextEmail, id.Email)
		c.Set(ContextAccessToken, token)

		c.Next()
	}
}

func deny(c *gin.Context, msg string, err error) {
	metrics.Get().IncrementAuth(false)

	event := logger.AuditEvent{
		Action:   logger.AuditActionAuthFailed,
		Resource: "api",
		Path:     c.Request.URL.Path,
		Method:   c.Request.Method,
		ClientIP: c.ClientIP(),
		Error:    msg,
	}
	if err != nil {
		event.Error = err.Error()
	}
	logger.Audit(c.Request.Context(), event)

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   msg,
	})
}
