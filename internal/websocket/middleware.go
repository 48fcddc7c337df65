package websocket

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

// TokenQueryParam é o parâmetro usado pelo navegador, que não envia headers no handshake
const TokenQueryParam = "access_token"

// TokenFromQuery copia ?access_token= para o header Authorization quando
// ele não vier preenchido. Deve rodar antes do middleware de identidade.
func TokenFromQuery() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			if token := c.Query(TokenQueryParam); token != "" {
				c.Request.Header.Set("Authorization", "Bearer "+token)
			}
		}
		c.Next()
	}
}

// RequireUpgrade rejeita requisições que não sejam handshake WebSocket
func RequireUpgrade() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.IsWebsocket() {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Esperado handshake WebSocket",
			})
			return
		}
		c.Next()
	}
}

// BuildWebSocketURL monta a URL de conexão com o token na query
func BuildWebSocketURL(baseURL, token string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}

	q := u.Query()
	q.Set(TokenQueryParam, token)
	u.RawQuery = q.Encode()

	return u.String()
}
