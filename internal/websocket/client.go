package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cleberrangel/timelyai-api/internal/logger"
	"github.com/cleberrangel/timelyai-api/internal/metrics"
	"github.com/cleberrangel/timelyai-api/internal/middleware"
	"github.com/cleberrangel/timelyai-api/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Mensagens que o cliente pode enviar
const typePing = "ping"

// ServeWS faz o upgrade da requisição já autenticada e registra o cliente.
// A extensão não envia headers no handshake, por isso o token chega pela
// query (ver TokenFromQuery).
func (h *Hub) ServeWS(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Success: false, Error: "usuário não autenticado"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// O upgrader já respondeu ao cliente
		logger.FromGin(c).Warn().Err(err).Msg("Falha no upgrade da conexão WebSocket")
		return
	}

	client := newClient(h, conn, userID, c.GetString(middleware.ContextEmail))
	logger.AuditWebSocket(c.Request.Context(), logger.AuditActionWSConnect, userID, c.ClientIP(), nil)

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}
	go client.writePump()
	go client.readPump()
}

func newClient(h *Hub, conn *websocket.Conn, userID, email string) *Client {
	now := time.Now()
	return &Client{
		conn:        conn,
		Send:        make(chan []byte, sendBufferSize),
		UserID:      userID,
		Email:       email,
		Hub:         h,
		ConnectedAt: now,
		LastPing:    now,
	}
}

// readPump é o único leitor da conexão. Ao sair desregistra o cliente,
// o que fecha Send e encerra o writePump.
func (c *Client) readPump() {
	defer c.disconnect()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.LastPing = time.Now()
		return c.conn.SetReadDeadline(c.LastPing.Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.Hub.logger.Warn().Err(err).Str("user_id", c.UserID).Msg("Conexão WebSocket encerrada inesperadamente")
			}
			return
		}
		c.handleMessage(data)
	}
}

func (c *Client) disconnect() {
	select {
	case c.Hub.unregister <- c:
	case <-c.Hub.done:
		// closeAll já removeu o cliente
	}
	c.conn.Close()

	ctx := logger.WithUserInfo(context.Background(), c.UserID, c.Email)
	logger.AuditWebSocket(ctx, logger.AuditActionWSDisconnect, c.UserID, "", map[string]interface{}{
		"duration_s": time.Since(c.ConnectedAt).Seconds(),
	})
}

// writePump é o único escritor: repassa Send (um JSON por frame) e mantém
// o keepalive com pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer c.conn.Close()

	for {
		var (
			kind    int
			payload []byte
		)

		select {
		case msg, ok := <-c.Send:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			kind, payload = websocket.TextMessage, msg
		case <-ticker.C:
			kind = websocket.PingMessage
		}

		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(kind, payload); err != nil {
			return
		}
	}
}

// handleMessage trata as mensagens do cliente; hoje só o ping de aplicação
func (c *Client) handleMessage(data []byte) {
	metrics.Get().IncrementWSMessageIn()

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.Hub.logger.Debug().Err(err).Str("user_id", c.UserID).Msg("Mensagem do cliente inválida")
		return
	}

	if msg.Type != typePing {
		c.Hub.logger.Debug().Str("user_id", c.UserID).Str("message_type", msg.Type).Msg("Tipo de mensagem ignorado")
		return
	}
	c.SendMessage(newMessage(TypePong, nil))
}

// SendMessage enfileira uma mensagem só para este cliente. Com o buffer
// cheio a mensagem é descartada; clientes já removidos do hub são ignorados.
func (c *Client) SendMessage(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		c.Hub.logger.Error().Err(err).Str("user_id", c.UserID).Msg("Falha ao serializar mensagem")
		return
	}

	// Send só é fechado sob o lock de escrita do hub
	c.Hub.mu.RLock()
	defer c.Hub.mu.RUnlock()
	if _, ok := c.Hub.users[c.UserID][c]; !ok {
		return
	}

	select {
	case c.Send <- data:
	default:
		c.Hub.logger.Warn().Str("user_id", c.UserID).Msg("Buffer do cliente cheio, mensagem descartada")
	}
}
