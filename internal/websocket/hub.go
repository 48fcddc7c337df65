package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/cleberrangel/timelyai-api/internal/logger"
	"github.com/cleberrangel/timelyai-api/internal/metrics"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// connSet são as conexões abertas de um usuário (várias abas ou janelas)
type connSet map[*Client]struct{}

// Hub entrega notificações às conexões de cada usuário. Registro e remoção
// passam pelo loop de Run; envios usam o lock diretamente.
type Hub struct {
	mu    sync.RWMutex
	users map[string]connSet

	register   chan *Client
	unregister chan *Client
	done       chan struct{} // fechado quando Run termina

	allowedOrigin string
	upgrader      websocket.Upgrader
	logger        *zerolog.Logger
}

// Client é uma conexão WebSocket de um usuário
type Client struct {
	conn *websocket.Conn
	Send chan []byte

	UserID string
	Email  string
	Hub    *Hub

	ConnectedAt time.Time
	LastPing    time.Time
}

// NewHub cria o hub. allowedOrigin restringe o handshake à origem da
// extensão; vazio aceita qualquer origem.
func NewHub(allowedOrigin string) *Hub {
	h := &Hub{
		users:         make(map[string]connSet),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		done:          make(chan struct{}),
		allowedOrigin: allowedOrigin,
		logger:        logger.Global(),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return h.allowedOrigin == "" || origin == "" || origin == h.allowedOrigin
}

// Run processa registros até ctx ser cancelado; então fecha todas as conexões
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case c := <-h.register:
			h.registerClient(c)
		case c := <-h.unregister:
			h.unregisterClient(c)
		case <-ctx.Done():
			h.mu.Lock()
			for _, set := range h.users {
				for c := range set {
					h.dropLocked(c)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) registerClient(c *Client) {
	h.mu.Lock()
	set := h.users[c.UserID]
	if set == nil {
		set = make(connSet)
		h.users[c.UserID] = set
	}
	set[c] = struct{}{}
	n := len(set)
	h.mu.Unlock()

	metrics.Get().IncrementWSConnection()
	h.logger.Info().Str("user_id", c.UserID).Int("user_connections", n).Msg("Cliente WebSocket registrado")

	c.SendMessage(newMessage(TypeConnection, map[string]string{"status": "connected"}))
}

func (h *Hub) unregisterClient(c *Client) {
	h.mu.Lock()
	h.dropLocked(c)
	h.mu.Unlock()
}

// dropLocked remove c e fecha Send; sem efeito se c já saiu.
// Exige h.mu em modo escrita.
func (h *Hub) dropLocked(c *Client) {
	set := h.users[c.UserID]
	if _, ok := set[c]; !ok {
		return
	}

	delete(set, c)
	if len(set) == 0 {
		delete(h.users, c.UserID)
	}
	close(c.Send)
	metrics.Get().DecrementWSConnection()

	h.logger.Info().Str("user_id", c.UserID).Int("remaining_connections", len(set)).Msg("Cliente WebSocket removido")
}

// Notify envia uma mensagem tipada a todas as conexões do usuário. Uma
// conexão com o buffer cheio é derrubada em vez de atrasar as demais.
func (h *Hub) Notify(userID, kind string, data interface{}) {
	payload, err := json.Marshal(newMessage(kind, data))
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Str("message_type", kind).Msg("Falha ao serializar mensagem")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.users[userID]
	if len(set) == 0 {
		h.logger.Debug().Str("user_id", userID).Msg("Nenhuma conexão WebSocket para o usuário")
		return
	}

	for c := range set {
		select {
		case c.Send <- payload:
			metrics.Get().IncrementWSMessageOut()
		default:
			h.logger.Warn().Str("user_id", userID).Msg("Buffer do cliente cheio, encerrando conexão")
			h.dropLocked(c)
		}
	}
}

// ConnectedUsers lista os usuários com ao menos uma conexão
func (h *Hub) ConnectedUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.users))
	for id := range h.users {
		ids = append(ids, id)
	}
	return ids
}

// Connections conta todas as conexões abertas
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, set := range h.users {
		n += len(set)
	}
	return n
}

func (h *Hub) UserConnections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}
