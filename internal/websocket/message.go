package websocket

import "time"

// Tipos de mensagem enviados ao cliente
const (
	TypeConnection   = "connection"
	TypeChartUpdated = "chart_updated"
	TypeTasksChanged = "tasks_changed"
	TypePong         = "pong"
)

// Message é o envelope JSON de cada frame, nos dois sentidos
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func newMessage(kind string, data interface{}) Message {
	return Message{Type: kind, Data: data, Timestamp: time.Now()}
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10 // precisa ser menor que pongWait

	// o cliente só manda pings de aplicação
	maxMessageSize = 512
	sendBufferSize = 256
)
