package model

// Event é o formato de evento de calendário exposto para a extensão
type Event struct {
	ID        string `json:"id"`
	Summary   string `json:"summary"`
	StartTime string `json:"start_time"`
	Location  string `json:"location,omitempty"`
}

// EventRequest cria um evento no calendário principal
type EventRequest struct {
	Summary     string `json:"summary" binding:"required"`
	Description string `json:"description"`
	Location    string `json:"location"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time" binding:"required"`
}
