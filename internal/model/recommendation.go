package model

import (
	"encoding/json"
	"time"
)

// RecommendationRequest é o corpo enviado para /api/generate-recs
type RecommendationRequest struct {
	UserID string `json:"userId"`
}

// RecommendationResponse é a resposta do backend de recomendações.
// Os itens são repassados sem interpretação.
type RecommendationResponse struct {
	Status          string            `json:"status"`
	Recommendations []json.RawMessage `json:"recommendations"`
	Message         string            `json:"message,omitempty"`
}

// FeedbackRequest registra se o usuário aceitou uma recomendação
type FeedbackRequest struct {
	UserID          string            `json:"userId"`
	TaskData        json.RawMessage   `json:"taskData,omitempty"`
	Recommendations []json.RawMessage `json:"recommendations"`
	WasAccepted     bool              `json:"wasAccepted"`
}

// RecommendationRecord é uma entrada do histórico de recomendações
type RecommendationRecord struct {
	ID              int64             `json:"id"`
	UserID          string            `json:"user_id"`
	Recommendations []json.RawMessage `json:"recommendations"`
	CreatedAt       time.Time         `json:"created_at"`
}
