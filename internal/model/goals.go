package model

// Goals mapeia categoria -> percentual alvo
type Goals map[string]float64

// GoalsRequest é o payload de POST /api/goals
type GoalsRequest struct {
	Goals Goals `json:"goals"`
}
