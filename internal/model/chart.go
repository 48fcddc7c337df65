package model

// ClickRequest seleciona uma fatia por coordenada ou por índice
type ClickRequest struct {
	X     *float64 `json:"x,omitempty"`
	Y     *float64 `json:"y,omitempty"`
	Wedge *int     `json:"wedge,omitempty"`
}

// HoverRequest liga/desliga o destaque de uma fatia
type HoverRequest struct {
	Wedge  int  `json:"wedge"`
	Active bool `json:"active"`
}
