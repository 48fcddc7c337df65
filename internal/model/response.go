package model

// Response é o envelope de sucesso de todas as rotas JSON
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta acompanha respostas de listagem
type Meta struct {
	Total int `json:"total,omitempty"`
}

// ErrorResponse é o envelope de erro; Details leva a causa interna quando útil
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
