package model

import "time"

// Valores usados quando o campo da tarefa chega vazio
const (
	DefaultTitle    = "Untitled Task"
	DefaultDuration = "TBD"
	DefaultCategory = "Other"
	DefaultDueDate  = "TBD"
)

// Categories lista as categorias conhecidas na ordem de exibição
var Categories = []string{"School", "Clubs", "Friends", "Hobbies", "Other"}

// Task é uma tarefa do usuário. Duration é texto livre (horas ou "TBD").
type Task struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	DueDate   string    `json:"dueDate"`
	Duration  string    `json:"duration"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskDetails é o payload de criação/edição vindo da extensão
type TaskDetails struct {
	Title    string `json:"title"`
	DueDate  string `json:"dueDate"`
	Duration string `json:"duration"`
	Category string `json:"category"`
}

// TaskRequest aceita tanto {"taskDetails": {...}} quanto os campos na raiz
type TaskRequest struct {
	TaskDetails *TaskDetails `json:"taskDetails,omitempty"`
	Title       string       `json:"title"`
	DueDate     string       `json:"dueDate"`
	Duration    string       `json:"duration"`
	Category    string       `json:"category"`
}

// Details retorna os dados efetivos da requisição
func (r TaskRequest) Details() TaskDetails {
	if r.TaskDetails != nil {
		return *r.TaskDetails
	}
	return TaskDetails{
		Title:    r.Title,
		DueDate:  r.DueDate,
		Duration: r.Duration,
		Category: r.Category,
	}
}
