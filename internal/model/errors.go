package model

import "errors"

var (
	// ErrTaskNotFound indica tarefa inexistente para o usuário
	ErrTaskNotFound = errors.New("tarefa não encontrada")

	// ErrInvalidGoal indica meta fora do intervalo [0,100]
	ErrInvalidGoal = errors.New("meta deve estar entre 0 e 100")

	// ErrInvalidTask indica payload de tarefa inválido
	ErrInvalidTask = errors.New("dados da tarefa inválidos")

	// ErrInvalidEvent indica payload de evento inválido
	ErrInvalidEvent = errors.New("dados do evento inválidos")

	// ErrUnauthorized indica token ausente, inválido ou expirado
	ErrUnauthorized = errors.New("token inválido ou expirado")

	// ErrRateLimited indica que o backend de recomendações retornou 429
	ErrRateLimited = errors.New("rate limit excedido no serviço de recomendações")

	// ErrNotFound indica recurso não encontrado no serviço remoto
	ErrNotFound = errors.New("recurso não encontrado no serviço de recomendações")

	// ErrTimeout indica timeout na requisição
	ErrTimeout = errors.New("timeout na requisição para o serviço de recomendações")

	// ErrInvalidResponse indica resposta inválida do serviço remoto
	ErrInvalidResponse = errors.New("resposta inválida do serviço de recomendações")

	// ErrNoRecommendations indica status diferente de "success" na resposta
	ErrNoRecommendations = errors.New("nenhuma recomendação encontrada")

	// ErrRecommenderUnavailable indica backend de recomendações fora do ar
	// (conexão recusada ou resposta 5xx)
	ErrRecommenderUnavailable = errors.New("serviço de recomendações indisponível")

	// ErrCalendarUnavailable indica falha ao falar com o Google Calendar
	ErrCalendarUnavailable = errors.New("falha ao acessar o Google Calendar")
)
