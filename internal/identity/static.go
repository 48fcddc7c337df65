package identity

import (
	"context"
	"crypto/subtle"

	"github.com/cleberrangel/timelyai-api/internal/model"
)

// DefaultUserID é o usuário do StaticResolver quando nenhum hint é enviado
const DefaultUserID = "dev"

// StaticResolver aceita um único token compartilhado (TOKEN_API).
// Usado em desenvolvimento e testes.
type StaticResolver struct {
	token string
}

// NewStaticResolver cria o resolver com o token esperado
func NewStaticResolver(token string) *StaticResolver {
	return &StaticResolver{token: token}
}

// Resolve implementa Resolver
func (r *StaticResolver) Resolve(ctx context.Context, token string) (Identity, error) {
	if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(r.token)) != 1 {
		return Identity{}, model.ErrUnauthorized
	}

	userID := userHint(ctx)
	if userID == "" {
		userID = DefaultUserID
	}
	return Identity{UserID: userID}, nil
}
