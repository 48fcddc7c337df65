// Package identity resolve o bearer token recebido da extensão em um
// usuário. O servidor nunca executa o fluxo OAuth, apenas valida tokens.
package identity

import "context"

// Identity é o usuário dono do token
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
}

// Resolver transforma um token em Identity.
// Token inválido ou expirado retorna model.ErrUnauthorized.
type Resolver interface {
	Resolve(ctx context.Context, token string) (Identity, error)
}

type ctxKey struct{}

// WithUserHint anexa ao contexto o usuário informado pelo cliente
// (header X-User-ID). Apenas o StaticResolver o considera.
func WithUserHint(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, userID)
}

func userHint(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok {
		return v
	}
	return ""
}
