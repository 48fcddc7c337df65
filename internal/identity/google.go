package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cleberrangel/timelyai-api/internal/cache"
	"github.com/cleberrangel/timelyai-api/internal/logger"
	"github.com/cleberrangel/timelyai-api/internal/model"
	"google.golang.org/api/googleapi"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// MaxCacheTTL limita quanto tempo uma identidade resolvida fica em cache
const MaxCacheTTL = 10 * time.Minute

// GoogleResolver valida access tokens do Google via tokeninfo
type GoogleResolver struct {
	svc      *oauth2api.Service
	clientID string
	cache    *cache.Cache[Identity]
}

// GoogleOptions configura o GoogleResolver
type GoogleOptions struct {
	// ClientID, se preenchido, exige que o token tenha sido emitido para este app
	ClientID string
	// Endpoint substitui o endpoint do Google (testes)
	Endpoint   string
	HTTPClient *http.Client
}

// NewGoogleResolver cria o resolver
func NewGoogleResolver(ctx context.Context, opts GoogleOptions) (*GoogleResolver, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	clientOpts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	svc, err := oauth2api.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("criar serviço oauth2: %w", err)
	}

	return &GoogleResolver{
		svc:      svc,
		clientID: opts.ClientID,
		cache:    cache.NewCache[Identity](MaxCacheTTL),
	}, nil
}

// Resolve implementa Resolver
func (r *GoogleResolver) Resolve(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, model.ErrUnauthorized
	}

	key := tokenKey(token)
	if id, ok := r.cache.Get(key); ok {
		return id, nil
	}

	info, err := r.svc.Tokeninfo().AccessToken(token).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code >= 400 && apiErr.Code < 500 {
			return Identity{}, model.ErrUnauthorized
		}
		return Identity{}, fmt.Errorf("tokeninfo: %w", err)
	}

	if info.UserId == "" || info.ExpiresIn <= 0 {
		return Identity{}, model.ErrUnauthorized
	}
	if r.clientID != "" && info.Audience != r.clientID {
		logger.Get(ctx).Warn().Str("audience", info.Audience).Msg("Token emitido para outro cliente")
		return Identity{}, model.ErrUnauthorized
	}

	id := Identity{UserID: info.UserId, Email: info.Email}
	r.cache.SetWithTTL(key, id, cacheTTL(info.ExpiresIn))
	return id, nil
}

// Close libera o cache
func (r *GoogleResolver) Close() {
	r.cache.Stop()
}

func cacheTTL(expiresIn int64) time.Duration {
	ttl := time.Duration(expiresIn) * time.Second
	if ttl > MaxCacheTTL {
		return MaxCacheTTL
	}
	return ttl
}

// O token nunca é usado como chave em claro
func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
