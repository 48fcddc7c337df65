package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cleberrangel/timelyai-api/internal/logger"
	"github.com/cleberrangel/timelyai-api/internal/model"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout timeout padrão para requisições
	DefaultTimeout = 30 * time.Second

	// RetryMaxAttempts número máximo de tentativas por chamada
	RetryMaxAttempts = 3

	// DefaultRetryBackoff tempo de espera entre retries
	DefaultRetryBackoff = time.Second

	// DefaultRequestsPerSecond limite conservador para o backend Python
	DefaultRequestsPerSecond = 2.0

	statusSuccess = "success"
)

// RecommenderOptions configura o cliente
type RecommenderOptions struct {
	BaseURL           string
	Timeout           time.Duration
	RetryBackoff      time.Duration
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// RecommenderClient é o cliente HTTP do backend de recomendações
type RecommenderClient struct {
	baseURL      string
	httpClient   *http.Client
	limiter      *rate.Limiter
	retryBackoff time.Duration
}

// NewRecommenderClient cria um novo cliente
func NewRecommenderClient(opts RecommenderOptions) *RecommenderClient {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RetryBackoff == 0 {
		opts.RetryBackoff = DefaultRetryBackoff
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = DefaultRequestsPerSecond
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		}
	}

	burst := int(opts.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}

	return &RecommenderClient{
		baseURL:      opts.BaseURL,
		httpClient:   httpClient,
		limiter:      rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst),
		retryBackoff: opts.RetryBackoff,
	}
}

// GenerateRecommendations pede recomendações para o usuário
func (c *RecommenderClient) GenerateRecommendations(ctx context.Context, userID string) ([]json.RawMessage, error) {
	var resp model.RecommendationResponse
	if err := c.post(ctx, "/api/generate-recs", model.RecommendationRequest{UserID: userID}, &resp); err != nil {
		return nil, err
	}

	if resp.Status != statusSuccess {
		logger.Get(ctx).Warn().
			Str("status", resp.Status).
			Str("message", resp.Message).
			Msg("Backend de recomendações não retornou sucesso")
		return nil, model.ErrNoRecommendations
	}

	if resp.Recommendations == nil {
		return []json.RawMessage{}, nil
	}
	return resp.Recommendations, nil
}

// SendFeedback registra se o usuário aceitou a recomendação
func (c *RecommenderClient) SendFeedback(ctx context.Context, feedback model.FeedbackRequest) error {
	return c.post(ctx, "/api/feedback", feedback, nil)
}

// Ping verifica se o backend responde (usado pelo readiness)
func (c *RecommenderClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("criar request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(ctx, err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: status %d", model.ErrRecommenderUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *RecommenderClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("serializar payload: %w", err)
	}

	return c.doRequestWithRetry(ctx, c.baseURL+path, payload, out)
}

// doRequestWithRetry executa request com retry e backoff fixo
func (c *RecommenderClient) doRequestWithRetry(ctx context.Context, url string, payload []byte, out interface{}) error {
	var lastErr error

	for attempt := 1; attempt <= RetryMaxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		err := c.doRequest(ctx, url, payload, out)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return err
		}

		// Erros definitivos não são repetidos
		if !retryable(err) {
			return err
		}

		if attempt < RetryMaxAttempts {
			logger.Get(ctx).Warn().
				Str("url", url).
				Int("attempt", attempt).
				Int("max_attempts", RetryMaxAttempts).
				Err(err).
				Dur("backoff", c.retryBackoff).
				Msg("Tentativa falhou, aguardando retry")

			select {
			case <-time.After(c.retryBackoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	logger.Get(ctx).Error().
		Str("url", url).
		Int("attempts", RetryMaxAttempts).
		Err(lastErr).
		Msg("Falha definitiva ao chamar backend de recomendações")
	return lastErr
}

func (c *RecommenderClient) doRequest(ctx context.Context, url string, payload []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("criar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if id := logger.GetRequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(ctx, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusTooManyRequests:
		return model.ErrRateLimited
	case http.StatusUnauthorized:
		return model.ErrUnauthorized
	case http.StatusNotFound:
		return model.ErrNotFound
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: status %d: %s", model.ErrRecommenderUnavailable, resp.StatusCode, string(body))
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", model.ErrInvalidResponse, err)
	}
	return nil
}

// retryable: só falhas transitórias (indisponibilidade, timeout) são repetidas
func retryable(err error) bool {
	switch {
	case errors.Is(err, model.ErrRateLimited),
		errors.Is(err, model.ErrUnauthorized),
		errors.Is(err, model.ErrNotFound),
		errors.Is(err, model.ErrInvalidResponse):
		return false
	}
	return true
}

// transportError classifica a falha de http.Client.Do. O timeout do próprio
// client chega como net.Error com ctx ainda válido.
func transportError(ctx context.Context, err error) error {
	var netErr net.Error
	if ctx.Err() != nil || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", model.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", model.ErrRecommenderUnavailable, err)
}
