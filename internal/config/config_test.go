package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_PROVIDER", "")
	t.Setenv("STORAGE", "")
	t.Setenv("PORT", "")
	t.Setenv("RECOMMENDER_URL", "")
	t.Setenv("RECOMMENDER_RATE_LIMIT", "")
	t.Setenv("RECOMMENDER_RETRY_BACKOFF", "")
	t.Setenv("CHART_CACHE_TTL", "")
	t.Setenv("DB_CONNECT_ATTEMPTS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.Storage != StoragePostgres {
		t.Errorf("Expected postgres storage, got %s", cfg.Storage)
	}
	if cfg.Auth.Provider != AuthGoogle {
		t.Errorf("Expected google auth, got %s", cfg.Auth.Provider)
	}
	if cfg.Recommend.URL != "http://localhost:8888" {
		t.Errorf("Unexpected recommender URL %s", cfg.Recommend.URL)
	}
	if cfg.Recommend.RetryBackoff != time.Second {
		t.Errorf("Unexpected backoff %v", cfg.Recommend.RetryBackoff)
	}
	if cfg.CacheTTL != 30*time.Minute {
		t.Errorf("Unexpected cache TTL %v", cfg.CacheTTL)
	}
	if cfg.Database.ConnectAttempts != 5 {
		t.Errorf("Unexpected connect attempts %d", cfg.Database.ConnectAttempts)
	}
}

func TestLoadStaticRequiresToken(t *testing.T) {
	t.Setenv("AUTH_PROVIDER", AuthStatic)
	t.Setenv("TOKEN_API", "")

	_, err := Load()
	if !errors.Is(err, ErrMissingToken) {
		t.Errorf("Expected ErrMissingToken, got %v", err)
	}

	t.Setenv("TOKEN_API", "secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Auth.TokenAPI != "secret" {
		t.Errorf("Expected token to be loaded")
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"storage", "STORAGE", "mongo"},
		{"auth provider", "AUTH_PROVIDER", "saml"},
		{"rate limit", "RECOMMENDER_RATE_LIMIT", "abc"},
		{"negative rate limit", "RECOMMENDER_RATE_LIMIT", "-1"},
		{"backoff", "RECOMMENDER_RETRY_BACKOFF", "soon"},
		{"connect attempts", "DB_CONNECT_ATTEMPTS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AUTH_PROVIDER", "")
			t.Setenv("STORAGE", "")
			t.Setenv("RECOMMENDER_RATE_LIMIT", "")
			t.Setenv("RECOMMENDER_RETRY_BACKOFF", "")
			t.Setenv("DB_CONNECT_ATTEMPTS", "")
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); !errors.Is(err, ErrInvalidValue) {
				t.Errorf("Expected ErrInvalidValue, got %v", err)
			}
		})
	}
}

func TestRecommenderURLTrailingSlash(t *testing.T) {
	t.Setenv("AUTH_PROVIDER", "")
	t.Setenv("STORAGE", "")
	t.Setenv("RECOMMENDER_URL", "http://recs:4000/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Recommend.URL != "http://recs:4000" {
		t.Errorf("Expected trailing slash trimmed, got %s", cfg.Recommend.URL)
	}
}
