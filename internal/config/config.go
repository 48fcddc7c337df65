package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provedores de identidade suportados
const (
	AuthGoogle = "google"
	AuthStatic = "static"
)

// Backends de armazenamento suportados
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config armazena as configurações da aplicação
type Config struct {
	Port      string
	GinMode   string
	LogLevel  string
	LogJSON   bool
	Storage   string
	Database  DatabaseConfig
	Auth      AuthConfig
	CORS      CORSConfig
	Recommend RecommenderConfig
	CacheTTL  time.Duration
}

// DatabaseConfig agrupa as variáveis DB_*
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	// ConnectAttempts tentativas de conexão na subida
	ConnectAttempts int
}

// AuthConfig define como o bearer token é resolvido em usuário
type AuthConfig struct {
	Provider string
	TokenAPI string
	// ClientID restringe tokens Google ao app da extensão (opcional)
	ClientID string
}

// CORSConfig restringe a origem da extensão
type CORSConfig struct {
	AllowedOrigin string
}

// RecommenderConfig aponta para o backend de recomendações
type RecommenderConfig struct {
	URL          string
	RateLimit    float64
	RetryBackoff time.Duration
	Timeout      time.Duration
}

var (
	// ErrMissingToken indica que um token obrigatório não foi configurado
	ErrMissingToken = errors.New("token obrigatório não configurado")
	// ErrInvalidValue indica uma variável com valor fora do permitido
	ErrInvalidValue = errors.New("valor de configuração inválido")
)

// Load carrega as configurações do ambiente
func Load() (*Config, error) {
	// Tenta carregar .env de múltiplos locais
	_ = godotenv.Load()
	_ = godotenv.Load("../.env")

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogJSON:  strings.EqualFold(os.Getenv("LOG_JSON"), "true"),
		Storage:  getEnv("STORAGE", StoragePostgres),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnv("DB_NAME", "timelyai"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			Provider: getEnv("AUTH_PROVIDER", AuthGoogle),
			TokenAPI: os.Getenv("TOKEN_API"),
			ClientID: os.Getenv("GOOGLE_CLIENT_ID"),
		},
		CORS: CORSConfig{
			AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),
		},
		Recommend: RecommenderConfig{
			URL: strings.TrimRight(getEnv("RECOMMENDER_URL", "http://localhost:8888"), "/"),
		},
	}

	var err error
	if cfg.Recommend.RateLimit, err = getFloat("RECOMMENDER_RATE_LIMIT", 2); err != nil {
		return nil, err
	}
	if cfg.Recommend.RetryBackoff, err = getDuration("RECOMMENDER_RETRY_BACKOFF", time.Second); err != nil {
		return nil, err
	}
	if cfg.Recommend.Timeout, err = getDuration("RECOMMENDER_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getDuration("CHART_CACHE_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Database.ConnectAttempts, err = getInt("DB_CONNECT_ATTEMPTS", 5); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate verifica combinações obrigatórias
func (c *Config) Validate() error {
	switch c.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("%w: STORAGE=%q", ErrInvalidValue, c.Storage)
	}

	switch c.Auth.Provider {
	case AuthGoogle:
	case AuthStatic:
		if c.Auth.TokenAPI == "" {
			return fmt.Errorf("%w: TOKEN_API", ErrMissingToken)
		}
	default:
		return fmt.Errorf("%w: AUTH_PROVIDER=%q", ErrInvalidValue, c.Auth.Provider)
	}

	if c.Recommend.RateLimit <= 0 {
		return fmt.Errorf("%w: RECOMMENDER_RATE_LIMIT deve ser positivo", ErrInvalidValue)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, v)
	}
	return f, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, v)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, v)
	}
	return d, nil
}
