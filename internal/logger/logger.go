// Package logger mantém o zerolog global e os loggers filhos carregados no
// context.Context de cada requisição.
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const serviceName = "timelyai-api"

type ctxKey string

const (
	loggerKey      ctxKey = "logger"
	requestIDKey   ctxKey = "request_id"
	traceIDKey     ctxKey = "trace_id"
	userIDKey      ctxKey = "user_id"
	emailKey       ctxKey = "email"
	operationIDKey ctxKey = "operation_id"
)

var globalLogger = zerolog.New(os.Stdout).With().Timestamp().Str("service", serviceName).Logger()

// Init configura o logger global. Sem jsonFormat usa o ConsoleWriter.
func Init(level string, jsonFormat bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if !jsonFormat {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	globalLogger = zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	InitAudit()
}

// Global retorna o logger global
func Global() *zerolog.Logger {
	return &globalLogger
}

// Get retorna o logger do contexto ou o global
func Get(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok {
			return l
		}
	}
	return &globalLogger
}

// FromGin extrai o logger do contexto da requisição
func FromGin(c *gin.Context) *zerolog.Logger {
	return Get(c.Request.Context())
}

// withField guarda value no contexto e deriva um logger filho com o campo.
// Valores vazios não viram campo de log.
func withField(ctx context.Context, key ctxKey, value string) context.Context {
	ctx = context.WithValue(ctx, key, value)
	if value == "" {
		return ctx
	}
	l := Get(ctx).With().Str(string(key), value).Logger()
	return context.WithValue(ctx, loggerKey, &l)
}

// WithRequestID inicia o logger da requisição a partir do global
func WithRequestID(ctx context.Context, requestID string) context.Context {
	l := globalLogger.With().Str(string(requestIDKey), requestID).Logger()
	ctx = context.WithValue(ctx, loggerKey, &l)
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithTraceID adiciona o trace_id recebido (ou gerado) na borda
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return withField(ctx, traceIDKey, traceID)
}

// WithUserInfo adiciona a identidade resolvida pelo middleware
func WithUserInfo(ctx context.Context, userID, email string) context.Context {
	return withField(withField(ctx, userIDKey, userID), emailKey, email)
}

// WithOperationID marca uma operação interna (ex.: refresh do gráfico)
func WithOperationID(ctx context.Context, operationID string) context.Context {
	return withField(ctx, operationIDKey, operationID)
}

func value(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

// GetRequestID retorna o request_id do contexto, ou ""
func GetRequestID(ctx context.Context) string {
	return value(ctx, requestIDKey)
}

// GetUserID retorna o user_id do contexto, ou ""
func GetUserID(ctx context.Context) string {
	return value(ctx, userIDKey)
}
