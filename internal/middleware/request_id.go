package middleware

import (
	"time"

	"github.com/cleberrangel/timelyai-api/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"

	maxClientIDLength = 64
)

// probePaths são consultadas a cada poucos segundos por orquestradores;
// a conclusão delas vai para Debug
var probePaths = map[string]bool{
	"/health/live":  true,
	"/health/ready": true,
	"/metrics":      true,
}

// RequestID propaga (ou cria) request_id e trace_id e registra o fim de cada
// requisição com o logger do contexto
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := clientID(c.GetHeader(HeaderRequestID), func() string { return uuid.New().String()[:8] })
		traceID := clientID(c.GetHeader(HeaderTraceID), uuid.NewString)

		ctx := logger.WithTraceID(logger.WithRequestID(c.Request.Context(), requestID), traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderTraceID, traceID)

		logger.Get(ctx).Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("origin", c.GetHeader("Origin")).
			Msg("Request started")

		c.Next()

		// Relê o contexto: o middleware de identidade acrescenta user_id
		log := logger.Get(c.Request.Context())
		status := c.Writer.Status()

		var ev *zerolog.Event
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		case probePaths[c.Request.URL.Path]:
			ev = log.Debug()
		default:
			ev = log.Info()
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		ev.Int("status", status).
			Str("method", c.Request.Method).
			Str("route", route).
			Str("client_ip", c.ClientIP()).
			Int("size", c.Writer.Size()).
			Float64("latency_ms", float64(time.Since(start).Microseconds())/1000).
			Msg("Request completed")
	}
}

// clientID aceita o ID enviado pelo cliente quando ele é seguro para logs;
// caso contrário usa generate
func clientID(v string, generate func() string) string {
	if v == "" || len(v) > maxClientIDLength || SanitizeID(v) != v {
		return generate()
	}
	return v
}
