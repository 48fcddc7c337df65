package logger

import (
	"context"

	"github.com/rs/zerolog"
)

// AuditAction identifica o tipo de evento de auditoria
type AuditAction string

const (
	AuditActionAuthFailed AuditAction = "AUTH_FAILED"

	AuditActionTaskCreate AuditAction = "TASK_CREATE"
	AuditActionTaskUpdate AuditAction = "TASK_UPDATE"
	AuditActionTaskDelete AuditAction = "TASK_DELETE"
	AuditActionTaskExport AuditAction = "TASK_EXPORT"

	AuditActionGoalsUpdate AuditAction = "GOALS_UPDATE"

	AuditActionRecsGenerate AuditAction = "RECS_GENERATE"
	AuditActionRecsFeedback AuditAction = "RECS_FEEDBACK"

	AuditActionEventCreate AuditAction = "EVENT_CREATE"

	AuditActionWSConnect    AuditAction = "WS_CONNECT"
	AuditActionWSDisconnect AuditAction = "WS_DISCONNECT"

	AuditActionAPIRequest AuditAction = "API_REQUEST"
	AuditActionAPIError   AuditAction = "API_ERROR"
)

// AuditEvent é uma entrada do log de auditoria. Campos vazios são omitidos;
// UserID, Email, RequestID e OperationID vêm do contexto quando não informados.
type AuditEvent struct {
	Action      AuditAction
	UserID      string
	Email       string
	Resource    string
	ResourceID  string
	Details     map[string]interface{}
	ClientIP    string
	RequestID   string
	OperationID string
	Success     bool
	Error       string
	Duration    int64 // ms
	Method      string
	Path        string
	StatusCode  int
}

var auditLogger zerolog.Logger

// InitAudit deriva o logger de auditoria (log_type=audit) do global
func InitAudit() {
	auditLogger = globalLogger.With().Str("log_type", "audit").Logger()
}

func init() {
	InitAudit()
}

func orContext(ctx context.Context, key ctxKey, v string) string {
	if v != "" {
		return v
	}
	return value(ctx, key)
}

// Audit grava o evento. Falhas vão em Warn para facilitar alertas.
func Audit(ctx context.Context, event AuditEvent) {
	ev := auditLogger.Info()
	if !event.Success {
		ev = auditLogger.Warn()
	}

	ev.Str("action", string(event.Action)).
		Bool("success", event.Success).
		Str("user_id", orContext(ctx, userIDKey, event.UserID)).
		Str("resource", event.Resource)

	optional := []struct{ k, v string }{
		{"resource_id", event.ResourceID},
		{"email", orContext(ctx, emailKey, event.Email)},
		{"request_id", orContext(ctx, requestIDKey, event.RequestID)},
		{"operation_id", orContext(ctx, operationIDKey, event.OperationID)},
		{"client_ip", event.ClientIP},
		{"method", event.Method},
		{"path", event.Path},
		{"error", event.Error},
	}
	for _, f := range optional {
		if f.v != "" {
			ev.Str(f.k, f.v)
		}
	}

	if event.StatusCode > 0 {
		ev.Int("status_code", event.StatusCode)
	}
	if event.Duration > 0 {
		ev.Int64("duration_ms", event.Duration)
	}
	if len(event.Details) > 0 {
		ev.Interface("details", event.Details)
	}

	ev.Msg("Audit event")
}

// AuditMutation registra uma alteração feita pelo usuário do contexto
func AuditMutation(ctx context.Context, action AuditAction, resource, resourceID string, err error) {
	event := AuditEvent{
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Success:    err == nil,
	}
	if err != nil {
		event.Error = err.Error()
	}
	Audit(ctx, event)
}

// AuditRequest registra uma requisição de escrita na API
func AuditRequest(ctx context.Context, method, path string, statusCode int, duration int64, userID, clientIP string) {
	action := AuditActionAPIRequest
	if statusCode >= 400 {
		action = AuditActionAPIError
	}

	Audit(ctx, AuditEvent{
		Action:     action,
		UserID:     userID,
		Resource:   "api",
		Method:     method,
		Path:       path,
		StatusCode: statusCode,
		Duration:   duration,
		ClientIP:   clientIP,
		Success:    statusCode < 400,
	})
}

// AuditWebSocket registra conexão e desconexão de clientes do hub
func AuditWebSocket(ctx context.Context, action AuditAction, userID, clientIP string, details map[string]interface{}) {
	Audit(ctx, AuditEvent{
		Action:   action,
		UserID:   userID,
		Resource: "websocket",
		ClientIP: clientIP,
		Success:  true,
		Details:  details,
	})
}
