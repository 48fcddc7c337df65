package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// capture redireciona o logger global para um buffer durante o teste
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	prev := globalLogger
	var buf bytes.Buffer
	globalLogger = zerolog.New(&buf)
	InitAudit()
	t.Cleanup(func() {
		globalLogger = prev
		InitAudit()
	})
	return &buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("Invalid log line %q: %v", lines[len(lines)-1], err)
	}
	return entry
}

func TestContextLoggerCarriesFields(t *testing.T) {
	buf := capture(t)

	ctx := WithRequestID(context.Background(), "req1")
	ctx = WithTraceID(ctx, "trace1")
	ctx = WithUserInfo(ctx, "alice", "")
	ctx = WithOperationID(ctx, "op1")

	Get(ctx).Info().Msg("hello")
	entry := lastEntry(t, buf)

	for k, want := range map[string]string{"request_id": "req1", "trace_id": "trace1", "user_id": "alice", "operation_id": "op1"} {
		if entry[k] != want {
			t.Errorf("%s: expected %q, got %v", k, want, entry[k])
		}
	}
	// E-mail vazio não vira campo
	if _, ok := entry["email"]; ok {
		t.Error("Empty email should not be logged")
	}

	if GetRequestID(ctx) != "req1" || GetUserID(ctx) != "alice" {
		t.Error("Context getters returned wrong values")
	}
}

func TestGetWithoutContextLogger(t *testing.T) {
	if Get(nil) != Global() || Get(context.Background()) != Global() {
		t.Error("Expected global logger fallback")
	}
	if GetRequestID(nil) != "" {
		t.Error("Expected empty request id for nil context")
	}
}

func TestAuditUsesContextIdentity(t *testing.T) {
	buf := capture(t)

	ctx := WithUserInfo(WithRequestID(context.Background(), "req9"), "bob", "bob@example.com")
	AuditMutation(ctx, AuditActionTaskDelete, "task", "t1", errors.New("boom"))

	entry := lastEntry(t, buf)
	if entry["log_type"] != "audit" || entry["level"] != "warn" {
		t.Errorf("Unexpected audit entry %v", entry)
	}
	if entry["user_id"] != "bob" || entry["email"] != "bob@example.com" || entry["request_id"] != "req9" {
		t.Errorf("Identity not taken from context: %v", entry)
	}
	if entry["action"] != "TASK_DELETE" || entry["error"] != "boom" || entry["resource_id"] != "t1" {
		t.Errorf("Unexpected fields: %v", entry)
	}
}

func TestAuditRequestStatus(t *testing.T) {
	buf := capture(t)

	AuditRequest(context.Background(), "POST", "/api/tasks", 201, 12, "alice", "127.0.0.1")
	if entry := lastEntry(t, buf); entry["action"] != "API_REQUEST" || entry["success"] != true {
		t.Errorf("Unexpected entry %v", entry)
	}

	AuditRequest(context.Background(), "POST", "/api/goals", 400, 3, "alice", "127.0.0.1")
	if entry := lastEntry(t, buf); entry["action"] != "API_ERROR" || entry["status_code"] != float64(400) {
		t.Errorf("Unexpected entry %v", entry)
	}
}
