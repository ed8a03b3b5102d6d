package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akashgupta/spendlens/internal/logger"
)

func TestRequestIDAndLoggerChain(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The request-scoped logger must be reachable from handler code.
		reqLog := logger.FromContext(r.Context())
		reqLog.Info().Msg("handler ran")
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequestID(log)(Logger(inner))

	req := httptest.NewRequest(http.MethodGet, "/api/tags?user_id=u1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected an assigned X-Request-ID header")
	}

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines (handler + access log), got %d: %s", len(lines), buf.String())
	}
	for _, line := range lines {
		var entry map[string]interface{}
		if err := json.Unmarshal(line, &entry); err != nil {
			t.Fatalf("log line is not JSON: %s", line)
		}
		if entry["request_id"] == "" || entry["request_id"] == nil {
			t.Errorf("log line missing request_id: %s", line)
		}
	}

	var access map[string]interface{}
	if err := json.Unmarshal(lines[1], &access); err != nil {
		t.Fatalf("decode access log: %v", err)
	}
	if access["method"] != "GET" || access["path"] != "/api/tags" {
		t.Errorf("unexpected access log entry: %s", lines[1])
	}
	if access["status"] != float64(http.StatusNoContent) {
		t.Errorf("status = %v, want 204", access["status"])
	}
}

func TestRequestIDHonorsCallerHeader(t *testing.T) {
	handler := RequestID(logger.NewWithWriter(&bytes.Buffer{}))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
	)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "caller-supplied")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "caller-supplied" {
		t.Errorf("X-Request-ID = %q, want the caller's value echoed", got)
	}
}
