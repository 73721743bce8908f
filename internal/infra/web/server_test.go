//go:build !integration

package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"crypto-actus-bot/internal/config"
	"crypto-actus-bot/internal/infra/logging"
)

const testToken = "123456:ABC-def"

type mockUpdateHandler struct {
	mu          sync.Mutex
	updates     []tgbotapi.Update
	err         error
	panics      bool
	hadDeadline bool
}

func (m *mockUpdateHandler) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if m.panics {
		panic("dispatcher blew up")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, update)
	_, hasDeadline := ctx.Deadline()
	m.hadDeadline = hasDeadline
	return m.err
}

func newTestServer(t *testing.T, h UpdateHandler, logger *zerolog.Logger) http.Handler {
	t.Helper()
	s, err := NewServer(h, testToken, "v9.9.9", logger)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s.Router()
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoot(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, &mockUpdateHandler{}, nil)

	rec := do(h, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "Bot server is running. Version: v9.9.9" {
		t.Errorf("GET / = %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected a generated request id")
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, &mockUpdateHandler{}, nil)

	rec := do(h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("GET /health = %d %q", rec.Code, rec.Body.String())
	}
}

func TestMetricsRoute(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, &mockUpdateHandler{}, nil)

	rec := do(h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("metrics exposition is missing runtime collectors")
	}
}

func TestWebhook_OK(t *testing.T) {
	t.Parallel()
	m := &mockUpdateHandler{}
	h := newTestServer(t, m, nil)

	body, _ := json.Marshal(tgbotapi.Update{UpdateID: 77, Message: &tgbotapi.Message{Text: "/actus"}})
	rec := do(h, http.MethodPost, "/"+testToken, string(body))

	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("POST webhook = %d %q", rec.Code, rec.Body.String())
	}
	if len(m.updates) != 1 || m.updates[0].UpdateID != 77 || m.updates[0].Message.Text != "/actus" {
		t.Errorf("handler got %+v", m.updates)
	}
	if !m.hadDeadline {
		t.Error("webhook handler should run under a deadline")
	}
}

func TestWebhook_Errors(t *testing.T) {
	t.Parallel()

	t.Run("bad json -> 500", func(t *testing.T) {
		m := &mockUpdateHandler{}
		rec := do(newTestServer(t, m, nil), http.MethodPost, "/"+testToken, "{not json")
		if rec.Code != http.StatusInternalServerError || rec.Body.String() != "error" {
			t.Errorf("got %d %q", rec.Code, rec.Body.String())
		}
		if len(m.updates) != 0 {
			t.Error("handler must not run on a bad payload")
		}
	})

	t.Run("handler error -> 500", func(t *testing.T) {
		m := &mockUpdateHandler{err: errors.New("no reply delivered")}
		rec := do(newTestServer(t, m, nil), http.MethodPost, "/"+testToken, `{"update_id":1}`)
		if rec.Code != http.StatusInternalServerError || rec.Body.String() != "error" {
			t.Errorf("got %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("panic -> 500", func(t *testing.T) {
		rec := do(newTestServer(t, &mockUpdateHandler{panics: true}, nil), http.MethodPost, "/"+testToken, `{"update_id":1}`)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("got %d", rec.Code)
		}
	})

	t.Run("wrong token -> 404", func(t *testing.T) {
		m := &mockUpdateHandler{}
		rec := do(newTestServer(t, m, nil), http.MethodPost, "/not-the-token", `{"update_id":1}`)
		if rec.Code != http.StatusNotFound {
			t.Errorf("got %d", rec.Code)
		}
		if len(m.updates) != 0 {
			t.Error("handler must not run for a foreign path")
		}
	})

	t.Run("get on webhook path -> 405", func(t *testing.T) {
		rec := do(newTestServer(t, &mockUpdateHandler{}, nil), http.MethodGet, "/"+testToken, "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("got %d", rec.Code)
		}
	})
}

func TestRequestLog_DoesNotLeakToken(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, config.LogConfig{Level: "info", Format: "json"}, false)
	h := newTestServer(t, &mockUpdateHandler{}, logger)

	rec := do(h, http.MethodPost, "/"+testToken, `{"update_id":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST webhook = %d", rec.Code)
	}
	out := buf.String()
	if strings.Contains(out, testToken) {
		t.Errorf("token leaked into request log: %s", out)
	}
	if !strings.Contains(out, `"route":"/{token}"`) || !strings.Contains(out, `"trace_id"`) {
		t.Errorf("request log missing route or trace id: %s", out)
	}
}

func TestNewServer_Validation(t *testing.T) {
	t.Parallel()
	if _, err := NewServer(nil, testToken, "v", nil); err == nil {
		t.Error("expected error for nil handler")
	}
	if _, err := NewServer(&mockUpdateHandler{}, "", "v", nil); err == nil {
		t.Error("expected error for empty token")
	}
}
