package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"crypto-actus-bot/internal/infra/logging"
	"crypto-actus-bot/internal/infra/metrics"
)

const (
	maxUpdateBytes = 1 << 20
	// Bounds one webhook call: news fetch (at most 10s) plus the Telegram sends.
	webhookTimeout = 30 * time.Second
)

// UpdateHandler processes one Telegram update synchronously.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update) error
}

// Server is the webhook HTTP surface: liveness routes, metrics and the update endpoint.
type Server struct {
	updates UpdateHandler
	token   string
	version string
	log     *zerolog.Logger
}

func NewServer(updates UpdateHandler, token, version string, logger *zerolog.Logger) (*Server, error) {
	if updates == nil {
		return nil, errors.New("update handler is nil")
	}
	if token == "" {
		return nil, errors.New("bot token is empty")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Server{updates: updates, token: token, version: version, log: logger}, nil
}

// Router builds the chi router. The update route path is the bot token itself.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID(), RequestLog(s.log), Recover(s.log))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.With(Timeout(webhookTimeout)).Post("/{token}", s.handleWebhook)
	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, fmt.Sprintf("Bot server is running. Version: %s", s.version))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "OK")
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if subtle.ConstantTimeCompare([]byte(chi.URLParam(r, "token")), []byte(s.token)) != 1 {
		http.NotFound(w, r)
		return
	}
	l := logging.With(r.Context(), s.log)

	var update tgbotapi.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBytes)).Decode(&update); err != nil {
		metrics.IncWebhookUpdate("bad_payload")
		l.Error().Err(err).Msg("undecodable webhook update")
		writeText(w, http.StatusInternalServerError, "error")
		return
	}

	if err := s.updates.HandleUpdate(r.Context(), update); err != nil {
		metrics.IncWebhookUpdate("failed")
		l.Error().Err(err).Int("update_id", update.UpdateID).Msg("webhook update failed")
		writeText(w, http.StatusInternalServerError, "error")
		return
	}
	metrics.IncWebhookUpdate("ok")
	writeText(w, http.StatusOK, "ok")
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
