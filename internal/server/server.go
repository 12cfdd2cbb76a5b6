// Package server implements the optional proxy endpoint that routes refine
// requests to a separately configured OpenAI-compatible provider. It exposes
// three routes: POST /config, GET /status, and POST /refine.
package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"redline/internal/provider"
)

// RuntimeConfig is the provider routing state, settable at runtime via
// POST /config or a watched config file.
type RuntimeConfig struct {
	APIURL    string
	APIKey    string
	Model     string
	MaxTokens int
}

func (c RuntimeConfig) configured() bool {
	return c.APIURL != "" && c.APIKey != ""
}

// Options bounds server behavior.
type Options struct {
	// MaxBodyBytes caps request body size; larger bodies get 413.
	MaxBodyBytes int64

	// UpstreamTimeout bounds the proxied provider call; 504 on expiry.
	UpstreamTimeout time.Duration
}

const (
	defaultMaxBody = 1 << 20
	defaultTimeout = 60 * time.Second
)

// Server holds the mutex-guarded runtime config and the route handlers.
type Server struct {
	mu  sync.RWMutex
	cfg RuntimeConfig

	maxBody int64
	timeout time.Duration
	log     *zap.Logger
}

// New creates a server. A nil logger means no logging.
func New(log *zap.Logger, opts Options) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBody
	}
	timeout := opts.UpstreamTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Server{
		maxBody: maxBody,
		timeout: timeout,
		log:     log,
	}
}

// SetConfig replaces the runtime config.
func (s *Server) SetConfig(cfg RuntimeConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

// Config returns a copy of the runtime config.
func (s *Server) Config() RuntimeConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/config", s.handleConfig)
	r.Get("/status", s.handleStatus)
	r.Post("/refine", s.handleRefine)
	return r
}

type configRequest struct {
	APIURL    string `json:"apiUrl"`
	APIKey    string `json:"apiKey"`
	Model     string `json:"model"`
	MaxTokens int    `json:"maxTokens"`
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[configRequest](w, r, s.maxBody)
	if !ok {
		return
	}
	if strings.TrimSpace(req.APIURL) == "" {
		writeError(w, http.StatusBadRequest, "apiUrl is required")
		return
	}
	if strings.TrimSpace(req.APIKey) == "" {
		writeError(w, http.StatusBadRequest, "apiKey is required")
		return
	}
	if req.MaxTokens < 0 {
		writeError(w, http.StatusBadRequest, "maxTokens must not be negative")
		return
	}

	s.SetConfig(RuntimeConfig{
		APIURL:    strings.TrimRight(strings.TrimSpace(req.APIURL), "/"),
		APIKey:    strings.TrimSpace(req.APIKey),
		Model:     strings.TrimSpace(req.Model),
		MaxTokens: req.MaxTokens,
	})
	s.log.Info("proxy config updated", zap.String("api_url", s.Config().APIURL), zap.String("model", s.Config().Model))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	cfg := s.Config()
	writeJSON(w, http.StatusOK, map[string]any{
		"configured": cfg.configured(),
		"apiUrl":     cfg.APIURL,
		"model":      cfg.Model,
		"maskedKey":  maskKey(cfg.APIKey),
	})
}

type refineRequest struct {
	Messages []provider.Message `json:"messages"`
}

func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	log := s.log.With(zap.String("request_id", requestID))

	cfg := s.Config()
	if !cfg.configured() {
		writeError(w, http.StatusServiceUnavailable, "proxy not configured")
		return
	}

	req, ok := readJSON[refineRequest](w, r, s.maxBody)
	if !ok {
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages must not be empty")
		return
	}
	for i, m := range req.Messages {
		switch m.Role {
		case "system", "user", "assistant":
		default:
			writeError(w, http.StatusBadRequest, "invalid role in message "+strconv.Itoa(i))
			return
		}
		if m.Content == "" {
			writeError(w, http.StatusBadRequest, "empty content in message "+strconv.Itoa(i))
			return
		}
	}

	client := provider.NewOpenAIClient(provider.Options{
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.APIURL,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		Timeout:   s.timeout,
	})

	text, err := client.CompleteMessages(r.Context(), req.Messages)
	if err != nil {
		status, msg := classifyUpstream(err)
		log.Warn("proxied refine failed", zap.Int("status", status), zap.Error(err))
		writeError(w, status, msg)
		return
	}

	log.Info("proxied refine ok", zap.Int("messages", len(req.Messages)), zap.Int("reply_len", len(text)))
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// classifyUpstream maps provider failures onto the proxy's status contract.
func classifyUpstream(err error) (int, string) {
	var upErr *provider.UpstreamError
	switch {
	case errors.Is(err, provider.ErrTimeout):
		return http.StatusGatewayTimeout, "upstream request timed out"
	case errors.Is(err, provider.ErrNotConfigured):
		return http.StatusServiceUnavailable, "proxy not configured"
	case errors.Is(err, provider.ErrEmptyResponse):
		return http.StatusBadGateway, "upstream returned no text"
	case errors.As(err, &upErr):
		return http.StatusBadGateway, upErr.Message
	default:
		return http.StatusInternalServerError, "unexpected proxy failure"
	}
}

// maskKey hides all but the last four characters of a key.
func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
