// Package httpapi exposes batch checks over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/urlstatus/internal/config"
	"github.com/hamed0406/urlstatus/internal/domain"
	apimw "github.com/hamed0406/urlstatus/internal/httpapi/middleware"
	"github.com/hamed0406/urlstatus/internal/input"
	"github.com/hamed0406/urlstatus/internal/report"
	"github.com/hamed0406/urlstatus/internal/scheduler"
)

// Settings is the checker configuration the API runs with.
type Settings struct {
	TimeoutSeconds  float64 `json:"timeout_seconds"`
	Workers         int     `json:"workers"`
	UserAgent       string  `json:"user_agent"`
	FollowRedirects bool    `json:"follow_redirects"`
	DNSDiagnose     bool    `json:"dns_diagnose"`
	MaxURLs         int     `json:"max_urls"`
}

// SettingsFrom copies the API-relevant fields of cfg.
func SettingsFrom(cfg config.Config) Settings {
	return Settings{
		TimeoutSeconds:  cfg.Timeout.Seconds(),
		Workers:         cfg.MaxWorkers,
		UserAgent:       cfg.UserAgent,
		FollowRedirects: cfg.FollowRedirects,
		DNSDiagnose:     cfg.DNSDiagnose,
		MaxURLs:         cfg.APIMaxURLs,
	}
}

type Server struct {
	Logger   *zap.Logger
	Batch    *scheduler.Batch
	Settings Settings
}

func NewServer(l *zap.Logger, b *scheduler.Batch, s Settings) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{Logger: l, Batch: b, Settings: s}
}

// Router mounts the API. CORS headers are only sent for allowedOrigins;
// with none configured, browsers stay same-origin.
func (s *Server) Router(keys apimw.Keys, allowedOrigins []string, rpm, burst int) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-API-Key"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(apimw.RateLimit(rpm, burst))

		r.With(apimw.RequireAny(keys)).Post("/check", s.handleCheck)
		r.With(apimw.RequireAdmin(keys)).Get("/admin/settings", s.handleSettings)
	})
	return r
}

// maxBodyBytes caps a /api/check request body.
const maxBodyBytes = 1 << 20

type checkPayload struct {
	URLs            []string `json:"urls"`
	FollowRedirects *bool    `json:"follow_redirects"`
}

type checkResponse struct {
	Results []domain.ProbeResult `json:"results"`
	Summary domain.Summary       `json:"summary"`
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var p checkPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&p); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}

	var urls []string
	for _, u := range p.URLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	urls = input.Dedupe(urls)
	if len(urls) == 0 {
		writeError(w, http.StatusBadRequest, input.ErrNoURLs.Error())
		return
	}
	if len(urls) > s.Settings.MaxURLs {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("too many urls: %d > %d", len(urls), s.Settings.MaxURLs))
		return
	}

	follow := s.Settings.FollowRedirects
	if p.FollowRedirects != nil {
		follow = *p.FollowRedirects
	}

	start := time.Now()
	results, err := s.Batch.Run(r.Context(), urls, follow)
	if err != nil {
		s.Logger.Error("api_check_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "check failed")
		return
	}
	report.SortByInput(results, urls)
	sum := domain.Summarize(results)

	s.Logger.Info("api_check",
		zap.Int("urls", len(urls)),
		zap.Int("up", sum.StatusCounts[domain.StatusUp]),
		zap.Duration("elapsed", time.Since(start)),
	)
	writeJSON(w, http.StatusOK, checkResponse{Results: results, Summary: sum})
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Settings)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
