package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/voacom/commercial-intelligence-system/internal/ratelimit"
	"github.com/voacom/commercial-intelligence-system/internal/util"
	"github.com/voacom/commercial-intelligence-system/pkg/domain"
	"github.com/voacom/commercial-intelligence-system/services/platform/internal/app"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App                          *app.App
	RedisAddr                    string
	RedisPassword                string
	LoginRateLimitPerMinute      int
	GenerationRateLimitPerMinute int
	AllowedOrigins               []string
	TrustedProxies               []string
}

// Server exposes the platform HTTP API.
type Server struct {
	app             *app.App
	mux             *http.ServeMux
	loginLimiter    *ratelimit.FixedWindowLimiter
	generateLimiter *ratelimit.FixedWindowLimiter
	allowedOrigins  []string
	trustedProxies  *util.TrustedProxies
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	loginLimit := cfg.LoginRateLimitPerMinute
	if loginLimit <= 0 {
		loginLimit = 10
	}
	loginLimiter, err := ratelimit.NewRedisFixedWindowLimiter(
		cfg.RedisAddr, cfg.RedisPassword, "voa:platform:ratelimit:login", loginLimit, time.Minute)
	if err != nil {
		return nil, fmt.Errorf("init login limiter: %w", err)
	}
	generateLimit := cfg.GenerationRateLimitPerMinute
	if generateLimit <= 0 {
		generateLimit = 5
	}
	generateLimiter, err := ratelimit.NewRedisFixedWindowLimiter(
		cfg.RedisAddr, cfg.RedisPassword, "voa:platform:ratelimit:generate", generateLimit, time.Minute)
	if err != nil {
		return nil, fmt.Errorf("init generation limiter: %w", err)
	}
	trusted, err := util.NewTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("parse trusted proxies: %w", err)
	}
	s := &Server{
		app:             cfg.App,
		mux:             http.NewServeMux(),
		loginLimiter:    loginLimiter,
		generateLimiter: generateLimiter,
		allowedOrigins:  cfg.AllowedOrigins,
		trustedProxies:  trusted,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(
		util.WithRequestLog("platform",
			util.WithSecurityHeaders(util.WithCORS(s.allowedOrigins, s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	s.mux.HandleFunc("/api/login", s.handleLogin)
	s.mux.Handle("/users/me", s.authenticated(s.handleCurrentUser))

	// design projects
	s.mux.Handle("/api/design/projects", s.authenticated(s.handleProjects))
	s.mux.Handle("/api/design/projects/", s.authenticated(s.handleProjectByID))
	s.mux.HandleFunc("/api/design/manual/generate", s.handleGenerateManual)

	// mock generation surfaces not yet backed by real pipelines
	s.mux.HandleFunc("/api/design/poster/generate", s.handleGeneratePoster)
	s.mux.HandleFunc("/api/growth/video/generate", s.handleGenerateVideo)

	// static analytics surfaces
	s.mux.HandleFunc("/api/dashboard/stats", s.handleDashboardStats)
	s.mux.HandleFunc("/api/crm/clients", s.handleCRMClients)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth wrappers
type authHandler func(http.ResponseWriter, *http.Request, domain.User)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authorize(r)
		if !ok {
			s.audit(r, "platform.authorize", "fail")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, user)
	})
}

func (s *Server) authorize(r *http.Request) (domain.User, bool) {
	token, ok := bearerToken(r)
	if !ok {
		return domain.User{}, false
	}
	return s.app.UserFromToken(token)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.loginLimiter, "too many login attempts, please retry later") {
		return
	}
	var req loginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	token, user, err := s.app.Login(req.Username, req.Password)
	if err != nil {
		s.audit(r, "platform.login", "fail", "username", req.Username)
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	s.audit(r, "platform.login", "success", "user_id", user.ID)
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		projects, err := s.app.ListProjects(user)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, projects)
	case http.MethodPost:
		var req createProjectRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		project, err := s.app.CreateProject(user, req.Type, req.Title, req.Content)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, project)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleProjectByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	id := strings.TrimPrefix(r.URL.Path, "/api/design/projects/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodPut:
		var req updateProjectRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		project, err := s.app.UpdateProject(user, id, req.Title, req.Content)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, project)
	case http.MethodDelete:
		if err := s.app.DeleteProject(user, id); err != nil {
			writeAppError(w, err)
			return
		}
		s.audit(r, "platform.project.delete", "success", "user_id", user.ID, "project_id", id)
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "success",
			"message": "Project deleted",
		})
	default:
		methodNotAllowed(w)
	}
}

// handleGenerateManual is deliberately unauthenticated, mirroring the demo
// deployment this API started life in.
func (s *Server) handleGenerateManual(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.generateLimiter, "too many generation requests, please retry later") {
		return
	}
	var req generateManualRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	outline, err := s.app.GenerateManual(r.Context(), req.Topic, req.Industry, req.TargetAudience)
	if err != nil {
		if errors.Is(err, app.ErrTopicRequired) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("manual generation failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, generateManualResponse{
		Status:  "success",
		Message: "Handbook generated successfully",
		Data:    outline,
	})
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleGeneratePoster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req generatePosterRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"message":   fmt.Sprintf("Generating poster for theme: %s", req.Theme),
		"image_url": "https://example.com/poster-preview.jpg",
	})
}

func (s *Server) handleGenerateVideo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req generateVideoRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "success",
		"message":     "Video generation task started",
		"task_id":     "vid-12345",
		"eta_seconds": 120,
	})
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_projects":  128,
		"active_clients":  45,
		"conversion_rate": "12.5%",
		"revenue":         "¥1,250,000",
	})
}

func (s *Server) handleCRMClients(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, []map[string]any{
		{"id": 1, "name": "Tech Corp", "status": "Potential", "last_contact": "2024-02-01"},
		{"id": 2, "name": "Finance Ltd", "status": "Signed", "last_contact": "2024-01-28"},
		{"id": 3, "name": "Retail Inc", "status": "Negotiating", "last_contact": "2024-02-03"},
	})
}

func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrProjectNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrNotOwner):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, app.ErrTitleRequired), errors.Is(err, app.ErrTypeRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type createProjectRequest struct {
	Type    string                `json:"type"`
	Title   string                `json:"title"`
	Content domain.ProjectContent `json:"content"`
}

type updateProjectRequest struct {
	Title   *string                `json:"title"`
	Content *domain.ProjectContent `json:"content"`
}

type generateManualRequest struct {
	Topic          string `json:"topic"`
	Industry       string `json:"industry"`
	TargetAudience string `json:"target_audience"`
}

type generatePosterRequest struct {
	Theme   string `json:"theme"`
	Content string `json:"content"`
}

type generateVideoRequest struct {
	Script   string `json:"script"`
	AvatarID string `json:"avatar_id"`
}

type generateManualResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Data    domain.Outline `json:"data"`
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", util.ClientIP(r, s.trustedProxies),
		"request_id", util.RequestIDFromRequest(r),
	}
	logAttrs = append(logAttrs, attrs...)
	if outcome == "success" {
		slog.Info("security_event", logAttrs...)
		return
	}
	slog.Warn("security_event", logAttrs...)
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	key := r.URL.Path + "|" + util.ClientIP(r, s.trustedProxies)
	if limiter.Allow(r.Context(), key) {
		return true
	}
	s.audit(r, "platform.ratelimit", "fail")
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
