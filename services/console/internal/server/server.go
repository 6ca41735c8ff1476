package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/voacom/commercial-intelligence-system/internal/util"
	"github.com/voacom/commercial-intelligence-system/services/console/internal/app"
	"github.com/voacom/commercial-intelligence-system/services/console/internal/editsession"
	"github.com/voacom/commercial-intelligence-system/services/console/internal/platformclient"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App            *app.App
	AllowedOrigins []string
}

// Server exposes the console HTTP API. The console holds the platform token
// itself; its own routes carry no bearer tokens.
type Server struct {
	app            *app.App
	mux            *http.ServeMux
	allowedOrigins []string
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app:            cfg.App,
		mux:            http.NewServeMux(),
		allowedOrigins: cfg.AllowedOrigins,
	}
	s.routes()
	return s
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(
		util.WithRequestLog("console",
			util.WithSecurityHeaders(util.WithCORS(s.allowedOrigins, s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	s.mux.HandleFunc("/api/console/login", s.handleLogin)
	s.mux.HandleFunc("/api/console/logout", s.handleLogout)

	s.mux.HandleFunc("/api/console/features", s.handleFeatures)
	s.mux.HandleFunc("/api/console/features/", s.handleFeatureByID)

	s.mux.HandleFunc("/api/console/session", s.handleSessionSnapshot)
	s.mux.HandleFunc("/api/console/session/form", s.handleSessionForm)
	s.mux.HandleFunc("/api/console/session/generate", s.handleSessionGenerate)
	s.mux.HandleFunc("/api/console/session/confirm", s.handleSessionConfirm)
	s.mux.HandleFunc("/api/console/session/open", s.handleSessionOpen)
	s.mux.HandleFunc("/api/console/session/slides/", s.handleSessionSlide)
	s.mux.HandleFunc("/api/console/session/save", s.handleSessionSave)
	s.mux.HandleFunc("/api/console/session/close", s.handleSessionClose)

	s.mux.HandleFunc("/api/console/projects/", s.handleProjectAction)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.app.Login(r.Context(), req.Username, req.Password); err != nil {
		s.audit(r, "console.login", "fail", "username", req.Username)
		writeFailure(w, err)
		return
	}
	s.audit(r, "console.login", "success", "username", req.Username)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "authenticated": true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	s.app.Logout()
	s.audit(r, "console.logout", "success")
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "authenticated": false})
}

func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"features": s.app.Features()})
}

func (s *Server) handleFeatureByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/console/features/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	feature, view, err := s.app.FeatureView(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"feature": feature, "view": view})
}

func (s *Server) handleSessionSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, s.app.EditSession().Snapshot())
}

func (s *Server) handleSessionForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Type string `json:"type"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Type) == "" {
		req.Type = "manual"
	}
	s.app.EditSession().OpenForm(req.Type)
	writeJSON(w, http.StatusOK, s.app.EditSession().Snapshot())
}

func (s *Server) handleSessionGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Topic          string `json:"topic"`
		Industry       string `json:"industry"`
		TargetAudience string `json:"target_audience"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.app.EditSession().Generate(r.Context(), req.Topic, req.Industry, req.TargetAudience); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.app.EditSession().Snapshot())
}

// handleSessionConfirm persists the draft. When the session is parked in
// AuthRequired, inline credentials re-login first and the confirm is retried
// in the same request.
func (s *Server) handleSessionConfirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req)
	}
	edit := s.app.EditSession()
	err := edit.ConfirmDraft(r.Context())
	if errors.Is(err, editsession.ErrAuthRequired) && req.Username != "" {
		if err = edit.Reauthenticate(r.Context(), req.Username, req.Password); err == nil {
			err = edit.ConfirmDraft(r.Context())
		}
	}
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, edit.Snapshot())
}

func (s *Server) handleSessionOpen(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		ProjectID string `json:"project_id"`
		Type      string `json:"type"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ProjectID == "" {
		writeError(w, http.StatusBadRequest, "project_id is required")
		return
	}
	if strings.TrimSpace(req.Type) == "" {
		req.Type = "manual"
	}
	if err := s.app.OpenProjectForEditing(r.Context(), req.Type, req.ProjectID); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.app.EditSession().Snapshot())
}

func (s *Server) handleSessionSlide(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/console/session/slides/")
	indexPart, action, _ := strings.Cut(rest, "/")
	index, err := strconv.Atoi(indexPart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid slide index")
		return
	}
	edit := s.app.EditSession()
	switch {
	case action == "select" && r.Method == http.MethodPost:
		if err := edit.SelectSlide(index); err != nil {
			writeFailure(w, err)
			return
		}
	case action == "" && r.Method == http.MethodPut:
		var req struct {
			Field string `json:"field"`
			Value string `json:"value"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := edit.UpdateSlideField(index, req.Field, req.Value); err != nil {
			writeFailure(w, err)
			return
		}
	default:
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, edit.Snapshot())
}

func (s *Server) handleSessionSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := s.app.EditSession().Save(r.Context()); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.app.EditSession().Snapshot())
}

func (s *Server) handleSessionClose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	s.app.EditSession().Close()
	writeJSON(w, http.StatusOK, s.app.EditSession().Snapshot())
}

func (s *Server) handleProjectAction(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/console/projects/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		http.NotFound(w, r)
		return
	}
	typ := r.URL.Query().Get("type")
	if typ == "" {
		typ = "manual"
	}
	switch {
	case action == "duplicate" && r.Method == http.MethodPost:
		project, err := s.app.DuplicateProject(r.Context(), typ, id)
		if err != nil {
			writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, project)
	case action == "" && r.Method == http.MethodDelete:
		confirmed := r.URL.Query().Get("confirm") == "true"
		if err := s.app.DeleteProject(r.Context(), typ, id, confirmed); err != nil {
			writeFailure(w, err)
			return
		}
		s.audit(r, "console.project.delete", "success", "project_id", id)
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	default:
		methodNotAllowed(w)
	}
}

// writeFailure maps a classified failure onto an HTTP status. 401s have
// already expired the auth session by the time they reach here.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, editsession.ErrAuthRequired),
		errors.Is(err, app.ErrNotAuthenticated),
		platformclient.IsUnauthorized(err):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrFeatureNotFound),
		errors.Is(err, app.ErrItemNotFound),
		platformclient.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, editsession.ErrTopicRequired),
		errors.Is(err, editsession.ErrEmptyDraft),
		errors.Is(err, editsession.ErrBadSlideIndex),
		errors.Is(err, editsession.ErrBadSlideField),
		errors.Is(err, app.ErrConfirmRequired),
		errors.Is(err, app.ErrUnsupportedFeature):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, editsession.ErrInvalidState),
		errors.Is(err, editsession.ErrSuperseded):
		writeError(w, http.StatusConflict, err.Error())
	case platformclient.IsNetworkFailure(err),
		platformclient.IsGenerationFailure(err):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"request_id", util.RequestIDFromRequest(r),
	}
	logAttrs = append(logAttrs, attrs...)
	if outcome == "success" {
		slog.Info("security_event", logAttrs...)
		return
	}
	slog.Warn("security_event", logAttrs...)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
