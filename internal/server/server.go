package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"zerobuild/internal/app"
	"zerobuild/internal/ratelimit"
	"zerobuild/internal/util"
	"zerobuild/pkg/ai"
	"zerobuild/pkg/domain"
	"zerobuild/pkg/store"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App *app.App

	RedisAddr     string
	RedisPassword string

	// Each auth endpoint gets its own fixed-window budget per client IP.
	AuthRateLimit  int
	AuthRateWindow time.Duration

	TrustedProxies *util.TrustedProxies
}

// Server exposes the HTTP API.
type Server struct {
	app            *app.App
	mux            *http.ServeMux
	authLimiter    *ratelimit.FixedWindowLimiter
	trustedProxies *util.TrustedProxies
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	limit := cfg.AuthRateLimit
	if limit <= 0 {
		limit = 10
	}
	window := cfg.AuthRateWindow
	if window <= 0 {
		window = time.Minute
	}
	authLimiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "zerobuild:ratelimit:auth", limit, window)
	if err != nil {
		return nil, fmt.Errorf("init auth limiter: %w", err)
	}
	s := &Server{
		app:            cfg.App,
		mux:            http.NewServeMux(),
		authLimiter:    authLimiter,
		trustedProxies: cfg.TrustedProxies,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler wrapped in the middleware chain.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog(util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// auth
	s.mux.HandleFunc("/api/auth/signup", s.handleSignup)
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)
	s.mux.HandleFunc("/api/auth/logout", s.handleLogout)
	s.mux.Handle("/api/users/me", s.authenticated(s.handleMe))

	// projects (auth required, role checks in the app layer)
	s.mux.Handle("/api/projects", s.authenticated(s.handleProjects))
	s.mux.Handle("/api/projects/", s.authenticated(s.handleProjectSubtree))

	// assistant & metrics
	s.mux.Handle("/api/chat", s.authenticated(s.handleChat))
	s.mux.Handle("/api/metrics", s.authenticated(s.handleMetrics))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type authHandler func(http.ResponseWriter, *http.Request, app.Identity)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		caller, err := s.app.Identify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, caller)
	})
}

type authRequest struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Name     string          `json:"name"`
	Role     domain.UserRole `json:"role"`
}

type authResponse struct {
	Token   string         `json:"token"`
	Account domain.Account `json:"account"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, "too many signup attempts") {
		return
	}
	var req authRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	account, token, err := s.app.SignUp(req.Email, req.Password, req.Name)
	if err != nil {
		writeAppError(w, err)
		return
	}
	account.Password = ""
	writeJSON(w, http.StatusCreated, authResponse{Token: token, Account: account})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, "too many login attempts") {
		return
	}
	var req authRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	role := req.Role
	if role == "" {
		role = domain.RoleClient
	}
	account, token, err := s.app.Login(req.Email, req.Password, role)
	if err != nil {
		writeAppError(w, err)
		return
	}
	account.Password = ""
	writeJSON(w, http.StatusOK, authResponse{Token: token, Account: account})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := s.app.Logout(token); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, caller app.Identity) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, caller)
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request, caller app.Identity) {
	switch r.Method {
	case http.MethodGet:
		projects, err := s.app.ListProjects(caller)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, projects)
	case http.MethodPost:
		var in app.ProjectInput
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		project, err := s.app.CreateProject(caller, in)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, project)
	case http.MethodDelete:
		if err := s.app.DeleteAllProjects(caller); err != nil {
			writeAppError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}

// handleProjectSubtree dispatches everything below /api/projects/{id}.
func (s *Server) handleProjectSubtree(w http.ResponseWriter, r *http.Request, caller app.Identity) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/projects/"), "/")
	segments := strings.Split(path, "/")
	if path == "" {
		http.NotFound(w, r)
		return
	}
	projectID := segments[0]

	switch {
	case len(segments) == 1:
		s.handleProjectByID(w, r, caller, projectID)
	case len(segments) == 2 && segments[1] == "budget":
		s.handleBudget(w, r, caller, projectID)
	case len(segments) == 2 && segments[1] == "rooms":
		s.handleRooms(w, r, caller, projectID)
	case len(segments) == 3 && segments[1] == "rooms":
		s.handleRoomByID(w, r, caller, projectID, segments[2])
	case len(segments) == 4 && segments[1] == "rooms" && segments[3] == "visuals":
		s.handleRoomVisuals(w, r, caller, projectID, segments[2])
	case len(segments) == 3 && segments[1] == "visuals":
		s.handleProjectVisuals(w, r, caller, projectID, segments[2])
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleProjectByID(w http.ResponseWriter, r *http.Request, caller app.Identity, projectID string) {
	switch r.Method {
	case http.MethodGet:
		project, err := s.app.GetProject(caller, projectID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, project)
	case http.MethodPut:
		var incoming domain.Project
		if err := json.NewDecoder(io.LimitReader(r.Body, 4<<20)).Decode(&incoming); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		project, err := s.app.UpdateProject(caller, projectID, incoming)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, project)
	case http.MethodDelete:
		if err := s.app.DeleteProject(caller, projectID); err != nil {
			writeAppError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request, caller app.Identity, projectID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	budget, err := s.app.ProjectBudget(caller, projectID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

type roomRequest struct {
	Name  string          `json:"name"`
	Type  domain.RoomType `json:"type"`
	Color string          `json:"color"`
}

func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request, caller app.Identity, projectID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req roomRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Type == "" {
		writeError(w, http.StatusBadRequest, "type is required")
		return
	}
	room, err := s.app.AddRoom(caller, projectID, req.Name, req.Type, req.Color)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

func (s *Server) handleRoomByID(w http.ResponseWriter, r *http.Request, caller app.Identity, projectID, roomID string) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	if err := s.app.DeleteRoom(caller, projectID, roomID); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRoomVisuals(w http.ResponseWriter, r *http.Request, caller app.Identity, projectID, roomID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	room, err := s.app.RenderRoomViews(r.Context(), caller, projectID, roomID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

type exportRequest struct {
	Target app.ExportTarget `json:"target"`
	RoomID string           `json:"roomId"`
}

type exportResponse struct {
	URL string `json:"url"`
}

type blueprintResponse struct {
	Text string `json:"text"`
}

func (s *Server) handleProjectVisuals(w http.ResponseWriter, r *http.Request, caller app.Identity, projectID, visual string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	switch visual {
	case "exterior":
		project, err := s.app.GenerateExterior(r.Context(), caller, projectID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, project)
	case "floorplan":
		project, err := s.app.GenerateFloorPlan(r.Context(), caller, projectID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, project)
	case "blueprint":
		text, err := s.app.GenerateBlueprint(r.Context(), caller, projectID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, blueprintResponse{Text: text})
	case "export":
		var req exportRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		url, err := s.app.ExportVisual(r.Context(), caller, projectID, req.Target, req.RoomID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, exportResponse{URL: url})
	default:
		http.NotFound(w, r)
	}
}

type chatRequest struct {
	Message string    `json:"message"`
	History []ai.Turn `json:"history"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request, _ app.Identity) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req chatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	reply, err := s.app.Chat(r.Context(), req.Message, req.History)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request, caller app.Identity) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	metrics, err := s.app.DeveloperMetrics(caller)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, msg string) bool {
	// Keyed by endpoint and IP, so signup attempts do not drain login's budget.
	key := r.URL.Path + "|" + util.ClientIP(r, s.trustedProxies)
	if s.authLimiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

// writeAppError maps application sentinels to HTTP status codes.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrEmailAndPasswordRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrInvalidSession):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, app.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, app.ErrProjectNotFound), errors.Is(err, app.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrNothingToExport):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrExportUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, store.ErrStaleProject):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ai.ErrNoImagePayload):
		writeError(w, http.StatusBadGateway, "image generation returned no image")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
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

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
