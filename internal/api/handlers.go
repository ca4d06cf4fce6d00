package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/dhruvsoni1802/wiredriver/internal/pool"
	"github.com/dhruvsoni1802/wiredriver/internal/session"
	"github.com/dhruvsoni1802/wiredriver/internal/transport"
	"github.com/go-chi/chi/v5"
)

// Handlers contains HTTP handlers for the API
type Handlers struct {
	sessionManager *session.Manager
	loadBalancer   *pool.LoadBalancer
}

// NewHandlers creates a new Handlers instance
func NewHandlers(manager *session.Manager, loadBalancer *pool.LoadBalancer) *Handlers {
	return &Handlers{
		sessionManager: manager,
		loadBalancer:   loadBalancer,
	}
}

func toSessionInfo(s *session.Session) SessionInfo {
	info := SessionInfo{
		SessionID:    s.ID,
		ServerURL:    transport.Redact(s.ServerURL),
		Provider:     s.Provider,
		Browser:      s.BrowserName,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity(),
		Status:       s.Status(),
	}
	if jobURL, ok := s.SauceURL(); ok {
		info.JobURL = jobURL
	}
	return info
}

// OpenSession handles POST /sessions
func (h *Handlers) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}

	provider, err := session.ParseProvider(req.Provider)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	if req.Browser == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "browser is required")
		return
	}

	target := session.Target{
		Provider: provider,
		Browser:  req.Browser,
		Version:  req.Version,
		OS:       req.OS,
		Port:     req.Port,
		HubURL:   req.HubURL,
	}

	s, err := h.sessionManager.Open(target, req.Capabilities)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrSessionLimitReached):
			writeError(w, http.StatusTooManyRequests, ErrCodeSessionLimit, err.Error())
		case errors.Is(err, pool.ErrNoHealthyHub):
			writeError(w, http.StatusServiceUnavailable, ErrCodeSessionCreateFailed, err.Error())
		default:
			writeError(w, http.StatusBadGateway, ErrCodeSessionCreateFailed, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, toSessionInfo(s))
}

// ListSessions handles GET /sessions
func (h *Handlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.sessionManager.ListSessions()
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	infos := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, toSessionInfo(s))
	}

	writeJSON(w, http.StatusOK, ListSessionsResponse{Sessions: infos, Count: len(infos)})
}

// GetSession handles GET /sessions/{id}
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessionManager.GetSession(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, ErrCodeSessionNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toSessionInfo(s))
}

// TouchSession handles POST /sessions/{id}/touch
func (h *Handlers) TouchSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionManager.Touch(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, ErrCodeSessionNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// QuitSession handles DELETE /sessions/{id}. The session is forgotten even
// when the remote quit fails, the failure is reported as 502.
func (h *Handlers) QuitSession(w http.ResponseWriter, r *http.Request) {
	err := h.sessionManager.Quit(chi.URLParam(r, "id"))
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, session.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, ErrCodeSessionNotFound, err.Error())
	default:
		writeError(w, http.StatusBadGateway, ErrCodeQuitFailed, err.Error())
	}
}

// ListHubs handles GET /hubs
func (h *Handlers) ListHubs(w http.ResponseWriter, r *http.Request) {
	if h.loadBalancer == nil {
		writeError(w, http.StatusNotFound, ErrCodeNoHubPool, "no grid hubs configured")
		return
	}
	writeJSON(w, http.StatusOK, h.loadBalancer.Pool().GetMetrics())
}

// Health handles GET /healthz
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Sessions: h.sessionManager.GetSessionCount()})
}
