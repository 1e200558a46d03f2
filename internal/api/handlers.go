package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"codeshare/backend/internal/session"
	"codeshare/backend/internal/ws"
)

type API struct {
	hub      *ws.Hub
	registry *session.Registry
}

func New(hub *ws.Hub, registry *session.Registry) *API {
	return &API{
		hub:      hub,
		registry: registry,
	}
}

func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

func (a *API) HealthHandler(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) StatsHandler(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"active_rooms":   a.hub.RoomCount(),
		"active_clients": a.hub.ClientCount(),
		"total_sessions": a.registry.Len(),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
}

// Session handlers

type CreateSessionRequest struct {
	InitialCode     string `json:"initialCode"`
	InitialLanguage string `json:"initialLanguage"`
}

type SessionMetadataResponse struct {
	SessionID string    `json:"sessionId"`
	Language  string    `json:"language"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a *API) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// Body is optional; an empty or absent body creates a default session
	var req CreateSessionRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			errorResponse(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	sess := a.registry.Create(req.InitialCode, req.InitialLanguage)

	jsonResponse(w, http.StatusCreated, map[string]string{"sessionId": sess.SessionID})
}

// GetSessionHandler returns session metadata only; the buffer contents are
// delivered over the relay's session-state event.
func (a *API) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// Extract session ID from path: /api/sessions/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	sessionID := strings.TrimSuffix(path, "/")

	sess, err := a.registry.Get(sessionID)
	if err != nil {
		if errors.Is(err, session.ErrInvalidArgument) {
			errorResponse(w, http.StatusBadRequest, "Invalid session ID")
			return
		}
		errorResponse(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	if sess == nil {
		errorResponse(w, http.StatusNotFound, "Session not found")
		return
	}

	jsonResponse(w, http.StatusOK, SessionMetadataResponse{
		SessionID: sess.SessionID,
		Language:  sess.Language,
		UpdatedAt: sess.UpdatedAt,
	})
}

func (a *API) SessionsRouter(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")

	// /api/sessions or /api/sessions/
	if path == "" || path == "/" {
		switch r.Method {
		case http.MethodPost:
			a.CreateSessionHandler(w, r)
		default:
			errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
		return
	}

	// /api/sessions/{id}
	switch r.Method {
	case http.MethodGet:
		a.GetSessionHandler(w, r)
	default:
		errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
