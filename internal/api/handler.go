// Package api provides the local HTTP surface consumed by the
// presentation layer: session control, the reduced projections, the
// send operation, and the cached activity list.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/0SRAF0/TravelPlaner/internal/activities"
	"github.com/0SRAF0/TravelPlaner/internal/domain"
	"github.com/0SRAF0/TravelPlaner/internal/markup"
	"github.com/0SRAF0/TravelPlaner/internal/session"
	"github.com/0SRAF0/TravelPlaner/internal/store"
	"github.com/0SRAF0/TravelPlaner/internal/stream"
)

// Handler exposes the session controller over HTTP.
type Handler struct {
	ctrl       *session.Controller
	activities *activities.Client
}

// NewHandler creates a new Handler.
func NewHandler(ctrl *session.Controller, activities *activities.Client) *Handler {
	return &Handler{ctrl: ctrl, activities: activities}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// RegisterRoutes mounts all API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/session", h.GetSession)
		r.Post("/session", h.SwitchSession)
		r.Delete("/session", h.CloseSession)
		r.Get("/transcript", h.GetTranscript)
		r.Get("/agents", h.GetAgents)
		r.Post("/messages", h.PostMessage)
		r.Get("/activities", h.GetActivities)
	})
}

type sessionResponse struct {
	TripID    string `json:"tripId"`
	Connected bool   `json:"connected"`
}

// GetSession returns the bound trip and connectivity.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	snap := h.ctrl.Snapshot()
	JSON(w, http.StatusOK, sessionResponse{TripID: snap.TripID, Connected: snap.Connected})
}

// SwitchSession binds the controller to a trip, superseding any prior
// connection. This is also the user-initiated reconnect path.
func (h *Handler) SwitchSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TripID string `json:"tripId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.TripID == "" {
		Error(w, http.StatusBadRequest, "missing required field 'tripId'")
		return
	}

	if err := h.ctrl.Switch(r.Context(), req.TripID); err != nil {
		Error(w, http.StatusBadGateway, err.Error())
		return
	}

	snap := h.ctrl.Snapshot()
	JSON(w, http.StatusOK, sessionResponse{TripID: snap.TripID, Connected: snap.Connected})
}

// CloseSession disconnects and discards session state.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	h.ctrl.Close()
	JSON(w, http.StatusOK, sessionResponse{})
}

type transcriptEntry struct {
	domain.ChatEvent
	RenderedContent string `json:"renderedContent"`
}

// GetTranscript returns the chat transcript in arrival order, with the
// sanitized rendering applied to each message.
func (h *Handler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	snap := h.ctrl.Snapshot()
	entries := make([]transcriptEntry, len(snap.Transcript))
	for i, ev := range snap.Transcript {
		entries[i] = transcriptEntry{ChatEvent: ev, RenderedContent: markup.Render(ev.Content)}
	}
	JSON(w, http.StatusOK, entries)
}

type agentEntry struct {
	domain.AgentStatusRecord
	ProgressPercent int `json:"progressPercent"`
}

// GetAgents returns the current agent status records with derived
// progress, keyed by agent name.
func (h *Handler) GetAgents(w http.ResponseWriter, r *http.Request) {
	snap := h.ctrl.Snapshot()
	agents := make(map[string]agentEntry, len(snap.Agents))
	for name, rec := range snap.Agents {
		agents[name] = agentEntry{AgentStatusRecord: rec, ProgressPercent: rec.ProgressPercent()}
	}
	JSON(w, http.StatusOK, agents)
}

// PostMessage sends a user message on the active session. Send gate
// failures come back as client errors, never as daemon faults.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	err := h.ctrl.Send(r.Context(), req.Content)
	switch {
	case err == nil:
		JSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
	case errors.Is(err, stream.ErrEmptyMessage):
		Error(w, http.StatusBadRequest, "message content is empty")
	case errors.Is(err, stream.ErrNotConnected):
		Error(w, http.StatusConflict, "not connected to a trip session")
	default:
		Error(w, http.StatusBadGateway, err.Error())
	}
}

// GetActivities returns the activity list for a trip, defaulting to the
// currently bound trip.
func (h *Handler) GetActivities(w http.ResponseWriter, r *http.Request) {
	q := store.ActivityQuery{
		TripID:   r.URL.Query().Get("trip_id"),
		Category: r.URL.Query().Get("category"),
	}
	if q.TripID == "" {
		q.TripID = h.ctrl.Snapshot().TripID
	}
	if q.TripID == "" {
		Error(w, http.StatusBadRequest, "missing required parameter 'trip_id'")
		return
	}
	if v := r.URL.Query().Get("min_score"); v != "" {
		score, err := strconv.ParseFloat(v, 64)
		if err != nil || score < 0 || score > 1 {
			Error(w, http.StatusBadRequest, "min_score must be between 0.0 and 1.0")
			return
		}
		q.MinScore = score
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		q.Limit = limit
	}

	result, err := h.activities.Fetch(r.Context(), q)
	if err != nil {
		Error(w, http.StatusBadGateway, err.Error())
		return
	}
	if result == nil {
		result = []domain.Activity{}
	}
	JSON(w, http.StatusOK, result)
}
