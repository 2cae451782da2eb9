package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"cinelog/services/agenda"
	"cinelog/services/store"
)

// AgendaHandler serves the upcoming-releases schedule derived from the
// active identity's to-watch list.
type AgendaHandler struct {
	store    *store.Service
	resolver *agenda.Service
}

// NewAgendaHandler creates a new agenda handler.
func NewAgendaHandler(listStore *store.Service, resolver *agenda.Service) *AgendaHandler {
	return &AgendaHandler{store: listStore, resolver: resolver}
}

// Register mounts the agenda route.
func (h *AgendaHandler) Register(r *mux.Router) {
	r.HandleFunc("/agenda", h.Get).Methods(http.MethodGet)
}

// Get resolves and returns the date-sorted schedule.
// GET /api/agenda
func (h *AgendaHandler) Get(w http.ResponseWriter, r *http.Request) {
	entries := h.resolver.Resolve(r.Context(), h.store.Watchlist())
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
