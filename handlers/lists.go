package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"cinelog/models"
	"cinelog/services/store"
	"cinelog/utils/filter"
)

const (
	listWatched   = "watched"
	listWatchlist = "watchlist"
)

// ListsHandler exposes the active identity's watched and to-watch lists.
// Mutations expect a canonical catalog record: the view resolves details
// first, then hands the record to the store.
type ListsHandler struct {
	store *store.Service
}

// NewListsHandler creates a new lists handler.
func NewListsHandler(listStore *store.Service) *ListsHandler {
	return &ListsHandler{store: listStore}
}

// Register mounts the list routes.
func (h *ListsHandler) Register(r *mux.Router) {
	r.HandleFunc("/lists/status/{id}", h.Status).Methods(http.MethodGet)
	r.HandleFunc("/lists/{list}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/lists/{list}", h.Add).Methods(http.MethodPost)
	r.HandleFunc("/lists/{list}/{id}", h.Remove).Methods(http.MethodDelete)
}

type listResponse struct {
	Items  []models.MediaItem `json:"items"`
	Counts map[string]int     `json:"counts"`
}

// Get returns one of the lists, filtered and sorted. An optional ?type=
// restricts to movies or series; the per-type counts are always computed on
// the full list.
// GET /api/lists/{watched|watchlist}
func (h *ListsHandler) Get(w http.ResponseWriter, r *http.Request) {
	items, ok := h.listFor(mux.Vars(r)["list"])
	if !ok {
		jsonError(w, "Unknown list", http.StatusNotFound)
		return
	}

	counts := map[string]int{"all": len(items), "movie": 0, "tv": 0}
	for _, item := range items {
		counts[item.Kind()]++
	}

	if typeFilter := r.URL.Query().Get("type"); typeFilter == models.MediaTypeMovie || typeFilter == models.MediaTypeTV {
		byType := make([]models.MediaItem, 0, len(items))
		for _, item := range items {
			if item.Kind() == typeFilter {
				byType = append(byType, item)
			}
		}
		items = byType
	}

	writeJSON(w, http.StatusOK, listResponse{
		Items:  filter.Project(items, filterConfigFromQuery(r)),
		Counts: counts,
	})
}

// Add inserts a canonical media record into the named list.
// POST /api/lists/{watched|watchlist}
func (h *ListsHandler) Add(w http.ResponseWriter, r *http.Request) {
	var item models.MediaItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		jsonError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if item.ID == 0 {
		jsonError(w, "Media id is required", http.StatusBadRequest)
		return
	}

	var err error
	switch mux.Vars(r)["list"] {
	case listWatched:
		err = h.store.AddToWatched(item)
	case listWatchlist:
		err = h.store.AddToWatchlist(item)
	default:
		jsonError(w, "Unknown list", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "Failed to persist list: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Remove deletes an id from the named list; absent ids are a no-op.
// DELETE /api/lists/{watched|watchlist}/{id}
func (h *ListsHandler) Remove(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		jsonError(w, "Invalid media id", http.StatusBadRequest)
		return
	}

	switch vars["list"] {
	case listWatched:
		err = h.store.RemoveFromWatched(id)
	case listWatchlist:
		err = h.store.RemoveFromWatchlist(id)
	default:
		jsonError(w, "Unknown list", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "Failed to persist list: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Status reports membership of an id in both lists, for card badges.
// GET /api/lists/status/{id}
func (h *ListsHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		jsonError(w, "Invalid media id", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{
		"watched":   h.store.IsWatched(id),
		"watchlist": h.store.IsInWatchlist(id),
	})
}

func (h *ListsHandler) listFor(name string) ([]models.MediaItem, bool) {
	switch name {
	case listWatched:
		return h.store.Watched(), true
	case listWatchlist:
		return h.store.Watchlist(), true
	default:
		return nil, false
	}
}
