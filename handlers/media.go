package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"cinelog/models"
	"cinelog/services/catalog"
)

type detailCatalog interface {
	GetDetails(ctx context.Context, id int64, kind string) (models.MediaItem, error)
	GetCredits(ctx context.Context, id int64, kind string) ([]models.CastMember, error)
	GetVideos(ctx context.Context, id int64, kind string) ([]models.VideoResult, error)
	GetWatchProviders(ctx context.Context, id int64, kind string) ([]models.WatchProvider, error)
}

// MediaHandler serves the detail view: the canonical record plus its cast,
// trailers and streaming providers. The sub-resources downgrade a provider
// NotFound to an empty list so partial data stays available.
type MediaHandler struct {
	catalog detailCatalog
}

// NewMediaHandler creates a new media handler.
func NewMediaHandler(catalog detailCatalog) *MediaHandler {
	return &MediaHandler{catalog: catalog}
}

// Register mounts the media routes.
func (h *MediaHandler) Register(r *mux.Router) {
	r.HandleFunc("/media/{kind}/{id}", h.Details).Methods(http.MethodGet)
	r.HandleFunc("/media/{kind}/{id}/credits", h.Credits).Methods(http.MethodGet)
	r.HandleFunc("/media/{kind}/{id}/videos", h.Videos).Methods(http.MethodGet)
	r.HandleFunc("/media/{kind}/{id}/providers", h.Providers).Methods(http.MethodGet)
}

// Details returns the canonical catalog record for id/kind.
// GET /api/media/{kind}/{id}
func (h *MediaHandler) Details(w http.ResponseWriter, r *http.Request) {
	id, kind, ok := h.target(w, r)
	if !ok {
		return
	}

	item, err := h.catalog.GetDetails(r.Context(), id, kind)
	if errors.Is(err, catalog.ErrNotFound) {
		jsonError(w, "No record for this id", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "Failed to fetch details: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Credits returns the top billed cast.
// GET /api/media/{kind}/{id}/credits
func (h *MediaHandler) Credits(w http.ResponseWriter, r *http.Request) {
	id, kind, ok := h.target(w, r)
	if !ok {
		return
	}

	cast, err := h.catalog.GetCredits(r.Context(), id, kind)
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		log.Printf("[media] credits lookup failed for %s %d: %v", kind, id, err)
	}
	if cast == nil {
		cast = []models.CastMember{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"cast": cast})
}

// Videos returns published trailers and teasers.
// GET /api/media/{kind}/{id}/videos
func (h *MediaHandler) Videos(w http.ResponseWriter, r *http.Request) {
	id, kind, ok := h.target(w, r)
	if !ok {
		return
	}

	videos, err := h.catalog.GetVideos(r.Context(), id, kind)
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		log.Printf("[media] videos lookup failed for %s %d: %v", kind, id, err)
	}
	if videos == nil {
		videos = []models.VideoResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"videos": videos})
}

// Providers returns the region's flatrate streaming offers.
// GET /api/media/{kind}/{id}/providers
func (h *MediaHandler) Providers(w http.ResponseWriter, r *http.Request) {
	id, kind, ok := h.target(w, r)
	if !ok {
		return
	}

	providers, err := h.catalog.GetWatchProviders(r.Context(), id, kind)
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		log.Printf("[media] providers lookup failed for %s %d: %v", kind, id, err)
	}
	if providers == nil {
		providers = []models.WatchProvider{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"providers": providers})
}

func (h *MediaHandler) target(w http.ResponseWriter, r *http.Request) (int64, string, bool) {
	vars := mux.Vars(r)
	kind := vars["kind"]
	if kind != models.MediaTypeMovie && kind != models.MediaTypeTV {
		jsonError(w, "Unknown media kind", http.StatusNotFound)
		return 0, "", false
	}
	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		jsonError(w, "Invalid media id", http.StatusBadRequest)
		return 0, "", false
	}
	return id, kind, true
}
