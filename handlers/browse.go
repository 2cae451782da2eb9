package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"cinelog/models"
	"cinelog/utils/filter"
)

type browseCatalog interface {
	Trending(ctx context.Context) ([]models.MediaItem, error)
	Search(ctx context.Context, query string) ([]models.MediaItem, error)
	DiscoverMovies(ctx context.Context) ([]models.MediaItem, error)
	DiscoverTV(ctx context.Context) ([]models.MediaItem, error)
}

// BrowseHandler serves the discovery and search views: catalog fetch piped
// through the shared filter engine.
type BrowseHandler struct {
	catalog browseCatalog
}

// NewBrowseHandler creates a new browse handler.
func NewBrowseHandler(catalog browseCatalog) *BrowseHandler {
	return &BrowseHandler{catalog: catalog}
}

// Register mounts the browse routes.
func (h *BrowseHandler) Register(r *mux.Router) {
	r.HandleFunc("/browse/trending", h.Trending).Methods(http.MethodGet)
	r.HandleFunc("/browse/search", h.Search).Methods(http.MethodGet)
	r.HandleFunc("/browse/discover/{kind}", h.Discover).Methods(http.MethodGet)
}

// Trending returns this week's trending items.
// GET /api/browse/trending
func (h *BrowseHandler) Trending(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.Trending(r.Context())
	if err != nil {
		jsonError(w, "Failed to fetch trending: "+err.Error(), http.StatusBadGateway)
		return
	}
	h.respond(w, r, items)
}

// Search resolves a textual query. A blank query returns an empty list.
// GET /api/browse/search?q=
func (h *BrowseHandler) Search(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		jsonError(w, "Failed to search: "+err.Error(), http.StatusBadGateway)
		return
	}
	h.respond(w, r, items)
}

// Discover returns popular items of one kind.
// GET /api/browse/discover/{movie|tv}
func (h *BrowseHandler) Discover(w http.ResponseWriter, r *http.Request) {
	var (
		items []models.MediaItem
		err   error
	)
	switch mux.Vars(r)["kind"] {
	case models.MediaTypeMovie:
		items, err = h.catalog.DiscoverMovies(r.Context())
	case models.MediaTypeTV:
		items, err = h.catalog.DiscoverTV(r.Context())
	default:
		jsonError(w, "Unknown media kind", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "Failed to discover: "+err.Error(), http.StatusBadGateway)
		return
	}
	h.respond(w, r, items)
}

func (h *BrowseHandler) respond(w http.ResponseWriter, r *http.Request, items []models.MediaItem) {
	projected := filter.Project(items, filterConfigFromQuery(r))
	writeJSON(w, http.StatusOK, map[string]any{"items": projected})
}
