package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"cinelog/handlers"
	"cinelog/models"
	"cinelog/services/catalog"
)

type fakeDetailCatalog struct {
	details models.MediaItem
	cast    []models.CastMember
	err     error
}

func (f *fakeDetailCatalog) GetDetails(ctx context.Context, id int64, kind string) (models.MediaItem, error) {
	return f.details, f.err
}

func (f *fakeDetailCatalog) GetCredits(ctx context.Context, id int64, kind string) ([]models.CastMember, error) {
	return f.cast, f.err
}

func (f *fakeDetailCatalog) GetVideos(ctx context.Context, id int64, kind string) ([]models.VideoResult, error) {
	return nil, f.err
}

func (f *fakeDetailCatalog) GetWatchProviders(ctx context.Context, id int64, kind string) ([]models.WatchProvider, error) {
	return nil, f.err
}

func newMediaRouter(c *fakeDetailCatalog) *mux.Router {
	router := mux.NewRouter()
	handlers.NewMediaHandler(c).Register(router)
	return router
}

func TestDetailsNotFoundIs404(t *testing.T) {
	router := newMediaRouter(&fakeDetailCatalog{err: catalog.ErrNotFound})

	rec := doJSON(t, router, http.MethodGet, "/media/movie/99", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing record, got %d", rec.Code)
	}
}

func TestSubResourcesDowngradeNotFoundToEmptyList(t *testing.T) {
	router := newMediaRouter(&fakeDetailCatalog{err: catalog.ErrNotFound})

	for path, field := range map[string]string{
		"/media/movie/99/credits":   "cast",
		"/media/movie/99/videos":    "videos",
		"/media/movie/99/providers": "providers",
	} {
		rec := doJSON(t, router, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s returned %d, want 200", path, rec.Code)
		}

		var payload map[string]json.RawMessage
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("failed to decode %s response: %v", path, err)
		}
		raw, ok := payload[field]
		if !ok {
			t.Fatalf("%s response is missing %q", path, field)
		}
		if strings.TrimSpace(string(raw)) != "[]" {
			t.Fatalf("%s %q = %s, want empty array", path, field, raw)
		}
	}
}

func TestSubResourcesSurviveProviderErrors(t *testing.T) {
	router := newMediaRouter(&fakeDetailCatalog{err: errors.New("provider down")})

	rec := doJSON(t, router, http.MethodGet, "/media/tv/7/credits", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("credits returned %d, want 200", rec.Code)
	}

	var payload struct {
		Cast []models.CastMember `json:"cast"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload.Cast) != 0 {
		t.Fatalf("expected empty cast on lookup failure, got %+v", payload.Cast)
	}
}

func TestCreditsPassThrough(t *testing.T) {
	router := newMediaRouter(&fakeDetailCatalog{cast: []models.CastMember{
		{ID: 1, Name: "Lead"},
	}})

	rec := doJSON(t, router, http.MethodGet, "/media/movie/5/credits", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("credits returned %d, want 200", rec.Code)
	}

	var payload struct {
		Cast []models.CastMember `json:"cast"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload.Cast) != 1 || payload.Cast[0].Name != "Lead" {
		t.Fatalf("unexpected cast: %+v", payload.Cast)
	}
}
