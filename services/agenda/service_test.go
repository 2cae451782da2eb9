package agenda_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cinelog/models"
	"cinelog/services/agenda"
)

type fakeCatalog struct {
	details map[int64]models.MediaItem
	failing map[int64]bool
	slow    map[int64]time.Duration
}

func (f *fakeCatalog) GetDetails(ctx context.Context, id int64, kind string) (models.MediaItem, error) {
	if delay, ok := f.slow[id]; ok {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return models.MediaItem{}, ctx.Err()
		}
	}
	if f.failing[id] {
		return models.MediaItem{}, errors.New("upstream exploded")
	}
	details, ok := f.details[id]
	if !ok {
		return models.MediaItem{}, errors.New("no record")
	}
	return details, nil
}

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newResolver(catalog agenda.Catalog, opts ...agenda.Option) *agenda.Service {
	opts = append(opts, agenda.WithClock(func() time.Time { return testNow }))
	return agenda.NewService(catalog, opts...)
}

func TestResolveSeriesWithAndWithoutNextEpisode(t *testing.T) {
	catalog := &fakeCatalog{details: map[int64]models.MediaItem{
		1: {
			ID: 1, Name: "Airing Show",
			NextEpisodeToAir: &models.NextEpisode{AirDate: "2024-03-15", SeasonNumber: 2, EpisodeNumber: 4},
		},
		2: {ID: 2, Name: "Finished Show", Status: "Ended"},
	}}

	toWatch := []models.MediaItem{
		{ID: 1, Name: "Airing Show", MediaType: models.MediaTypeTV},
		{ID: 2, Name: "Finished Show", MediaType: models.MediaTypeTV},
	}

	entries := newResolver(catalog).Resolve(context.Background(), toWatch)

	if len(entries) != 1 {
		t.Fatalf("expected exactly one entry, got %d", len(entries))
	}
	if entries[0].ID != 1 {
		t.Fatalf("expected the airing show, got id %d", entries[0].ID)
	}
	if entries[0].Label != "S2E4" {
		t.Fatalf("expected label S2E4, got %q", entries[0].Label)
	}
	if entries[0].DisplayDate != "2024-03-15" {
		t.Fatalf("expected display date 2024-03-15, got %q", entries[0].DisplayDate)
	}
}

func TestResolveDropsReleasedMoviesKeepsUpcoming(t *testing.T) {
	catalog := &fakeCatalog{details: map[int64]models.MediaItem{
		1: {ID: 1, Title: "Already Out", ReleaseDate: "2020-01-01"},
		2: {ID: 2, Title: "Coming Soon", ReleaseDate: "2024-06-15"},
	}}

	toWatch := []models.MediaItem{
		{ID: 1, Title: "Already Out", MediaType: models.MediaTypeMovie},
		{ID: 2, Title: "Coming Soon", MediaType: models.MediaTypeMovie},
	}

	entries := newResolver(catalog).Resolve(context.Background(), toWatch)

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ID != 2 || entries[0].Label != agenda.LabelTheatrical {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}

func TestResolveSortsAscendingByDate(t *testing.T) {
	catalog := &fakeCatalog{details: map[int64]models.MediaItem{
		1: {ID: 1, Title: "Late", ReleaseDate: "2024-09-01"},
		2: {ID: 2, Name: "Soon", NextEpisodeToAir: &models.NextEpisode{AirDate: "2024-03-08", SeasonNumber: 1, EpisodeNumber: 2}},
		3: {ID: 3, Title: "Middle", ReleaseDate: "2024-05-20"},
	}}

	toWatch := []models.MediaItem{
		{ID: 1, Title: "Late"},
		{ID: 2, Name: "Soon"},
		{ID: 3, Title: "Middle"},
	}

	entries := newResolver(catalog).Resolve(context.Background(), toWatch)

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].ID != 2 || entries[1].ID != 3 || entries[2].ID != 1 {
		t.Fatalf("expected date-ascending order, got %d, %d, %d", entries[0].ID, entries[1].ID, entries[2].ID)
	}
}

func TestResolveSingleFailureDoesNotAbortBatch(t *testing.T) {
	catalog := &fakeCatalog{
		details: map[int64]models.MediaItem{
			1: {ID: 1, Title: "Fine", ReleaseDate: "2024-06-15"},
			3: {ID: 3, Name: "Also Fine", NextEpisodeToAir: &models.NextEpisode{AirDate: "2024-04-01", SeasonNumber: 1, EpisodeNumber: 1}},
		},
		failing: map[int64]bool{2: true},
	}

	toWatch := []models.MediaItem{
		{ID: 1, Title: "Fine"},
		{ID: 2, Title: "Broken"},
		{ID: 3, Name: "Also Fine"},
	}

	entries := newResolver(catalog).Resolve(context.Background(), toWatch)

	if len(entries) != 2 {
		t.Fatalf("expected entries for the healthy items, got %d", len(entries))
	}
	for _, entry := range entries {
		if entry.ID == 2 {
			t.Fatalf("failed item must be dropped from the result")
		}
	}
}

func TestResolveInfersKindFromTitleField(t *testing.T) {
	kinds := make(chan string, 1)
	catalog := &inspectingCatalog{kinds: kinds}

	toWatch := []models.MediaItem{{ID: 1, Title: "A Movie Without Type"}}
	newResolver(catalog).Resolve(context.Background(), toWatch)

	if kind := <-kinds; kind != models.MediaTypeMovie {
		t.Fatalf("expected inferred kind movie, got %q", kind)
	}
}

func TestResolveLookupTimeoutDropsSlowItem(t *testing.T) {
	catalog := &fakeCatalog{
		details: map[int64]models.MediaItem{
			1: {ID: 1, Title: "Fast", ReleaseDate: "2024-06-15"},
			2: {ID: 2, Title: "Slow", ReleaseDate: "2024-07-15"},
		},
		slow: map[int64]time.Duration{2: 200 * time.Millisecond},
	}

	resolver := newResolver(catalog, agenda.WithLookupTimeout(20*time.Millisecond))
	entries := resolver.Resolve(context.Background(), []models.MediaItem{
		{ID: 1, Title: "Fast"},
		{ID: 2, Title: "Slow"},
	})

	if len(entries) != 1 || entries[0].ID != 1 {
		t.Fatalf("expected only the fast item, got %+v", entries)
	}
}

type inspectingCatalog struct {
	kinds chan string
}

func (c *inspectingCatalog) GetDetails(ctx context.Context, id int64, kind string) (models.MediaItem, error) {
	c.kinds <- kind
	return models.MediaItem{}, errors.New("stop here")
}
