package agenda

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"

	"cinelog/models"
)

// Catalog resolves full media details; the resolver never mutates lists.
type Catalog interface {
	GetDetails(ctx context.Context, id int64, kind string) (models.MediaItem, error)
}

// Labels attached to agenda entries.
const (
	LabelTheatrical = "theatrical release"
	LabelAvailable  = "available"
	LabelEnded      = "ended"
	LabelOnHiatus   = "on hiatus"
)

// noDateKey marks entries with nothing scheduled; it is distinguishable
// from 0 (already released) and from any real timestamp.
const noDateKey = int64(math.MaxInt64)

const dateLayout = "2006-01-02"

// Service derives, for each to-watch item, a single next relevant date by
// consulting the catalog per item, then produces a date-sorted schedule.
type Service struct {
	catalog       Catalog
	maxConcurrent int
	lookupTimeout time.Duration
	now           func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithMaxConcurrent bounds the resolution fan-out.
func WithMaxConcurrent(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxConcurrent = n
		}
	}
}

// WithLookupTimeout bounds each catalog lookup so fan-in latency is capped
// by the slowest lookup, not an unbounded hang.
func WithLookupTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.lookupTimeout = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates an agenda resolver over the given catalog.
func NewService(catalog Catalog, opts ...Option) *Service {
	s := &Service{
		catalog:       catalog,
		maxConcurrent: 8,
		lookupTimeout: 10 * time.Second,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type scoredEntry struct {
	entry models.AgendaEntry
	key   int64
}

// Resolve fans out one detail lookup per to-watch item, joins them all, and
// returns the upcoming entries sorted ascending by date. A single item's
// failure drops only that item, never the batch. The result is a read-only
// projection of the input.
func (s *Service) Resolve(ctx context.Context, toWatch []models.MediaItem) []models.AgendaEntry {
	p := pool.NewWithResults[*scoredEntry]().WithMaxGoroutines(s.maxConcurrent)
	for _, item := range toWatch {
		item := item
		p.Go(func() *scoredEntry {
			kind := item.Kind()
			lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
			defer cancel()

			details, err := s.catalog.GetDetails(lookupCtx, item.ID, kind)
			if err != nil {
				log.Printf("[agenda] details lookup failed for %s %d (%s): %v", kind, item.ID, item.DisplayName(), err)
				return nil
			}
			return s.score(details, kind)
		})
	}

	resolved := p.Wait()

	entries := make([]scoredEntry, 0, len(resolved))
	for _, r := range resolved {
		// Drop failures, already-released movies, and items with nothing
		// scheduled.
		if r == nil || r.key == 0 || r.key == noDateKey {
			continue
		}
		entries = append(entries, *r)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	schedule := make([]models.AgendaEntry, len(entries))
	for i, e := range entries {
		schedule[i] = e.entry
	}
	return schedule
}

func (s *Service) score(details models.MediaItem, kind string) *scoredEntry {
	entry := models.AgendaEntry{MediaItem: details}
	entry.MediaType = kind
	key := noDateKey

	if kind == models.MediaTypeMovie {
		if details.ReleaseDate != "" {
			if release, err := time.Parse(dateLayout, details.ReleaseDate); err == nil {
				if release.After(s.now()) {
					entry.DisplayDate = details.ReleaseDate
					entry.Label = LabelTheatrical
					key = release.Unix()
				} else {
					entry.Label = LabelAvailable
					key = 0
				}
			}
		}
	} else {
		if next := details.NextEpisodeToAir; next != nil {
			if airDate, err := time.Parse(dateLayout, next.AirDate); err == nil {
				entry.DisplayDate = next.AirDate
				entry.Label = fmt.Sprintf("S%dE%d", next.SeasonNumber, next.EpisodeNumber)
				key = airDate.Unix()
			}
		} else if details.Status == "Ended" {
			entry.Label = LabelEnded
		} else {
			entry.Label = LabelOnHiatus
		}
	}

	return &scoredEntry{entry: entry, key: key}
}
