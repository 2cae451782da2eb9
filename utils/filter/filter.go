package filter

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"cinelog/models"
)

// Sort modes accepted by Project.
const (
	SortRecent = "recent"
	SortYear   = "year"
	SortAlpha  = "alpha"
)

// Genre selectors accepted by Project.
const (
	GenreAll    = "all"
	GenreAction = "action"
	GenreComedy = "comedy"
	GenreDrama  = "drama"
	GenreSciFi  = "scifi"
	GenreHorror = "horror"
)

// Provider genre codes per selector. Action and scifi carry both the base
// genre and its TV-equivalent variant; an item matches on any mapped code.
var genreCodes = map[string][]int64{
	GenreAction: {28, 10759},
	GenreComedy: {35},
	GenreDrama:  {18},
	GenreSciFi:  {878, 10765},
	GenreHorror: {27},
}

// Config is the view filter configuration applied identically across all
// views. GridColumns is presentational only and never affects the result.
type Config struct {
	MinVote     float64 `json:"minVote"`
	Genre       string  `json:"genre"`
	Sort        string  `json:"sort"`
	GridColumns int     `json:"gridColumns"`
}

// Project filters and sorts items according to cfg, returning a new
// sequence. The input is never mutated.
//
// Rating is an inclusive lower bound. SortRecent preserves input order (the
// caller supplies items pre-ordered by relevance or insertion), SortAlpha
// orders by display name with locale-aware collation, SortYear orders by
// primary date descending; the fixed-width ISO format makes a plain string
// comparison sufficient. Items lacking a name or date sort as the empty
// string.
func Project(items []models.MediaItem, cfg Config) []models.MediaItem {
	filtered := make([]models.MediaItem, 0, len(items))
	codes := genreCodes[cfg.Genre]
	for _, item := range items {
		if item.VoteAverage < cfg.MinVote {
			continue
		}
		if len(codes) > 0 && !hasAnyGenre(item.GenreIDs, codes) {
			continue
		}
		filtered = append(filtered, item)
	}

	switch cfg.Sort {
	case SortAlpha:
		c := collate.New(language.French)
		sort.SliceStable(filtered, func(i, j int) bool {
			return c.CompareString(filtered[i].DisplayName(), filtered[j].DisplayName()) < 0
		})
	case SortYear:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].PrimaryDate() > filtered[j].PrimaryDate()
		})
	}

	return filtered
}

func hasAnyGenre(ids, codes []int64) bool {
	for _, id := range ids {
		for _, code := range codes {
			if id == code {
				return true
			}
		}
	}
	return false
}
