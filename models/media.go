package models

// Media kinds as used by the catalog provider.
const (
	MediaTypeMovie = "movie"
	MediaTypeTV    = "tv"
)

// NextEpisode describes the next scheduled episode of a series.
type NextEpisode struct {
	AirDate       string `json:"air_date"`
	EpisodeNumber int    `json:"episode_number"`
	SeasonNumber  int    `json:"season_number"`
	Name          string `json:"name,omitempty"`
}

// MediaItem is a catalog record as returned by the metadata provider.
// Title is set for movies, Name for series; ids are only unique within
// a single kind.
type MediaItem struct {
	ID               int64        `json:"id"`
	Title            string       `json:"title,omitempty"`
	Name             string       `json:"name,omitempty"`
	PosterPath       string       `json:"poster_path,omitempty"`
	BackdropPath     string       `json:"backdrop_path,omitempty"`
	Overview         string       `json:"overview,omitempty"`
	MediaType        string       `json:"media_type,omitempty"`
	ReleaseDate      string       `json:"release_date,omitempty"`
	FirstAirDate     string       `json:"first_air_date,omitempty"`
	VoteAverage      float64      `json:"vote_average"`
	GenreIDs         []int64      `json:"genre_ids,omitempty"`
	Status           string       `json:"status,omitempty"`
	Runtime          int          `json:"runtime,omitempty"`
	EpisodeRunTime   []int        `json:"episode_run_time,omitempty"`
	NextEpisodeToAir *NextEpisode `json:"next_episode_to_air,omitempty"`
	NumberOfEpisodes int          `json:"number_of_episodes,omitempty"`
	NumberOfSeasons  int          `json:"number_of_seasons,omitempty"`
}

// DisplayName returns the movie title or series name, whichever is set.
func (m MediaItem) DisplayName() string {
	if m.Title != "" {
		return m.Title
	}
	return m.Name
}

// PrimaryDate returns the release date for movies or the first air date
// for series. Empty when the provider supplied neither.
func (m MediaItem) PrimaryDate() string {
	if m.ReleaseDate != "" {
		return m.ReleaseDate
	}
	return m.FirstAirDate
}

// Kind returns the media type, inferring it when absent: a record with a
// title field is a movie, anything else a series.
func (m MediaItem) Kind() string {
	if m.MediaType != "" {
		return m.MediaType
	}
	if m.Title != "" {
		return MediaTypeMovie
	}
	return MediaTypeTV
}

// CastMember is a single credited actor for a media item.
type CastMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path,omitempty"`
}

// VideoResult is a published clip (trailer, teaser) for a media item.
type VideoResult struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// WatchProvider is a streaming service carrying a media item.
type WatchProvider struct {
	ProviderID   int64  `json:"provider_id"`
	ProviderName string `json:"provider_name"`
	LogoPath     string `json:"logo_path,omitempty"`
}
