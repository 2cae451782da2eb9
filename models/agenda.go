package models

// AgendaEntry is a to-watch item augmented with its resolved next relevant
// date: an upcoming theatrical release for movies, the next episode to air
// for series.
type AgendaEntry struct {
	MediaItem
	DisplayDate string `json:"displayDate,omitempty"`
	Label       string `json:"label"`
}
