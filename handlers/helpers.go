package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"cinelog/utils/filter"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// filterConfigFromQuery builds the view filter config from request query
// parameters, falling back to the defaults the views start with.
func filterConfigFromQuery(r *http.Request) filter.Config {
	query := r.URL.Query()

	cfg := filter.Config{
		Genre:       filter.GenreAll,
		Sort:        filter.SortRecent,
		GridColumns: 5,
	}
	if v := query.Get("minVote"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.MinVote = parsed
		}
	}
	if v := query.Get("genre"); v != "" {
		cfg.Genre = v
	}
	if v := query.Get("sort"); v != "" {
		cfg.Sort = v
	}
	if v := query.Get("columns"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.GridColumns = parsed
		}
	}
	return cfg
}
