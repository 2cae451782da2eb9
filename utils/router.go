package utils

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// corsMiddleware lets the browser-based views call the API from another
// origin. Preflight requests are answered here and never reach a handler.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewRouter builds the base router: CORS plus a liveness probe. API routes
// mount on the subrouter returned by APIRouter.
func NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	return r
}

// APIRouter returns the subrouter all API handlers mount on.
func APIRouter(r *mux.Router) *mux.Router {
	return r.PathPrefix("/api").Subrouter()
}
