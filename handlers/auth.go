package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"cinelog/services/store"
)

// AuthHandler exposes login, registration and logout over the list store's
// credential registry.
type AuthHandler struct {
	store *store.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(listStore *store.Service) *AuthHandler {
	return &AuthHandler{store: listStore}
}

// Register mounts the auth routes.
func (h *AuthHandler) Register(r *mux.Router) {
	r.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/auth/register", h.RegisterAccount).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)
	r.HandleFunc("/auth/session", h.Session).Methods(http.MethodGet)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// Login authenticates against the credential registry and switches the
// active identity on success.
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	ok, err := h.store.Login(req.Email, req.Password)
	if err != nil {
		jsonError(w, "Failed to switch identity: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		jsonError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}
	h.Session(w, r)
}

// RegisterAccount creates a new account; the email must be unused. Success
// behaves as an implicit login.
// POST /api/auth/register
func (h *AuthHandler) RegisterAccount(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		jsonError(w, "Name is required", http.StatusBadRequest)
		return
	}

	ok, err := h.store.Register(req.Email, req.Password, req.Name)
	if err != nil {
		jsonError(w, "Failed to register: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		jsonError(w, "Email is already registered", http.StatusConflict)
		return
	}
	h.Session(w, r)
}

// Logout switches the active identity back to guest.
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Logout(); err != nil {
		jsonError(w, "Failed to switch identity: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.Session(w, r)
}

// Session reports the current identity.
// GET /api/auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	account := h.store.Current()
	if account == nil {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"account": map[string]string{
			"email": account.Email,
			"name":  account.Name,
		},
	})
}
