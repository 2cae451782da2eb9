package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gorilla/mux"

	"cinelog/handlers"
	"cinelog/models"
	"cinelog/services/store"
)

func newAuthRouter(t *testing.T) (*mux.Router, *store.Service) {
	t.Helper()
	listStore := store.New(&memoryStorage{data: make(map[string]string)})
	router := mux.NewRouter()
	handlers.NewAuthHandler(listStore).Register(router)
	handlers.NewListsHandler(listStore).Register(router)
	return router, listStore
}

func TestRegisterLoginLogoutFlow(t *testing.T) {
	router, listStore := newAuthRouter(t)

	if err := listStore.AddToWatchlist(models.MediaItem{ID: 1, Title: "Guest Pick"}); err != nil {
		t.Fatalf("seed returned error: %v", err)
	}

	rec := doJSON(t, router, http.MethodPost, "/auth/register", `{"email":"ana@example.com","password":"secret","name":"Ana"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}
	if listStore.IsInWatchlist(1) {
		t.Fatalf("guest items must not be visible after registration")
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/logout", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("logout returned %d", rec.Code)
	}
	if !listStore.IsInWatchlist(1) {
		t.Fatalf("guest items must reappear after logout")
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/login", `{"email":"ana@example.com","password":"secret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", rec.Code, rec.Body.String())
	}

	var session struct {
		Authenticated bool              `json:"authenticated"`
		Account       map[string]string `json:"account"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("failed to decode session: %v", err)
	}
	if !session.Authenticated || session.Account["name"] != "Ana" {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router, _ := newAuthRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/register", `{"email":"ana@example.com","password":"secret","name":"Ana"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("register returned %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/login", `{"email":"ana@example.com","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad credentials, got %d", rec.Code)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	router, _ := newAuthRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/register", `{"email":"ana@example.com","password":"secret","name":"Ana"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("register returned %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/register", `{"email":"ana@example.com","password":"other","name":"Impostor"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", rec.Code)
	}
}

func TestSessionReportsGuestByDefault(t *testing.T) {
	router, _ := newAuthRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/auth/session", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("session returned %d", rec.Code)
	}

	var session struct {
		Authenticated bool `json:"authenticated"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("failed to decode session: %v", err)
	}
	if session.Authenticated {
		t.Fatalf("expected guest session by default")
	}
}
