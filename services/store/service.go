package store

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"cinelog/models"
)

// Storage is the durable key-value contract the store persists into.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

const (
	guestKey         = "lists:guest"
	accountKeyPrefix = "lists:account:"
	registryKey      = "accounts:registry"

	// Bumped whenever the snapshot JSON shape changes; a mismatch on load
	// is treated like corruption and yields an empty pair.
	snapshotVersion = 1

	persistAttempts = 3
	persistDelay    = 50 * time.Millisecond
)

type listSnapshot struct {
	Version   int                `json:"version"`
	Watched   []models.MediaItem `json:"watched"`
	Watchlist []models.MediaItem `json:"watchlist"`
}

type registrySnapshot struct {
	Version  int              `json:"version"`
	Accounts []models.Account `json:"accounts"`
}

// Service owns the identity-partitioned list pair and the credential
// registry. Exactly one identity is current at a time: a registered account
// or guest (current == nil). Every mutation is persisted synchronously; one
// mutex serializes mutations and identity switches since they are not
// otherwise atomic.
//
// The store never performs catalog I/O — callers resolve a canonical record
// first and hand it in.
type Service struct {
	mu      sync.Mutex
	storage Storage

	current   *models.Account
	watched   []models.MediaItem
	watchlist []models.MediaItem

	// registry is keyed by lower-cased email.
	registry map[string]models.Account
}

// New creates a store over the given storage, loading the credential
// registry and the guest list pair. Unreadable or corrupt snapshots recover
// to empty state so the application always starts valid.
func New(storage Storage) *Service {
	s := &Service{
		storage:  storage,
		registry: make(map[string]models.Account),
	}
	s.loadRegistry()
	s.loadLists()
	return s
}

// AddToWatched inserts item at the head of the watched list unless its id
// is already present, then removes the same id from the to-watch list.
// Idempotent on id.
func (s *Service) AddToWatched(item models.MediaItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !containsID(s.watched, item.ID) {
		s.watched = append([]models.MediaItem{item}, s.watched...)
	}
	s.watchlist = removeID(s.watchlist, item.ID)
	return s.persistLists()
}

// RemoveFromWatched filters id out of the watched list. Removing an absent
// id is a no-op.
func (s *Service) RemoveFromWatched(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.watched = removeID(s.watched, id)
	return s.persistLists()
}

// AddToWatchlist inserts item at the head of the to-watch list unless its
// id is already present. The watched list is deliberately left untouched:
// an item can be queued again even if historically watched.
func (s *Service) AddToWatchlist(item models.MediaItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !containsID(s.watchlist, item.ID) {
		s.watchlist = append([]models.MediaItem{item}, s.watchlist...)
	}
	return s.persistLists()
}

// RemoveFromWatchlist filters id out of the to-watch list. Removing an
// absent id is a no-op.
func (s *Service) RemoveFromWatchlist(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.watchlist = removeID(s.watchlist, id)
	return s.persistLists()
}

// IsWatched reports whether id is in the current identity's watched list.
func (s *Service) IsWatched(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return containsID(s.watched, id)
}

// IsInWatchlist reports whether id is in the current identity's to-watch list.
func (s *Service) IsInWatchlist(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return containsID(s.watchlist, id)
}

// Watched returns a copy of the watched list, most recently added first.
func (s *Service) Watched() []models.MediaItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.MediaItem(nil), s.watched...)
}

// Watchlist returns a copy of the to-watch list, most recently added first.
func (s *Service) Watchlist() []models.MediaItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.MediaItem(nil), s.watchlist...)
}

// Current returns the authenticated account, or nil for guest.
func (s *Service) Current() *models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	account := *s.current
	return &account
}

// Login switches the current identity to the account matching email and
// secret, swapping in that account's persisted list pair. Returns false
// with no state change when the credentials do not match.
func (s *Service) Login(email, secret string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.registry[normalizeEmail(email)]
	if !ok {
		return false, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(secret)) != nil {
		return false, nil
	}

	s.current = &account
	s.loadLists()
	if err := s.persistLists(); err != nil {
		return true, err
	}
	return true, nil
}

// Register creates a new account keyed by email and, on success, behaves as
// an implicit login. Returns false when the email is already registered.
func (s *Service) Register(email, secret, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeEmail(email)
	if key == "" {
		return false, nil
	}
	if _, exists := s.registry[key]; exists {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash credential: %w", err)
	}

	account := models.Account{
		ID:           uuid.NewString(),
		Email:        strings.TrimSpace(email),
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	s.registry[key] = account
	if err := s.persistRegistry(); err != nil {
		delete(s.registry, key)
		return false, err
	}

	s.current = &account
	s.loadLists()
	if err := s.persistLists(); err != nil {
		return true, err
	}
	return true, nil
}

// Logout switches the current identity back to guest, swapping in the
// guest's own persisted list pair.
func (s *Service) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	s.loadLists()
	return s.persistLists()
}

// activeKey derives the storage key for the current identity. Callers hold mu.
func (s *Service) activeKey() string {
	if s.current == nil {
		return guestKey
	}
	return accountKeyPrefix + s.current.ID
}

// loadLists replaces the active pair from storage. Absent, unreadable or
// corrupt snapshots all resolve to an empty pair. Callers hold mu.
func (s *Service) loadLists() {
	s.watched = nil
	s.watchlist = nil

	key := s.activeKey()
	value, ok, err := s.storage.Get(key)
	if err != nil {
		log.Printf("[store] failed to read snapshot %s, starting empty: %v", key, err)
		return
	}
	if !ok {
		return
	}

	var snap listSnapshot
	if err := json.Unmarshal([]byte(value), &snap); err != nil {
		log.Printf("[store] corrupt snapshot %s, starting empty: %v", key, err)
		return
	}
	if snap.Version != snapshotVersion {
		log.Printf("[store] snapshot %s has version %d, want %d, starting empty", key, snap.Version, snapshotVersion)
		return
	}
	s.watched = snap.Watched
	s.watchlist = snap.Watchlist
}

func (s *Service) loadRegistry() {
	value, ok, err := s.storage.Get(registryKey)
	if err != nil {
		log.Printf("[store] failed to read credential registry, starting empty: %v", err)
		return
	}
	if !ok {
		return
	}

	var snap registrySnapshot
	if err := json.Unmarshal([]byte(value), &snap); err != nil {
		log.Printf("[store] corrupt credential registry, starting empty: %v", err)
		return
	}
	if snap.Version != snapshotVersion {
		log.Printf("[store] credential registry has version %d, want %d, starting empty", snap.Version, snapshotVersion)
		return
	}
	for _, account := range snap.Accounts {
		s.registry[normalizeEmail(account.Email)] = account
	}
}

// persistLists writes the active pair synchronously. Callers hold mu.
func (s *Service) persistLists() error {
	payload, err := json.Marshal(listSnapshot{
		Version:   snapshotVersion,
		Watched:   s.watched,
		Watchlist: s.watchlist,
	})
	if err != nil {
		return fmt.Errorf("encode list snapshot: %w", err)
	}
	return s.persist(s.activeKey(), string(payload))
}

// persistRegistry writes the credential registry, which survives logout and
// is independent of any identity. Callers hold mu.
func (s *Service) persistRegistry() error {
	accounts := make([]models.Account, 0, len(s.registry))
	for _, account := range s.registry {
		accounts = append(accounts, account)
	}
	payload, err := json.Marshal(registrySnapshot{
		Version:  snapshotVersion,
		Accounts: accounts,
	})
	if err != nil {
		return fmt.Errorf("encode registry snapshot: %w", err)
	}
	return s.persist(registryKey, string(payload))
}

func (s *Service) persist(key, value string) error {
	err := retry.Do(
		func() error { return s.storage.Set(key, value) },
		retry.Attempts(persistAttempts),
		retry.Delay(persistDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("persist snapshot %s: %w", key, err)
	}
	return nil
}

func containsID(items []models.MediaItem, id int64) bool {
	for _, item := range items {
		if item.ID == id {
			return true
		}
	}
	return false
}

func removeID(items []models.MediaItem, id int64) []models.MediaItem {
	kept := items[:0]
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	return kept
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
