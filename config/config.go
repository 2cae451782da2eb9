package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
)

// Settings is the full runtime configuration, persisted as a JSON file.
type Settings struct {
	Server   ServerSettings   `json:"server"`
	Database DatabaseSettings `json:"database"`
	Catalog  CatalogSettings  `json:"catalog"`
	Agenda   AgendaSettings   `json:"agenda"`
	Logging  LoggingSettings  `json:"logging"`
}

// ServerSettings configures the HTTP listener.
type ServerSettings struct {
	ListenAddr string `json:"listenAddr"`
}

// DatabaseSettings configures the local sqlite store.
type DatabaseSettings struct {
	Path string `json:"path"`
}

// CatalogSettings configures the TMDB metadata provider.
type CatalogSettings struct {
	APIKey   string `json:"apiKey"`
	BaseURL  string `json:"baseUrl,omitempty"`
	Language string `json:"language,omitempty"`
	Region   string `json:"region,omitempty"`
}

// AgendaSettings bounds the agenda resolver's fan-out.
type AgendaSettings struct {
	MaxConcurrentLookups int `json:"maxConcurrentLookups"`
	LookupTimeoutSeconds int `json:"lookupTimeoutSeconds"`
}

// LoggingSettings configures optional rotated file logging.
type LoggingSettings struct {
	File       string `json:"file,omitempty"`
	MaxSizeMB  int    `json:"maxSizeMb,omitempty"`
	MaxBackups int    `json:"maxBackups,omitempty"`
}

// DefaultSettings returns the configuration used when no settings file exists.
func DefaultSettings() *Settings {
	return &Settings{
		Server:   ServerSettings{ListenAddr: ":8480"},
		Database: DatabaseSettings{Path: "data/cinelog.db"},
		Catalog: CatalogSettings{
			Language: "fr-FR",
			Region:   "FR",
		},
		Agenda: AgendaSettings{
			MaxConcurrentLookups: 8,
			LookupTimeoutSeconds: 10,
		},
		Logging: LoggingSettings{MaxSizeMB: 20, MaxBackups: 3},
	}
}

// Manager loads and saves the settings file.
type Manager struct {
	path string

	mu     sync.RWMutex
	cached *Settings
}

// NewManager creates a manager for the settings file at path.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Load reads the settings file, applying defaults and environment overrides.
// A missing file is not an error; defaults are returned.
func (m *Manager) Load() (*Settings, error) {
	m.mu.RLock()
	if m.cached != nil {
		defer m.mu.RUnlock()
		return m.cached, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	settings := DefaultSettings()

	data, err := os.ReadFile(m.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read settings %q: %w", m.path, err)
	}
	if err == nil {
		if err := json.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("parse settings %q: %w", m.path, err)
		}
	}

	applyEnvOverrides(settings)

	m.cached = settings
	return settings, nil
}

// Save writes settings back to the file and refreshes the cache.
func (m *Manager) Save(settings *Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("write settings %q: %w", m.path, err)
	}
	m.cached = settings
	return nil
}

func applyEnvOverrides(s *Settings) {
	if v := os.Getenv("CINELOG_LISTEN_ADDR"); v != "" {
		s.Server.ListenAddr = v
	}
	if v := os.Getenv("CINELOG_DB_PATH"); v != "" {
		s.Database.Path = v
	}
	if v := os.Getenv("CINELOG_TMDB_API_KEY"); v != "" {
		s.Catalog.APIKey = v
	}
	if v := os.Getenv("CINELOG_TMDB_LANGUAGE"); v != "" {
		s.Catalog.Language = v
	}
	if v := os.Getenv("CINELOG_TMDB_REGION"); v != "" {
		s.Catalog.Region = v
	}
	if v := os.Getenv("CINELOG_LOG_FILE"); v != "" {
		s.Logging.File = v
	}
	if v := os.Getenv("CINELOG_AGENDA_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			s.Agenda.MaxConcurrentLookups = n
		}
	}
}
