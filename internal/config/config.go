// Package config persists tool-level settings: the default server,
// the sources URL, and the install root. Settings live in the XDG
// config directory, not under the server tree, so they survive a
// server wipe.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
)

// DefaultHome is the install root used when neither the config file
// nor ETSM_HOME overrides it.
const DefaultHome = "/var/lib/etsm"

// Config holds per-user tool settings.
type Config struct {
	DefaultServer string `json:"default_server,omitempty"`
	SourcesURL    string `json:"sources_url,omitempty"`
	Home          string `json:"home,omitempty"`
}

// Store handles persistence of the tool config.
type Store struct {
	path string
	cfg  *Config
	mu   sync.RWMutex
}

// NewStore creates a store rooted at the XDG config dir.
func NewStore() *Store {
	return &Store{
		path: filepath.Join(xdg.ConfigHome, "etsm", "config.json"),
		cfg:  &Config{},
	}
}

// Load reads the config from disk. A missing file means defaults.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.cfg = &Config{}
			return nil
		}
		return err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return err
	}
	s.cfg = &cfg
	return nil
}

// Save writes the config to disk.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

// Get returns a copy of the current config.
func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.cfg
}

// SetDefaultServer records the server name used when --server is
// omitted.
func (s *Store) SetDefaultServer(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.DefaultServer = name
}

// SetSourcesURL records a sources mirror override.
func (s *Store) SetSourcesURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.SourcesURL = url
}

// SetHome records an install root override.
func (s *Store) SetHome(home string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Home = home
}

// ResolveHome picks the install root: ETSM_HOME wins, then the config
// file, then the default.
func (s *Store) ResolveHome() string {
	if env := os.Getenv("ETSM_HOME"); env != "" {
		return env
	}
	if cfg := s.Get(); cfg.Home != "" {
		return cfg.Home
	}
	return DefaultHome
}
