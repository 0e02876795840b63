// Package file persists settings and sync progress in a TOML file
// under the user's config directory.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/readfold/readfold/internal/core/domain"
	"github.com/readfold/readfold/internal/core/ports/driven"
)

// Ensure StateStore implements the interface.
var _ driven.StateStore = (*StateStore)(nil)

const (
	defaultDirName = ".readfold"
	configFileName = "config.toml"
)

// Environment variables overriding the stored credential, so the API
// key can stay out of the config file entirely.
const (
	EnvAPIKey      = "READFOLD_API_KEY"
	EnvEndpoint    = "READFOLD_ENDPOINT"
	EnvSiyuanToken = "READFOLD_SIYUAN_TOKEN"
)

// fileConfig is the on-disk layout.
type fileConfig struct {
	Settings domain.Settings  `toml:"settings"`
	State    domain.SyncState `toml:"state"`
}

// StateStore is a TOML-file implementation of driven.StateStore.
// Defaults apply for any key absent from the file.
type StateStore struct {
	mu       sync.RWMutex
	filePath string
	cfg      fileConfig
}

// NewStateStore creates a state store rooted at configDir. If configDir
// is empty, defaults to ~/.readfold. A .env file in the working
// directory is loaded as a convenience for development setups.
func NewStateStore(configDir string) (*StateStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		configDir = filepath.Join(home, defaultDirName)
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	s := &StateStore{
		filePath: filepath.Join(configDir, configFileName),
		cfg:      fileConfig{Settings: domain.DefaultSettings()},
	}
	if err := s.load(); err != nil {
		return nil, err
	}

	_ = godotenv.Load()
	return s, nil
}

// Settings returns the stored settings with defaults and environment
// overrides applied.
func (s *StateStore) Settings() domain.Settings {
	s.mu.RLock()
	settings := s.cfg.Settings
	s.mu.RUnlock()

	if v := os.Getenv(EnvAPIKey); v != "" {
		settings.APIKey = v
	}
	if v := os.Getenv(EnvEndpoint); v != "" {
		settings.Endpoint = v
	}
	if v := os.Getenv(EnvSiyuanToken); v != "" {
		settings.SiyuanToken = v
	}
	return settings
}

// SaveSettings persists settings.
func (s *StateStore) SaveSettings(settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Settings = settings
	return s.save()
}

// SyncState returns the persisted sync progress.
func (s *StateStore) SyncState() domain.SyncState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.State
}

// SaveSyncState persists sync progress.
func (s *StateStore) SaveSyncState(st domain.SyncState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.State = st
	return s.save()
}

// load reads the config file over the defaults. A missing file is fine.
func (s *StateStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &s.cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// save writes the config atomically: a temp file in the same directory
// is renamed over the target so a crash mid-write cannot truncate the
// stored cursor. Caller must hold the lock.
func (s *StateStore) save() error {
	data, err := toml.Marshal(s.cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	dir := filepath.Dir(s.filePath)
	tmp, err := os.CreateTemp(dir, ".config-*.toml")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp config: %w", err)
	}
	if err := os.Rename(tmpName, s.filePath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}
