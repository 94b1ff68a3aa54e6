package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"whisper-batch/internal/domain"
)

// Store defines persistence operations for app settings.
type Store interface {
	Load() (domain.Settings, error)
	Save(domain.Settings) error
}

// JSONStore persists settings in a single JSON file on disk.
type JSONStore struct {
	path string
}

// NewJSONStore creates a JSON-backed settings store.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Load reads settings from disk or returns defaults when missing.
func (s *JSONStore) Load() (domain.Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSettings(), nil
		}

		return domain.Settings{}, err
	}

	cfg := DefaultSettings()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return domain.Settings{}, err
	}

	return Normalize(cfg), nil
}

// Save writes settings as indented JSON and creates parent directories.
func (s *JSONStore) Save(cfg domain.Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(Normalize(cfg), "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0o644)
}

// Normalize trims user inputs and fills empty fields from defaults.
func Normalize(cfg domain.Settings) domain.Settings {
	defaults := DefaultSettings()

	cfg.Device = strings.ToLower(strings.TrimSpace(cfg.Device))
	cfg.ComputeType = strings.TrimSpace(cfg.ComputeType)
	cfg.ModelDir = strings.TrimSpace(cfg.ModelDir)
	cfg.Language = strings.TrimSpace(cfg.Language)

	if _, err := domain.ParseModelID(string(cfg.Model)); err != nil {
		cfg.Model = defaults.Model
	}
	if cfg.Device == "" {
		cfg.Device = defaults.Device
	}
	if cfg.ModelDir == "" {
		cfg.ModelDir = defaults.ModelDir
	}
	if cfg.Language == "" {
		cfg.Language = defaults.Language
	}
	return cfg
}
