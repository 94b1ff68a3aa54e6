package config

import (
	"os"
	"path/filepath"

	"whisper-batch/internal/domain"
)

// AppDirName is the per-user directory holding settings, models and history.
const AppDirName = ".whisper-batch"

// AppDir returns the per-user application directory.
func AppDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, AppDirName)
}

// DefaultSettings returns baseline local configuration for first launch.
func DefaultSettings() domain.Settings {
	return domain.Settings{
		Model:             domain.DefaultModel,
		Device:            "auto",
		IncludeTimestamps: true,
		ModelDir:          filepath.Join(AppDir(), "models"),
		Language:          "auto",
	}
}
