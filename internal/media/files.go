package media

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dhowden/tag"
)

// AudioExtensions lists the file types accepted by directory scans and dialogs.
var AudioExtensions = []string{".wav", ".mp3", ".mpeg", ".mp4", ".m4a"}

// IsAudioFile reports whether path has an accepted extension.
func IsAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range AudioExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

// ScanDirectory returns the absolute paths of audio files directly inside dir, sorted.
func ScanDirectory(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("directory not found: %s", dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !IsAudioFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(abs, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// TranscriptPath returns the sibling output file for an audio file.
func TranscriptPath(audioPath string) string {
	base := filepath.Base(audioPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if strings.TrimSpace(stem) == "" {
		stem = "transcript"
	}
	return filepath.Join(filepath.Dir(audioPath), stem+"_transcription.txt")
}

// DisplayName prefers embedded title/artist tags and falls back to the base name.
func DisplayName(path string) string {
	base := filepath.Base(path)

	f, err := os.Open(path)
	if err != nil {
		return base
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return base
	}

	title := strings.TrimSpace(meta.Title())
	if title == "" {
		return base
	}
	if artist := strings.TrimSpace(meta.Artist()); artist != "" {
		return fmt.Sprintf("%s - %s (%s)", artist, title, base)
	}
	return fmt.Sprintf("%s (%s)", title, base)
}
