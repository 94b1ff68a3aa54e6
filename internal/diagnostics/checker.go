package diagnostics

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"

	"whisper-batch/internal/config"
	"whisper-batch/internal/domain"
	"whisper-batch/internal/transcribe"
)

// Checker validates external tools and required filesystem paths.
type Checker struct {
	lookPath   func(string) (string, error)
	stat       func(string) (os.FileInfo, error)
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
	now        func() time.Time
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker() *Checker {
	return NewCheckerForTests(exec.LookPath, os.Stat, os.MkdirAll, os.CreateTemp, os.Remove)
}

// NewCheckerForTests creates checker with injectable dependencies.
func NewCheckerForTests(
	lookPath func(string) (string, error),
	stat func(string) (os.FileInfo, error),
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{
		lookPath:   lookPath,
		stat:       stat,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
		now:        time.Now,
	}
}

// Run executes all checks. audioDir is optional; when set, the directory
// transcripts are written next to must be writable.
func (c *Checker) Run(settings domain.Settings, tools config.ToolsConfig, audioDir string) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkTool("ffprobe", tools.FFprobe),
		c.checkTool("ffmpeg", tools.FFmpeg),
		c.checkTool("whisper", tools.Whisper),
		c.checkModelDir(settings.ModelDir),
		c.checkModel(settings.ModelDir, settings.Model),
	}
	if strings.TrimSpace(audioDir) != "" {
		items = append(items, c.checkAudioDir(audioDir))
	}

	return domain.DiagnosticReport{
		GeneratedAt: c.now().UTC(),
		HasFailures: lo.SomeBy(items, func(item domain.DiagnosticItem) bool {
			return item.Status == domain.DiagnosticStatusFail
		}),
		Items: items,
	}
}

// checkTool verifies a required executable resolves on PATH or as a path.
func (c *Checker) checkTool(id, binary string) domain.DiagnosticItem {
	if strings.TrimSpace(binary) == "" {
		binary = id
	}
	path, err := c.lookPath(binary)
	if err != nil {
		return domain.DiagnosticItem{
			ID:      "tool_" + id,
			Name:    binary,
			Status:  domain.DiagnosticStatusFail,
			Message: fmt.Sprintf("Tool not found: %s", binary),
			Hint:    toolHint(id),
		}
	}

	return domain.DiagnosticItem{
		ID:      "tool_" + id,
		Name:    binary,
		Status:  domain.DiagnosticStatusPass,
		Message: fmt.Sprintf("Found at %s", path),
	}
}

func toolHint(id string) string {
	switch id {
	case "whisper":
		return "Build whisper.cpp and set tools.whisper in the profile to the whisper-cli binary."
	default:
		return "Install ffmpeg (it ships ffprobe) and ensure the binaries are available on PATH."
	}
}

// checkModelDir validates the download directory can hold model weights.
func (c *Checker) checkModelDir(modelDir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{ID: "model_dir", Name: "Model directory"}

	if strings.TrimSpace(modelDir) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Model directory is empty."
		item.Hint = "Set a directory where whisper models are stored."
		return item
	}
	if err := c.checkWritable(modelDir); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Model directory is not writable: %s", modelDir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", modelDir)
	return item
}

// checkModel reports whether the selected model weights are present. A
// missing file is not a failure; it is downloaded on first use.
func (c *Checker) checkModel(modelDir string, model domain.ModelID) domain.DiagnosticItem {
	item := domain.DiagnosticItem{ID: "model_file", Name: "Selected model"}

	option, ok := transcribe.LookupModel(string(model))
	if !ok {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Unknown model: %s", model)
		item.Hint = "Choose one of tiny, base, small, medium, large-v3."
		return item
	}

	path := filepath.Join(modelDir, option.FileName)
	info, err := c.stat(path)
	switch {
	case err == nil && !info.IsDir():
		item.Status = domain.DiagnosticStatusPass
		item.Message = fmt.Sprintf("Model file found: %s", path)
	case err == nil || errors.Is(err, os.ErrNotExist):
		item.Status = domain.DiagnosticStatusPass
		item.Message = fmt.Sprintf("%s not downloaded yet (%s)", option.Name, option.SizeLabel)
		item.Hint = "The model is downloaded automatically before the first transcription."
	default:
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot access model file: %s", path)
		item.Hint = "Check permissions for the model directory."
	}
	return item
}

// checkAudioDir validates transcripts can be written next to the audio files.
func (c *Checker) checkAudioDir(dir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{ID: "audio_dir", Name: "Audio directory"}

	info, err := c.stat(dir)
	if err != nil || !info.IsDir() {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Audio directory does not exist: %s", dir)
		item.Hint = "Pass an existing directory containing audio files."
		return item
	}
	if err := c.checkWritable(dir); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Audio directory is not writable: %s", dir)
		item.Hint = "Transcripts are saved next to each audio file; grant write access."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", dir)
	return item
}

func (c *Checker) checkWritable(dir string) error {
	if err := c.mkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmpFile, err := c.createTemp(dir, ".write-check-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)
	return nil
}
