package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"whisper-batch/internal/domain"
	"whisper-batch/internal/jobs"
	"whisper-batch/internal/transcribe"
)

// modelFile is implemented by loaded models backed by a file on disk.
type modelFile interface {
	Path() string
}

// Models returns the model catalog with download markers for the configured directory.
func (s *Services) Models() []domain.WhisperModelOption {
	return transcribe.Catalog(s.Settings.ModelDir)
}

// DownloadModel fetches one catalog model into the model directory unless it
// is already present, and returns the local file path.
func (s *Services) DownloadModel(ctx context.Context, modelID string, progress func(percent float64, message string)) (string, error) {
	id, err := domain.ParseModelID(strings.TrimSpace(modelID))
	if err != nil {
		return "", err
	}

	spec := transcribe.ModelSpec{Name: string(id), Device: "cpu"}
	model, err := s.Loader.Load(ctx, spec, progress)
	if err != nil {
		return "", err
	}
	defer model.Close()

	path := ""
	if f, ok := model.(modelFile); ok {
		path = f.Path()
	}
	s.Logger.Info("model available", zap.String("model", string(id)), zap.String("path", path))
	return path, nil
}

// GetWhisperModels returns the model catalog with download markers.
func (a *App) GetWhisperModels() []domain.WhisperModelOption {
	return transcribe.Catalog(a.currentSettings().ModelDir)
}

// DownloadWhisperModel downloads one catalog model and forwards progress to
// the frontend as model_download events.
func (a *App) DownloadWhisperModel(modelID string) ([]domain.WhisperModelOption, error) {
	if a.services == nil {
		return nil, fmt.Errorf("model loader is not configured")
	}

	ctx := context.Background()
	if runtimeCtx, err := a.runtimeContext(); err == nil {
		ctx = runtimeCtx
	}

	events := a.Queue.Events()
	_, err := a.services.DownloadModel(ctx, modelID, func(percent float64, message string) {
		events.Publish(jobs.Event{
			Type:        jobs.EventTypeModelDownload,
			ModelName:   modelID,
			Percent:     percent,
			Message:     message,
			ShowLoading: percent < 100,
		})
	})
	if err != nil {
		return a.GetWhisperModels(), fmt.Errorf("download model %s: %w", modelID, err)
	}

	a.refreshDiagnosticsFromSettings(a.currentSettings())
	return a.GetWhisperModels(), nil
}
