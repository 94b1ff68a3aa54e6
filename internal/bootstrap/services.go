package bootstrap

import (
	"fmt"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"whisper-batch/internal/config"
	"whisper-batch/internal/diagnostics"
	"whisper-batch/internal/domain"
	"whisper-batch/internal/history"
	"whisper-batch/internal/jobs"
	"whisper-batch/internal/logging"
	"whisper-batch/internal/media"
	"whisper-batch/internal/transcribe"
)

// ServiceOptions select how the transcription stack is assembled.
type ServiceOptions struct {
	Profile  config.Profile
	Settings domain.Settings
	Logger   *zap.Logger
	// HistoryPath enables the SQLite outcome log when non-empty.
	HistoryPath  string
	SkipExisting bool
	KeepAlive    bool
}

// Services is the wired stack shared by the CLI and the desktop app.
type Services struct {
	Profile    config.Profile
	Settings   domain.Settings
	Logger     *zap.Logger
	Loader     *transcribe.WhisperCPPLoader
	Cache      *transcribe.ModelCache
	Controller *jobs.Controller
	History    *history.Store
	Checker    *diagnostics.Checker
}

// NewServices builds the prober, model cache, whisper.cpp backend, optional
// history store and the queue controller.
func NewServices(opts ServiceOptions) (*Services, error) {
	logger := logging.OrNop(opts.Logger)
	profile := opts.Profile
	settings := config.Normalize(opts.Settings)

	loader := transcribe.NewWhisperCPPLoader(settings.ModelDir, logger.Named("loader"))
	cache := transcribe.NewModelCache(loader, profile.Compute, logger.Named("cache"))
	transcriber := transcribe.NewWhisperCPPTranscriber(profile.Tools.FFmpeg, profile.Tools.Whisper, settings.Language, logger.Named("whisper"))
	prober := media.NewProber(profile.Tools.FFprobe, profile.ProbeTimeout.Duration, logger.Named("probe"))

	svc := &Services{
		Profile:  profile,
		Settings: settings,
		Logger:   logger,
		Loader:   loader,
		Cache:    cache,
		Checker:  diagnostics.NewChecker(),
	}

	deps := jobs.Deps{
		Cache:       cache,
		Transcriber: transcriber,
		Prober:      prober,
		Events:      jobs.NewEventBus(1000),
		Logger:      logger.Named("controller"),
	}
	if opts.HistoryPath != "" {
		store, err := history.Open(opts.HistoryPath)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		svc.History = store
		deps.Recorder = store
	}

	svc.Controller = jobs.NewController(deps, jobs.Options{
		PollInterval:  profile.PollInterval.Duration,
		PauseInterval: profile.PauseInterval.Duration,
		Device:        settings.Device,
		ComputeType:   settings.ComputeType,
		SkipExisting:  opts.SkipExisting,
		KeepAlive:     opts.KeepAlive,
		SpeedFactor:   profile.SpeedFactor,
	})

	logger.Debug("services ready",
		zap.String("model_dir", settings.ModelDir),
		zap.String("device", settings.Device),
		zap.Bool("history", svc.History != nil),
	)
	return svc, nil
}

// DefaultHistoryPath returns the history database location under the app dir.
func DefaultHistoryPath() string {
	return filepath.Join(config.AppDir(), history.DefaultFileName)
}

// DefaultSettingsPath returns the settings file location under the app dir.
func DefaultSettingsPath() string {
	return filepath.Join(config.AppDir(), "settings.json")
}

// Diagnose runs environment checks for the current settings.
func (s *Services) Diagnose(audioDir string) domain.DiagnosticReport {
	return s.Checker.Run(s.Settings, s.Profile.Tools, audioDir)
}

// Close releases the model and the history database.
func (s *Services) Close() error {
	err := s.Controller.Close()
	if s.History != nil {
		err = multierr.Append(err, s.History.Close())
	}
	return err
}
