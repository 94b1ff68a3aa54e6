package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"
	"time"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"go.uber.org/zap"

	"whisper-batch/internal/config"
	"whisper-batch/internal/domain"
	"whisper-batch/internal/jobs"
	"whisper-batch/internal/logging"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// queueEventName is the runtime event the frontend listens on.
const queueEventName = "queue:event"

var audioDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Audio files",
		Pattern:     "*.wav;*.mp3;*.mpeg;*.mp4;*.m4a",
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

// queueController is the subset of the batch controller the desktop app binds.
type queueController interface {
	Submit(path string, model domain.ModelID, includeTimestamps bool) (domain.AudioTask, error)
	Start(ctx context.Context) error
	TogglePause() (bool, error)
	Stop() error
	Wait(ctx context.Context) error
	State() jobs.RunState
	Tasks() []domain.AudioTask
	RemovePending(id string) error
	MovePending(id string, index int) error
	UpdatePending(id string, model domain.ModelID, includeTimestamps bool) (domain.AudioTask, error)
	ClearFinished() int
	SetCompute(device, computeType string) error
	Events() *jobs.EventBus
}

// App wires configuration, the queue controller and UI runtime callbacks.
type App struct {
	Settings    domain.Settings
	Store       config.Store
	Diagnostics domain.DiagnosticReport
	Queue       queueController
	services    *Services
	logger      *zap.Logger
	assets      fs.FS

	mu         sync.Mutex
	runtimeCtx context.Context
	stopPump   func()
}

// New builds the application with persisted settings and startup diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	profile, err := config.ResolveProfile("")
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	logger, err := logging.New(profile.LogLevel, false, false)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	store := config.NewJSONStore(DefaultSettingsPath())
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	services, err := NewServices(ServiceOptions{
		Profile:     profile,
		Settings:    settings,
		Logger:      logger,
		HistoryPath: DefaultHistoryPath(),
	})
	if err != nil {
		return nil, err
	}

	return &App{
		Settings:    services.Settings,
		Store:       store,
		Diagnostics: services.Diagnose(""),
		Queue:       services.Controller,
		services:    services,
		logger:      logger,
		assets:      assets,
	}, nil
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "Whisper Batch",
		Width:       1180,
		Height:      780,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown:  a.Shutdown,
		Bind:        []interface{}{a},
	})
}

// Startup stores the Wails runtime context and forwards queue events to it.
func (a *App) Startup(ctx context.Context) {
	events, cancel := a.Queue.Events().Subscribe()

	a.mu.Lock()
	a.runtimeCtx = ctx
	a.stopPump = cancel
	a.mu.Unlock()

	go func() {
		for event := range events {
			wailsruntime.EventsEmit(ctx, queueEventName, event)
		}
	}()
}

// Shutdown stops any run, waits briefly for the in-flight file and releases resources.
func (a *App) Shutdown(ctx context.Context) {
	a.mu.Lock()
	stop := a.stopPump
	a.runtimeCtx = nil
	a.stopPump = nil
	a.mu.Unlock()

	if err := a.Queue.Stop(); err == nil {
		waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := a.Queue.Wait(waitCtx); err != nil {
			a.log().Warn("run still active at shutdown", zap.Error(err))
		}
		cancel()
	}
	if stop != nil {
		stop()
	}
	if a.services != nil {
		if err := a.services.Close(); err != nil {
			a.log().Warn("close services", zap.Error(err))
		}
	}
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// RefreshDiagnostics reruns dependency checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}
	return a.refreshDiagnosticsFromSettings(settings), nil
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings normalizes and persists settings, then hands device and
// compute type to the queue for the next run. Model directory and language
// apply after restart.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := config.Normalize(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	a.refreshDiagnosticsFromSettings(normalized)

	if err := a.Queue.SetCompute(normalized.Device, normalized.ComputeType); err != nil {
		return normalized, fmt.Errorf("apply settings: %w", err)
	}
	return normalized, nil
}

// AddFiles opens a multi-select dialog and queues the chosen files with the
// current default model and timestamp preference.
func (a *App) AddFiles() ([]domain.AudioTask, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return nil, err
	}

	paths, err := wailsruntime.OpenMultipleFilesDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select audio files",
		Filters: audioDialogFilter,
	})
	if err != nil {
		return nil, err
	}
	return a.AddPaths(paths)
}

// AddPaths queues files by path, for drag and drop.
func (a *App) AddPaths(paths []string) ([]domain.AudioTask, error) {
	settings := a.currentSettings()
	out := make([]domain.AudioTask, 0, len(paths))
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		task, err := a.Queue.Submit(path, settings.Model, settings.IncludeTimestamps)
		if err != nil {
			return out, err
		}
		out = append(out, task)
	}
	return out, nil
}

// StartQueue begins processing pending files.
func (a *App) StartQueue() (jobs.RunState, error) {
	if err := a.Queue.Start(context.Background()); err != nil {
		return a.Queue.State(), err
	}
	return a.Queue.State(), nil
}

// TogglePause pauses or resumes the current run.
func (a *App) TogglePause() (jobs.RunState, error) {
	_, err := a.Queue.TogglePause()
	return a.Queue.State(), err
}

// StopQueue stops after the in-flight file.
func (a *App) StopQueue() error {
	err := a.Queue.Stop()
	if errors.Is(err, jobs.ErrNoActiveRun) {
		return nil
	}
	return err
}

// QueueState returns counters and elapsed time for the progress bar.
func (a *App) QueueState() jobs.RunState {
	return a.Queue.State()
}

// Tasks returns the file list in display order.
func (a *App) Tasks() []domain.AudioTask {
	return a.Queue.Tasks()
}

// RemoveTask drops a task while no run is active.
func (a *App) RemoveTask(id string) error {
	return a.Queue.RemovePending(id)
}

// MoveTask reorders a pending task.
func (a *App) MoveTask(id string, index int) error {
	return a.Queue.MovePending(id, index)
}

// UpdateTask edits the model and timestamp flag of a pending task.
func (a *App) UpdateTask(id string, model string, includeTimestamps bool) (domain.AudioTask, error) {
	modelID, err := domain.ParseModelID(model)
	if err != nil {
		return domain.AudioTask{}, err
	}
	return a.Queue.UpdatePending(id, modelID, includeTimestamps)
}

// ClearFinished removes finished rows from the file list.
func (a *App) ClearFinished() int {
	return a.Queue.ClearFinished()
}

// QueueEvents returns all events with sequence greater than sinceSeq.
func (a *App) QueueEvents(sinceSeq int64) []jobs.Event {
	return a.Queue.Events().Since(sinceSeq)
}

// OpenOutputFolder opens the folder containing a transcript in the file manager.
func (a *App) OpenOutputFolder(path string) error {
	target := strings.TrimSpace(path)
	if target == "" {
		return fmt.Errorf("output path is empty")
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	openPath := target
	if !info.IsDir() {
		openPath = filepath.Dir(target)
	}
	return openInFileManager(openPath)
}

func (a *App) refreshDiagnosticsFromSettings(settings domain.Settings) domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Settings = settings
	if a.services != nil {
		a.Diagnostics = a.services.Checker.Run(settings, a.services.Profile.Tools, "")
	}
	return a.Diagnostics
}

func (a *App) currentSettings() domain.Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Settings
}

func (a *App) log() *zap.Logger {
	return logging.OrNop(a.logger)
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

// openInFileManager launches the platform file explorer for the provided path.
func openInFileManager(path string) error {
	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", filepath.Clean(path))
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch file manager: %w", err)
	}
	return nil
}
