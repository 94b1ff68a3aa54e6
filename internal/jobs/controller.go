package jobs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"whisper-batch/internal/domain"
	"whisper-batch/internal/logging"
	"whisper-batch/internal/media"
	"whisper-batch/internal/transcribe"
)

// ErrNoPendingTasks is returned by Start when there is nothing to process.
var ErrNoPendingTasks = errors.New("no pending files")

// DurationProber reads an audio file's play length in seconds.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Recorder persists finished task outcomes.
type Recorder interface {
	Record(ctx context.Context, outcome domain.TaskOutcome) error
}

// Deps are the collaborators of a Controller.
type Deps struct {
	Queue       *Queue
	Manager     *Manager
	Cache       *transcribe.ModelCache
	Transcriber transcribe.Transcriber
	Prober      DurationProber
	Events      *EventBus
	Recorder    Recorder
	Logger      *zap.Logger
}

// Options tune the worker loop and per-task behavior.
type Options struct {
	PollInterval  time.Duration
	PauseInterval time.Duration
	Device        string
	ComputeType   string
	SkipExisting  bool
	// KeepAlive keeps the worker polling after the queue drains.
	KeepAlive   bool
	SpeedFactor func(model string) float64
}

// RunState is a point-in-time view of the current run.
type RunState struct {
	RunID        string           `json:"runId"`
	Status       domain.RunStatus `json:"status"`
	Total        int              `json:"total"`
	Completed    int              `json:"completed"`
	Percent      float64          `json:"percent"`
	Paused       bool             `json:"paused"`
	Stopping     bool             `json:"stopping"`
	Elapsed      time.Duration    `json:"elapsed"`
	ElapsedLabel string           `json:"elapsedLabel"`
	Remaining    time.Duration    `json:"remaining"`
}

// Controller drains the queue on a single background worker.
type Controller struct {
	queue       *Queue
	manager     *Manager
	cache       *transcribe.ModelCache
	transcriber transcribe.Transcriber
	prober      DurationProber
	events      *EventBus
	recorder    Recorder
	logger      *zap.Logger
	opts        Options

	mu     sync.Mutex
	active bool
	done   chan struct{}

	paused  atomic.Bool
	stopped atomic.Bool

	stat      func(name string) (os.FileInfo, error)
	readable  func(path string) error
	writeFile func(name string, data []byte, perm os.FileMode) error
	now       func() time.Time
}

// NewController constructs a controller using the real filesystem.
func NewController(deps Deps, opts Options) *Controller {
	return NewControllerForTests(deps, opts, os.WriteFile, time.Now)
}

// NewControllerForTests constructs a controller with injectable output and clock.
func NewControllerForTests(
	deps Deps,
	opts Options,
	writeFile func(name string, data []byte, perm os.FileMode) error,
	now func() time.Time,
) *Controller {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	if opts.PauseInterval <= 0 {
		opts.PauseInterval = 200 * time.Millisecond
	}
	if opts.SpeedFactor == nil {
		opts.SpeedFactor = func(string) float64 { return 1 }
	}
	if deps.Queue == nil {
		deps.Queue = NewQueue()
	}
	if deps.Manager == nil {
		deps.Manager = NewManagerForTests(now)
	}
	if deps.Events == nil {
		deps.Events = NewEventBus(500)
	}

	done := make(chan struct{})
	close(done)

	return &Controller{
		queue:       deps.Queue,
		manager:     deps.Manager,
		cache:       deps.Cache,
		transcriber: deps.Transcriber,
		prober:      deps.Prober,
		events:      deps.Events,
		recorder:    deps.Recorder,
		logger:      logging.OrNop(deps.Logger),
		opts:        opts,
		done:        done,
		stat:        os.Stat,
		readable:    checkReadable,
		writeFile:   writeFile,
		now:         now,
	}
}

// Events exposes the bus observers read from.
func (c *Controller) Events() *EventBus {
	return c.events
}

// Enqueue adds a pending task and publishes its status and the new progress.
func (c *Controller) Enqueue(task domain.AudioTask) (domain.AudioTask, bool) {
	if task.DisplayName == "" {
		task.DisplayName = filepath.Base(task.Path)
	}
	stored, progress, ok := c.queue.Enqueue(task)
	if !ok {
		return stored, false
	}

	c.publishTask(c.manager.Current().ID, stored)
	if c.manager.IsActive() {
		c.publishProgress(c.manager.Current().ID, progress)
	}
	return stored, true
}

// Submit validates a file and enqueues it. Missing files are recorded as
// NotAccessible and non-audio files as Invalid; neither is queued.
func (c *Controller) Submit(path string, model domain.ModelID, includeTimestamps bool) (domain.AudioTask, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return domain.AudioTask{}, fmt.Errorf("resolve path %q: %w", path, err)
	}

	task := domain.AudioTask{
		Path:              abs,
		DisplayName:       filepath.Base(abs),
		Model:             model,
		IncludeTimestamps: includeTimestamps,
		Status:            domain.TaskStatusPending,
	}

	info, statErr := c.stat(abs)
	switch {
	case statErr != nil || info.IsDir():
		task.Status = domain.TaskStatusNotAccessible
		task.Message = string(transcribe.KindFileNotAccessible)
	case !media.IsAudioFile(abs):
		task.Status = domain.TaskStatusInvalid
		task.Message = string(transcribe.KindInvalidAudio)
	}
	if task.Status != domain.TaskStatusPending {
		task = c.queue.Record(task)
		c.publishTask(c.manager.Current().ID, task)
		c.logger.Warn("file rejected", zap.String("path", abs), zap.String("status", string(task.Status)))
		return task, nil
	}

	task.DisplayName = media.DisplayName(abs)
	stored, _ := c.Enqueue(task)
	return stored, nil
}

// Start launches the worker for the pending queue.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		return ErrRunActive
	}
	if c.queue.PendingCount() == 0 {
		c.publish(Event{Type: EventTypeStatus, Message: "No pending files to transcribe"})
		return ErrNoPendingTasks
	}

	runID := uuid.NewString()
	if err := c.manager.Start(runID); err != nil {
		return err
	}
	c.paused.Store(false)
	c.stopped.Store(false)
	c.active = true
	c.done = make(chan struct{})

	progress := c.queue.BeginRun()
	c.logger.Info("run started", zap.String("run_id", runID), zap.Int("tasks", progress.Total))
	c.publish(Event{RunID: runID, Type: EventTypeStatus, RunStatus: domain.RunStatusRunning,
		Message: fmt.Sprintf("Starting transcription of %d files", progress.Total)})
	c.publishControls(runID, domain.RunStatusRunning)
	c.publishProgress(runID, progress)

	go c.run(ctx, runID, c.done)
	return nil
}

// TogglePause pauses a running batch or resumes a paused one. It reports
// whether the batch is paused afterwards.
func (c *Controller) TogglePause() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active || !c.manager.IsActive() || c.stopped.Load() {
		return false, ErrNoActiveRun
	}
	runID := c.manager.Current().ID

	if c.paused.Load() {
		if err := c.manager.Transition(domain.RunStatusRunning); err != nil {
			return true, err
		}
		c.paused.Store(false)
		c.publish(Event{RunID: runID, Type: EventTypeStatus, RunStatus: domain.RunStatusRunning, Message: "Resuming transcription"})
		c.publishControls(runID, domain.RunStatusRunning)
		return false, nil
	}

	if err := c.manager.Transition(domain.RunStatusPaused); err != nil {
		return false, err
	}
	c.paused.Store(true)
	c.publishControls(runID, domain.RunStatusPaused)
	return true, nil
}

// Stop asks the worker to exit after the in-flight task.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return ErrNoActiveRun
	}
	if c.stopped.Swap(true) {
		return nil
	}
	runID := c.manager.Current().ID
	c.logger.Info("stop requested", zap.String("run_id", runID))
	c.publish(Event{RunID: runID, Type: EventTypeStatus, Message: "Stopping after the current file..."})
	return nil
}

// Done returns a channel closed when the current run ends. It is already
// closed while idle.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Wait blocks until the current run ends or ctx is cancelled.
func (c *Controller) Wait(ctx context.Context) error {
	select {
	case <-c.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns counters, flags and timing for the current run.
func (c *Controller) State() RunState {
	run := c.manager.Current()
	progress := c.queue.Progress()
	elapsed := c.manager.Elapsed()

	return RunState{
		RunID:        run.ID,
		Status:       run.Status,
		Total:        progress.Total,
		Completed:    progress.Completed,
		Percent:      progress.Percent(),
		Paused:       c.paused.Load(),
		Stopping:     c.stopped.Load(),
		Elapsed:      elapsed,
		ElapsedLabel: FormatElapsed(elapsed),
		Remaining:    Remaining(elapsed, progress),
	}
}

// Tasks returns every known task in display order.
func (c *Controller) Tasks() []domain.AudioTask {
	return c.queue.Tasks()
}

// RemovePending drops a pending or finished task. Only allowed while idle so
// the run total never shrinks.
func (c *Controller) RemovePending(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		return ErrRunActive
	}
	return c.queue.Remove(id)
}

// MovePending reorders a pending task before the worker consumes it.
func (c *Controller) MovePending(id string, index int) error {
	return c.queue.Move(id, index)
}

// UpdatePending edits the per-task preferences of a task not yet dequeued.
func (c *Controller) UpdatePending(id string, model domain.ModelID, includeTimestamps bool) (domain.AudioTask, error) {
	task, err := c.queue.Update(id, model, includeTimestamps)
	if err != nil {
		return task, err
	}
	c.publishTask(c.manager.Current().ID, task)
	return task, nil
}

// SetCompute changes the device and compute type used for later runs.
func (c *Controller) SetCompute(device, computeType string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		return ErrRunActive
	}
	c.opts.Device = device
	c.opts.ComputeType = computeType
	return nil
}

// ClearFinished drops terminal tasks from the display list.
func (c *Controller) ClearFinished() int {
	return c.queue.ClearFinished()
}

// Close releases the loaded model. Call only while idle.
func (c *Controller) Close() error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Close()
}

// run is the worker loop. It owns the model cache for its lifetime.
func (c *Controller) run(ctx context.Context, runID string, done chan struct{}) {
	final := domain.RunStatusDrained
	var fatal error

	defer func() {
		if r := recover(); r != nil {
			final = domain.RunStatusFailed
			fatal = fmt.Errorf("worker panic: %v", r)
		}
		c.finish(runID, final, fatal, done)
	}()

	announcedPause := false
	for {
		if c.stopped.Load() || ctx.Err() != nil {
			final = domain.RunStatusStopped
			return
		}

		if c.paused.Load() {
			if !announcedPause {
				announcedPause = true
				c.publish(Event{RunID: runID, Type: EventTypeStatus, RunStatus: domain.RunStatusPaused, Message: "Paused"})
			}
			select {
			case <-time.After(c.opts.PauseInterval):
			case <-ctx.Done():
			}
			continue
		}
		announcedPause = false

		task, ok := c.queue.Dequeue(c.opts.PollInterval)
		if !ok {
			if !c.opts.KeepAlive && c.drain() {
				return
			}
			continue
		}

		// Pause or stop may have fired while waiting; the task goes back first.
		if c.stopped.Load() || c.paused.Load() || ctx.Err() != nil {
			c.queue.Requeue(task.ID)
			continue
		}

		c.process(ctx, runID, task)
	}
}

// drain moves the run to drained once every counted task is done. It holds
// the controller lock so a pause cannot land between the check and the
// transition.
func (c *Controller) drain() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.paused.Load() {
		return false
	}
	progress := c.queue.Progress()
	if progress.Completed < progress.Total {
		return false
	}
	return c.manager.Transition(domain.RunStatusDrained) == nil
}

// pipelineOutcome is the result of one task's pipeline.
type pipelineOutcome struct {
	skipped      bool
	outputPath   string
	audioSeconds float64
	segments     int
	body         string
	err          error
}

// process runs one task and never lets its failure escape.
func (c *Controller) process(ctx context.Context, runID string, task domain.AudioTask) {
	started := c.now()
	task = c.setStatus(runID, task, domain.TaskStatusProcessing, "", "")

	progress := c.queue.Progress()
	c.publish(Event{RunID: runID, TaskID: task.ID, Type: EventTypeStatus,
		Message: fmt.Sprintf("Processing file %d of %d: %s", progress.Completed+1, progress.Total, task.DisplayName)})
	c.text(runID, task.ID, fmt.Sprintf("Starting transcription of %s...", task.DisplayName))

	out := c.runPipeline(ctx, runID, task)

	outcome := domain.TaskOutcome{
		RunID:        runID,
		TaskID:       task.ID,
		Path:         task.Path,
		Model:        task.Model,
		Timestamps:   task.IncludeTimestamps,
		AudioSeconds: out.audioSeconds,
		OutputPath:   out.outputPath,
		StartedAt:    started,
	}

	switch {
	case out.err != nil:
		kind := transcribe.KindOf(out.err)
		if kind == "" {
			kind = transcribe.KindTranscription
		}
		outcome.Status = domain.TaskStatusError
		outcome.ErrorKind = string(kind)
		outcome.Message = out.err.Error()
		outcome.OutputPath = ""
		c.reportFailure(runID, task, kind, out.err)
		c.setStatus(runID, task, domain.TaskStatusError, string(kind), "")
	case out.skipped:
		outcome.Status = domain.TaskStatusSkipped
		outcome.Message = "transcript already exists"
		c.text(runID, task.ID, fmt.Sprintf("Skipping %s: transcript already exists at %s", task.DisplayName, out.outputPath))
		c.setStatus(runID, task, domain.TaskStatusSkipped, outcome.Message, out.outputPath)
	default:
		outcome.Status = domain.TaskStatusComplete
		c.text(runID, task.ID, fmt.Sprintf("=== %s ===", task.DisplayName))
		c.text(runID, task.ID, fmt.Sprintf("Total duration: %s", transcribe.FormatTimestamp(out.audioSeconds)))
		c.text(runID, task.ID, fmt.Sprintf("Number of segments: %d", out.segments))
		c.text(runID, task.ID, fmt.Sprintf("Saved to: %s", out.outputPath))
		c.text(runID, task.ID, out.body)
		c.publish(Event{RunID: runID, TaskID: task.ID, Type: EventTypeStatus,
			Message: fmt.Sprintf("Saved transcription to: %s", out.outputPath)})
		c.setStatus(runID, task, domain.TaskStatusComplete, "", out.outputPath)
		c.publish(Event{RunID: runID, TaskID: task.ID, TaskName: task.DisplayName, Type: EventTypeResult,
			TaskStatus: domain.TaskStatusComplete, OutputPath: out.outputPath})
	}

	c.queue.MarkCompleted()
	c.publishProgress(runID, c.queue.Progress())

	outcome.FinishedAt = c.now()
	if c.recorder != nil {
		if err := c.recorder.Record(context.WithoutCancel(ctx), outcome); err != nil {
			c.logger.Warn("record outcome", zap.String("task_id", task.ID), zap.Error(err))
		}
	}
}

// runPipeline performs read check, probe, model load, transcription, render
// and write. Panics are converted to a TranscriptionError.
func (c *Controller) runPipeline(ctx context.Context, runID string, task domain.AudioTask) (out pipelineOutcome) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("task panicked", zap.String("path", task.Path), zap.Any("panic", r))
			out = pipelineOutcome{err: transcribe.NewTaskError(transcribe.KindTranscription, task.Path, fmt.Sprintf("unexpected failure: %v", r), nil)}
		}
	}()

	outputPath := media.TranscriptPath(task.Path)
	if c.opts.SkipExisting {
		if _, err := c.stat(outputPath); err == nil {
			return pipelineOutcome{skipped: true, outputPath: outputPath}
		}
	}

	if err := c.readable(task.Path); err != nil {
		return pipelineOutcome{err: transcribe.NewTaskError(transcribe.KindFileNotAccessible, task.Path, "file is missing or unreadable", err)}
	}

	seconds, err := c.prober.Duration(ctx, task.Path)
	if err != nil {
		taskErr := transcribe.NewTaskError(transcribe.KindInvalidAudio, task.Path, "cannot determine audio duration", err)
		var probeErr *media.ProbeError
		if errors.As(err, &probeErr) {
			taskErr.CommandLog = probeErr.CommandLog
		}
		return pipelineOutcome{err: taskErr}
	}
	out.audioSeconds = seconds
	c.text(runID, task.ID, fmt.Sprintf("Audio length: %d minutes", int(seconds/60)))

	model, _, err := c.cache.Ensure(ctx, string(task.Model), c.opts.Device, c.opts.ComputeType, c.modelProgress(runID, task.ID))
	if err != nil {
		var taskErr *transcribe.TaskError
		if errors.As(err, &taskErr) && taskErr.Path == "" {
			taskErr.Path = task.Path
		}
		out.err = err
		return out
	}

	c.text(runID, task.ID, fmt.Sprintf("Using %s model", task.Model))
	c.text(runID, task.ID, fmt.Sprintf("Estimated processing time: %d minutes",
		EstimateMinutes(seconds, c.opts.SpeedFactor(string(task.Model)))))
	c.text(runID, task.ID, "Transcription in progress...")

	result, err := c.transcriber.Transcribe(ctx, model, task.Path)
	if err != nil {
		if transcribe.KindOf(err) == "" {
			err = transcribe.NewTaskError(transcribe.KindTranscription, task.Path, "transcription failed", err)
		}
		out.err = err
		return out
	}
	c.text(runID, task.ID, "Transcription complete!")
	c.text(runID, task.ID, fmt.Sprintf("Found %d segments of speech", len(result.Segments)))
	if task.IncludeTimestamps {
		c.text(runID, task.ID, "Formatting output with timestamps...")
	}

	body := transcribe.Render(result.Segments, task.IncludeTimestamps)
	if err := c.writeFile(outputPath, []byte(body), 0o644); err != nil {
		out.err = transcribe.NewTaskError(transcribe.KindIOWrite, task.Path, fmt.Sprintf("cannot write %s", outputPath), err)
		return out
	}

	out.outputPath = outputPath
	out.segments = len(result.Segments)
	out.body = body
	return out
}

// finish moves the run to its terminal status, resets counters and flags,
// and returns the manager to idle.
func (c *Controller) finish(runID string, final domain.RunStatus, fatal error, done chan struct{}) {
	c.mu.Lock()
	if c.manager.Current().Status != final {
		if err := c.manager.Transition(final); err != nil {
			c.logger.Warn("final transition", zap.String("run_id", runID), zap.Error(err))
		}
	}
	elapsed := c.manager.Elapsed()
	c.mu.Unlock()

	switch final {
	case domain.RunStatusDrained:
		c.publish(Event{RunID: runID, Type: EventTypeStatus, RunStatus: final, Elapsed: "done",
			Message: "All transcriptions complete!"})
	case domain.RunStatusStopped:
		c.publish(Event{RunID: runID, Type: EventTypeStatus, RunStatus: final, Elapsed: FormatElapsed(0),
			Message: "Transcription stopped"})
	default:
		c.logger.Error("run failed", zap.String("run_id", runID), zap.Error(fatal))
		c.text(runID, "", fmt.Sprintf("Error during processing: %v", fatal))
		c.publish(Event{RunID: runID, Type: EventTypeError, RunStatus: final, Elapsed: FormatElapsed(0),
			Message: fmt.Sprintf("Error: %v", fatal)})
	}

	c.queue.ResetCounters()
	c.publish(Event{RunID: runID, Type: EventTypeProgress, Percent: 0})

	c.logger.Info("run finished",
		zap.String("run_id", runID),
		zap.String("status", string(final)),
		zap.Duration("elapsed", elapsed),
	)

	c.mu.Lock()
	c.paused.Store(false)
	c.stopped.Store(false)
	c.manager.Reset()
	c.active = false
	c.publish(Event{RunID: runID, Type: EventTypeControls, RunStatus: final, Controls: controlsFor(domain.RunStatusIdle)})
	close(done)
	c.mu.Unlock()
}

func (c *Controller) modelProgress(runID, taskID string) transcribe.ProgressFunc {
	return func(spec transcribe.ModelSpec, percent float64, message string) {
		c.publish(Event{
			RunID:       runID,
			TaskID:      taskID,
			Type:        EventTypeModelDownload,
			ModelName:   spec.Name,
			Percent:     percent,
			Message:     message,
			ShowLoading: percent < 100,
		})
		if percent <= 0 || percent >= 100 {
			c.publish(Event{RunID: runID, TaskID: taskID, Type: EventTypeStatus, Message: message})
		}
	}
}

func (c *Controller) reportFailure(runID string, task domain.AudioTask, kind transcribe.ErrorKind, err error) {
	c.logger.Warn("task failed",
		zap.String("run_id", runID),
		zap.String("path", task.Path),
		zap.String("kind", string(kind)),
		zap.Error(err),
	)

	event := Event{
		RunID:     runID,
		TaskID:    task.ID,
		TaskName:  task.DisplayName,
		Type:      EventTypeError,
		ErrorKind: string(kind),
		Message:   err.Error(),
	}
	var taskErr *transcribe.TaskError
	if errors.As(err, &taskErr) && taskErr.CommandLog.Command != "" {
		event.Command = taskErr.CommandLog.Command
		event.Args = taskErr.CommandLog.Args
		event.ExitCode = taskErr.CommandLog.ExitCode
		event.Stderr = taskErr.CommandLog.Stderr
	}

	c.text(runID, task.ID, fmt.Sprintf("=== %s ===\n%s", task.DisplayName, err.Error()))
	c.publish(event)
	c.publish(Event{RunID: runID, TaskID: task.ID, Type: EventTypeStatus, Message: err.Error()})
}

func (c *Controller) setStatus(runID string, task domain.AudioTask, status domain.TaskStatus, message, outputPath string) domain.AudioTask {
	updated, err := c.queue.SetStatus(task.ID, status, message, outputPath)
	if err != nil {
		c.logger.Warn("set task status", zap.String("task_id", task.ID), zap.Error(err))
		task.Status = status
		task.Message = message
		task.OutputPath = outputPath
		updated = task
	}
	c.publishTask(runID, updated)
	return updated
}

func (c *Controller) text(runID, taskID, message string) {
	c.publish(Event{RunID: runID, TaskID: taskID, Type: EventTypeText, Message: message})
}

func (c *Controller) publishTask(runID string, task domain.AudioTask) {
	c.publish(Event{
		RunID:      runID,
		TaskID:     task.ID,
		TaskName:   task.DisplayName,
		Type:       EventTypeTaskStatus,
		TaskStatus: task.Status,
		Message:    task.Message,
		OutputPath: task.OutputPath,
	})
}

func (c *Controller) publishProgress(runID string, progress Progress) {
	c.publish(Event{
		RunID:     runID,
		Type:      EventTypeProgress,
		Percent:   progress.Percent(),
		Total:     progress.Total,
		Completed: progress.Completed,
		Elapsed:   FormatElapsed(c.manager.Elapsed()),
	})
}

func (c *Controller) publishControls(runID string, status domain.RunStatus) {
	controls := controlsFor(status)
	if c.opts.KeepAlive && status == domain.RunStatusRunning {
		controls.CanAdd = true
	}
	c.publish(Event{RunID: runID, Type: EventTypeControls, RunStatus: status, Controls: controls})
}

func (c *Controller) publish(event Event) {
	c.events.Publish(event)
}

// controlsFor maps a run status to the enabled user actions.
func controlsFor(status domain.RunStatus) *Controls {
	switch status {
	case domain.RunStatusRunning:
		return &Controls{CanPause: true, CanStop: true, PauseLabel: "Pause"}
	case domain.RunStatusPaused:
		return &Controls{CanAdd: true, CanPause: true, CanStop: true, PauseLabel: "Resume"}
	default:
		return &Controls{CanAdd: true, CanStart: true, PauseLabel: "Pause"}
	}
}

// checkReadable opens path to confirm it still exists and is a regular file.
func checkReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}
