package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"whisper-batch/internal/domain"
	"whisper-batch/internal/jobs"
	"whisper-batch/internal/watch"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <directory>",
	Short: "Transcribe files as they appear in a directory",
	Long: `Transcribes the audio files already in the directory, then keeps running
and queues every new audio file copied into it. Stop with Ctrl-C; the file
being transcribed is abandoned and later files stay untouched.

Examples:
  whisper-batch watch ./inbox
  whisper-batch watch ./inbox --model base --skip-existing`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 2*time.Second, "quiet period before a new file is queued")
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	model, err := domain.ParseModelID(modelName)
	if err != nil {
		return err
	}

	svc, err := newServices(serviceConfig{keepAlive: true, history: historyPath})
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			svc.Logger.Warn("close services", zap.Error(err))
		}
		_ = svc.Logger.Sync()
	}()

	ctx, stop := signalContext()
	defer stop()

	controller := svc.Controller
	events, cancel := controller.Events().Subscribe()
	defer cancel()

	submit := func(path string) error {
		task, err := controller.Submit(path, model, !noTimestamps)
		if err != nil {
			return err
		}
		if task.Status != domain.TaskStatusPending {
			return nil
		}
		if err := controller.Start(ctx); err != nil && !errors.Is(err, jobs.ErrRunActive) {
			return err
		}
		return nil
	}

	watcher := watch.New(dir, watchDebounce, submit, svc.Logger.Named("watch"))
	watchErr := make(chan error, 1)
	go func() { watchErr <- watcher.Run(ctx) }()

	out := newPrinter(cmd.OutOrStdout())
	out.status(fmt.Sprintf("Watching %s (Ctrl-C to stop)", dir))

	interrupted := ctx.Done()
	for {
		select {
		case err := <-watchErr:
			if err != nil {
				stopController(controller, svc.Logger)
				waitIdle(controller)
				return err
			}
			watchErr = nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			out.event(event)
			if _, end := runEnd(event); end && ctx.Err() != nil {
				out.summary(controller.Tasks())
				return nil
			}
		case <-interrupted:
			interrupted = nil
			if controller.State().Status == domain.RunStatusIdle {
				out.summary(controller.Tasks())
				return nil
			}
		}
	}
}

// stopController asks a running batch to stop. An idle controller is not
// an error.
func stopController(controller interface{ Stop() error }, logger *zap.Logger) {
	if err := controller.Stop(); err != nil && !errors.Is(err, jobs.ErrNoActiveRun) {
		logger.Warn("stop controller", zap.Error(err))
	}
}

func waitIdle(controller *jobs.Controller) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = controller.Wait(ctx)
}
