package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"whisper-batch/internal/bootstrap"
	"whisper-batch/internal/config"
	"whisper-batch/internal/domain"
	"whisper-batch/internal/jobs"
	"whisper-batch/internal/logging"
	"whisper-batch/internal/media"
)

var (
	profilePath  string
	historyPath  string
	verbose      bool
	modelName    string
	noTimestamps bool
	device       string
	computeType  string
	skipExisting bool
)

var rootCmd = &cobra.Command{
	Use:   "whisper-batch <directory>",
	Short: "Batch transcription of audio files with whisper",
	Long: `whisper-batch transcribes every audio file in a directory and writes
<name>_transcription.txt next to each source file.

Supported formats: .wav .mp3 .mpeg .mp4 .m4a

Examples:
  whisper-batch ./recordings
  whisper-batch ./recordings --model small --no-timestamps
  whisper-batch watch ./inbox
  whisper-batch doctor`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBatch,
}

// Execute runs the root command and prints top-level errors.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	return err
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&profilePath, "profile", "", "profile file (TOML or YAML), default $"+config.ProfileEnvVar)
	flags.StringVar(&historyPath, "history", "", "record task outcomes in this SQLite database")
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug logging and command details")
	flags.StringVarP(&modelName, "model", "m", string(domain.DefaultModel), "whisper model: tiny, base, small, medium, large-v3")
	flags.BoolVar(&noTimestamps, "no-timestamps", false, "write plain text without [start --> end] prefixes")
	flags.StringVar(&device, "device", "", "compute device: auto, cpu, cuda, metal (default from settings)")
	flags.StringVar(&computeType, "compute-type", "", "compute type override, e.g. int8")
	flags.BoolVar(&skipExisting, "skip-existing", false, "skip files that already have a transcript")
}

func printError(err error) {
	fmt.Fprintln(os.Stderr, newPrinter(os.Stderr).errorLine("Error: "+err.Error()))
}

// serviceConfig collects everything the subcommands need to build the stack.
type serviceConfig struct {
	keepAlive bool
	history   string
}

func newServices(cfg serviceConfig) (*bootstrap.Services, error) {
	profile, err := config.ResolveProfile(profilePath)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	level := profile.LogLevel
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(level, true, term.IsTerminal(int(os.Stderr.Fd())))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	settings, err := config.NewJSONStore(bootstrap.DefaultSettingsPath()).Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if device != "" {
		settings.Device = device
	}
	if computeType != "" {
		settings.ComputeType = computeType
	}

	return bootstrap.NewServices(bootstrap.ServiceOptions{
		Profile:      profile,
		Settings:     settings,
		Logger:       logger,
		HistoryPath:  cfg.history,
		SkipExisting: skipExisting,
		KeepAlive:    cfg.keepAlive,
	})
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	model, err := domain.ParseModelID(modelName)
	if err != nil {
		return err
	}
	files, err := media.ScanDirectory(dir)
	if err != nil {
		return err
	}

	out := newPrinter(cmd.OutOrStdout())
	if len(files) == 0 {
		out.status(fmt.Sprintf("No audio files found in %s", dir))
		return nil
	}

	svc, err := newServices(serviceConfig{history: historyPath})
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			svc.Logger.Warn("close services", zap.Error(err))
		}
		_ = svc.Logger.Sync()
	}()

	events, cancel := svc.Controller.Events().Subscribe()
	defer cancel()

	out.status(fmt.Sprintf("Found %d audio files in %s", len(files), dir))
	for _, path := range files {
		if _, err := svc.Controller.Submit(path, model, !noTimestamps); err != nil {
			return err
		}
	}

	ctx, stop := signalContext()
	defer stop()

	if err := svc.Controller.Start(ctx); err != nil {
		if errors.Is(err, jobs.ErrNoPendingTasks) {
			return nil
		}
		return err
	}

	final := follow(events, out)
	out.summary(svc.Controller.Tasks())
	if final == domain.RunStatusFailed {
		return fmt.Errorf("run failed")
	}
	return nil
}

// follow prints events until the run's terminal controls event.
func follow(events <-chan jobs.Event, out *printer) domain.RunStatus {
	for event := range events {
		out.event(event)
		if status, ok := runEnd(event); ok {
			return status
		}
	}
	return domain.RunStatusIdle
}

func runEnd(event jobs.Event) (domain.RunStatus, bool) {
	if event.Type != jobs.EventTypeControls {
		return "", false
	}
	switch event.RunStatus {
	case domain.RunStatusDrained, domain.RunStatusStopped, domain.RunStatusFailed:
		return event.RunStatus, true
	}
	return "", false
}
