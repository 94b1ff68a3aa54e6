package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	goruntime "runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"whisper-batch/internal/domain"
	"whisper-batch/internal/logging"
	"whisper-batch/internal/media"
)

const installCommandTimeout = 45 * time.Minute

type installOption struct {
	manager  string
	commands [][]string
}

// Fixer applies remediations for failed diagnostic items.
type Fixer struct {
	services *Services
	runner   media.CommandRunner
	lookPath func(file string) (string, error)
	mkdirAll func(path string, perm os.FileMode) error
	goos     string
	logger   *zap.Logger
}

// NewFixer constructs a fixer that runs real package managers.
func NewFixer(services *Services) *Fixer {
	return NewFixerForTests(services, media.ExecRunner{}, exec.LookPath, os.MkdirAll, goruntime.GOOS)
}

// NewFixerForTests constructs a fixer with injectable process and filesystem hooks.
func NewFixerForTests(
	services *Services,
	runner media.CommandRunner,
	lookPath func(file string) (string, error),
	mkdirAll func(path string, perm os.FileMode) error,
	goos string,
) *Fixer {
	var logger *zap.Logger
	if services != nil {
		logger = services.Logger
	}
	return &Fixer{
		services: services,
		runner:   runner,
		lookPath: lookPath,
		mkdirAll: mkdirAll,
		goos:     goos,
		logger:   logging.OrNop(logger).Named("fix"),
	}
}

// Fix remediates one diagnostic item by id.
func (f *Fixer) Fix(ctx context.Context, itemID string, settings domain.Settings) error {
	id := strings.TrimSpace(itemID)
	if id == "" {
		return fmt.Errorf("diagnostic item id is required")
	}

	switch id {
	case "tool_ffmpeg", "tool_ffprobe":
		if err := f.install(ctx, installPlan(f.goos, "ffmpeg")); err != nil {
			return fmt.Errorf("install ffmpeg/ffprobe: %w", err)
		}
		return f.requireTools("ffmpeg", "ffprobe")
	case "tool_whisper":
		if err := f.install(ctx, installPlan(f.goos, "whisper")); err != nil {
			return fmt.Errorf("install whisper.cpp: %w", err)
		}
		return f.requireTools("whisper-cli")
	case "model_dir":
		if err := f.mkdirAll(settings.ModelDir, 0o755); err != nil {
			return fmt.Errorf("create model directory: %w", err)
		}
		return nil
	case "model_file":
		if f.services == nil {
			return fmt.Errorf("model loader is not configured")
		}
		_, err := f.services.DownloadModel(ctx, string(settings.Model), nil)
		return err
	default:
		return fmt.Errorf("unsupported diagnostic item id: %s", id)
	}
}

// InstallOrFixDiagnostic applies an OS-specific remediation for one failed
// diagnostic item and returns the refreshed report.
func (a *App) InstallOrFixDiagnostic(itemID string) (domain.DiagnosticReport, error) {
	if a.Store == nil {
		return domain.DiagnosticReport{}, fmt.Errorf("settings store is not configured")
	}
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}

	fixErr := NewFixer(a.services).Fix(context.Background(), itemID, settings)
	report := a.refreshDiagnosticsFromSettings(settings)
	return report, fixErr
}

// installPlan lists package manager commands to try in order for one tool.
func installPlan(goos, tool string) []installOption {
	pkg := map[string]string{"ffmpeg": "ffmpeg", "whisper": "whisper-cpp"}[tool]
	if pkg == "" {
		return nil
	}

	switch goos {
	case "windows":
		wingetID := map[string]string{"ffmpeg": "Gyan.FFmpeg", "whisper": "ggerganov.whisper.cpp"}[tool]
		return []installOption{
			{manager: "winget", commands: [][]string{{"winget", "install", "--id", wingetID, "--exact", "--accept-source-agreements", "--accept-package-agreements"}}},
			{manager: "scoop", commands: [][]string{{"scoop", "install", pkg}}},
		}
	case "darwin":
		return []installOption{
			{manager: "brew", commands: [][]string{{"brew", "install", pkg}}},
		}
	default:
		options := []installOption{}
		if tool == "ffmpeg" {
			options = append(options,
				installOption{manager: "apt-get", commands: [][]string{{"apt-get", "update"}, {"apt-get", "install", "-y", "ffmpeg"}}},
				installOption{manager: "dnf", commands: [][]string{{"dnf", "install", "-y", "ffmpeg"}}},
				installOption{manager: "pacman", commands: [][]string{{"pacman", "-Sy", "--noconfirm", "ffmpeg"}}},
			)
		} else {
			options = append(options,
				installOption{manager: "pacman", commands: [][]string{{"pacman", "-Sy", "--noconfirm", "whisper.cpp"}}},
			)
		}
		return append(options, installOption{manager: "brew", commands: [][]string{{"brew", "install", pkg}}})
	}
}

// install runs the first option whose package manager is available.
func (f *Fixer) install(ctx context.Context, options []installOption) error {
	if len(options) == 0 {
		return fmt.Errorf("no install commands configured for OS %s", f.goos)
	}

	failures := make([]string, 0, len(options))
	for _, option := range options {
		if _, err := f.lookPath(option.manager); err != nil {
			continue
		}
		err := f.runCommands(ctx, option)
		if err == nil {
			return nil
		}
		failures = append(failures, fmt.Sprintf("%s: %v", option.manager, err))
	}

	if len(failures) == 0 {
		return fmt.Errorf("no supported package manager found for %s", f.goos)
	}
	return fmt.Errorf("%s", strings.Join(failures, " | "))
}

func (f *Fixer) runCommands(ctx context.Context, option installOption) error {
	for _, command := range option.commands {
		if f.goos == "linux" && requiresElevation(option.manager) {
			if _, err := f.lookPath("sudo"); err == nil {
				command = append([]string{"sudo", "-n"}, command...)
			}
		}

		runCtx, cancel := context.WithTimeout(ctx, installCommandTimeout)
		res, err := f.runner.Run(runCtx, command[0], command[1:]...)
		cancel()
		f.logger.Info("install command",
			zap.String("command", strings.Join(command, " ")),
			zap.Int("exit_code", res.ExitCode),
		)
		if err != nil {
			stderr := strings.TrimSpace(res.Stderr)
			if len(stderr) > 500 {
				stderr = stderr[:500] + "..."
			}
			if stderr == "" {
				return fmt.Errorf("%s failed: %w", strings.Join(command, " "), err)
			}
			return fmt.Errorf("%s failed: %w (%s)", strings.Join(command, " "), err, stderr)
		}
	}
	return nil
}

func (f *Fixer) requireTools(names ...string) error {
	missing := make([]string, 0, len(names))
	for _, name := range names {
		if _, err := f.lookPath(name); err != nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing tools on PATH: %s", strings.Join(missing, ", "))
	}
	return nil
}

func requiresElevation(manager string) bool {
	switch manager {
	case "apt-get", "dnf", "pacman":
		return true
	default:
		return false
	}
}
