package media

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"whisper-batch/internal/logging"
)

// ErrInvalidDuration is returned when the probe reports no usable play length.
var ErrInvalidDuration = errors.New("invalid audio duration")

// ProbeError reports a failed ffprobe invocation.
type ProbeError struct {
	Path       string
	CommandLog CommandLog
	Err        error
}

// Error formats probe failures for logs and events.
func (e *ProbeError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("probe %s: %v (cmd=%s exit=%d)", e.Path, e.Err, e.CommandLog.Command, e.CommandLog.ExitCode)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *ProbeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Prober reads container durations with ffprobe.
type Prober struct {
	ffprobePath string
	timeout     time.Duration
	runner      CommandRunner
	logger      *zap.Logger
}

// NewProber constructs a prober using the real process runner.
func NewProber(ffprobePath string, timeout time.Duration, logger *zap.Logger) *Prober {
	return NewProberForTests(ffprobePath, timeout, ExecRunner{}, logger)
}

// NewProberForTests constructs a prober with an injected runner.
func NewProberForTests(ffprobePath string, timeout time.Duration, runner CommandRunner, logger *zap.Logger) *Prober {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Prober{
		ffprobePath: ffprobePath,
		timeout:     timeout,
		runner:      runner,
		logger:      logging.OrNop(logger),
	}
}

// Duration returns the container play length of path in seconds.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	args := buildProbeArgs(path)
	res, runErr := p.runner.Run(ctx, p.ffprobePath, args...)
	log := NewCommandLog(p.ffprobePath, args, res)
	p.logger.Debug("ffprobe finished",
		zap.String("path", path),
		zap.Int("exit_code", res.ExitCode),
	)

	if runErr != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			runErr = fmt.Errorf("timed out after %s: %w", p.timeout, runErr)
		}
		return 0, &ProbeError{Path: path, CommandLog: log, Err: runErr}
	}

	seconds, err := parseDuration(res.Stdout)
	if err != nil {
		return 0, &ProbeError{Path: path, CommandLog: log, Err: err}
	}
	return seconds, nil
}

// parseDuration reads the single floating-point value ffprobe prints.
func parseDuration(stdout string) (float64, error) {
	raw := strings.TrimSpace(stdout)
	if raw == "" || raw == "N/A" {
		return 0, fmt.Errorf("%w: no duration reported", ErrInvalidDuration)
	}
	if i := strings.IndexAny(raw, "\r\n"); i >= 0 {
		raw = strings.TrimSpace(raw[:i])
	}

	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: unparsable value %q", ErrInvalidDuration, raw)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("%w: %v seconds", ErrInvalidDuration, seconds)
	}
	return seconds, nil
}

// buildProbeArgs selects container duration only.
func buildProbeArgs(path string) []string {
	return []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
}
