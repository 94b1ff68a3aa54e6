package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"whisper-batch/internal/domain"
	"whisper-batch/internal/jobs"
)

var (
	colorPrimary = lipgloss.Color("#8B5CF6")
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
)

var (
	statusStyle  = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

const progressWidth = 30

// printer renders controller events for a terminal or a plain log.
type printer struct {
	w    io.Writer
	tty  bool
	live bool
}

func newPrinter(w io.Writer) *printer {
	p := &printer{w: w}
	if f, ok := w.(*os.File); ok {
		p.tty = term.IsTerminal(int(f.Fd()))
	}
	return p
}

func (p *printer) style(s lipgloss.Style, text string) string {
	if !p.tty {
		return text
	}
	return s.Render(text)
}

// line ends an in-place progress line before printing a regular one.
func (p *printer) line(text string) {
	if p.live {
		fmt.Fprintln(p.w)
		p.live = false
	}
	fmt.Fprintln(p.w, text)
}

func (p *printer) status(text string) {
	p.line(p.style(statusStyle, text))
}

func (p *printer) errorLine(text string) string {
	return p.style(errorStyle, text)
}

func (p *printer) event(event jobs.Event) {
	switch event.Type {
	case jobs.EventTypeText:
		p.line(event.Message)
	case jobs.EventTypeStatus:
		text := event.Message
		if event.Elapsed != "" {
			text += p.style(mutedStyle, "  ["+event.Elapsed+"]")
		}
		p.line(p.style(statusStyle, text))
	case jobs.EventTypeTaskStatus:
		p.taskStatus(event)
	case jobs.EventTypeProgress:
		p.progress(event)
	case jobs.EventTypeModelDownload:
		p.modelDownload(event)
	case jobs.EventTypeError:
		p.line(p.style(errorStyle, event.Message))
		if verbose && event.Command != "" {
			p.line(p.style(mutedStyle, fmt.Sprintf("  %s %s (exit %d)", event.Command, strings.Join(event.Args, " "), event.ExitCode)))
			if stderr := strings.TrimSpace(event.Stderr); stderr != "" {
				p.line(p.style(mutedStyle, "  "+stderr))
			}
		}
	}
}

func (p *printer) taskStatus(event jobs.Event) {
	if event.TaskStatus == domain.TaskStatusPending {
		return
	}
	label := fmt.Sprintf("[%s] %s", event.TaskStatus.Label(), event.TaskName)
	if event.Message != "" && event.TaskStatus != domain.TaskStatusComplete {
		label += ": " + event.Message
	}
	p.line(p.style(statusStyleFor(event.TaskStatus), label))
}

func statusStyleFor(status domain.TaskStatus) lipgloss.Style {
	switch status {
	case domain.TaskStatusComplete:
		return successStyle
	case domain.TaskStatusSkipped, domain.TaskStatusProcessing:
		return mutedStyle
	case domain.TaskStatusError, domain.TaskStatusNotAccessible, domain.TaskStatusInvalid:
		return errorStyle
	default:
		return warningStyle
	}
}

func (p *printer) progress(event jobs.Event) {
	if event.Total == 0 {
		return
	}
	text := fmt.Sprintf("Progress %s %d/%d (%.0f%%)", bar(event.Percent), event.Completed, event.Total, event.Percent)
	if !p.tty {
		p.line(text)
		return
	}
	fmt.Fprintf(p.w, "\r%s", p.style(successStyle, text))
	p.live = true
}

func (p *printer) modelDownload(event jobs.Event) {
	if !p.tty {
		if event.Percent == 0 || event.Percent >= 100 {
			p.line(event.Message)
		}
		return
	}
	fmt.Fprintf(p.w, "\r%s %s", p.style(warningStyle, bar(event.Percent)), event.Message)
	p.live = event.Percent < 100
	if !p.live {
		fmt.Fprintln(p.w)
	}
}

// summary prints per-status totals after a run.
func (p *printer) summary(tasks []domain.AudioTask) {
	counts := make(map[domain.TaskStatus]int)
	for _, task := range tasks {
		counts[task.Status]++
	}

	parts := make([]string, 0, len(counts))
	for _, status := range []domain.TaskStatus{
		domain.TaskStatusComplete,
		domain.TaskStatusSkipped,
		domain.TaskStatusError,
		domain.TaskStatusNotAccessible,
		domain.TaskStatusInvalid,
		domain.TaskStatusPending,
	} {
		if n := counts[status]; n > 0 {
			parts = append(parts, p.style(statusStyleFor(status), fmt.Sprintf("%d %s", n, strings.ToLower(status.Label()))))
		}
	}
	if len(parts) > 0 {
		p.line("Summary: " + strings.Join(parts, ", "))
	}
}

func bar(percent float64) string {
	filled := int(percent / 100 * progressWidth)
	if filled > progressWidth {
		filled = progressWidth
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", progressWidth-filled) + "]"
}

func modelDownloadEvent(model string, percent float64, message string) jobs.Event {
	return jobs.Event{
		Type:        jobs.EventTypeModelDownload,
		ModelName:   model,
		Percent:     percent,
		Message:     message,
		ShowLoading: percent < 100,
	}
}
