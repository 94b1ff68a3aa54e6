package cmd

import (
	"bytes"
	"strings"
	"testing"

	"whisper-batch/internal/domain"
	"whisper-batch/internal/jobs"
)

// TestPrinterPlainOutput checks non-terminal writers get unstyled lines.
func TestPrinterPlainOutput(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf)

	p.event(jobs.Event{Type: jobs.EventTypeStatus, Message: "All transcriptions complete!", Elapsed: "done"})
	p.event(jobs.Event{Type: jobs.EventTypeProgress, Total: 4, Completed: 1, Percent: 25})
	p.event(jobs.Event{Type: jobs.EventTypeTaskStatus, TaskName: "b.mp3", TaskStatus: domain.TaskStatusError, Message: "TranscriptionError"})
	p.event(jobs.Event{Type: jobs.EventTypeTaskStatus, TaskName: "a.wav", TaskStatus: domain.TaskStatusPending})
	p.event(jobs.Event{Type: jobs.EventTypeControls, RunStatus: domain.RunStatusDrained})

	got := buf.String()
	if strings.Contains(got, "\x1b[") {
		t.Fatalf("unexpected ANSI codes: %q", got)
	}
	for _, want := range []string{
		"All transcriptions complete!  [done]\n",
		"Progress [#######-----------------------] 1/4 (25%)\n",
		"[Error] b.mp3: TranscriptionError\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "a.wav") {
		t.Fatalf("pending rows should not print:\n%s", got)
	}
}

// TestPrinterSummary checks per-status totals.
func TestPrinterSummary(t *testing.T) {
	var buf bytes.Buffer
	newPrinter(&buf).summary([]domain.AudioTask{
		{Status: domain.TaskStatusComplete},
		{Status: domain.TaskStatusComplete},
		{Status: domain.TaskStatusError},
	})
	if got := buf.String(); got != "Summary: 2 complete, 1 error\n" {
		t.Fatalf("summary = %q", got)
	}
}

// TestRunEnd checks only terminal controls events end a follow loop.
func TestRunEnd(t *testing.T) {
	cases := []struct {
		event jobs.Event
		end   bool
	}{
		{jobs.Event{Type: jobs.EventTypeControls, RunStatus: domain.RunStatusDrained}, true},
		{jobs.Event{Type: jobs.EventTypeControls, RunStatus: domain.RunStatusStopped}, true},
		{jobs.Event{Type: jobs.EventTypeControls, RunStatus: domain.RunStatusFailed}, true},
		{jobs.Event{Type: jobs.EventTypeControls, RunStatus: domain.RunStatusRunning}, false},
		{jobs.Event{Type: jobs.EventTypeStatus, RunStatus: domain.RunStatusDrained}, false},
	}
	for _, tc := range cases {
		if _, end := runEnd(tc.event); end != tc.end {
			t.Fatalf("runEnd(%+v) = %v, want %v", tc.event, end, tc.end)
		}
	}
}

// TestFollowReturnsFinalStatus checks the batch loop stops at the run end.
func TestFollowReturnsFinalStatus(t *testing.T) {
	events := make(chan jobs.Event, 3)
	events <- jobs.Event{Type: jobs.EventTypeText, Message: "Transcription in progress..."}
	events <- jobs.Event{Type: jobs.EventTypeControls, RunStatus: domain.RunStatusStopped}
	events <- jobs.Event{Type: jobs.EventTypeText, Message: "late"}

	var buf bytes.Buffer
	if got := follow(events, newPrinter(&buf)); got != domain.RunStatusStopped {
		t.Fatalf("follow = %s, want stopped", got)
	}
	if strings.Contains(buf.String(), "late") {
		t.Fatalf("follow read past run end:\n%s", buf.String())
	}
}
