package transcribe

import (
	"errors"
	"fmt"

	"whisper-batch/internal/media"
)

// ErrorKind classifies per-task failures.
type ErrorKind string

const (
	KindFileNotAccessible ErrorKind = "FileNotAccessibleError"
	KindInvalidAudio      ErrorKind = "InvalidAudioError"
	KindModelLoad         ErrorKind = "ModelLoadError"
	KindTranscription     ErrorKind = "TranscriptionError"
	KindIOWrite           ErrorKind = "IOWriteError"
)

// TaskError is a kind-aware failure with optional command context.
type TaskError struct {
	Kind       ErrorKind        `json:"kind"`
	Path       string           `json:"path,omitempty"`
	Message    string           `json:"message"`
	CommandLog media.CommandLog `json:"commandLog"`
	Err        error            `json:"-"`
}

// Error formats task failures for logs and events.
func (e *TaskError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.CommandLog.Command != "" {
		msg = fmt.Sprintf("%s (cmd=%s exit=%d)", msg, e.CommandLog.Command, e.CommandLog.ExitCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes underlying error for errors.Is / errors.As.
func (e *TaskError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewTaskError builds a TaskError of the given kind.
func NewTaskError(kind ErrorKind, path, message string, err error) *TaskError {
	return &TaskError{Kind: kind, Path: path, Message: message, Err: err}
}

// KindOf returns the kind of the first TaskError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var taskErr *TaskError
	if errors.As(err, &taskErr) {
		return taskErr.Kind
	}
	return ""
}
