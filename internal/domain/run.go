package domain

import "time"

// RunStatus tracks the batch controller lifecycle.
type RunStatus string

const (
	RunStatusIdle    RunStatus = "idle"
	RunStatusRunning RunStatus = "running"
	RunStatusPaused  RunStatus = "paused"
	RunStatusStopped RunStatus = "stopped"
	RunStatusDrained RunStatus = "drained"
	RunStatusFailed  RunStatus = "failed"
)

// Run stores the current run identity and lifecycle status.
type Run struct {
	ID     string    `json:"id"`
	Status RunStatus `json:"status"`
}

// TaskOutcome is the persisted record of one finished task.
type TaskOutcome struct {
	RunID        string     `json:"runId"`
	TaskID       string     `json:"taskId"`
	Path         string     `json:"path"`
	Model        ModelID    `json:"model"`
	Timestamps   bool       `json:"timestamps"`
	Status       TaskStatus `json:"status"`
	ErrorKind    string     `json:"errorKind,omitempty"`
	Message      string     `json:"message,omitempty"`
	OutputPath   string     `json:"outputPath,omitempty"`
	AudioSeconds float64    `json:"audioSeconds"`
	StartedAt    time.Time  `json:"startedAt"`
	FinishedAt   time.Time  `json:"finishedAt"`
}
