package domain

// TaskStatus tracks the lifecycle of one queued audio file.
type TaskStatus string

const (
	TaskStatusPending       TaskStatus = "pending"
	TaskStatusProcessing    TaskStatus = "processing"
	TaskStatusComplete      TaskStatus = "complete"
	TaskStatusError         TaskStatus = "error"
	TaskStatusNotAccessible TaskStatus = "not_accessible"
	TaskStatusInvalid       TaskStatus = "invalid"
	TaskStatusSkipped       TaskStatus = "skipped"
)

// IsTerminal reports whether no further transition is expected for the status.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusComplete, TaskStatusError, TaskStatusNotAccessible, TaskStatusInvalid, TaskStatusSkipped:
		return true
	default:
		return false
	}
}

// Label returns the capitalized form shown next to file names.
func (s TaskStatus) Label() string {
	switch s {
	case TaskStatusPending:
		return "Pending"
	case TaskStatusProcessing:
		return "Processing"
	case TaskStatusComplete:
		return "Complete"
	case TaskStatusError:
		return "Error"
	case TaskStatusNotAccessible:
		return "Not accessible"
	case TaskStatusInvalid:
		return "Invalid"
	case TaskStatusSkipped:
		return "Skipped"
	default:
		return string(s)
	}
}

// AudioTask is one file accepted into the queue with its own preferences.
type AudioTask struct {
	ID                string     `json:"id"`
	DisplayName       string     `json:"displayName"`
	Path              string     `json:"path"`
	Model             ModelID    `json:"model"`
	IncludeTimestamps bool       `json:"includeTimestamps"`
	Status            TaskStatus `json:"status"`
	Message           string     `json:"message,omitempty"`
	OutputPath        string     `json:"outputPath,omitempty"`
}

// Settings contains user-selectable runtime configuration.
type Settings struct {
	Model             ModelID `json:"model"`
	Device            string  `json:"device"`
	ComputeType       string  `json:"computeType"`
	IncludeTimestamps bool    `json:"includeTimestamps"`
	ModelDir          string  `json:"modelDir"`
	Language          string  `json:"language"`
}
