package transcribe

import (
	"context"
	"fmt"
)

// Segment is a contiguous span of recognized speech.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Info carries backend metadata about one transcription.
type Info struct {
	Language string  `json:"language,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	Model    string  `json:"model,omitempty"`
}

// Result is produced once per task and discarded after rendering.
type Result struct {
	Text     string
	Segments []Segment
	Info     Info
}

// ModelSpec identifies one loaded model.
type ModelSpec struct {
	Name        string `json:"name"`
	Device      string `json:"device"`
	ComputeType string `json:"computeType"`
}

// String formats the triple for logs and events.
func (s ModelSpec) String() string {
	if s.ComputeType == "" {
		return fmt.Sprintf("%s (%s)", s.Name, s.Device)
	}
	return fmt.Sprintf("%s (%s/%s)", s.Name, s.Device, s.ComputeType)
}

// Model is a loaded model handle owned by the ModelCache.
type Model interface {
	Spec() ModelSpec
	Close() error
}

// Loader loads model weights for a spec. Progress is reported as 0..100.
type Loader interface {
	Load(ctx context.Context, spec ModelSpec, progress func(percent float64, message string)) (Model, error)
}

// Transcriber runs speech recognition on one file with a loaded model.
type Transcriber interface {
	Transcribe(ctx context.Context, model Model, path string) (Result, error)
}
