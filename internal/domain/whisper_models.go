package domain

import "fmt"

// ModelID names one whisper model size.
type ModelID string

const (
	ModelTiny    ModelID = "tiny"
	ModelBase    ModelID = "base"
	ModelSmall   ModelID = "small"
	ModelMedium  ModelID = "medium"
	ModelLargeV3 ModelID = "large-v3"
)

// DefaultModel is used when neither flags nor settings pick one.
const DefaultModel = ModelLargeV3

// ModelIDs lists the selectable models from smallest to largest.
var ModelIDs = []ModelID{ModelTiny, ModelBase, ModelSmall, ModelMedium, ModelLargeV3}

// ParseModelID validates a user supplied model name.
func ParseModelID(raw string) (ModelID, error) {
	for _, id := range ModelIDs {
		if string(id) == raw {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown model %q (choose from tiny, base, small, medium, large-v3)", raw)
}

// WhisperModelOption describes one downloadable model preset.
type WhisperModelOption struct {
	ID          ModelID `json:"id"`
	Name        string  `json:"name"`
	FileName    string  `json:"fileName"`
	URL         string  `json:"url"`
	SizeLabel   string  `json:"sizeLabel,omitempty"`
	MemoryLabel string  `json:"memoryLabel,omitempty"`
	Description string  `json:"description,omitempty"`
	Downloaded  bool    `json:"downloaded"`
	LocalPath   string  `json:"localPath,omitempty"`
}
