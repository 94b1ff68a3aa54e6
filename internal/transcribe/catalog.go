package transcribe

import (
	"os"
	"path/filepath"

	"github.com/samber/lo"

	"whisper-batch/internal/domain"
)

var whisperModelCatalog = []domain.WhisperModelOption{
	{
		ID:          domain.ModelTiny,
		Name:        "Tiny",
		FileName:    "ggml-tiny.bin",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-tiny.bin",
		SizeLabel:   "~75 MB",
		MemoryLabel: "~1 GB",
		Description: "Quick transcriptions, short audio, clear speech.",
	},
	{
		ID:          domain.ModelBase,
		Name:        "Base",
		FileName:    "ggml-base.bin",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-base.bin",
		SizeLabel:   "~142 MB",
		MemoryLabel: "~1 GB",
		Description: "General purpose, good balance of speed and accuracy.",
	},
	{
		ID:          domain.ModelSmall,
		Name:        "Small",
		FileName:    "ggml-small.bin",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-small.bin",
		SizeLabel:   "~466 MB",
		MemoryLabel: "~2 GB",
		Description: "Multiple languages, moderate accuracy.",
	},
	{
		ID:          domain.ModelMedium,
		Name:        "Medium",
		FileName:    "ggml-medium.bin",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-medium.bin",
		SizeLabel:   "~1.5 GB",
		MemoryLabel: "~5 GB",
		Description: "Complex audio, multiple speakers, high accuracy.",
	},
	{
		ID:          domain.ModelLargeV3,
		Name:        "Large v3",
		FileName:    "ggml-large-v3.bin",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-large-v3.bin",
		SizeLabel:   "~3 GB",
		MemoryLabel: "~10 GB",
		Description: "Professional use, maximum accuracy.",
	},
}

// Catalog returns the built-in model presets with download markers for modelDir.
func Catalog(modelDir string) []domain.WhisperModelOption {
	models := make([]domain.WhisperModelOption, len(whisperModelCatalog))
	copy(models, whisperModelCatalog)
	if modelDir != "" {
		markDownloadedModels(models, []string{modelDir})
	}
	return models
}

// LookupModel finds one catalog entry by id.
func LookupModel(id string) (domain.WhisperModelOption, bool) {
	return lo.Find(whisperModelCatalog, func(m domain.WhisperModelOption) bool {
		return string(m.ID) == id
	})
}

func markDownloadedModels(models []domain.WhisperModelOption, modelDirs []string) {
	for i := range models {
		for _, dir := range modelDirs {
			candidate := filepath.Join(dir, models[i].FileName)
			info, err := os.Stat(candidate)
			if err != nil || info.IsDir() {
				continue
			}
			models[i].Downloaded = true
			models[i].LocalPath = candidate
			break
		}
	}
}
