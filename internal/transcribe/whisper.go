package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"whisper-batch/internal/logging"
	"whisper-batch/internal/media"
)

var supportedDevices = map[string]bool{"auto": true, "cpu": true, "cuda": true, "metal": true}

// whisperModel is a resolved ggml weights file.
type whisperModel struct {
	spec ModelSpec
	path string
}

func (m *whisperModel) Spec() ModelSpec { return m.spec }

// Close is a no-op; whisper.cpp maps the weights per invocation.
func (m *whisperModel) Close() error { return nil }

// Path returns the weights file.
func (m *whisperModel) Path() string { return m.path }

// WhisperCPPLoader resolves ggml weights in a model directory, downloading
// catalog models that are missing.
type WhisperCPPLoader struct {
	modelDir string
	client   *http.Client
	stat     func(name string) (os.FileInfo, error)
	logger   *zap.Logger
}

// NewWhisperCPPLoader constructs a loader for modelDir.
func NewWhisperCPPLoader(modelDir string, logger *zap.Logger) *WhisperCPPLoader {
	return &WhisperCPPLoader{
		modelDir: modelDir,
		client:   http.DefaultClient,
		stat:     os.Stat,
		logger:   logging.OrNop(logger),
	}
}

// NewWhisperCPPLoaderForTests constructs a loader with an injected HTTP client.
func NewWhisperCPPLoaderForTests(modelDir string, client *http.Client) *WhisperCPPLoader {
	l := NewWhisperCPPLoader(modelDir, nil)
	l.client = client
	return l
}

// Load returns a handle for the model file, downloading it first when absent.
func (l *WhisperCPPLoader) Load(ctx context.Context, spec ModelSpec, progress func(percent float64, message string)) (Model, error) {
	if !supportedDevices[spec.Device] {
		return nil, fmt.Errorf("unsupported device %q", spec.Device)
	}

	option, ok := LookupModel(spec.Name)
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", spec.Name)
	}
	if strings.TrimSpace(l.modelDir) == "" {
		return nil, fmt.Errorf("model directory is not configured")
	}

	path := filepath.Join(l.modelDir, option.FileName)
	info, err := l.stat(path)
	if err == nil && !info.IsDir() {
		return &whisperModel{spec: spec, path: path}, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("check model file: %w", err)
	}

	l.logger.Info("downloading model", zap.String("model", spec.Name), zap.String("url", option.URL))
	if progress != nil {
		progress(0, fmt.Sprintf("Downloading %s model (%s). This is a one-time download stored at %s", option.Name, option.SizeLabel, path))
	}
	report := func(percent float64) {
		if progress != nil {
			progress(percent, fmt.Sprintf("Downloading %s model... %d%%", option.Name, int(percent)))
		}
	}
	if err := downloadURLToFile(ctx, l.client, path, option.URL, report); err != nil {
		return nil, fmt.Errorf("download model %s: %w", option.Name, err)
	}

	return &whisperModel{spec: spec, path: path}, nil
}

// WhisperCPPTranscriber converts input to 16 kHz mono WAV with ffmpeg and
// runs whisper.cpp with JSON output.
type WhisperCPPTranscriber struct {
	ffmpegPath  string
	whisperPath string
	language    string
	runner      media.CommandRunner
	mkdirTemp   func(dir, pattern string) (string, error)
	removeAll   func(path string) error
	readFile    func(name string) ([]byte, error)
	logger      *zap.Logger
}

// NewWhisperCPPTranscriber constructs the production transcriber.
func NewWhisperCPPTranscriber(ffmpegPath, whisperPath, language string, logger *zap.Logger) *WhisperCPPTranscriber {
	return NewWhisperCPPTranscriberForTests(ffmpegPath, whisperPath, language, media.ExecRunner{}, os.MkdirTemp, os.RemoveAll, logger)
}

// NewWhisperCPPTranscriberForTests constructs a transcriber with injectable dependencies.
func NewWhisperCPPTranscriberForTests(
	ffmpegPath string,
	whisperPath string,
	language string,
	runner media.CommandRunner,
	mkdirTemp func(dir, pattern string) (string, error),
	removeAll func(path string) error,
	logger *zap.Logger,
) *WhisperCPPTranscriber {
	return &WhisperCPPTranscriber{
		ffmpegPath:  ffmpegPath,
		whisperPath: whisperPath,
		language:    language,
		runner:      runner,
		mkdirTemp:   mkdirTemp,
		removeAll:   removeAll,
		readFile:    os.ReadFile,
		logger:      logging.OrNop(logger),
	}
}

// Transcribe runs preprocessing and recognition for one file.
func (t *WhisperCPPTranscriber) Transcribe(ctx context.Context, model Model, path string) (Result, error) {
	wm, ok := model.(*whisperModel)
	if !ok {
		return Result{}, NewTaskError(KindTranscription, path, fmt.Sprintf("unsupported model handle %T", model), nil)
	}

	tempDir, err := t.mkdirTemp("", "whisper-batch-*")
	if err != nil {
		return Result{}, NewTaskError(KindTranscription, path, "failed to create temporary workspace", err)
	}
	defer func() {
		if err := t.removeAll(tempDir); err != nil {
			t.logger.Warn("cleanup temporary files", zap.String("dir", tempDir), zap.Error(err))
		}
	}()

	wavPath := filepath.Join(tempDir, "preprocessed-16k-mono.wav")
	args := buildFFmpegArgs(path, wavPath)
	res, runErr := t.runner.Run(ctx, t.ffmpegPath, args...)
	log := media.NewCommandLog(t.ffmpegPath, args, res)
	t.logger.Debug("ffmpeg finished", zap.String("path", path), zap.Int("exit_code", res.ExitCode))
	if runErr != nil {
		return Result{}, &TaskError{
			Kind:       KindTranscription,
			Path:       path,
			Message:    "ffmpeg audio conversion failed",
			CommandLog: log,
			Err:        runErr,
		}
	}

	outBase := filepath.Join(tempDir, "transcript")
	whisperArgs := buildWhisperArgs(wm.path, wavPath, outBase, t.language, wm.spec.Device)
	res, runErr = t.runner.Run(ctx, t.whisperPath, whisperArgs...)
	whisperLog := media.NewCommandLog(t.whisperPath, whisperArgs, res)
	t.logger.Debug("whisper.cpp finished", zap.String("path", path), zap.Int("exit_code", res.ExitCode))
	if runErr != nil {
		return Result{}, &TaskError{
			Kind:       KindTranscription,
			Path:       path,
			Message:    "whisper.cpp transcription failed",
			CommandLog: whisperLog,
			Err:        runErr,
		}
	}

	data, err := t.readFile(outBase + ".json")
	if err != nil {
		return Result{}, &TaskError{
			Kind:       KindTranscription,
			Path:       path,
			Message:    "whisper.cpp completed but transcript .json file is missing",
			CommandLog: whisperLog,
			Err:        err,
		}
	}

	result, err := parseWhisperJSON(data)
	if err != nil {
		return Result{}, NewTaskError(KindTranscription, path, "cannot parse whisper.cpp output", err)
	}
	result.Info.Model = wm.spec.Name
	return result, nil
}

// whisperOutput mirrors the whisper.cpp -oj document.
type whisperOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// parseWhisperJSON converts millisecond offsets into ordered segments,
// dropping blank ones.
func parseWhisperJSON(data []byte) (Result, error) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return Result{}, err
	}

	segments := make([]Segment, 0, len(out.Transcription))
	for _, item := range out.Transcription {
		text := strings.TrimSpace(item.Text)
		if text == "" {
			continue
		}
		start := float64(item.Offsets.From) / 1000
		end := float64(item.Offsets.To) / 1000
		if end < start {
			end = start
		}
		segments = append(segments, Segment{Start: start, End: end, Text: text})
	}

	result := Result{
		Text:     RenderPlain(segments),
		Segments: segments,
		Info:     Info{Language: out.Result.Language},
	}
	if n := len(segments); n > 0 {
		result.Info.Duration = segments[n-1].End
	}
	return result, nil
}

// normalizeLanguage maps "auto" and empty language to no CLI override.
func normalizeLanguage(raw string) string {
	lang := strings.TrimSpace(raw)
	if lang == "" || strings.EqualFold(lang, "auto") {
		return ""
	}
	return lang
}

// buildFFmpegArgs builds preprocessing CLI args for mono 16k PCM WAV output.
func buildFFmpegArgs(inputPath, outPath string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", inputPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		outPath,
	}
}

// buildWhisperArgs builds whisper.cpp args for JSON transcript export.
func buildWhisperArgs(modelPath, audioPath, outBase, language, device string) []string {
	args := []string{
		"-m", modelPath,
		"-f", audioPath,
		"-of", outBase,
		"-oj",
	}

	if lang := normalizeLanguage(language); lang != "" {
		args = append(args, "-l", lang)
	}
	if device == "cpu" {
		args = append(args, "-ng")
	}

	return args
}
