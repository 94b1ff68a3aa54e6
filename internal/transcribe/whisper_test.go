package transcribe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"whisper-batch/internal/media"
)

// fakeRunner simulates command execution order and outcomes.
type fakeRunner struct {
	run func(ctx context.Context, name string, args ...string) (media.CommandResult, error)
}

// Run delegates to injected behavior.
func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (media.CommandResult, error) {
	if f.run == nil {
		return media.CommandResult{}, nil
	}
	return f.run(ctx, name, args...)
}

const sampleWhisperJSON = `{
  "result": {"language": "en"},
  "transcription": [
    {"offsets": {"from": 0, "to": 2500}, "text": " Hello world."},
    {"offsets": {"from": 2500, "to": 2600}, "text": "   "},
    {"offsets": {"from": 2600, "to": 5100}, "text": " Second line. "}
  ]
}`

// TestWhisperTranscriberSuccess checks the full happy path and cleanup.
func TestWhisperTranscriberSuccess(t *testing.T) {
	root := t.TempDir()
	inputPath := filepath.Join(root, "meeting.mp3")
	mustWriteFile(t, inputPath, "media")

	call := 0
	var whisperArgs []string
	var tempDir string
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (media.CommandResult, error) {
			call++
			switch call {
			case 1:
				if name != "ffmpeg-custom" {
					t.Fatalf("command 1 name = %q, want ffmpeg-custom", name)
				}
				outPath := args[len(args)-1]
				tempDir = filepath.Dir(outPath)
				mustWriteFile(t, outPath, "wav")
				return media.CommandResult{}, nil
			case 2:
				if name != "whisper-custom" {
					t.Fatalf("command 2 name = %q, want whisper-custom", name)
				}
				whisperArgs = append([]string{}, args...)
				mustWriteFile(t, argValue(args, "-of")+".json", sampleWhisperJSON)
				return media.CommandResult{}, nil
			default:
				t.Fatalf("unexpected command call: %d", call)
				return media.CommandResult{}, nil
			}
		},
	}

	tr := NewWhisperCPPTranscriberForTests("ffmpeg-custom", "whisper-custom", "auto", runner, os.MkdirTemp, os.RemoveAll, zaptest.NewLogger(t))
	model := &whisperModel{spec: ModelSpec{Name: "base", Device: "cpu"}, path: "/models/ggml-base.bin"}
	result, err := tr.Transcribe(context.Background(), model, inputPath)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if len(result.Segments) != 2 {
		t.Fatalf("segments = %+v, want 2", result.Segments)
	}
	if result.Segments[1].Start != 2.6 || result.Segments[1].End != 5.1 {
		t.Fatalf("second segment = %+v", result.Segments[1])
	}
	if result.Text != "Hello world. Second line." {
		t.Fatalf("text = %q", result.Text)
	}
	if result.Info.Language != "en" || result.Info.Model != "base" {
		t.Fatalf("info = %+v", result.Info)
	}
	if hasArg(whisperArgs, "-l") {
		t.Fatalf("auto language should not pass -l, args=%v", whisperArgs)
	}
	if !hasArg(whisperArgs, "-ng") {
		t.Fatalf("cpu device should pass -ng, args=%v", whisperArgs)
	}
	if _, err := os.Stat(tempDir); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected temp dir cleanup, stat err = %v", err)
	}
}

// TestWhisperTranscriberFFmpegFailure checks conversion error path.
func TestWhisperTranscriberFFmpegFailure(t *testing.T) {
	var cleaned string
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (media.CommandResult, error) {
			return media.CommandResult{Stderr: "ffmpeg failed", ExitCode: 1}, errors.New("exit status 1")
		},
	}

	tr := NewWhisperCPPTranscriberForTests("ffmpeg", "whisper-cli", "auto", runner, os.MkdirTemp,
		func(path string) error {
			cleaned = path
			return os.RemoveAll(path)
		}, nil)

	model := &whisperModel{spec: ModelSpec{Name: "base", Device: "auto"}, path: "/m.bin"}
	_, err := tr.Transcribe(context.Background(), model, "/in/clip.wav")

	var taskErr *TaskError
	if !errors.As(err, &taskErr) {
		t.Fatalf("error type = %T, want *TaskError", err)
	}
	if taskErr.Kind != KindTranscription {
		t.Fatalf("kind = %s, want %s", taskErr.Kind, KindTranscription)
	}
	if taskErr.CommandLog.Command != "ffmpeg" || taskErr.CommandLog.ExitCode != 1 {
		t.Fatalf("command log = %+v", taskErr.CommandLog)
	}
	if strings.TrimSpace(cleaned) == "" {
		t.Fatal("expected temporary directory cleanup")
	}
}

// TestWhisperTranscriberMissingOutput checks the missing JSON path.
func TestWhisperTranscriberMissingOutput(t *testing.T) {
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (media.CommandResult, error) {
			if name == "ffmpeg" {
				mustWriteFile(t, args[len(args)-1], "wav")
			}
			return media.CommandResult{}, nil
		},
	}

	tr := NewWhisperCPPTranscriberForTests("ffmpeg", "whisper-cli", "de", runner, os.MkdirTemp, os.RemoveAll, nil)
	model := &whisperModel{spec: ModelSpec{Name: "base", Device: "cuda"}, path: "/m.bin"}
	_, err := tr.Transcribe(context.Background(), model, "/in/clip.wav")
	if KindOf(err) != KindTranscription {
		t.Fatalf("kind = %q, want %q", KindOf(err), KindTranscription)
	}
}

// TestWhisperLoaderUsesExistingFile checks no download when weights exist.
func TestWhisperLoaderUsesExistingFile(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "ggml-small.bin"), "weights")

	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected download request: %s", r.URL)
		return nil, nil
	})}
	l := NewWhisperCPPLoaderForTests(dir, client)
	model, err := l.Load(context.Background(), ModelSpec{Name: "small", Device: "cpu"}, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if model.(*whisperModel).Path() != filepath.Join(dir, "ggml-small.bin") {
		t.Fatalf("path = %q", model.(*whisperModel).Path())
	}
}

// TestWhisperLoaderRejectsBadInput checks unknown models and devices.
func TestWhisperLoaderRejectsBadInput(t *testing.T) {
	l := NewWhisperCPPLoaderForTests(t.TempDir(), http.DefaultClient)
	if _, err := l.Load(context.Background(), ModelSpec{Name: "huge", Device: "cpu"}, nil); err == nil {
		t.Fatal("expected unknown model error")
	}
	if _, err := l.Load(context.Background(), ModelSpec{Name: "tiny", Device: "tpu"}, nil); err == nil {
		t.Fatal("expected unsupported device error")
	}
}

// TestDownloadURLToFileReportsProgress checks streaming download and progress.
func TestDownloadURLToFileReportsProgress(t *testing.T) {
	payload := strings.Repeat("w", 4096)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "4096")
		_, _ = w.Write([]byte(payload))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "models", "ggml-tiny.bin")
	var last float64
	err := downloadURLToFile(context.Background(), server.Client(), dest, server.URL, func(p float64) { last = p })
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != payload {
		t.Fatalf("downloaded content mismatch, err=%v", err)
	}
	if last != 100 {
		t.Fatalf("last progress = %v, want 100", last)
	}
	if _, err := os.Stat(dest + ".download"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temp file should be gone, stat err = %v", err)
	}
}

// TestDownloadURLToFileHTTPError checks status handling.
func TestDownloadURLToFileHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "ggml-tiny.bin")
	if err := downloadURLToFile(context.Background(), server.Client(), dest, server.URL, nil); err == nil {
		t.Fatal("expected HTTP status error")
	}
}

// TestBuildWhisperArgsFixedLanguage verifies language flag for fixed mode.
func TestBuildWhisperArgsFixedLanguage(t *testing.T) {
	args := buildWhisperArgs("/m.bin", "/audio.wav", "/out/base", "ru", "auto")
	if got := argValue(args, "-l"); got != "ru" {
		t.Fatalf("language arg = %q, want ru", got)
	}
	if !hasArg(args, "-oj") || hasArg(args, "-ng") {
		t.Fatalf("unexpected args: %v", args)
	}
}

// TestCatalogMarksDownloaded checks local model detection.
func TestCatalogMarksDownloaded(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "ggml-base.bin"), "weights")

	models := Catalog(dir)
	if len(models) != 5 {
		t.Fatalf("catalog size = %d, want 5", len(models))
	}
	for _, m := range models {
		if (m.ID == "base") != m.Downloaded {
			t.Fatalf("model %s downloaded = %v", m.ID, m.Downloaded)
		}
	}
	if _, ok := LookupModel("large-v3"); !ok {
		t.Fatal("expected large-v3 in catalog")
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// mustWriteFile creates parent directory and writes file content.
func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir parent: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}

// argValue returns value for key-style CLI args.
func argValue(args []string, key string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == key {
			return args[i+1]
		}
	}
	return ""
}

// hasArg reports whether args include the target flag.
func hasArg(args []string, key string) bool {
	for _, arg := range args {
		if arg == key {
			return true
		}
	}
	return false
}
