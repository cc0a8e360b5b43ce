package upscale

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/imgup/upscaler/internal/model"
)

func TestBuildArgs(t *testing.T) {
	models := []string{"realesrgan-x4plus", "realesrgan-x4plus-anime", "realesrnet-x4plus"}
	scales := []int{2, 4}
	formats := []string{"jpg", "png", "webp"}

	for _, m := range models {
		for _, s := range scales {
			for _, f := range formats {
				args := BuildArgs("/in/cat.png", "/out/cat_upscaled."+f, m, s, f)

				if len(args) != 12 {
					t.Fatalf("BuildArgs returned %d elements, expected 12 (six flag/value pairs)", len(args))
				}

				expected := []string{
					"-i", "/in/cat.png",
					"-o", "/out/cat_upscaled." + f,
					"-n", m,
					"-s", map[int]string{2: "2", 4: "4"}[s],
					"-f", f,
				}
				if !reflect.DeepEqual(args, expected) {
					t.Errorf("BuildArgs(model=%s scale=%d format=%s) = %v, expected %v", m, s, f, args, expected)
				}
			}
		}
	}
}

func TestOutputPath(t *testing.T) {
	service := NewService("", "/tmp/work")

	tests := []struct {
		input    string
		format   string
		expected string
	}{
		{"/photos/cat.png", "jpg", "/tmp/work/cat_upscaled.jpg"},
		{"/photos/portrait.jpeg", "png", "/tmp/work/portrait_upscaled.png"},
		{"scan.tiff", "webp", "/tmp/work/scan_upscaled.webp"},
	}

	for _, test := range tests {
		result := service.OutputPath(test.input, test.format)
		if result != test.expected {
			t.Errorf("OutputPath(%s, %s) = %s, expected %s", test.input, test.format, result, test.expected)
		}
	}
}

func TestStartUpscale_NoExecutable(t *testing.T) {
	service := NewService("", t.TempDir())

	_, err := service.StartUpscale("/photos/cat.png", "realesrgan-x4plus", 4, "png")
	if err == nil {
		t.Error("Expected error when executable is missing, got nil")
	}
}

// callbackRecorder collects emitted signals for assertions.
type callbackRecorder struct {
	mu       sync.Mutex
	progress []int
	results  []string
	errors   []string
	done     chan struct{}
}

func newCallbackRecorder() *callbackRecorder {
	return &callbackRecorder{done: make(chan struct{}, 1)}
}

func (r *callbackRecorder) callbacks() Callbacks {
	return Callbacks{
		OnProgress: func(p int) {
			r.mu.Lock()
			r.progress = append(r.progress, p)
			r.mu.Unlock()
		},
		OnResult: func(path string) {
			r.mu.Lock()
			r.results = append(r.results, path)
			r.mu.Unlock()
		},
		OnError: func(msg string) {
			r.mu.Lock()
			r.errors = append(r.errors, msg)
			r.mu.Unlock()
		},
		OnDone: func() {
			r.done <- struct{}{}
		},
	}
}

func (r *callbackRecorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(10 * time.Second):
		t.Fatal("Timed out waiting for task completion")
	}
}

// writeFakeExe writes a shell script standing in for the upscaler binary.
func writeFakeExe(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake executable scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fake-upscaler")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("Failed to write fake executable: %v", err)
	}
	return path
}

func TestStartUpscale_Success(t *testing.T) {
	exe := writeFakeExe(t, "exit 0")
	service := NewService(exe, t.TempDir())

	rec := newCallbackRecorder()
	service.SetCallbacks(rec.callbacks())

	task, err := service.StartUpscale("/photos/cat.png", "realesrgan-x4plus", 4, "png")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	rec.wait(t)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	expectedProgress := []int{ProgressPrepared, ProgressStarted, ProgressFinished, ProgressComplete}
	if !reflect.DeepEqual(rec.progress, expectedProgress) {
		t.Errorf("Progress milestones = %v, expected %v", rec.progress, expectedProgress)
	}

	if len(rec.results) != 1 {
		t.Fatalf("Expected exactly 1 result signal, got %d", len(rec.results))
	}
	if rec.results[0] != task.OutputPath {
		t.Errorf("Result path = %s, expected %s", rec.results[0], task.OutputPath)
	}

	if len(rec.errors) != 0 {
		t.Errorf("Expected 0 error signals, got %d: %v", len(rec.errors), rec.errors)
	}

	if task.Status != model.TaskStatusCompleted {
		t.Errorf("Task status = %s, expected %s", task.Status, model.TaskStatusCompleted)
	}
	if task.Percent != 100 {
		t.Errorf("Task percent = %d, expected 100", task.Percent)
	}
}

func TestStartUpscale_PopulatesDimensions(t *testing.T) {
	// The fake binary copies input to output ($2 and $4 of -i in -o out).
	exe := writeFakeExe(t, `cp "$2" "$4"`)
	service := NewService(exe, t.TempDir())

	input := filepath.Join(t.TempDir(), "cat.png")
	f, err := os.Create(input)
	if err != nil {
		t.Fatalf("Failed to create input: %v", err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 20, 10))); err != nil {
		t.Fatalf("Failed to encode input: %v", err)
	}
	f.Close()

	rec := newCallbackRecorder()
	service.SetCallbacks(rec.callbacks())

	task, err := service.StartUpscale(input, "realesrgan-x4plus", 4, "png")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	rec.wait(t)

	if task.InputWidth != 20 || task.InputHeight != 10 {
		t.Errorf("Input dims = %dx%d, expected 20x10", task.InputWidth, task.InputHeight)
	}
	if task.OutputWidth != 20 || task.OutputHeight != 10 {
		t.Errorf("Output dims = %dx%d, expected 20x10", task.OutputWidth, task.OutputHeight)
	}
	if task.GetDimensionsString() != "20x10" {
		t.Errorf("GetDimensionsString() = %s, expected 20x10", task.GetDimensionsString())
	}
	if task.GetOutputDimensionsString() != "20x10" {
		t.Errorf("GetOutputDimensionsString() = %s, expected 20x10", task.GetOutputDimensionsString())
	}
}

func TestStartUpscale_NonZeroExit(t *testing.T) {
	exe := writeFakeExe(t, "echo 'vkQueueSubmit failed' >&2; exit 1")
	service := NewService(exe, t.TempDir())

	rec := newCallbackRecorder()
	service.SetCallbacks(rec.callbacks())

	task, err := service.StartUpscale("/photos/cat.png", "realesrgan-x4plus", 4, "jpg")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	rec.wait(t)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if len(rec.errors) != 1 {
		t.Fatalf("Expected exactly 1 error signal, got %d: %v", len(rec.errors), rec.errors)
	}
	if len(rec.results) != 0 {
		t.Errorf("Expected 0 result signals after failure, got %d", len(rec.results))
	}
	if task.Status != model.TaskStatusError {
		t.Errorf("Task status = %s, expected %s", task.Status, model.TaskStatusError)
	}
	if task.LastError == "" {
		t.Error("Expected LastError to carry the failure message")
	}
}

func TestStartUpscale_SingleActiveTask(t *testing.T) {
	exe := writeFakeExe(t, "sleep 2")
	service := NewService(exe, t.TempDir())

	rec := newCallbackRecorder()
	service.SetCallbacks(rec.callbacks())

	if _, err := service.StartUpscale("/photos/a.png", "realesrgan-x4plus", 4, "png"); err != nil {
		t.Fatalf("Expected no error for first task, got %v", err)
	}

	if _, err := service.StartUpscale("/photos/b.png", "realesrgan-x4plus", 4, "png"); err == nil {
		t.Error("Expected error when starting a second task while one is running")
	}

	rec.wait(t)
}

func TestCleanup_RemovesWorkDir(t *testing.T) {
	workDir := filepath.Join(t.TempDir(), "img-upscaler-work")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		t.Fatalf("Failed to create work dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(workDir, "cat_upscaled.png"), []byte("data"), 0o644); err != nil {
		t.Fatalf("Failed to write intermediate file: %v", err)
	}

	service := NewService("", workDir)
	if err := service.Cleanup(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, err := os.Stat(workDir); !os.IsNotExist(err) {
		t.Error("Expected work dir to be removed on cleanup")
	}
}

func TestCurrentTask(t *testing.T) {
	service := NewService("", t.TempDir())

	if _, ok := service.CurrentTask(); ok {
		t.Error("Expected no current task on a fresh service")
	}
}
