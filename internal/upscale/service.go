package upscale

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/imgup/upscaler/internal/imaging"
	"github.com/imgup/upscaler/internal/model"
)

// Progress milestones emitted during a run. The binary prints its own
// percentages interleaved with Vulkan noise, so progress is coarse by design.
const (
	ProgressPrepared = 10
	ProgressStarted  = 30
	ProgressFinished = 90
	ProgressComplete = 100
)

const (
	// OutputSuffix is appended to the input file name for the produced file.
	OutputSuffix = "_upscaled"

	TaskIDPrefix = "upscale-"
)

// Service runs upscale tasks against the external binary.
type Service struct {
	exePath   string
	workDir   string // temp dir receiving intermediate outputs
	current   *model.UpscaleTask
	currentMu sync.RWMutex
	callbacks Callbacks
}

// NewService creates an upscale service writing intermediate files to workDir.
// exePath may be empty; StartUpscale and CheckAvailability report the miss.
func NewService(exePath, workDir string) *Service {
	return &Service{
		exePath: exePath,
		workDir: workDir,
	}
}

// SetCallbacks sets the signal callbacks for subsequent tasks.
func (s *Service) SetCallbacks(cb Callbacks) {
	s.callbacks = cb
}

// ExecutablePath returns the located binary path, empty when missing.
func (s *Service) ExecutablePath() string {
	s.currentMu.RLock()
	defer s.currentMu.RUnlock()
	return s.exePath
}

// SetExecutablePath swaps the binary used for subsequent tasks, e.g. after
// the user points the settings dialog at a different location.
func (s *Service) SetExecutablePath(path string) {
	s.currentMu.Lock()
	s.exePath = path
	s.currentMu.Unlock()
}

// CheckAvailability verifies the binary exists and responds to -h.
func (s *Service) CheckAvailability() error {
	exe := s.ExecutablePath()
	if exe == "" {
		return fmt.Errorf("Real-ESRGAN NCNN executable not found")
	}
	return ProbeExecutable(exe)
}

// CurrentTask returns the most recent task, if any.
func (s *Service) CurrentTask() (*model.UpscaleTask, bool) {
	s.currentMu.RLock()
	defer s.currentMu.RUnlock()
	return s.current, s.current != nil
}

// BuildArgs constructs the documented command line: exactly six flag/value
// pairs in fixed order.
func BuildArgs(inputPath, outputPath, modelName string, scale int, format string) []string {
	return []string{
		"-i", inputPath,
		"-o", outputPath,
		"-n", modelName,
		"-s", strconv.Itoa(scale),
		"-f", format,
	}
}

// OutputPath returns the intermediate output location for an input file.
func (s *Service) OutputPath(inputPath, format string) string {
	base := filepath.Base(inputPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(s.workDir, name+OutputSuffix+"."+format)
}

// StartUpscale launches a run in the background. Only one task may be active
// at a time; the UI enforces this by disabling the trigger button, the
// service enforces it again here.
func (s *Service) StartUpscale(inputPath, modelName string, scale int, format string) (*model.UpscaleTask, error) {
	s.currentMu.Lock()
	defer s.currentMu.Unlock()

	if s.exePath == "" {
		return nil, fmt.Errorf("Real-ESRGAN NCNN executable not found")
	}

	if s.current != nil && s.current.Status.IsActive() {
		return nil, fmt.Errorf("an upscale task is already running")
	}

	task := &model.UpscaleTask{
		ID:         generateTaskID(),
		InputPath:  inputPath,
		OutputPath: s.OutputPath(inputPath, format),
		ModelName:  modelName,
		Scale:      scale,
		Format:     format,
		Status:     model.TaskStatusStarting,
		StartedAt:  time.Now(),
	}
	if w, h, err := imaging.Dimensions(inputPath); err == nil {
		task.InputWidth, task.InputHeight = w, h
	}
	s.current = task

	go s.run(task, s.exePath)

	return task, nil
}

// run executes the binary and emits the four progress milestones plus either
// a result or a single error.
func (s *Service) run(task *model.UpscaleTask, exePath string) {
	s.setProgress(task, ProgressPrepared)

	args := BuildArgs(task.InputPath, task.OutputPath, task.ModelName, task.Scale, task.Format)
	cmd := exec.Command(exePath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	s.currentMu.Lock()
	task.Status = model.TaskStatusRunning
	s.currentMu.Unlock()
	s.setProgress(task, ProgressStarted)

	slog.Info("Starting upscale", "task", task.ID, "exe", exePath, "args", strings.Join(args, " "))
	err := cmd.Run()

	if err != nil {
		msg := fmt.Sprintf("NCNN process failed: %v", err)
		if errText := strings.TrimSpace(stderr.String()); errText != "" {
			msg = fmt.Sprintf("NCNN process failed: %s", errText)
		}
		s.setTaskError(task, msg)
		return
	}

	s.currentMu.Lock()
	if w, h, derr := imaging.Dimensions(task.OutputPath); derr == nil {
		task.OutputWidth, task.OutputHeight = w, h
	}
	s.currentMu.Unlock()

	s.setProgress(task, ProgressFinished)
	s.notifyResult(task.OutputPath)

	s.currentMu.Lock()
	task.Status = model.TaskStatusCompleted
	task.Progress = 1.0
	task.Percent = ProgressComplete
	task.FinishedAt = time.Now()
	s.currentMu.Unlock()

	s.setProgress(task, ProgressComplete)
	slog.Info("Upscale completed", "task", task.ID, "output", task.OutputPath, "elapsed", task.Elapsed())
	s.notifyDone()
}

// setProgress updates the task counters and fires OnProgress.
func (s *Service) setProgress(task *model.UpscaleTask, percent int) {
	s.currentMu.Lock()
	task.Percent = percent
	task.Progress = float64(percent) / 100.0
	s.currentMu.Unlock()

	if s.callbacks.OnProgress != nil {
		s.callbacks.OnProgress(percent)
	}
}

// setTaskError moves the task to the error state and fires OnError then
// OnDone. Exactly one error signal is emitted per failed run.
func (s *Service) setTaskError(task *model.UpscaleTask, msg string) {
	s.currentMu.Lock()
	task.Status = model.TaskStatusError
	task.LastError = msg
	task.FinishedAt = time.Now()
	s.currentMu.Unlock()

	slog.Error("Upscale failed", "task", task.ID, "error", msg)

	if s.callbacks.OnError != nil {
		s.callbacks.OnError(msg)
	}
	s.notifyDone()
}

func (s *Service) notifyResult(outputPath string) {
	if s.callbacks.OnResult != nil {
		s.callbacks.OnResult(outputPath)
	}
}

func (s *Service) notifyDone() {
	if s.callbacks.OnDone != nil {
		s.callbacks.OnDone()
	}
}

// Cleanup removes the temp working directory with all intermediate outputs.
// Called on application shutdown.
func (s *Service) Cleanup() error {
	if s.workDir == "" {
		return nil
	}
	return os.RemoveAll(s.workDir)
}

// generateTaskID generates a unique task ID using UUID v7 so IDs sort
// chronologically in logs.
func generateTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(TaskIDPrefix+"%d", time.Now().UnixNano())
	}
	return TaskIDPrefix + id.String()
}
