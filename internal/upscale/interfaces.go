package upscale

import (
	"github.com/imgup/upscaler/internal/model"
)

// Callbacks groups the signals a running task emits. All callbacks are
// optional and are invoked from the worker goroutine; UI code must hop to
// the main thread itself (fyne.Do).
type Callbacks struct {
	// OnProgress receives the coarse milestones 10, 30, 90 and 100.
	OnProgress func(percent int)
	// OnResult receives the output path after a successful run.
	OnResult func(outputPath string)
	// OnError receives a single human-readable message on failure.
	OnError func(message string)
	// OnDone fires after the task reaches a finished state, success or not.
	OnDone func()
}

// Upscaler defines the interface for the upscale service.
type Upscaler interface {
	SetCallbacks(cb Callbacks)
	StartUpscale(inputPath, modelName string, scale int, format string) (*model.UpscaleTask, error)
	CurrentTask() (*model.UpscaleTask, bool)
	ExecutablePath() string
	SetExecutablePath(path string)
	CheckAvailability() error
	Cleanup() error
}
