package model

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// UpscaleTask represents a single run of the external upscaler binary.
type UpscaleTask struct {
	ID         string
	InputPath  string
	OutputPath string
	ModelName  string
	Scale      int    // 2 or 4
	Format     string // jpg, png or webp
	Status     TaskStatus
	Progress   float64 // 0.0 to 1.0
	Percent    int     // 0 to 100
	LastError  string  // last error message if any
	StartedAt  time.Time
	FinishedAt time.Time

	// Dimensions filled in after decode, 0 when unknown
	InputWidth   int
	InputHeight  int
	OutputWidth  int
	OutputHeight int
}

// GetDisplayName returns the input file name without its extension,
// falling back to the raw input path.
func (ut *UpscaleTask) GetDisplayName() string {
	if ut.InputPath == "" {
		return ""
	}
	name := filepath.Base(ut.InputPath)
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	return name
}

// GetDimensionsString returns "WxH" for the input image, or "—" if unknown.
func (ut *UpscaleTask) GetDimensionsString() string {
	if ut.InputWidth <= 0 || ut.InputHeight <= 0 {
		return "—"
	}
	return fmt.Sprintf("%dx%d", ut.InputWidth, ut.InputHeight)
}

// GetOutputDimensionsString returns "WxH" for the output image, or "—" if unknown.
func (ut *UpscaleTask) GetOutputDimensionsString() string {
	if ut.OutputWidth <= 0 || ut.OutputHeight <= 0 {
		return "—"
	}
	return fmt.Sprintf("%dx%d", ut.OutputWidth, ut.OutputHeight)
}

// Elapsed returns the task duration. For unfinished tasks it measures
// against the current time.
func (ut *UpscaleTask) Elapsed() time.Duration {
	if ut.StartedAt.IsZero() {
		return 0
	}
	if ut.FinishedAt.IsZero() {
		return time.Since(ut.StartedAt)
	}
	return ut.FinishedAt.Sub(ut.StartedAt)
}
