package upscale

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/imgup/upscaler/internal/platform"
)

// Probe settings
const (
	ProbeFlag    = "-h"
	ProbeTimeout = 10 * time.Second
	UsageMarker  = "Usage:"
)

// ExecutableNames lists the known file names of the upscaler binary, checked
// in order.
var ExecutableNames = []string{
	"realesrgan-ncnn-vulkan.exe",
	"realesrgan-ncnn-vulkan",
	"realesrgan-ncnn.exe",
	"realesrgan-ncnn",
}

// SearchSubdirs lists directories checked relative to the application
// directory, in order. The empty entry is the application directory itself.
var SearchSubdirs = []string{
	"",
	"bin",
	"ncnn",
	"realesrgan-ncnn",
	"realesrgan-ncnn-vulkan",
}

// LocateExecutable finds the upscaler binary. The override path, when set,
// wins if it points at an existing file; a stale override falls through to
// the scan so a default-config path never masks a binary sitting in a search
// directory or on PATH. Returns an error when nothing is found.
func LocateExecutable(override string) (string, error) {
	if override != "" {
		if info, err := os.Stat(override); err == nil && !info.IsDir() {
			return override, nil
		}
	}

	base := platform.AppDir()
	for _, sub := range SearchSubdirs {
		dir := base
		if sub != "" {
			dir = filepath.Join(base, sub)
		}
		for _, name := range ExecutableNames {
			full := filepath.Join(dir, name)
			if info, err := os.Stat(full); err == nil && !info.IsDir() {
				return full, nil
			}
		}
	}

	for _, name := range ExecutableNames {
		if full, err := exec.LookPath(name); err == nil {
			return full, nil
		}
	}

	return "", fmt.Errorf("Real-ESRGAN NCNN executable not found")
}

// ProbeExecutable runs the binary with -h to verify it responds. A zero exit
// code or a usage banner on either stream counts as working.
func ProbeExecutable(path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), ProbeTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, ProbeFlag)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if strings.Contains(stdout.String(), UsageMarker) || strings.Contains(stderr.String(), UsageMarker) {
		return nil
	}
	return fmt.Errorf("executable found but not responding: %w", err)
}
