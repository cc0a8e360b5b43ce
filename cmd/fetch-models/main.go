// Command fetch-models downloads the Real-ESRGAN NCNN release for the target
// platform, unpacks the executable and model weights next to the application
// and writes models.json describing them.
package main

import (
	"archive/zip"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/imgup/upscaler/internal/config"
	"github.com/imgup/upscaler/internal/platform"
)

const (
	releaseBaseURL = "https://github.com/xinntao/Real-ESRGAN/releases/download/v0.2.5.0/"

	defaultRetryDelay = 2 * time.Second
	defaultMaxRetries = 3
	downloadTimeout   = 5 * time.Minute
	markerFilename    = ".models-downloaded"
)

// releaseAssets maps a GOOS value to the release zip for that platform.
var releaseAssets = map[string]string{
	"windows": "realesrgan-ncnn-vulkan-20220424-windows.zip",
	"linux":   "realesrgan-ncnn-vulkan-20220424-ubuntu.zip",
	"darwin":  "realesrgan-ncnn-vulkan-20220424-macos.zip",
}

func main() {
	targetOS := flag.String("os", runtime.GOOS, "target platform (windows, linux, darwin)")
	dir := flag.String("dir", ".", "directory to install the executable and models into")
	force := flag.Bool("force", false, "redownload even when the marker file is present")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(*targetOS, *dir, *force); err != nil {
		slog.Error("Fetch failed", "error", err)
		os.Exit(1)
	}
}

func run(targetOS, dir string, force bool) error {
	asset, ok := releaseAssets[targetOS]
	if !ok {
		return fmt.Errorf("unsupported platform: %s", targetOS)
	}

	markerPath := filepath.Join(dir, markerFilename)
	markerContent := fmt.Sprintf("asset: %s\n", asset)

	if !force && markerMatches(markerPath, markerContent) {
		slog.Info("Models already downloaded and up-to-date (marker match), skipping", "dir", dir)
		return nil
	}

	for _, sub := range []string{"bin", "models"} {
		if err := platform.CreateDirectoryIfNotExists(filepath.Join(dir, sub)); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	zipPath, err := downloadWithRetries(releaseBaseURL+asset, asset)
	if err != nil {
		return err
	}
	defer os.Remove(zipPath)

	if err := extractRelease(zipPath, dir, targetOS); err != nil {
		return fmt.Errorf("failed to extract release: %w", err)
	}

	if err := writeRegistry(filepath.Join(dir, "models.json")); err != nil {
		return err
	}

	if err := os.WriteFile(markerPath, []byte(markerContent), 0o644); err != nil {
		slog.Warn("Failed to write download marker", "path", markerPath, "error", err)
	}

	slog.Info("Models installed", "dir", dir, "platform", targetOS)
	return nil
}

// writeRegistry records the unpacked models and executables so the
// application can find them.
func writeRegistry(path string) error {
	if err := config.SaveRegistry(path, config.DefaultRegistry()); err != nil {
		return err
	}
	slog.Info("Model config written", "path", path)
	return nil
}

// markerMatches reports whether the marker file exists with the expected
// content, meaning the same asset was already unpacked here.
func markerMatches(markerPath, expected string) bool {
	content, err := os.ReadFile(markerPath)
	if err != nil {
		return false
	}
	return string(content) == expected
}

// downloadWithRetries fetches the release zip into a temp file.
func downloadWithRetries(url, name string) (string, error) {
	client := &http.Client{Timeout: downloadTimeout}

	var lastErr error
	for attempt := 0; attempt < defaultMaxRetries; attempt++ {
		if attempt > 0 {
			slog.Info("Retrying download", "url", url, "attempt", attempt+1, "last_error", lastErr)
			time.Sleep(defaultRetryDelay)
		} else {
			slog.Info("Downloading release", "url", url)
		}

		path, err := downloadOnce(client, url, name)
		if err == nil {
			slog.Info("Release downloaded", "path", path, "attempt", attempt+1)
			return path, nil
		}
		lastErr = err
		slog.Error("Download attempt failed", "url", url, "attempt", attempt+1, "error", err)
	}

	return "", lastErr
}

func downloadOnce(client *http.Client, url, name string) (string, error) {
	resp, err := client.Get(url)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s for %s", resp.Status, url)
	}

	tmp, err := os.CreateTemp("", name+"-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write download: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	return tmp.Name(), nil
}

// extractRelease unpacks the executable into bin/ and the weight files into
// models/, flattening the zip's internal layout.
func extractRelease(zipPath, dir, targetOS string) error {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	exeName := "realesrgan-ncnn-vulkan"
	if targetOS == "windows" {
		exeName += ".exe"
	}

	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}

		base := filepath.Base(file.Name)
		var dest string
		var mode os.FileMode

		switch {
		case base == exeName:
			dest = filepath.Join(dir, "bin", base)
			mode = 0o755
		case strings.HasSuffix(base, ".param") || strings.HasSuffix(base, ".bin"):
			dest = filepath.Join(dir, "models", base)
			mode = 0o644
		default:
			continue
		}

		if err := extractFile(file, dest, mode); err != nil {
			return fmt.Errorf("failed to extract %s: %w", file.Name, err)
		}
		slog.Info("Extracted", "file", base, "dest", dest)
	}

	if _, err := os.Stat(filepath.Join(dir, "bin", exeName)); err != nil {
		return fmt.Errorf("release zip did not contain %s", exeName)
	}

	return nil
}

func extractFile(file *zip.File, dest string, mode os.FileMode) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
