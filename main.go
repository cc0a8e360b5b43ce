package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/imgup/upscaler/internal/config"
	"github.com/imgup/upscaler/internal/logging"
	"github.com/imgup/upscaler/internal/platform"
	"github.com/imgup/upscaler/internal/ui"
	"github.com/imgup/upscaler/internal/upscale"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.imgup.upscaler"
	AppName = "Image Upscaler"

	modelConfigName = "models.json"
)

func main() {
	logger, closeLog, err := logging.Setup(logging.DefaultConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	logger.Info("Starting", "app", AppName, "version", version, "os", runtime.GOOS)

	// Create new Fyne app
	myApp := app.NewWithID(AppID)

	// Apply dark theme
	myApp.Settings().SetTheme(ui.NewDarkTheme())

	windowTitle := fmt.Sprintf("%s v%s", ui.AppTitle, version)
	myWindow := myApp.NewWindow(windowTitle)
	myWindow.Resize(fyne.NewSize(ui.WindowWidth, ui.WindowHeight))

	// Initialize services
	settings := config.NewSettings(myApp)

	workDir, err := os.MkdirTemp("", "img-upscaler-*")
	if err != nil {
		slog.Error("Failed to create work directory", "error", err)
		os.Exit(1)
	}
	slog.Info("Work directory created", "path", workDir)

	watcher := startModelWatcher()
	registry := watcher.Snapshot

	exePath := locateExecutable(settings, registry())
	upscaleSvc := upscale.NewService(exePath, workDir)

	// Create and setup UI
	rootUI := ui.NewRootUI(myWindow, myApp, upscaleSvc, settings, registry)
	watcher.SetOnReload(func(_ *config.Registry, err error) {
		if err != nil {
			slog.Warn("Keeping previous model config", "error", err)
			return
		}
		rootUI.RefreshModels()
	})

	myWindow.SetCloseIntercept(func() {
		if err := upscaleSvc.Cleanup(); err != nil {
			slog.Warn("Failed to remove work directory", "path", workDir, "error", err)
		}
		watcher.Close()
		if err := closeLog(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log: %v\n", err)
		}
		myWindow.Close()
	})

	// Show and run
	myWindow.ShowAndRun()
}

// startModelWatcher loads models.json next to the binary, materializing the
// built-in registry on first run so the file exists to watch and edit.
func startModelWatcher() *config.Watcher {
	path := filepath.Join(platform.AppDir(), modelConfigName)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := config.SaveRegistry(path, config.DefaultRegistry()); err != nil {
			slog.Warn("Failed to write default model config", "path", path, "error", err)
		} else {
			slog.Info("Default model config written", "path", path)
		}
	}

	watcher, err := config.NewWatcher(path, nil)
	if err != nil {
		slog.Error("Model config unusable, using built-in models", "path", path, "error", err)
		return config.NewStaticWatcher(config.DefaultRegistry())
	}
	return watcher
}

// locateExecutable resolves the NCNN binary: the user override wins, then the
// registry's per-platform path, then the standard search locations.
func locateExecutable(settings *config.Settings, reg *config.Registry) string {
	override := settings.GetExecutablePath()
	if override == "" {
		if rel := reg.ExecutableFor(runtime.GOOS); rel != "" {
			override = filepath.Join(platform.AppDir(), filepath.FromSlash(rel))
		}
	}

	exePath, err := upscale.LocateExecutable(override)
	if err != nil {
		slog.Warn("NCNN executable not found", "error", err)
		return ""
	}
	slog.Info("NCNN executable located", "path", exePath)
	return exePath
}
