package ui

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/imgup/upscaler/internal/config"
	"github.com/imgup/upscaler/internal/imaging"
	"github.com/imgup/upscaler/internal/platform"
	"github.com/imgup/upscaler/internal/upscale"
)

// RegistryProvider returns the current model registry snapshot.
type RegistryProvider func() *config.Registry

// RootUI represents the main window structure
type RootUI struct {
	window     fyne.Window
	app        fyne.App
	upscaleSvc upscale.Upscaler
	settings   *config.Settings
	registry   RegistryProvider

	// Image panes
	inputImage        *canvas.Image
	outputImage       *canvas.Image
	inputPlaceholder  *widget.Label
	outputPlaceholder *widget.Label

	// Controls
	loadBtn      *widget.Button
	processBtn   *widget.Button
	saveBtn      *widget.Button
	revealBtn    *widget.Button
	modelSelect  *widget.Select
	scaleSelect  *widget.Select
	formatSelect *widget.Select

	// Progress section
	progressBar *widget.ProgressBar
	statusLabel *widget.Label
	statusBar   *widget.Label

	inputPath   string
	resultPath  string
	resultImage image.Image // full-resolution result, save fallback
	savedPath   string
}

// NewRootUI creates and initializes the main window
func NewRootUI(window fyne.Window, app fyne.App, upscaleSvc upscale.Upscaler, settings *config.Settings, registry RegistryProvider) *RootUI {
	ui := &RootUI{
		window:     window,
		app:        app,
		upscaleSvc: upscaleSvc,
		settings:   settings,
		registry:   registry,
	}

	window.SetTitle(AppTitle)

	ui.upscaleSvc.SetCallbacks(upscale.Callbacks{
		OnProgress: ui.onProgress,
		OnResult:   ui.onResult,
		OnError:    ui.onError,
		OnDone:     ui.onDone,
	})

	ui.setupUI()
	ui.checkAvailability()
	return ui
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	header := widget.NewLabelWithStyle(AppTitle, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	// Image panes, side by side
	ui.inputImage = newImagePane()
	ui.inputPlaceholder = widget.NewLabel(NoImageText)
	inputPane := makePane(InputPaneTitle, ui.inputImage, ui.inputPlaceholder)

	ui.outputImage = newImagePane()
	ui.outputPlaceholder = widget.NewLabel(NoOutputText)
	outputPane := makePane(OutputPaneTitle, ui.outputImage, ui.outputPlaceholder)

	imageSplit := container.NewHSplit(inputPane, outputPane)
	imageSplit.SetOffset(0.5)

	// Input controls
	ui.loadBtn = widget.NewButton(LoadButtonText, ui.onLoadImage)

	// Model settings
	ui.modelSelect = widget.NewSelect(ui.registry().ModelNames(), nil)
	ui.modelSelect.SetSelected(ui.selectedModelOrDefault())

	scaleOptions := make([]string, 0, len(config.ScaleOptions))
	for _, s := range config.ScaleOptions {
		scaleOptions = append(scaleOptions, strconv.Itoa(s))
	}
	ui.scaleSelect = widget.NewSelect(scaleOptions, nil)
	ui.scaleSelect.SetSelected(strconv.Itoa(ui.settings.GetScale()))

	ui.formatSelect = widget.NewSelect(config.OutputFormatOptions, nil)
	ui.formatSelect.SetSelected(ui.settings.GetOutputFormat())

	modelForm := container.New(layout.NewFormLayout(),
		widget.NewLabel("Model:"), ui.modelSelect,
		widget.NewLabel("Scale:"), ui.scaleSelect,
		widget.NewLabel("Output Format:"), ui.formatSelect,
	)

	// Output controls
	ui.processBtn = widget.NewButton(ProcessButtonText, ui.onProcessImage)
	ui.processBtn.Importance = widget.HighImportance
	ui.processBtn.Disable()

	ui.saveBtn = widget.NewButton(SaveButtonText, ui.onSaveImage)
	ui.saveBtn.Disable()

	ui.revealBtn = widget.NewButton("Show in Folder", ui.onRevealSaved)
	ui.revealBtn.Disable()

	settingsBtn := widget.NewButton("Settings", ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance

	// Progress section
	ui.progressBar = widget.NewProgressBar()
	ui.statusLabel = widget.NewLabel(StatusReady)

	controls := container.NewVBox(
		container.NewGridWithColumns(3,
			container.NewVBox(widget.NewLabelWithStyle("Input Controls", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}), ui.loadBtn, settingsBtn),
			container.NewVBox(widget.NewLabelWithStyle("Model Settings", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}), modelForm),
			container.NewVBox(widget.NewLabelWithStyle("Output Controls", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}), ui.processBtn, ui.saveBtn, ui.revealBtn),
		),
		widget.NewSeparator(),
		ui.progressBar,
		ui.statusLabel,
	)

	ui.statusBar = widget.NewLabel(StatusReady)

	content := container.NewBorder(
		header, // top
		container.NewVBox(controls, widget.NewSeparator(), ui.statusBar), // bottom
		nil, nil,
		imageSplit, // center
	)

	ui.window.SetContent(content)
}

// newImagePane creates a hidden contain-fit image canvas for a pane.
func newImagePane() *canvas.Image {
	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(fyne.NewSize(ImagePaneMinWidth, ImagePaneMinHeight))
	img.Hide()
	return img
}

// makePane stacks the titled image canvas over its placeholder label.
func makePane(title string, img *canvas.Image, placeholder *widget.Label) fyne.CanvasObject {
	return container.NewBorder(
		widget.NewLabelWithStyle(title, fyne.TextAlignCenter, fyne.TextStyle{}),
		nil, nil, nil,
		container.NewStack(img, container.NewCenter(placeholder)),
	)
}

// checkAvailability verifies the external binary on startup.
func (ui *RootUI) checkAvailability() {
	if err := ui.upscaleSvc.CheckAvailability(); err != nil {
		ui.setStatusBar("NCNN executable not found")
		dialog.ShowError(fmt.Errorf("Real-ESRGAN NCNN executable not found.\nPlace it next to the application or set its path in Settings.\n\n%v", err), ui.window)
		return
	}
	ui.setStatusBar("NCNN executable found and ready")
}

// selectedModelOrDefault returns the persisted model if it is still in the
// registry, otherwise the first configured model.
func (ui *RootUI) selectedModelOrDefault() string {
	reg := ui.registry()
	name := ui.settings.GetModelName()
	if reg.HasModel(name) {
		return name
	}
	names := reg.ModelNames()
	if len(names) > 0 {
		return names[0]
	}
	return name
}

// RefreshModels updates the model picker after a registry reload. A selection
// that disappeared falls back to the first configured model.
func (ui *RootUI) RefreshModels() {
	fyne.Do(func() {
		ui.modelSelect.Options = ui.registry().ModelNames()
		ui.modelSelect.SetSelected(ui.selectedModelOrDefault())
		ui.modelSelect.Refresh()
	})
}

// onLoadImage handles the load button click
func (ui *RootUI) onLoadImage() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		ui.loadInput(path)
	}, ui.window)

	d.SetFilter(storage.NewExtensionFileFilter(imaging.SupportedInputExtensions))
	if lister := listerFor(ui.settings.GetLastOpenDirectory()); lister != nil {
		d.SetLocation(lister)
	}
	d.Show()
}

// loadInput decodes and displays the chosen input image.
func (ui *RootUI) loadInput(path string) {
	if !imaging.IsSupportedInput(path) {
		dialog.ShowError(fmt.Errorf("unsupported image format: %s", filepath.Ext(path)), ui.window)
		return
	}

	preview, err := imaging.LoadPreview(path)
	if err != nil {
		slog.Error("Failed to load image", "path", path, "error", err)
		ui.setStatusBar(fmt.Sprintf("Error loading image: %v", err))
		dialog.ShowError(fmt.Errorf("failed to load image: %w", err), ui.window)
		return
	}

	width, height, err := imaging.Dimensions(path)
	if err != nil {
		width, height = preview.Bounds().Dx(), preview.Bounds().Dy()
	}

	ui.inputPath = path
	ui.settings.SetLastOpenDirectory(filepath.Dir(path))

	fyne.Do(func() {
		ui.inputImage.Image = preview
		ui.inputImage.Show()
		ui.inputImage.Refresh()
		ui.inputPlaceholder.Hide()

		ui.processBtn.Enable()

		ui.statusLabel.SetText(fmt.Sprintf("Image loaded: %dx%d", width, height))
		ui.setStatusBar(fmt.Sprintf("Loaded image: %s (%dx%d)", filepath.Base(path), width, height))
	})

	slog.Info("Image loaded", "path", path, "width", width, "height", height)
}

// onProcessImage handles the process button click
func (ui *RootUI) onProcessImage() {
	if ui.inputPath == "" {
		return
	}

	modelName := ui.modelSelect.Selected
	scale, err := strconv.Atoi(ui.scaleSelect.Selected)
	if err != nil {
		scale = config.DefaultScale
	}
	format := ui.formatSelect.Selected

	// Persist the chosen combination for the next launch.
	ui.settings.SetModelName(modelName)
	ui.settings.SetScale(scale)
	ui.settings.SetOutputFormat(format)

	ui.processBtn.Disable()
	ui.loadBtn.Disable()
	ui.progressBar.SetValue(0)
	ui.statusLabel.SetText(StatusProcessing)
	ui.setStatusBar("Processing image...")

	if _, err := ui.upscaleSvc.StartUpscale(ui.inputPath, modelName, scale, format); err != nil {
		ui.onError(err.Error())
		ui.onDone()
	}
}

// onProgress receives the coarse milestones from the worker goroutine.
func (ui *RootUI) onProgress(percent int) {
	fyne.Do(func() {
		ui.progressBar.SetValue(float64(percent) / 100.0)
		ui.statusLabel.SetText(fmt.Sprintf("Processing... %d%%", percent))
	})
}

// onResult displays the produced file in the output pane. The full bitmap is
// kept so the save flow can re-encode it if the temp file vanishes.
func (ui *RootUI) onResult(outputPath string) {
	full, err := imaging.Decode(outputPath)
	if err != nil {
		ui.onError(fmt.Sprintf("Error loading result: %v", err))
		return
	}
	preview := imaging.FitPreview(full)

	outputDims := fmt.Sprintf("%dx%d", full.Bounds().Dx(), full.Bounds().Dy())
	inputDims := ""
	if task, ok := ui.upscaleSvc.CurrentTask(); ok {
		outputDims = task.GetOutputDimensionsString()
		inputDims = task.GetDimensionsString()
	}

	fyne.Do(func() {
		ui.resultPath = outputPath
		ui.resultImage = full
		ui.outputImage.Image = preview
		ui.outputImage.Show()
		ui.outputImage.Refresh()
		ui.outputPlaceholder.Hide()

		ui.saveBtn.Enable()

		ui.statusLabel.SetText("Complete! Output: " + outputDims)
		ui.setStatusBar(fmt.Sprintf("Processing complete! %s upscaled to %s", inputDims, outputDims))
	})

	if ui.settings.GetOpenAfterUpscale() {
		if err := platform.OpenWithDefaultApp(outputPath); err != nil {
			slog.Warn("Failed to open result", "path", outputPath, "error", err)
		}
	}
}

// onError surfaces a failure as a single message box and resets the status.
func (ui *RootUI) onError(message string) {
	fyne.Do(func() {
		ui.statusLabel.SetText(StatusError)
		ui.setStatusBar("Error: " + message)
		dialog.ShowError(fmt.Errorf("error during processing: %s", message), ui.window)
	})
}

// onDone re-enables the trigger buttons whatever the outcome.
func (ui *RootUI) onDone() {
	fyne.Do(func() {
		ui.processBtn.Enable()
		ui.loadBtn.Enable()
	})
}

// onSaveImage handles the save button click
func (ui *RootUI) onSaveImage() {
	if ui.resultPath == "" {
		return
	}

	name := filepath.Base(ui.inputPath)
	name = name[:len(name)-len(filepath.Ext(name))]
	format := ui.formatSelect.Selected
	if task, ok := ui.upscaleSvc.CurrentTask(); ok {
		name = task.GetDisplayName()
		format = task.Format
	}
	defaultName := fmt.Sprintf("%s%s.%s", name, upscale.OutputSuffix, format)

	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		savePath := writer.URI().Path()
		writer.Close()

		if err := ui.writeResult(savePath); err != nil {
			slog.Error("Failed to save image", "path", savePath, "error", err)
			ui.setStatusBar(fmt.Sprintf("Error saving image: %v", err))
			dialog.ShowError(fmt.Errorf("failed to save image: %w", err), ui.window)
			return
		}

		ui.savedPath = savePath
		ui.revealBtn.Enable()
		ui.settings.SetLastSaveDirectory(filepath.Dir(savePath))
		ui.statusLabel.SetText("Image saved successfully")
		ui.setStatusBar(fmt.Sprintf("Saved image as: %s", filepath.Base(savePath)))
	}, ui.window)

	d.SetFileName(defaultName)
	d.SetFilter(storage.NewExtensionFileFilter([]string{"." + format}))
	if lister := listerFor(ui.settings.GetLastSaveDirectory()); lister != nil {
		d.SetLocation(lister)
	}
	d.Show()
}

// writeResult copies the produced file to savePath. When the temp file no
// longer exists the held full-resolution bitmap is re-encoded instead.
func (ui *RootUI) writeResult(savePath string) error {
	err := platform.CopyFile(ui.resultPath, savePath)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) || ui.resultImage == nil {
		return err
	}

	slog.Warn("Result file missing, re-encoding from memory", "path", ui.resultPath)
	return imaging.SaveImage(savePath, ui.resultImage)
}

// onRevealSaved opens the saved file's folder in the system file manager.
func (ui *RootUI) onRevealSaved() {
	if ui.savedPath == "" {
		return
	}
	if err := platform.RevealInFileManager(ui.savedPath); err != nil {
		slog.Warn("Failed to reveal file", "path", ui.savedPath, "error", err)
		ui.setStatusBar(fmt.Sprintf("Could not open file manager: %v", err))
	}
}

// onShowSettings shows the settings dialog
func (ui *RootUI) onShowSettings() {
	ShowSettingsDialog(ui.window, ui.settings, func() {
		// Re-resolve with the new override so it applies without a restart.
		exePath, err := upscale.LocateExecutable(ui.settings.GetExecutablePath())
		if err != nil {
			exePath = ""
		}
		ui.upscaleSvc.SetExecutablePath(exePath)
		ui.checkAvailability()
	})
}

// setStatusBar updates the bottom status line.
func (ui *RootUI) setStatusBar(message string) {
	ui.statusBar.SetText(message)
}

// listerFor converts a directory path into a dialog start location, nil when
// the directory is unset or unusable.
func listerFor(dir string) fyne.ListableURI {
	if dir == "" {
		return nil
	}
	lister, err := storage.ListerForURI(storage.NewFileURI(dir))
	if err != nil {
		return nil
	}
	return lister
}
