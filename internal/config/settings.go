package config

import (
	"fyne.io/fyne/v2"
)

// Settings keys for Fyne preferences
const (
	KeyModelName        = "model_name"
	KeyScale            = "upscale_factor"
	KeyOutputFormat     = "output_format"
	KeyLastOpenDir      = "last_open_directory"
	KeyLastSaveDir      = "last_save_directory"
	KeyExecutablePath   = "executable_path"
	KeyOpenAfterUpscale = "open_after_upscale"
)

// Default values
const (
	DefaultModelName        = "realesrgan-x4plus"
	DefaultScale            = 4
	DefaultOutputFormat     = "jpg"
	DefaultOpenAfterUpscale = false
)

// ScaleOptions are the factors the bundled models support.
var ScaleOptions = []int{2, 4}

// OutputFormatOptions are the formats the binary's -f flag accepts.
var OutputFormatOptions = []string{"jpg", "png", "webp"}

// Settings manages persisted application configuration.
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetModelName returns the selected model name
func (s *Settings) GetModelName() string {
	name := s.app.Preferences().String(KeyModelName)
	if name == "" {
		s.SetModelName(DefaultModelName)
		return DefaultModelName
	}
	return name
}

// SetModelName sets the selected model name
func (s *Settings) SetModelName(name string) {
	s.app.Preferences().SetString(KeyModelName, name)
}

// GetScale returns the upscale factor, clamped to a supported value
func (s *Settings) GetScale() int {
	value := s.app.Preferences().Int(KeyScale)
	for _, opt := range ScaleOptions {
		if value == opt {
			return value
		}
	}
	s.SetScale(DefaultScale)
	return DefaultScale
}

// SetScale sets the upscale factor; unsupported values fall back to the default
func (s *Settings) SetScale(scale int) {
	valid := false
	for _, opt := range ScaleOptions {
		if scale == opt {
			valid = true
			break
		}
	}
	if !valid {
		scale = DefaultScale
	}
	s.app.Preferences().SetInt(KeyScale, scale)
}

// GetOutputFormat returns the output format for the -f flag
func (s *Settings) GetOutputFormat() string {
	format := s.app.Preferences().String(KeyOutputFormat)
	for _, opt := range OutputFormatOptions {
		if format == opt {
			return format
		}
	}
	s.SetOutputFormat(DefaultOutputFormat)
	return DefaultOutputFormat
}

// SetOutputFormat sets the output format; unsupported values fall back to the default
func (s *Settings) SetOutputFormat(format string) {
	valid := false
	for _, opt := range OutputFormatOptions {
		if format == opt {
			valid = true
			break
		}
	}
	if !valid {
		format = DefaultOutputFormat
	}
	s.app.Preferences().SetString(KeyOutputFormat, format)
}

// GetLastOpenDirectory returns the directory of the last opened image
func (s *Settings) GetLastOpenDirectory() string {
	return s.app.Preferences().String(KeyLastOpenDir)
}

// SetLastOpenDirectory sets the directory of the last opened image
func (s *Settings) SetLastOpenDirectory(dir string) {
	s.app.Preferences().SetString(KeyLastOpenDir, dir)
}

// GetLastSaveDirectory returns the directory of the last saved result
func (s *Settings) GetLastSaveDirectory() string {
	return s.app.Preferences().String(KeyLastSaveDir)
}

// SetLastSaveDirectory sets the directory of the last saved result
func (s *Settings) SetLastSaveDirectory(dir string) {
	s.app.Preferences().SetString(KeyLastSaveDir, dir)
}

// GetExecutablePath returns the user-provided executable override, empty for
// automatic discovery
func (s *Settings) GetExecutablePath() string {
	return s.app.Preferences().String(KeyExecutablePath)
}

// SetExecutablePath sets the executable override path
func (s *Settings) SetExecutablePath(path string) {
	s.app.Preferences().SetString(KeyExecutablePath, path)
}

// GetOpenAfterUpscale returns whether to open the result with the default
// viewer when a run completes
func (s *Settings) GetOpenAfterUpscale() bool {
	return s.app.Preferences().BoolWithFallback(KeyOpenAfterUpscale, DefaultOpenAfterUpscale)
}

// SetOpenAfterUpscale sets the open-after-upscale toggle
func (s *Settings) SetOpenAfterUpscale(open bool) {
	s.app.Preferences().SetBool(KeyOpenAfterUpscale, open)
}
