package config

import (
	"testing"

	"fyne.io/fyne/v2/test"
)

func TestModelName(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	// Test default value
	name := settings.GetModelName()
	if name != DefaultModelName {
		t.Errorf("Expected default model %s, got %s", DefaultModelName, name)
	}

	// Test setting custom value
	settings.SetModelName("realesrgan-x4plus-anime")
	if settings.GetModelName() != "realesrgan-x4plus-anime" {
		t.Errorf("Expected model 'realesrgan-x4plus-anime', got %s", settings.GetModelName())
	}
}

func TestScale(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	// Test default value
	scale := settings.GetScale()
	if scale != DefaultScale {
		t.Errorf("Expected default scale %d, got %d", DefaultScale, scale)
	}

	// Test setting supported value
	settings.SetScale(2)
	if settings.GetScale() != 2 {
		t.Errorf("Expected scale 2, got %d", settings.GetScale())
	}

	// Unsupported values fall back to the default
	settings.SetScale(3)
	if settings.GetScale() != DefaultScale {
		t.Errorf("Expected unsupported scale to fall back to %d, got %d", DefaultScale, settings.GetScale())
	}
}

func TestOutputFormat(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	// Test default value
	format := settings.GetOutputFormat()
	if format != DefaultOutputFormat {
		t.Errorf("Expected default format %s, got %s", DefaultOutputFormat, format)
	}

	// Test setting supported value
	settings.SetOutputFormat("webp")
	if settings.GetOutputFormat() != "webp" {
		t.Errorf("Expected format 'webp', got %s", settings.GetOutputFormat())
	}

	// Unsupported values fall back to the default
	settings.SetOutputFormat("gif")
	if settings.GetOutputFormat() != DefaultOutputFormat {
		t.Errorf("Expected unsupported format to fall back to %s, got %s", DefaultOutputFormat, settings.GetOutputFormat())
	}
}

func TestExecutablePath(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	// Empty by default (automatic discovery)
	if settings.GetExecutablePath() != "" {
		t.Errorf("Expected empty executable override, got %s", settings.GetExecutablePath())
	}

	settings.SetExecutablePath("/opt/realesrgan/realesrgan-ncnn-vulkan")
	if settings.GetExecutablePath() != "/opt/realesrgan/realesrgan-ncnn-vulkan" {
		t.Errorf("Expected executable override to round-trip, got %s", settings.GetExecutablePath())
	}
}

func TestOpenAfterUpscale(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if settings.GetOpenAfterUpscale() != DefaultOpenAfterUpscale {
		t.Errorf("Expected default open-after-upscale %v", DefaultOpenAfterUpscale)
	}

	settings.SetOpenAfterUpscale(true)
	if !settings.GetOpenAfterUpscale() {
		t.Error("Expected open-after-upscale to be true after set")
	}
}

func TestLastDirectories(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	settings.SetLastOpenDirectory("/photos")
	settings.SetLastSaveDirectory("/exports")

	if settings.GetLastOpenDirectory() != "/photos" {
		t.Errorf("Expected last open dir '/photos', got %s", settings.GetLastOpenDirectory())
	}
	if settings.GetLastSaveDirectory() != "/exports" {
		t.Errorf("Expected last save dir '/exports', got %s", settings.GetLastSaveDirectory())
	}
}
