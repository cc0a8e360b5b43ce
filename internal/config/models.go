package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ModelFiles records where a model's NCNN weight files live, relative to the
// application directory. Paths are not validated against the executable's
// actual requirements; the binary resolves them itself.
type ModelFiles struct {
	Param string `json:"param"`
	Bin   string `json:"bin"`
	Scale int    `json:"scale"`
}

// Registry is the on-disk model configuration (models.json). It maps model
// names to their weight files and operating systems to the bundled
// executable path.
type Registry struct {
	Version    string                `json:"version"`
	Models     map[string]ModelFiles `json:"models"`
	Executable map[string]string     `json:"executable"`
}

// registrySchema validates the structure of models.json before unmarshal.
const registrySchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["version", "models", "executable"],
  "properties": {
    "version": {"type": "string"},
    "models": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {
        "type": "object",
        "required": ["param", "bin"],
        "properties": {
          "param": {"type": "string", "minLength": 1},
          "bin": {"type": "string", "minLength": 1},
          "scale": {"type": "integer", "enum": [2, 4]}
        }
      }
    },
    "executable": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    }
  }
}`

// platformKeys maps runtime.GOOS values to the keys used in models.json.
var platformKeys = map[string]string{
	"windows": "windows",
	"darwin":  "macos",
	"linux":   "linux",
}

// LoadRegistry loads and validates models.json.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model config: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	schema, err := jsonschema.CompileString("models.schema.json", registrySchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile model schema: %w", err)
	}

	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("model config validation failed: %w", err)
	}

	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model config: %w", err)
	}

	return &reg, nil
}

// SaveRegistry writes the registry as indented JSON.
func SaveRegistry(path string, r *Registry) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model config: %w", err)
	}
	return nil
}

// ModelNames returns the configured model names in sorted order for stable
// UI pickers.
func (r *Registry) ModelNames() []string {
	names := make([]string, 0, len(r.Models))
	for name := range r.Models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasModel reports whether a model name is configured.
func (r *Registry) HasModel(name string) bool {
	_, ok := r.Models[name]
	return ok
}

// ExecutableFor returns the configured executable path for a runtime.GOOS
// value, empty when the platform has no entry.
func (r *Registry) ExecutableFor(goos string) string {
	key, ok := platformKeys[strings.ToLower(goos)]
	if !ok {
		return ""
	}
	return r.Executable[key]
}

// DefaultRegistry returns the registry shipped with the app, used when
// models.json is absent. It matches what cmd/fetch-models writes.
func DefaultRegistry() *Registry {
	return &Registry{
		Version: "1.0",
		Models: map[string]ModelFiles{
			"realesrgan-x4plus": {
				Param: "models/realesrgan-x4plus.param",
				Bin:   "models/realesrgan-x4plus.bin",
				Scale: 4,
			},
			"realesrgan-x4plus-anime": {
				Param: "models/realesrgan-x4plus-anime.param",
				Bin:   "models/realesrgan-x4plus-anime.bin",
				Scale: 4,
			},
			"realesrnet-x4plus": {
				Param: "models/realesrnet-x4plus.param",
				Bin:   "models/realesrnet-x4plus.bin",
				Scale: 4,
			},
		},
		Executable: map[string]string{
			"windows": "bin/realesrgan-ncnn-vulkan.exe",
			"linux":   "bin/realesrgan-ncnn-vulkan",
			"macos":   "bin/realesrgan-ncnn-vulkan",
		},
	}
}
