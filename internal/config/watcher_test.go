package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWatcher_InvalidInitialConfig(t *testing.T) {
	path := writeRegistryFile(t, `{"version": "1.0"}`)

	_, err := NewWatcher(path, nil)
	assert.Error(t, err)
}

func TestWatcher_Snapshot(t *testing.T) {
	path := writeRegistryFile(t, validRegistryJSON)

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)
	defer w.Close()

	reg := w.Snapshot()
	require.NotNil(t, reg)
	assert.Len(t, reg.Models, 2)
	assert.Zero(t, w.ReloadCount())
}

func TestNewStaticWatcher(t *testing.T) {
	reg := DefaultRegistry()
	w := NewStaticWatcher(reg)

	assert.Equal(t, reg, w.Snapshot())

	w.Close()
	w.Close() // repeated close must not panic
}

func TestWatcher_ReloadOnWrite(t *testing.T) {
	path := writeRegistryFile(t, validRegistryJSON)

	reloaded := make(chan *Registry, 1)
	w, err := NewWatcher(path, func(reg *Registry, err error) {
		if err == nil {
			reloaded <- reg
		}
	})
	require.NoError(t, err)
	defer w.Close()

	updated := `{
  "version": "1.1",
  "models": {
    "realesrnet-x4plus": {"param": "models/realesrnet-x4plus.param", "bin": "models/realesrnet-x4plus.bin", "scale": 4}
  },
  "executable": {"linux": "bin/realesrgan-ncnn-vulkan"}
}`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case reg := <-reloaded:
		assert.Equal(t, "1.1", reg.Version)
		assert.Equal(t, []string{"realesrnet-x4plus"}, reg.ModelNames())
		assert.Equal(t, reg, w.Snapshot())
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for reload")
	}
}

func TestWatcher_ReloadOnRenameReplace(t *testing.T) {
	path := writeRegistryFile(t, validRegistryJSON)

	reloaded := make(chan *Registry, 1)
	w, err := NewWatcher(path, func(reg *Registry, err error) {
		if err == nil {
			reloaded <- reg
		}
	})
	require.NoError(t, err)
	defer w.Close()

	// Editors save atomically: write a temp file, then rename it over the
	// watched path.
	updated := `{
  "version": "2.0",
  "models": {
    "realesrnet-x4plus": {"param": "models/realesrnet-x4plus.param", "bin": "models/realesrnet-x4plus.bin", "scale": 4}
  },
  "executable": {"linux": "bin/realesrgan-ncnn-vulkan"}
}`
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(updated), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case reg := <-reloaded:
		assert.Equal(t, "2.0", reg.Version)
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for reload after rename-replace")
	}
}

func TestWatcher_KeepsSnapshotOnInvalidReload(t *testing.T) {
	path := writeRegistryFile(t, validRegistryJSON)

	failed := make(chan error, 1)
	w, err := NewWatcher(path, func(reg *Registry, err error) {
		if err != nil {
			failed <- err
		}
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte(`{"broken":`), 0o644))

	select {
	case <-failed:
		// Previous snapshot survives a bad edit.
		assert.Len(t, w.Snapshot().Models, 2)
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for failed reload")
	}
}
