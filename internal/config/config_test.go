package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultOutputBinary, cfg.OutputBinary)
	assert.Equal(t, DefaultCC, cfg.CC)
}

func TestLoadOverlaysOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".quackc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cc: clang\nkeep_generated_c: true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "clang", cfg.CC)
	assert.True(t, cfg.KeepGeneratedC)
	assert.Equal(t, DefaultOutputBinary, cfg.OutputBinary, "unset fields keep their default")
}
