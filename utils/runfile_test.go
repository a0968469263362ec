package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	c := DefaultConfig()
	c.Engine = "rprop"
	c.Seed = 42
	c.Parallel = true
	require.NoError(t, SaveConfig(path, &c))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, c, *loaded)
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"epochs": 7}`), 0644))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Epochs)
	assert.Equal(t, DefaultConfig().Architecture, loaded.Architecture)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}
