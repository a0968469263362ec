package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symrec/m"
)

func TestParseArchitecture(t *testing.T) {
	for _, in := range []string{"1024;128;64;5", "1024 128 64 5", " 1024, 128 ,64;5 "} {
		arch, err := ParseArchitecture(in)
		require.NoError(t, err, in)
		assert.Equal(t, []int{1024, 128, 64, 5}, arch, in)
	}

	_, err := ParseArchitecture("1024;x;5")
	assert.Error(t, err)
}

func TestFormatArchitecture(t *testing.T) {
	assert.Equal(t, "1024;128;64;5", FormatArchitecture([]int{1024, 128, 64, 5}))
}

func TestValidateConfig(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, ValidateConfig(&c))

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"single layer", func(c *Config) { c.Architecture = []int{1024} }},
		{"zero layer", func(c *Config) { c.Architecture = []int{1024, 0, 5} }},
		{"class mismatch", func(c *Config) { c.ClassCount = 4 }},
		{"input mismatch", func(c *Config) { c.ImageSize = 16 }},
		{"no epochs", func(c *Config) { c.Epochs = 0 }},
		{"negative error", func(c *Config) { c.AcceptableError = -1 }},
		{"threshold", func(c *Config) { c.Threshold = 300 }},
		{"engine", func(c *Config) { c.Engine = "accord" }},
		{"output", func(c *Config) { c.Output = "relu" }},
		{"margin", func(c *Config) { c.Margin = 16 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := DefaultConfig()
			tc.mutate(&c)
			assert.Error(t, ValidateConfig(&c))
		})
	}
}

func TestConfigNewEngine(t *testing.T) {
	c := DefaultConfig()
	c.Architecture = []int{1024, 8, 5}
	c.Engine = "rprop"
	e, err := c.NewEngine()
	require.NoError(t, err)
	assert.Contains(t, e.String(), "rprop")
}

func TestConfigNewEngineOutput(t *testing.T) {
	c := DefaultConfig()
	c.Architecture = []int{1024, 8, 5}

	e, err := c.NewEngine()
	require.NoError(t, err)
	assert.Contains(t, e.String(), "softmax output")

	c.Output = "sigmoid"
	e, err = c.NewEngine()
	require.NoError(t, err)
	assert.Contains(t, e.String(), "sigmoid output")

	c.Output = "tanh"
	_, err = c.NewEngine()
	assert.ErrorIs(t, err, m.ErrConfiguration)
}
