package utils

import (
	"fmt"
	"strconv"
	"strings"

	"symrec/m"
	"symrec/preprocess"
)

// Config holds the settings shared by the commands.
type Config struct {
	Architecture    []int   `json:"architecture"`
	Engine          string  `json:"engine"`
	Output          string  `json:"output,omitempty"`
	ClassCount      int     `json:"class_count"`
	Epochs          int     `json:"epochs"`
	AcceptableError float64 `json:"acceptable_error"`
	LearningRate    float64 `json:"learning_rate"`
	Seed            uint64  `json:"seed"`
	Parallel        bool    `json:"parallel"`
	ImageSize       int     `json:"image_size"`
	Threshold       int     `json:"threshold"`
	Padding         int     `json:"padding"`
	Margin          int     `json:"margin"`
	MinInk          float64 `json:"min_ink"`
	DataPath        string  `json:"data_path,omitempty"`
	ImageRoot       string  `json:"image_root,omitempty"`
}

// DefaultConfig recognizes the five media symbols from 32x32 drawings.
func DefaultConfig() Config {
	p := preprocess.DefaultConfig()
	return Config{
		Architecture:    []int{1024, 128, 64, 5},
		Engine:          "student",
		ClassCount:      5,
		Epochs:          100,
		AcceptableError: 0.05,
		LearningRate:    m.DefaultLearningRate,
		ImageSize:       p.Size,
		Threshold:       int(p.Threshold),
		Padding:         p.Padding,
		Margin:          p.Margin,
		MinInk:          10,
	}
}

// ParseArchitecture parses an architecture string such as "1024;128;64;5"
// or "1024 128 64 5" into layer sizes.
func ParseArchitecture(archStr string) ([]int, error) {
	archParts := strings.FieldsFunc(archStr, func(r rune) bool {
		return r == ';' || r == ',' || r == ' ' || r == '\t'
	})
	arch := make([]int, len(archParts))
	for i, s := range archParts {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		arch[i] = n
	}
	return arch, nil
}

func FormatArchitecture(arch []int) string {
	parts := make([]string, len(arch))
	for i, n := range arch {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ";")
}

// ValidateConfig validates a run configuration
func ValidateConfig(config *Config) error {
	if len(config.Architecture) < 2 {
		return fmt.Errorf("architecture must have at least 2 layers (input and output)")
	}
	for i, n := range config.Architecture {
		if n <= 0 {
			return fmt.Errorf("layer %d must have a positive size, got %d", i, n)
		}
	}

	if config.ClassCount <= 0 {
		return fmt.Errorf("class count must be positive")
	}
	if out := config.Architecture[len(config.Architecture)-1]; out != config.ClassCount {
		return fmt.Errorf("output layer has %d neurons but there are %d classes", out, config.ClassCount)
	}
	if in := config.Architecture[0]; in != config.ImageSize*config.ImageSize {
		return fmt.Errorf("input layer has %d neurons but %dx%d images give %d", in, config.ImageSize, config.ImageSize, config.ImageSize*config.ImageSize)
	}

	if config.Epochs <= 0 {
		return fmt.Errorf("epochs must be positive")
	}
	if config.AcceptableError < 0 {
		return fmt.Errorf("acceptable error must be non-negative")
	}
	if config.Threshold < 0 || config.Threshold > 255 {
		return fmt.Errorf("threshold must be in [0, 255], got %d", config.Threshold)
	}
	if _, ok := m.EngineLookup[config.Engine]; !ok {
		return fmt.Errorf("engine must be one of %v, got %q", m.EngineNames(), config.Engine)
	}
	if _, ok := m.ActivatorLookup[config.Output]; config.Output != "" && !ok {
		return fmt.Errorf("output must be sigmoid or softmax, got %q", config.Output)
	}

	return config.Preprocess().Validate()
}

func (c *Config) Preprocess() preprocess.Config {
	return preprocess.Config{
		Size:      c.ImageSize,
		Threshold: uint8(c.Threshold),
		Padding:   c.Padding,
		Margin:    c.Margin,
		MinPixels: preprocess.DefaultConfig().MinPixels,
	}
}

// NewEngine builds the configured engine. An empty Output keeps the
// engine's own output activation.
func (c *Config) NewEngine() (m.Engine, error) {
	mc := m.Config{
		Structure:    c.Architecture,
		LearningRate: c.LearningRate,
		Seed:         c.Seed,
	}
	if c.Output != "" {
		act, ok := m.ActivatorLookup[c.Output]
		if !ok {
			return nil, fmt.Errorf("%w: unknown output %q", m.ErrConfiguration, c.Output)
		}
		mc.Output = act
	}
	return m.NewEngine(c.Engine, mc)
}
