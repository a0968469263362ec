package utils

import (
	"flag"
	"fmt"

	"symrec/m"
	"symrec/recognize"
)

// ConfigFlags registers the run flags shared by the commands on fs. After
// fs.Parse, the returned function builds the configuration: the -config
// file (or DefaultConfig) overlaid with every flag set on the command line.
func ConfigFlags(fs *flag.FlagSet) func() (*Config, error) {
	def := DefaultConfig()
	f := def
	var arch, configPath string

	fs.StringVar(&configPath, "config", "", "JSON run configuration to start from")
	fs.StringVar(&arch, "arch", FormatArchitecture(def.Architecture), "Layer sizes, e.g. 1024;128;64;5")
	fs.StringVar(&f.Engine, "engine", def.Engine, fmt.Sprintf("Engine: one of %v", m.EngineNames()))
	fs.StringVar(&f.Output, "output", def.Output, "Output activation: sigmoid or softmax (default: the engine's own)")
	fs.IntVar(&f.ClassCount, "classes", def.ClassCount, "Number of symbol classes")
	fs.IntVar(&f.Epochs, "epochs", def.Epochs, "Training epochs")
	fs.Float64Var(&f.AcceptableError, "acceptable-error", def.AcceptableError, "Stop once the mean epoch error reaches this")
	fs.Float64Var(&f.LearningRate, "lr", def.LearningRate, "Learning rate")
	fs.Uint64Var(&f.Seed, "seed", def.Seed, "Random seed (0 = from clock)")
	fs.BoolVar(&f.Parallel, "parallel", def.Parallel, "Parallel gradient pass where the engine supports it")
	fs.IntVar(&f.ImageSize, "size", def.ImageSize, "Edge of the normalized square image")
	fs.IntVar(&f.Threshold, "threshold", def.Threshold, "Binarization threshold (0-255)")
	fs.IntVar(&f.Padding, "padding", def.Padding, "Padding around the content when cropping")
	fs.IntVar(&f.Margin, "margin", def.Margin, "White margin inside the normalized image")
	fs.Float64Var(&f.MinInk, "min-ink", def.MinInk, "Ink below which a frame holds no symbol")
	fs.StringVar(&f.DataPath, "data", "", "Dataset file (classIndex;v0;...)")
	fs.StringVar(&f.ImageRoot, "images", "", "Folder of NN_Name class directories with PNG drawings")

	return func() (*Config, error) {
		c := &def
		if configPath != "" {
			loaded, err := LoadConfig(configPath)
			if err != nil {
				return nil, err
			}
			c = loaded
		}

		var err error
		fs.Visit(func(fl *flag.Flag) {
			switch fl.Name {
			case "arch":
				c.Architecture, err = ParseArchitecture(arch)
			case "engine":
				c.Engine = f.Engine
			case "output":
				c.Output = f.Output
			case "classes":
				c.ClassCount = f.ClassCount
			case "epochs":
				c.Epochs = f.Epochs
			case "acceptable-error":
				c.AcceptableError = f.AcceptableError
			case "lr":
				c.LearningRate = f.LearningRate
			case "seed":
				c.Seed = f.Seed
			case "parallel":
				c.Parallel = f.Parallel
			case "size":
				c.ImageSize = f.ImageSize
			case "threshold":
				c.Threshold = f.Threshold
			case "padding":
				c.Padding = f.Padding
			case "margin":
				c.Margin = f.Margin
			case "min-ink":
				c.MinInk = f.MinInk
			case "data":
				c.DataPath = f.DataPath
			case "images":
				c.ImageRoot = f.ImageRoot
			}
		})
		if err != nil {
			return nil, err
		}
		if err := ValidateConfig(c); err != nil {
			return nil, err
		}
		return c, nil
	}
}

// LoadDataset reads the training data named by the configuration: the image
// folder when set, the dataset file otherwise.
func (c *Config) LoadDataset() (*m.Dataset, error) {
	switch {
	case c.ImageRoot != "":
		return recognize.LoadFolder(c.ImageRoot, c.Preprocess(), c.ClassCount)
	case c.DataPath != "":
		return m.LoadDataset(c.DataPath, c.ClassCount)
	}
	return nil, fmt.Errorf("no training data: set -images or -data")
}

// NewRecognizer wraps e with the configured preprocessing.
func (c *Config) NewRecognizer(e m.Engine) (*recognize.Recognizer, error) {
	r, err := recognize.New(e, c.Preprocess(), c.ClassCount)
	if err != nil {
		return nil, err
	}
	r.MinInk = c.MinInk
	return r, nil
}
