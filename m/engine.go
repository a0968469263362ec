package m

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

var (
	ErrConfiguration     = errors.New("configuration error")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrNumericDivergence = errors.New("numeric divergence")
	ErrEmptyDataset      = errors.New("empty dataset")
)

// Progress is reported after every epoch and once more, with Progress 1.0,
// when training stops.
type Progress struct {
	Epoch    int
	Progress float64
	Error    float64
	Elapsed  time.Duration
}

type ProgressFunc func(Progress)

// Engine is the capability every network variant exposes. An engine is not
// safe for concurrent use.
type Engine interface {
	Train(s *Sample, acceptableError float64, parallel bool) (int, error)
	TrainOnDataSet(ctx context.Context, ds *Dataset, epochs int, acceptableError float64, parallel bool) (float64, error)
	Predict(s *Sample) (Class, error)
	OnProgress(fn ProgressFunc)
	fmt.Stringer
}

type EngineFactory func(c Config) (Engine, error)

var EngineLookup = map[string]EngineFactory{
	"student": func(c Config) (Engine, error) {
		if c.Output == nil {
			c.Output = Softmax{}
		}
		c.Shuffle = true
		return NewNetwork(c)
	},
	"student-quadratic": func(c Config) (Engine, error) {
		if c.Output == nil {
			c.Output = Sigmoid{}
		}
		c.Shuffle = false
		return NewNetwork(c)
	},
	"rprop": func(c Config) (Engine, error) {
		return NewRProp(c)
	},
}

// NewEngine builds the variant registered under name.
func NewEngine(name string, c Config) (Engine, error) {
	factory, ok := EngineLookup[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown engine %q (have %v)", ErrConfiguration, name, EngineNames())
	}
	return factory(c)
}

func EngineNames() []string {
	names := make([]string, 0, len(EngineLookup))
	for name := range EngineLookup {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Config describes a network. Zero values fall back to the defaults below.
type Config struct {
	Structure     []int
	Output        Activator
	LearningRate  float64
	Seed          uint64
	Shuffle       bool
	MaxIterations int
}

const (
	DefaultLearningRate  = 0.01
	DefaultMaxIterations = 100000
)

func (c Config) withDefaults() Config {
	if c.Output == nil {
		c.Output = Softmax{}
	}
	if c.LearningRate <= 0 {
		c.LearningRate = DefaultLearningRate
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	return c
}

// ValidateStructure checks the layer sizes of a network.
func ValidateStructure(structure []int) error {
	if len(structure) < 2 {
		return fmt.Errorf("%w: structure %v needs at least an input and an output layer", ErrConfiguration, structure)
	}
	for i, n := range structure {
		if n < 1 {
			return fmt.Errorf("%w: layer %d has %d neurons", ErrConfiguration, i, n)
		}
	}
	return nil
}

// epochLoop runs the shared epoch bookkeeping: it stops on acceptableError,
// the epoch limit, cancellation or a non-finite error, and always emits the
// final 1.0 notification.
func epochLoop(ctx context.Context, epochs int, acceptableError float64, notify ProgressFunc, runEpoch func() (float64, error)) (float64, error) {
	start := time.Now()
	emit := func(p Progress) {
		if notify != nil {
			notify(p)
		}
	}

	datasetError := math.Inf(1)
	epoch := 0
	var err error
	for epoch < epochs && datasetError > acceptableError {
		if err = ctx.Err(); err != nil {
			break
		}
		epoch++
		var e float64
		if e, err = runEpoch(); err != nil {
			break
		}
		datasetError = e
		if !isFinite(datasetError) {
			err = fmt.Errorf("%w: epoch %d error is %v", ErrNumericDivergence, epoch, datasetError)
			break
		}
		emit(Progress{
			Epoch:    epoch,
			Progress: float64(epoch) / float64(epochs),
			Error:    datasetError,
			Elapsed:  time.Since(start),
		})
	}

	emit(Progress{Epoch: epoch, Progress: 1.0, Error: datasetError, Elapsed: time.Since(start)})
	return datasetError, err
}
