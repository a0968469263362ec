package m

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
)

// Network is the from-scratch perceptron trained by online gradient
// descent, one weight update per sample.
type Network struct {
	config   Config
	layers   *layers
	rng      *rand.Rand
	progress ProgressFunc
}

func NewNetwork(c Config) (*Network, error) {
	if err := ValidateStructure(c.Structure); err != nil {
		return nil, err
	}
	c = c.withDefaults()
	c.Structure = append([]int(nil), c.Structure...)

	src := newSource(c.Seed)
	return &Network{
		config: c,
		layers: newLayers(c.Structure, c.Output, src),
		rng:    rand.New(src),
	}, nil
}

func (net *Network) String() string {
	return fmt.Sprintf("network %v (%s output, lr %g)", net.config.Structure, net.config.Output, net.config.LearningRate)
}

func (net *Network) OnProgress(fn ProgressFunc) {
	net.progress = fn
}

// Compute runs a forward pass and returns a copy of the output layer.
func (net *Network) Compute(input []float64) ([]float64, error) {
	if err := net.layers.feedForward(input); err != nil {
		return nil, err
	}
	return net.layers.result(), nil
}

func (net *Network) Predict(s *Sample) (Class, error) {
	if err := net.layers.checkTarget(s); err != nil {
		return Unlabeled, err
	}
	output, err := net.Compute(s.Input)
	if err != nil {
		return Unlabeled, err
	}
	return s.ProcessPrediction(output), nil
}

// Train fits a single sample until its squared error drops to
// acceptableError or MaxIterations passes are spent. The parallel hint is
// accepted for interface parity and ignored.
func (net *Network) Train(s *Sample, acceptableError float64, parallel bool) (int, error) {
	iterations := 0
	sampleError := math.Inf(1)

	for sampleError > acceptableError && iterations < net.config.MaxIterations {
		iterations++
		e, err := net.trainOne(s)
		if err != nil {
			return iterations, err
		}
		sampleError = e
	}
	return iterations, nil
}

// TrainOnDataSet runs online SGD epochs over ds. The parallel hint is
// ignored: updates stay strictly sequential per sample.
func (net *Network) TrainOnDataSet(ctx context.Context, ds *Dataset, epochs int, acceptableError float64, parallel bool) (float64, error) {
	if ds.Len() == 0 {
		return 0, ErrEmptyDataset
	}

	return epochLoop(ctx, epochs, acceptableError, net.progress, func() (float64, error) {
		if net.config.Shuffle {
			ds.Shuffle(net.rng)
		}
		sumError := 0.0
		for _, s := range ds.Samples {
			e, err := net.trainOne(s)
			if err != nil {
				return 0, err
			}
			sumError += e
		}
		return sumError / float64(ds.Len()), nil
	})
}

// trainOne does forward, record, backpropagate and update for one sample
// and returns its squared error before the update.
func (net *Network) trainOne(s *Sample) (float64, error) {
	if err := net.layers.checkTarget(s); err != nil {
		return 0, err
	}
	output, err := net.Compute(s.Input)
	if err != nil {
		return 0, err
	}
	s.ProcessPrediction(output)

	net.layers.backpropagate(s)
	net.layers.descend(net.config.LearningRate)
	return s.EstimatedError(), nil
}
