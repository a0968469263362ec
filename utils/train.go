package utils

import (
	"context"
	"time"

	"symrec/m"
)

// TrainResult summarizes a training run.
type TrainResult struct {
	Engine     m.Engine
	FinalError float64
	Epochs     int
	Elapsed    time.Duration
}

// Train builds the configured engine and trains it on ds in the background,
// handing every progress record to report (which may be nil). Cancelling ctx
// stops training at the next epoch boundary; the partially trained engine is
// still returned with the context error.
func (c *Config) Train(ctx context.Context, ds *m.Dataset, report func(m.Progress)) (*TrainResult, error) {
	e, err := c.NewEngine()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	task := m.StartTraining(ctx, e, ds, c.Epochs, c.AcceptableError, c.Parallel)
	res := &TrainResult{Engine: e}
	for p := range task.Progress() {
		res.Epochs = p.Epoch
		if report != nil {
			report(p)
		}
	}
	res.FinalError, err = task.Wait()
	res.Elapsed = time.Since(start)
	return res, err
}
