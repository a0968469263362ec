package m

import "context"

// Task is a dataset training run on its own goroutine. Progress records
// arrive in epoch order on Progress(); the final 1.0 record is always the
// last one before the channel closes.
type Task struct {
	progress chan Progress
	done     chan struct{}
	result   float64
	err      error
}

// StartTraining replaces the engine's progress listener and trains it in the
// background. The caller must drain Progress() or training blocks. The engine
// must not be used by anyone else until Wait returns.
func StartTraining(ctx context.Context, e Engine, ds *Dataset, epochs int, acceptableError float64, parallel bool) *Task {
	t := &Task{
		progress: make(chan Progress, 16),
		done:     make(chan struct{}),
	}
	e.OnProgress(func(p Progress) {
		t.progress <- p
	})

	go func() {
		defer close(t.done)
		defer close(t.progress)
		t.result, t.err = e.TrainOnDataSet(ctx, ds, epochs, acceptableError, parallel)
		e.OnProgress(nil)
	}()
	return t
}

func (t *Task) Progress() <-chan Progress {
	return t.progress
}

// Wait blocks until training returns. Partially trained weights are kept
// when the context was cancelled.
func (t *Task) Wait() (float64, error) {
	<-t.done
	return t.result, t.err
}
