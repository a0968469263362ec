package utils

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Verbose controls whether timing statistics are printed.
// Set to false to suppress output.
var Verbose = true

// Output is the writer where timing statistics are printed.
// Defaults to os.Stdout.
var Output io.Writer = os.Stdout

// TimingStats holds timing information for the stages of a run
type TimingStats struct {
	TotalTime       time.Duration
	DataLoadingTime time.Duration
	PreprocessTime  time.Duration
	ModelInitTime   time.Duration
	TrainingTime    time.Duration
	EvaluationTime  time.Duration
	InferenceTime   time.Duration
	Frames          int
}

// PrintTimingStats prints detailed timing statistics.
// Respects the Verbose flag - does nothing if Verbose is false.
func PrintTimingStats(stats *TimingStats, epochs int) {
	if !Verbose {
		return
	}
	fmt.Fprintln(Output, "\n=== TIMING STATISTICS ===")
	fmt.Fprintf(Output, "Total time: %v\n", stats.TotalTime)
	if epochs > 0 {
		fmt.Fprintf(Output, "Average time per epoch: %v\n", stats.TrainingTime/time.Duration(epochs))
		fmt.Fprintf(Output, "Epochs completed: %d\n", epochs)
	}
	fmt.Fprintln(Output, "\nBreakdown by stage:")
	printShare("Data loading", stats.DataLoadingTime, stats.TotalTime)
	printShare("Preprocessing", stats.PreprocessTime, stats.TotalTime)
	printShare("Model initialization", stats.ModelInitTime, stats.TotalTime)
	printShare("Training", stats.TrainingTime, stats.TotalTime)
	printShare("Evaluation", stats.EvaluationTime, stats.TotalTime)
	printShare("Inference", stats.InferenceTime, stats.TotalTime)
	if stats.Frames > 0 {
		fmt.Fprintln(Output, "\nPerformance metrics:")
		fmt.Fprintf(Output, "  Frames recognized: %d\n", stats.Frames)
		fmt.Fprintf(Output, "  Average time per frame: %.1fµs\n", DurationUS(stats.InferenceTime)/float64(stats.Frames))
	}
}

func printShare(name string, d, total time.Duration) {
	share := 0.0
	if total > 0 {
		share = float64(d) / float64(total) * 100
	}
	fmt.Fprintf(Output, "  %s: %v (%.1f%%)\n", name, d, share)
}

// DurationUS converts any time.Duration to micro-seconds as float64
func DurationUS(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1_000.0
}
