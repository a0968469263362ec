// symrec-infer: trains an engine, then recognizes image files in-process
//
// Usage:
//
//	symrec-infer -images=drawings/ -epochs=200 frame1.png frame2.jpg
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"symrec/m"
	"symrec/recognize"
	"symrec/utils"
)

var (
	verbose = flag.Bool("verbose", false, "Verbose output")
	outputs = flag.Bool("outputs", false, "Print the raw network outputs")
)

func main() {
	buildConfig := utils.ConfigFlags(flag.CommandLine)
	flag.Parse()
	utils.Verbose = *verbose

	cfg, err := buildConfig()
	if err != nil {
		fatal("Invalid configuration: %v", err)
	}
	if flag.NArg() == 0 {
		fatal("usage: symrec-infer [flags] image...")
	}

	stats := &utils.TimingStats{}
	totalStart := time.Now()

	start := time.Now()
	ds, err := cfg.LoadDataset()
	if err != nil {
		fatal("Error loading data: %v", err)
	}
	stats.DataLoadingTime = time.Since(start)
	log("Loaded %d samples", ds.Len())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := cfg.Train(ctx, ds, func(p m.Progress) {
		log("Epoch %d | Error: %.6f", p.Epoch, p.Error)
	})
	if err != nil && res == nil {
		fatal("Error building engine: %v", err)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fatal("Training failed: %v", err)
	}
	stats.TrainingTime = res.Elapsed
	log("Trained %s in %d epochs, error %.6f", res.Engine, res.Epochs, res.FinalError)

	rec, err := cfg.NewRecognizer(res.Engine)
	if err != nil {
		fatal("Error: %v", err)
	}

	src := recognize.NewFileSource(flag.Args()...)
	for {
		start = time.Now()
		s, err := rec.RecognizeFrom(src)
		stats.InferenceTime += time.Since(start)
		if err == io.EOF {
			break
		}
		stats.Frames++

		switch {
		case errors.Is(err, recognize.ErrNoSymbol):
			fmt.Printf("%s: no symbol (%v)\n", src.Current(), err)
		case err != nil:
			fmt.Printf("%s: error: %v\n", src.Current(), err)
		default:
			fmt.Printf("%s: %s\n", src.Current(), recognize.Name(s.Recognized))
			if *outputs {
				fmt.Printf("  outputs: %s\n", formatOutputs(s.Output))
			}
		}
	}

	stats.TotalTime = time.Since(totalStart)
	utils.PrintTimingStats(stats, res.Epochs)
}

func formatOutputs(out []float64) string {
	parts := make([]string, len(out))
	for i, v := range out {
		parts[i] = fmt.Sprintf("%s=%.4f", recognize.Name(m.Class(i)), v)
	}
	return strings.Join(parts, " ")
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func log(format string, args ...interface{}) {
	if *verbose {
		fmt.Fprintf(os.Stderr, "[INFER] "+format+"\n", args...)
	}
}
