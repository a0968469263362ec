// symrec-train: trains an engine on a dataset of hand-drawn symbols
//
// Usage:
//
//	symrec-train -images=drawings/ -epochs=200 -engine=student -export=train_media.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"time"

	"golang.org/x/exp/rand"

	"symrec/m"
	"symrec/recognize"
	"symrec/utils"
)

var (
	verbose    = flag.Bool("verbose", true, "Verbose output")
	exportPath = flag.String("export", "", "Write the loaded dataset to this file")
	ledgerPath = flag.String("ledger", "", "Append a run record to this CSV file")
	augment    = flag.Int("augment", 0, "Noisy, shifted copies to add per sample")
	maxShift   = flag.Int("max-shift", 2, "Largest augmentation shift in pixels")
	noise      = flag.Float64("noise", 0.02, "Salt-and-pepper probability for augmentation")
	holdout    = flag.Float64("holdout", 0, "Fraction of samples kept out of training for testing")
	saveConfig = flag.String("save-config", "", "Write the effective run configuration as JSON")
)

func main() {
	buildConfig := utils.ConfigFlags(flag.CommandLine)
	flag.Parse()
	utils.Verbose = *verbose

	cfg, err := buildConfig()
	if err != nil {
		fatal("Invalid configuration: %v", err)
	}
	if *augment < 0 || *maxShift < 0 {
		fatal("Invalid configuration: -augment and -max-shift must be non-negative")
	}
	if *noise < 0 || *noise > 1 {
		fatal("Invalid configuration: -noise must be in [0, 1], got %g", *noise)
	}
	if *holdout < 0 || *holdout >= 1 {
		fatal("Invalid configuration: -holdout must be in [0, 1), got %g", *holdout)
	}

	fmt.Println("Symbol recognizer trainer")
	fmt.Printf("\nConfiguration:\n")
	fmt.Printf("  Engine:        %s\n", cfg.Engine)
	fmt.Printf("  Architecture:  %s\n", utils.FormatArchitecture(cfg.Architecture))
	fmt.Printf("  Epochs:        %d\n", cfg.Epochs)
	fmt.Printf("  Learning Rate: %.4f\n", cfg.LearningRate)
	fmt.Printf("  Target error:  %g\n", cfg.AcceptableError)
	fmt.Printf("  Parallel:      %v\n", cfg.Parallel)
	fmt.Println()

	if *saveConfig != "" {
		if err := utils.SaveConfig(*saveConfig, cfg); err != nil {
			fatal("Error saving config: %v", err)
		}
	}

	stats := &utils.TimingStats{}
	totalStart := time.Now()

	start := time.Now()
	ds, err := cfg.LoadDataset()
	if err != nil {
		fatal("Error loading data: %v", err)
	}
	if ds.Len() == 0 {
		fatal("No samples found")
	}
	stats.DataLoadingTime = time.Since(start)
	fmt.Printf("Loaded %d samples: %s\n", ds.Len(), describeCounts(ds))

	rng := rand.New(rand.NewSource(seedOrClock(cfg.Seed)))
	train, test := split(ds, *holdout, rng)

	if *augment > 0 {
		start = time.Now()
		if err := recognize.Augment(train, cfg.ImageSize, *augment, *maxShift, *noise, rng); err != nil {
			fatal("Error augmenting: %v", err)
		}
		stats.PreprocessTime = time.Since(start)
		fmt.Printf("Augmented training set to %d samples\n", train.Len())
	}

	if *exportPath != "" {
		if err := train.Save(*exportPath); err != nil {
			fatal("Error exporting: %v", err)
		}
		fmt.Printf("Exported dataset to %s\n", *exportPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("\nStarting training...")
	res, err := cfg.Train(ctx, train, func(p m.Progress) {
		if p.Progress < 1 {
			log("Epoch %d/%d | Error: %.6f | Elapsed: %v", p.Epoch, cfg.Epochs, p.Error, p.Elapsed.Round(time.Millisecond))
		}
	})
	if err != nil && res == nil {
		fatal("Error building engine: %v", err)
	}
	stats.TrainingTime = res.Elapsed
	if err != nil {
		fmt.Fprintf(os.Stderr, "Training stopped: %v\n", err)
	}
	fmt.Printf("Training finished after %d epochs, error %.6f (%v)\n", res.Epochs, res.FinalError, res.Elapsed.Round(time.Millisecond))

	start = time.Now()
	accuracy, err := train.TestNetwork(res.Engine)
	if err != nil {
		fatal("Error evaluating: %v", err)
	}
	fmt.Printf("Training accuracy: %.2f%%\n", accuracy*100)
	if test.Len() > 0 {
		testAccuracy, err := test.TestNetwork(res.Engine)
		if err != nil {
			fatal("Error evaluating: %v", err)
		}
		fmt.Printf("Holdout accuracy:  %.2f%% (%d samples)\n", testAccuracy*100, test.Len())
		accuracy = testAccuracy
	}
	stats.EvaluationTime = time.Since(start)

	stats.TotalTime = time.Since(totalStart)
	utils.PrintTimingStats(stats, res.Epochs)

	if *ledgerPath != "" {
		rec := utils.RunRecord{
			Started:    totalStart,
			Engine:     cfg.Engine,
			Arch:       cfg.Architecture,
			Seed:       cfg.Seed,
			Samples:    train.Len(),
			Epochs:     res.Epochs,
			FinalError: res.FinalError,
			Accuracy:   accuracy,
			Training:   res.Elapsed,
		}
		if err := utils.AppendRunRecord(*ledgerPath, rec); err != nil {
			fatal("Error writing ledger: %v", err)
		}
	}
}

// split shuffles ds and moves the given fraction of it into a second set.
func split(ds *m.Dataset, fraction float64, rng *rand.Rand) (*m.Dataset, *m.Dataset) {
	if fraction <= 0 {
		return ds, &m.Dataset{}
	}
	ds.Shuffle(rng)
	n := int(float64(ds.Len()) * fraction)
	return m.NewDataset(ds.Samples[n:]...), m.NewDataset(ds.Samples[:n]...)
}

func describeCounts(ds *m.Dataset) string {
	counts := ds.Counts()
	classes := make([]m.Class, 0, len(counts))
	for c := range counts {
		classes = append(classes, c)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })

	out := ""
	for i, c := range classes {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s:%d", recognize.Name(c), counts[c])
	}
	return out
}

func seedOrClock(seed uint64) uint64 {
	if seed == 0 {
		return uint64(time.Now().UnixNano())
	}
	return seed
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func log(format string, args ...interface{}) {
	if *verbose {
		fmt.Fprintf(os.Stderr, "[TRAIN] "+format+"\n", args...)
	}
}
