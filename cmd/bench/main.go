// symrec-bench: trains every requested engine over a grid of seeds and core
// counts on one dataset and records convergence and timing as CSV
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"symrec/m"
	"symrec/utils"
)

// parseCSVInts parses a comma-separated list of integers
func parseCSVInts(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid int %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func main() {
	var enginesCSV string
	var seedsCSV string
	var coresCSV string
	var outPath string

	buildConfig := utils.ConfigFlags(flag.CommandLine)
	flag.StringVar(&enginesCSV, "engines", strings.Join(m.EngineNames(), ","), "Comma-separated list of engines to run")
	flag.StringVar(&seedsCSV, "seeds", "1,2,3", "Comma-separated list of seeds")
	flag.StringVar(&coresCSV, "cores", strconv.Itoa(runtime.NumCPU()), "Comma-separated list of core counts (parallel runs only)")
	flag.StringVar(&outPath, "out", "bench_results.csv", "Output CSV path")
	flag.Parse()

	cfg, err := buildConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}
	seeds, err := parseCSVInts(seedsCSV)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid seeds: %v\n", err)
		os.Exit(2)
	}
	coresList, err := parseCSVInts(coresCSV)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid cores: %v\n", err)
		os.Exit(2)
	}
	if !cfg.Parallel {
		coresList = []int{1}
	}
	engines := []string{}
	for _, e := range strings.Split(enginesCSV, ",") {
		if es := strings.TrimSpace(e); es != "" {
			engines = append(engines, es)
		}
	}

	ds, err := cfg.LoadDataset()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load data: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create output CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	w.Write([]string{"run_id", "engine", "seed", "num_cores", "epochs", "final_error", "accuracy", "train_time", "epoch_time"})

	for _, engine := range engines {
		for _, seed := range seeds {
			for _, cores := range coresList {
				runtime.GOMAXPROCS(cores)
				run := *cfg
				run.Engine = engine
				run.Seed = uint64(seed)

				// Engines that shuffle reorder the dataset in place.
				runDS := ds.Clone()
				res, err := run.Train(context.Background(), runDS, nil)
				if err != nil {
					fmt.Fprintf(os.Stderr, "skip %s seed %d: %v\n", engine, seed, err)
					continue
				}
				accuracy, err := runDS.TestNetwork(res.Engine)
				if err != nil {
					fmt.Fprintf(os.Stderr, "skip %s seed %d: %v\n", engine, seed, err)
					continue
				}
				perEpoch := time.Duration(0)
				if res.Epochs > 0 {
					perEpoch = res.Elapsed / time.Duration(res.Epochs)
				}
				w.Write([]string{
					utils.NewRunID(),
					engine,
					strconv.Itoa(seed),
					strconv.Itoa(cores),
					strconv.Itoa(res.Epochs),
					strconv.FormatFloat(res.FinalError, 'g', -1, 64),
					fmt.Sprintf("%.4f", accuracy),
					fmt.Sprintf("%.6f", res.Elapsed.Seconds()),
					fmt.Sprintf("%.6f", perEpoch.Seconds()),
				})
			}
			w.Flush()
		}
	}

	fmt.Printf("Wrote results to %s\n", outPath)
}
