// symrec-client: sends image files to a symrec-server over stdin/stdout and
// prints the predictions
//
// Usage (with a pair of fifos):
//
//	mkfifo up down
//	symrec-server -images=drawings/ < up > down &
//	symrec-client frame1.png frame2.png > up < down
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"symrec/utils"
	"symrec/wire"
)

var (
	verbose = flag.Bool("verbose", false, "Verbose output")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose
	utils.Output = os.Stderr

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: symrec-client [flags] image...")
		os.Exit(1)
	}

	protocol := wire.NewProtocol(os.Stdin, os.Stdout)
	stats := &utils.TimingStats{}
	totalStart := time.Now()
	lastEpoch := 0

	for id, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
			os.Exit(1)
		}

		start := time.Now()
		if err := protocol.SendFrame(id, data); err != nil {
			fmt.Fprintf(os.Stderr, "Error sending frame: %v\n", err)
			os.Exit(1)
		}
		log("Frame %d sent (%s)", id, path)

		pred, err := protocol.ReceivePrediction(func(p wire.ProgressPayload) {
			lastEpoch = p.Epoch
			log("Server training: epoch %d, progress %.0f%%, error %.6f", p.Epoch, p.Progress*100, p.Error)
		})
		if err == io.EOF {
			fmt.Fprintln(os.Stderr, "Server closed the connection")
			break
		}
		if err != nil {
			fmt.Printf("%s: error: %v\n", path, err)
			continue
		}
		stats.InferenceTime += time.Since(start)
		stats.Frames++

		if pred.NoSymbol {
			fmt.Printf("%s: no symbol\n", path)
			continue
		}
		fmt.Printf("%s: %s\n", path, pred.Name)
	}

	protocol.SendDone()
	stats.TotalTime = time.Since(totalStart)
	log("Server trained for %d epochs", lastEpoch)
	utils.PrintTimingStats(stats, 0)
}

func log(format string, args ...interface{}) {
	if *verbose {
		fmt.Fprintf(os.Stderr, "[CLIENT] "+format+"\n", args...)
	}
}
