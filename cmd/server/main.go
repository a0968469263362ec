// symrec-server: trains an engine, then answers recognition requests on
// stdin/stdout using the wire protocol
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"symrec/m"
	"symrec/recognize"
	"symrec/utils"
	"symrec/wire"
)

var (
	verbose = flag.Bool("verbose", false, "Verbose output")
)

func main() {
	buildConfig := utils.ConfigFlags(flag.CommandLine)
	flag.Parse()
	utils.Verbose = *verbose
	utils.Output = os.Stderr

	cfg, err := buildConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log("Server starting (engine=%s, arch=%s)", cfg.Engine, utils.FormatArchitecture(cfg.Architecture))
	protocol := wire.NewProtocol(os.Stdin, os.Stdout)

	ds, err := cfg.LoadDataset()
	if err != nil {
		protocol.SendError(err)
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		os.Exit(1)
	}
	log("Loaded %d samples", ds.Len())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Progress goes out at most once per percent so an idle client's pipe
	// cannot fill up before it reads.
	var sendErr error
	lastPercent := -1
	res, err := cfg.Train(ctx, ds, func(p m.Progress) {
		percent := int(p.Progress * 100)
		if sendErr != nil || (percent == lastPercent && p.Progress < 1) {
			return
		}
		lastPercent = percent
		sendErr = protocol.SendProgress(wire.NewProgressPayload(p))
	})
	if err != nil && (res == nil || !errors.Is(err, context.Canceled)) {
		protocol.SendError(err)
		fmt.Fprintf(os.Stderr, "Training failed: %v\n", err)
		os.Exit(1)
	}
	if sendErr != nil {
		fmt.Fprintf(os.Stderr, "Error sending progress: %v\n", sendErr)
		os.Exit(1)
	}
	log("Model ready after %d epochs, error %.6f", res.Epochs, res.FinalError)

	rec, err := cfg.NewRecognizer(res.Engine)
	if err != nil {
		protocol.SendError(err)
		os.Exit(1)
	}

	log("Waiting for frames...")
	for {
		frame, err := protocol.ReceiveFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			log("Error: %v", err)
			protocol.SendError(err)
			break
		}
		log("Frame %d received (%d bytes)", frame.ID, len(frame.Image))

		pred, err := predict(rec, frame)
		if err != nil {
			log("Frame %d: %v", frame.ID, err)
			protocol.SendError(err)
			continue
		}
		if err := protocol.SendPrediction(pred); err != nil {
			fmt.Fprintf(os.Stderr, "Error sending prediction: %v\n", err)
			os.Exit(1)
		}
		log("Frame %d recognized as %s", frame.ID, pred.Name)
	}

	protocol.SendDone()
	log("Server done")
}

func predict(rec *recognize.Recognizer, frame *wire.FramePayload) (wire.PredictionPayload, error) {
	img, err := recognize.DecodeImage(frame.Image)
	if err != nil {
		return wire.PredictionPayload{}, fmt.Errorf("frame %d: %w", frame.ID, err)
	}
	s, err := rec.Recognize(img)
	if errors.Is(err, recognize.ErrNoSymbol) {
		return wire.PredictionPayload{ID: frame.ID, Class: m.Unlabeled, NoSymbol: true}, nil
	}
	if err != nil {
		return wire.PredictionPayload{}, err
	}
	return wire.PredictionPayload{
		ID:     frame.ID,
		Class:  s.Recognized,
		Name:   recognize.Name(s.Recognized),
		Output: s.Output,
	}, nil
}

func log(format string, args ...interface{}) {
	if *verbose {
		fmt.Fprintf(os.Stderr, "[SERVER] "+format+"\n", args...)
	}
}
