package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// RunRecord is one line of the run ledger.
type RunRecord struct {
	RunID      string
	Started    time.Time
	Engine     string
	Arch       []int
	Seed       uint64
	Samples    int
	Epochs     int
	FinalError float64
	Accuracy   float64
	Training   time.Duration
}

var ledgerHeader = []string{"run_id", "started", "engine", "arch", "seed", "samples", "epochs", "final_error", "accuracy", "training_us"}

// NewRunID returns a fresh identifier for a ledger row.
func NewRunID() string {
	return uuid.NewString()
}

// AppendRunRecord appends rec to the CSV ledger at path, writing the header
// when the file is new. An empty RunID is filled in.
func AppendRunRecord(path string, rec RunRecord) error {
	if rec.RunID == "" {
		rec.RunID = NewRunID()
	}
	_, statErr := os.Stat(path)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	w := csv.NewWriter(f)
	if fresh {
		w.Write(ledgerHeader)
	}
	w.Write([]string{
		rec.RunID,
		rec.Started.UTC().Format(time.RFC3339),
		rec.Engine,
		FormatArchitecture(rec.Arch),
		strconv.FormatUint(rec.Seed, 10),
		strconv.Itoa(rec.Samples),
		strconv.Itoa(rec.Epochs),
		strconv.FormatFloat(rec.FinalError, 'g', -1, 64),
		strconv.FormatFloat(rec.Accuracy, 'f', 4, 64),
		strconv.FormatFloat(DurationUS(rec.Training), 'f', 0, 64),
	})
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	return f.Close()
}
