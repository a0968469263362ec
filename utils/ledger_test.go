package utils

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendRunRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.csv")
	rec := RunRecord{
		Started:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Engine:     "student",
		Arch:       []int{1024, 128, 64, 5},
		Seed:       7,
		Samples:    50,
		Epochs:     100,
		FinalError: 0.0125,
		Accuracy:   0.96,
		Training:   1500 * time.Microsecond,
	}
	require.NoError(t, AppendRunRecord(path, rec))
	rec.Engine = "rprop"
	require.NoError(t, AppendRunRecord(path, rec))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, ledgerHeader, rows[0])
	assert.Equal(t, []string{"2024-03-01T12:00:00Z", "student", "1024;128;64;5", "7", "50", "100", "0.0125", "0.9600", "1500"}, rows[1][1:])
	assert.Equal(t, "rprop", rows[2][2])

	_, err = uuid.Parse(rows[1][0])
	assert.NoError(t, err)
	assert.NotEqual(t, rows[1][0], rows[2][0])
}
