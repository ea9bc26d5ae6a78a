package exporter

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readSubmission(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteSubmission(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "Logistic_Model.csv")
	ids := []int64{10, 11, 12}
	probs := []float64{0.25, 0, 1}

	require.NoError(t, WriteSubmission(context.Background(), path, ids, probs))

	records := readSubmission(t, path)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"id", "Exited"}, records[0])

	seen := make(map[string]bool)
	for i, record := range records[1:] {
		require.Len(t, record, 2)
		assert.Equal(t, strconv.FormatInt(ids[i], 10), record[0])
		assert.False(t, seen[record[0]], "duplicate id %s", record[0])
		seen[record[0]] = true

		p, err := strconv.ParseFloat(record[1], 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
		assert.Equal(t, probs[i], p)
	}
}

func TestWriteSubmissionErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		ids     []int64
		probs   []float64
		errPart string
	}{
		{name: "empty", ids: nil, probs: nil, errPart: "no rows"},
		{name: "length_mismatch", ids: []int64{1, 2}, probs: []float64{0.5}, errPart: "ids vs"},
		{name: "duplicate_id", ids: []int64{1, 1}, probs: []float64{0.5, 0.6}, errPart: "duplicate id"},
		{name: "probability_below_zero", ids: []int64{1, 2}, probs: []float64{-0.1, 0.5}, errPart: "outside [0,1]"},
		{name: "probability_above_one", ids: []int64{1, 2}, probs: []float64{0.5, 1.1}, errPart: "outside [0,1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WriteSubmission(context.Background(), filepath.Join(dir, tt.name+".csv"), tt.ids, tt.probs)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}
