package stats

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"churncli/internal/features"
)

// Summary holds descriptive statistics for one numeric column.
type Summary struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// Describe computes descriptive statistics for the named columns of a
// frame. Quartiles use the empirical quantile convention.
func Describe(frame *features.Frame, columns []string) ([]Summary, error) {
	summaries := make([]Summary, 0, len(columns))
	for _, name := range columns {
		values, err := frame.Column(name)
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("column %q is empty", name)
		}

		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)

		summaries = append(summaries, Summary{
			Column: name,
			Count:  len(values),
			Mean:   stat.Mean(values, nil),
			Std:    stat.StdDev(values, nil),
			Min:    sorted[0],
			Q25:    stat.Quantile(0.25, stat.Empirical, sorted, nil),
			Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
			Q75:    stat.Quantile(0.75, stat.Empirical, sorted, nil),
			Max:    sorted[len(sorted)-1],
		})
	}
	return summaries, nil
}

// CorrelationMatrix computes the Pearson correlation matrix of the named
// columns, in the given order.
func CorrelationMatrix(frame *features.Frame, columns []string) ([][]float64, error) {
	data := make([][]float64, len(columns))
	for i, name := range columns {
		values, err := frame.Column(name)
		if err != nil {
			return nil, err
		}
		data[i] = values
	}

	matrix := make([][]float64, len(columns))
	for i := range columns {
		matrix[i] = make([]float64, len(columns))
		for j := range columns {
			if i == j {
				matrix[i][j] = 1
				continue
			}
			matrix[i][j] = stat.Correlation(data[i], data[j], nil)
		}
	}
	return matrix, nil
}

// Histogram bins values into count equal-width bins over [min, max].
// Returned edges have len(counts)+1 entries.
func Histogram(values []float64, bins int) (edges []float64, counts []int, err error) {
	if bins < 1 {
		return nil, nil, fmt.Errorf("bins must be positive, got %d", bins)
	}
	if len(values) == 0 {
		return nil, nil, fmt.Errorf("no values to bin")
	}

	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	edges = make([]float64, bins+1)
	width := (max - min) / float64(bins)
	for i := range edges {
		edges[i] = min + float64(i)*width
	}
	edges[bins] = max

	counts = make([]int, bins)
	if width == 0 {
		counts[0] = len(values)
		return edges, counts, nil
	}
	for _, v := range values {
		b := int((v - min) / width)
		if b >= bins {
			b = bins - 1
		}
		counts[b]++
	}
	return edges, counts, nil
}
