package features

import "fmt"

// Frame is a column-labeled numeric matrix, optionally carrying the 0/1
// churn labels. Frames are value-built and never mutated after
// construction.
type Frame struct {
	Columns []string
	Rows    [][]float64
	Labels  []int // nil when unlabeled
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.Rows) }

// ColumnIndex returns the index of the named column, or -1.
func (f *Frame) ColumnIndex(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of the named column.
func (f *Frame) Column(name string) ([]float64, error) {
	idx := f.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("no column %q", name)
	}
	out := make([]float64, len(f.Rows))
	for i, row := range f.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Select returns a new frame restricted to the named columns, preserving
// labels. It errors when a column is absent.
func (f *Frame) Select(columns []string) (*Frame, error) {
	indices := make([]int, len(columns))
	for i, name := range columns {
		idx := f.ColumnIndex(name)
		if idx < 0 {
			return nil, fmt.Errorf("no column %q", name)
		}
		indices[i] = idx
	}

	rows := make([][]float64, len(f.Rows))
	for i, row := range f.Rows {
		selected := make([]float64, len(indices))
		for j, idx := range indices {
			selected[j] = row[idx]
		}
		rows[i] = selected
	}

	out := &Frame{Columns: append([]string(nil), columns...), Rows: rows}
	if f.Labels != nil {
		out.Labels = append([]int(nil), f.Labels...)
	}
	return out, nil
}
