package dataset

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Customer is one row of the raw churn table. Exited is nil for the
// unlabeled test table.
type Customer struct {
	ID              int64   `validate:"gte=0"`
	CustomerID      int64   `validate:"gte=0"`
	Surname         string  `validate:"required"`
	CreditScore     float64 `validate:"gte=0"`
	Geography       string  `validate:"oneof=France Spain Germany"`
	Gender          string  `validate:"oneof=Male Female"`
	Age             float64 `validate:"gte=0"`
	Tenure          float64 `validate:"gte=0"`
	Balance         float64 `validate:"gte=0"`
	NumOfProducts   int     `validate:"gte=0"`
	HasCrCard       int     `validate:"oneof=0 1"`
	IsActiveMember  int     `validate:"oneof=0 1"`
	EstimatedSalary float64 `validate:"gte=0"`
	Exited          *int
}

// Table is a loaded customer table together with per-column missing-cell
// counts from the raw file.
type Table struct {
	Customers []Customer
	Labeled   bool
	Missing   map[string]int
}

// Len returns the number of rows in the table.
func (t *Table) Len() int { return len(t.Customers) }

// IDs returns the submission identifier of every row, in input order.
func (t *Table) IDs() []int64 {
	ids := make([]int64, len(t.Customers))
	for i, c := range t.Customers {
		ids[i] = c.ID
	}
	return ids
}

// Labels returns the 0/1 churn labels. It errors when the table is
// unlabeled or any row is missing its label.
func (t *Table) Labels() ([]int, error) {
	if !t.Labeled {
		return nil, fmt.Errorf("table is unlabeled")
	}
	labels := make([]int, len(t.Customers))
	for i, c := range t.Customers {
		if c.Exited == nil {
			return nil, fmt.Errorf("row %d: missing label", i)
		}
		labels[i] = *c.Exited
	}
	return labels, nil
}

var recordValidator = validator.New()

// Validate checks the record's enum and range constraints.
func (c *Customer) Validate() error {
	if err := recordValidator.Struct(c); err != nil {
		return err
	}
	if c.Exited != nil && *c.Exited != 0 && *c.Exited != 1 {
		return fmt.Errorf("exited must be 0 or 1, got %d", *c.Exited)
	}
	return nil
}
