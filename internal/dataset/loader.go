package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"churncli/internal/infrastructure"
)

// Columns of the raw table, in canonical order. The "id" column is the
// submission identifier added by the competition harness; older exports of
// the dataset carry only CustomerId, which is used as a fallback.
const (
	colID              = "id"
	colCustomerID      = "customerid"
	colSurname         = "surname"
	colCreditScore     = "creditscore"
	colGeography       = "geography"
	colGender          = "gender"
	colAge             = "age"
	colTenure          = "tenure"
	colBalance         = "balance"
	colNumOfProducts   = "numofproducts"
	colHasCrCard       = "hascrcard"
	colIsActiveMember  = "isactivemember"
	colEstimatedSalary = "estimatedsalary"
	colExited          = "exited"
)

// Load reads a customer table from path, dispatching on the file
// extension (.csv or .xlsx). labeled states whether the Exited column is
// expected to be present.
func Load(ctx context.Context, path string, labeled bool) (*Table, error) {
	logger := infrastructure.LoggerFromContext(ctx)

	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx":
		rows, err = readXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported table format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: no data rows", path)
	}

	table, err := parseRows(rows, labeled)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	logger.InfoContext(ctx, "loaded customer table",
		slog.String("path", path),
		slog.Int("rows", table.Len()),
		slog.Bool("labeled", labeled))
	return table, nil
}

// readCSV reads all records from a CSV file.
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

// readXLSX reads all rows from the first sheet of an Excel workbook.
func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

// parseRows converts header+data rows into validated Customer records and
// counts missing cells per column along the way.
func parseRows(rows [][]string, labeled bool) (*Table, error) {
	header := rows[0]
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	required := []string{
		colCustomerID, colSurname, colCreditScore, colGeography, colGender,
		colAge, colTenure, colBalance, colNumOfProducts, colHasCrCard,
		colIsActiveMember, colEstimatedSalary,
	}
	if labeled {
		required = append(required, colExited)
	}
	for _, name := range required {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}

	missing := make(map[string]int, len(header))
	customers := make([]Customer, 0, len(rows)-1)

	for rowNum, row := range rows[1:] {
		for name, col := range index {
			if col >= len(row) || strings.TrimSpace(row[col]) == "" {
				missing[name]++
			}
		}

		c, err := parseCustomer(row, index, labeled)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum+2, err)
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum+2, err)
		}
		customers = append(customers, c)
	}

	return &Table{Customers: customers, Labeled: labeled, Missing: missing}, nil
}

// parseCustomer builds one Customer from a raw row.
func parseCustomer(row []string, index map[string]int, labeled bool) (Customer, error) {
	var c Customer
	var err error

	cell := func(name string) string {
		col, ok := index[name]
		if !ok || col >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[col])
	}

	if _, ok := index[colID]; ok {
		if c.ID, err = parseInt(cell(colID), colID); err != nil {
			return c, err
		}
	}
	if c.CustomerID, err = parseInt(cell(colCustomerID), colCustomerID); err != nil {
		return c, err
	}
	if _, ok := index[colID]; !ok {
		c.ID = c.CustomerID
	}

	c.Surname = cell(colSurname)
	c.Geography = cell(colGeography)
	c.Gender = cell(colGender)

	if c.CreditScore, err = parseFloat(cell(colCreditScore), colCreditScore); err != nil {
		return c, err
	}
	if c.Age, err = parseFloat(cell(colAge), colAge); err != nil {
		return c, err
	}
	if c.Tenure, err = parseFloat(cell(colTenure), colTenure); err != nil {
		return c, err
	}
	if c.Balance, err = parseFloat(cell(colBalance), colBalance); err != nil {
		return c, err
	}
	if c.EstimatedSalary, err = parseFloat(cell(colEstimatedSalary), colEstimatedSalary); err != nil {
		return c, err
	}

	products, err := parseFloat(cell(colNumOfProducts), colNumOfProducts)
	if err != nil {
		return c, err
	}
	c.NumOfProducts = int(products)

	if c.HasCrCard, err = parseBinary(cell(colHasCrCard), colHasCrCard); err != nil {
		return c, err
	}
	if c.IsActiveMember, err = parseBinary(cell(colIsActiveMember), colIsActiveMember); err != nil {
		return c, err
	}

	if labeled {
		exited, err := parseBinary(cell(colExited), colExited)
		if err != nil {
			return c, err
		}
		c.Exited = &exited
	}

	return c, nil
}

// parseFloat parses a numeric cell.
func parseFloat(s, column string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: invalid numeric value %q", column, s)
	}
	return v, nil
}

// parseInt parses an integer cell, tolerating float-formatted exports
// like "15634602.0".
func parseInt(s, column string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("column %s: invalid integer value %q", column, s)
	}
	return int64(f), nil
}

// parseBinary parses a 0/1 indicator cell, tolerating "0.0"/"1.0".
func parseBinary(s, column string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: invalid indicator value %q", column, s)
	}
	switch f {
	case 0:
		return 0, nil
	case 1:
		return 1, nil
	}
	return 0, fmt.Errorf("column %s: indicator value %q is not 0 or 1", column, s)
}
