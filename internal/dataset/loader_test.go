package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const trainHeader = "id,CustomerId,Surname,CreditScore,Geography,Gender,Age,Tenure,Balance,NumOfProducts,HasCrCard,IsActiveMember,EstimatedSalary,Exited\n"

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "table.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadTrainCSV(t *testing.T) {
	content := trainHeader +
		"0,15634602,Hargrave,619,France,Female,42,2,0,1,1,1,101348.88,1\n" +
		"1,15647311,Hill,608,Spain,Female,41,1,83807.86,1,0,1,112542.58,0\n"
	table, err := Load(context.Background(), writeTempCSV(t, content), true)
	require.NoError(t, err)

	require.Equal(t, 2, table.Len())
	assert.True(t, table.Labeled)

	first := table.Customers[0]
	assert.Equal(t, int64(0), first.ID)
	assert.Equal(t, int64(15634602), first.CustomerID)
	assert.Equal(t, "Hargrave", first.Surname)
	assert.Equal(t, "France", first.Geography)
	assert.Equal(t, "Female", first.Gender)
	assert.Equal(t, 42.0, first.Age)
	assert.Equal(t, 1, first.HasCrCard)
	require.NotNil(t, first.Exited)
	assert.Equal(t, 1, *first.Exited)

	labels, err := table.Labels()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, labels)
}

func TestLoadTestCSVWithoutLabel(t *testing.T) {
	content := "id,CustomerId,Surname,CreditScore,Geography,Gender,Age,Tenure,Balance,NumOfProducts,HasCrCard,IsActiveMember,EstimatedSalary\n" +
		"7,15619304,Onio,502,Germany,Male,53,8,159660.8,3,1,0,113931.57\n"
	table, err := Load(context.Background(), writeTempCSV(t, content), false)
	require.NoError(t, err)

	assert.False(t, table.Labeled)
	assert.Nil(t, table.Customers[0].Exited)
	assert.Equal(t, []int64{7}, table.IDs())

	_, err = table.Labels()
	assert.Error(t, err)
}

func TestLoadFallsBackToCustomerID(t *testing.T) {
	content := "CustomerId,Surname,CreditScore,Geography,Gender,Age,Tenure,Balance,NumOfProducts,HasCrCard,IsActiveMember,EstimatedSalary\n" +
		"15619304,Onio,502,Germany,Male,53,8,159660.8,3,1,0,113931.57\n"
	table, err := Load(context.Background(), writeTempCSV(t, content), false)
	require.NoError(t, err)
	assert.Equal(t, int64(15619304), table.Customers[0].ID)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{
			name: "missing_column",
			content: "id,CustomerId,Surname\n" +
				"0,1,Hargrave\n",
			errPart: "missing required column",
		},
		{
			name: "bad_numeric",
			content: trainHeader +
				"0,15634602,Hargrave,abc,France,Female,42,2,0,1,1,1,101348.88,1\n",
			errPart: "invalid numeric value",
		},
		{
			name: "bad_geography",
			content: trainHeader +
				"0,15634602,Hargrave,619,Atlantis,Female,42,2,0,1,1,1,101348.88,1\n",
			errPart: "row 2",
		},
		{
			name: "indicator_out_of_range",
			content: trainHeader +
				"0,15634602,Hargrave,619,France,Female,42,2,0,1,2,1,101348.88,1\n",
			errPart: "not 0 or 1",
		},
		{
			name:    "no_data_rows",
			content: trainHeader,
			errPart: "no data rows",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), writeTempCSV(t, tt.content), true)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.parquet")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	_, err := Load(context.Background(), path, true)
	assert.ErrorContains(t, err, "unsupported table format")
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]any{
		{"id", "CustomerId", "Surname", "CreditScore", "Geography", "Gender", "Age", "Tenure", "Balance", "NumOfProducts", "HasCrCard", "IsActiveMember", "EstimatedSalary", "Exited"},
		{0, 15634602, "Hargrave", 619, "France", "Female", 42, 2, 0, 1, 1, 1, 101348.88, 1},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "train.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := Load(context.Background(), path, true)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "Hargrave", table.Customers[0].Surname)
	require.NotNil(t, table.Customers[0].Exited)
	assert.Equal(t, 1, *table.Customers[0].Exited)
}

func TestMissingCellCounts(t *testing.T) {
	content := "id,CustomerId,Surname,CreditScore,Geography,Gender,Age,Tenure,Balance,NumOfProducts,HasCrCard,IsActiveMember,EstimatedSalary\n" +
		"7,15619304,Onio,502,Germany,Male,53,8,159660.8,3,1,0,113931.57\n"
	table, err := Load(context.Background(), writeTempCSV(t, content), false)
	require.NoError(t, err)
	for column, count := range table.Missing {
		assert.Zero(t, count, column)
	}
}
