package features

import (
	"unicode"

	"churncli/internal/dataset"
)

// Column names produced by the transformer.
const (
	ColCreditScore      = "CreditScore"
	ColAge              = "Age"
	ColTenure           = "Tenure"
	ColBalance          = "Balance"
	ColNumOfProducts    = "NumOfProducts"
	ColHasCrCard        = "HasCrCard"
	ColIsActiveMember   = "IsActiveMember"
	ColEstimatedSalary  = "EstimatedSalary"
	ColNameLength       = "NameLength"
	ColTwoProd          = "TwoProd"
	ColBalanceGroup     = "BalanceGroup"
	ColGeographyFrance  = "Geography_France"
	ColGeographyGermany = "Geography_Germany"
	ColGeographySpain   = "Geography_Spain"
	ColGenderFemale     = "Gender_Female"
	ColGenderMale       = "Gender_Male"
)

// firstLetterAlphabet is the fixed category set for the surname initial.
// Pinning the alphabet keeps the encoded column set identical between the
// training and test tables regardless of which initials each happens to
// contain.
const firstLetterAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// FirstLetterOther collects surnames whose initial is not a latin letter.
const FirstLetterOther = "FirstLetter_Other"

// ModelColumns is the reduced feature set used by all three models, fixed
// after the lasso selection step. Geography_France is deliberately absent.
var ModelColumns = []string{
	ColGeographyGermany,
	ColGenderFemale,
	ColAge,
	ColBalanceGroup,
	ColIsActiveMember,
	ColTwoProd,
}

// SelectionColumns is the candidate set fed to the cross-validated lasso:
// the reduced set plus Geography_France, whose coefficient the lasso
// shrinks to zero on this dataset.
var SelectionColumns = append([]string{ColGeographyFrance}, ModelColumns...)

// FirstLetter returns the upper-cased initial of a surname, or 0 when the
// initial is not a latin letter.
func FirstLetter(surname string) rune {
	for _, r := range surname {
		r = unicode.ToUpper(r)
		if r >= 'A' && r <= 'Z' {
			return r
		}
		return 0
	}
	return 0
}

// NameLength returns the surname length in runes.
func NameLength(surname string) int {
	n := 0
	for range surname {
		n++
	}
	return n
}

// TwoProd is 1 iff the customer holds exactly two products.
func TwoProd(numOfProducts int) float64 {
	if numOfProducts == 2 {
		return 1
	}
	return 0
}

// BalanceGroup is 0 iff the balance is exactly zero, else 1.
func BalanceGroup(balance float64) float64 {
	if balance == 0 {
		return 0
	}
	return 1
}

// Encode transforms a raw table into the full one-hot encoded frame used
// by the exploration and selection stages. It is a pure function of its
// input: the same table always encodes to the same frame, and the column
// set is fixed up front so train and test tables line up exactly.
func Encode(table *dataset.Table) *Frame {
	columns := []string{
		ColCreditScore, ColAge, ColTenure, ColBalance, ColNumOfProducts,
		ColHasCrCard, ColIsActiveMember, ColEstimatedSalary,
		ColNameLength, ColTwoProd, ColBalanceGroup,
		ColGeographyFrance, ColGeographyGermany, ColGeographySpain,
		ColGenderFemale, ColGenderMale,
	}
	for _, letter := range firstLetterAlphabet {
		columns = append(columns, "FirstLetter_"+string(letter))
	}
	columns = append(columns, FirstLetterOther)

	rows := make([][]float64, table.Len())
	for i, c := range table.Customers {
		row := make([]float64, 0, len(columns))
		row = append(row,
			c.CreditScore, c.Age, c.Tenure, c.Balance, float64(c.NumOfProducts),
			float64(c.HasCrCard), float64(c.IsActiveMember), c.EstimatedSalary,
			float64(NameLength(c.Surname)), TwoProd(c.NumOfProducts), BalanceGroup(c.Balance),
			oneHot(c.Geography == "France"), oneHot(c.Geography == "Germany"), oneHot(c.Geography == "Spain"),
			oneHot(c.Gender == "Female"), oneHot(c.Gender == "Male"),
		)
		initial := FirstLetter(c.Surname)
		for _, letter := range firstLetterAlphabet {
			row = append(row, oneHot(initial == letter))
		}
		row = append(row, oneHot(initial == 0))
		rows[i] = row
	}

	frame := &Frame{Columns: columns, Rows: rows}
	if table.Labeled {
		labels := make([]int, table.Len())
		for i, c := range table.Customers {
			if c.Exited != nil {
				labels[i] = *c.Exited
			}
		}
		frame.Labels = labels
	}
	return frame
}

// ModelMatrix builds the reduced feature frame used for model training and
// prediction. The transformation is identical for the training and test
// tables except that labels are only attached when present.
func ModelMatrix(table *dataset.Table) *Frame {
	frame, err := Encode(table).Select(ModelColumns)
	if err != nil {
		// The encoded frame always contains ModelColumns.
		panic(err)
	}
	return frame
}

// SelectionMatrix builds the candidate frame for the lasso selection step.
func SelectionMatrix(table *dataset.Table) *Frame {
	frame, err := Encode(table).Select(SelectionColumns)
	if err != nil {
		panic(err)
	}
	return frame
}

func oneHot(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
