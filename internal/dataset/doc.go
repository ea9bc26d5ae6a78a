// Package dataset loads the raw bank-customer churn tables.
//
// Tables are read from CSV or Excel files into typed Customer records.
// Every record is validated on load (enum membership for Geography and
// Gender, 0/1 ranges for the indicator columns); a malformed row aborts
// the load with its row number, since the pipeline has no partial-failure
// recovery. Missing cells are counted per column before parsing so the
// exploration stage can report them.
package dataset
