package workflow

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// StagedRow is one candidate ledger row after shape normalization (column
// mapping or unpivoting) but before validation and account resolution.
type StagedRow struct {
	RowNum        int // 1-based source row, matching what the user sees in their spreadsheet
	Date          time.Time
	HasDate       bool
	AccountNumber string
	AccountName   string
	Description   string
	Reference     *string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
	PeriodLabel   string // pivoted imports only
	RawDate       string // what the date cell actually said, for error messages
}

// RowError reports one problem on one row. Rows are independent: an error
// here never blocks other rows from importing.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"error"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Message)
}

// ValidateStagedRow applies the double-entry row invariants. Every problem
// on the row is reported, not just the first.
func ValidateStagedRow(row *StagedRow) []RowError {
	var errs []RowError

	if !row.HasDate {
		message := "Date is required"
		if row.PeriodLabel != "" {
			message = fmt.Sprintf("Unparseable period label: %s", row.PeriodLabel)
		} else if row.RawDate != "" {
			message = fmt.Sprintf("Invalid date format: %s", row.RawDate)
		}
		errs = append(errs, RowError{Row: row.RowNum, Field: "date", Message: message})
	}

	if row.AccountNumber == "" {
		errs = append(errs, RowError{Row: row.RowNum, Field: "account_number", Message: "Account number is required"})
	}

	if row.Debit.IsNegative() || row.Credit.IsNegative() {
		errs = append(errs, RowError{Row: row.RowNum, Field: "amounts", Message: "Amounts cannot be negative"})
	}
	if row.Debit.IsZero() && row.Credit.IsZero() {
		errs = append(errs, RowError{Row: row.RowNum, Field: "amounts", Message: "Either debit or credit must be greater than 0"})
	}
	if row.Debit.IsPositive() && row.Credit.IsPositive() {
		errs = append(errs, RowError{Row: row.RowNum, Field: "amounts", Message: "Transaction cannot have both debit and credit"})
	}

	return errs
}

// ValidateStagedRows splits staged rows into accepted rows and the error
// list for the rejected ones. The caller decides whether errors block the
// import.
func ValidateStagedRows(rows []*StagedRow) ([]*StagedRow, []RowError) {
	accepted := make([]*StagedRow, 0, len(rows))
	var errs []RowError
	for _, row := range rows {
		rowErrs := ValidateStagedRow(row)
		if len(rowErrs) > 0 {
			errs = append(errs, rowErrs...)
			continue
		}
		accepted = append(accepted, row)
	}
	return accepted, errs
}
