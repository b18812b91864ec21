package workflow

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validRow() *StagedRow {
	return &StagedRow{
		RowNum:        2,
		Date:          time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		HasDate:       true,
		AccountNumber: "1000",
		Debit:         decimal.NewFromInt(500),
	}
}

func TestValidateStagedRow_Accepts(t *testing.T) {
	if errs := ValidateStagedRow(validRow()); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateStagedRow_Messages(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*StagedRow)
		field   string
		message string
	}{
		{
			name:    "missing date",
			mutate:  func(r *StagedRow) { r.HasDate = false; r.RawDate = "" },
			field:   "date",
			message: "Date is required",
		},
		{
			name:    "unreadable date",
			mutate:  func(r *StagedRow) { r.HasDate = false; r.RawDate = "not-a-date" },
			field:   "date",
			message: "Invalid date format: not-a-date",
		},
		{
			name:    "opaque period label",
			mutate:  func(r *StagedRow) { r.HasDate = false; r.PeriodLabel = "Total" },
			field:   "date",
			message: "Unparseable period label: Total",
		},
		{
			name:    "missing account",
			mutate:  func(r *StagedRow) { r.AccountNumber = "" },
			field:   "account_number",
			message: "Account number is required",
		},
		{
			name:    "negative amount",
			mutate:  func(r *StagedRow) { r.Debit = decimal.NewFromInt(-5) },
			field:   "amounts",
			message: "Amounts cannot be negative",
		},
		{
			name:    "zero amounts",
			mutate:  func(r *StagedRow) { r.Debit = decimal.Zero },
			field:   "amounts",
			message: "Either debit or credit must be greater than 0",
		},
		{
			name:    "both sides",
			mutate:  func(r *StagedRow) { r.Credit = decimal.NewFromInt(500) },
			field:   "amounts",
			message: "Transaction cannot have both debit and credit",
		},
	}

	for _, tc := range cases {
		row := validRow()
		tc.mutate(row)
		errs := ValidateStagedRow(row)
		if len(errs) != 1 {
			t.Fatalf("%s: expected 1 error, got %v", tc.name, errs)
		}
		if errs[0].Field != tc.field || errs[0].Message != tc.message {
			t.Fatalf("%s: expected %s/%q, got %s/%q", tc.name, tc.field, tc.message, errs[0].Field, errs[0].Message)
		}
		if errs[0].Row != 2 {
			t.Fatalf("%s: expected the source row number carried, got %d", tc.name, errs[0].Row)
		}
	}
}

func TestValidateStagedRow_ReportsEveryProblem(t *testing.T) {
	row := &StagedRow{RowNum: 4}
	errs := ValidateStagedRow(row)
	if len(errs) != 3 {
		t.Fatalf("expected date, account and amount errors, got %v", errs)
	}
}

func TestValidateStagedRows_BadRowsNeverBlockOthers(t *testing.T) {
	good1 := validRow()
	bad := validRow()
	bad.AccountNumber = ""
	good2 := validRow()
	good2.RowNum = 5

	accepted, errs := ValidateStagedRows([]*StagedRow{good1, bad, good2})

	if len(accepted) != 2 {
		t.Fatalf("expected 2 accepted rows, got %d", len(accepted))
	}
	if accepted[0] != good1 || accepted[1] != good2 {
		t.Fatalf("expected accepted rows kept in order")
	}
	if len(errs) != 1 || errs[0].Message != "Account number is required" {
		t.Fatalf("expected the bad row reported, got %v", errs)
	}
}
