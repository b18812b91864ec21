package reports

import (
	"bytes"
	"testing"
	"time"

	"github.com/mmdatafocus/consolidation_backend/models"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func exportFixture() (*models.ConsolidationRun, []*models.CompanyBreakdown) {
	run := &models.ConsolidationRun{
		ID:                   41,
		OrganizationId:       "org-1",
		RunName:              "Consolidation 2024-03",
		FiscalYear:           2024,
		FiscalPeriod:         3,
		PeriodEndDate:        time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
		Status:               models.ConsolidationStatusCompleted,
		TotalAssets:          decimal.NewFromInt(1450000),
		TotalLiabilities:     decimal.NewFromInt(50000),
		TotalEquity:          decimal.NewFromInt(1400000),
		TotalRevenue:         decimal.NewFromInt(640000),
		TotalExpenses:        decimal.NewFromInt(500000),
		NetIncome:            decimal.NewFromInt(140000),
		NciEquity:            decimal.NewFromInt(100000),
		NciIncome:            decimal.NewFromInt(10000),
		ParentEquity:         decimal.NewFromInt(1300000),
		ParentNetIncome:      decimal.NewFromInt(130000),
		EliminationCount:     2,
		UnmappedAccountCount: 1,
	}
	breakdown := []*models.CompanyBreakdown{
		{
			CompanyId:   1,
			CompanyName: "Alpha Holdings",
			Currency:    "USD",
			Assets:      decimal.NewFromInt(1000000),
			Liabilities: decimal.NewFromInt(0),
			Equity:      decimal.NewFromInt(1000000),
			Revenue:     decimal.NewFromInt(500000),
			Expenses:    decimal.NewFromInt(400000),
			NetIncome:   decimal.NewFromInt(100000),
		},
		{
			CompanyId:   2,
			CompanyName: "Beta Subsidiary",
			Currency:    "USD",
			Assets:      decimal.NewFromInt(450000),
			Liabilities: decimal.NewFromInt(50000),
			Equity:      decimal.NewFromInt(400000),
			Revenue:     decimal.NewFromInt(140000),
			Expenses:    decimal.NewFromInt(100000),
			NetIncome:   decimal.NewFromInt(40000),
		},
	}
	return run, breakdown
}

func renderWorkbook(t *testing.T) *excelize.File {
	t.Helper()
	run, breakdown := exportFixture()
	var buf bytes.Buffer
	if err := WriteRunWorkbook(run, breakdown, &buf); err != nil {
		t.Fatalf("expected workbook to render, got %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("expected a readable workbook, got %v", err)
	}
	return f
}

func cellValue(t *testing.T, f *excelize.File, sheet string, cell string) string {
	t.Helper()
	value, err := f.GetCellValue(sheet, cell)
	if err != nil {
		t.Fatalf("expected to read %s!%s, got %v", sheet, cell, err)
	}
	return value
}

func TestWriteRunWorkbook_SheetLayout(t *testing.T) {
	f := renderWorkbook(t)
	defer f.Close()

	sheets := f.GetSheetList()
	want := map[string]bool{summarySheetName: true, balanceSheetName: true, incomeSheetName: true}
	for _, sheet := range sheets {
		if sheet == "Sheet1" {
			t.Fatalf("expected the default sheet to be removed, got %v", sheets)
		}
		delete(want, sheet)
	}
	if len(want) != 0 {
		t.Fatalf("expected all statement sheets, missing %v in %v", want, sheets)
	}
}

func TestWriteRunWorkbook_BalanceSheetCells(t *testing.T) {
	f := renderWorkbook(t)
	defer f.Close()

	checks := []struct {
		cell string
		want string
	}{
		{"B1", "Alpha Holdings"},
		{"C1", "Beta Subsidiary"},
		{"D1", "Consolidated"},
		{"A2", "Total Assets"},
		{"B2", "1000000"},
		{"C2", "450000"},
		{"D2", "1450000"},
		{"A3", "Total Liabilities"},
		{"D3", "50000"},
		{"A4", "Total Equity"},
		{"B4", "1000000"},
		{"D4", "1400000"},
		{"A5", "  Attributable to Parent"},
		{"D5", "1300000"},
		{"A6", "  Non-controlling Interests"},
		{"D6", "100000"},
		{"A7", "Total Liabilities & Equity"},
		{"B7", "1000000"},
		{"C7", "450000"},
		{"D7", "1450000"},
	}
	for _, check := range checks {
		if got := cellValue(t, f, balanceSheetName, check.cell); got != check.want {
			t.Fatalf("expected %s to hold %q, got %q", check.cell, check.want, got)
		}
	}

	// attribution lines carry no per-entity figures
	for _, cell := range []string{"B5", "C5", "B6", "C6"} {
		if got := cellValue(t, f, balanceSheetName, cell); got != "" {
			t.Fatalf("expected %s to be empty, got %q", cell, got)
		}
	}
}

func TestWriteRunWorkbook_IncomeStatementCells(t *testing.T) {
	f := renderWorkbook(t)
	defer f.Close()

	checks := []struct {
		cell string
		want string
	}{
		{"A2", "Revenue"},
		{"B2", "500000"},
		{"C2", "140000"},
		{"D2", "640000"},
		{"A3", "Expenses"},
		{"D3", "500000"},
		{"A4", "Net Income"},
		{"B4", "100000"},
		{"C4", "40000"},
		{"D4", "140000"},
		{"A5", "  Attributable to Parent"},
		{"D5", "130000"},
		{"A6", "  Non-controlling Interests"},
		{"D6", "10000"},
	}
	for _, check := range checks {
		if got := cellValue(t, f, incomeSheetName, check.cell); got != check.want {
			t.Fatalf("expected %s to hold %q, got %q", check.cell, check.want, got)
		}
	}
}

func TestWriteRunWorkbook_SummaryCells(t *testing.T) {
	f := renderWorkbook(t)
	defer f.Close()

	checks := []struct {
		cell string
		want string
	}{
		{"A1", "Consolidated Financial Report"},
		{"B2", "Consolidation 2024-03"},
		{"B3", "2024-03"},
		{"B4", "2024-03-31"},
		{"B5", "Completed"},
		{"B6", "2"},
		{"B7", "2"},
		{"B8", "1"},
		{"B10", "1450000"},
		{"B13", "1300000"},
		{"B14", "100000"},
		{"B16", "130000"},
		{"B17", "10000"},
	}
	for _, check := range checks {
		if got := cellValue(t, f, summarySheetName, check.cell); got != check.want {
			t.Fatalf("expected %s to hold %q, got %q", check.cell, check.want, got)
		}
	}
}

func TestWriteRunWorkbook_NoEntities(t *testing.T) {
	run, _ := exportFixture()
	var buf bytes.Buffer
	if err := WriteRunWorkbook(run, nil, &buf); err != nil {
		t.Fatalf("expected an empty breakdown to render, got %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("expected a readable workbook, got %v", err)
	}
	defer f.Close()

	if got := cellValue(t, f, balanceSheetName, "B1"); got != "Consolidated" {
		t.Fatalf("expected the consolidated column to follow the labels, got %q", got)
	}
	if got := cellValue(t, f, balanceSheetName, "B2"); got != "1450000" {
		t.Fatalf("expected consolidated assets, got %q", got)
	}
}
