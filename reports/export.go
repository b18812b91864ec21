package reports

import (
	"fmt"
	"io"

	"github.com/mmdatafocus/consolidation_backend/models"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheetName = "Summary"
	balanceSheetName = "Balance Sheet"
	incomeSheetName  = "Income Statement"
)

// WriteRunWorkbook renders a completed consolidation run as an .xlsx
// workbook: a summary page, the consolidated balance sheet, and the income
// statement, each with one column per entity and the consolidated column
// last. Amounts are written as numbers so the file totals in a spreadsheet.
func WriteRunWorkbook(run *models.ConsolidationRun, breakdown []*models.CompanyBreakdown, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummarySheet(f, run, len(breakdown)); err != nil {
		return err
	}
	if err := writeBalanceSheet(f, run, breakdown); err != nil {
		return err
	}
	if err := writeIncomeStatement(f, run, breakdown); err != nil {
		return err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	index, err := f.GetSheetIndex(summarySheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	return f.Write(w)
}

func writeSummarySheet(f *excelize.File, run *models.ConsolidationRun, entityCount int) error {
	if _, err := f.NewSheet(summarySheetName); err != nil {
		return err
	}

	rows := []struct {
		label string
		value interface{}
	}{
		{"Consolidated Financial Report", nil},
		{"Run", run.RunName},
		{"Period", fmt.Sprintf("%d-%02d", run.FiscalYear, run.FiscalPeriod)},
		{"Period End", run.PeriodEndDate.Format("2006-01-02")},
		{"Status", string(run.Status)},
		{"Entities Included", entityCount},
		{"Eliminations", run.EliminationCount},
		{"Unmapped Accounts", run.UnmappedAccountCount},
		{"", nil},
		{"Total Assets", amount(run.TotalAssets)},
		{"Total Liabilities", amount(run.TotalLiabilities)},
		{"Total Equity", amount(run.TotalEquity)},
		{"  Attributable to Parent", amount(run.ParentEquity)},
		{"  Non-controlling Interests", amount(run.NciEquity)},
		{"Net Income", amount(run.NetIncome)},
		{"  Attributable to Parent", amount(run.ParentNetIncome)},
		{"  Non-controlling Interests", amount(run.NciIncome)},
	}

	for i, row := range rows {
		if err := setCell(f, summarySheetName, 1, i+1, row.label); err != nil {
			return err
		}
		if row.value == nil {
			continue
		}
		if err := setCell(f, summarySheetName, 2, i+1, row.value); err != nil {
			return err
		}
	}
	return nil
}

func writeBalanceSheet(f *excelize.File, run *models.ConsolidationRun, breakdown []*models.CompanyBreakdown) error {
	if _, err := f.NewSheet(balanceSheetName); err != nil {
		return err
	}

	if err := writeEntityHeader(f, balanceSheetName, breakdown); err != nil {
		return err
	}

	lines := []statementLine{
		{"Total Assets", func(b *models.CompanyBreakdown) decimal.Decimal { return b.Assets }, run.TotalAssets},
		{"Total Liabilities", func(b *models.CompanyBreakdown) decimal.Decimal { return b.Liabilities }, run.TotalLiabilities},
		{"Total Equity", func(b *models.CompanyBreakdown) decimal.Decimal { return b.Equity }, run.TotalEquity},
	}
	row := 2
	for _, line := range lines {
		if err := writeStatementLine(f, balanceSheetName, row, line, breakdown); err != nil {
			return err
		}
		row++
	}

	// equity attribution exists only at group level
	attribution := []struct {
		label string
		value decimal.Decimal
	}{
		{"  Attributable to Parent", run.ParentEquity},
		{"  Non-controlling Interests", run.NciEquity},
	}
	consolidatedCol := len(breakdown) + 2
	for _, line := range attribution {
		if err := setCell(f, balanceSheetName, 1, row, line.label); err != nil {
			return err
		}
		if err := setCell(f, balanceSheetName, consolidatedCol, row, amount(line.value)); err != nil {
			return err
		}
		row++
	}

	total := statementLine{
		"Total Liabilities & Equity",
		func(b *models.CompanyBreakdown) decimal.Decimal { return b.Liabilities.Add(b.Equity) },
		run.TotalLiabilities.Add(run.TotalEquity),
	}
	return writeStatementLine(f, balanceSheetName, row, total, breakdown)
}

func writeIncomeStatement(f *excelize.File, run *models.ConsolidationRun, breakdown []*models.CompanyBreakdown) error {
	if _, err := f.NewSheet(incomeSheetName); err != nil {
		return err
	}

	if err := writeEntityHeader(f, incomeSheetName, breakdown); err != nil {
		return err
	}

	lines := []statementLine{
		{"Revenue", func(b *models.CompanyBreakdown) decimal.Decimal { return b.Revenue }, run.TotalRevenue},
		{"Expenses", func(b *models.CompanyBreakdown) decimal.Decimal { return b.Expenses }, run.TotalExpenses},
		{"Net Income", func(b *models.CompanyBreakdown) decimal.Decimal { return b.NetIncome }, run.NetIncome},
	}
	row := 2
	for _, line := range lines {
		if err := writeStatementLine(f, incomeSheetName, row, line, breakdown); err != nil {
			return err
		}
		row++
	}

	attribution := []struct {
		label string
		value decimal.Decimal
	}{
		{"  Attributable to Parent", run.ParentNetIncome},
		{"  Non-controlling Interests", run.NciIncome},
	}
	consolidatedCol := len(breakdown) + 2
	for _, line := range attribution {
		if err := setCell(f, incomeSheetName, 1, row, line.label); err != nil {
			return err
		}
		if err := setCell(f, incomeSheetName, consolidatedCol, row, amount(line.value)); err != nil {
			return err
		}
		row++
	}
	return nil
}

type statementLine struct {
	label        string
	entityValue  func(*models.CompanyBreakdown) decimal.Decimal
	consolidated decimal.Decimal
}

func writeEntityHeader(f *excelize.File, sheet string, breakdown []*models.CompanyBreakdown) error {
	for i, entity := range breakdown {
		if err := setCell(f, sheet, i+2, 1, entity.CompanyName); err != nil {
			return err
		}
	}
	return setCell(f, sheet, len(breakdown)+2, 1, "Consolidated")
}

func writeStatementLine(f *excelize.File, sheet string, row int, line statementLine, breakdown []*models.CompanyBreakdown) error {
	if err := setCell(f, sheet, 1, row, line.label); err != nil {
		return err
	}
	for i, entity := range breakdown {
		if err := setCell(f, sheet, i+2, row, amount(line.entityValue(entity))); err != nil {
			return err
		}
	}
	return setCell(f, sheet, len(breakdown)+2, row, amount(line.consolidated))
}

func setCell(f *excelize.File, sheet string, col int, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}

// amount keeps statement cells numeric in the workbook
func amount(value decimal.Decimal) float64 {
	return value.InexactFloat64()
}
