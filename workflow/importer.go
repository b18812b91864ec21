package workflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mmdatafocus/consolidation_backend/aimatch"
	"github.com/mmdatafocus/consolidation_backend/config"
	"github.com/mmdatafocus/consolidation_backend/models"
	"github.com/mmdatafocus/consolidation_backend/utils"
	"github.com/sirupsen/logrus"
)

// errorPreviewLimit caps how many row errors an import response carries;
// the counts still cover everything.
const errorPreviewLimit = 10

// TransactionCsvTemplate is served for download so finance teams can fill
// a known-good layout.
const TransactionCsvTemplate = `date,account_number,description,debit,credit,reference
2024-01-15,1000,Opening cash balance,50000,0,OB-001
2024-01-20,4000,Product sales,0,25000,INV-001
2024-01-25,6000,Salary payment,15000,0,PAY-001
2024-01-30,1000,Cash payment for expenses,0,5000,EXP-001`

// ImportFileError marks problems with the uploaded file itself, as opposed
// to infrastructure failures while storing rows.
type ImportFileError string

func (e ImportFileError) Error() string {
	return string(e)
}

type ImportOptions struct {
	CompanyId    int
	Threshold    float64
	Suggester    aimatch.Suggester
	ColumnMapper aimatch.ColumnMapper
}

type ImportResult struct {
	Format          GridFormat `json:"format"`
	TotalRows       int        `json:"total_rows"`
	ImportedCount   int        `json:"imported_count"`
	ErrorCount      int        `json:"error_count"`
	Errors          []RowError `json:"errors"`
	CreatedAccounts []string   `json:"created_accounts"`
	MappingsCreated int        `json:"mappings_created"`
}

// ImportGrid runs the whole import pipeline on one decoded spreadsheet:
// format detection, header location, staging, row validation, account
// resolution, and the batch insert. Bad rows are collected and reported;
// only file-level problems abort the import.
func ImportGrid(ctx context.Context, logger *logrus.Logger, g Grid, opts ImportOptions) (*ImportResult, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, fmt.Errorf("organization id is required")
	}

	if g.dataRowCount() == 0 {
		return nil, ImportFileError("no data rows found in file")
	}

	company, err := models.GetCompany(ctx, opts.CompanyId)
	if err != nil {
		return nil, err
	}

	// overlapping imports for one company stay correct without the lock;
	// holding it just keeps them from interleaving when Redis is around
	if lock, lockErr := utils.ObtainRedisLock(ctx, "Import", strconv.Itoa(opts.CompanyId), 5*time.Minute, "importer.go", "ImportGrid"); lockErr == nil {
		defer func() { _ = lock.Release(ctx) }()
	}

	format := DetectGridFormat(g)
	headerRow := LocateHeaderRow(g)

	var staged []*StagedRow
	if format == FormatPivotedStatement {
		staged = UnpivotStatement(g, headerRow)
		if config.StrictPeriodLabels() {
			if labels := opaquePeriodLabels(staged); len(labels) > 0 {
				return nil, ImportFileError(fmt.Sprintf("Unparseable period columns: %s", strings.Join(labels, ", ")))
			}
		}
	} else {
		staged, err = stageTransactionList(ctx, g, headerRow, opts.ColumnMapper)
		if err != nil {
			return nil, err
		}
	}

	accepted, rowErrors := ValidateStagedRows(staged)

	resolver, err := NewAccountResolver(ctx, opts.CompanyId, opts.Threshold, opts.Suggester, logger)
	if err != nil {
		return nil, err
	}
	resolver.OrgContext = company.Name
	if company.Industry != "" {
		resolver.OrgContext = fmt.Sprintf("%s (%s)", company.Name, company.Industry)
	}

	transactions := make([]*models.Transaction, 0, len(accepted))
	for _, row := range accepted {
		account, _, resolveErr := resolver.Resolve(ctx, row.AccountNumber, row.AccountName)
		if resolveErr != nil {
			return nil, resolveErr
		}
		transactions = append(transactions, &models.Transaction{
			OrganizationId:  organizationId,
			CompanyId:       opts.CompanyId,
			AccountId:       account.ID,
			TransactionDate: row.Date,
			Description:     row.Description,
			Reference:       row.Reference,
			DebitAmount:     row.Debit,
			CreditAmount:    row.Credit,
			Currency:        company.Currency,
			TransactionType: models.TransactionTypeStandard,
			IsIntercompany:  utils.NewFalse(),
			FiscalYear:      row.Date.Year(),
			FiscalPeriod:    int(row.Date.Month()),
		})
	}

	if err := models.BatchInsertTransactions(ctx, transactions); err != nil {
		return nil, err
	}

	// suggestion failures never undo a finished import
	mappings, mapErr := resolver.ProposeMappings(ctx)
	if mapErr != nil {
		config.LogError(logger, "importer.go", "ImportGrid", "ProposeMappings",
			map[string]any{"companyId": opts.CompanyId}, mapErr)
	}

	var createdNumbers []string
	for _, account := range resolver.CreatedAccounts() {
		createdNumbers = append(createdNumbers, account.AccountNumber)
	}

	preview := rowErrors
	if len(preview) > errorPreviewLimit {
		preview = preview[:errorPreviewLimit]
	}

	return &ImportResult{
		Format:          format,
		TotalRows:       len(staged),
		ImportedCount:   len(transactions),
		ErrorCount:      len(rowErrors),
		Errors:          preview,
		CreatedAccounts: createdNumbers,
		MappingsCreated: len(mappings),
	}, nil
}

func opaquePeriodLabels(staged []*StagedRow) []string {
	seen := map[string]bool{}
	var labels []string
	for _, row := range staged {
		if row.HasDate || row.PeriodLabel == "" || seen[row.PeriodLabel] {
			continue
		}
		seen[row.PeriodLabel] = true
		labels = append(labels, row.PeriodLabel)
	}
	return labels
}

// stageTransactionList reads a row-per-transaction sheet through the
// column map. Rows are staged as-is; the validator decides what survives.
func stageTransactionList(ctx context.Context, g Grid, headerRow int, oracle aimatch.ColumnMapper) ([]*StagedRow, error) {
	header := g[headerRow]

	sampleEnd := headerRow + 1 + 10
	if sampleEnd > len(g) {
		sampleEnd = len(g)
	}
	fields, headerless := MapTransactionColumns(ctx, header, g[headerRow+1:sampleEnd], oracle)

	if missing := fields.MissingRequired(); len(missing) > 0 {
		return nil, ImportFileError(fmt.Sprintf("Missing required columns: %s", strings.Join(missing, ", ")))
	}

	get := func(row []string, field CanonicalField) string {
		col, ok := fields[field]
		if !ok {
			return ""
		}
		return cellAt(row, col)
	}

	dataStart := headerRow + 1
	if headerless {
		dataStart = headerRow
	}

	var staged []*StagedRow
	for r := dataStart; r < len(g); r++ {
		row := g[r]
		if rowIsEmpty(row) {
			continue
		}

		rawDate := get(row, FieldDate)
		date, hasDate := parseCellDate(rawDate)

		debit, _ := parseCellNumber(get(row, FieldDebit))
		credit, _ := parseCellNumber(get(row, FieldCredit))
		if amount, ok := parseCellNumber(get(row, FieldAmount)); ok {
			if amount.IsNegative() {
				credit = amount.Neg()
			} else {
				debit = amount
			}
		}

		var reference *string
		if ref := get(row, FieldReference); ref != "" {
			reference = &ref
		}

		staged = append(staged, &StagedRow{
			RowNum:        r + 1,
			Date:          date,
			HasDate:       hasDate,
			RawDate:       rawDate,
			AccountNumber: get(row, FieldAccountNumber),
			AccountName:   get(row, FieldAccountName),
			Description:   get(row, FieldDescription),
			Reference:     reference,
			Debit:         debit,
			Credit:        credit,
		})
	}

	return staged, nil
}
