package workflow

import "strings"

// GridFormat classifies an uploaded grid's shape. The string values appear
// in import responses.
type GridFormat string

const (
	FormatTransactionList  GridFormat = "transaction_list"
	FormatPivotedStatement GridFormat = "pivoted_statement"
)

// accountDomainKeywords mark a first-column value as account-like even when
// it would otherwise parse as something else. Drawn from the default master
// chart vocabulary.
var accountDomainKeywords = []string{
	"cash", "bank", "receivable", "payable", "inventory", "prepaid",
	"equipment", "asset", "liability", "loan", "equity", "capital",
	"earnings", "revenue", "sales", "income", "expense", "cost",
	"salaries", "salary", "rent", "utilities", "insurance",
	"depreciation", "interest", "tax", "marketing", "payroll", "accrued",
}

func containsAccountKeyword(value string) bool {
	value = strings.ToLower(value)
	for _, keyword := range accountDomainKeywords {
		if strings.Contains(value, keyword) {
			return true
		}
	}
	return false
}

// DetectGridFormat decides whether a grid is a pivoted statement (accounts
// as rows, periods as columns) or an ordinary transaction list. Pure; the
// grid is not modified.
//
// A pivoted statement needs two independent signals: a text-like first
// column (account names rather than dates or amounts) and at least two
// other columns that are numeric for a meaningful share of rows. Anything
// else is treated as a transaction list, which the column mapper can sort
// out field by field.
func DetectGridFormat(g Grid) GridFormat {
	var rows [][]string
	for _, row := range g {
		if !rowIsEmpty(row) {
			rows = append(rows, row)
		}
	}
	if len(rows) < 3 || g.width() < 2 {
		return FormatTransactionList
	}

	firstColValues := 0
	textLike := 0
	for _, row := range rows {
		value := cellAt(row, 0)
		if value == "" {
			continue
		}
		firstColValues++
		if containsAccountKeyword(value) {
			textLike++
			continue
		}
		_, numeric := parseCellNumber(value)
		_, date := parseCellDate(value)
		if !numeric && !date {
			textLike++
		}
	}
	if firstColValues == 0 {
		return FormatTransactionList
	}
	textSignal := float64(textLike)/float64(firstColValues) > 0.3

	numericColumns := 0
	for col := 1; col < g.width(); col++ {
		numericCells := 0
		for _, row := range rows {
			if _, ok := parseCellNumber(cellAt(row, col)); ok {
				numericCells++
			}
		}
		if float64(numericCells)/float64(len(rows)) > 0.3 {
			numericColumns++
		}
	}
	numericSignal := numericColumns >= 2

	if textSignal && numericSignal {
		return FormatPivotedStatement
	}
	return FormatTransactionList
}
