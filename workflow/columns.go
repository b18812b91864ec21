package workflow

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/mmdatafocus/consolidation_backend/aimatch"
)

// CanonicalField names the fields a transaction row can carry. The column
// mapper binds source columns to these; nothing downstream ever touches a
// source column name again.
type CanonicalField int

const (
	FieldUnknown CanonicalField = iota
	FieldDate
	FieldAccountNumber
	FieldAccountName
	FieldDescription
	FieldDebit
	FieldCredit
	FieldReference
	FieldAmount
)

func (f CanonicalField) String() string {
	switch f {
	case FieldDate:
		return "date"
	case FieldAccountNumber:
		return "account_number"
	case FieldAccountName:
		return "account_name"
	case FieldDescription:
		return "description"
	case FieldDebit:
		return "debit"
	case FieldCredit:
		return "credit"
	case FieldReference:
		return "reference"
	case FieldAmount:
		return "amount"
	}
	return "unknown"
}

func canonicalFieldFromString(name string) (CanonicalField, bool) {
	switch normalizeHeading(name) {
	case "date":
		return FieldDate, true
	case "account_number":
		return FieldAccountNumber, true
	case "account_name":
		return FieldAccountName, true
	case "description":
		return FieldDescription, true
	case "debit":
		return FieldDebit, true
	case "credit":
		return FieldCredit, true
	case "reference":
		return FieldReference, true
	case "amount":
		return FieldAmount, true
	}
	return FieldUnknown, false
}

// ColumnMap binds each canonical field to the source column index carrying
// it. Fields that no column provides are simply absent.
type ColumnMap map[CanonicalField]int

func (m ColumnMap) Has(field CanonicalField) bool {
	_, ok := m[field]
	return ok
}

// MissingRequired lists the canonical fields an import cannot proceed
// without: a date, an account identifier, and at least one amount column.
func (m ColumnMap) MissingRequired() []string {
	var missing []string
	if !m.Has(FieldDate) {
		missing = append(missing, FieldDate.String())
	}
	if !m.Has(FieldAccountNumber) {
		missing = append(missing, FieldAccountNumber.String())
	}
	if !m.Has(FieldDebit) && !m.Has(FieldCredit) && !m.Has(FieldAmount) {
		missing = append(missing, FieldDebit.String())
	}
	return missing
}

var shortAccountIdRe = regexp.MustCompile(`^\d[\d-]{0,7}$`)

// headerRowIsData reports whether the supposed header row is really data:
// either positional integer names (0, 1, 2, ...) left by a headerless
// export, or cells that parse as dates where headings should be.
func headerRowIsData(header []string) bool {
	nonBlank := 0
	integers := 0
	for _, cell := range header {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		nonBlank++
		if _, err := strconv.Atoi(cell); err == nil {
			integers++
		}
		if _, ok := parseCellDate(cell); ok {
			return true
		}
	}
	if nonBlank == 0 {
		return true
	}
	return integers == nonBlank
}

// MapTransactionColumns resolves which source column carries which
// canonical field. The heuristic pass reads column names (or sampled
// values when the file has no real header); the oracle pass only runs when
// fewer than three fields were resolved, and its failures silently keep
// the heuristic result. The second return value is true when the header
// row is actually data and must be parsed as the first row.
func MapTransactionColumns(ctx context.Context, header []string, sampleRows [][]string, oracle aimatch.ColumnMapper) (ColumnMap, bool) {
	fields := ColumnMap{}
	assignedCols := map[int]bool{}

	assign := func(field CanonicalField, col int) bool {
		if fields.Has(field) || assignedCols[col] {
			return false
		}
		fields[field] = col
		assignedCols[col] = true
		return true
	}

	headerless := headerRowIsData(header)

	if headerless {
		classifyColumnsByValue(header, sampleRows, assign)
	} else {
		classifyColumnsByName(header, sampleRows, assign, fields)
	}

	if len(fields) < 3 && oracle != nil {
		mergeOracleColumns(ctx, header, sampleRows, oracle, fields, assignedCols)
	}

	return fields, headerless
}

func classifyColumnsByName(header []string, sampleRows [][]string, assign func(CanonicalField, int) bool, fields ColumnMap) {
	for col, raw := range header {
		name := normalizeHeading(raw)
		if name == "" {
			continue
		}
		tokens := tokenize(raw)
		hasToken := func(want string) bool {
			for _, token := range tokens {
				if token == want {
					return true
				}
			}
			return false
		}

		switch {
		case strings.Contains(name, "date"):
			assign(FieldDate, col)
		case strings.Contains(name, "account") && strings.Contains(name, "name"):
			assign(FieldAccountName, col)
		case strings.Contains(name, "account"):
			assign(FieldAccountNumber, col)
		case strings.Contains(name, "description") || strings.Contains(name, "memo") ||
			strings.Contains(name, "narrative") || strings.Contains(name, "particulars") ||
			strings.Contains(name, "details"):
			assign(FieldDescription, col)
		case strings.Contains(name, "debit") || hasToken("dr"):
			assign(FieldDebit, col)
		case strings.Contains(name, "credit") || hasToken("cr"):
			assign(FieldCredit, col)
		case strings.Contains(name, "reference") || hasToken("ref"):
			assign(FieldReference, col)
		}
	}

	// single-amount family runs after the explicit names so a "Total"
	// column never shadows a real "Debit" column
	for col, raw := range header {
		name := normalizeHeading(raw)
		if name == "" {
			continue
		}
		if !strings.Contains(name, "amount") && !strings.Contains(name, "total") &&
			!strings.Contains(name, "value") {
			continue
		}
		if columnHasNegatives(sampleRows, col) {
			assign(FieldAmount, col)
		} else {
			assign(FieldDebit, col)
		}
	}

	// payable/receivable headings describe the rows, not a field; use them
	// as the description only when nothing claimed that slot
	if !fields.Has(FieldDescription) {
		for col, raw := range header {
			name := normalizeHeading(raw)
			if strings.Contains(name, "payable") || strings.Contains(name, "receivable") {
				assign(FieldDescription, col)
				break
			}
		}
	}
}

func classifyColumnsByValue(header []string, sampleRows [][]string, assign func(CanonicalField, int) bool) {
	width := len(header)
	for _, row := range sampleRows {
		if len(row) > width {
			width = len(row)
		}
	}

	for col := 0; col < width; col++ {
		values := sampleColumnValues(header, sampleRows, col)
		if len(values) == 0 {
			continue
		}

		allDates := true
		allShortIds := true
		allNumeric := true
		for _, value := range values {
			if _, ok := parseCellDate(value); !ok {
				allDates = false
			}
			if !shortAccountIdRe.MatchString(value) {
				allShortIds = false
			}
			if _, ok := parseCellNumber(value); !ok {
				allNumeric = false
			}
		}

		if allDates {
			assign(FieldDate, col)
			continue
		}
		// account ids are short digit runs; they must win over the generic
		// numeric rule or every account column becomes a debit
		if allShortIds && assign(FieldAccountNumber, col) {
			continue
		}
		if allNumeric {
			if !assign(FieldDebit, col) {
				assign(FieldCredit, col)
			}
			continue
		}
		assign(FieldDescription, col)
	}
}

// sampleColumnValues collects up to ten non-blank values for a column. In
// the headerless case the header row itself is data and is included.
func sampleColumnValues(header []string, sampleRows [][]string, col int) []string {
	var values []string
	if v := cellAt(header, col); v != "" {
		values = append(values, v)
	}
	for _, row := range sampleRows {
		if len(values) >= 10 {
			break
		}
		if v := cellAt(row, col); v != "" {
			values = append(values, v)
		}
	}
	return values
}

func columnHasNegatives(sampleRows [][]string, col int) bool {
	for _, row := range sampleRows {
		value := cellAt(row, col)
		if value == "" {
			continue
		}
		if amount, ok := parseCellNumber(value); ok && amount.IsNegative() {
			return true
		}
	}
	return false
}

func mergeOracleColumns(ctx context.Context, header []string, sampleRows [][]string, oracle aimatch.ColumnMapper, fields ColumnMap, assignedCols map[int]bool) {
	columns := make([]string, len(header))
	for i, raw := range header {
		columns[i] = strings.TrimSpace(raw)
	}
	sample := sampleRows
	if len(sample) > 5 {
		sample = sample[:5]
	}

	result, err := oracle.MapColumns(ctx, columns, sample)
	if err != nil || len(result) == 0 {
		return
	}

	for colName, fieldName := range result {
		field, ok := canonicalFieldFromString(fieldName)
		if !ok {
			continue
		}
		col := -1
		for i, name := range columns {
			if strings.EqualFold(name, colName) || normalizeHeading(name) == normalizeHeading(colName) {
				col = i
				break
			}
		}
		if col < 0 {
			continue
		}
		// the oracle wins conflicts on both sides of the binding
		for existing, existingCol := range fields {
			if existingCol == col {
				delete(fields, existing)
				delete(assignedCols, col)
			}
		}
		if prev, ok := fields[field]; ok {
			delete(assignedCols, prev)
			delete(fields, field)
		}
		fields[field] = col
		assignedCols[col] = true
	}
}
