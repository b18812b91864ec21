package workflow

import (
	"strings"
	"time"

	"github.com/mmdatafocus/consolidation_backend/utils"
	"github.com/shopspring/decimal"
)

// Grid is a decoded spreadsheet: rows of raw cell strings, exactly as the
// csv/xlsx/xls decoders produced them. Rows may be ragged; cell access goes
// through cellAt so shape assumptions stay in one place.
type Grid [][]string

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlankCell(value string) bool {
	return strings.TrimSpace(value) == ""
}

func rowIsEmpty(row []string) bool {
	for _, cell := range row {
		if !isBlankCell(cell) {
			return false
		}
	}
	return true
}

// width is the widest row; ragged exports pad short rows with blanks.
func (g Grid) width() int {
	w := 0
	for _, row := range g {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

func (g Grid) dataRowCount() int {
	n := 0
	for _, row := range g {
		if !rowIsEmpty(row) {
			n++
		}
	}
	return n
}

func parseCellNumber(value string) (decimal.Decimal, bool) {
	dec, err := utils.ParseDecimal(value)
	if err != nil {
		return decimal.Zero, false
	}
	return dec, true
}

// dateLayouts covers the formats seen in exports from the usual accounting
// tools. Order matters: unambiguous layouts first.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02.01.2006",
}

func parseCellDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeHeading mirrors what the exports pipeline has always done to
// column names: lower case, trimmed, spaces collapsed to underscores.
func normalizeHeading(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, " ", "_")
}

// tokenize splits a cell into lower-case letter/digit runs, so "Jan-24" and
// "Acme Corp." yield clean tokens for keyword checks.
func tokenize(value string) []string {
	value = strings.ToLower(value)
	var tokens []string
	var current strings.Builder
	for _, r := range value {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}
