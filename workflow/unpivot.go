package workflow

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mmdatafocus/consolidation_backend/models"
	"github.com/shopspring/decimal"
)

var monthsByName = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

func isMonthToken(token string) bool {
	_, ok := monthsByName[token]
	return ok
}

func plausibleYear(year int) bool {
	return year >= 1900 && year <= 2100
}

var yearMonthPrefixRe = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})`)
var yearSubstringRe = regexp.MustCompile(`\d{4}`)

// ParsePeriodLabel turns a statement column heading into the first day of
// the period it names. Returns false for labels no strategy can read; those
// stay opaque strings on the staged row.
func ParsePeriodLabel(label string) (time.Time, bool) {
	return parsePeriodLabel(label, time.Now().Year())
}

func parsePeriodLabel(label string, defaultYear int) (time.Time, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return time.Time{}, false
	}

	if t, ok := parseCellDate(label); ok {
		return t, true
	}

	tokens := tokenize(label)

	// month name, with the year anywhere around it ("Jan 2024", "Jan-24")
	for _, token := range tokens {
		month, ok := monthsByName[token]
		if !ok {
			continue
		}
		year := defaultYear
		for _, other := range tokens {
			if other == token {
				continue
			}
			if len(other) == 4 {
				if parsed, err := strconv.Atoi(other); err == nil && plausibleYear(parsed) {
					year = parsed
					break
				}
			}
			if len(other) == 2 {
				if parsed, err := strconv.Atoi(other); err == nil {
					year = 2000 + parsed
					break
				}
			}
		}
		return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), true
	}

	// quarter, either order ("Q1 2024", "2024 Q1")
	quarter := 0
	for _, token := range tokens {
		if len(token) == 2 && token[0] == 'q' && token[1] >= '1' && token[1] <= '4' {
			quarter = int(token[1] - '0')
			break
		}
	}
	if quarter > 0 {
		year := defaultYear
		for _, token := range tokens {
			if len(token) == 4 {
				if parsed, err := strconv.Atoi(token); err == nil && plausibleYear(parsed) {
					year = parsed
					break
				}
			}
		}
		return time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC), true
	}

	if year, ok := bareYear(label); ok && plausibleYear(year) {
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), true
	}

	if m := yearMonthPrefixRe.FindStringSubmatch(label); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if plausibleYear(year) && month >= 1 && month <= 12 {
			return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true
		}
	}

	// last resort: any 4-digit run is taken as a year
	if m := yearSubstringRe.FindString(label); m != "" {
		if year, _ := strconv.Atoi(m); plausibleYear(year) {
			return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), true
		}
	}

	return time.Time{}, false
}

// UnpivotStatement melts an account × period grid into staged ledger rows,
// one per non-blank cell. Each amount lands on its account's normal balance
// side; a negative amount flips to the opposite side. Cells that do not
// parse as numbers are dropped, matching how statement exports pad rows
// with notes and subtotal markers.
func UnpivotStatement(g Grid, headerRow int) []*StagedRow {
	if headerRow < 0 || headerRow >= len(g) {
		return nil
	}

	type periodColumn struct {
		col     int
		label   string
		date    time.Time
		hasDate bool
	}
	header := g[headerRow]
	var periods []periodColumn
	for col := 1; col < len(header); col++ {
		label := cellAt(header, col)
		if label == "" {
			continue
		}
		date, ok := ParsePeriodLabel(label)
		periods = append(periods, periodColumn{col: col, label: label, date: date, hasDate: ok})
	}

	var rows []*StagedRow
	for r := headerRow + 1; r < len(g); r++ {
		account := cellAt(g[r], 0)
		if account == "" {
			continue
		}
		accountType := InferAccountType(account)
		creditNormal := accountType.NormalBalance() == models.NormalBalanceCredit

		for _, period := range periods {
			raw := cellAt(g[r], period.col)
			if raw == "" {
				continue
			}
			amount, ok := parseCellNumber(raw)
			if !ok {
				continue
			}

			var debit, credit decimal.Decimal
			if creditNormal {
				if amount.IsPositive() {
					credit = amount
				} else {
					debit = amount.Neg()
				}
			} else {
				if amount.IsPositive() {
					debit = amount
				} else {
					credit = amount.Neg()
				}
			}

			reference := period.label
			rows = append(rows, &StagedRow{
				RowNum:        r + 1,
				Date:          period.date,
				HasDate:       period.hasDate,
				AccountNumber: account,
				AccountName:   account,
				Description:   account + " - " + period.label,
				Reference:     &reference,
				Debit:         debit,
				Credit:        credit,
				PeriodLabel:   period.label,
			})
		}
	}
	return rows
}
