package workflow

import (
	"math"
	"strconv"
	"strings"
)

// financialHeaderKeywords mark a cell as a plausible column heading for
// transaction or statement data.
var financialHeaderKeywords = []string{
	"account", "description", "balance", "amount", "total", "debit",
	"credit", "date", "reference", "number", "name", "memo", "period",
}

var entitySuffixTokens = map[string]bool{
	"inc":  true,
	"llc":  true,
	"corp": true,
	"ltd":  true,
}

var quarterTokens = map[string]bool{
	"q1": true, "q2": true, "q3": true, "q4": true,
	"quarter": true, "qtr": true,
}

func bareYear(cell string) (int, bool) {
	cell = strings.TrimSpace(cell)
	if len(cell) != 4 {
		return 0, false
	}
	year, err := strconv.Atoi(cell)
	if err != nil {
		return 0, false
	}
	return year, true
}

func scoreHeaderCell(cell string) int {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0
	}

	score := 0
	tokens := tokenize(cell)

	periodLike := false
	for _, token := range tokens {
		if isMonthToken(token) || quarterTokens[token] || token == "period" {
			periodLike = true
			break
		}
	}
	if periodLike {
		score += 3
	}

	if year, ok := bareYear(cell); ok && year >= 2020 && year <= 2030 {
		score += 2
	} else if _, numeric := parseCellNumber(cell); numeric {
		// data cells drag a row's score down; a header-year cell does not
		score--
	}

	lower := strings.ToLower(cell)
	for _, keyword := range financialHeaderKeywords {
		if strings.Contains(lower, keyword) {
			score += 2
			break
		}
	}

	for _, token := range tokens {
		if entitySuffixTokens[token] {
			score -= 2
			break
		}
	}

	return score
}

// LocateHeaderRow scans the first rows of a grid and picks the most
// header-like one. Preamble lines (company names, report titles, blank
// spacing) score low or negative; a real header row full of period labels
// and column names scores well. When nothing convincing is found the first
// row is assumed to be the header. Ties go to the earliest row.
func LocateHeaderRow(g Grid) int {
	limit := len(g)
	if limit > 10 {
		limit = 10
	}

	bestRow := 0
	bestScore := math.MinInt
	for i := 0; i < limit; i++ {
		score := 0
		for _, cell := range g[i] {
			score += scoreHeaderCell(cell)
		}
		if score > bestScore {
			bestScore = score
			bestRow = i
		}
	}
	if bestScore < 3 {
		return 0
	}
	return bestRow
}
