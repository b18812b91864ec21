package workflow

import "testing"

func TestLocateHeaderRow_SkipsReportPreamble(t *testing.T) {
	g := Grid{
		{"Acme Holdings Inc"},
		{"Balance Sheet"},
		{""},
		{"Account", "Jan-24", "Feb-24"},
		{"Cash", "1000", "1200"},
		{"Accounts Payable", "500", "700"},
	}
	if got := LocateHeaderRow(g); got != 3 {
		t.Fatalf("expected header at row 3, got %d", got)
	}
}

func TestLocateHeaderRow_PlainHeaderAtTop(t *testing.T) {
	g := Grid{
		{"Date", "Account", "Debit", "Credit"},
		{"2024-01-15", "1000", "50000", "0"},
		{"2024-01-20", "4000", "0", "25000"},
	}
	if got := LocateHeaderRow(g); got != 0 {
		t.Fatalf("expected header at row 0, got %d", got)
	}
}

func TestLocateHeaderRow_NothingConvincingDefaultsToFirstRow(t *testing.T) {
	g := Grid{
		{"2024-01-15", "1000", "50000"},
		{"2024-01-20", "4000", "25000"},
		{"2024-01-25", "6000", "15000"},
	}
	if got := LocateHeaderRow(g); got != 0 {
		t.Fatalf("expected fallback to row 0, got %d", got)
	}
}

func TestLocateHeaderRow_TieGoesToEarliestRow(t *testing.T) {
	g := Grid{
		{"Account", "Amount"},
		{"Account", "Amount"},
		{"1000", "250"},
	}
	if got := LocateHeaderRow(g); got != 0 {
		t.Fatalf("expected earliest of the tied rows, got %d", got)
	}
}

func TestLocateHeaderRow_YearHeadingsScoreAsHeaders(t *testing.T) {
	// bare in-range years are period headings, not data, so the heading row
	// must beat the numeric rows below it
	g := Grid{
		{"Consolidated Statement"},
		{"Account", "2024", "2025"},
		{"Cash", "1000", "1100"},
		{"Loans", "400", "380"},
	}
	if got := LocateHeaderRow(g); got != 1 {
		t.Fatalf("expected header at row 1, got %d", got)
	}
}
