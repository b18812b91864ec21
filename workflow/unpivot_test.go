package workflow

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParsePeriodLabel_Strategies(t *testing.T) {
	cases := []struct {
		label string
		want  time.Time
	}{
		{"Jan 2024", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"Jan-24", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"January 2024", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"Sept 2023", time.Date(2023, time.September, 1, 0, 0, 0, 0, time.UTC)},
		{"Q1 2024", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"2024 Q2", time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)},
		{"Q3 2024", time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)},
		{"2024", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-03", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-03-15", time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)},
		{"FY2024", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, ok := parsePeriodLabel(tc.label, 2025)
		if !ok {
			t.Fatalf("label %q: expected a parse, got none", tc.label)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("label %q: expected %s, got %s", tc.label, tc.want, got)
		}
	}
}

func TestParsePeriodLabel_MonthWithoutYearUsesDefault(t *testing.T) {
	got, ok := parsePeriodLabel("Mar", 2022)
	if !ok {
		t.Fatalf("expected a parse for bare month")
	}
	want := time.Date(2022, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestParsePeriodLabel_OpaqueLabel(t *testing.T) {
	if _, ok := parsePeriodLabel("Total", 2024); ok {
		t.Fatalf("expected no parse for %q", "Total")
	}
}

func TestUnpivotStatement_NormalBalanceSides(t *testing.T) {
	g := Grid{
		{"Account", "Jan 2024", "Feb 2024"},
		{"Cash", "1000", ""},
		{"Accounts Payable", "500", "-200"},
		{"Sales Revenue", "n/a", "300"},
	}

	rows := UnpivotStatement(g, 0)
	if len(rows) != 4 {
		t.Fatalf("expected 4 staged rows, got %d", len(rows))
	}

	cash := rows[0]
	if !cash.Debit.Equal(decimal.NewFromInt(1000)) || !cash.Credit.IsZero() {
		t.Fatalf("cash should land on the debit side, got debit=%s credit=%s", cash.Debit, cash.Credit)
	}
	if cash.Description != "Cash - Jan 2024" {
		t.Fatalf("unexpected description %q", cash.Description)
	}
	if cash.Reference == nil || *cash.Reference != "Jan 2024" {
		t.Fatalf("expected period label as reference, got %v", cash.Reference)
	}
	if !cash.HasDate || !cash.Date.Equal(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected Jan 1 2024, got %s", cash.Date)
	}

	payableJan := rows[1]
	if !payableJan.Credit.Equal(decimal.NewFromInt(500)) || !payableJan.Debit.IsZero() {
		t.Fatalf("payable should land on the credit side, got debit=%s credit=%s", payableJan.Debit, payableJan.Credit)
	}

	// a negative amount flips to the opposite side as a positive magnitude
	payableFeb := rows[2]
	if !payableFeb.Debit.Equal(decimal.NewFromInt(200)) || !payableFeb.Credit.IsZero() {
		t.Fatalf("negative payable should flip to debit, got debit=%s credit=%s", payableFeb.Debit, payableFeb.Credit)
	}

	revenue := rows[3]
	if !revenue.Credit.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("revenue should land on the credit side, got credit=%s", revenue.Credit)
	}
}

func TestUnpivotStatement_OpaqueLabelStaysOnRow(t *testing.T) {
	g := Grid{
		{"Account", "Opening"},
		{"Cash", "1000"},
	}
	rows := UnpivotStatement(g, 0)
	if len(rows) != 1 {
		t.Fatalf("expected 1 staged row, got %d", len(rows))
	}
	if rows[0].HasDate {
		t.Fatalf("expected no date for an opaque label")
	}
	if rows[0].PeriodLabel != "Opening" {
		t.Fatalf("expected the label kept on the row, got %q", rows[0].PeriodLabel)
	}
}

func TestUnpivotStatement_BlankAccountRowsSkipped(t *testing.T) {
	g := Grid{
		{"Account", "Jan 2024"},
		{"", "999"},
		{"Cash", "100"},
	}
	rows := UnpivotStatement(g, 0)
	if len(rows) != 1 {
		t.Fatalf("expected only the cash row, got %d", len(rows))
	}
	if rows[0].AccountNumber != "Cash" {
		t.Fatalf("expected Cash, got %q", rows[0].AccountNumber)
	}
}
