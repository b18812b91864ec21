package workflow

import "testing"

func TestDetectGridFormat_PivotedStatement(t *testing.T) {
	g := Grid{
		{"Account", "Jan-24", "Feb-24"},
		{"Cash", "1000", "1200"},
		{"Accounts Payable", "500", "700"},
		{"Sales Revenue", "2000", "2500"},
	}
	if got := DetectGridFormat(g); got != FormatPivotedStatement {
		t.Fatalf("expected %s, got %s", FormatPivotedStatement, got)
	}
}

func TestDetectGridFormat_TransactionList(t *testing.T) {
	g := Grid{
		{"Date", "Account Number", "Description", "Debit", "Credit"},
		{"2024-01-15", "1000", "Opening cash balance", "50000", "0"},
		{"2024-01-20", "4000", "Product sales", "0", "25000"},
		{"2024-01-25", "6000", "Salary payment", "15000", "0"},
	}
	if got := DetectGridFormat(g); got != FormatTransactionList {
		t.Fatalf("expected %s, got %s", FormatTransactionList, got)
	}
}

func TestDetectGridFormat_TooFewRowsFallsBackToList(t *testing.T) {
	g := Grid{
		{"Cash", "100"},
		{"Revenue", "200"},
	}
	if got := DetectGridFormat(g); got != FormatTransactionList {
		t.Fatalf("expected %s for a two-row grid, got %s", FormatTransactionList, got)
	}
}

func TestDetectGridFormat_SingleNumericColumnIsNotPivoted(t *testing.T) {
	// one numeric column is an ordinary list with an amount column, not a
	// period matrix
	g := Grid{
		{"Cash", "100"},
		{"Accounts Payable", "200"},
		{"Sales Revenue", "300"},
	}
	if got := DetectGridFormat(g); got != FormatTransactionList {
		t.Fatalf("expected %s, got %s", FormatTransactionList, got)
	}
}

func TestDetectGridFormat_BlankRowsIgnored(t *testing.T) {
	g := Grid{
		{"Account", "Q1 2024", "Q2 2024"},
		{"", "", ""},
		{"Cash", "1000", "1100"},
		{"Inventory", "400", "450"},
		{"", ""},
		{"Accrued Expenses", "250", "300"},
	}
	if got := DetectGridFormat(g); got != FormatPivotedStatement {
		t.Fatalf("expected %s, got %s", FormatPivotedStatement, got)
	}
}
