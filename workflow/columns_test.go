package workflow

import (
	"context"
	"errors"
	"testing"
)

type fakeColumnOracle struct {
	result map[string]string
	err    error
	called bool
}

func (f *fakeColumnOracle) MapColumns(ctx context.Context, columns []string, sampleRows [][]string) (map[string]string, error) {
	f.called = true
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestMapTransactionColumns_NamedHeadings(t *testing.T) {
	header := []string{"Transaction Date", "Account Number", "Account Name", "Description", "Debit", "Credit", "Reference"}
	fields, headerless := MapTransactionColumns(context.Background(), header, nil, nil)

	if headerless {
		t.Fatalf("a named header must not be treated as data")
	}
	want := map[CanonicalField]int{
		FieldDate:          0,
		FieldAccountNumber: 1,
		FieldAccountName:   2,
		FieldDescription:   3,
		FieldDebit:         4,
		FieldCredit:        5,
		FieldReference:     6,
	}
	for field, col := range want {
		if got, ok := fields[field]; !ok || got != col {
			t.Fatalf("field %s: expected column %d, got %d (present=%v)", field, col, got, ok)
		}
	}
	if missing := fields.MissingRequired(); len(missing) != 0 {
		t.Fatalf("expected nothing missing, got %v", missing)
	}
}

func TestMapTransactionColumns_AmountColumnWithoutNegativesIsDebit(t *testing.T) {
	header := []string{"Date", "Account", "Memo", "Amount"}
	samples := [][]string{
		{"2024-01-15", "1000", "Opening", "50000"},
		{"2024-01-20", "4000", "Sales", "25000"},
	}
	fields, _ := MapTransactionColumns(context.Background(), header, samples, nil)
	if col, ok := fields[FieldDebit]; !ok || col != 3 {
		t.Fatalf("expected the amount column bound as debit, got %v", fields)
	}
	if fields.Has(FieldAmount) {
		t.Fatalf("all-positive amounts must not bind the signed amount field")
	}
}

func TestMapTransactionColumns_SignedAmountColumn(t *testing.T) {
	header := []string{"Date", "Account", "Memo", "Amount"}
	samples := [][]string{
		{"2024-01-15", "1000", "Opening", "50000"},
		{"2024-01-20", "4000", "Refund", "-2500"},
	}
	fields, _ := MapTransactionColumns(context.Background(), header, samples, nil)
	if col, ok := fields[FieldAmount]; !ok || col != 3 {
		t.Fatalf("expected the signed amount column bound as amount, got %v", fields)
	}
}

func TestMapTransactionColumns_TotalNeverShadowsDebit(t *testing.T) {
	header := []string{"Date", "Account", "Debit", "Total"}
	fields, _ := MapTransactionColumns(context.Background(), header, nil, nil)
	if col := fields[FieldDebit]; col != 2 {
		t.Fatalf("expected the explicit debit column kept, got %v", fields)
	}
}

func TestMapTransactionColumns_PayableHeadingFallsBackToDescription(t *testing.T) {
	header := []string{"Date", "Payable To", "Amount"}
	fields, _ := MapTransactionColumns(context.Background(), header, nil, nil)
	if col, ok := fields[FieldDescription]; !ok || col != 1 {
		t.Fatalf("expected the payable heading used as description, got %v", fields)
	}
}

func TestMapTransactionColumns_HeaderlessPositional(t *testing.T) {
	header := []string{"2024-01-15", "1000", "Opening balance", "50000", "0"}
	samples := [][]string{
		{"2024-01-20", "4000", "Product sales", "0", "25000"},
		{"2024-01-25", "6000", "Salary payment", "15000", "0"},
	}
	fields, headerless := MapTransactionColumns(context.Background(), header, samples, nil)

	if !headerless {
		t.Fatalf("a data-looking first row must be flagged headerless")
	}
	want := map[CanonicalField]int{
		FieldDate:          0,
		FieldAccountNumber: 1,
		FieldDescription:   2,
		FieldDebit:         3,
		FieldCredit:        4,
	}
	for field, col := range want {
		if got, ok := fields[field]; !ok || got != col {
			t.Fatalf("field %s: expected column %d, got %d (present=%v)", field, col, got, ok)
		}
	}
}

func TestMapTransactionColumns_IntegerHeadingsAreHeaderless(t *testing.T) {
	header := []string{"0", "1", "2"}
	if !headerRowIsData(header) {
		t.Fatalf("positional integer headings must read as data")
	}
}

func TestMissingRequired(t *testing.T) {
	m := ColumnMap{FieldDate: 0}
	missing := m.MissingRequired()
	if len(missing) != 2 || missing[0] != "account_number" || missing[1] != "debit" {
		t.Fatalf("expected [account_number debit], got %v", missing)
	}

	m = ColumnMap{FieldDate: 0, FieldAccountNumber: 1, FieldAmount: 2}
	if missing := m.MissingRequired(); len(missing) != 0 {
		t.Fatalf("an amount column satisfies the debit requirement, got %v", missing)
	}
}

func TestMapTransactionColumns_OracleFillsUnresolvedHeadings(t *testing.T) {
	oracle := &fakeColumnOracle{result: map[string]string{
		"When": "date",
		"Acct": "account_number",
		"Info": "description",
	}}
	header := []string{"When", "Acct", "Info"}
	fields, _ := MapTransactionColumns(context.Background(), header, nil, oracle)

	if !oracle.called {
		t.Fatalf("expected the oracle consulted for an unresolved header")
	}
	if fields[FieldDate] != 0 || fields[FieldAccountNumber] != 1 || fields[FieldDescription] != 2 {
		t.Fatalf("expected oracle bindings applied, got %v", fields)
	}
}

func TestMapTransactionColumns_OracleSkippedWhenHeuristicsSuffice(t *testing.T) {
	oracle := &fakeColumnOracle{result: map[string]string{"Date": "credit"}}
	header := []string{"Date", "Account", "Debit", "Credit"}
	MapTransactionColumns(context.Background(), header, nil, oracle)
	if oracle.called {
		t.Fatalf("oracle must not run when the heuristics already resolved enough fields")
	}
}

func TestMapTransactionColumns_OracleFailureKeepsHeuristics(t *testing.T) {
	oracle := &fakeColumnOracle{err: errors.New("model unavailable")}
	header := []string{"When", "Acct", "Info"}
	fields, _ := MapTransactionColumns(context.Background(), header, nil, oracle)
	if len(fields) != 0 {
		t.Fatalf("a failed oracle call must leave the heuristic result alone, got %v", fields)
	}
}

func TestMapTransactionColumns_OracleWinsConflicts(t *testing.T) {
	oracle := &fakeColumnOracle{result: map[string]string{
		"Date": "description",
		"Col2": "date",
	}}
	header := []string{"Date", "Col2", "Col3"}
	fields, _ := MapTransactionColumns(context.Background(), header, nil, oracle)

	if fields[FieldDescription] != 0 {
		t.Fatalf("expected the oracle to rebind column 0, got %v", fields)
	}
	if fields[FieldDate] != 1 {
		t.Fatalf("expected the oracle to move the date to column 1, got %v", fields)
	}
}
