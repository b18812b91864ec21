package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFiscalYearPeriod(t *testing.T) {
	year, period := fiscalYearPeriod(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))
	if year != 2024 || period != 1 {
		t.Fatalf("expected 2024/1, got %d/%d", year, period)
	}

	year, period = fiscalYearPeriod(time.Date(2023, time.December, 31, 23, 59, 0, 0, time.UTC))
	if year != 2023 || period != 12 {
		t.Fatalf("expected 2023/12, got %d/%d", year, period)
	}
}

func TestNewTransactionBuildDefaults(t *testing.T) {
	input := &NewTransaction{
		CompanyId:       1,
		AccountId:       10,
		TransactionDate: MyDateString(time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)),
		DebitAmount:     decimal.NewFromInt(100),
	}

	transaction := input.build("org-1")

	if transaction.OrganizationId != "org-1" {
		t.Fatalf("expected the organization stamped, got %q", transaction.OrganizationId)
	}
	if transaction.TransactionType != TransactionTypeStandard {
		t.Fatalf("expected the standard type default, got %s", transaction.TransactionType)
	}
	if transaction.Currency != "USD" {
		t.Fatalf("expected the USD default, got %s", transaction.Currency)
	}
	if transaction.IsIntercompany == nil || *transaction.IsIntercompany {
		t.Fatalf("expected intercompany defaulted to false")
	}
	if transaction.FiscalYear != 2024 || transaction.FiscalPeriod != 3 {
		t.Fatalf("expected fiscal 2024/3, got %d/%d", transaction.FiscalYear, transaction.FiscalPeriod)
	}
}

func TestNewTransactionBuildKeepsExplicitValues(t *testing.T) {
	intercompany := true
	counterparty := 7
	input := &NewTransaction{
		CompanyId:             1,
		AccountId:             10,
		TransactionDate:       MyDateString(time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)),
		CreditAmount:          decimal.NewFromInt(250),
		Currency:              "EUR",
		TransactionType:       TransactionTypeIntercompany,
		IsIntercompany:        &intercompany,
		CounterpartyCompanyId: &counterparty,
	}

	transaction := input.build("org-1")

	if transaction.Currency != "EUR" || transaction.TransactionType != TransactionTypeIntercompany {
		t.Fatalf("explicit values must not be overwritten, got %s/%s", transaction.Currency, transaction.TransactionType)
	}
	if transaction.CounterpartyCompanyId == nil || *transaction.CounterpartyCompanyId != 7 {
		t.Fatalf("expected the counterparty kept, got %v", transaction.CounterpartyCompanyId)
	}
}
