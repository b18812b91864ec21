package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAccountTypeNormalBalance(t *testing.T) {
	cases := []struct {
		accountType AccountType
		want        NormalBalance
	}{
		{AccountTypeAsset, NormalBalanceDebit},
		{AccountTypeExpense, NormalBalanceDebit},
		{AccountTypeLiability, NormalBalanceCredit},
		{AccountTypeEquity, NormalBalanceCredit},
		{AccountTypeRevenue, NormalBalanceCredit},
	}
	for _, tc := range cases {
		if got := tc.accountType.NormalBalance(); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.accountType, tc.want, got)
		}
	}
}

func TestAccountTypeUnmarshal(t *testing.T) {
	var accountType AccountType
	if err := json.Unmarshal([]byte(`"Liability"`), &accountType); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if accountType != AccountTypeLiability {
		t.Fatalf("expected Liability, got %s", accountType)
	}

	if err := json.Unmarshal([]byte(`"Widget"`), &accountType); err == nil {
		t.Fatalf("expected an error for an unknown account type")
	}
	if err := json.Unmarshal([]byte(`5`), &accountType); err == nil {
		t.Fatalf("expected an error for a non-string account type")
	}
}

func TestConsolidationMethodUnmarshal_EmptyDefaultsToFull(t *testing.T) {
	var method ConsolidationMethod
	if err := json.Unmarshal([]byte(`""`), &method); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if method != ConsolidationMethodFull {
		t.Fatalf("expected Full, got %s", method)
	}

	if err := json.Unmarshal([]byte(`"Partial"`), &method); err == nil {
		t.Fatalf("expected an error for an unknown method")
	}
}

func TestMyDateStringRoundTrip(t *testing.T) {
	var date MyDateString
	if err := json.Unmarshal([]byte(`"2024-01-15"`), &date); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	want := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	if !date.Time().Equal(want) {
		t.Fatalf("expected %s, got %s", want, date.Time())
	}

	out, err := json.Marshal(date)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if string(out) != `"2024-01-15"` {
		t.Fatalf("expected a bare date back, got %s", out)
	}
}

func TestMyDateStringAcceptsDatetime(t *testing.T) {
	var date MyDateString
	if err := json.Unmarshal([]byte(`"2024-01-15T10:30:00"`), &date); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if date.Time().Day() != 15 {
		t.Fatalf("expected the 15th, got %s", date.Time())
	}

	if err := json.Unmarshal([]byte(`"15/01/2024"`), &date); err == nil {
		t.Fatalf("expected an error for an unsupported layout")
	}
}
