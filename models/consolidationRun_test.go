package models

import (
	"testing"
	"time"
)

func TestPeriodEndDate(t *testing.T) {
	cases := []struct {
		year, period int
		want         time.Time
	}{
		{2024, 1, time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)},
		{2024, 2, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)},
		{2023, 2, time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC)},
		{2024, 12, time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		if got := periodEndDate(tc.year, tc.period); !got.Equal(tc.want) {
			t.Fatalf("%d/%d: expected %s, got %s", tc.year, tc.period, tc.want, got)
		}
	}
}

func TestCompanyIdsIncluded(t *testing.T) {
	run := &ConsolidationRun{CompaniesIncluded: "[3,1,4]"}
	ids, err := run.CompanyIdsIncluded()
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(ids) != 3 || ids[0] != 3 || ids[1] != 1 || ids[2] != 4 {
		t.Fatalf("expected [3 1 4], got %v", ids)
	}

	run = &ConsolidationRun{}
	ids, err = run.CompanyIdsIncluded()
	if err != nil || len(ids) != 0 {
		t.Fatalf("expected an empty selection to mean no filter, got %v / %v", ids, err)
	}

	run = &ConsolidationRun{CompaniesIncluded: "not json"}
	if _, err := run.CompanyIdsIncluded(); err == nil {
		t.Fatalf("expected an error for malformed company list")
	}
}
