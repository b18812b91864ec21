package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1234.56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"$1,000", "1000"},
		{"(500)", "-500"},
		{"($2,500.75)", "-2500.75"},
		{"-25", "-25"},
		{"0", "0"},
		{"  42  ", "42"},
	}
	for _, tc := range cases {
		got, err := ParseDecimal(tc.in)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.in, err)
		}
		want, _ := decimal.NewFromString(tc.want)
		if !got.Equal(want) {
			t.Fatalf("%q: expected %s, got %s", tc.in, want, got)
		}
	}
}

func TestParseDecimal_Rejects(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "12..5"} {
		if _, err := ParseDecimal(in); err == nil {
			t.Fatalf("%q: expected an error", in)
		}
	}
}

func TestDereferencePtr(t *testing.T) {
	active := true
	if !DereferencePtr(&active) {
		t.Fatalf("expected true")
	}
	if DereferencePtr[bool](nil) {
		t.Fatalf("expected the zero value for nil")
	}
	if !DereferencePtr(nil, true) {
		t.Fatalf("expected the supplied default for nil")
	}
}

func TestUniqueSlice(t *testing.T) {
	got := UniqueSlice([]int{3, 1, 3, 2, 1})
	if len(got) != 3 || got[0] != 3 || got[1] != 1 || got[2] != 2 {
		t.Fatalf("expected first-seen order [3 1 2], got %v", got)
	}
}
