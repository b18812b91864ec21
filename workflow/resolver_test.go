package workflow

import (
	"math"
	"strings"
	"testing"

	"github.com/mmdatafocus/consolidation_backend/models"
)

func TestInferAccountType_NumberedChart(t *testing.T) {
	cases := []struct {
		code string
		want models.AccountType
	}{
		{"1000", models.AccountTypeAsset},
		{"1200-01", models.AccountTypeAsset},
		{"2100", models.AccountTypeLiability},
		{"3000", models.AccountTypeEquity},
		{"4000", models.AccountTypeRevenue},
		{"5000", models.AccountTypeExpense},
		{"6100", models.AccountTypeExpense},
		{"0999", models.AccountTypeExpense},
	}
	for _, tc := range cases {
		if got := InferAccountType(tc.code); got != tc.want {
			t.Fatalf("code %q: expected %s, got %s", tc.code, tc.want, got)
		}
	}
}

func TestInferAccountType_NamedAccounts(t *testing.T) {
	cases := []struct {
		name string
		want models.AccountType
	}{
		{"Cash at Bank", models.AccountTypeAsset},
		{"Accounts Receivable", models.AccountTypeAsset},
		{"Inventory on Hand", models.AccountTypeAsset},
		{"Accounts Payable", models.AccountTypeLiability},
		{"Bank Loan", models.AccountTypeLiability},
		{"Share Capital", models.AccountTypeEquity},
		{"Owner's Equity", models.AccountTypeEquity},
		{"Sales", models.AccountTypeRevenue},
		{"Interest Income", models.AccountTypeRevenue},
		{"Office Rent", models.AccountTypeExpense},
		{"", models.AccountTypeExpense},
	}
	for _, tc := range cases {
		if got := InferAccountType(tc.name); got != tc.want {
			t.Fatalf("name %q: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreAccountNames(t *testing.T) {
	cases := []struct {
		company string
		master  string
		want    float64
	}{
		// identical names: full overlap plus the containment bonus
		{"Cash", "Cash", 1.3},
		// one shared word out of three, no containment
		{"Cash on Hand", "Petty Cash", 1.0 / 3.0},
		// pure thesaurus bridge, one source word
		{"Cloud Hosting", "Utilities Expense", 0.2},
		// thesaurus keys match whole words only: "licenses" is not "license"
		{"Software Licenses", "Research and Development", 0.2},
		// two thesaurus words, one hit each
		{"AWS Cloud Infrastructure", "Utilities", 0.4},
		// nothing in common at all
		{"Zzq Widgets", "Office Supplies", 0},
	}
	for _, tc := range cases {
		if got := scoreAccountNames(tc.company, tc.master); !almostEqual(got, tc.want) {
			t.Fatalf("score(%q, %q): expected %v, got %v", tc.company, tc.master, tc.want, got)
		}
	}
}

func TestHeuristicSuggestion_FallbackConfidenceBand(t *testing.T) {
	account := &models.CompanyAccount{ID: 1, AccountName: "Zzq Widgets", AccountType: models.AccountTypeExpense}
	masters := []*models.MasterAccount{
		{ID: 9, AccountName: "Office Supplies", AccountType: models.AccountTypeExpense},
	}

	suggestion := heuristicSuggestion(account, masters)
	if suggestion == nil {
		t.Fatalf("expected the weak-default suggestion, got nil")
	}
	if suggestion.MasterAccountId != 9 {
		t.Fatalf("expected master 9, got %d", suggestion.MasterAccountId)
	}
	if !almostEqual(suggestion.Confidence, 0.73) {
		t.Fatalf("expected fallback confidence 0.73, got %v", suggestion.Confidence)
	}
	if suggestion.Confidence < 0.65 || suggestion.Confidence >= 0.75 {
		t.Fatalf("fallback confidence must sit in the review band, got %v", suggestion.Confidence)
	}
	if !strings.HasPrefix(suggestion.Reasoning, "Suggested match:") {
		t.Fatalf("unexpected reasoning %q", suggestion.Reasoning)
	}
}

func TestHeuristicSuggestion_NoSameTypeMaster(t *testing.T) {
	account := &models.CompanyAccount{ID: 1, AccountName: "Cash", AccountType: models.AccountTypeAsset}
	masters := []*models.MasterAccount{
		{ID: 2, AccountName: "Accounts Payable", AccountType: models.AccountTypeLiability},
	}
	if got := heuristicSuggestion(account, masters); got != nil {
		t.Fatalf("expected nil without a same-type master, got %+v", got)
	}
}

func TestHeuristicSuggestion_TieKeepsEarliestMaster(t *testing.T) {
	account := &models.CompanyAccount{ID: 1, AccountName: "Cash", AccountType: models.AccountTypeAsset}
	masters := []*models.MasterAccount{
		{ID: 1, AccountName: "Petty Cash", AccountType: models.AccountTypeAsset},
		{ID: 2, AccountName: "Cash Float", AccountType: models.AccountTypeAsset},
	}
	suggestion := heuristicSuggestion(account, masters)
	if suggestion == nil || suggestion.MasterAccountId != 1 {
		t.Fatalf("expected the earlier master kept on a tie, got %+v", suggestion)
	}
}

func TestHeuristicSuggestion_ReasoningTiers(t *testing.T) {
	strong := heuristicSuggestion(
		&models.CompanyAccount{ID: 1, AccountName: "Accounts Receivable", AccountType: models.AccountTypeAsset},
		[]*models.MasterAccount{{ID: 5, AccountName: "Accounts Receivable", AccountType: models.AccountTypeAsset}},
	)
	if strong == nil || !strings.HasPrefix(strong.Reasoning, "Strong match:") {
		t.Fatalf("expected a strong-match reasoning, got %+v", strong)
	}
	if !strings.Contains(strong.Reasoning, "accounts, receivable") {
		t.Fatalf("expected the shared words listed, got %q", strong.Reasoning)
	}
	if !almostEqual(strong.Confidence, 0.98) {
		t.Fatalf("expected the confidence cap, got %v", strong.Confidence)
	}

	good := heuristicSuggestion(
		&models.CompanyAccount{ID: 1, AccountName: "Cash on Hand", AccountType: models.AccountTypeAsset},
		[]*models.MasterAccount{{ID: 6, AccountName: "Petty Cash", AccountType: models.AccountTypeAsset}},
	)
	if good == nil || !strings.HasPrefix(good.Reasoning, "Good match:") {
		t.Fatalf("expected a good-match reasoning, got %+v", good)
	}
	if !almostEqual(good.Confidence, 0.8) {
		t.Fatalf("expected confidence 0.8, got %v", good.Confidence)
	}
}

func TestHeuristicSuggestion_Deterministic(t *testing.T) {
	account := &models.CompanyAccount{ID: 7, AccountName: "Cloud Infrastructure Costs", AccountType: models.AccountTypeExpense}
	masters := []*models.MasterAccount{
		{ID: 1, AccountName: "Utilities", AccountType: models.AccountTypeExpense},
		{ID: 2, AccountName: "Research and Development", AccountType: models.AccountTypeExpense},
		{ID: 3, AccountName: "Professional Services", AccountType: models.AccountTypeExpense},
		{ID: 4, AccountName: "Office Supplies", AccountType: models.AccountTypeExpense},
	}

	first := heuristicSuggestion(account, masters)
	if first == nil {
		t.Fatalf("expected a suggestion")
	}
	for i := 0; i < 100; i++ {
		again := heuristicSuggestion(account, masters)
		if again.MasterAccountId != first.MasterAccountId || again.Confidence != first.Confidence || again.Reasoning != first.Reasoning {
			t.Fatalf("run %d: suggestion changed: %+v vs %+v", i, again, first)
		}
	}
}
