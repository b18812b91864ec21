package workflow

import (
	"strings"
	"testing"

	"github.com/mmdatafocus/consolidation_backend/models"
	"github.com/shopspring/decimal"
)

// NOTE: These tests are intentionally DB-free. They validate the totals and
// identity math on constructed balance sets; full import-to-run integration
// tests need MySQL and belong in an environment that can run one.

func TestCalculateRunTotals_MinorityInterestSplit(t *testing.T) {
	// Parent wholly owned, subsidiary at 75%. The subsidiary closes the
	// period at 400k equity (360k opening plus 40k income), so the outside
	// shareholders carry 100k of equity and 10k of income.
	balances := BalanceSet{
		{CompanyId: 1, MasterAccountId: 100}: {AccountType: models.AccountTypeAsset, Debit: decInt(1_000_000)},
		{CompanyId: 1, MasterAccountId: 300}: {AccountType: models.AccountTypeEquity, Credit: decInt(900_000)},
		{CompanyId: 1, MasterAccountId: 400}: {AccountType: models.AccountTypeRevenue, Credit: decInt(500_000)},
		{CompanyId: 1, MasterAccountId: 500}: {AccountType: models.AccountTypeExpense, Debit: decInt(400_000)},

		{CompanyId: 2, MasterAccountId: 100}: {AccountType: models.AccountTypeAsset, Debit: decInt(450_000)},
		{CompanyId: 2, MasterAccountId: 200}: {AccountType: models.AccountTypeLiability, Credit: decInt(50_000)},
		{CompanyId: 2, MasterAccountId: 300}: {AccountType: models.AccountTypeEquity, Credit: decInt(360_000)},
		{CompanyId: 2, MasterAccountId: 400}: {AccountType: models.AccountTypeRevenue, Credit: decInt(140_000)},
		{CompanyId: 2, MasterAccountId: 500}: {AccountType: models.AccountTypeExpense, Debit: decInt(100_000)},
	}
	companies := []*models.Company{
		{ID: 1, Name: "Parent Co", OwnershipPercentage: decInt(100)},
		{ID: 2, Name: "Subsidiary Co", OwnershipPercentage: decInt(75)},
	}

	totals := CalculateRunTotals(balances, companies)

	assertDecimal(t, "total assets", totals.TotalAssets, 1_450_000)
	assertDecimal(t, "total liabilities", totals.TotalLiabilities, 50_000)
	assertDecimal(t, "total equity", totals.TotalEquity, 1_400_000)
	assertDecimal(t, "net income", totals.NetIncome, 140_000)
	assertDecimal(t, "nci equity", totals.NciEquity, 100_000)
	assertDecimal(t, "nci income", totals.NciIncome, 10_000)
	assertDecimal(t, "parent equity", totals.ParentEquity, 1_300_000)
	assertDecimal(t, "parent net income", totals.ParentNetIncome, 130_000)

	if err := CheckAccountingIdentity(totals); err != nil {
		t.Fatalf("expected the identity to hold, got %v", err)
	}
}

func TestCalculateRunTotals_EquitySplitFootsExactly(t *testing.T) {
	// Odd ownership percentages produce repeating-decimal NCI shares; the
	// parent share is the remainder, so the two always rebuild total equity.
	balances := BalanceSet{
		{CompanyId: 1, MasterAccountId: 300}: {AccountType: models.AccountTypeEquity, Credit: decimal.NewFromFloat(333_333.33)},
		{CompanyId: 1, MasterAccountId: 400}: {AccountType: models.AccountTypeRevenue, Credit: decimal.NewFromFloat(77_777.77)},
	}
	companies := []*models.Company{
		{ID: 1, Name: "Oddly Owned Co", OwnershipPercentage: decimal.NewFromFloat(66.67)},
	}

	totals := CalculateRunTotals(balances, companies)

	recombined := totals.ParentEquity.Add(totals.NciEquity)
	if !recombined.Equal(totals.TotalEquity) {
		t.Fatalf("equity split does not foot: parent %s + nci %s != total %s",
			totals.ParentEquity, totals.NciEquity, totals.TotalEquity)
	}
	income := totals.ParentNetIncome.Add(totals.NciIncome)
	if !income.Equal(totals.NetIncome) {
		t.Fatalf("income split does not foot: %s != %s", income, totals.NetIncome)
	}
}

func TestCalculateRunTotals_WhollyOwnedHasNoMinorityInterest(t *testing.T) {
	balances := BalanceSet{
		{CompanyId: 1, MasterAccountId: 300}: {AccountType: models.AccountTypeEquity, Credit: decInt(500_000)},
	}
	companies := []*models.Company{
		{ID: 1, Name: "Solo Co", OwnershipPercentage: decInt(100)},
	}

	totals := CalculateRunTotals(balances, companies)
	if !totals.NciEquity.IsZero() || !totals.NciIncome.IsZero() {
		t.Fatalf("expected zero NCI for a wholly owned company, got equity=%s income=%s",
			totals.NciEquity, totals.NciIncome)
	}
	assertDecimal(t, "parent equity", totals.ParentEquity, 500_000)
}

func TestCheckAccountingIdentity_Boundary(t *testing.T) {
	totals := &models.RunTotals{
		TotalAssets:      decInt(1000),
		TotalLiabilities: decInt(400),
		TotalEquity:      decimal.NewFromFloat(599.01),
	}
	if err := CheckAccountingIdentity(totals); err != nil {
		t.Fatalf("a 0.99 difference is rounding noise, got %v", err)
	}

	totals.TotalEquity = decInt(599)
	err := CheckAccountingIdentity(totals)
	if err == nil {
		t.Fatalf("a whole-unit difference must fail the run")
	}
	if !strings.Contains(err.Error(), "accounting identity violated") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestEntityFigures_SignConventions(t *testing.T) {
	balances := BalanceSet{
		// overdrawn asset stays negative instead of flipping sides
		{CompanyId: 1, MasterAccountId: 100}: {AccountType: models.AccountTypeAsset, Debit: decInt(100), Credit: decInt(250)},
		{CompanyId: 1, MasterAccountId: 200}: {AccountType: models.AccountTypeLiability, Credit: decInt(500)},
		{CompanyId: 1, MasterAccountId: 400}: {AccountType: models.AccountTypeRevenue, Credit: decInt(900)},
		{CompanyId: 1, MasterAccountId: 500}: {AccountType: models.AccountTypeExpense, Debit: decInt(300)},
		// another company's buckets must not bleed in
		{CompanyId: 2, MasterAccountId: 100}: {AccountType: models.AccountTypeAsset, Debit: decInt(77)},
	}

	assets, liabilities, _, revenue, expenses := entityFigures(balances, 1)
	assertDecimal(t, "assets", assets, -150)
	assertDecimal(t, "liabilities", liabilities, 500)
	assertDecimal(t, "revenue", revenue, 900)
	assertDecimal(t, "expenses", expenses, 300)
}

func TestNoopEliminator_PassesBalancesThrough(t *testing.T) {
	balances := BalanceSet{
		{CompanyId: 1, MasterAccountId: 100}: {AccountType: models.AccountTypeAsset, Debit: decInt(10)},
	}
	adjusted, eliminations, err := NoopEliminator{}.Eliminate(nil, balances, nil, 1)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(eliminations) != 0 {
		t.Fatalf("expected no eliminations, got %d", len(eliminations))
	}
	if len(adjusted) != 1 || !adjusted[BalanceKey{CompanyId: 1, MasterAccountId: 100}].Debit.Equal(decInt(10)) {
		t.Fatalf("expected the input set unchanged, got %+v", adjusted)
	}
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want int64) {
	t.Helper()
	if !got.Equal(decInt(want)) {
		t.Fatalf("%s: expected %d, got %s", name, want, got)
	}
}
