package workflow

import (
	"fmt"
	"testing"

	"github.com/mmdatafocus/consolidation_backend/models"
	"github.com/shopspring/decimal"
)

func decInt(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

func TestAggregateBalances_BucketsAndUnmapped(t *testing.T) {
	transactions := []*models.Transaction{
		{CompanyId: 1, AccountId: 10, DebitAmount: decInt(100)},
		{CompanyId: 1, AccountId: 10, CreditAmount: decInt(30)},
		{CompanyId: 1, AccountId: 11, CreditAmount: decInt(70)},
		{CompanyId: 2, AccountId: 12, DebitAmount: decInt(40)},
		{CompanyId: 2, AccountId: 99, DebitAmount: decInt(5)},
		{CompanyId: 2, AccountId: 99, DebitAmount: decInt(5)},
		{CompanyId: 2, AccountId: 98, CreditAmount: decInt(1)},
	}
	mappings := map[int]int{10: 500, 11: 600, 12: 500}
	masterTypes := map[int]models.AccountType{
		500: models.AccountTypeAsset,
		600: models.AccountTypeRevenue,
	}

	balances, unmapped := AggregateBalances(transactions, mappings, masterTypes)

	if len(balances) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(balances))
	}

	cash := balances[BalanceKey{CompanyId: 1, MasterAccountId: 500}]
	if !cash.Debit.Equal(decInt(100)) || !cash.Credit.Equal(decInt(30)) {
		t.Fatalf("unexpected bucket sums: debit=%s credit=%s", cash.Debit, cash.Credit)
	}
	if !cash.Net().Equal(decInt(70)) {
		t.Fatalf("expected net 70, got %s", cash.Net())
	}
	if cash.AccountType != models.AccountTypeAsset {
		t.Fatalf("expected the master type carried onto the bucket, got %s", cash.AccountType)
	}

	if len(unmapped) != 2 || unmapped[0] != 99 || unmapped[1] != 98 {
		t.Fatalf("expected distinct unmapped accounts in first-seen order, got %v", unmapped)
	}
}

func TestAggregateBalances_Idempotent(t *testing.T) {
	transactions := []*models.Transaction{
		{CompanyId: 1, AccountId: 10, DebitAmount: decInt(100)},
		{CompanyId: 1, AccountId: 11, CreditAmount: decInt(100)},
	}
	mappings := map[int]int{10: 500, 11: 600}
	masterTypes := map[int]models.AccountType{500: models.AccountTypeAsset, 600: models.AccountTypeRevenue}

	first, _ := AggregateBalances(transactions, mappings, masterTypes)
	second, _ := AggregateBalances(transactions, mappings, masterTypes)

	if len(first) != len(second) {
		t.Fatalf("bucket counts differ: %d vs %d", len(first), len(second))
	}
	for key, balance := range first {
		other := second[key]
		if !balance.Debit.Equal(other.Debit) || !balance.Credit.Equal(other.Credit) {
			t.Fatalf("bucket %+v differs between runs", key)
		}
	}
}

func TestAggregateBalancesParallel_MatchesSequential(t *testing.T) {
	var transactions []*models.Transaction
	mappings := map[int]int{}
	masterTypes := map[int]models.AccountType{}
	for i := 0; i < 10; i++ {
		accountId := 100 + i
		if i%4 != 3 {
			mappings[accountId] = 500 + i%3
		}
		masterTypes[500+i%3] = models.AccountTypeAsset
	}
	for i := 0; i < 997; i++ {
		transactions = append(transactions, &models.Transaction{
			CompanyId:    1 + i%3,
			AccountId:    100 + i%10,
			DebitAmount:  decInt(int64(i)),
			CreditAmount: decInt(int64(i % 7)),
		})
	}

	sequential, seqUnmapped := AggregateBalances(transactions, mappings, masterTypes)

	for _, workers := range []int{2, 4, 8} {
		parallel, parUnmapped := AggregateBalancesParallel(transactions, mappings, masterTypes, workers)

		if len(parallel) != len(sequential) {
			t.Fatalf("workers=%d: bucket counts differ: %d vs %d", workers, len(parallel), len(sequential))
		}
		for key, want := range sequential {
			got, ok := parallel[key]
			if !ok {
				t.Fatalf("workers=%d: bucket %+v missing from parallel result", workers, key)
			}
			if !got.Debit.Equal(want.Debit) || !got.Credit.Equal(want.Credit) || got.AccountType != want.AccountType {
				t.Fatalf("workers=%d: bucket %+v differs: %+v vs %+v", workers, key, got, want)
			}
		}

		seqSet := fmt.Sprint(toSet(seqUnmapped))
		parSet := fmt.Sprint(toSet(parUnmapped))
		if seqSet != parSet {
			t.Fatalf("workers=%d: unmapped accounts differ: %v vs %v", workers, parUnmapped, seqUnmapped)
		}
	}
}

func toSet(ids []int) map[int]bool {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func TestAggregateBalancesParallel_SmallInputFallsBackToSequential(t *testing.T) {
	transactions := []*models.Transaction{
		{CompanyId: 1, AccountId: 10, DebitAmount: decInt(5)},
	}
	mappings := map[int]int{10: 500}
	masterTypes := map[int]models.AccountType{500: models.AccountTypeAsset}

	balances, _ := AggregateBalancesParallel(transactions, mappings, masterTypes, 8)
	if len(balances) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(balances))
	}
}
