package workflow

import (
	"sync"

	"github.com/mmdatafocus/consolidation_backend/models"
	"github.com/shopspring/decimal"
)

// BalanceKey identifies one (company, master account) bucket in a
// consolidation run.
type BalanceKey struct {
	CompanyId       int
	MasterAccountId int
}

// Balance carries the summed debit and credit sides for one bucket.
type Balance struct {
	AccountType models.AccountType
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// Net is the debit-normal net movement of the bucket.
func (b Balance) Net() decimal.Decimal {
	return b.Debit.Sub(b.Credit)
}

// BalanceSet keys aggregated balances by company and master account.
type BalanceSet map[BalanceKey]Balance

func (s BalanceSet) add(key BalanceKey, accountType models.AccountType, debit decimal.Decimal, credit decimal.Decimal) {
	balance, ok := s[key]
	if !ok {
		balance = Balance{AccountType: accountType}
	}
	balance.Debit = balance.Debit.Add(debit)
	balance.Credit = balance.Credit.Add(credit)
	s[key] = balance
}

func (s BalanceSet) merge(other BalanceSet) {
	for key, balance := range other {
		s.add(key, balance.AccountType, balance.Debit, balance.Credit)
	}
}

// AggregateBalances rolls transactions up into (company, master account)
// buckets through each account's active mapping. Transactions whose account
// has no active mapping are skipped; their distinct account ids come back
// so the run can report how much data it could not place.
func AggregateBalances(transactions []*models.Transaction, mappings map[int]int, masterTypes map[int]models.AccountType) (BalanceSet, []int) {
	balances := BalanceSet{}
	unmappedSeen := map[int]bool{}
	var unmapped []int

	for _, transaction := range transactions {
		masterId, ok := mappings[transaction.AccountId]
		if !ok {
			if !unmappedSeen[transaction.AccountId] {
				unmappedSeen[transaction.AccountId] = true
				unmapped = append(unmapped, transaction.AccountId)
			}
			continue
		}
		key := BalanceKey{CompanyId: transaction.CompanyId, MasterAccountId: masterId}
		balances.add(key, masterTypes[masterId], transaction.DebitAmount, transaction.CreditAmount)
	}

	return balances, unmapped
}

// AggregateBalancesParallel fans the transaction slice out over workers and
// merges the per-worker sets. Bucket addition is associative, so the merged
// result is identical to the sequential pass regardless of chunking.
func AggregateBalancesParallel(transactions []*models.Transaction, mappings map[int]int, masterTypes map[int]models.AccountType, workers int) (BalanceSet, []int) {
	if workers <= 1 || len(transactions) <= workers {
		return AggregateBalances(transactions, mappings, masterTypes)
	}

	type partial struct {
		balances BalanceSet
		unmapped []int
	}

	chunk := (len(transactions) + workers - 1) / workers
	results := make([]partial, 0, workers)
	for start := 0; start < len(transactions); start += chunk {
		results = append(results, partial{})
	}

	var wg sync.WaitGroup
	for slot := range results {
		start := slot * chunk
		end := start + chunk
		if end > len(transactions) {
			end = len(transactions)
		}
		wg.Add(1)
		go func(slot int, part []*models.Transaction) {
			defer wg.Done()
			balances, unmapped := AggregateBalances(part, mappings, masterTypes)
			results[slot] = partial{balances: balances, unmapped: unmapped}
		}(slot, transactions[start:end])
	}
	wg.Wait()

	merged := BalanceSet{}
	unmappedSeen := map[int]bool{}
	var unmapped []int
	for _, result := range results {
		merged.merge(result.balances)
		for _, id := range result.unmapped {
			if !unmappedSeen[id] {
				unmappedSeen[id] = true
				unmapped = append(unmapped, id)
			}
		}
	}

	return merged, unmapped
}
