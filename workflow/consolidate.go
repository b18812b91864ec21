package workflow

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/bsm/redislock"
	"github.com/mmdatafocus/consolidation_backend/config"
	"github.com/mmdatafocus/consolidation_backend/models"
	"github.com/mmdatafocus/consolidation_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// identityTolerance bounds how far assets may drift from liabilities plus
// equity before a run is failed outright. Spreadsheet-sourced ledgers carry
// rounding noise; anything at or past a whole unit is real breakage.
var identityTolerance = decimal.NewFromInt(1)

// Consolidator drives a consolidation run end to end: reference data
// loading, aggregation, elimination, group totals, and the run record
// lifecycle.
type Consolidator struct {
	Logger     *logrus.Logger
	Eliminator Eliminator
	Workers    int
}

func NewConsolidator(logger *logrus.Logger) *Consolidator {
	return &Consolidator{
		Logger:     logger,
		Eliminator: NoopEliminator{},
	}
}

func (c *Consolidator) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// Run executes one consolidation. The run record is created before any
// heavy work so failures land on a visible Failed row; totals are
// published in a single update only when every stage finishes clean.
func (c *Consolidator) Run(ctx context.Context, input *models.NewConsolidationRun) (*models.ConsolidationRun, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	inProgress, err := models.RunInProgress(ctx, input.FiscalYear, input.FiscalPeriod, 0)
	if err != nil {
		return nil, err
	}
	if inProgress {
		return nil, utils.ErrorRunInProgress
	}

	// Best-effort distributed lock. The advisory lock below is the real
	// guard; Redis being down only costs us the early rejection.
	if locker := config.GetRedisLock(); locker != nil {
		lockKey := fmt.Sprintf("ConsolidationRun:%s:%d:%d", organizationId, input.FiscalYear, input.FiscalPeriod)
		lock, lockErr := locker.Obtain(ctx, lockKey, 10*time.Minute, nil)
		if lockErr == redislock.ErrNotObtained {
			return nil, utils.ErrorRunInProgress
		}
		if lockErr != nil {
			c.Logger.WithFields(logrus.Fields{
				"field":    "Run",
				"lock_key": lockKey,
			}).Warn("error obtaining redis lock; proceeding without redis lock: " + lockErr.Error())
		} else {
			defer func() {
				if releaseErr := lock.Release(ctx); releaseErr != nil {
					c.Logger.WithFields(logrus.Fields{
						"field":    "Run",
						"lock_key": lockKey,
					}).Warn("failed to release redis lock: " + releaseErr.Error())
				}
			}()
		}
	}

	db := config.GetDB()
	var run *models.ConsolidationRun
	err = db.Connection(func(conn *gorm.DB) error {
		if err := AcquireConsolidationLock(conn.WithContext(ctx), organizationId, input.FiscalYear, input.FiscalPeriod); err != nil {
			return err
		}
		defer ReleaseConsolidationLock(conn, organizationId, input.FiscalYear, input.FiscalPeriod)

		created, err := models.CreateRunRecord(ctx, input)
		if err != nil {
			return err
		}
		run = created
		return c.execute(ctx, run)
	})

	return run, err
}

func (c *Consolidator) execute(ctx context.Context, run *models.ConsolidationRun) error {
	startedAt := time.Now().UTC()

	// A run left Pending would block its period until cleaned up by hand,
	// so even a failure to flip the status marks the run Failed.
	if err := models.MarkRunProcessing(ctx, run); err != nil {
		if failErr := models.FailRun(ctx, run, err); failErr != nil {
			config.LogError(c.Logger, "consolidate.go", "execute", "MarkRunProcessing", run.ID, failErr)
		}
		return err
	}

	totals, err := c.computeTotals(ctx, run)
	if err != nil {
		if failErr := models.FailRun(ctx, run, err); failErr != nil {
			config.LogError(c.Logger, "consolidate.go", "execute", "FailRun", run.ID, failErr)
		}
		return err
	}

	return models.CompleteRun(ctx, run, totals, startedAt)
}

func (c *Consolidator) computeTotals(ctx context.Context, run *models.ConsolidationRun) (*models.RunTotals, error) {
	companyIds, err := run.CompanyIdsIncluded()
	if err != nil {
		return nil, err
	}

	data, err := loadRunData(ctx, run.FiscalYear, run.FiscalPeriod, companyIds)
	if err != nil {
		return nil, err
	}

	balances, unmapped := AggregateBalancesParallel(data.transactions, data.mappings, data.masterTypes, c.workers())

	eliminator := c.Eliminator
	if eliminator == nil {
		eliminator = NoopEliminator{}
	}
	adjusted, eliminations, err := eliminator.Eliminate(ctx, balances, data.companies, run.ID)
	if err != nil {
		return nil, err
	}

	totals := CalculateRunTotals(adjusted, data.companies)
	totals.EliminationCount = len(eliminations)
	totals.UnmappedAccountCount = len(unmapped)

	if err := CheckAccountingIdentity(totals); err != nil {
		return nil, err
	}

	if len(eliminations) > 0 {
		for _, elimination := range eliminations {
			elimination.OrganizationId = run.OrganizationId
			elimination.ConsolidationRunId = run.ID
		}
		if err := models.CreateEliminations(ctx, eliminations); err != nil {
			return nil, err
		}
	}

	return totals, nil
}

// runData is the immutable reference snapshot one run works from.
type runData struct {
	companies    []*models.Company
	transactions []*models.Transaction
	mappings     map[int]int
	masterTypes  map[int]models.AccountType
}

func loadRunData(ctx context.Context, fiscalYear int, fiscalPeriod int, companyIds []int) (*runData, error) {
	all, err := models.GetCompanies(ctx)
	if err != nil {
		return nil, err
	}

	wanted := make(map[int]bool, len(companyIds))
	for _, id := range companyIds {
		wanted[id] = true
	}

	var companies []*models.Company
	var ids []int
	for _, company := range all {
		if !utils.DereferencePtr(company.IsActive) {
			continue
		}
		if len(wanted) > 0 && !wanted[company.ID] {
			continue
		}
		companies = append(companies, company)
		ids = append(ids, company.ID)
	}

	transactions, err := models.TransactionsForPeriod(ctx, ids, fiscalYear, fiscalPeriod)
	if err != nil {
		return nil, err
	}
	mappings, err := models.ActiveMappingIndex(ctx, ids)
	if err != nil {
		return nil, err
	}
	masters, err := models.GetMasterAccounts(ctx)
	if err != nil {
		return nil, err
	}

	masterTypes := make(map[int]models.AccountType, len(masters))
	for _, master := range masters {
		masterTypes[master.ID] = master.AccountType
	}

	return &runData{
		companies:    companies,
		transactions: transactions,
		mappings:     mappings,
		masterTypes:  masterTypes,
	}, nil
}

// entityFigures sums one company's buckets by account type. Net movements
// on credit-normal accounts are carried as positive magnitudes so every
// statement line reads as its natural sign.
func entityFigures(balances BalanceSet, companyId int) (assets, liabilities, equityBase, revenue, expenses decimal.Decimal) {
	for key, balance := range balances {
		if key.CompanyId != companyId {
			continue
		}
		net := balance.Net()
		switch balance.AccountType {
		case models.AccountTypeAsset:
			assets = assets.Add(net)
		case models.AccountTypeLiability:
			liabilities = liabilities.Add(net.Abs())
		case models.AccountTypeEquity:
			equityBase = equityBase.Add(net.Abs())
		case models.AccountTypeRevenue:
			revenue = revenue.Add(net.Abs())
		default:
			expenses = expenses.Add(net)
		}
	}
	return
}

// CalculateRunTotals folds adjusted balances into group totals, splitting
// equity and income between the parent and non-controlling interests by
// each company's ownership percentage. Companies are visited in slice
// order, so the same input always yields the same totals.
func CalculateRunTotals(balances BalanceSet, companies []*models.Company) *models.RunTotals {
	totals := &models.RunTotals{}
	hundred := decimal.NewFromInt(100)

	for _, company := range companies {
		assets, liabilities, equityBase, revenue, expenses := entityFigures(balances, company.ID)
		netIncome := revenue.Sub(expenses)

		totals.TotalAssets = totals.TotalAssets.Add(assets)
		totals.TotalLiabilities = totals.TotalLiabilities.Add(liabilities)
		totals.TotalEquity = totals.TotalEquity.Add(equityBase)
		totals.TotalRevenue = totals.TotalRevenue.Add(revenue)
		totals.TotalExpenses = totals.TotalExpenses.Add(expenses)

		nciPct := hundred.Sub(company.OwnershipPercentage).Div(hundred)
		if nciPct.IsPositive() {
			entityEquity := equityBase.Add(netIncome)
			totals.NciEquity = totals.NciEquity.Add(entityEquity.Mul(nciPct))
			totals.NciIncome = totals.NciIncome.Add(netIncome.Mul(nciPct))
		}
	}

	totals.NetIncome = totals.TotalRevenue.Sub(totals.TotalExpenses)
	totals.TotalEquity = totals.TotalEquity.Add(totals.NetIncome)
	// parent share is defined as the remainder, so the equity split always
	// foots exactly
	totals.ParentEquity = totals.TotalEquity.Sub(totals.NciEquity)
	totals.ParentNetIncome = totals.NetIncome.Sub(totals.NciIncome)

	return totals
}

// CheckAccountingIdentity verifies assets against liabilities plus equity
// within the tolerance.
func CheckAccountingIdentity(totals *models.RunTotals) error {
	diff := totals.TotalAssets.Sub(totals.TotalLiabilities.Add(totals.TotalEquity)).Abs()
	if diff.GreaterThanOrEqual(identityTolerance) {
		return fmt.Errorf("accounting identity violated: assets %s != liabilities %s + equity %s (difference %s)",
			totals.TotalAssets, totals.TotalLiabilities, totals.TotalEquity, diff)
	}
	return nil
}

// Breakdown recomputes per-company figures for a stored run. Equity is
// presented as assets minus liabilities so each entity's column foots even
// when its ledger arrived without explicit equity postings.
func (c *Consolidator) Breakdown(ctx context.Context, run *models.ConsolidationRun) ([]*models.CompanyBreakdown, error) {
	companyIds, err := run.CompanyIdsIncluded()
	if err != nil {
		return nil, err
	}

	data, err := loadRunData(ctx, run.FiscalYear, run.FiscalPeriod, companyIds)
	if err != nil {
		return nil, err
	}

	balances, _ := AggregateBalances(data.transactions, data.mappings, data.masterTypes)

	counts := make(map[int]int, len(data.companies))
	for _, transaction := range data.transactions {
		counts[transaction.CompanyId]++
	}

	breakdown := make([]*models.CompanyBreakdown, 0, len(data.companies))
	for _, company := range data.companies {
		assets, liabilities, _, revenue, expenses := entityFigures(balances, company.ID)
		breakdown = append(breakdown, &models.CompanyBreakdown{
			CompanyId:        company.ID,
			CompanyName:      company.Name,
			Currency:         company.Currency,
			Assets:           assets,
			Liabilities:      liabilities,
			Equity:           assets.Sub(liabilities),
			Revenue:          revenue,
			Expenses:         expenses,
			NetIncome:        revenue.Sub(expenses),
			TransactionCount: counts[company.ID],
		})
	}

	return breakdown, nil
}
