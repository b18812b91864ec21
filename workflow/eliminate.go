package workflow

import (
	"context"

	"github.com/mmdatafocus/consolidation_backend/models"
)

// Eliminator adjusts aggregated balances for intercompany activity and
// reports the offsetting entries it produced. Implementations return the
// input set untouched when there is nothing to eliminate.
type Eliminator interface {
	Eliminate(ctx context.Context, balances BalanceSet, companies []*models.Company, runId int) (BalanceSet, []*models.IntercompanyElimination, error)
}

// NoopEliminator is the pass-through implementation: consolidated totals
// equal the plain sum of the entities. Intercompany pair matching plugs in
// behind this seam.
type NoopEliminator struct{}

func (NoopEliminator) Eliminate(ctx context.Context, balances BalanceSet, companies []*models.Company, runId int) (BalanceSet, []*models.IntercompanyElimination, error) {
	return balances, nil, nil
}
