package aimatch

import (
	"context"

	"github.com/mmdatafocus/consolidation_backend/models"
)

// Disabled is the explicit no-oracle provider. It never errors; it simply
// proposes nothing, which leaves every decision to the deterministic
// heuristics. Tests run against this variant.
type Disabled struct{}

func (Disabled) Enabled() bool {
	return false
}

func (Disabled) Close() error {
	return nil
}

func (Disabled) Suggest(ctx context.Context, companyAccounts []*models.CompanyAccount, masterAccounts []*models.MasterAccount, orgContext string) ([]Suggestion, error) {
	return nil, nil
}

func (Disabled) MapColumns(ctx context.Context, columns []string, sampleRows [][]string) (map[string]string, error) {
	return nil, nil
}
