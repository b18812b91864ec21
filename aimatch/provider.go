package aimatch

import (
	"context"
	"os"

	"github.com/mmdatafocus/consolidation_backend/config"
	"github.com/mmdatafocus/consolidation_backend/models"
	"github.com/sirupsen/logrus"
)

// Suggestion is one proposed company-account → master-account mapping
// returned by a matching provider.
type Suggestion struct {
	CompanyAccountId int     `json:"company_account_id"`
	MasterAccountId  int     `json:"master_account_id"`
	Confidence       float64 `json:"confidence"`
	Reasoning        string  `json:"reasoning"`
}

// Suggester proposes master-chart mappings for a batch of company accounts.
// Implementations may return fewer suggestions than accounts; callers fall
// back to the heuristic resolver for the rest. Any error means "use the
// heuristic instead", never "abort the import".
type Suggester interface {
	Suggest(ctx context.Context, companyAccounts []*models.CompanyAccount, masterAccounts []*models.MasterAccount, orgContext string) ([]Suggestion, error)
}

// ColumnMapper maps raw spreadsheet column headings onto canonical field
// names ("date", "account_number", "description", "debit", "credit",
// "reference", "amount"). Same degrade-gracefully contract as Suggester.
type ColumnMapper interface {
	MapColumns(ctx context.Context, columns []string, sampleRows [][]string) (map[string]string, error)
}

// Provider bundles both oracle roles behind a single constructor so the
// process wires exactly one of them at startup and releases it at shutdown.
type Provider interface {
	Suggester
	ColumnMapper
	Enabled() bool
	Close() error
}

// NewProviderFromEnv picks the provider once at process start: Gemini when a
// key is configured and suggestions are not feature-flagged off, otherwise
// the Disabled provider. Callers hold the returned handle; nothing here is a
// global.
func NewProviderFromEnv(ctx context.Context, logger *logrus.Logger) Provider {
	if config.SuggestionsDisabled() || os.Getenv("GEMINI_API_KEY") == "" {
		return Disabled{}
	}
	provider, err := NewGeminiProvider(ctx, logger)
	if err != nil {
		config.LogError(logger, "provider.go", "NewProviderFromEnv", "NewGeminiProvider", nil, err)
		return Disabled{}
	}
	return provider
}
