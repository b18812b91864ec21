// remap-accounts re-runs the account resolver for every company account that
// has no active mapping, storing fresh suggestions (and auto-activating the
// high-confidence ones). Useful after enlarging the master chart or enabling
// the AI provider.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mmdatafocus/consolidation_backend/aimatch"
	"github.com/mmdatafocus/consolidation_backend/config"
	"github.com/mmdatafocus/consolidation_backend/models"
	"github.com/mmdatafocus/consolidation_backend/utils"
	"github.com/mmdatafocus/consolidation_backend/workflow"
	"github.com/sirupsen/logrus"
)

func main() {
	organizationID := flag.String("organization-id", "", "Required: organization id (uuid)")
	companyID := flag.Int("company-id", 0, "Optional: restrict to one company")
	threshold := flag.Float64("threshold", 0, "Optional: auto-activation threshold (default: AUTO_MAP_THRESHOLD)")
	continueOnError := flag.Bool("continue-on-error", false, "Skip failing companies and continue")
	flag.Parse()

	if strings.TrimSpace(*organizationID) == "" {
		fmt.Fprintln(os.Stderr, "--organization-id is required")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	logger := logrus.New()

	ctx := utils.SetOrganizationIdInContext(context.Background(), strings.TrimSpace(*organizationID))

	var suggester aimatch.Suggester
	provider := aimatch.NewProviderFromEnv(ctx, logger)
	defer func() { _ = provider.Close() }()
	if provider.Enabled() {
		suggester = provider
	}

	var companyIds []int
	if *companyID > 0 {
		companyIds = []int{*companyID}
	} else {
		companies, err := models.GetCompanies(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to list companies: %v\n", err)
			os.Exit(1)
		}
		for _, company := range companies {
			if company.IsActive != nil && !*company.IsActive {
				continue
			}
			companyIds = append(companyIds, company.ID)
		}
	}

	totalStored := 0
	for _, id := range companyIds {
		stored, err := workflow.SuggestOutstanding(ctx, logger, id, *threshold, suggester)
		if err != nil {
			if *continueOnError {
				fmt.Fprintf(os.Stderr, "remap failed for company %d (skipping): %v\n", id, err)
				continue
			}
			fmt.Fprintf(os.Stderr, "remap failed for company %d: %v\n", id, err)
			os.Exit(1)
		}
		fmt.Printf("company=%d suggestions_stored=%d\n", id, len(stored))
		totalStored += len(stored)
	}

	fmt.Printf("remap complete: %d companies, %d suggestions stored\n", len(companyIds), totalStored)
}
