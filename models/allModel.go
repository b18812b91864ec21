package models

import (
	"context"

	"github.com/shopspring/decimal"
)

// embedding struct will receive ID field
type HasId struct {
	ID int `json:"id"`
}

// slim projection of Company for list endpoints and pickers.
// Cached per organization; invalidated on every company write.
type AllCompany struct {
	HasId
	Name                string              `json:"name"`
	Currency            string              `json:"currency"`
	ParentCompanyId     *int                `json:"parent_company_id"`
	OwnershipPercentage decimal.Decimal     `json:"ownership_percentage"`
	ConsolidationMethod ConsolidationMethod `json:"consolidation_method"`
	IsActive            bool                `json:"is_active"`
}

// slim projection of MasterAccount for the mapping review dropdown.
type AllMasterAccount struct {
	HasId
	AccountNumber string      `json:"account_number"`
	AccountName   string      `json:"account_name"`
	AccountType   AccountType `json:"account_type"`
	Category      string      `json:"category"`
	Subcategory   string      `json:"subcategory"`
	IsActive      bool        `json:"is_active"`
}

func ListAllCompany(ctx context.Context) ([]*AllCompany, error) {
	return ListAllResource[Company, AllCompany](ctx, "name")
}

func ListAllMasterAccount(ctx context.Context) ([]*AllMasterAccount, error) {
	return ListAllResource[MasterAccount, AllMasterAccount](ctx, "account_number")
}
