package models

import (
	"github.com/mmdatafocus/consolidation_backend/utils"
	"gorm.io/gorm"
)

type defaultAccount struct {
	Number   string
	Name     string
	Type     AccountType
	Category string
}

// standard master chart seeded for every new organization
func defaultMasterChart() []defaultAccount {
	return []defaultAccount{
		// Assets
		{"1000", "Cash and Cash Equivalents", AccountTypeAsset, "Current Assets"},
		{"1100", "Accounts Receivable", AccountTypeAsset, "Current Assets"},
		{"1200", "Inventory", AccountTypeAsset, "Current Assets"},
		{"1300", "Prepaid Expenses", AccountTypeAsset, "Current Assets"},
		{"1500", "Property, Plant & Equipment", AccountTypeAsset, "Fixed Assets"},
		{"1600", "Accumulated Depreciation", AccountTypeAsset, "Fixed Assets"},
		{"1700", "Intangible Assets", AccountTypeAsset, "Fixed Assets"},
		{"1800", "Goodwill", AccountTypeAsset, "Fixed Assets"},
		// Liabilities
		{"2000", "Accounts Payable", AccountTypeLiability, "Current Liabilities"},
		{"2100", "Accrued Expenses", AccountTypeLiability, "Current Liabilities"},
		{"2200", "Short-term Debt", AccountTypeLiability, "Current Liabilities"},
		{"2300", "Deferred Revenue", AccountTypeLiability, "Current Liabilities"},
		{"2500", "Long-term Debt", AccountTypeLiability, "Long-term Liabilities"},
		// Equity
		{"3000", "Common Stock", AccountTypeEquity, "Shareholders' Equity"},
		{"3100", "Retained Earnings", AccountTypeEquity, "Shareholders' Equity"},
		// Revenue
		{"4000", "Product Revenue", AccountTypeRevenue, "Operating Revenue"},
		{"4100", "Service Revenue", AccountTypeRevenue, "Operating Revenue"},
		{"4200", "Subscription Revenue", AccountTypeRevenue, "Operating Revenue"},
		{"4300", "Consulting Revenue", AccountTypeRevenue, "Operating Revenue"},
		// Expenses
		{"5000", "Cost of Goods Sold", AccountTypeExpense, "Direct Costs"},
		{"5100", "Cost of Services", AccountTypeExpense, "Direct Costs"},
		{"6000", "Salaries and Wages", AccountTypeExpense, "Operating Expenses"},
		{"6100", "Employee Benefits", AccountTypeExpense, "Operating Expenses"},
		{"6200", "Rent Expense", AccountTypeExpense, "Operating Expenses"},
		{"6300", "Utilities", AccountTypeExpense, "Operating Expenses"},
		{"6400", "Marketing and Advertising", AccountTypeExpense, "Operating Expenses"},
		{"6500", "Research and Development", AccountTypeExpense, "Operating Expenses"},
		{"6600", "Professional Services", AccountTypeExpense, "Operating Expenses"},
		{"6700", "Insurance", AccountTypeExpense, "Operating Expenses"},
		{"6800", "Depreciation Expense", AccountTypeExpense, "Operating Expenses"},
		{"7000", "Interest Expense", AccountTypeExpense, "Financial Expenses"},
	}
}

func seedMasterAccounts(tx *gorm.DB, organizationId string) error {

	var accounts []MasterAccount
	for _, d := range defaultMasterChart() {
		accounts = append(accounts, MasterAccount{
			OrganizationId: organizationId,
			AccountNumber:  d.Number,
			AccountName:    d.Name,
			AccountType:    d.Type,
			Category:       d.Category,
			IsActive:       utils.NewTrue(),
		})
	}

	if err := tx.Create(&accounts).Error; err != nil {
		tx.Rollback()
		return err
	}

	return nil
}
