package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/consolidation_backend/config"
	"github.com/mmdatafocus/consolidation_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Transaction struct {
	ID                    int             `gorm:"primary_key" json:"id"`
	OrganizationId        string          `gorm:"index;not null" json:"organization_id" binding:"required"`
	CompanyId             int             `gorm:"index;not null" json:"company_id" binding:"required"`
	AccountId             int             `gorm:"index;not null" json:"account_id" binding:"required"`
	TransactionDate       time.Time       `gorm:"index;not null" json:"transaction_date" binding:"required"`
	Description           string          `gorm:"type:text" json:"description"`
	Reference             *string         `gorm:"size:255" json:"reference"`
	DebitAmount           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"debit_amount"`
	CreditAmount          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"credit_amount"`
	Currency              string          `gorm:"size:3;not null;default:USD" json:"currency"`
	TransactionType       TransactionType `gorm:"type:enum('Standard','Intercompany','Elimination','Adjustment');default:Standard" json:"transaction_type"`
	IsIntercompany        *bool           `gorm:"not null;default:false" json:"is_intercompany"`
	CounterpartyCompanyId *int            `gorm:"index" json:"counterparty_company_id"`
	FiscalYear            int             `gorm:"index;not null" json:"fiscal_year"`
	FiscalPeriod          int             `gorm:"index;not null" json:"fiscal_period"`
	CreatedAt             time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewTransaction struct {
	CompanyId             int             `json:"company_id" binding:"required"`
	AccountId             int             `json:"account_id" binding:"required"`
	TransactionDate       MyDateString    `json:"transaction_date" binding:"required"`
	Description           string          `json:"description"`
	Reference             *string         `json:"reference"`
	DebitAmount           decimal.Decimal `json:"debit_amount"`
	CreditAmount          decimal.Decimal `json:"credit_amount"`
	Currency              string          `json:"currency"`
	TransactionType       TransactionType `json:"transaction_type"`
	IsIntercompany        *bool           `json:"is_intercompany"`
	CounterpartyCompanyId *int            `json:"counterparty_company_id"`
}

// fiscal year / period follow the transaction's calendar date
func fiscalYearPeriod(date time.Time) (int, int) {
	return date.Year(), int(date.Month())
}

func (input *NewTransaction) validate(ctx context.Context, organizationId string) error {
	// company & account
	if err := utils.ValidateResourceId[Company](ctx, organizationId, input.CompanyId); err != nil {
		return errors.New("company not found")
	}
	count, err := utils.ResourceCountWhere[CompanyAccount](ctx, organizationId,
		"company_id = ? AND id = ?", input.CompanyId, input.AccountId)
	if err != nil {
		return err
	}
	if count <= 0 {
		return errors.New("account not found in company")
	}
	// one-sided entry
	if input.DebitAmount.IsNegative() || input.CreditAmount.IsNegative() {
		return errors.New("amounts cannot be negative")
	}
	if input.DebitAmount.IsZero() && input.CreditAmount.IsZero() {
		return errors.New("either debit or credit amount is required")
	}
	if input.DebitAmount.IsPositive() && input.CreditAmount.IsPositive() {
		return errors.New("transaction cannot be both debit and credit")
	}
	if input.CounterpartyCompanyId != nil {
		if err := utils.ValidateResourceId[Company](ctx, organizationId, *input.CounterpartyCompanyId); err != nil {
			return errors.New("counterparty company not found")
		}
	}
	return nil
}

func CreateTransaction(ctx context.Context, input *NewTransaction) (*Transaction, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	if err := input.validate(ctx, organizationId); err != nil {
		return nil, err
	}

	transaction := input.build(organizationId)

	// db action
	db := config.GetDB()
	err := db.WithContext(ctx).Create(transaction).Error
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

func (input *NewTransaction) build(organizationId string) *Transaction {

	date := input.TransactionDate.Time()
	fiscalYear, fiscalPeriod := fiscalYearPeriod(date)

	transactionType := input.TransactionType
	if transactionType == "" {
		transactionType = TransactionTypeStandard
	}
	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}
	isIntercompany := input.IsIntercompany
	if isIntercompany == nil {
		isIntercompany = utils.NewFalse()
	}

	return &Transaction{
		OrganizationId:        organizationId,
		CompanyId:             input.CompanyId,
		AccountId:             input.AccountId,
		TransactionDate:       date,
		Description:           input.Description,
		Reference:             input.Reference,
		DebitAmount:           input.DebitAmount,
		CreditAmount:          input.CreditAmount,
		Currency:              currency,
		TransactionType:       transactionType,
		IsIntercompany:        isIntercompany,
		CounterpartyCompanyId: input.CounterpartyCompanyId,
		FiscalYear:            fiscalYear,
		FiscalPeriod:          fiscalPeriod,
	}
}

// BatchInsertTransactions writes one import's worth of rows in a single
// transaction so a failed import leaves nothing behind.
func BatchInsertTransactions(ctx context.Context, transactions []*Transaction) error {

	if len(transactions) == 0 {
		return nil
	}

	db := config.GetDB()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(transactions, 500).Error
	})
}

type TransactionFilter struct {
	CompanyId    int     `form:"company_id"`
	FiscalYear   int     `form:"fiscal_year"`
	FiscalPeriod int     `form:"fiscal_period"`
	Limit        int     `form:"limit"`
	After        *string `form:"after"`
}

type TransactionConnection struct {
	Transactions []*Transaction `json:"transactions"`
	PageInfo     PageInfo       `json:"page_info"`
	TotalCount   int64          `json:"total_count"`
}

func GetTransactions(ctx context.Context, filter *TransactionFilter) (*TransactionConnection, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&Transaction{}).Where("organization_id = ?", organizationId)
	if filter.CompanyId > 0 {
		dbCtx.Where("company_id = ?", filter.CompanyId)
	}
	if filter.FiscalYear > 0 {
		dbCtx.Where("fiscal_year = ?", filter.FiscalYear)
	}
	if filter.FiscalPeriod > 0 {
		dbCtx.Where("fiscal_period = ?", filter.FiscalPeriod)
	}

	var total int64
	if err := dbCtx.Count(&total).Error; err != nil {
		return nil, err
	}

	// newest first; the composite cursor pins the position within a date
	cursorDate, cursorId := DecodeCompositeCursor(filter.After)
	if cursorDate != "" && cursorId > 0 {
		dbCtx.Where("(transaction_date < ?) OR (transaction_date = ? AND id < ?)", cursorDate, cursorDate, cursorId)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = config.SearchLimit
	}

	var results []*Transaction
	if err := dbCtx.Order("transaction_date DESC, id DESC").
		Limit(limit + 1).Find(&results).Error; err != nil {
		return nil, err
	}

	connection := TransactionConnection{TotalCount: total}
	hasNextPage := len(results) > limit
	if hasNextPage {
		results = results[:limit]
	}
	connection.Transactions = results
	connection.PageInfo.HasNextPage = &hasNextPage
	if len(results) > 0 {
		first := results[0]
		last := results[len(results)-1]
		connection.PageInfo.StartCursor = EncodeCompositeCursor(first.TransactionDate.Format("2006-01-02"), first.ID)
		connection.PageInfo.EndCursor = EncodeCompositeCursor(last.TransactionDate.Format("2006-01-02"), last.ID)
	}
	return &connection, nil
}

// TransactionsForPeriod loads every transaction feeding a consolidation run.
// The returned slice is reference data for that run and must not be mutated.
func TransactionsForPeriod(ctx context.Context, companyIds []int, fiscalYear int, fiscalPeriod int) ([]*Transaction, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}
	if len(companyIds) == 0 {
		return nil, nil
	}

	db := config.GetDB()
	var results []*Transaction
	if err := db.WithContext(ctx).
		Where("organization_id = ? AND company_id IN ? AND fiscal_year = ? AND fiscal_period = ?",
			organizationId, companyIds, fiscalYear, fiscalPeriod).
		Order("id").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func GetTransaction(ctx context.Context, id int) (*Transaction, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}
	return utils.FetchModel[Transaction](ctx, organizationId, id)
}

func DeleteTransaction(ctx context.Context, id int) (*Transaction, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	result, err := utils.FetchModel[Transaction](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}

	// db action
	db := config.GetDB()
	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}
