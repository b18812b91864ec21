package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/consolidation_backend/config"
	"github.com/mmdatafocus/consolidation_backend/utils"
	mysqlDriver "github.com/go-sql-driver/mysql"
)

type CompanyAccount struct {
	ID             int         `gorm:"primary_key" json:"id"`
	OrganizationId string      `gorm:"index;not null" json:"organization_id" binding:"required"`
	CompanyId      int         `gorm:"index;uniqueIndex:uidx_company_account_number;not null" json:"company_id" binding:"required"`
	AccountNumber  string      `gorm:"uniqueIndex:uidx_company_account_number;size:20;not null" json:"account_number" binding:"required"`
	AccountName    string      `gorm:"index;size:255;not null" json:"account_name" binding:"required"`
	AccountType    AccountType `gorm:"type:enum('Asset','Liability','Equity','Revenue','Expense');not null" json:"account_type" binding:"required"`
	Category       string      `gorm:"size:100" json:"category"`
	IsActive       *bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCompanyAccount struct {
	CompanyId     int         `json:"company_id" binding:"required"`
	AccountNumber string      `json:"account_number" binding:"required"`
	AccountName   string      `json:"account_name" binding:"required"`
	AccountType   AccountType `json:"account_type" binding:"required"`
	Category      string      `json:"category"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewCompanyAccount) validate(ctx context.Context, organizationId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[CompanyAccount](ctx, organizationId, id); err != nil {
			return err
		}
	}
	// company
	if err := utils.ValidateResourceId[Company](ctx, organizationId, input.CompanyId); err != nil {
		return errors.New("company not found")
	}
	// account number within the company
	count, err := utils.ResourceCountWhere[CompanyAccount](ctx, organizationId,
		"company_id = ? AND account_number = ? AND NOT id = ?", input.CompanyId, input.AccountNumber, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("duplicate account_number")
	}
	if !input.AccountType.Valid() {
		return errors.New("invalid account type")
	}
	return nil
}

func CreateCompanyAccount(ctx context.Context, input *NewCompanyAccount) (*CompanyAccount, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	if err := input.validate(ctx, organizationId, 0); err != nil {
		return nil, err
	}

	account := CompanyAccount{
		OrganizationId: organizationId,
		CompanyId:      input.CompanyId,
		AccountNumber:  input.AccountNumber,
		AccountName:    input.AccountName,
		AccountType:    input.AccountType,
		Category:       input.Category,
		IsActive:       utils.NewTrue(),
	}

	// db action
	db := config.GetDB()
	err := db.WithContext(ctx).Create(&account).Error
	if err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(account); err != nil {
		return nil, err
	}

	return &account, nil
}

func UpdateCompanyAccount(ctx context.Context, id int, input *NewCompanyAccount) (*CompanyAccount, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	if err := input.validate(ctx, organizationId, id); err != nil {
		return nil, err
	}

	account, err := utils.FetchModel[CompanyAccount](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}

	// db action
	db := config.GetDB()
	err = db.WithContext(ctx).Model(&account).Updates(map[string]interface{}{
		"AccountNumber": input.AccountNumber,
		"AccountName":   input.AccountName,
		"AccountType":   input.AccountType,
		"Category":      input.Category,
	}).Error
	if err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*account); err != nil {
		return nil, err
	}

	return account, nil
}

func DeleteCompanyAccount(ctx context.Context, id int) (*CompanyAccount, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	result, err := utils.FetchModel[CompanyAccount](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	// check if the account is used
	var count int64
	if err := db.WithContext(ctx).Model(&Transaction{}).
		Where(&Transaction{AccountId: id}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("account has posted transactions")
	}

	// db action: remove the account together with its mappings
	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()
	if err := tx.Where("company_account_id = ?", id).Delete(&AccountMapping{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Delete(&result).Error; err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*result); err != nil {
		return nil, err
	}

	return result, nil
}

func GetCompanyAccount(ctx context.Context, id int) (*CompanyAccount, error) {

	return GetResource[CompanyAccount](ctx, id)
}

func GetCompanyAccounts(ctx context.Context, companyId int) ([]*CompanyAccount, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	db := config.GetDB()
	var results []*CompanyAccount
	dbCtx := db.WithContext(ctx).Where("organization_id = ?", organizationId)
	if companyId > 0 {
		dbCtx.Where("company_id = ?", companyId)
	}
	if err := dbCtx.Order("account_number").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return false
}

// GetOrCreateCompanyAccount inserts the account if the company has not seen
// this account number before. Concurrent imports can race on the insert; the
// unique key decides the winner and the loser re-reads the row.
func GetOrCreateCompanyAccount(ctx context.Context, companyId int, accountNumber string, accountName string, accountType AccountType) (*CompanyAccount, bool, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, false, errors.New("organization id is required")
	}

	db := config.GetDB()
	var existing CompanyAccount
	err := db.WithContext(ctx).Model(&CompanyAccount{}).
		Where("company_id = ? AND account_number = ?", companyId, accountNumber).
		First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}

	if accountName == "" {
		accountName = "Account " + accountNumber
	}
	account := CompanyAccount{
		OrganizationId: organizationId,
		CompanyId:      companyId,
		AccountNumber:  accountNumber,
		AccountName:    accountName,
		AccountType:    accountType,
		IsActive:       utils.NewTrue(),
	}
	err = db.WithContext(ctx).Create(&account).Error
	if err != nil {
		if isDuplicateKeyErr(err) {
			if err := db.WithContext(ctx).Model(&CompanyAccount{}).
				Where("company_id = ? AND account_number = ?", companyId, accountNumber).
				First(&existing).Error; err != nil {
				return nil, false, err
			}
			return &existing, false, nil
		}
		return nil, false, err
	}

	if err := RemoveRedisBoth(account); err != nil {
		return nil, false, err
	}

	return &account, true, nil
}
