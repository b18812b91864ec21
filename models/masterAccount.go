package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/consolidation_backend/config"
	"github.com/mmdatafocus/consolidation_backend/utils"
)

type MasterAccount struct {
	ID             int         `gorm:"primary_key" json:"id"`
	OrganizationId string      `gorm:"index;uniqueIndex:uidx_master_account_number;not null" json:"organization_id" binding:"required"`
	AccountNumber  string      `gorm:"uniqueIndex:uidx_master_account_number;size:20;not null" json:"account_number" binding:"required"`
	AccountName    string      `gorm:"index;size:255;not null" json:"account_name" binding:"required"`
	AccountType    AccountType `gorm:"type:enum('Asset','Liability','Equity','Revenue','Expense');not null" json:"account_type" binding:"required"`
	Category       string      `gorm:"size:100" json:"category"`
	Subcategory    string      `gorm:"size:100" json:"subcategory"`
	IsActive       *bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewMasterAccount struct {
	AccountNumber string      `json:"account_number" binding:"required"`
	AccountName   string      `json:"account_name" binding:"required"`
	AccountType   AccountType `json:"account_type" binding:"required"`
	Category      string      `json:"category"`
	Subcategory   string      `json:"subcategory"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewMasterAccount) validate(ctx context.Context, organizationId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[MasterAccount](ctx, organizationId, id); err != nil {
			return err
		}
	}
	// account number
	if err := utils.ValidateUnique[MasterAccount](ctx, organizationId, "account_number", input.AccountNumber, id); err != nil {
		return err
	}
	if !input.AccountType.Valid() {
		return errors.New("invalid account type")
	}
	return nil
}

func CreateMasterAccount(ctx context.Context, input *NewMasterAccount) (*MasterAccount, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	if err := input.validate(ctx, organizationId, 0); err != nil {
		return nil, err
	}

	account := MasterAccount{
		OrganizationId: organizationId,
		AccountNumber:  input.AccountNumber,
		AccountName:    input.AccountName,
		AccountType:    input.AccountType,
		Category:       input.Category,
		Subcategory:    input.Subcategory,
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

func UpdateMasterAccount(ctx context.Context, id int, input *NewMasterAccount) (*MasterAccount, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	if err := input.validate(ctx, organizationId, id); err != nil {
		return nil, err
	}

	account, err := utils.FetchModel[MasterAccount](ctx, organizationId, id)
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
		"Subcategory":   input.Subcategory,
	}).Error
	if err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*account); err != nil {
		return nil, err
	}

	return account, nil
}

func DeleteMasterAccount(ctx context.Context, id int) (*MasterAccount, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	result, err := utils.FetchModel[MasterAccount](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	// check if the master account is used
	var count int64
	if err := db.WithContext(ctx).Model(&AccountMapping{}).
		Where(&AccountMapping{MasterAccountId: id}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("master account has been used in account mapping")
	}

	// db action
	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*result); err != nil {
		return nil, err
	}

	return result, nil
}

func GetMasterAccount(ctx context.Context, id int) (*MasterAccount, error) {

	return GetResource[MasterAccount](ctx, id)
}

func GetMasterAccounts(ctx context.Context) ([]*MasterAccount, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}
	return utils.FetchAllModels[MasterAccount](ctx, organizationId)
}

func ToggleActiveMasterAccount(ctx context.Context, id int, isActive bool) (*MasterAccount, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}
	return ToggleActiveModel[MasterAccount](ctx, organizationId, id, isActive)
}
