package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/consolidation_backend/config"
	"github.com/mmdatafocus/consolidation_backend/utils"
	"github.com/shopspring/decimal"
)

type Company struct {
	ID                  int                 `gorm:"primary_key" json:"id"`
	OrganizationId      string              `gorm:"index;not null" json:"organization_id" binding:"required"`
	Name                string              `gorm:"index;size:255;not null" json:"name" binding:"required"`
	LegalName           string              `gorm:"size:255" json:"legal_name"`
	EntityType          string              `gorm:"size:100" json:"entity_type"`
	TaxId               string              `gorm:"size:100" json:"tax_id"`
	Industry            string              `gorm:"size:100" json:"industry"`
	Description         string              `gorm:"type:text" json:"description"`
	Currency            string              `gorm:"size:3;not null;default:USD" json:"currency"`
	FiscalYearEndMonth  int                 `gorm:"not null;default:12" json:"fiscal_year_end_month"`
	ParentCompanyId     *int                `gorm:"index" json:"parent_company_id"`
	OwnershipPercentage decimal.Decimal     `gorm:"type:decimal(5,2);not null;default:100" json:"ownership_percentage"`
	ConsolidationMethod ConsolidationMethod `gorm:"type:enum('Full','Equity','Cost');default:Full" json:"consolidation_method"`
	IsActive            *bool               `gorm:"not null;default:true" json:"is_active"`
	CreatedAt           time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCompany struct {
	Name                string              `json:"name" binding:"required"`
	LegalName           string              `json:"legal_name"`
	EntityType          string              `json:"entity_type"`
	TaxId               string              `json:"tax_id"`
	Industry            string              `json:"industry"`
	Description         string              `json:"description"`
	Currency            string              `json:"currency"`
	FiscalYearEndMonth  int                 `json:"fiscal_year_end_month"`
	ParentCompanyId     *int                `json:"parent_company_id"`
	OwnershipPercentage decimal.Decimal     `json:"ownership_percentage"`
	ConsolidationMethod ConsolidationMethod `json:"consolidation_method"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewCompany) validate(ctx context.Context, organizationId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Company](ctx, organizationId, id); err != nil {
			return err
		}
	}
	// name
	if err := utils.ValidateUnique[Company](ctx, organizationId, "name", input.Name, id); err != nil {
		return err
	}
	// ownership share of the parent, in percent
	if !input.OwnershipPercentage.IsZero() {
		if input.OwnershipPercentage.IsNegative() ||
			input.OwnershipPercentage.GreaterThan(decimal.NewFromInt(100)) {
			return errors.New("ownership percentage must be between 0 and 100")
		}
	}
	switch input.ConsolidationMethod {
	case "", ConsolidationMethodFull, ConsolidationMethodEquity, ConsolidationMethodCost:
	default:
		return errors.New("invalid consolidation method")
	}
	if input.ParentCompanyId != nil {
		if err := validateParentCompany(ctx, organizationId, id, *input.ParentCompanyId); err != nil {
			return err
		}
	}
	return nil
}

// parent must exist within the organization and must not close a loop
// back to the company being saved
func validateParentCompany(ctx context.Context, organizationId string, id int, parentId int) error {
	if parentId == id {
		return errors.New("company cannot be its own parent")
	}
	if err := utils.ValidateResourceId[Company](ctx, organizationId, parentId); err != nil {
		return errors.New("parent company not found")
	}
	if id == 0 {
		return nil
	}

	db := config.GetDB()
	current := parentId
	for current != 0 {
		var next *int
		if err := db.WithContext(ctx).Model(&Company{}).
			Where("organization_id = ? AND id = ?", organizationId, current).
			Select("parent_company_id").Scan(&next).Error; err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		if *next == id {
			return errors.New("company ownership cannot be circular")
		}
		current = *next
	}
	return nil
}

func CreateCompany(ctx context.Context, input *NewCompany) (*Company, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	if err := input.validate(ctx, organizationId, 0); err != nil {
		return nil, err
	}

	ownership := input.OwnershipPercentage
	if ownership.IsZero() {
		ownership = decimal.NewFromInt(100)
	}
	method := input.ConsolidationMethod
	if method == "" {
		method = ConsolidationMethodFull
	}
	currency := input.Currency
	if currency == "" {
		organization, err := GetOrganizationById(ctx, organizationId)
		if err != nil {
			return nil, err
		}
		currency = organization.DefaultCurrency
	}
	fiscalYearEndMonth := input.FiscalYearEndMonth
	if fiscalYearEndMonth == 0 {
		fiscalYearEndMonth = 12
	}

	company := Company{
		OrganizationId:      organizationId,
		Name:                input.Name,
		LegalName:           input.LegalName,
		EntityType:          input.EntityType,
		TaxId:               input.TaxId,
		Industry:            input.Industry,
		Description:         input.Description,
		Currency:            currency,
		FiscalYearEndMonth:  fiscalYearEndMonth,
		ParentCompanyId:     input.ParentCompanyId,
		OwnershipPercentage: ownership,
		ConsolidationMethod: method,
		IsActive:            utils.NewTrue(),
	}

	// db action
	db := config.GetDB()
	err := db.WithContext(ctx).Create(&company).Error
	if err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(company); err != nil {
		return nil, err
	}

	return &company, nil
}

func UpdateCompany(ctx context.Context, id int, input *NewCompany) (*Company, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	if err := input.validate(ctx, organizationId, id); err != nil {
		return nil, err
	}

	company, err := utils.FetchModel[Company](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"Name":            input.Name,
		"LegalName":       input.LegalName,
		"EntityType":      input.EntityType,
		"TaxId":           input.TaxId,
		"Industry":        input.Industry,
		"Description":     input.Description,
		"ParentCompanyId": input.ParentCompanyId,
	}
	if !input.OwnershipPercentage.IsZero() {
		updates["OwnershipPercentage"] = input.OwnershipPercentage
	}
	if input.ConsolidationMethod != "" {
		updates["ConsolidationMethod"] = input.ConsolidationMethod
	}
	if input.Currency != "" {
		updates["Currency"] = input.Currency
	}
	if input.FiscalYearEndMonth > 0 {
		updates["FiscalYearEndMonth"] = input.FiscalYearEndMonth
	}

	// db action
	db := config.GetDB()
	err = db.WithContext(ctx).Model(&company).Updates(updates).Error
	if err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*company); err != nil {
		return nil, err
	}

	return company, nil
}

func DeleteCompany(ctx context.Context, id int) (*Company, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	result, err := utils.FetchModel[Company](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	// check if the company is used
	var count int64
	if err := db.WithContext(ctx).Model(&Transaction{}).
		Where(&Transaction{CompanyId: id}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("company has posted transactions")
	}
	if err := db.WithContext(ctx).Model(&CompanyAccount{}).
		Where(&CompanyAccount{CompanyId: id}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("company has imported accounts")
	}
	if err := db.WithContext(ctx).Model(&Company{}).
		Where("organization_id = ? AND parent_company_id = ?", organizationId, id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("company is the parent of other companies")
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

func GetCompany(ctx context.Context, id int) (*Company, error) {

	return GetResource[Company](ctx, id)
}

func GetCompanies(ctx context.Context) ([]*Company, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}
	return utils.FetchAllModels[Company](ctx, organizationId)
}

func ToggleActiveCompany(ctx context.Context, id int, isActive bool) (*Company, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}
	return ToggleActiveModel[Company](ctx, organizationId, id, isActive)
}
