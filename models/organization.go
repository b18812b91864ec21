package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmdatafocus/consolidation_backend/config"
	"github.com/mmdatafocus/consolidation_backend/utils"
	"github.com/google/uuid"
)

type Organization struct {
	ID                 uuid.UUID `gorm:"primary_key" json:"id"`
	Name               string    `gorm:"index;size:255;not null" json:"name" binding:"required"`
	Description        string    `gorm:"type:text" json:"description"`
	FiscalYearEndMonth int       `gorm:"not null;default:12" json:"fiscal_year_end_month"`
	DefaultCurrency    string    `gorm:"size:3;not null;default:USD" json:"default_currency"`
	OwnerId            int       `gorm:"index" json:"owner_id"`
	IsActive           *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewOrganization struct {
	Name               string `json:"name" binding:"required"`
	Description        string `json:"description"`
	FiscalYearEndMonth int    `json:"fiscal_year_end_month"`
	DefaultCurrency    string `json:"default_currency"`
}

func (organization *Organization) StoreRedis() error {
	return config.SetRedisObject("Organization:"+fmt.Sprint(organization.ID), organization, 0)
}

func (organization *Organization) RemoveRedis() error {
	return config.RemoveRedisKey("Organization:" + fmt.Sprint(organization.ID))
}

func (input *NewOrganization) validate(ctx context.Context, id string) error {
	// name
	if err := utils.ValidateUnique[Organization](ctx, "", "name", input.Name, id); err != nil {
		return err
	}
	if input.FiscalYearEndMonth < 0 || input.FiscalYearEndMonth > 12 {
		return errors.New("fiscal year end month must be between 1 and 12")
	}
	return nil
}

// CreateOrganization creates the organization and seeds its default
// master chart of accounts in the same transaction.
func CreateOrganization(ctx context.Context, input *NewOrganization) (*Organization, error) {

	if err := input.validate(ctx, ""); err != nil {
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)

	fiscalYearEndMonth := input.FiscalYearEndMonth
	if fiscalYearEndMonth == 0 {
		fiscalYearEndMonth = 12
	}
	defaultCurrency := input.DefaultCurrency
	if defaultCurrency == "" {
		defaultCurrency = "USD"
	}

	organization := Organization{
		ID:                 uuid.New(),
		Name:               input.Name,
		Description:        input.Description,
		FiscalYearEndMonth: fiscalYearEndMonth,
		DefaultCurrency:    defaultCurrency,
		OwnerId:            userId,
		IsActive:           utils.NewTrue(),
	}

	// db action
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := tx.Create(&organization).Error; err != nil {
		return nil, err
	}
	if err := seedMasterAccounts(tx, organization.ID.String()); err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &organization, nil
}

// organization record by id, redis or db, cache result
func GetOrganizationById(ctx context.Context, id string) (*Organization, error) {

	var organization Organization
	exists, err := config.GetRedisObject("Organization:"+id, &organization)
	if err != nil {
		return nil, err
	}
	if !exists {
		db := config.GetDB()
		if err := db.WithContext(ctx).Model(&Organization{}).
			Where("id = ?", id).First(&organization).Error; err != nil {
			return nil, utils.ErrorRecordNotFound
		}
		if err := organization.StoreRedis(); err != nil {
			return nil, err
		}
	}
	return &organization, nil
}

func GetOrganization(ctx context.Context) (*Organization, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}
	return GetOrganizationById(ctx, organizationId)
}

func UpdateOrganization(ctx context.Context, input *NewOrganization) (*Organization, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	if err := input.validate(ctx, organizationId); err != nil {
		return nil, err
	}

	organization, err := GetOrganizationById(ctx, organizationId)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"Name":        input.Name,
		"Description": input.Description,
	}
	if input.FiscalYearEndMonth > 0 {
		updates["FiscalYearEndMonth"] = input.FiscalYearEndMonth
	}
	if input.DefaultCurrency != "" {
		updates["DefaultCurrency"] = input.DefaultCurrency
	}

	// db action
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&organization).Updates(updates).Error; err != nil {
		return nil, err
	}

	if err := organization.RemoveRedis(); err != nil {
		return nil, err
	}

	return organization, nil
}
