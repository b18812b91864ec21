package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/consolidation_backend/config"
	"github.com/mmdatafocus/consolidation_backend/utils"
	"gorm.io/gorm"
)

type AccountMapping struct {
	ID               int           `gorm:"primary_key" json:"id"`
	OrganizationId   string        `gorm:"index;not null" json:"organization_id" binding:"required"`
	CompanyAccountId int           `gorm:"index;not null" json:"company_account_id" binding:"required"`
	MasterAccountId  int           `gorm:"index;not null" json:"master_account_id" binding:"required"`
	ConfidenceScore  float64       `gorm:"type:double;not null;default:0" json:"confidence_score"`
	MappingSource    MappingSource `gorm:"size:20;not null;default:manual" json:"mapping_source"`
	AiReasoning      string        `gorm:"type:text" json:"ai_reasoning"`
	IsActive         *bool         `gorm:"not null;default:false" json:"is_active"`
	IsVerified       *bool         `gorm:"not null;default:false" json:"is_verified"`
	CreatedBy        int           `gorm:"index" json:"created_by"`
	CreatedAt        time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAccountMapping struct {
	CompanyAccountId int `json:"company_account_id" binding:"required"`
	MasterAccountId  int `json:"master_account_id" binding:"required"`
}

// joined row for the mapping review screens
type AccountMappingDetail struct {
	ID                   int           `json:"id"`
	CompanyAccountId     int           `json:"company_account_id"`
	CompanyAccountName   string        `json:"company_account_name"`
	CompanyAccountNumber string        `json:"company_account_number"`
	MasterAccountId      int           `json:"master_account_id"`
	MasterAccountName    string        `json:"master_account_name"`
	MasterAccountNumber  string        `json:"master_account_number"`
	ConfidenceScore      float64       `json:"confidence_score"`
	MappingSource        MappingSource `json:"mapping_source"`
	AiReasoning          string        `json:"ai_reasoning"`
	IsActive             bool          `json:"is_active"`
	IsVerified           bool          `json:"is_verified"`
	CreatedAt            time.Time     `json:"created_at"`
}

func (input *NewAccountMapping) validate(ctx context.Context, organizationId string) error {
	if err := utils.ValidateResourceId[CompanyAccount](ctx, organizationId, input.CompanyAccountId); err != nil {
		return errors.New("company account not found")
	}
	if err := utils.ValidateResourceId[MasterAccount](ctx, organizationId, input.MasterAccountId); err != nil {
		return errors.New("master account not found")
	}
	return nil
}

// deactivate every mapping of the company account except keepId
func deactivateOtherMappings(tx *gorm.DB, organizationId string, companyAccountId int, keepId int) error {
	return tx.Model(&AccountMapping{}).
		Where("organization_id = ? AND company_account_id = ? AND NOT id = ?", organizationId, companyAccountId, keepId).
		UpdateColumn("is_active", false).Error
}

// CreateAccountMapping maps a company account to a master account by hand.
// The new mapping becomes the single active one for the company account.
func CreateAccountMapping(ctx context.Context, input *NewAccountMapping) (*AccountMapping, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	if err := input.validate(ctx, organizationId); err != nil {
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)

	mapping := AccountMapping{
		OrganizationId:   organizationId,
		CompanyAccountId: input.CompanyAccountId,
		MasterAccountId:  input.MasterAccountId,
		ConfidenceScore:  1.0,
		MappingSource:    MappingSourceUserManual,
		IsActive:         utils.NewTrue(),
		IsVerified:       utils.NewTrue(),
		CreatedBy:        userId,
	}

	// db action
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := tx.Create(&mapping).Error; err != nil {
		return nil, err
	}
	if err := deactivateOtherMappings(tx, organizationId, input.CompanyAccountId, mapping.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(mapping); err != nil {
		return nil, err
	}

	return &mapping, nil
}

// SuggestedMapping is the resolver's verdict for one company account.
type SuggestedMapping struct {
	CompanyAccountId int
	MasterAccountId  int
	Confidence       float64
	Source           MappingSource
	Reasoning        string
	AutoActivate     bool
}

// StoreSuggestedMapping persists a resolver suggestion. High-confidence
// suggestions go live immediately; the rest stay inactive until a user
// decides. An account that already has an active mapping is left alone.
func StoreSuggestedMapping(ctx context.Context, suggestion *SuggestedMapping) (*AccountMapping, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&AccountMapping{}).
		Where("organization_id = ? AND company_account_id = ? AND is_active = true", organizationId, suggestion.CompanyAccountId).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, nil
	}

	mapping := AccountMapping{
		OrganizationId:   organizationId,
		CompanyAccountId: suggestion.CompanyAccountId,
		MasterAccountId:  suggestion.MasterAccountId,
		ConfidenceScore:  suggestion.Confidence,
		MappingSource:    suggestion.Source,
		AiReasoning:      suggestion.Reasoning,
		IsActive:         &suggestion.AutoActivate,
		IsVerified:       utils.NewFalse(),
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := tx.Create(&mapping).Error; err != nil {
		return nil, err
	}
	if suggestion.AutoActivate {
		if err := deactivateOtherMappings(tx, organizationId, suggestion.CompanyAccountId, mapping.ID); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(mapping); err != nil {
		return nil, err
	}

	return &mapping, nil
}

// ApproveAccountMapping accepts a pending suggestion as-is.
func ApproveAccountMapping(ctx context.Context, id int) (*AccountMapping, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	mapping, err := utils.FetchModel[AccountMapping](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := tx.Model(&mapping).Updates(map[string]interface{}{
		"IsActive":   true,
		"IsVerified": true,
	}).Error; err != nil {
		return nil, err
	}
	if err := deactivateOtherMappings(tx, organizationId, mapping.CompanyAccountId, mapping.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*mapping); err != nil {
		return nil, err
	}

	return mapping, nil
}

// RemapCompanyAccount answers a pending decision by picking a different
// master account than the suggested one.
func RemapCompanyAccount(ctx context.Context, companyAccountId int, masterAccountId int) (*AccountMapping, error) {

	input := NewAccountMapping{
		CompanyAccountId: companyAccountId,
		MasterAccountId:  masterAccountId,
	}
	return CreateAccountMapping(ctx, &input)
}

// MapToNewMasterAccount answers a pending decision by creating a brand new
// master account and mapping the company account to it, atomically.
func MapToNewMasterAccount(ctx context.Context, companyAccountId int, input *NewMasterAccount) (*AccountMapping, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	if err := utils.ValidateResourceId[CompanyAccount](ctx, organizationId, companyAccountId); err != nil {
		return nil, errors.New("company account not found")
	}
	if err := input.validate(ctx, organizationId, 0); err != nil {
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)

	master := MasterAccount{
		OrganizationId: organizationId,
		AccountNumber:  input.AccountNumber,
		AccountName:    input.AccountName,
		AccountType:    input.AccountType,
		Category:       input.Category,
		Subcategory:    input.Subcategory,
		IsActive:       utils.NewTrue(),
	}
	mapping := AccountMapping{
		OrganizationId:   organizationId,
		CompanyAccountId: companyAccountId,
		ConfidenceScore:  1.0,
		MappingSource:    MappingSourceUserManual,
		IsActive:         utils.NewTrue(),
		IsVerified:       utils.NewTrue(),
		CreatedBy:        userId,
	}

	// db action
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := tx.Create(&master).Error; err != nil {
		return nil, err
	}
	mapping.MasterAccountId = master.ID
	if err := tx.Create(&mapping).Error; err != nil {
		return nil, err
	}
	if err := deactivateOtherMappings(tx, organizationId, companyAccountId, mapping.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(master); err != nil {
		return nil, err
	}
	if err := RemoveRedisBoth(mapping); err != nil {
		return nil, err
	}

	return &mapping, nil
}

func DeleteAccountMapping(ctx context.Context, id int) (*AccountMapping, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	result, err := utils.FetchModel[AccountMapping](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}

	// db action
	db := config.GetDB()
	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*result); err != nil {
		return nil, err
	}

	return result, nil
}

const mappingDetailSQL = `
SELECT
	m.id,
	m.company_account_id,
	ca.account_name AS company_account_name,
	ca.account_number AS company_account_number,
	m.master_account_id,
	ma.account_name AS master_account_name,
	ma.account_number AS master_account_number,
	m.confidence_score,
	m.mapping_source,
	m.ai_reasoning,
	m.is_active,
	m.is_verified,
	m.created_at
FROM
	account_mappings m
	LEFT JOIN company_accounts ca ON m.company_account_id = ca.id
	LEFT JOIN master_accounts ma ON m.master_account_id = ma.id
`

// active mappings of one company, joined with account names
func GetCompanyMappings(ctx context.Context, companyId int) ([]*AccountMappingDetail, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	if err := utils.ValidateResourceId[Company](ctx, organizationId, companyId); err != nil {
		return nil, errors.New("company not found")
	}

	db := config.GetDB()
	var results []*AccountMappingDetail
	sql := mappingDetailSQL + `
WHERE m.organization_id = @organizationId AND ca.company_id = @companyId AND m.is_active = true
ORDER BY ca.account_number`
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"organizationId": organizationId,
		"companyId":      companyId,
	}).Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// pending suggestions waiting for a user decision
func GetPendingMappings(ctx context.Context, companyId int) ([]*AccountMappingDetail, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	db := config.GetDB()
	var results []*AccountMappingDetail
	// exclude accounts that already got an active mapping through another path
	sql := mappingDetailSQL + `
WHERE m.organization_id = @organizationId AND m.is_active = false AND m.is_verified = false
	AND NOT EXISTS (
		SELECT 1 FROM account_mappings act
		WHERE act.company_account_id = m.company_account_id AND act.is_active = true
	)`
	params := map[string]interface{}{
		"organizationId": organizationId,
	}
	if companyId > 0 {
		sql += ` AND ca.company_id = @companyId`
		params["companyId"] = companyId
	}
	sql += `
ORDER BY m.confidence_score DESC`
	if err := db.WithContext(ctx).Raw(sql, params).Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ActiveMappingIndex returns company_account_id => master_account_id for
// every active mapping under the companies given.
func ActiveMappingIndex(ctx context.Context, companyIds []int) (map[int]int, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	type pair struct {
		CompanyAccountId int
		MasterAccountId  int
	}

	db := config.GetDB()
	var rows []pair
	if err := db.WithContext(ctx).Model(&AccountMapping{}).
		Joins("LEFT JOIN company_accounts ca ON account_mappings.company_account_id = ca.id").
		Where("account_mappings.organization_id = ? AND account_mappings.is_active = true AND ca.company_id IN ?", organizationId, companyIds).
		Select("account_mappings.company_account_id, account_mappings.master_account_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	index := make(map[int]int, len(rows))
	for _, row := range rows {
		index[row.CompanyAccountId] = row.MasterAccountId
	}
	return index, nil
}
