package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmdatafocus/consolidation_backend/config"
	"github.com/mmdatafocus/consolidation_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ConsolidationRun struct {
	ID                    int                 `gorm:"primary_key" json:"id"`
	OrganizationId        string              `gorm:"index;not null" json:"organization_id" binding:"required"`
	RunName               string              `gorm:"size:255;not null" json:"run_name"`
	Description           string              `gorm:"type:text" json:"description"`
	FiscalYear            int                 `gorm:"index;not null" json:"fiscal_year" binding:"required"`
	FiscalPeriod          int                 `gorm:"index;not null" json:"fiscal_period" binding:"required"`
	PeriodEndDate         time.Time           `gorm:"not null" json:"period_end_date"`
	Status                ConsolidationStatus `gorm:"type:enum('Pending','Processing','Completed','Failed');default:Pending" json:"status"`
	TotalAssets           decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"total_assets"`
	TotalLiabilities      decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"total_liabilities"`
	TotalEquity           decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"total_equity"`
	TotalRevenue          decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"total_revenue"`
	TotalExpenses         decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"total_expenses"`
	NetIncome             decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"net_income"`
	NciEquity             decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"nci_equity"`
	NciIncome             decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"nci_income"`
	ParentEquity          decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"parent_equity"`
	ParentNetIncome       decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"parent_net_income"`
	CompaniesIncluded     string              `gorm:"type:text" json:"companies_included"`
	EliminationCount      int                 `gorm:"default:0" json:"elimination_count"`
	UnmappedAccountCount  int                 `gorm:"default:0" json:"unmapped_account_count"`
	ProcessingTimeSeconds float64             `gorm:"type:double;default:0" json:"processing_time_seconds"`
	ErrorMessage          string              `gorm:"type:text" json:"error_message"`
	CreatedBy             int                 `gorm:"index" json:"created_by"`
	CompletedAt           *time.Time          `json:"completed_at"`
	CreatedAt             time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewConsolidationRun struct {
	RunName       string        `json:"run_name"`
	Description   string        `json:"description"`
	FiscalYear    int           `json:"fiscal_year" binding:"required"`
	FiscalPeriod  int           `json:"fiscal_period" binding:"required"`
	PeriodEndDate *MyDateString `json:"period_end_date"`
	CompanyIds    []int         `json:"company_ids"`
}

type IntercompanyElimination struct {
	ID                  int             `gorm:"primary_key" json:"id"`
	OrganizationId      string          `gorm:"index;not null" json:"organization_id" binding:"required"`
	ConsolidationRunId  int             `gorm:"index;not null" json:"consolidation_run_id" binding:"required"`
	Description         string          `gorm:"type:text" json:"description"`
	FromCompanyId       int             `gorm:"index" json:"from_company_id"`
	ToCompanyId         int             `gorm:"index" json:"to_company_id"`
	Transaction1Id      *int            `json:"transaction_1_id"`
	Transaction2Id      *int            `json:"transaction_2_id"`
	EliminationAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"elimination_amount"`
	Currency            string          `gorm:"size:3;not null;default:USD" json:"currency"`
	EliminationType     TransactionType `gorm:"type:enum('Standard','Intercompany','Elimination','Adjustment');default:Elimination" json:"elimination_type"`
	DetectionConfidence float64         `gorm:"type:double;default:0" json:"detection_confidence"`
	AiReasoning         string          `gorm:"type:text" json:"ai_reasoning"`
	IsVerified          *bool           `gorm:"not null;default:false" json:"is_verified"`
	CreatedAt           time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// company-by-company figures for the run detail screen
type CompanyBreakdown struct {
	CompanyId        int             `json:"company_id"`
	CompanyName      string          `json:"company_name"`
	Currency         string          `json:"currency"`
	Assets           decimal.Decimal `json:"assets"`
	Liabilities      decimal.Decimal `json:"liabilities"`
	Equity           decimal.Decimal `json:"equity"`
	Revenue          decimal.Decimal `json:"revenue"`
	Expenses         decimal.Decimal `json:"expenses"`
	NetIncome        decimal.Decimal `json:"net_income"`
	TransactionCount int             `json:"transaction_count"`
}

func (input *NewConsolidationRun) validate(ctx context.Context, organizationId string) error {
	if input.FiscalPeriod < 1 || input.FiscalPeriod > 12 {
		return errors.New("fiscal period must be between 1 and 12")
	}
	if len(input.CompanyIds) > 0 {
		if err := utils.ValidateResourcesId[Company](ctx, organizationId, input.CompanyIds); err != nil {
			return errors.New("company not found")
		}
	}
	return nil
}

// last day of the period's calendar month
func periodEndDate(fiscalYear int, fiscalPeriod int) time.Time {
	firstOfMonth := time.Date(fiscalYear, time.Month(fiscalPeriod), 1, 0, 0, 0, 0, time.UTC)
	return firstOfMonth.AddDate(0, 1, -1)
}

// CreateRunRecord registers a pending run. The consolidation workflow owns
// the rest of the lifecycle.
func CreateRunRecord(ctx context.Context, input *NewConsolidationRun) (*ConsolidationRun, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	if err := input.validate(ctx, organizationId); err != nil {
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)

	runName := input.RunName
	if runName == "" {
		runName = fmt.Sprintf("Consolidation %d-%02d", input.FiscalYear, input.FiscalPeriod)
	}
	endDate := periodEndDate(input.FiscalYear, input.FiscalPeriod)
	if input.PeriodEndDate != nil {
		endDate = input.PeriodEndDate.Time()
	}

	companiesIncluded, err := utils.MarshalToJSON(input.CompanyIds)
	if err != nil {
		return nil, err
	}

	run := ConsolidationRun{
		OrganizationId:    organizationId,
		RunName:           runName,
		Description:       input.Description,
		FiscalYear:        input.FiscalYear,
		FiscalPeriod:      input.FiscalPeriod,
		PeriodEndDate:     endDate,
		Status:            ConsolidationStatusPending,
		CompaniesIncluded: companiesIncluded,
		CreatedBy:         userId,
	}

	// db action
	db := config.GetDB()
	if err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return err
		}
		return EnqueueRunEvent(ctx, tx, &run)
	}); err != nil {
		return nil, err
	}

	return &run, nil
}

func (run *ConsolidationRun) CompanyIdsIncluded() ([]int, error) {
	var ids []int
	if run.CompaniesIncluded == "" {
		return ids, nil
	}
	if err := utils.UnmarshalFromJSON([]byte(run.CompaniesIncluded), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// RunInProgress reports whether another run for the same period is still
// pending or processing.
func RunInProgress(ctx context.Context, fiscalYear int, fiscalPeriod int, exceptId int) (bool, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return false, errors.New("organization id is required")
	}

	count, err := utils.ResourceCountWhere[ConsolidationRun](ctx, organizationId,
		"fiscal_year = ? AND fiscal_period = ? AND status IN ? AND NOT id = ?",
		fiscalYear, fiscalPeriod, []ConsolidationStatus{ConsolidationStatusPending, ConsolidationStatusProcessing}, exceptId)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func MarkRunProcessing(ctx context.Context, run *ConsolidationRun) error {
	db := config.GetDB()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(run).UpdateColumn("status", ConsolidationStatusProcessing).Error; err != nil {
			return err
		}
		run.Status = ConsolidationStatusProcessing
		return EnqueueRunEvent(ctx, tx, run)
	})
}

// RunTotals is everything the calculator publishes on success.
type RunTotals struct {
	TotalAssets          decimal.Decimal
	TotalLiabilities     decimal.Decimal
	TotalEquity          decimal.Decimal
	TotalRevenue         decimal.Decimal
	TotalExpenses        decimal.Decimal
	NetIncome            decimal.Decimal
	NciEquity            decimal.Decimal
	NciIncome            decimal.Decimal
	ParentEquity         decimal.Decimal
	ParentNetIncome      decimal.Decimal
	EliminationCount     int
	UnmappedAccountCount int
}

// CompleteRun publishes totals and flips the status in one update, so a
// reader either sees no totals or all of them.
func CompleteRun(ctx context.Context, run *ConsolidationRun, totals *RunTotals, startedAt time.Time) error {

	now := time.Now().UTC()
	db := config.GetDB()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(run).Updates(map[string]interface{}{
			"Status":                ConsolidationStatusCompleted,
			"TotalAssets":           totals.TotalAssets,
			"TotalLiabilities":      totals.TotalLiabilities,
			"TotalEquity":           totals.TotalEquity,
			"TotalRevenue":          totals.TotalRevenue,
			"TotalExpenses":         totals.TotalExpenses,
			"NetIncome":             totals.NetIncome,
			"NciEquity":             totals.NciEquity,
			"NciIncome":             totals.NciIncome,
			"ParentEquity":          totals.ParentEquity,
			"ParentNetIncome":       totals.ParentNetIncome,
			"EliminationCount":      totals.EliminationCount,
			"UnmappedAccountCount":  totals.UnmappedAccountCount,
			"ErrorMessage":          "",
			"CompletedAt":           &now,
			"ProcessingTimeSeconds": now.Sub(startedAt).Seconds(),
		}).Error; err != nil {
			return err
		}
		run.Status = ConsolidationStatusCompleted
		run.ErrorMessage = ""
		return EnqueueRunEvent(ctx, tx, run)
	})
}

func FailRun(ctx context.Context, run *ConsolidationRun, runErr error) error {
	db := config.GetDB()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(run).Updates(map[string]interface{}{
			"Status":       ConsolidationStatusFailed,
			"ErrorMessage": runErr.Error(),
		}).Error; err != nil {
			return err
		}
		run.Status = ConsolidationStatusFailed
		run.ErrorMessage = runErr.Error()
		return EnqueueRunEvent(ctx, tx, run)
	})
}

func GetConsolidationRun(ctx context.Context, id int) (*ConsolidationRun, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}
	return utils.FetchModel[ConsolidationRun](ctx, organizationId, id)
}

func GetConsolidationRuns(ctx context.Context, fiscalYear int) ([]*ConsolidationRun, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	db := config.GetDB()
	var results []*ConsolidationRun
	dbCtx := db.WithContext(ctx).Where("organization_id = ?", organizationId)
	if fiscalYear > 0 {
		dbCtx.Where("fiscal_year = ?", fiscalYear)
	}
	if err := dbCtx.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func CreateEliminations(ctx context.Context, eliminations []*IntercompanyElimination) error {
	if len(eliminations) == 0 {
		return nil
	}
	db := config.GetDB()
	return db.WithContext(ctx).Create(&eliminations).Error
}

func GetEliminationsByRun(ctx context.Context, runId int) ([]*IntercompanyElimination, error) {

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	db := config.GetDB()
	var results []*IntercompanyElimination
	if err := db.WithContext(ctx).
		Where("organization_id = ? AND consolidation_run_id = ?", organizationId, runId).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
