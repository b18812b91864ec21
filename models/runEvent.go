package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/consolidation_backend/config"
	"github.com/mmdatafocus/consolidation_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RunEventRecord implements a transactional outbox for run lifecycle
// events: the row is written inside the caller's DB transaction and
// published to Pub/Sub asynchronously by the outbox dispatcher after
// commit.
type RunEventRecord struct {
	ID             int                 `gorm:"primary_key;index:idx_run_event_dispatch,priority:3" json:"id"`
	OrganizationId string              `gorm:"size:64;not null;index" json:"organization_id"`
	RunId          int                 `gorm:"index;not null" json:"run_id"`
	FiscalYear     int                 `gorm:"not null" json:"fiscal_year"`
	FiscalPeriod   int                 `gorm:"not null" json:"fiscal_period"`
	Status         ConsolidationStatus `gorm:"size:20;not null" json:"status"`
	ErrorMessage   string              `gorm:"type:text" json:"error_message"`
	OccurredAt     time.Time           `gorm:"index;not null" json:"occurred_at"`
	// publish metadata (publish happens after commit via dispatcher)
	PublishStatus    string     `gorm:"size:20;index;not null;default:'PENDING';index:idx_run_event_dispatch,priority:1" json:"publish_status"` // PENDING|PROCESSING|SENT|FAILED|DEAD
	PublishedAt      *time.Time `gorm:"index" json:"published_at"`
	PubSubMessageId  *string    `gorm:"size:255" json:"pubsub_message_id"`
	PublishAttempts  int        `gorm:"not null;default:0" json:"publish_attempts"`
	NextAttemptAt    *time.Time `gorm:"index;index:idx_run_event_dispatch,priority:2" json:"next_attempt_at"`
	LockedAt         *time.Time `gorm:"index" json:"locked_at"`
	LockedBy         *string    `gorm:"size:100" json:"locked_by"`
	LastPublishError *string    `gorm:"type:text" json:"last_publish_error"`
	CorrelationId    string     `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func ConvertToRunEventMessage(record RunEventRecord) config.RunEventMessage {
	return config.RunEventMessage{
		ID:             record.ID,
		OrganizationId: record.OrganizationId,
		RunId:          record.RunId,
		FiscalYear:     record.FiscalYear,
		FiscalPeriod:   record.FiscalPeriod,
		Status:         string(record.Status),
		ErrorMessage:   record.ErrorMessage,
		OccurredAt:     record.OccurredAt,
		CorrelationId:  record.CorrelationId,
	}
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}

// EnqueueRunEvent writes the event record without publishing. Call inside
// the transaction that changes the run so the event never outlives a
// rolled-back status change.
func EnqueueRunEvent(ctx context.Context, tx *gorm.DB, run *ConsolidationRun) error {

	if config.RunEventsDisabled() {
		return nil
	}

	record := RunEventRecord{
		OrganizationId: run.OrganizationId,
		RunId:          run.ID,
		FiscalYear:     run.FiscalYear,
		FiscalPeriod:   run.FiscalPeriod,
		Status:         run.Status,
		ErrorMessage:   run.ErrorMessage,
		OccurredAt:     time.Now().UTC(),
		PublishStatus:  OutboxPublishStatusPending,
		CorrelationId:  correlationIdFromContextOrNew(ctx),
	}
	return tx.Create(&record).Error
}
