package models

// Outbox publish statuses for RunEventRecord.PublishStatus. Plain strings,
// not a named type: the dispatcher's claim query interpolates them as raw
// SQL parameters.
const (
	OutboxPublishStatusPending    = "PENDING"
	OutboxPublishStatusProcessing = "PROCESSING"
	OutboxPublishStatusSent       = "SENT"
	OutboxPublishStatusFailed     = "FAILED"
	OutboxPublishStatusDead       = "DEAD"
)
