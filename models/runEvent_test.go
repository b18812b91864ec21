package models

import (
	"testing"
	"time"
)

func TestConvertToRunEventMessage(t *testing.T) {
	occurred := time.Date(2024, time.March, 31, 18, 30, 0, 0, time.UTC)
	record := RunEventRecord{
		ID:             7,
		OrganizationId: "org-1",
		RunId:          41,
		FiscalYear:     2024,
		FiscalPeriod:   3,
		Status:         ConsolidationStatusCompleted,
		ErrorMessage:   "",
		OccurredAt:     occurred,
		CorrelationId:  "corr-123",
		// publish metadata stays out of the wire message
		PublishStatus:   OutboxPublishStatusProcessing,
		PublishAttempts: 4,
	}

	msg := ConvertToRunEventMessage(record)

	if msg.ID != 7 || msg.RunId != 41 {
		t.Fatalf("expected record ids carried over, got %+v", msg)
	}
	if msg.OrganizationId != "org-1" || msg.CorrelationId != "corr-123" {
		t.Fatalf("expected routing fields carried over, got %+v", msg)
	}
	if msg.FiscalYear != 2024 || msg.FiscalPeriod != 3 {
		t.Fatalf("expected the period carried over, got %+v", msg)
	}
	if msg.Status != "Completed" {
		t.Fatalf("expected the status as a plain string, got %q", msg.Status)
	}
	if !msg.OccurredAt.Equal(occurred) {
		t.Fatalf("expected occurred_at %s, got %s", occurred, msg.OccurredAt)
	}
}

func TestConvertToRunEventMessage_FailureCarriesError(t *testing.T) {
	record := RunEventRecord{
		ID:           8,
		RunId:        42,
		Status:       ConsolidationStatusFailed,
		ErrorMessage: "accounting identity violated",
	}
	msg := ConvertToRunEventMessage(record)
	if msg.Status != "Failed" {
		t.Fatalf("expected Failed status, got %q", msg.Status)
	}
	if msg.ErrorMessage != "accounting identity violated" {
		t.Fatalf("expected the error message carried over, got %q", msg.ErrorMessage)
	}
}
