package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/consolidation_backend/config"
	"github.com/mmdatafocus/consolidation_backend/models"
	"github.com/mmdatafocus/consolidation_backend/utils"
	"github.com/mmdatafocus/consolidation_backend/workflow"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const defaultDispatchSchedule = "@every 15s"

// startRunEventDispatcher schedules the outbox dispatcher. Run events are
// written inside the run's transaction and published here, after commit, so
// publish failures never touch run status. The returned stop function waits
// for an in-flight dispatch to finish.
func startRunEventDispatcher(logger *logrus.Logger) func() {
	if config.RunEventsDisabled() {
		logger.Info("run event publishing is disabled, outbox dispatcher not started")
		return func() {}
	}

	dispatcher := workflow.NewOutboxDispatcher(config.GetDB(), logger)

	// Topic creation is best-effort and must not block startup: the client
	// initializer retries until Pub/Sub is reachable.
	go func() {
		client, err := config.GetClient(context.Background())
		if err != nil {
			logger.WithFields(logrus.Fields{"field": "pubsub"}).
				Warn("pubsub client unavailable; run events will retry at publish time: " + err.Error())
			return
		}
		if _, err := config.CreateTopicIfNotExists(client, config.RunEventTopicName()); err != nil {
			logger.WithFields(logrus.Fields{"field": "pubsub"}).
				Warn("failed to ensure run event topic: " + err.Error())
		}
	}()

	schedule := os.Getenv("RUN_EVENT_DISPATCH_SCHEDULE")
	if schedule == "" {
		schedule = defaultDispatchSchedule
	}

	scheduler := cron.New()
	_, err := scheduler.AddFunc(schedule, func() {
		dispatcher.DispatchOnce(context.Background())
	})
	if err != nil {
		config.LogError(logger, "events.go", "startRunEventDispatcher", "AddFunc", schedule, err)
		_, _ = scheduler.AddFunc(defaultDispatchSchedule, func() {
			dispatcher.DispatchOnce(context.Background())
		})
	}
	scheduler.Start()

	return func() {
		<-scheduler.Stop().Done()
	}
}

type runEventReplayRequest struct {
	OrganizationId string `json:"organization_id"`
	RecordId       int    `json:"record_id"`
}

// runEventReplayHandler resets a run event record so the dispatcher picks it
// up again on the next pass. Meant for operators resurrecting DEAD rows, so
// the attempt counter starts over.
func runEventReplayHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := utils.GetUserIdFromContext(c.Request.Context()); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if isAdmin, ok := utils.GetIsAdminFromContext(c.Request.Context()); !ok || !isAdmin {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req runEventReplayRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if req.OrganizationId == "" || req.RecordId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "organization_id and record_id are required"})
			return
		}

		db := config.GetDB()
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "db is nil"})
			return
		}
		now := time.Now().UTC()
		if err := db.WithContext(c.Request.Context()).
			Model(&models.RunEventRecord{}).
			Where("id = ? AND organization_id = ?", req.RecordId, req.OrganizationId).
			Updates(map[string]interface{}{
				"publish_status":     models.OutboxPublishStatusFailed,
				"publish_attempts":   0,
				"next_attempt_at":    &now,
				"locked_at":          nil,
				"locked_by":          nil,
				"last_publish_error": nil,
			}).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"organization_id": req.OrganizationId,
			"record_id":       req.RecordId,
			"publish_status":  models.OutboxPublishStatusFailed,
			"next_attempt_at": now.Format(time.RFC3339Nano),
		})
	}
}
