// Package ingest - Orchestrator điều phối một pass sync: lock → fetch → import
// → advance cursor → ghi audit, với isolation lỗi từng record.
package ingest

import (
	"context"
	"errors"
	"time"

	intmodels "lead_commerce/internal/api/integration/models"
	integrationsvc "lead_commerce/internal/api/integration/service"
	leadsvc "lead_commerce/internal/api/lead/service"
	"lead_commerce/internal/common"
	"lead_commerce/internal/global"
	"lead_commerce/internal/ingest/adapters"
	"lead_commerce/internal/logger"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trigger của một pass sync.
const (
	TriggerManual  = "manual"
	TriggerWorker  = "worker"
	TriggerWebhook = "webhook"
)

// PassSummary tóm tắt kết quả một pass, trả cho API caller.
type PassSummary struct {
	RunID     primitive.ObjectID   `json:"runId"`
	Status    string               `json:"status"`
	Created   int                  `json:"created"`
	Updated   int                  `json:"updated"`
	Skipped   int                  `json:"skipped"`
	Failed    int                  `json:"failed"`
	Dropped   int                  `json:"dropped"`
	NewCursor intmodels.SyncCursor `json:"newCursor"`
	Error     string               `json:"error,omitempty"`
}

// Orchestrator chạy pass sync cho một integration.
type Orchestrator struct {
	integrationService *integrationsvc.IntegrationService
	runService         *integrationsvc.IngestRunService
	leadService        *leadsvc.LeadService
}

// NewOrchestrator khởi tạo Orchestrator.
func NewOrchestrator() (*Orchestrator, error) {
	integrationService, err := integrationsvc.NewIntegrationService()
	if err != nil {
		return nil, err
	}
	runService, err := integrationsvc.NewIngestRunService()
	if err != nil {
		return nil, err
	}
	leadService, err := leadsvc.NewLeadService()
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		integrationService: integrationService,
		runService:         runService,
		leadService:        leadService,
	}, nil
}

// RunPass chạy một pass sync cho integration.
//
// Flow: acquire lock (atomic, stale sau 10 phút) → (full: reset cursor) →
// fetch incremental → import từng record (record lỗi không giết pass) →
// advance cursor phủ range đã fetch → ghi IngestRun → release lock.
//
// Lỗi fatal (auth, config) dừng pass, không advance cursor cho phần chưa
// fetch. Lỗi transient giữa chừng vẫn giữ lead của các trang đã fetch.
// Pass đang chạy trên integration này → ErrIngestPassRunning, caller không
// retry mà để pass kia chạy xong.
func (o *Orchestrator) RunPass(ctx context.Context, integrationID primitive.ObjectID, full bool, trigger string) (*PassSummary, error) {
	integration, err := o.integrationService.AcquireSyncLock(ctx, integrationID)
	if err != nil {
		return nil, err
	}

	adapter, exists := adapters.Registry.Get(integration.Platform)
	if !exists {
		releaseErr := o.integrationService.ReleaseSyncLock(ctx, integrationID, false, "platform không có adapter")
		if releaseErr != nil {
			logger.GetAppLogger().WithError(releaseErr).Error("🔄 [INGEST] Release lock lỗi")
		}
		return nil, common.NewError(
			common.ErrCodeIngestConfig,
			"Platform "+integration.Platform+" không có adapter",
			common.StatusBadRequest,
			nil,
		)
	}

	cursor := integration.Cursor
	if full {
		if err := o.integrationService.ResetCursor(ctx, integrationID); err != nil {
			_ = o.integrationService.ReleaseSyncLock(ctx, integrationID, false, err.Error())
			return nil, err
		}
		cursor = intmodels.SyncCursor{}
	}

	run := intmodels.IngestRun{
		IntegrationID:       integrationID,
		Platform:            integration.Platform,
		Full:                full,
		Trigger:             trigger,
		Status:              intmodels.RunStatusRunning,
		StartedAt:           time.Now().UnixMilli(),
		OwnerOrganizationID: integration.OwnerOrganizationID,
	}
	run, err = o.runService.InsertOne(ctx, run)
	if err != nil {
		_ = o.integrationService.ReleaseSyncLock(ctx, integrationID, false, err.Error())
		return nil, err
	}

	summary := o.executePass(ctx, &integration, adapter, cursor)
	summary.RunID = run.ID

	if err := o.finishRun(ctx, run.ID, summary); err != nil {
		logger.GetAppLogger().WithError(err).WithFields(logrus.Fields{
			"runId": run.ID.Hex(),
		}).Error("🔄 [INGEST] Cập nhật IngestRun lỗi")
	}
	if err := o.integrationService.ReleaseSyncLock(ctx, integrationID, summary.Status == intmodels.RunStatusSuccess, summary.Error); err != nil {
		logger.GetAppLogger().WithError(err).WithFields(logrus.Fields{
			"integrationId": integrationID.Hex(),
		}).Error("🔄 [INGEST] Release lock lỗi")
	}

	logger.GetAppLogger().WithFields(logrus.Fields{
		"integrationId": integrationID.Hex(),
		"platform":      integration.Platform,
		"trigger":       trigger,
		"status":        summary.Status,
		"created":       summary.Created,
		"updated":       summary.Updated,
		"skipped":       summary.Skipped,
		"failed":        summary.Failed,
		"dropped":       summary.Dropped,
	}).Info("🔄 [INGEST] Pass sync kết thúc")

	return summary, nil
}

// executePass fetch + import, trả summary. Không đụng lock/audit.
func (o *Orchestrator) executePass(ctx context.Context, integration *intmodels.Integration, adapter adapters.Adapter, cursor intmodels.SyncCursor) *PassSummary {
	summary := &PassSummary{Status: intmodels.RunStatusSuccess, NewCursor: cursor}

	maxRows := 100
	callTimeout := 30 * time.Second
	if global.ServerConfig != nil {
		if global.ServerConfig.SyncMaxRowsPerCall > 0 {
			maxRows = global.ServerConfig.SyncMaxRowsPerCall
		}
		if global.ServerConfig.SyncCallTimeout > 0 {
			callTimeout = time.Duration(global.ServerConfig.SyncCallTimeout) * time.Second
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, callTimeout)
	result, fetchErr := adapter.FetchIncremental(fetchCtx, integration, cursor, maxRows)
	cancel()

	if fetchErr != nil {
		summary.Status = intmodels.RunStatusFailed
		summary.Error = fetchErr.Error()
	}
	if result == nil {
		// Fetch không mang về gì — không advance cursor
		return summary
	}

	summary.Dropped = result.Dropped

	duplicatePolicy, _ := integration.Config["duplicatePolicy"].(string)

	for i := range result.Leads {
		canonical := &result.Leads[i]
		outcome, err := o.leadService.ImportCanonical(ctx, integration.OwnerOrganizationID, integration.ID, canonical, duplicatePolicy)
		if err != nil {
			// Record hỏng không giết pass — đếm failed, log để operator soi
			summary.Failed++
			logger.GetAppLogger().WithError(err).WithFields(logrus.Fields{
				"integrationId": integration.ID.Hex(),
				"externalId":    canonical.ExternalID,
			}).Warn("🔄 [INGEST] Import record lỗi, bỏ qua")
			continue
		}
		switch outcome {
		case leadsvc.ImportOutcomeCreated:
			summary.Created++
		case leadsvc.ImportOutcomeUpdated:
			summary.Updated++
		case leadsvc.ImportOutcomeSkipped:
			summary.Skipped++
		}
	}

	// Cursor phủ đúng range đã fetch — record fail vẫn coi là đã thấy,
	// không tự retry để tránh loop vô hạn trên record hỏng
	if !result.NewCursor.IsZero() {
		if err := o.integrationService.AdvanceCursor(ctx, integration.ID, result.NewCursor); err != nil {
			summary.Status = intmodels.RunStatusFailed
			summary.Error = "advance cursor lỗi: " + err.Error()
			return summary
		}
		summary.NewCursor = result.NewCursor
	}

	return summary
}

// finishRun ghi kết quả cuối vào IngestRun.
func (o *Orchestrator) finishRun(ctx context.Context, runID primitive.ObjectID, summary *PassSummary) error {
	_, err := o.runService.UpdateById(ctx, runID, map[string]interface{}{
		"status":     summary.Status,
		"error":      summary.Error,
		"created":    summary.Created,
		"updated":    summary.Updated,
		"skipped":    summary.Skipped,
		"failed":     summary.Failed,
		"dropped":    summary.Dropped,
		"newCursor":  summary.NewCursor,
		"finishedAt": time.Now().UnixMilli(),
	})
	return err
}

// IsPassRunning check lỗi pass-đang-chạy, cho worker phân biệt với lỗi thật.
func IsPassRunning(err error) bool {
	return errors.Is(err, common.ErrIngestPassRunning)
}
