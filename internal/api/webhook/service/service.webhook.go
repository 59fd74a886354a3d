package webhooksvc

import (
	"context"
	"encoding/json"
	"time"

	integrationsvc "lead_commerce/internal/api/integration/service"
	leadsvc "lead_commerce/internal/api/lead/service"
	webhookmodels "lead_commerce/internal/api/webhook/models"
	"lead_commerce/internal/common"
	"lead_commerce/internal/ingest/adapters"
	"lead_commerce/internal/logger"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProcessResult kết quả xử lý một webhook event.
type ProcessResult struct {
	// Outcome: created | updated | skipped | ignored
	Outcome string             `json:"outcome"`
	LogID   primitive.ObjectID `json:"logId"`
}

// WebhookService xử lý webhook inbound: log-first rồi mới verify/extract/import.
type WebhookService struct {
	logService         *WebhookLogService
	integrationService *integrationsvc.IntegrationService
	leadService        *leadsvc.LeadService
}

// NewWebhookService tạo WebhookService mới.
func NewWebhookService() (*WebhookService, error) {
	logService, err := NewWebhookLogService()
	if err != nil {
		return nil, err
	}
	integrationService, err := integrationsvc.NewIntegrationService()
	if err != nil {
		return nil, err
	}
	leadService, err := leadsvc.NewLeadService()
	if err != nil {
		return nil, err
	}
	return &WebhookService{
		logService:         logService,
		integrationService: integrationService,
		leadService:        leadService,
	}, nil
}

// ProcessEvent xử lý một webhook event cho integration.
//
// Thứ tự cố định: lưu log TRƯỚC (payload không bao giờ mất) → verify chữ ký
// HMAC constant-time → extract → import. Chữ ký sai → ErrWebhookSignature
// (caller trả 401, log được flag failed). Event không chứa lead (ping,
// status update) → outcome "ignored", không phải lỗi.
func (s *WebhookService) ProcessEvent(ctx context.Context, platform string, integrationID primitive.ObjectID, rawBody []byte, signature string) (*ProcessResult, error) {
	integration, err := s.integrationService.FindOneById(ctx, integrationID)
	if err != nil {
		return nil, err
	}
	if integration.Platform != platform {
		return nil, common.NewError(
			common.ErrCodeIngestConfig,
			"Integration không thuộc platform "+platform,
			common.StatusBadRequest,
			nil,
		)
	}
	if !integration.Active {
		return nil, common.NewError(
			common.ErrCodeIngestConfig,
			"Integration đang tắt, không nhận webhook",
			common.StatusBadRequest,
			nil,
		)
	}

	// Payload parse được hay không đều phải vào log
	var payload map[string]interface{}
	parseErr := json.Unmarshal(rawBody, &payload)
	if payload == nil {
		payload = map[string]interface{}{"raw": string(rawBody)}
	}

	webhookLog := webhookmodels.WebhookLog{
		Platform:            platform,
		IntegrationID:       integrationID,
		Payload:             payload,
		Status:              webhookmodels.WebhookStatusReceived,
		OwnerOrganizationID: integration.OwnerOrganizationID,
	}
	webhookLog, logErr := s.logService.InsertOne(ctx, webhookLog)
	if logErr != nil {
		logger.GetAppLogger().WithError(logErr).Warn("🔔 [WEBHOOK] Không thể lưu webhook log")
	}

	adapter, exists := adapters.Registry.Get(platform)
	if !exists {
		s.finishLog(ctx, webhookLog.ID, webhookmodels.WebhookStatusFailed, "platform không có adapter")
		return nil, common.NewError(
			common.ErrCodeIngestConfig,
			"Platform "+platform+" không có adapter",
			common.StatusBadRequest,
			nil,
		)
	}

	if !adapter.VerifySignature(rawBody, signature, integration.Credentials.WebhookSecret) {
		s.finishLog(ctx, webhookLog.ID, webhookmodels.WebhookStatusFailed, "chữ ký không hợp lệ")
		return nil, common.ErrWebhookSignature
	}

	if parseErr != nil {
		s.finishLog(ctx, webhookLog.ID, webhookmodels.WebhookStatusFailed, "payload không phải JSON: "+parseErr.Error())
		return &ProcessResult{Outcome: "ignored", LogID: webhookLog.ID}, nil
	}

	canonical, found := adapter.ExtractFromEvent(payload)
	if !found {
		s.finishLog(ctx, webhookLog.ID, webhookmodels.WebhookStatusIgnored, "")
		return &ProcessResult{Outcome: "ignored", LogID: webhookLog.ID}, nil
	}

	duplicatePolicy, _ := integration.Config["duplicatePolicy"].(string)
	outcome, err := s.leadService.ImportCanonical(ctx, integration.OwnerOrganizationID, integrationID, canonical, duplicatePolicy)
	if err != nil {
		s.finishLog(ctx, webhookLog.ID, webhookmodels.WebhookStatusFailed, err.Error())
		return nil, err
	}

	s.finishLog(ctx, webhookLog.ID, webhookmodels.WebhookStatusProcessed, "")

	logger.GetAppLogger().WithFields(logrus.Fields{
		"platform":      platform,
		"integrationId": integrationID.Hex(),
		"externalId":    canonical.ExternalID,
		"outcome":       outcome,
	}).Info("🔔 [WEBHOOK] Đã xử lý event")

	return &ProcessResult{Outcome: outcome, LogID: webhookLog.ID}, nil
}

// finishLog cập nhật trạng thái cuối của webhook log. Best-effort.
func (s *WebhookService) finishLog(ctx context.Context, logID primitive.ObjectID, status, errMsg string) {
	if logID.IsZero() {
		return
	}
	patch := map[string]interface{}{
		"status":      status,
		"processedAt": time.Now().UnixMilli(),
	}
	if errMsg != "" {
		patch["error"] = errMsg
	}
	if _, err := s.logService.UpdateById(ctx, logID, patch); err != nil {
		logger.GetAppLogger().WithError(err).WithFields(logrus.Fields{
			"logId": logID.Hex(),
		}).Warn("🔔 [WEBHOOK] Không thể cập nhật webhook log")
	}
}
