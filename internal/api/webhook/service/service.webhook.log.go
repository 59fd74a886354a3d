// Package webhooksvc - Service webhook: lưu log inbound và xử lý event thành lead.
package webhooksvc

import (
	"fmt"

	basesvc "lead_commerce/internal/api/base/service"
	webhookmodels "lead_commerce/internal/api/webhook/models"
	"lead_commerce/internal/common"
	"lead_commerce/internal/global"
)

// WebhookLogService xử lý log webhook inbound (webhook_logs).
type WebhookLogService struct {
	*basesvc.BaseServiceMongoImpl[webhookmodels.WebhookLog]
}

// NewWebhookLogService tạo WebhookLogService mới.
func NewWebhookLogService() (*WebhookLogService, error) {
	coll, exist := global.RegistryCollections.Get(global.ColNames.WebhookLogs)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.ColNames.WebhookLogs, common.ErrNotFound)
	}
	return &WebhookLogService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[webhookmodels.WebhookLog](coll),
	}, nil
}
