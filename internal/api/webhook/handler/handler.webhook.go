// Package webhookhdl - Handler nhận webhook inbound từ các platform nguồn lead.
package webhookhdl

import (
	basehdl "lead_commerce/internal/api/base/handler"
	webhooksvc "lead_commerce/internal/api/webhook/service"
	"lead_commerce/internal/common"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WebhookHandler xử lý webhook inbound.
type WebhookHandler struct {
	webhookService *webhooksvc.WebhookService
}

// NewWebhookHandler tạo mới WebhookHandler.
func NewWebhookHandler() (*WebhookHandler, error) {
	webhookService, err := webhooksvc.NewWebhookService()
	if err != nil {
		return nil, err
	}
	return &WebhookHandler{webhookService: webhookService}, nil
}

// HandleInboundWebhook nhận event push từ platform.
//
// Endpoint: POST /api/v1/webhook/:platform?integrationId=<hex>
//
// Lưu ý:
//   - Endpoint này KHÔNG qua authentication middleware (platform gọi trực tiếp),
//     xác thực bằng chữ ký HMAC trong header X-Hub-Signature-256.
//   - Luôn trả 200 cho event hợp lệ kể cả khi không chứa lead (ignored),
//     để platform không retry. Chữ ký sai → 401.
func (h *WebhookHandler) HandleInboundWebhook(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		platform := c.Params("platform")

		integrationID, err := primitive.ObjectIDFromHex(c.Query("integrationId"))
		if err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeIngestConfig,
				"Thiếu hoặc sai integrationId trong webhook URL",
				common.StatusBadRequest,
				nil,
			))
			return nil
		}

		signature := c.Get("X-Hub-Signature-256")
		if signature == "" {
			signature = c.Get("X-Signature")
		}

		// Copy body: Fiber giữ buffer của request, còn payload thì cần sống
		// qua cả quá trình xử lý và ghi log
		rawBody := make([]byte, len(c.Body()))
		copy(rawBody, c.Body())

		result, err := h.webhookService.ProcessEvent(c.Context(), platform, integrationID, rawBody, signature)
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}
