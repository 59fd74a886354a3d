// Package router đăng ký các route thuộc domain Webhook: endpoint public nhận
// event push từ platform nguồn lead.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	webhookhdl "lead_commerce/internal/api/webhook/handler"
)

// Register đăng ký tất cả route webhook lên v1.
// Route webhook là public — xác thực bằng chữ ký HMAC, không qua middleware auth.
func Register(v1 fiber.Router) error {
	webhookHandler, err := webhookhdl.NewWebhookHandler()
	if err != nil {
		return fmt.Errorf("create webhook handler: %w", err)
	}
	v1.Post("/webhook/:platform", webhookHandler.HandleInboundWebhook)

	return nil
}
