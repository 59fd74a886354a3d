package middleware

import (
	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrganizationContextMiddleware middleware để quản lý organization context.
// - Đọc X-Organization-Id từ header (org của user đã đăng nhập, do gateway set)
// - Đọc X-User-Id từ header (sales user thực hiện request)
// - Lưu active_organization_id và user_id vào context
//
// Route không có header vẫn được tiếp tục, handler tự quyết định có yêu cầu org hay không.
func OrganizationContextMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		if orgIDStr := c.Get("X-Organization-Id"); orgIDStr != "" {
			if orgID, err := primitive.ObjectIDFromHex(orgIDStr); err == nil {
				c.Locals("active_organization_id", orgID.Hex())
			}
		}

		if userIDStr := c.Get("X-User-Id"); userIDStr != "" {
			if userID, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
				c.Locals("user_id", userID.Hex())
			}
		}

		return c.Next()
	}
}
