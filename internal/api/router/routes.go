// Package router lắp ráp toàn bộ route của API lên fiber app.
package router

import (
	"github.com/gofiber/fiber/v3"

	introuter "lead_commerce/internal/api/integration/router"
	leadrouter "lead_commerce/internal/api/lead/router"
	"lead_commerce/internal/api/middleware"
	webhookrouter "lead_commerce/internal/api/webhook/router"
	"lead_commerce/internal/common"
)

// RoutePrefix chứa các prefix cơ bản cho API
type RoutePrefix struct {
	Base string // Prefix cơ bản (/api)
	V1   string // Prefix cho API version 1 (/api/v1)
}

// NewRoutePrefix tạo mới một instance của RoutePrefix với các giá trị mặc định
func NewRoutePrefix() RoutePrefix {
	base := "/api"
	return RoutePrefix{
		Base: base,
		V1:   base + "/v1",
	}
}

// SetupRoutes đăng ký toàn bộ route lên app.
//
// LƯU Ý Fiber v3: KHÔNG truyền middleware trực tiếp kiểu router.Get(path, middleware, handler) —
// middleware sẽ không được gọi. Phải tạo group rồi .Use() như bên dưới.
func SetupRoutes(app *fiber.App) error {
	prefix := NewRoutePrefix()

	app.Get("/health", func(c fiber.Ctx) error {
		return c.Status(common.StatusOK).JSON(fiber.Map{
			"code":   common.StatusOK,
			"status": "success",
		})
	})

	// Route webhook là public (xác thực bằng chữ ký HMAC), không qua
	// organization context middleware.
	publicV1 := app.Group(prefix.V1)
	if err := webhookrouter.Register(publicV1); err != nil {
		return err
	}

	// Các route còn lại cần organization context từ header.
	v1 := app.Group(prefix.V1)
	v1.Use(middleware.OrganizationContextMiddleware())
	if err := leadrouter.Register(v1); err != nil {
		return err
	}
	if err := introuter.Register(v1); err != nil {
		return err
	}

	return nil
}
