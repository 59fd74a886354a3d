// Package router đăng ký các route thuộc domain Integration: cấu hình nguồn,
// sync thủ công, test kết nối, audit trail sync.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	inthdl "lead_commerce/internal/api/integration/handler"
)

// Register đăng ký tất cả route integration lên v1.
func Register(v1 fiber.Router) error {
	integrationHandler, err := inthdl.NewIntegrationHandler()
	if err != nil {
		return fmt.Errorf("create integration handler: %w", err)
	}

	v1.Post("/integrations", integrationHandler.HandleCreateIntegration)
	v1.Get("/integrations", integrationHandler.HandleListIntegrations)
	v1.Get("/integrations/:id/config", integrationHandler.HandleGetConfig)
	v1.Put("/integrations/:id/config", integrationHandler.HandleUpdateConfig)
	v1.Post("/integrations/:id/sync", integrationHandler.HandleRunSync)
	v1.Post("/integrations/:id/test", integrationHandler.HandleTestConnection)
	v1.Get("/integrations/:id/runs", integrationHandler.HandleListRuns)

	return nil
}
