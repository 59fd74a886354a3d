// Package router đăng ký các route thuộc domain Lead: tạo lead, bulk import,
// danh sách, và rule gán theo form/sheet.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	leadhdl "lead_commerce/internal/api/lead/handler"
)

// Register đăng ký tất cả route lead lên v1.
func Register(v1 fiber.Router) error {
	leadHandler, err := leadhdl.NewLeadHandler()
	if err != nil {
		return fmt.Errorf("create lead handler: %w", err)
	}
	v1.Post("/leads", leadHandler.HandleCreateLead)
	v1.Post("/leads/bulk", leadHandler.HandleBulkImport)
	v1.Get("/leads", leadHandler.HandleListLeads)

	assignmentHandler, err := leadhdl.NewAssignmentHandler()
	if err != nil {
		return fmt.Errorf("create assignment handler: %w", err)
	}
	v1.Put("/assignments/forms", assignmentHandler.HandleUpsertFormAssignment)
	v1.Get("/assignments/forms", assignmentHandler.HandleListFormAssignments)
	v1.Put("/assignments/sheets", assignmentHandler.HandleUpsertSheetAssignment)
	v1.Get("/assignments/sheets", assignmentHandler.HandleListSheetAssignments)

	return nil
}
