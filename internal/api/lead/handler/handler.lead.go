// Package leadhdl - Handler API lead: tạo tương tác, bulk import, danh sách.
package leadhdl

import (
	"fmt"
	"strconv"

	basehdl "lead_commerce/internal/api/base/handler"
	leaddto "lead_commerce/internal/api/lead/dto"
	leadsvc "lead_commerce/internal/api/lead/service"
	"lead_commerce/internal/common"
	"lead_commerce/internal/global"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LeadHandler xử lý API lead.
type LeadHandler struct {
	LeadService *leadsvc.LeadService
}

// NewLeadHandler tạo LeadHandler mới.
func NewLeadHandler() (*LeadHandler, error) {
	svc, err := leadsvc.NewLeadService()
	if err != nil {
		return nil, fmt.Errorf("tạo LeadService: %w", err)
	}
	return &LeadHandler{LeadService: svc}, nil
}

// HandleCreateLead xử lý POST /leads — tạo lead tương tác qua submission guard.
// Trả về status "created" hoặc "duplicate" (kèm thông tin lead đang tồn tại);
// double-submit bị chặn với 429.
func (h *LeadHandler) HandleCreateLead(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input leaddto.CreateLeadRequest
		if err := c.Bind().Body(&input); err != nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code": common.ErrCodeValidationFormat.Code, "message": "Dữ liệu gửi lên không đúng định dạng JSON", "status": "error",
			})
			return nil
		}
		if err := global.Validate.Struct(&input); err != nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code": common.ErrCodeValidationInput.Code, "message": "Dữ liệu không hợp lệ: " + err.Error(), "status": "error",
			})
			return nil
		}

		orgID := getActiveOrganizationID(c)
		if orgID == nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code": common.ErrCodeValidationInput.Code, "message": "Thiếu X-Organization-Id", "status": "error",
			})
			return nil
		}

		result, err := h.LeadService.CreateLead(c.Context(), *orgID, &input, getUserID(c))
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// HandleBulkImport xử lý POST /leads/bulk — import nhiều lead một lần,
// lỗi từng dòng không chặn các dòng còn lại.
func (h *LeadHandler) HandleBulkImport(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input leaddto.BulkImportRequest
		if err := c.Bind().Body(&input); err != nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code": common.ErrCodeValidationFormat.Code, "message": "Dữ liệu gửi lên không đúng định dạng JSON", "status": "error",
			})
			return nil
		}
		if err := global.Validate.Struct(&input); err != nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code": common.ErrCodeValidationInput.Code, "message": "Dữ liệu không hợp lệ: " + err.Error(), "status": "error",
			})
			return nil
		}

		orgID := getActiveOrganizationID(c)
		if orgID == nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code": common.ErrCodeValidationInput.Code, "message": "Thiếu X-Organization-Id", "status": "error",
			})
			return nil
		}

		result, err := h.LeadService.BulkImport(c.Context(), *orgID, &input, getUserID(c))
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// HandleListLeads xử lý GET /leads — danh sách lead của org, phân trang.
// Query: page, limit, assignedTo (ObjectID hex).
func (h *LeadHandler) HandleListLeads(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		orgID := getActiveOrganizationID(c)
		if orgID == nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code": common.ErrCodeValidationInput.Code, "message": "Thiếu X-Organization-Id", "status": "error",
			})
			return nil
		}

		page, err := strconv.ParseInt(c.Query("page", "1"), 10, 64)
		if err != nil || page < 1 {
			page = 1
		}
		limit, err := strconv.ParseInt(c.Query("limit", "20"), 10, 64)
		if err != nil || limit < 1 {
			limit = 20
		}

		var assignedTo *primitive.ObjectID
		if hex := c.Query("assignedTo"); hex != "" {
			parsed, err := primitive.ObjectIDFromHex(hex)
			if err != nil {
				c.Status(common.StatusBadRequest).JSON(fiber.Map{
					"code": common.ErrCodeValidationInput.Code, "message": "assignedTo không hợp lệ", "status": "error",
				})
				return nil
			}
			assignedTo = &parsed
		}

		result, err := h.LeadService.ListByOrg(c.Context(), *orgID, assignedTo, page, limit)
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// getActiveOrganizationID lấy active organization ID từ context.
func getActiveOrganizationID(c fiber.Ctx) *primitive.ObjectID {
	orgIDStr, ok := c.Locals("active_organization_id").(string)
	if !ok || orgIDStr == "" {
		return nil
	}
	orgID, err := primitive.ObjectIDFromHex(orgIDStr)
	if err != nil {
		return nil
	}
	return &orgID
}

// getUserID lấy user ID (sales user thực hiện request) từ context.
func getUserID(c fiber.Ctx) *primitive.ObjectID {
	userIDStr, ok := c.Locals("user_id").(string)
	if !ok || userIDStr == "" {
		return nil
	}
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		return nil
	}
	return &userID
}
