package leadhdl

import (
	"fmt"

	basehdl "lead_commerce/internal/api/base/handler"
	leaddto "lead_commerce/internal/api/lead/dto"
	leadmodels "lead_commerce/internal/api/lead/models"
	leadsvc "lead_commerce/internal/api/lead/service"
	"lead_commerce/internal/common"
	"lead_commerce/internal/global"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AssignmentHandler xử lý API rule gán lead theo form/sheet.
type AssignmentHandler struct {
	FormService  *leadsvc.FormAssignmentService
	SheetService *leadsvc.SheetAssignmentService
}

// NewAssignmentHandler tạo AssignmentHandler mới.
func NewAssignmentHandler() (*AssignmentHandler, error) {
	formService, err := leadsvc.NewFormAssignmentService()
	if err != nil {
		return nil, fmt.Errorf("tạo FormAssignmentService: %w", err)
	}
	sheetService, err := leadsvc.NewSheetAssignmentService()
	if err != nil {
		return nil, fmt.Errorf("tạo SheetAssignmentService: %w", err)
	}
	return &AssignmentHandler{FormService: formService, SheetService: sheetService}, nil
}

// HandleUpsertFormAssignment xử lý PUT /assignments/forms — tạo hoặc cập nhật
// rule gán theo form. Upsert theo (org, formId).
func (h *AssignmentHandler) HandleUpsertFormAssignment(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input leaddto.UpsertFormAssignmentRequest
		orgID, ok := bindAndValidate(c, &input)
		if !ok {
			return nil
		}

		assignedTo, errResp := parseAssignedTo(c, input.AssignedTo, input.Unassigned)
		if errResp {
			return nil
		}

		patch := map[string]interface{}{
			"formName":   input.FormName,
			"assignedTo": assignedTo,
			"unassigned": input.Unassigned,
		}
		if input.Active != nil {
			patch["active"] = *input.Active
		} else {
			patch["active"] = true
		}

		result, err := h.FormService.Upsert(c.Context(), bson.M{
			"ownerOrganizationId": *orgID,
			"formId":              input.FormID,
		}, patch)
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// HandleListFormAssignments xử lý GET /assignments/forms.
func (h *AssignmentHandler) HandleListFormAssignments(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		orgID := getActiveOrganizationID(c)
		if orgID == nil {
			missingOrgResponse(c)
			return nil
		}
		opts := options.Find().SetSort(bson.D{{Key: "formId", Value: 1}})
		rules, err := h.FormService.Find(c.Context(), bson.M{"ownerOrganizationId": *orgID}, opts)
		if rules == nil {
			rules = []leadmodels.FormAssignment{}
		}
		basehdl.HandleResponse(c, rules, err)
		return nil
	})
}

// HandleUpsertSheetAssignment xử lý PUT /assignments/sheets — tạo hoặc cập nhật
// rule gán theo spreadsheet. Upsert theo (org, spreadsheetId).
func (h *AssignmentHandler) HandleUpsertSheetAssignment(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input leaddto.UpsertSheetAssignmentRequest
		orgID, ok := bindAndValidate(c, &input)
		if !ok {
			return nil
		}

		assignedTo, errResp := parseAssignedTo(c, input.AssignedTo, input.Unassigned)
		if errResp {
			return nil
		}

		patch := map[string]interface{}{
			"sheetName":  input.SheetName,
			"assignedTo": assignedTo,
			"unassigned": input.Unassigned,
		}
		if input.Active != nil {
			patch["active"] = *input.Active
		} else {
			patch["active"] = true
		}

		result, err := h.SheetService.Upsert(c.Context(), bson.M{
			"ownerOrganizationId": *orgID,
			"spreadsheetId":       input.SpreadsheetID,
		}, patch)
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// HandleListSheetAssignments xử lý GET /assignments/sheets.
func (h *AssignmentHandler) HandleListSheetAssignments(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		orgID := getActiveOrganizationID(c)
		if orgID == nil {
			missingOrgResponse(c)
			return nil
		}
		opts := options.Find().SetSort(bson.D{{Key: "spreadsheetId", Value: 1}})
		rules, err := h.SheetService.Find(c.Context(), bson.M{"ownerOrganizationId": *orgID}, opts)
		if rules == nil {
			rules = []leadmodels.SheetAssignment{}
		}
		basehdl.HandleResponse(c, rules, err)
		return nil
	})
}

// bindAndValidate bind body + validate + lấy org. Trả (nil, false) khi đã
// ghi response lỗi.
func bindAndValidate(c fiber.Ctx, input interface{}) (*primitive.ObjectID, bool) {
	if err := c.Bind().Body(input); err != nil {
		c.Status(common.StatusBadRequest).JSON(fiber.Map{
			"code": common.ErrCodeValidationFormat.Code, "message": "Dữ liệu gửi lên không đúng định dạng JSON", "status": "error",
		})
		return nil, false
	}
	if err := global.Validate.Struct(input); err != nil {
		c.Status(common.StatusBadRequest).JSON(fiber.Map{
			"code": common.ErrCodeValidationInput.Code, "message": "Dữ liệu không hợp lệ: " + err.Error(), "status": "error",
		})
		return nil, false
	}
	orgID := getActiveOrganizationID(c)
	if orgID == nil {
		missingOrgResponse(c)
		return nil, false
	}
	return orgID, true
}

// parseAssignedTo parse assignedTo hex. Unassigned=true thì assignedTo bị bỏ qua.
// Trả (nil, true) khi đã ghi response lỗi.
func parseAssignedTo(c fiber.Ctx, hex string, unassigned bool) (*primitive.ObjectID, bool) {
	if unassigned || hex == "" {
		return nil, false
	}
	parsed, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		c.Status(common.StatusBadRequest).JSON(fiber.Map{
			"code": common.ErrCodeValidationInput.Code, "message": "assignedTo không hợp lệ", "status": "error",
		})
		return nil, true
	}
	return &parsed, false
}

func missingOrgResponse(c fiber.Ctx) {
	c.Status(common.StatusBadRequest).JSON(fiber.Map{
		"code": common.ErrCodeValidationInput.Code, "message": "Thiếu X-Organization-Id", "status": "error",
	})
}
