// Package inthdl - Handler API integration: cấu hình nguồn, sync thủ công, test kết nối.
package inthdl

import (
	"fmt"
	"strconv"

	basehdl "lead_commerce/internal/api/base/handler"
	intdto "lead_commerce/internal/api/integration/dto"
	intmodels "lead_commerce/internal/api/integration/models"
	integrationsvc "lead_commerce/internal/api/integration/service"
	"lead_commerce/internal/common"
	"lead_commerce/internal/global"
	"lead_commerce/internal/ingest"
	"lead_commerce/internal/ingest/adapters"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IntegrationHandler xử lý API integration.
type IntegrationHandler struct {
	IntegrationService *integrationsvc.IntegrationService
	RunService         *integrationsvc.IngestRunService
	Orchestrator       *ingest.Orchestrator
}

// NewIntegrationHandler tạo IntegrationHandler mới.
func NewIntegrationHandler() (*IntegrationHandler, error) {
	integrationService, err := integrationsvc.NewIntegrationService()
	if err != nil {
		return nil, fmt.Errorf("tạo IntegrationService: %w", err)
	}
	runService, err := integrationsvc.NewIngestRunService()
	if err != nil {
		return nil, fmt.Errorf("tạo IngestRunService: %w", err)
	}
	orchestrator, err := ingest.NewOrchestrator()
	if err != nil {
		return nil, fmt.Errorf("tạo Orchestrator: %w", err)
	}
	return &IntegrationHandler{
		IntegrationService: integrationService,
		RunService:         runService,
		Orchestrator:       orchestrator,
	}, nil
}

// HandleCreateIntegration xử lý POST /integrations.
func (h *IntegrationHandler) HandleCreateIntegration(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input intdto.CreateIntegrationRequest
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
			missingOrgResponse(c)
			return nil
		}

		integration := intmodels.Integration{
			Name:     input.Name,
			Platform: input.Platform,
			Active:   true,
			Credentials: intmodels.IntegrationCredentials{
				AccessToken:   input.Credentials.AccessToken,
				RefreshToken:  input.Credentials.RefreshToken,
				WebhookSecret: input.Credentials.WebhookSecret,
			},
			Config:              input.Config,
			OwnerOrganizationID: *orgID,
		}
		created, err := h.IntegrationService.InsertOne(c.Context(), integration)
		basehdl.HandleResponse(c, sanitize(created), err)
		return nil
	})
}

// HandleListIntegrations xử lý GET /integrations.
func (h *IntegrationHandler) HandleListIntegrations(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		orgID := getActiveOrganizationID(c)
		if orgID == nil {
			missingOrgResponse(c)
			return nil
		}
		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		list, err := h.IntegrationService.Find(c.Context(), bson.M{"ownerOrganizationId": *orgID}, opts)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}
		sanitized := make([]intmodels.Integration, 0, len(list))
		for _, it := range list {
			sanitized = append(sanitized, sanitize(it))
		}
		basehdl.HandleResponse(c, sanitized, nil)
		return nil
	})
}

// HandleGetConfig xử lý GET /integrations/:id/config.
func (h *IntegrationHandler) HandleGetConfig(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		integration, ok := h.loadOwned(c)
		if !ok {
			return nil
		}
		basehdl.HandleResponse(c, fiber.Map{
			"config": integration.Config,
			"cursor": integration.Cursor,
		}, nil)
		return nil
	})
}

// HandleUpdateConfig xử lý PUT /integrations/:id/config — read-merge-write,
// key null bị xóa, key không nhắc tới giữ nguyên. Cursor và sync state không
// đi qua đường này nên settings edit không bao giờ clobber cursor.
func (h *IntegrationHandler) HandleUpdateConfig(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input intdto.UpdateConfigRequest
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
			missingOrgResponse(c)
			return nil
		}
		integrationID, valid := parseIntegrationID(c)
		if !valid {
			return nil
		}

		updated, err := h.IntegrationService.MergeConfig(c.Context(), integrationID, *orgID, input.Config)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}
		basehdl.HandleResponse(c, fiber.Map{"config": updated.Config}, nil)
		return nil
	})
}

// HandleRunSync xử lý POST /integrations/:id/sync?full=true|false — chạy một
// pass sync thủ công, trả summary. Pass đang chạy → lỗi pass-running, client
// đợi chứ không retry.
func (h *IntegrationHandler) HandleRunSync(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		integration, ok := h.loadOwned(c)
		if !ok {
			return nil
		}
		full := c.Query("full") == "true"

		summary, err := h.Orchestrator.RunPass(c.Context(), integration.ID, full, ingest.TriggerManual)
		basehdl.HandleResponse(c, summary, err)
		return nil
	})
}

// HandleTestConnection xử lý POST /integrations/:id/test.
func (h *IntegrationHandler) HandleTestConnection(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		integration, ok := h.loadOwned(c)
		if !ok {
			return nil
		}

		adapter, exists := adapters.Registry.Get(integration.Platform)
		if !exists {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeIngestConfig,
				"Platform "+integration.Platform+" không có adapter",
				common.StatusBadRequest,
				nil,
			))
			return nil
		}

		result := adapter.TestConnection(c.Context(), &integration)
		basehdl.HandleResponse(c, result, nil)
		return nil
	})
}

// HandleListRuns xử lý GET /integrations/:id/runs — audit trail các pass sync.
func (h *IntegrationHandler) HandleListRuns(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		integration, ok := h.loadOwned(c)
		if !ok {
			return nil
		}
		limit, err := strconv.ParseInt(c.Query("limit", "20"), 10, 64)
		if err != nil || limit < 1 {
			limit = 20
		}
		runs, err := h.RunService.ListByIntegration(c.Context(), integration.ID, limit)
		if runs == nil {
			runs = []intmodels.IngestRun{}
		}
		basehdl.HandleResponse(c, runs, err)
		return nil
	})
}

// loadOwned load integration theo :id và check thuộc org đang active.
// Trả (zero, false) khi đã ghi response lỗi.
func (h *IntegrationHandler) loadOwned(c fiber.Ctx) (intmodels.Integration, bool) {
	var zero intmodels.Integration
	orgID := getActiveOrganizationID(c)
	if orgID == nil {
		missingOrgResponse(c)
		return zero, false
	}
	integrationID, valid := parseIntegrationID(c)
	if !valid {
		return zero, false
	}

	integration, err := h.IntegrationService.FindOne(c.Context(), bson.M{
		"_id":                 integrationID,
		"ownerOrganizationId": *orgID,
	}, nil)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return zero, false
	}
	return integration, true
}

// parseIntegrationID parse :id từ path. Trả (zero, false) khi đã ghi response lỗi.
func parseIntegrationID(c fiber.Ctx) (primitive.ObjectID, bool) {
	integrationID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		c.Status(common.StatusBadRequest).JSON(fiber.Map{
			"code": common.ErrCodeValidationInput.Code, "message": "id không hợp lệ", "status": "error",
		})
		return primitive.NilObjectID, false
	}
	return integrationID, true
}

// sanitize xóa credential trước khi trả integration cho client.
func sanitize(integration intmodels.Integration) intmodels.Integration {
	hasToken := integration.Credentials.AccessToken != ""
	hasSecret := integration.Credentials.WebhookSecret != ""
	integration.Credentials = intmodels.IntegrationCredentials{}
	if hasToken {
		integration.Credentials.AccessToken = "***"
	}
	if hasSecret {
		integration.Credentials.WebhookSecret = "***"
	}
	return integration
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

func missingOrgResponse(c fiber.Ctx) {
	c.Status(common.StatusBadRequest).JSON(fiber.Map{
		"code": common.ErrCodeValidationInput.Code, "message": "Thiếu X-Organization-Id", "status": "error",
	})
}
