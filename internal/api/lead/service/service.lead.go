// Package leadsvc - Service lead (crm_leads): resolve trùng, gán owner, tạo lead.
package leadsvc

import (
	"context"
	"fmt"

	authsvc "lead_commerce/internal/api/auth/service"
	basemodels "lead_commerce/internal/api/base/models"
	basesvc "lead_commerce/internal/api/base/service"
	leadmodels "lead_commerce/internal/api/lead/models"
	"lead_commerce/internal/common"
	"lead_commerce/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LeadService xử lý logic lead: resolve trùng, gán owner, tạo lead.
type LeadService struct {
	*basesvc.BaseServiceMongoImpl[leadmodels.Lead]

	userService    *authsvc.UserService
	formAssignSvc  *FormAssignmentService
	sheetAssignSvc *SheetAssignmentService
	guard          *SubmissionGuard
}

// NewLeadService tạo LeadService mới.
func NewLeadService() (*LeadService, error) {
	coll, exist := global.RegistryCollections.Get(global.ColNames.Leads)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.ColNames.Leads, common.ErrNotFound)
	}

	userSvc, err := authsvc.NewUserService()
	if err != nil {
		return nil, fmt.Errorf("tạo UserService: %w", err)
	}
	formSvc, err := NewFormAssignmentService()
	if err != nil {
		return nil, fmt.Errorf("tạo FormAssignmentService: %w", err)
	}
	sheetSvc, err := NewSheetAssignmentService()
	if err != nil {
		return nil, fmt.Errorf("tạo SheetAssignmentService: %w", err)
	}

	return &LeadService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[leadmodels.Lead](coll),
		userService:          userSvc,
		formAssignSvc:        formSvc,
		sheetAssignSvc:       sheetSvc,
		guard:                DefaultSubmissionGuard(),
	}, nil
}

// ListByOrg trả về lead của org với phân trang, mới nhất trước.
// assignedTo khác nil = chỉ lead gán cho user đó.
func (s *LeadService) ListByOrg(ctx context.Context, orgID primitive.ObjectID, assignedTo *primitive.ObjectID, page, limit int64) (*basemodels.PaginateResult[leadmodels.Lead], error) {
	filter := bson.M{"ownerOrganizationId": orgID}
	if assignedTo != nil {
		filter["assignedTo"] = *assignedTo
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return s.FindWithPagination(ctx, filter, page, limit, opts)
}

// FormAssignmentService quản lý rule gán theo form (crm_form_assignments).
type FormAssignmentService struct {
	*basesvc.BaseServiceMongoImpl[leadmodels.FormAssignment]
}

// NewFormAssignmentService tạo FormAssignmentService mới.
func NewFormAssignmentService() (*FormAssignmentService, error) {
	coll, exist := global.RegistryCollections.Get(global.ColNames.FormAssignments)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.ColNames.FormAssignments, common.ErrNotFound)
	}
	return &FormAssignmentService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[leadmodels.FormAssignment](coll),
	}, nil
}

// SheetAssignmentService quản lý rule gán theo sheet (crm_sheet_assignments).
type SheetAssignmentService struct {
	*basesvc.BaseServiceMongoImpl[leadmodels.SheetAssignment]
}

// NewSheetAssignmentService tạo SheetAssignmentService mới.
func NewSheetAssignmentService() (*SheetAssignmentService, error) {
	coll, exist := global.RegistryCollections.Get(global.ColNames.SheetAssignments)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.ColNames.SheetAssignments, common.ErrNotFound)
	}
	return &SheetAssignmentService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[leadmodels.SheetAssignment](coll),
	}, nil
}
