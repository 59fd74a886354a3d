// Package leadsvc - Đường tạo lead: tương tác (manual/bulk) và import từ integration.
package leadsvc

import (
	"context"

	leaddto "lead_commerce/internal/api/lead/dto"
	leadmodels "lead_commerce/internal/api/lead/models"
	"lead_commerce/internal/common"
	"lead_commerce/internal/logger"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kết quả import một canonical lead (đường orchestrator).
const (
	ImportOutcomeCreated = "created"
	ImportOutcomeUpdated = "updated"
	ImportOutcomeSkipped = "skipped"
)

// Policy xử lý duplicate khi import từ integration (config "duplicatePolicy").
const (
	DuplicatePolicySkip   = "skip"   // Mặc định: bỏ qua, không đụng lead đang có
	DuplicatePolicyUpdate = "update" // Chỉ điền các field profile đang trống
)

// CreateLead tạo lead tương tác (manual entry).
//
// Pipeline: guard → resolve → assign → insert. Guard chặn double-submit;
// resolver báo trùng cho UI; unique index là chốt chặn cuối — duplicate-key
// khi insert nghĩa là "vừa thành trùng do writer song song", re-resolve và
// trả về lead đang tồn tại thay vì lỗi.
func (s *LeadService) CreateLead(ctx context.Context, orgID primitive.ObjectID, input *leaddto.CreateLeadRequest, creatorID *primitive.ObjectID) (*leaddto.CreateLeadResponse, error) {
	phoneKey, _ := NormalizePhone(input.Phone)

	requestID, err := s.guard.Check(input.SessionID, phoneKey)
	if err != nil {
		return nil, err
	}

	canonical := &leadmodels.CanonicalLead{
		Name:    input.Name,
		Phone:   input.Phone,
		Email:   input.Email,
		Company: input.Company,
		Source:  leadmodels.SourceManual,
		Extra:   input.Extra,
	}

	resolution, err := s.Resolve(ctx, orgID, canonical, nil)
	if err != nil {
		return nil, err
	}

	if resolution.Decision == DecisionDuplicate && !input.ForceCreate {
		return duplicateResponse(requestID, resolution.Existing), nil
	}

	owner, err := s.ResolveOwner(ctx, orgID, canonical, creatorID)
	if err != nil {
		return nil, err
	}

	lead := s.buildLead(orgID, canonical, phoneKey, owner)
	lead.CreatedBy = creatorID
	if resolution.Decision == DecisionDuplicate && input.ForceCreate {
		lead.IsDuplicateOverride = true
		existingID := resolution.Existing.ID
		lead.DuplicateOf = &existingID
	}

	created, err := s.InsertOne(ctx, lead)
	if err != nil {
		if common.IsDuplicateErr(err) {
			// Writer song song thắng cuộc đua — trả về lead đang tồn tại.
			resolution, rerr := s.Resolve(ctx, orgID, canonical, nil)
			if rerr == nil && resolution.Decision == DecisionDuplicate {
				return duplicateResponse(requestID, resolution.Existing), nil
			}
		}
		return nil, err
	}

	logger.GetAppLogger().WithFields(logrus.Fields{
		"leadId":    created.ID.Hex(),
		"orgId":     orgID.Hex(),
		"requestId": requestID,
		"source":    created.Source,
	}).Info("📋 [LEAD] Đã tạo lead mới")

	return &leaddto.CreateLeadResponse{
		Status:    "created",
		RequestID: requestID,
		LeadID:    &created.ID,
	}, nil
}

// BulkImport tạo nhiều lead tương tác trong một request.
// Từng item độc lập: item trùng/lỗi không chặn các item còn lại.
// Guard chỉ check một lần cho cả batch (một thao tác người dùng).
func (s *LeadService) BulkImport(ctx context.Context, orgID primitive.ObjectID, input *leaddto.BulkImportRequest, creatorID *primitive.ObjectID) (*leaddto.BulkImportResponse, error) {
	if _, err := s.guard.Check(input.SessionID, ""); err != nil {
		return nil, err
	}

	resp := &leaddto.BulkImportResponse{Results: make([]leaddto.CreateLeadResponse, 0, len(input.Leads))}
	for i := range input.Leads {
		item := input.Leads[i]
		item.SessionID = ""

		result, err := s.createBulkItem(ctx, orgID, &item, creatorID)
		if err != nil {
			resp.Failed++
			resp.Results = append(resp.Results, leaddto.CreateLeadResponse{Status: "failed"})
			logger.GetAppLogger().WithError(err).WithFields(logrus.Fields{
				"orgId": orgID.Hex(),
				"index": i,
			}).Warn("📋 [LEAD] Import item lỗi")
			continue
		}
		switch result.Status {
		case "created":
			resp.Created++
		case "duplicate":
			resp.Duplicate++
		}
		resp.Results = append(resp.Results, *result)
	}
	return resp, nil
}

// createBulkItem tạo một item trong bulk import — như CreateLead nhưng bỏ guard
// (đã check ở mức batch).
func (s *LeadService) createBulkItem(ctx context.Context, orgID primitive.ObjectID, input *leaddto.CreateLeadRequest, creatorID *primitive.ObjectID) (*leaddto.CreateLeadResponse, error) {
	phoneKey, _ := NormalizePhone(input.Phone)

	canonical := &leadmodels.CanonicalLead{
		Name:    input.Name,
		Phone:   input.Phone,
		Email:   input.Email,
		Company: input.Company,
		Source:  leadmodels.SourceManual,
		Extra:   input.Extra,
	}

	resolution, err := s.Resolve(ctx, orgID, canonical, nil)
	if err != nil {
		return nil, err
	}
	if resolution.Decision == DecisionDuplicate {
		return duplicateResponse("", resolution.Existing), nil
	}

	owner, err := s.ResolveOwner(ctx, orgID, canonical, creatorID)
	if err != nil {
		return nil, err
	}

	lead := s.buildLead(orgID, canonical, phoneKey, owner)
	lead.CreatedBy = creatorID

	created, err := s.InsertOne(ctx, lead)
	if err != nil {
		if common.IsDuplicateErr(err) {
			resolution, rerr := s.Resolve(ctx, orgID, canonical, nil)
			if rerr == nil && resolution.Decision == DecisionDuplicate {
				return duplicateResponse("", resolution.Existing), nil
			}
		}
		return nil, err
	}

	return &leaddto.CreateLeadResponse{Status: "created", LeadID: &created.ID}, nil
}

// ImportCanonical persist một canonical lead từ sync pass (đường orchestrator).
// Trả về outcome created|updated|skipped. Policy duplicate mặc định: skip,
// không đụng lead đang có; policy "update" chỉ điền các field profile đang
// trống — assignment và phone không bao giờ bị đè.
func (s *LeadService) ImportCanonical(ctx context.Context, orgID primitive.ObjectID, integrationID primitive.ObjectID, canonical *leadmodels.CanonicalLead, duplicatePolicy string) (string, error) {
	resolution, err := s.Resolve(ctx, orgID, canonical, &integrationID)
	if err != nil {
		return "", err
	}
	if resolution.Decision == DecisionDuplicate {
		if duplicatePolicy == DuplicatePolicyUpdate && resolution.Existing != nil {
			return s.fillEmptyProfileFields(ctx, resolution.Existing.ID, canonical)
		}
		return ImportOutcomeSkipped, nil
	}

	owner, err := s.ResolveOwner(ctx, orgID, canonical, nil)
	if err != nil {
		return "", err
	}

	phoneKey, _ := NormalizePhone(canonical.Phone)
	lead := s.buildLead(orgID, canonical, phoneKey, owner)
	lead.IntegrationID = &integrationID
	lead.ExternalID = canonical.ExternalID

	if _, err := s.InsertOne(ctx, lead); err != nil {
		if common.IsDuplicateErr(err) {
			// Redeliver/re-sync chạy song song đã tạo trước — coi như skip.
			return ImportOutcomeSkipped, nil
		}
		return "", err
	}
	return ImportOutcomeCreated, nil
}

// fillEmptyProfileFields điền name/email/company đang trống của lead cũ bằng
// giá trị từ canonical. Không có gì để điền → skipped.
func (s *LeadService) fillEmptyProfileFields(ctx context.Context, leadID primitive.ObjectID, canonical *leadmodels.CanonicalLead) (string, error) {
	existing, err := s.FindOneById(ctx, leadID)
	if err != nil {
		return "", err
	}

	patch := map[string]interface{}{}
	if existing.Name == "" && canonical.Name != "" {
		patch["name"] = canonical.Name
	}
	if existing.Company == "" && canonical.Company != "" {
		patch["company"] = canonical.Company
	}
	if existing.Email == "" {
		if email, ok := NormalizeEmail(canonical.Email); ok {
			patch["email"] = email
		}
	}
	if len(patch) == 0 {
		return ImportOutcomeSkipped, nil
	}

	if _, err := s.UpdateById(ctx, leadID, patch); err != nil {
		return "", err
	}
	return ImportOutcomeUpdated, nil
}

// buildLead dựng model Lead từ canonical. Email không hợp lệ bị bỏ (absent),
// không chặn tạo lead.
func (s *LeadService) buildLead(orgID primitive.ObjectID, canonical *leadmodels.CanonicalLead, phoneKey string, owner *primitive.ObjectID) leadmodels.Lead {
	email, _ := NormalizeEmail(canonical.Email)
	return leadmodels.Lead{
		Name:                canonical.Name,
		Phone:               canonical.Phone,
		Email:               email,
		Company:             canonical.Company,
		NormalizedPhone:     phoneKey,
		Status:              leadmodels.LeadStatusNew,
		Source:              canonical.Source,
		AssignedTo:          owner,
		Extra:               canonical.Extra,
		OwnerOrganizationID: orgID,
	}
}

func duplicateResponse(requestID string, existing *ExistingLeadRef) *leaddto.CreateLeadResponse {
	resp := &leaddto.CreateLeadResponse{Status: "duplicate", RequestID: requestID}
	if existing != nil {
		resp.Existing = &leaddto.ExistingLeadInfo{
			ID:         existing.ID,
			Name:       existing.Name,
			AssignedTo: existing.AssignedTo,
		}
	}
	return resp
}
