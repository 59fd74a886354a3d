// Package leadsvc - Assignment router: quyết định owner cho lead được chấp nhận.
package leadsvc

import (
	"context"
	"errors"

	leadmodels "lead_commerce/internal/api/lead/models"
	"lead_commerce/internal/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// assignmentRule dạng chung của FormAssignment/SheetAssignment khi đã match.
type assignmentRule struct {
	AssignedTo *primitive.ObjectID
	Unassigned bool
}

// resolveOwnerFromRules quyết định owner theo precedence, cao nhất trước:
//
//  1. Rule form active cho form gốc.
//  2. Rule sheet active cho sheet gốc — rule có thể nói rõ "không gán ai"
//     (Unassigned=true), khác với "chưa cấu hình rule" (rule nil): Unassigned
//     dừng tại đây trả nil, rule nil rơi xuống bước sau.
//  3. Creator là sales user không phải manager → auto-assign cho creator.
//  4. Không gán, admin/manager chia thủ công sau.
//
// Manager không bao giờ được auto-assign lead tự tạo, dù vẫn đứng tên createdBy.
// Hàm pure để test độc lập; ResolveOwner lo phần tra DB.
func resolveOwnerFromRules(formRule, sheetRule *assignmentRule, creatorID *primitive.ObjectID, creatorIsManager bool) *primitive.ObjectID {
	if formRule != nil {
		if formRule.Unassigned {
			return nil
		}
		return formRule.AssignedTo
	}
	if sheetRule != nil {
		if sheetRule.Unassigned {
			return nil
		}
		return sheetRule.AssignedTo
	}
	if creatorID != nil && !creatorIsManager {
		return creatorID
	}
	return nil
}

// ResolveOwner trả về owner cho canonical lead trong org, theo precedence của
// resolveOwnerFromRules. creatorID khác nil với lead tạo tay; nil với lead import.
func (s *LeadService) ResolveOwner(ctx context.Context, orgID primitive.ObjectID, canonical *leadmodels.CanonicalLead, creatorID *primitive.ObjectID) (*primitive.ObjectID, error) {
	var formRule, sheetRule *assignmentRule

	if canonical.FormID != "" {
		rule, err := s.formAssignSvc.FindOne(ctx, bson.M{
			"ownerOrganizationId": orgID,
			"formId":              canonical.FormID,
			"active":              true,
		}, nil)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		if err == nil {
			formRule = &assignmentRule{AssignedTo: rule.AssignedTo, Unassigned: rule.Unassigned}
		}
	}

	if canonical.SpreadsheetID != "" {
		rule, err := s.sheetAssignSvc.FindOne(ctx, bson.M{
			"ownerOrganizationId": orgID,
			"spreadsheetId":       canonical.SpreadsheetID,
			"active":              true,
		}, nil)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		if err == nil {
			sheetRule = &assignmentRule{AssignedTo: rule.AssignedTo, Unassigned: rule.Unassigned}
		}
	}

	creatorIsManager := false
	if creatorID != nil {
		isManager, err := s.userService.IsManager(ctx, *creatorID)
		if err != nil {
			return nil, err
		}
		creatorIsManager = isManager
	}

	return resolveOwnerFromRules(formRule, sheetRule, creatorID, creatorIsManager), nil
}
