// Package leadsvc - Resolver: quyết định lead mới hay trùng với lead đã có.
package leadsvc

import (
	"context"
	"errors"

	leadmodels "lead_commerce/internal/api/lead/models"
	"lead_commerce/internal/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Quyết định của resolver.
const (
	DecisionNew       = "NEW"
	DecisionDuplicate = "DUPLICATE"
)

// ExistingLeadRef thông tin lead đã có, trả về cho caller khi DUPLICATE
// để UI hiện "đã tồn tại, đang thuộc về X".
type ExistingLeadRef struct {
	ID         primitive.ObjectID  `json:"id"`
	Name       string              `json:"name"`
	AssignedTo *primitive.ObjectID `json:"assignedTo,omitempty"`
}

// Resolution kết quả resolve.
type Resolution struct {
	Decision string           `json:"decision"` // NEW | DUPLICATE
	Existing *ExistingLeadRef `json:"existing,omitempty"`
}

// Resolve quyết định canonical lead là NEW hay DUPLICATE trong phạm vi org.
//
// Thứ tự kiểm tra:
//  1. externalId (nếu có, kèm integrationId): cùng (org, integration, externalId)
//     đã có lead → DUPLICATE. Đường này xử lý webhook redeliver và re-sync
//     row đã import.
//  2. normalizedPhone: phone không có chữ số nào → NEW (best effort, không
//     dedup được). Có khóa → tìm lead cùng org cùng khóa, match → DUPLICATE
//     kèm id/name/owner hiện tại.
//
// Check-then-act này vẫn racy với writer song song — unique index ở storage
// là chốt chặn cuối, caller xử lý duplicate-key khi insert (xem CreateLead).
func (s *LeadService) Resolve(ctx context.Context, orgID primitive.ObjectID, canonical *leadmodels.CanonicalLead, integrationID *primitive.ObjectID) (*Resolution, error) {
	if canonical.ExternalID != "" && integrationID != nil {
		existing, err := s.FindOne(ctx, bson.M{
			"ownerOrganizationId": orgID,
			"integrationId":       *integrationID,
			"externalId":          canonical.ExternalID,
		}, nil)
		if err == nil {
			return &Resolution{
				Decision: DecisionDuplicate,
				Existing: &ExistingLeadRef{ID: existing.ID, Name: existing.Name, AssignedTo: existing.AssignedTo},
			}, nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
	}

	phoneKey, ok := NormalizePhone(canonical.Phone)
	if !ok {
		return &Resolution{Decision: DecisionNew}, nil
	}

	// Lấy lead cũ nhất cùng khóa — khi có override, lead gốc là bản đầu tiên.
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	existing, err := s.FindOne(ctx, bson.M{
		"ownerOrganizationId": orgID,
		"normalizedPhone":     phoneKey,
	}, opts)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return &Resolution{Decision: DecisionNew}, nil
		}
		return nil, err
	}

	return &Resolution{
		Decision: DecisionDuplicate,
		Existing: &ExistingLeadRef{ID: existing.ID, Name: existing.Name, AssignedTo: existing.AssignedTo},
	}, nil
}
