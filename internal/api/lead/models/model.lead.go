// Package models - Lead thuộc domain lead (crm_leads).
// Bản ghi lead đã dedup, nguồn chính cho sales làm việc.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Nguồn tạo lead.
const (
	SourceManual    = "manual"      // Nhập tay qua API
	SourceLeadForm  = "lead_form"   // Import từ lead form quảng cáo
	SourceSheet     = "spreadsheet" // Import từ spreadsheet
	SourceMessaging = "messaging"   // Webhook messaging
)

// Trạng thái pipeline của lead. Lead mới tạo/import luôn bắt đầu ở "new",
// sales cập nhật các trạng thái sau qua đường update thông thường.
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQualified = "qualified"
	LeadStatusClosed    = "closed"
)

// Lead lưu một lead đã dedup (crm_leads).
//
// Hai ràng buộc unique của collection này nằm trong CreateLeadAdditionalIndexes:
//   - (ownerOrganizationId, normalizedPhone) partial unique — bỏ qua document
//     không có phone và document isDuplicateOverride=true.
//   - (ownerOrganizationId, integrationId, externalId) partial unique — chỉ áp
//     lên document có externalId (lead import từ integration).
type Lead struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	Name  string `json:"name" bson:"name"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"` // Phone gốc như người dùng/nguồn nhập
	Email string `json:"email,omitempty" bson:"email,omitempty"` // Đã normalize (lowercase); rỗng nếu không hợp lệ

	Company string `json:"company,omitempty" bson:"company,omitempty"`

	// NormalizedPhone là khóa dedup: chuỗi chữ số, các dạng mobile quen thuộc
	// quy về dạng quốc tế. Absent (không phải empty string) khi phone gốc
	// không có chữ số nào.
	NormalizedPhone string `json:"normalizedPhone,omitempty" bson:"normalizedPhone,omitempty"`

	// Status trạng thái pipeline: new | contacted | qualified | closed.
	Status string `json:"status" bson:"status"`

	Source string `json:"source" bson:"source"` // manual | lead_form | spreadsheet | messaging

	// Nguồn gốc upstream — chỉ có với lead import từ integration.
	IntegrationID *primitive.ObjectID `json:"integrationId,omitempty" bson:"integrationId,omitempty"`
	ExternalID    string              `json:"externalId,omitempty" bson:"externalId,omitempty"`

	// AssignedTo: sales user được gán. nil = chưa gán (rơi vào pool chung).
	AssignedTo *primitive.ObjectID `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	// CreatedBy: user tạo tay (rỗng với lead từ integration).
	CreatedBy *primitive.ObjectID `json:"createdBy,omitempty" bson:"createdBy,omitempty"`

	// IsDuplicateOverride = true khi user cố ý tạo lead trùng phone.
	// Document override nằm ngoài partial unique index.
	IsDuplicateOverride bool `json:"isDuplicateOverride" bson:"isDuplicateOverride"`
	// DuplicateOf trỏ tới lead gốc khi là override.
	DuplicateOf *primitive.ObjectID `json:"duplicateOf,omitempty" bson:"duplicateOf,omitempty"`

	// Extra giữ các field phụ từ nguồn (câu trả lời form, cột sheet không map được...).
	Extra map[string]interface{} `json:"extra,omitempty" bson:"extra,omitempty"`

	// Phân quyền
	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId" bson:"ownerOrganizationId"`

	// Metadata
	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
