// Package leaddto - DTO cho API lead.
package leaddto

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateLeadRequest body POST /leads.
type CreateLeadRequest struct {
	Name    string `json:"name" validate:"required,no_xss"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Company string `json:"company,omitempty" validate:"omitempty,no_xss"`

	// SessionID định danh phiên client cho submission guard (cookie/tab id).
	SessionID string `json:"sessionId,omitempty"`

	// ForceCreate = true: tạo lead trùng có chủ đích (duplicate override),
	// chỉ dùng sau khi UI đã hiện cảnh báo trùng.
	ForceCreate bool `json:"forceCreate,omitempty"`

	Extra map[string]interface{} `json:"extra,omitempty"`
}

// BulkImportRequest body POST /leads/bulk.
type BulkImportRequest struct {
	SessionID string              `json:"sessionId,omitempty"`
	Leads     []CreateLeadRequest `json:"leads" validate:"required,min=1,dive"`
}

// ExistingLeadInfo thông tin lead trùng trả cho client.
type ExistingLeadInfo struct {
	ID         primitive.ObjectID  `json:"id"`
	Name       string              `json:"name"`
	AssignedTo *primitive.ObjectID `json:"assignedTo,omitempty"`
}

// CreateLeadResponse kết quả tạo một lead.
type CreateLeadResponse struct {
	Status    string              `json:"status"` // created | duplicate
	RequestID string              `json:"requestId,omitempty"`
	LeadID    *primitive.ObjectID `json:"leadId,omitempty"`
	Existing  *ExistingLeadInfo   `json:"existing,omitempty"`
}

// BulkImportResponse tổng kết import nhiều lead.
type BulkImportResponse struct {
	Created   int                  `json:"created"`
	Duplicate int                  `json:"duplicate"`
	Failed    int                  `json:"failed"`
	Results   []CreateLeadResponse `json:"results"`
}
