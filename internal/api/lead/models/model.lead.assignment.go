// Package models - Rule gán lead theo nguồn (crm_form_assignments, crm_sheet_assignments).
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FormAssignment map một lead form tới sales user mặc định (crm_form_assignments).
//
// AssignedTo nil có hai nghĩa khác nhau, phân biệt bằng Unassigned:
//   - Unassigned=true: rule nói rõ "form này không gán ai" — lead vào pool chung,
//     KHÔNG fallback xuống rule khác.
//   - Không có document rule: chưa cấu hình, fallback theo precedence.
type FormAssignment struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	FormID   string `json:"formId" bson:"formId"`
	FormName string `json:"formName,omitempty" bson:"formName,omitempty"`

	AssignedTo *primitive.ObjectID `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	Unassigned bool                `json:"unassigned" bson:"unassigned"`

	// Active=false = rule bị soft-deactivate, router bỏ qua nhưng lịch sử routing cũ vẫn tra được.
	Active bool `json:"active" bson:"active"`

	// Phân quyền
	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId" bson:"ownerOrganizationId"`

	// Metadata
	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// SheetAssignment map một spreadsheet tới sales user mặc định (crm_sheet_assignments).
// Semantics của AssignedTo/Unassigned giống FormAssignment.
type SheetAssignment struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	SpreadsheetID string `json:"spreadsheetId" bson:"spreadsheetId"`
	SheetName     string `json:"sheetName,omitempty" bson:"sheetName,omitempty"`

	AssignedTo *primitive.ObjectID `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	Unassigned bool                `json:"unassigned" bson:"unassigned"`

	Active bool `json:"active" bson:"active"`

	// Phân quyền
	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId" bson:"ownerOrganizationId"`

	// Metadata
	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
