// Package models - User thuộc domain auth (auth_users).
// Sales user do hệ thống auth bên ngoài quản lý, service này chỉ đọc để phục vụ gán lead.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User lưu sales user (auth_users).
type User struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	Name  string `json:"name" bson:"name"`
	Email string `json:"email,omitempty" bson:"email,omitempty" index:"unique,sparse"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`

	// ReportsTo trỏ tới user cấp trên. User có người khác reportsTo mình là manager —
	// manager không bao giờ được auto-assign lead.
	ReportsTo *primitive.ObjectID `json:"reportsTo,omitempty" bson:"reportsTo,omitempty" index:"single:1"`

	Active bool `json:"active" bson:"active"`

	// Phân quyền
	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId" bson:"ownerOrganizationId" index:"single:1"`

	// Metadata
	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
