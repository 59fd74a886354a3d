// Package models - Organization thuộc domain auth (auth_organizations).
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization lưu tổ chức (auth_organizations). Mọi dữ liệu lead đều scope theo org.
type Organization struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	Name   string `json:"name" bson:"name"`
	Active bool   `json:"active" bson:"active"`

	// Metadata
	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
