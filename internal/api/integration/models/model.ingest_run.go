// Package models - IngestRun (ingest_runs): audit trail cho từng pass sync.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trạng thái của một pass sync.
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// IngestRun lưu kết quả một pass sync (ingest_runs).
type IngestRun struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	IntegrationID primitive.ObjectID `json:"integrationId" bson:"integrationId" index:"single:1"`
	Platform      string             `json:"platform" bson:"platform"`
	Full          bool               `json:"full" bson:"full"`       // true = full sync (cursor reset)
	Trigger       string             `json:"trigger" bson:"trigger"` // manual | worker | webhook

	Status string `json:"status" bson:"status"` // running | success | failed
	Error  string `json:"error,omitempty" bson:"error,omitempty"`

	// Counters của pass
	Created int `json:"created" bson:"created"`
	Updated int `json:"updated" bson:"updated"`
	Skipped int `json:"skipped" bson:"skipped"` // Duplicate bị bỏ qua
	Failed  int `json:"failed" bson:"failed"`   // Record lỗi (malformed, lỗi ghi)
	Dropped int `json:"dropped" bson:"dropped"` // Row không có phone (spreadsheet)

	NewCursor SyncCursor `json:"newCursor" bson:"newCursor"`

	StartedAt  int64 `json:"startedAt" bson:"startedAt"` // Unix ms
	FinishedAt int64 `json:"finishedAt,omitempty" bson:"finishedAt,omitempty"`

	// Phân quyền
	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId" bson:"ownerOrganizationId" index:"single:1"`

	// Metadata
	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
