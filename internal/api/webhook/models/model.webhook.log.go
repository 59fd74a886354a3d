// Package models - WebhookLog (webhook_logs): lưu payload webhook inbound trước khi xử lý.
// Luôn ghi log trước, xử lý sau — payload không bao giờ mất kể cả khi xử lý lỗi.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trạng thái xử lý webhook.
const (
	WebhookStatusReceived  = "received"
	WebhookStatusProcessed = "processed"
	WebhookStatusIgnored   = "ignored" // Event không chứa lead (đã verify chữ ký ok)
	WebhookStatusFailed    = "failed"
)

// WebhookLog lưu một webhook inbound (webhook_logs).
type WebhookLog struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	Platform      string             `json:"platform" bson:"platform" index:"single:1"`
	IntegrationID primitive.ObjectID `json:"integrationId,omitempty" bson:"integrationId,omitempty" index:"single:1"`

	Payload map[string]interface{} `json:"payload" bson:"payload"`

	Status string `json:"status" bson:"status"`
	Error  string `json:"error,omitempty" bson:"error,omitempty"`

	ProcessedAt int64 `json:"processedAt,omitempty" bson:"processedAt,omitempty"` // Unix ms

	// Phân quyền
	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId,omitempty" bson:"ownerOrganizationId,omitempty"`

	// Metadata — TTL 30 ngày, log webhook chỉ phục vụ debug/replay ngắn hạn.
	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
