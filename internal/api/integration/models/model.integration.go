// Package models - Integration thuộc domain integration (crm_integrations).
// Một document cho mỗi kết nối tới nguồn lead ngoài (lead form, spreadsheet, messaging).
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các loại platform được hỗ trợ.
const (
	PlatformLeadForm    = "lead_form"   // API lead form quảng cáo (poll theo timestamp)
	PlatformSpreadsheet = "spreadsheet" // Spreadsheet online (poll theo row offset)
	PlatformMessaging   = "messaging"   // Messaging (push-only qua webhook)
)

// IntegrationCredentials chứa token truy cập API upstream.
type IntegrationCredentials struct {
	AccessToken  string `json:"accessToken,omitempty" bson:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty" bson:"refreshToken,omitempty"`
	// ExpiresAt Unix ms — 0 = không rõ hạn.
	ExpiresAt int64 `json:"expiresAt,omitempty" bson:"expiresAt,omitempty"`
	// WebhookSecret dùng verify chữ ký HMAC cho platform push (messaging).
	WebhookSecret string `json:"webhookSecret,omitempty" bson:"webhookSecret,omitempty"`
}

// SyncCursor đánh dấu vị trí đã import tới trong nguồn upstream.
// Mỗi platform dùng field riêng: spreadsheet dùng RowOffset, lead form dùng Since/PageToken.
// Cursor chỉ tiến, không bao giờ lùi — trừ khi full sync reset có chủ đích.
type SyncCursor struct {
	RowOffset int64  `json:"rowOffset,omitempty" bson:"rowOffset,omitempty"` // Số row đã xử lý (spreadsheet)
	Since     int64  `json:"since,omitempty" bson:"since,omitempty"`         // Unix ms của record mới nhất đã lấy (lead form)
	PageToken string `json:"pageToken,omitempty" bson:"pageToken,omitempty"` // Token trang kế tiếp (lead form, trong một pass)
}

// IsZero báo cursor chưa có vị trí nào (integration mới hoặc vừa reset).
func (c SyncCursor) IsZero() bool {
	return c.RowOffset == 0 && c.Since == 0 && c.PageToken == ""
}

// Integration lưu kết nối tới nguồn lead ngoài (crm_integrations).
type Integration struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	Name     string `json:"name" bson:"name"`
	Platform string `json:"platform" bson:"platform"` // lead_form | spreadsheet | messaging
	Active   bool   `json:"active" bson:"active" index:"single:1"`

	Credentials IntegrationCredentials `json:"credentials" bson:"credentials"`

	// Config tự do theo platform (formId, spreadsheetId, sheetName, headerMap...).
	// Đọc-merge-ghi: update chỉ đè key gửi lên, key lạ của bản cũ giữ nguyên.
	Config map[string]interface{} `json:"config,omitempty" bson:"config,omitempty"`

	// Cursor trạng thái sync. Chỉ orchestrator được ghi.
	Cursor SyncCursor `json:"cursor" bson:"cursor"`

	// Sync lock marker — chỉ một pass chạy tại một thời điểm cho mỗi integration.
	// Marker quá SyncStaleAfter coi như stale và được phép chiếm lại.
	Syncing       bool  `json:"syncing" bson:"syncing"`
	SyncStartedAt int64 `json:"syncStartedAt,omitempty" bson:"syncStartedAt,omitempty"` // Unix ms

	LastSyncedAt int64  `json:"lastSyncedAt,omitempty" bson:"lastSyncedAt,omitempty"` // Unix ms pass thành công gần nhất
	LastError    string `json:"lastError,omitempty" bson:"lastError,omitempty"`       // Lỗi pass gần nhất (rỗng = ok)

	// Phân quyền
	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId" bson:"ownerOrganizationId"`

	// Metadata
	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
