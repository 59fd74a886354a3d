// Package models - CanonicalLead: dạng trung gian mọi nguồn quy về trước khi resolve.
package models

// CanonicalLead là bản ghi lead đã chuẩn hóa từ một nguồn bất kỳ
// (form payload, sheet row, webhook event, API body). Không persist —
// resolver và orchestrator làm việc trên dạng này.
type CanonicalLead struct {
	ExternalID string // ID record phía upstream (rỗng với lead nhập tay)
	Name       string
	Phone      string // Phone gốc
	Email      string // Email gốc
	Company    string
	Source     string // lead_form | spreadsheet | messaging | manual

	// FormID / SpreadsheetID để router tra rule gán. Chỉ một trong hai có giá trị.
	FormID        string
	SpreadsheetID string

	// EventTime Unix ms record được tạo phía upstream (0 = không rõ).
	EventTime int64

	// Extra: field phụ không map được vào field chuẩn.
	Extra map[string]interface{}
}
