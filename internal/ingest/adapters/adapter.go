// Package adapters - Adapter cho từng loại nguồn lead ngoài.
// Mỗi adapter expose cùng một bộ capability: verify chữ ký push, extract lead
// từ event, fetch incremental theo cursor, test kết nối. Composition thay vì
// inheritance: helper HTTP/pagination dùng chung, mỗi platform chỉ giữ bảng
// map field riêng.
package adapters

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	intmodels "lead_commerce/internal/api/integration/models"
	integrationsvc "lead_commerce/internal/api/integration/service"
	leadmodels "lead_commerce/internal/api/lead/models"
	"lead_commerce/internal/registry"
)

// FetchResult kết quả một lượt fetch incremental.
type FetchResult struct {
	Leads []leadmodels.CanonicalLead

	// NewCursor phủ đúng range đã fetch — kể cả record sau đó persist lỗi.
	// Record đã fetch coi như "đã thấy", không retry tự động.
	NewCursor intmodels.SyncCursor

	// Dropped: số row nguồn không có phone (spreadsheet), bị bỏ theo contract.
	Dropped int
}

// TestResult kết quả test kết nối cho settings UI.
type TestResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Adapter là bộ capability mỗi loại nguồn phải có.
type Adapter interface {
	// Platform trả về loại platform (lead_form | spreadsheet | messaging).
	Platform() string

	// VerifySignature kiểm tra chữ ký HMAC của payload push.
	// Trả false (không bao giờ panic/lỗi) với mọi input malformed.
	VerifySignature(payload []byte, signature, secret string) bool

	// ExtractFromEvent parse một push event thành 0-1 canonical lead.
	// (nil, false) khi event không chứa lead (ping, status update...) — không phải lỗi.
	ExtractFromEvent(payload map[string]interface{}) (*leadmodels.CanonicalLead, bool)

	// FetchIncremental lấy batch lead kế tiếp sau cursor, tối đa maxRows.
	// Lỗi giữa chừng trả về cả partial result lẫn error: lead của các trang
	// đã fetch thành công không bị vứt, cursor trong result chỉ phủ phần đó.
	FetchIncremental(ctx context.Context, integration *intmodels.Integration, cursor intmodels.SyncCursor, maxRows int) (*FetchResult, error)

	// TestConnection check nhẹ credential/reachability, độc lập với fetch.
	TestConnection(ctx context.Context, integration *intmodels.Integration) TestResult
}

// Registry chứa adapter theo platform. Đăng ký trong InitAdapters.
var Registry = registry.NewRegistry[Adapter]()

// InitAdapters đăng ký toàn bộ adapter. Gọi một lần lúc khởi động,
// sau khi registry collections đã sẵn sàng (adapter cần svc để persist token refresh).
func InitAdapters(svc *integrationsvc.IntegrationService) {
	Registry.Register(intmodels.PlatformLeadForm, NewLeadFormAdapter(svc))
	Registry.Register(intmodels.PlatformSpreadsheet, NewSheetAdapter(svc))
	Registry.Register(intmodels.PlatformMessaging, NewMessagingAdapter())
}

// verifyHMACSignature kiểm tra signature dạng "sha256=<hex>" với HMAC-SHA256(secret, payload).
// So sánh constant time. Mọi input malformed → false.
func verifyHMACSignature(payload []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	signature = strings.TrimPrefix(signature, "sha256=")
	provided, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := mac.Sum(nil)

	return hmac.Equal(provided, expected)
}

// ========= Helper đọc map lỏng từ payload/config =========

func getString(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func getMap(m map[string]interface{}, key string) map[string]interface{} {
	if m == nil {
		return nil
	}
	if sub, ok := m[key].(map[string]interface{}); ok {
		return sub
	}
	return nil
}

func getSlice(m map[string]interface{}, key string) []interface{} {
	if m == nil {
		return nil
	}
	if arr, ok := m[key].([]interface{}); ok {
		return arr
	}
	return nil
}

func getInt(m map[string]interface{}, key string) int {
	if m == nil {
		return 0
	}
	switch v := m[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
