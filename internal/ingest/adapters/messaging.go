// Package adapters - Adapter cho nguồn messaging (push-only qua webhook).
package adapters

import (
	"context"

	intmodels "lead_commerce/internal/api/integration/models"
	leadmodels "lead_commerce/internal/api/lead/models"
	"lead_commerce/internal/common"
)

// MessagingAdapter nhận lead từ webhook messaging. Không có API poll:
// FetchIncremental trả lỗi config để operator biết bấm nhầm sync.
type MessagingAdapter struct{}

// NewMessagingAdapter tạo MessagingAdapter.
func NewMessagingAdapter() *MessagingAdapter {
	return &MessagingAdapter{}
}

// Platform trả về loại platform.
func (a *MessagingAdapter) Platform() string {
	return intmodels.PlatformMessaging
}

// VerifySignature kiểm tra chữ ký HMAC của webhook.
func (a *MessagingAdapter) VerifySignature(payload []byte, signature, secret string) bool {
	return verifyHMACSignature(payload, signature, secret)
}

// ExtractFromEvent parse event messaging. Envelope:
//
//	{"entry":[{"changes":[{"value":{"contacts":[{"wa_id":..,"profile":{"name":..}}],"messages":[..]}}]}]}
//
// Event status/ping không có contacts → (nil, false).
func (a *MessagingAdapter) ExtractFromEvent(payload map[string]interface{}) (*leadmodels.CanonicalLead, bool) {
	for _, entryRaw := range getSlice(payload, "entry") {
		entry, ok := entryRaw.(map[string]interface{})
		if !ok {
			continue
		}
		for _, changeRaw := range getSlice(entry, "changes") {
			change, ok := changeRaw.(map[string]interface{})
			if !ok {
				continue
			}
			value := getMap(change, "value")
			contacts := getSlice(value, "contacts")
			if len(contacts) == 0 {
				continue
			}
			contact, ok := contacts[0].(map[string]interface{})
			if !ok {
				continue
			}
			waID := getString(contact, "wa_id")
			if waID == "" {
				continue
			}

			extra := map[string]interface{}{}
			if messages := getSlice(value, "messages"); len(messages) > 0 {
				if msg, ok := messages[0].(map[string]interface{}); ok {
					if text := getMap(msg, "text"); text != nil {
						extra["firstMessage"] = getString(text, "body")
					}
					extra["messageType"] = getString(msg, "type")
				}
			}

			return &leadmodels.CanonicalLead{
				ExternalID: waID,
				Name:       getString(getMap(contact, "profile"), "name"),
				Phone:      waID,
				Source:     leadmodels.SourceMessaging,
				Extra:      extra,
			}, true
		}
	}
	return nil, false
}

// FetchIncremental: messaging là push-only, không có gì để poll.
func (a *MessagingAdapter) FetchIncremental(ctx context.Context, integration *intmodels.Integration, cursor intmodels.SyncCursor, maxRows int) (*FetchResult, error) {
	return nil, common.NewError(
		common.ErrCodeIngestConfig,
		"Platform messaging chỉ nhận lead qua webhook, không hỗ trợ sync",
		common.StatusBadRequest,
		nil,
	)
}

// TestConnection: nguồn push chỉ cần webhook secret để verify chữ ký.
func (a *MessagingAdapter) TestConnection(ctx context.Context, integration *intmodels.Integration) TestResult {
	if integration.Credentials.WebhookSecret == "" {
		return TestResult{OK: false, Message: "Chưa cấu hình webhook secret"}
	}
	return TestResult{OK: true, Message: "Webhook secret đã cấu hình, sẵn sàng nhận event"}
}
