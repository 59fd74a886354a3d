// Package adapters - Test adapter messaging push-only.
package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	intmodels "lead_commerce/internal/api/integration/models"
	leadmodels "lead_commerce/internal/api/lead/models"
	"lead_commerce/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessagingExtractFromEvent(t *testing.T) {
	a := NewMessagingAdapter()

	raw := `{
		"entry": [{
			"changes": [{
				"value": {
					"contacts": [{"wa_id": "84901234567", "profile": {"name": "Chị Hoa"}}],
					"messages": [{"type": "text", "text": {"body": "Cho em hỏi giá gói A"}}]
				}
			}]
		}]
	}`
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	lead, ok := a.ExtractFromEvent(payload)
	require.True(t, ok)
	assert.Equal(t, "84901234567", lead.ExternalID)
	assert.Equal(t, "84901234567", lead.Phone)
	assert.Equal(t, "Chị Hoa", lead.Name)
	assert.Equal(t, leadmodels.SourceMessaging, lead.Source)
	assert.Equal(t, "Cho em hỏi giá gói A", lead.Extra["firstMessage"])
	assert.Equal(t, "text", lead.Extra["messageType"])
}

func TestMessagingExtractFromEvent_StatusEvent(t *testing.T) {
	a := NewMessagingAdapter()

	// Event status delivery không có contacts → không sinh lead
	raw := `{
		"entry": [{
			"changes": [{
				"value": {"statuses": [{"status": "delivered", "recipient_id": "84901234567"}]}
			}]
		}]
	}`
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	_, ok := a.ExtractFromEvent(payload)
	assert.False(t, ok)
}

func TestMessagingFetchIncremental_NotSupported(t *testing.T) {
	a := NewMessagingAdapter()

	_, err := a.FetchIncremental(context.Background(), &intmodels.Integration{}, intmodels.SyncCursor{}, 100)
	require.Error(t, err)

	var appErr *common.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, common.ErrCodeIngestConfig, appErr.Code)
}

func TestMessagingTestConnection(t *testing.T) {
	a := NewMessagingAdapter()

	integration := &intmodels.Integration{}
	assert.False(t, a.TestConnection(context.Background(), integration).OK)

	integration.Credentials.WebhookSecret = "secret"
	assert.True(t, a.TestConnection(context.Background(), integration).OK)
}
