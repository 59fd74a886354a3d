// Package adapters - Test adapter lead form: parse record, parse push event, poll API.
package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	intmodels "lead_commerce/internal/api/integration/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestLeadFormParseLeadRecord(t *testing.T) {
	a := NewLeadFormAdapter(nil)

	record := map[string]interface{}{
		"leadgen_id":   "lg_001",
		"created_time": float64(1700000000),
		"field_data": []interface{}{
			map[string]interface{}{"name": "full_name", "values": []interface{}{"Nguyễn Văn A"}},
			map[string]interface{}{"name": "phone_number", "values": []interface{}{"+91 98765 43210"}},
			map[string]interface{}{"name": "work_email", "values": []interface{}{"a@corp.vn"}},
			map[string]interface{}{"name": "city", "values": []interface{}{"Hà Nội"}},
		},
	}

	lead := a.parseLeadRecord(record, "form_9")
	require.NotNil(t, lead, "Record hợp lệ phải parse được")

	assert.Equal(t, "lg_001", lead.ExternalID)
	assert.Equal(t, "Nguyễn Văn A", lead.Name)
	assert.Equal(t, "+91 98765 43210", lead.Phone)
	assert.Equal(t, "a@corp.vn", lead.Email)
	assert.Equal(t, "form_9", lead.FormID)
	assert.Equal(t, int64(1700000000), lead.EventTime)
	// Field không map được vẫn giữ trong Extra
	assert.Equal(t, "Hà Nội", lead.Extra["city"])
}

func TestLeadFormParseLeadRecord_Invalid(t *testing.T) {
	a := NewLeadFormAdapter(nil)

	// Thiếu cả leadgen_id lẫn id
	assert.Nil(t, a.parseLeadRecord(map[string]interface{}{
		"field_data": []interface{}{
			map[string]interface{}{"name": "phone", "values": []interface{}{"0909"}},
		},
	}, "form_9"))

	// Có id nhưng không có field_data
	assert.Nil(t, a.parseLeadRecord(map[string]interface{}{"id": "lg_002"}, "form_9"))
}

func TestLeadFormExtractFromEvent(t *testing.T) {
	a := NewLeadFormAdapter(nil)

	raw := `{
		"entry": [{
			"changes": [
				{"field": "page_status", "value": {"status": "ok"}},
				{"field": "leadgen", "value": {
					"leadgen_id": "lg_777",
					"form_id": "form_9",
					"created_time": 1700000500,
					"field_data": [
						{"name": "name", "values": ["B"]},
						{"name": "phone", "values": ["0912345678"]}
					]
				}}
			]
		}]
	}`
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	lead, ok := a.ExtractFromEvent(payload)
	require.True(t, ok, "Event leadgen phải extract được lead")
	assert.Equal(t, "lg_777", lead.ExternalID)
	assert.Equal(t, "form_9", lead.FormID)
	assert.Equal(t, "0912345678", lead.Phone)

	// Event không có change leadgen nào → bỏ qua
	_, ok = a.ExtractFromEvent(map[string]interface{}{
		"entry": []interface{}{
			map[string]interface{}{"changes": []interface{}{
				map[string]interface{}{"field": "page_status", "value": map[string]interface{}{}},
			}},
		},
	})
	assert.False(t, ok)
}

func TestLeadFormFetchIncremental(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok_live", r.Header.Get("Authorization"))
		assert.Equal(t, "1700000000", r.URL.Query().Get("since"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": [
				{"id": "lg_old", "created_time": 1699999999,
				 "field_data": [{"name": "phone", "values": ["0900000001"]}]},
				{"id": "lg_new_1", "created_time": 1700000100,
				 "field_data": [{"name": "phone", "values": ["0900000002"]}]},
				{"id": "lg_new_2", "created_time": 1700000200,
				 "field_data": [{"name": "phone", "values": ["0900000003"]}]}
			],
			"paging": {"cursors": {"after": ""}}
		}`))
	}))
	defer server.Close()

	integration := &intmodels.Integration{
		ID:       primitive.NewObjectID(),
		Platform: intmodels.PlatformLeadForm,
		Config: map[string]interface{}{
			"formId":     "form_9",
			"apiBaseUrl": server.URL,
		},
	}
	integration.Credentials.AccessToken = "tok_live"

	a := NewLeadFormAdapter(nil)
	result, err := a.FetchIncremental(context.Background(), integration, intmodels.SyncCursor{Since: 1700000000}, 100)
	require.NoError(t, err)

	// Record cũ hơn cursor bị lọc, cursor nhảy tới created_time mới nhất
	require.Len(t, result.Leads, 2)
	assert.Equal(t, "lg_new_1", result.Leads[0].ExternalID)
	assert.Equal(t, "lg_new_2", result.Leads[1].ExternalID)
	assert.Equal(t, int64(1700000200), result.NewCursor.Since)
	assert.Equal(t, "", result.NewCursor.PageToken)
}

func TestLeadFormFetchIncremental_AuthRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	integration := &intmodels.Integration{
		ID:       primitive.NewObjectID(),
		Platform: intmodels.PlatformLeadForm,
		Config: map[string]interface{}{
			"formId":     "form_9",
			"apiBaseUrl": server.URL,
		},
	}

	a := NewLeadFormAdapter(nil)
	result, err := a.FetchIncremental(context.Background(), integration, intmodels.SyncCursor{Since: 50}, 100)
	require.Error(t, err)

	// Partial result: chưa fetch được gì, cursor giữ nguyên
	assert.Empty(t, result.Leads)
	assert.Equal(t, int64(50), result.NewCursor.Since)
}
