// Package adapters - Adapter cho nguồn lead form quảng cáo (poll API theo timestamp).
package adapters

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	intmodels "lead_commerce/internal/api/integration/models"
	integrationsvc "lead_commerce/internal/api/integration/service"
	leadmodels "lead_commerce/internal/api/lead/models"
	"lead_commerce/internal/common"
	"lead_commerce/internal/global"
	"lead_commerce/internal/logger"

	"github.com/sirupsen/logrus"
)

// Bảng map tên field_data của form sang field chuẩn. Form builder mỗi bên đặt
// tên một kiểu, match theo thứ tự khai báo.
var leadFormFieldNames = map[string][]string{
	"name":    {"full_name", "name", "fullname", "ho_ten", "your_name"},
	"phone":   {"phone_number", "phone", "mobile", "so_dien_thoai", "contact_number"},
	"email":   {"email", "email_address", "work_email"},
	"company": {"company_name", "company", "organization"},
}

// LeadFormAdapter poll lead từ API lead form quảng cáo.
// Cursor: Since (created_time của record mới nhất đã thấy) + PageToken trong một pass.
type LeadFormAdapter struct {
	client *Client
	svc    *integrationsvc.IntegrationService
}

// NewLeadFormAdapter tạo LeadFormAdapter. svc dùng để persist token refresh.
func NewLeadFormAdapter(svc *integrationsvc.IntegrationService) *LeadFormAdapter {
	a := &LeadFormAdapter{svc: svc}
	if global.ServerConfig != nil {
		a.client = NewClient(time.Duration(global.ServerConfig.SyncCallTimeout) * time.Second)
	} else {
		a.client = NewClient(0)
	}
	return a
}

// Platform trả về loại platform.
func (a *LeadFormAdapter) Platform() string {
	return intmodels.PlatformLeadForm
}

// VerifySignature kiểm tra chữ ký HMAC của push event leadgen (nếu platform có push).
func (a *LeadFormAdapter) VerifySignature(payload []byte, signature, secret string) bool {
	return verifyHMACSignature(payload, signature, secret)
}

// ExtractFromEvent parse push event leadgen. Envelope:
//
//	{"entry":[{"changes":[{"field":"leadgen","value":{"leadgen_id":..,"form_id":..,"created_time":..,"field_data":[..]}}]}]}
//
// Event không phải leadgen (ping xác thực, status) → (nil, false).
func (a *LeadFormAdapter) ExtractFromEvent(payload map[string]interface{}) (*leadmodels.CanonicalLead, bool) {
	for _, entryRaw := range getSlice(payload, "entry") {
		entry, ok := entryRaw.(map[string]interface{})
		if !ok {
			continue
		}
		for _, changeRaw := range getSlice(entry, "changes") {
			change, ok := changeRaw.(map[string]interface{})
			if !ok || getString(change, "field") != "leadgen" {
				continue
			}
			value := getMap(change, "value")
			if value == nil {
				continue
			}
			lead := a.parseLeadRecord(value, getString(value, "form_id"))
			if lead != nil {
				return lead, true
			}
		}
	}
	return nil, false
}

// FetchIncremental page qua API lead của form, bắt đầu ngay sau cursor.Since.
// Lỗi ở trang N không vứt lead các trang 1..N-1: trả partial result + error,
// cursor trong result chỉ phủ phần đã fetch.
func (a *LeadFormAdapter) FetchIncremental(ctx context.Context, integration *intmodels.Integration, cursor intmodels.SyncCursor, maxRows int) (*FetchResult, error) {
	formID := getString(integration.Config, "formId")
	baseURL := getString(integration.Config, "apiBaseUrl")
	if formID == "" || baseURL == "" {
		return nil, common.NewError(
			common.ErrCodeIngestConfig,
			"Integration lead form thiếu formId hoặc apiBaseUrl",
			common.StatusBadRequest,
			nil,
		)
	}
	if maxRows <= 0 {
		maxRows = 100
	}

	result := &FetchResult{NewCursor: cursor}
	pageToken := cursor.PageToken
	maxSeen := cursor.Since

	for len(result.Leads) < maxRows {
		pageURL := func(token string) string {
			q := url.Values{}
			q.Set("limit", strconv.Itoa(maxRows-len(result.Leads)))
			if cursor.Since > 0 {
				q.Set("since", strconv.FormatInt(cursor.Since, 10))
			}
			if pageToken != "" {
				q.Set("after", pageToken)
			}
			return fmt.Sprintf("%s/%s/leads?%s", strings.TrimRight(baseURL, "/"), formID, q.Encode())
		}

		page, err := a.client.GetJSONWithRefresh(ctx, pageURL, integration, a.svc)
		if err != nil {
			// Giữ gains các trang trước, cursor phủ đúng phần đã fetch
			result.NewCursor.Since = maxSeen
			result.NewCursor.PageToken = ""
			return result, err
		}

		data := getSlice(page, "data")
		for _, recordRaw := range data {
			record, ok := recordRaw.(map[string]interface{})
			if !ok {
				continue
			}
			createdTime := int64(getInt(record, "created_time"))
			if createdTime <= cursor.Since {
				// Trang có thể chồng lấn mép cursor — record cũ bỏ qua,
				// dedup theo externalId vẫn chặn được nếu lọt
				continue
			}
			lead := a.parseLeadRecord(record, formID)
			if lead == nil {
				logger.GetAppLogger().WithFields(logrus.Fields{
					"integrationId": integration.ID.Hex(),
					"externalId":    getString(record, "id"),
				}).Debug("📥 [LEADFORM] Record không parse được, bỏ qua")
				continue
			}
			if createdTime > maxSeen {
				maxSeen = createdTime
			}
			result.Leads = append(result.Leads, *lead)
		}

		paging := getMap(page, "paging")
		next := getString(getMap(paging, "cursors"), "after")
		if next == "" || len(data) == 0 {
			pageToken = ""
			break
		}
		pageToken = next
	}

	result.NewCursor.Since = maxSeen
	result.NewCursor.PageToken = pageToken
	return result, nil
}

// TestConnection gọi metadata form để check credential/reachability.
func (a *LeadFormAdapter) TestConnection(ctx context.Context, integration *intmodels.Integration) TestResult {
	formID := getString(integration.Config, "formId")
	baseURL := getString(integration.Config, "apiBaseUrl")
	if formID == "" || baseURL == "" {
		return TestResult{OK: false, Message: "Thiếu formId hoặc apiBaseUrl trong config"}
	}

	buildURL := func(token string) string {
		return fmt.Sprintf("%s/%s?fields=id,name", strings.TrimRight(baseURL, "/"), formID)
	}
	page, err := a.client.GetJSONWithRefresh(ctx, buildURL, integration, a.svc)
	if err != nil {
		return TestResult{OK: false, Message: err.Error()}
	}
	name := getString(page, "name")
	if name == "" {
		name = formID
	}
	return TestResult{OK: true, Message: "Kết nối ok, form: " + name}
}

// parseLeadRecord dựng canonical lead từ một record API/event.
// Record thiếu cả leadgen_id lẫn id, hoặc không có field_data → nil.
func (a *LeadFormAdapter) parseLeadRecord(record map[string]interface{}, formID string) *leadmodels.CanonicalLead {
	externalID := getString(record, "leadgen_id")
	if externalID == "" {
		externalID = getString(record, "id")
	}
	if externalID == "" {
		return nil
	}

	fields := map[string]string{}
	for _, fdRaw := range getSlice(record, "field_data") {
		fd, ok := fdRaw.(map[string]interface{})
		if !ok {
			continue
		}
		name := strings.ToLower(getString(fd, "name"))
		values := getSlice(fd, "values")
		if name == "" || len(values) == 0 {
			continue
		}
		if v, ok := values[0].(string); ok {
			fields[name] = v
		}
	}
	if len(fields) == 0 {
		return nil
	}

	pick := func(target string) string {
		for _, candidate := range leadFormFieldNames[target] {
			if v, ok := fields[candidate]; ok && v != "" {
				return v
			}
		}
		return ""
	}

	extra := map[string]interface{}{}
	for name, v := range fields {
		extra[name] = v
	}

	return &leadmodels.CanonicalLead{
		ExternalID: externalID,
		Name:       pick("name"),
		Phone:      pick("phone"),
		Email:      pick("email"),
		Company:    pick("company"),
		Source:     leadmodels.SourceLeadForm,
		FormID:     formID,
		EventTime:  int64(getInt(record, "created_time")),
		Extra:      extra,
	}
}
