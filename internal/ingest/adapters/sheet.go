// Package adapters - Adapter cho nguồn spreadsheet (poll theo row offset).
package adapters

import (
	"context"
	"fmt"
	"net/url"
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

// Danh sách header fallback khi config không khai headerMap.
// Match case-insensitive, theo thứ tự khai báo.
var sheetFallbackHeaders = map[string][]string{
	"phone":   {"phone", "mobile", "phone number", "contact", "contact number", "sdt", "so dien thoai"},
	"name":    {"name", "full name", "lead name", "ho ten"},
	"email":   {"email", "email id", "e-mail"},
	"company": {"company", "organization", "firm", "cong ty"},
	"source":  {"source", "lead source"},
}

// SheetAdapter poll row mới từ spreadsheet qua values API.
// Cursor: RowOffset = chỉ số row dữ liệu cuối đã đọc (row 1 là header).
// Row không resolve được phone bị bỏ và đếm vào Dropped — tick qua,
// không fail pass, vì sheet nhập tay luôn có row rác.
type SheetAdapter struct {
	client *Client
	svc    *integrationsvc.IntegrationService
}

// NewSheetAdapter tạo SheetAdapter. svc dùng để persist token refresh.
func NewSheetAdapter(svc *integrationsvc.IntegrationService) *SheetAdapter {
	a := &SheetAdapter{svc: svc}
	if global.ServerConfig != nil {
		a.client = NewClient(time.Duration(global.ServerConfig.SyncCallTimeout) * time.Second)
	} else {
		a.client = NewClient(0)
	}
	return a
}

// Platform trả về loại platform.
func (a *SheetAdapter) Platform() string {
	return intmodels.PlatformSpreadsheet
}

// VerifySignature: spreadsheet không có push event.
func (a *SheetAdapter) VerifySignature(payload []byte, signature, secret string) bool {
	return false
}

// ExtractFromEvent: spreadsheet không có push event.
func (a *SheetAdapter) ExtractFromEvent(payload map[string]interface{}) (*leadmodels.CanonicalLead, bool) {
	return nil, false
}

// FetchIncremental đọc header row + tối đa maxRows row sau cursor.RowOffset.
// ExternalID = spreadsheetId + ":" + số row tuyệt đối, nên re-read cùng range
// (reset cursor, sheet bị sort lại) vẫn dedup được theo source identity.
func (a *SheetAdapter) FetchIncremental(ctx context.Context, integration *intmodels.Integration, cursor intmodels.SyncCursor, maxRows int) (*FetchResult, error) {
	spreadsheetID := getString(integration.Config, "spreadsheetId")
	baseURL := getString(integration.Config, "apiBaseUrl")
	if spreadsheetID == "" || baseURL == "" {
		return nil, common.NewError(
			common.ErrCodeIngestConfig,
			"Integration spreadsheet thiếu spreadsheetId hoặc apiBaseUrl",
			common.StatusBadRequest,
			nil,
		)
	}
	if maxRows <= 0 {
		maxRows = 100
	}

	columns, err := a.resolveColumns(ctx, integration, spreadsheetID, baseURL)
	if err != nil {
		return nil, err
	}

	// Row 1 là header. Row dữ liệu đầu tiên chưa đọc = RowOffset + 2 (1-based).
	firstRow := cursor.RowOffset + 2
	lastRow := firstRow + int64(maxRows) - 1
	rangeRef := fmt.Sprintf("%d:%d", firstRow, lastRow)
	if sheetName := getString(integration.Config, "sheetName"); sheetName != "" {
		rangeRef = sheetName + "!" + rangeRef
	}

	page, err := a.getValues(ctx, integration, spreadsheetID, baseURL, rangeRef)
	if err != nil {
		return nil, err
	}

	result := &FetchResult{NewCursor: cursor}
	rows := getSlice(page, "values")
	for i, rowRaw := range rows {
		rowNumber := firstRow + int64(i)
		row, ok := rowRaw.([]interface{})
		if !ok {
			result.Dropped++
			continue
		}
		lead := a.parseRow(row, columns, spreadsheetID, rowNumber)
		if lead == nil {
			result.Dropped++
			logger.GetAppLogger().WithFields(logrus.Fields{
				"integrationId": integration.ID.Hex(),
				"row":           rowNumber,
			}).Debug("📊 [SHEET] Row không có phone, bỏ qua")
			continue
		}
		result.Leads = append(result.Leads, *lead)
	}

	// Cursor nhảy qua cả row dropped — row rác không được giữ pass sau đọc lại mãi
	result.NewCursor.RowOffset = cursor.RowOffset + int64(len(rows))
	return result, nil
}

// TestConnection đọc header row để check credential + spreadsheet tồn tại.
func (a *SheetAdapter) TestConnection(ctx context.Context, integration *intmodels.Integration) TestResult {
	spreadsheetID := getString(integration.Config, "spreadsheetId")
	baseURL := getString(integration.Config, "apiBaseUrl")
	if spreadsheetID == "" || baseURL == "" {
		return TestResult{OK: false, Message: "Thiếu spreadsheetId hoặc apiBaseUrl trong config"}
	}
	columns, err := a.resolveColumns(ctx, integration, spreadsheetID, baseURL)
	if err != nil {
		return TestResult{OK: false, Message: err.Error()}
	}
	if _, ok := columns["phone"]; !ok {
		return TestResult{OK: false, Message: "Không tìm thấy cột phone trong header"}
	}
	return TestResult{OK: true, Message: fmt.Sprintf("Kết nối ok, map được %d cột", len(columns))}
}

// resolveColumns đọc header row và dựng map field chuẩn → chỉ số cột.
// Ưu tiên headerMap trong config (field → tên header chính xác),
// thiếu thì dò theo sheetFallbackHeaders.
func (a *SheetAdapter) resolveColumns(ctx context.Context, integration *intmodels.Integration, spreadsheetID, baseURL string) (map[string]int, error) {
	rangeRef := "1:1"
	if sheetName := getString(integration.Config, "sheetName"); sheetName != "" {
		rangeRef = sheetName + "!" + rangeRef
	}
	page, err := a.getValues(ctx, integration, spreadsheetID, baseURL, rangeRef)
	if err != nil {
		return nil, err
	}

	rows := getSlice(page, "values")
	if len(rows) == 0 {
		return nil, common.NewError(
			common.ErrCodeIngestMalformed,
			"Spreadsheet không có header row",
			common.StatusBadGateway,
			nil,
		)
	}
	headerRow, _ := rows[0].([]interface{})

	headers := make([]string, 0, len(headerRow))
	for _, cell := range headerRow {
		s, _ := cell.(string)
		headers = append(headers, strings.ToLower(strings.TrimSpace(s)))
	}

	headerMap := getMap(integration.Config, "headerMap")
	columns := map[string]int{}
	for field, candidates := range sheetFallbackHeaders {
		// headerMap config thắng fallback
		if explicit := strings.ToLower(strings.TrimSpace(getString(headerMap, field))); explicit != "" {
			if idx := indexOfHeader(headers, explicit); idx >= 0 {
				columns[field] = idx
			}
			continue
		}
		for _, candidate := range candidates {
			if idx := indexOfHeader(headers, candidate); idx >= 0 {
				columns[field] = idx
				break
			}
		}
	}
	return columns, nil
}

// getValues gọi values API: GET {base}/{spreadsheetId}/values/{range}.
func (a *SheetAdapter) getValues(ctx context.Context, integration *intmodels.Integration, spreadsheetID, baseURL, rangeRef string) (map[string]interface{}, error) {
	buildURL := func(token string) string {
		return fmt.Sprintf("%s/%s/values/%s",
			strings.TrimRight(baseURL, "/"), spreadsheetID, url.PathEscape(rangeRef))
	}
	return a.client.GetJSONWithRefresh(ctx, buildURL, integration, a.svc)
}

// parseRow dựng canonical lead từ một row. Không có phone → nil.
func (a *SheetAdapter) parseRow(row []interface{}, columns map[string]int, spreadsheetID string, rowNumber int64) *leadmodels.CanonicalLead {
	cell := func(field string) string {
		idx, ok := columns[field]
		if !ok || idx >= len(row) {
			return ""
		}
		s, _ := row[idx].(string)
		return strings.TrimSpace(s)
	}

	phone := cell("phone")
	if phone == "" {
		return nil
	}

	extra := map[string]interface{}{}
	if src := cell("source"); src != "" {
		extra["sheetSource"] = src
	}

	return &leadmodels.CanonicalLead{
		ExternalID:    fmt.Sprintf("%s:%d", spreadsheetID, rowNumber),
		Name:          cell("name"),
		Phone:         phone,
		Email:         cell("email"),
		Company:       cell("company"),
		Source:        leadmodels.SourceSheet,
		SpreadsheetID: spreadsheetID,
		Extra:         extra,
	}
}

func indexOfHeader(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}
