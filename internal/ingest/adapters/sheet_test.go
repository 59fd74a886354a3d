// Package adapters - Test adapter spreadsheet: parse row, resolve header, poll values API.
package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	intmodels "lead_commerce/internal/api/integration/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSheetParseRow(t *testing.T) {
	a := NewSheetAdapter(nil)
	columns := map[string]int{"name": 0, "phone": 1, "email": 2, "source": 3}

	lead := a.parseRow([]interface{}{"Trần B", " 0912 345 678 ", "b@corp.vn", "hội chợ"}, columns, "sheet_1", 12)
	require.NotNil(t, lead)
	assert.Equal(t, "sheet_1:12", lead.ExternalID)
	assert.Equal(t, "Trần B", lead.Name)
	assert.Equal(t, "0912 345 678", lead.Phone)
	assert.Equal(t, "b@corp.vn", lead.Email)
	assert.Equal(t, "hội chợ", lead.Extra["sheetSource"])

	// Row ngắn hơn chỉ số cột không panic
	lead = a.parseRow([]interface{}{"C", "0909"}, columns, "sheet_1", 13)
	require.NotNil(t, lead)
	assert.Equal(t, "", lead.Email)

	// Không có phone → bỏ
	assert.Nil(t, a.parseRow([]interface{}{"D", "", "d@corp.vn"}, columns, "sheet_1", 14))
}

func TestIndexOfHeader(t *testing.T) {
	headers := []string{"name", "phone", "email"}
	if got := indexOfHeader(headers, "phone"); got != 1 {
		t.Errorf("indexOfHeader(phone) = %d, muốn 1", got)
	}
	if got := indexOfHeader(headers, "company"); got != -1 {
		t.Errorf("Header không tồn tại phải trả -1, nhận %d", got)
	}
}

// sheetTestServer giả lập values API: header ở range "1:1", data trả theo range yêu cầu.
func sheetTestServer(t *testing.T, header string, dataRows string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/values/1:1") {
			_, _ = w.Write([]byte(`{"values": [` + header + `]}`))
			return
		}
		_, _ = w.Write([]byte(`{"values": [` + dataRows + `]}`))
	}))
}

func TestSheetFetchIncremental(t *testing.T) {
	server := sheetTestServer(t,
		`["Name", "SDT", "Email"]`,
		`["A", "0900000001", "a@x.vn"],
		 ["B", "0900000002", ""],
		 ["C", "", "c@x.vn"],
		 ["D", "0900000004", ""],
		 ["E", "0900000005", ""]`)
	defer server.Close()

	integration := &intmodels.Integration{
		ID:       primitive.NewObjectID(),
		Platform: intmodels.PlatformSpreadsheet,
		Config: map[string]interface{}{
			"spreadsheetId": "sheet_1",
			"apiBaseUrl":    server.URL,
		},
	}

	a := NewSheetAdapter(nil)
	result, err := a.FetchIncremental(context.Background(), integration, intmodels.SyncCursor{RowOffset: 10}, 100)
	require.NoError(t, err)

	// 5 row đọc được, row "C" không có phone bị drop, cursor vẫn nhảy qua cả 5
	require.Len(t, result.Leads, 4)
	assert.Equal(t, 1, result.Dropped)
	assert.Equal(t, int64(15), result.NewCursor.RowOffset)

	// Row dữ liệu đầu tiên sau offset 10 là row tuyệt đối 12 (row 1 là header)
	assert.Equal(t, "sheet_1:12", result.Leads[0].ExternalID)
	assert.Equal(t, "sheet_1:16", result.Leads[3].ExternalID)
}

func TestSheetResolveColumns_HeaderMapWins(t *testing.T) {
	server := sheetTestServer(t, `["Khách hàng", "Phone", "Đường dây nóng"]`, `[]`)
	defer server.Close()

	integration := &intmodels.Integration{
		ID:       primitive.NewObjectID(),
		Platform: intmodels.PlatformSpreadsheet,
		Config: map[string]interface{}{
			"spreadsheetId": "sheet_1",
			"apiBaseUrl":    server.URL,
			"headerMap": map[string]interface{}{
				"name":  "khách hàng",
				"phone": "đường dây nóng",
			},
		},
	}

	a := NewSheetAdapter(nil)
	columns, err := a.resolveColumns(context.Background(), integration, "sheet_1", server.URL)
	require.NoError(t, err)

	assert.Equal(t, 0, columns["name"])
	// headerMap chỉ định cột 2, thắng fallback "phone" ở cột 1
	assert.Equal(t, 2, columns["phone"])
}

func TestSheetTestConnection_MissingPhoneColumn(t *testing.T) {
	server := sheetTestServer(t, `["Name", "Email"]`, `[]`)
	defer server.Close()

	integration := &intmodels.Integration{
		ID:       primitive.NewObjectID(),
		Platform: intmodels.PlatformSpreadsheet,
		Config: map[string]interface{}{
			"spreadsheetId": "sheet_1",
			"apiBaseUrl":    server.URL,
		},
	}

	a := NewSheetAdapter(nil)
	res := a.TestConnection(context.Background(), integration)
	assert.False(t, res.OK)
}
