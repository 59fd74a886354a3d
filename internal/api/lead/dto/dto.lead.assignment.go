package leaddto

// UpsertFormAssignmentRequest body PUT /assignments/forms.
// Unassigned=true nghĩa là rule nói rõ "form này không gán ai" (assignedTo bị
// bỏ qua); khác với việc không có rule.
type UpsertFormAssignmentRequest struct {
	FormID     string `json:"formId" validate:"required"`
	FormName   string `json:"formName,omitempty" validate:"omitempty,no_xss"`
	AssignedTo string `json:"assignedTo,omitempty"` // ObjectID hex của sales user
	Unassigned bool   `json:"unassigned,omitempty"`
	Active     *bool  `json:"active,omitempty"` // nil = giữ nguyên (mặc định true khi tạo)
}

// UpsertSheetAssignmentRequest body PUT /assignments/sheets.
type UpsertSheetAssignmentRequest struct {
	SpreadsheetID string `json:"spreadsheetId" validate:"required"`
	SheetName     string `json:"sheetName,omitempty" validate:"omitempty,no_xss"`
	AssignedTo    string `json:"assignedTo,omitempty"`
	Unassigned    bool   `json:"unassigned,omitempty"`
	Active        *bool  `json:"active,omitempty"`
}
