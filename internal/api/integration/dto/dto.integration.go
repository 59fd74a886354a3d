// Package intdto - DTO cho API integration.
package intdto

// IntegrationCredentialsInput credential gửi lên khi tạo integration.
// Không bao giờ trả lại nguyên văn cho client.
type IntegrationCredentialsInput struct {
	AccessToken   string `json:"accessToken,omitempty"`
	RefreshToken  string `json:"refreshToken,omitempty"`
	WebhookSecret string `json:"webhookSecret,omitempty"`
}

// CreateIntegrationRequest body POST /integrations.
type CreateIntegrationRequest struct {
	Name        string                      `json:"name" validate:"required,no_xss"`
	Platform    string                      `json:"platform" validate:"required,platform_kind"`
	Credentials IntegrationCredentialsInput `json:"credentials"`
	Config      map[string]interface{}      `json:"config,omitempty"`
}

// UpdateConfigRequest body PUT /integrations/:id/config.
// Chỉ chứa các key muốn đổi; key có giá trị null sẽ bị xóa, key không nhắc
// tới giữ nguyên (read-merge-write).
type UpdateConfigRequest struct {
	Config map[string]interface{} `json:"config" validate:"required"`
}
