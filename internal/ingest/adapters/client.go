// Package adapters - HTTP client dùng chung cho các adapter poll API upstream.
// Retry transient bằng exponential backoff, refresh token trong suốt khi 401.
package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	intmodels "lead_commerce/internal/api/integration/models"
	integrationsvc "lead_commerce/internal/api/integration/service"
	"lead_commerce/internal/common"
	"lead_commerce/internal/logger"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// maxTransientRetries: số lần retry tối đa cho một call gặp lỗi transient.
const maxTransientRetries = 3

// Client gọi API upstream. Stateless, share được giữa các adapter.
type Client struct {
	httpClient *http.Client
}

// NewClient tạo client với per-call timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetJSON gọi GET với bearer token, retry transient, trả về body đã parse.
//
// Phân loại lỗi:
//   - 401/403 → ErrIngestAuth (fatal cho pass, không retry ở đây — caller
//     thử refresh token một lần qua GetJSONWithRefresh)
//   - timeout / 429 / 5xx → ErrIngestUpstream (retry với backoff, hết lượt
//     thì trả lỗi cho pass sau)
//   - body không phải JSON → ErrIngestMalformed
func (c *Client) GetJSON(ctx context.Context, rawURL string, accessToken string) (map[string]interface{}, error) {
	var result map[string]interface{}

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return backoff.Permanent(common.NewError(common.ErrCodeIngestConfig, "URL upstream không hợp lệ: "+err.Error(), common.StatusBadRequest, err))
		}
		if accessToken != "" {
			req.Header.Set("Authorization", "Bearer "+accessToken)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Timeout/network error — transient, cho backoff retry
			return wrapUpstreamErr(err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return wrapUpstreamErr(err)
		}

		if err := classifyStatus(resp.StatusCode, body); err != nil {
			return err
		}

		if err := json.Unmarshal(body, &result); err != nil {
			return backoff.Permanent(common.NewError(
				common.ErrCodeIngestMalformed,
				"Response upstream không phải JSON hợp lệ",
				common.StatusBadGateway,
				err,
			))
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxTransientRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return result, nil
}

// GetJSONWithRefresh như GetJSON nhưng khi gặp ErrIngestAuth và integration có
// refresh token thì refresh một lần, persist credential mới, rồi retry call
// với token mới. Refresh thất bại hoặc vẫn 401 → ErrIngestAuth cho operator.
func (c *Client) GetJSONWithRefresh(ctx context.Context, buildURL func(token string) string, integration *intmodels.Integration, svc *integrationsvc.IntegrationService) (map[string]interface{}, error) {
	token := integration.Credentials.AccessToken

	result, err := c.GetJSON(ctx, buildURL(token), token)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, common.ErrIngestAuth) {
		return nil, err
	}
	if integration.Credentials.RefreshToken == "" || svc == nil {
		return nil, err
	}

	newToken, refreshErr := c.refreshAccessToken(ctx, integration, svc)
	if refreshErr != nil {
		return nil, refreshErr
	}

	return c.GetJSON(ctx, buildURL(newToken), newToken)
}

// refreshAccessToken gọi token endpoint (config "tokenUrl") với refresh token,
// persist access token mới vào integration.
func (c *Client) refreshAccessToken(ctx context.Context, integration *intmodels.Integration, svc *integrationsvc.IntegrationService) (string, error) {
	tokenURL := getString(integration.Config, "tokenUrl")
	if tokenURL == "" {
		return "", common.NewError(
			common.ErrCodeIngestAuth,
			"Token hết hạn và integration không có tokenUrl để refresh",
			common.StatusUnauthorized,
			nil,
		)
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", integration.Credentials.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", common.NewError(common.ErrCodeIngestAuth, "tokenUrl không hợp lệ", common.StatusUnauthorized, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", wrapUpstreamErr(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", wrapUpstreamErr(err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", common.NewError(
			common.ErrCodeIngestAuth,
			fmt.Sprintf("Refresh token bị từ chối (HTTP %d)", resp.StatusCode),
			common.StatusUnauthorized,
			nil,
		)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil || tokenResp.AccessToken == "" {
		return "", common.NewError(common.ErrCodeIngestAuth, "Response refresh token không hợp lệ", common.StatusUnauthorized, err)
	}

	expiresAt := int64(0)
	if tokenResp.ExpiresIn > 0 {
		expiresAt = time.Now().UnixMilli() + tokenResp.ExpiresIn*1000
	}
	if _, err := svc.UpdateById(ctx, integration.ID, map[string]interface{}{
		"credentials.accessToken": tokenResp.AccessToken,
		"credentials.expiresAt":   expiresAt,
	}); err != nil {
		logger.GetAppLogger().WithError(err).WithFields(logrus.Fields{
			"integrationId": integration.ID.Hex(),
		}).Warn("🔄 [INGEST] Refresh token ok nhưng persist credential lỗi")
	}
	integration.Credentials.AccessToken = tokenResp.AccessToken
	integration.Credentials.ExpiresAt = expiresAt

	logger.GetAppLogger().WithFields(logrus.Fields{
		"integrationId": integration.ID.Hex(),
	}).Info("🔄 [INGEST] Đã refresh access token")

	return tokenResp.AccessToken, nil
}

// classifyStatus map HTTP status sang taxonomy lỗi ingest.
func classifyStatus(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return backoff.Permanent(common.NewError(
			common.ErrCodeIngestAuth,
			fmt.Sprintf("Upstream từ chối credential (HTTP %d)", status),
			common.StatusUnauthorized,
			nil,
		))
	case status == http.StatusTooManyRequests || status >= 500:
		// Transient — cho backoff retry
		return common.NewError(
			common.ErrCodeIngestUpstream,
			fmt.Sprintf("Upstream lỗi tạm thời (HTTP %d)", status),
			common.StatusBadGateway,
			nil,
		)
	default:
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return backoff.Permanent(common.NewError(
			common.ErrCodeIngestUpstream,
			fmt.Sprintf("Upstream trả lỗi HTTP %d: %s", status, snippet),
			common.StatusBadGateway,
			nil,
		))
	}
}

func wrapUpstreamErr(err error) error {
	return common.NewError(
		common.ErrCodeIngestUpstream,
		"Không gọi được upstream: "+err.Error(),
		common.StatusBadGateway,
		err,
	)
}
