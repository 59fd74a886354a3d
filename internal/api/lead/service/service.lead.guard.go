// Package leadsvc - Submission guard: chặn double-submit trên đường tạo lead tương tác.
package leadsvc

import (
	"sync"
	"time"

	"lead_commerce/internal/common"
	"lead_commerce/internal/global"

	"github.com/google/uuid"
)

// SubmissionGuard giữ cache {session|phoneKey → acceptedAt} theo cửa sổ thời gian
// để hấp thụ double-click/replay từ UI trước khi resolver kịp chạy.
//
// Best-effort và session-local: chốt chặn thật vẫn là resolver + unique index
// ở storage. Guard chỉ để tránh prompt trùng phiền người dùng.
type SubmissionGuard struct {
	mu sync.Mutex

	// accepted: "session|phoneKey" → thời điểm accept gần nhất
	accepted map[string]time.Time
	// lastAccepted: sessionID → thời điểm accept gần nhất bất kể phone,
	// cho cooldown trong phạm vi session. Session khác không ảnh hưởng nhau.
	lastAccepted map[string]time.Time

	phoneWindow    time.Duration // Cửa sổ chặn cùng phone cùng session
	globalCooldown time.Duration // Cooldown giữa hai accept liên tiếp cùng session
}

// NewSubmissionGuard tạo guard với cửa sổ chỉ định.
func NewSubmissionGuard(phoneWindow, globalCooldown time.Duration) *SubmissionGuard {
	return &SubmissionGuard{
		accepted:       make(map[string]time.Time),
		lastAccepted:   make(map[string]time.Time),
		phoneWindow:    phoneWindow,
		globalCooldown: globalCooldown,
	}
}

// DefaultSubmissionGuard tạo guard theo cấu hình server (3s/1s nếu chưa có config).
func DefaultSubmissionGuard() *SubmissionGuard {
	phoneWindow := 3 * time.Second
	globalCooldown := 1 * time.Second
	if global.ServerConfig != nil {
		if global.ServerConfig.GuardPhoneWindow > 0 {
			phoneWindow = time.Duration(global.ServerConfig.GuardPhoneWindow) * time.Second
		}
		if global.ServerConfig.GuardGlobalCooldown > 0 {
			globalCooldown = time.Duration(global.ServerConfig.GuardGlobalCooldown) * time.Second
		}
	}
	return NewSubmissionGuard(phoneWindow, globalCooldown)
}

// Check kiểm tra và ghi nhận một submission.
// Trả về request id (uuid) khi được nhận; lỗi ErrCodeBusinessState khi bị chặn.
// phoneKey rỗng (phone không có chữ số nào) chỉ chịu cooldown của session.
func (g *SubmissionGuard) Check(sessionID, phoneKey string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	g.prune(now)

	if at, ok := g.lastAccepted[sessionID]; ok && now.Sub(at) < g.globalCooldown {
		return "", common.NewError(
			common.ErrCodeBusinessState,
			"Thao tác quá nhanh, vui lòng thử lại",
			common.StatusTooManyRequests,
			nil,
		)
	}

	if phoneKey != "" {
		key := sessionID + "|" + phoneKey
		if at, ok := g.accepted[key]; ok && now.Sub(at) < g.phoneWindow {
			return "", common.NewError(
				common.ErrCodeBusinessState,
				"Số điện thoại này vừa được gửi, vui lòng đợi",
				common.StatusTooManyRequests,
				nil,
			)
		}
		g.accepted[key] = now
	}

	g.lastAccepted[sessionID] = now
	return uuid.NewString(), nil
}

// prune dọn entry đã quá cửa sổ. Gọi khi đang giữ lock.
func (g *SubmissionGuard) prune(now time.Time) {
	for key, at := range g.accepted {
		if now.Sub(at) >= g.phoneWindow {
			delete(g.accepted, key)
		}
	}
	for session, at := range g.lastAccepted {
		if now.Sub(at) >= g.globalCooldown {
			delete(g.lastAccepted, session)
		}
	}
}
