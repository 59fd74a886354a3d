// Package leadsvc - Test submission guard với cửa sổ rút ngắn.
package leadsvc

import (
	"errors"
	"testing"
	"time"

	"lead_commerce/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionGuard_BlocksSamePhoneInWindow(t *testing.T) {
	g := NewSubmissionGuard(200*time.Millisecond, 0)

	requestID, err := g.Check("session-a", "919876543210")
	require.NoError(t, err)
	require.NotEmpty(t, requestID, "lần accept đầu phải có request id")

	_, err = g.Check("session-a", "919876543210")
	require.Error(t, err, "cùng session cùng phone trong cửa sổ phải bị chặn")

	var customErr *common.Error
	require.True(t, errors.As(err, &customErr))
	assert.Equal(t, common.StatusTooManyRequests, customErr.StatusCode)
}

func TestSubmissionGuard_DifferentSessionNotBlocked(t *testing.T) {
	g := NewSubmissionGuard(200*time.Millisecond, 0)

	_, err := g.Check("session-a", "919876543210")
	require.NoError(t, err)

	// Session khác submit cùng phone: guard không chặn (resolver sẽ báo trùng)
	_, err = g.Check("session-b", "919876543210")
	assert.NoError(t, err)
}

func TestSubmissionGuard_WindowExpires(t *testing.T) {
	g := NewSubmissionGuard(50*time.Millisecond, 0)

	_, err := g.Check("session-a", "919876543210")
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)

	_, err = g.Check("session-a", "919876543210")
	assert.NoError(t, err, "hết cửa sổ thì submit lại được")
}

func TestSubmissionGuard_CooldownPerSession(t *testing.T) {
	g := NewSubmissionGuard(0, 100*time.Millisecond)

	_, err := g.Check("session-a", "")
	require.NoError(t, err)

	// Cùng session, phone khác — dính cooldown
	_, err = g.Check("session-a", "911234567890")
	require.Error(t, err)

	// Session khác không bị ảnh hưởng bởi cooldown của session-a
	_, err = g.Check("session-b", "919999999999")
	assert.NoError(t, err, "cooldown là session-local, không chặn operator khác")

	time.Sleep(110 * time.Millisecond)
	_, err = g.Check("session-a", "911234567890")
	assert.NoError(t, err, "hết cooldown thì session cũ submit lại được")
}

func TestSubmissionGuard_EmptyPhoneKeyOnlyCooldown(t *testing.T) {
	g := NewSubmissionGuard(1*time.Second, 0)

	// phoneKey rỗng không vào cache phone — hai submit liên tiếp đều qua
	_, err := g.Check("session-a", "")
	require.NoError(t, err)
	_, err = g.Check("session-a", "")
	assert.NoError(t, err)
}
