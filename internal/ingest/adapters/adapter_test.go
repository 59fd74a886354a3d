// Package adapters - Test verify chữ ký HMAC và helper đọc payload.
package adapters

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyHMACSignature_Valid(t *testing.T) {
	payload := []byte(`{"entry":[]}`)
	secret := "webhook-secret"

	assert.True(t, verifyHMACSignature(payload, signPayload(payload, secret), secret))
}

func TestVerifyHMACSignature_WithoutPrefix(t *testing.T) {
	payload := []byte(`{"entry":[]}`)
	secret := "webhook-secret"
	sig := signPayload(payload, secret)

	// Không có prefix "sha256=" vẫn verify được
	assert.True(t, verifyHMACSignature(payload, sig[len("sha256="):], secret))
}

func TestVerifyHMACSignature_Invalid(t *testing.T) {
	payload := []byte(`{"entry":[]}`)

	cases := []struct {
		name      string
		signature string
		secret    string
	}{
		{"sai secret", signPayload(payload, "other-secret"), "webhook-secret"},
		{"signature rỗng", "", "webhook-secret"},
		{"secret rỗng", signPayload(payload, "webhook-secret"), ""},
		{"không phải hex", "sha256=zzzz-not-hex", "webhook-secret"},
		{"payload bị sửa", signPayload([]byte(`{"entry":[1]}`), "webhook-secret"), "webhook-secret"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.False(t, verifyHMACSignature(payload, c.signature, c.secret))
		})
	}
}

func TestPayloadHelpers(t *testing.T) {
	m := map[string]interface{}{
		"s":     "text",
		"n":     float64(42), // JSON number decode thành float64
		"i":     7,
		"inner": map[string]interface{}{"k": "v"},
		"arr":   []interface{}{"a", "b"},
	}

	assert.Equal(t, "text", getString(m, "s"))
	assert.Equal(t, "", getString(m, "missing"))
	assert.Equal(t, "", getString(nil, "s"))

	assert.Equal(t, 42, getInt(m, "n"))
	assert.Equal(t, 7, getInt(m, "i"))
	assert.Equal(t, 0, getInt(m, "s"))

	assert.Equal(t, "v", getString(getMap(m, "inner"), "k"))
	assert.Nil(t, getMap(m, "s"))

	assert.Len(t, getSlice(m, "arr"), 2)
	assert.Nil(t, getSlice(m, "inner"))
}
