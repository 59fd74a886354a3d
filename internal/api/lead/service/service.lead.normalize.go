// Package leadsvc - Chuẩn hóa phone/email thành khóa so sánh được.
// Toàn bộ hàm trong file này pure — không side effect, không phụ thuộc global.
package leadsvc

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// NormalizePhone chuẩn hóa phone thành khóa dedup.
// Trả về (key, true) khi có khóa, ("", false) chỉ khi không còn chữ số nào.
//
// Quy tắc: bỏ mọi ký tự không phải chữ số — chuỗi chữ số còn lại chính là khóa.
// Riêng các dạng mobile quen thuộc được quy về dạng quốc tế "91xxxxxxxxxx"
// để các cách viết khác nhau cùng ra một khóa:
//   - 10 chữ số bắt đầu 6-9 → thêm prefix "91"
//   - 11 chữ số bắt đầu "0" rồi 6-9 → bỏ số 0, thêm prefix "91"
//   - 12 chữ số bắt đầu "91" rồi 6-9 → giữ nguyên
//
// "9876543210", "+91 98765 43210" và "919876543210" cùng ra một khóa.
// Dạng khác (số bàn, số quốc tế) giữ nguyên chuỗi chữ số làm khóa — vẫn dedup
// được miễn hai lần gửi viết cùng một kiểu.
func NormalizePhone(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return "", false
	}

	isMobilePrefix := func(c byte) bool { return c >= '6' && c <= '9' }

	switch {
	case len(digits) == 10 && isMobilePrefix(digits[0]):
		return "91" + digits, true
	case len(digits) == 11 && digits[0] == '0' && isMobilePrefix(digits[1]):
		return "91" + digits[1:], true
	case len(digits) == 12 && strings.HasPrefix(digits, "91") && isMobilePrefix(digits[2]):
		return digits, true
	}
	return digits, true
}

// NormalizeEmail chuẩn hóa email: trim, lowercase, validate dạng cơ bản.
// Email không hợp lệ trả về ("", false) thay vì lỗi — email thiếu/sai không bao giờ
// chặn việc tạo lead, phone mới là định danh chính.
func NormalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || !emailRegex.MatchString(email) {
		return "", false
	}
	return email, true
}
