// Package leadsvc - Test luật chuẩn hóa phone/email.
package leadsvc

import (
	"testing"
)

func TestNormalizePhone_CanonicalLaw(t *testing.T) {
	// Ba cách viết cùng một số phải cho ra cùng một key
	inputs := []string{"9876543210", "+91 98765 43210", "919876543210", "098765 43210"}
	keys := map[string]bool{}
	for _, in := range inputs {
		key, ok := NormalizePhone(in)
		if !ok {
			t.Fatalf("NormalizePhone(%q) phải cho ra key, nhận được absent", in)
		}
		keys[key] = true
	}
	if len(keys) != 1 {
		t.Errorf("các cách viết cùng một số phải cho ra cùng một key, nhận được: %v", keys)
	}
	key, _ := NormalizePhone("9876543210")
	if key != "919876543210" {
		t.Errorf("key chuẩn phải là 919876543210, nhận được %q", key)
	}
}

func TestNormalizePhone_Shapes(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"9876543210", "919876543210", true},
		{"6123456789", "916123456789", true},
		{"09876543210", "919876543210", true},
		{"919876543210", "919876543210", true},
		{"(+91) 98-765-43210", "919876543210", true}, // ký tự trang trí bị loại
		// Dạng không phải mobile: giữ nguyên chuỗi chữ số làm khóa
		{"5876543210", "5876543210", true},   // 10 số nhưng đầu 5 — không canonical hóa
		{"05876543210", "05876543210", true}, // bỏ số 0 xong đầu 5 — giữ nguyên
		{"915876543210", "915876543210", true},
		{"98765", "98765", true},                  // quá ngắn, vẫn là khóa
		{"44 20 7946 0958", "442079460958", true}, // số quốc tế khác
		{"84901234567", "84901234567", true},      // wa_id từ messaging webhook
		{"123456", "123456", true},
		// Absent chỉ khi không còn chữ số nào
		{"", "", false},
		{"abc", "", false},
		{"+-() ", "", false},
	}
	for _, c := range cases {
		got, ok := NormalizePhone(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("NormalizePhone(%q) = (%q, %v), muốn (%q, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"  Alice@Example.COM ", "alice@example.com", true},
		{"bob@corp.io", "bob@corp.io", true},
		{"not-an-email", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := NormalizeEmail(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("NormalizeEmail(%q) = (%q, %v), muốn (%q, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}
