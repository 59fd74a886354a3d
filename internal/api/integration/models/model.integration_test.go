// Package models - Test cursor sync.
package models

import "testing"

func TestSyncCursorIsZero(t *testing.T) {
	cases := []struct {
		name   string
		cursor SyncCursor
		want   bool
	}{
		{"cursor rỗng", SyncCursor{}, true},
		{"có rowOffset", SyncCursor{RowOffset: 5}, false},
		{"có since", SyncCursor{Since: 1700000000}, false},
		{"có pageToken", SyncCursor{PageToken: "abc"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.cursor.IsZero(); got != c.want {
				t.Errorf("IsZero() = %v, muốn %v", got, c.want)
			}
		})
	}
}
