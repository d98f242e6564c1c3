package ws

import "testing"

func TestOriginAllowed(t *testing.T) {
	allowed := []string{"http://localhost:3000", "https://app.example.com"}

	cases := []struct {
		origin string
		list   []string
		want   bool
	}{
		{"http://localhost:3000", allowed, true},
		{"https://app.example.com", allowed, true},
		{"https://evil.example.com", allowed, false},
		{"", allowed, true},
		{"https://anything.example.com", []string{"*"}, true},
		{"https://anything.example.com", nil, false},
	}
	for _, tc := range cases {
		if got := OriginAllowed(tc.origin, tc.list); got != tc.want {
			t.Errorf("OriginAllowed(%q, %v) = %v, want %v", tc.origin, tc.list, got, tc.want)
		}
	}
}
