package engine

import "testing"

func TestAcceptLanguage(t *testing.T) {
	tests := []struct {
		lang, want string
	}{
		{"", "en-US,en;q=0.9"},
		{"en-US", "en-US,en;q=0.9"},
		{"ko-KR", "ko-KR,en-US;q=0.8,en;q=0.7"},
	}
	for _, tt := range tests {
		if got := AcceptLanguage(tt.lang); got != tt.want {
			t.Errorf("AcceptLanguage(%q) = %q, want %q", tt.lang, got, tt.want)
		}
	}
	if h := WatchPageHeaders("ko-KR"); h["accept-language"] != "ko-KR,en-US;q=0.8,en;q=0.7" {
		t.Errorf("WatchPageHeaders accept-language = %q", h["accept-language"])
	}
}
