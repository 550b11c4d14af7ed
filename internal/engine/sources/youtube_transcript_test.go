package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/anatolykoptev/go_vidsum/internal/engine"
)

func TestSelectTrack(t *testing.T) {
	tracks := []captionTrack{
		{BaseURL: "u-en-asr", LanguageCode: "en", Kind: "asr"},
		{BaseURL: "u-en", LanguageCode: "en"},
		{BaseURL: "u-ko-asr", LanguageCode: "ko", Kind: "asr"},
		{BaseURL: "u-de", LanguageCode: "de-DE"},
	}
	tests := []struct {
		name  string
		langs []string
		want  string
		ok    bool
	}{
		{"manual preferred over asr", []string{"en"}, "u-en", true},
		{"asr used when only option", []string{"ko"}, "u-ko-asr", true},
		{"order of langs wins", []string{"ko", "en"}, "u-ko-asr", true},
		{"regional variant", []string{"de"}, "u-de", true},
		{"no fallback outside set", []string{"fr"}, "", false},
		{"empty set", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := selectTrack(tracks, tt.langs)
			if ok != tt.ok || got.BaseURL != tt.want {
				t.Errorf("selectTrack(%v) = %q, %v; want %q, %v", tt.langs, got.BaseURL, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseTimedText(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "legacy format",
			body: `<?xml version="1.0" encoding="utf-8" ?><transcript><text start="0" dur="1">Hello</text><text start="1" dur="1">it&amp;#39;s   me</text></transcript>`,
			want: "Hello it's me",
		},
		{
			name: "srv3 format",
			body: `<timedtext format="3"><body><p t="0" d="1"><s>first</s><s> part</s></p><p t="1" d="1">second</p></body></timedtext>`,
			want: "first part second",
		},
		{
			name: "blank fragments skipped",
			body: `<transcript><text start="0">one</text><text start="1"> </text><text start="2">two</text></transcript>`,
			want: "one two",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTimedText([]byte(tt.body))
			if err != nil {
				t.Fatalf("parseTimedText: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	in := []byte(`{"a":"}\"{","b":{"c":1}};var other = {}`)
	got := extractJSON(in)
	want := `{"a":"}\"{","b":{"c":1}}`
	if string(got) != want {
		t.Errorf("extractJSON = %s, want %s", got, want)
	}
	if extractJSON([]byte(`not json`)) != nil {
		t.Error("expected nil for non-object input")
	}
}

// fakeYouTube serves a watch page whose player response lists tracks, plus the
// timedtext endpoint for those tracks.
func fakeYouTube(t *testing.T, player map[string]any, captions map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		data, _ := json.Marshal(player)
		fmt.Fprintf(w, `<html><script>var ytInitialPlayerResponse = %s;</script></html>`, data)
	})
	mux.HandleFunc("/youtubei/v1/player", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(player)
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		text, ok := captions[r.URL.Query().Get("lang")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `<transcript><text start="0">%s</text></transcript>`, text)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func playerWithTracks(tracks ...map[string]any) map[string]any {
	return map[string]any{
		"playabilityStatus": map[string]any{"status": "OK"},
		"captions": map[string]any{
			"playerCaptionsTracklistRenderer": map[string]any{"captionTracks": tracks},
		},
		"videoDetails": map[string]any{
			"videoId":       "abc12345678",
			"title":         "Go Concurrency",
			"lengthSeconds": "3725",
			"author":        "Gopher TV",
			"viewCount":     "1234",
		},
	}
}

func track(lang, kind string) map[string]any {
	return map[string]any{
		"baseUrl":      "/api/timedtext?v=abc12345678&lang=" + lang,
		"languageCode": lang,
		"kind":         kind,
		"name":         map[string]any{"simpleText": lang + " track"},
	}
}

func newTestYouTube(srv *httptest.Server) *YouTube {
	return NewYouTube(srv.Client(), WithBaseURL(srv.URL), WithRetry(engine.RetryConfig{}))
}

func TestFetchByLanguages(t *testing.T) {
	srv := fakeYouTube(t, playerWithTracks(track("en", "asr")), map[string]string{"en": "hello world"})
	y := newTestYouTube(srv)
	ctx := context.Background()

	got, err := y.FetchByLanguages(ctx, "abc12345678", []string{"en"})
	if err != nil {
		t.Fatalf("FetchByLanguages: %v", err)
	}
	if got != "hello world" {
		t.Errorf("got %q", got)
	}

	_, err = y.FetchByLanguages(ctx, "abc12345678", []string{"ko"})
	if !errors.Is(err, ErrNoCaptions) {
		t.Errorf("ko: err = %v, want ErrNoCaptions", err)
	}
}

func TestFetchByLanguagesCaptionsDisabled(t *testing.T) {
	player := playerWithTracks()
	delete(player, "captions")
	srv := fakeYouTube(t, player, nil)

	_, err := newTestYouTube(srv).FetchByLanguages(context.Background(), "abc12345678", []string{"en"})
	if !errors.Is(err, ErrCaptionsDisabled) {
		t.Errorf("err = %v, want ErrCaptionsDisabled", err)
	}
}

func TestListAvailableManualFirst(t *testing.T) {
	poToken := track("fr", "")
	poToken["baseUrl"] = "/api/timedtext?lang=fr&exp=xpe"
	srv := fakeYouTube(t, playerWithTracks(track("de", "asr"), track("ja", ""), poToken), map[string]string{"de": "hallo", "ja": "konnichiwa"})
	y := newTestYouTube(srv)

	tracks, err := y.ListAvailable(context.Background(), "abc12345678")
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("got %d tracks, want 2 (PoToken track skipped)", len(tracks))
	}
	if tracks[0].LanguageCode != "ja" || tracks[0].Generated {
		t.Errorf("first track = %+v, want manual ja", tracks[0])
	}
	if tracks[1].Name != "de track" || !tracks[1].Generated {
		t.Errorf("second track = %+v", tracks[1])
	}

	text, err := y.FetchTrack(context.Background(), tracks[1])
	if err != nil || text != "hallo" {
		t.Errorf("FetchTrack = %q, %v", text, err)
	}
}

func TestPlayerResponseReusedAcrossAttempts(t *testing.T) {
	var watchHits atomic.Int32
	player := playerWithTracks(track("en", ""))
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		watchHits.Add(1)
		data, _ := json.Marshal(player)
		fmt.Fprintf(w, `<html><script>var ytInitialPlayerResponse = %s;</script></html>`, data)
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<transcript><text start="0">hi</text></transcript>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	y := newTestYouTube(srv)
	ctx := context.Background()

	if _, err := y.FetchByLanguages(ctx, "abc12345678", []string{"ko"}); !errors.Is(err, ErrNoCaptions) {
		t.Fatalf("ko: err = %v, want ErrNoCaptions", err)
	}
	if _, err := y.FetchByLanguages(ctx, "abc12345678", []string{"en"}); err != nil {
		t.Fatalf("en: %v", err)
	}
	if _, err := y.ListAvailable(ctx, "abc12345678"); err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if n := watchHits.Load(); n != 1 {
		t.Errorf("watch page fetched %d times, want 1", n)
	}
}
