package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{0, "0:00"},
		{-5, "0:00"},
		{59, "0:59"},
		{61, "1:01"},
		{600, "10:00"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.secs); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"PT4M13S", 253, true},
		{"PT1H2M3S", 3723, true},
		{"PT45S", 45, true},
		{"PT", 0, false},
		{"4:13", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseISODuration(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseISODuration(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFetchMetadataFromPlayer(t *testing.T) {
	srv := fakeYouTube(t, playerWithTracks(track("en", "")), nil)
	md := newTestYouTube(srv).Fetch(context.Background(), "abc12345678")

	if md.Title != "Go Concurrency" {
		t.Errorf("Title = %q", md.Title)
	}
	if md.ChannelTitle != "Gopher TV" {
		t.Errorf("ChannelTitle = %q", md.ChannelTitle)
	}
	if md.Duration != "1:02:05" {
		t.Errorf("Duration = %q", md.Duration)
	}
	if md.Views != 1234 {
		t.Errorf("Views = %d", md.Views)
	}
	if md.Thumbnail != "https://img.youtube.com/vi/abc12345678/maxresdefault.jpg" {
		t.Errorf("Thumbnail = %q", md.Thumbnail)
	}
}

func TestFetchMetadataFromMetaTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/watch" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`<html><head>
<meta property="og:title" content="Tagged Title">
<meta property="og:image" content="https://i.ytimg.com/vi/abc12345678/hq.jpg">
<meta itemprop="duration" content="PT4M13S">
<meta itemprop="datePublished" content="2024-05-01">
<meta itemprop="interactionCount" content="99">
</head></html>`))
	}))
	defer srv.Close()

	md := newTestYouTube(srv).Fetch(context.Background(), "abc12345678")
	if md.Title != "Tagged Title" || md.Duration != "4:13" || md.PublishedAt != "2024-05-01" || md.Views != 99 {
		t.Errorf("unexpected metadata: %+v", md)
	}
	if md.ChannelTitle != "Unknown Channel" {
		t.Errorf("ChannelTitle = %q, want placeholder", md.ChannelTitle)
	}
}

func TestFetchMetadataPlaceholderOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	md := newTestYouTube(srv).Fetch(context.Background(), "abc12345678")
	want := PlaceholderMetadata("abc12345678")
	if md != want {
		t.Errorf("got %+v, want placeholder %+v", md, want)
	}
	if md.Title != "Video Analysis" || md.Duration != "0:00" || md.PublishedAt != "Unknown" {
		t.Errorf("placeholder fields wrong: %+v", md)
	}
}

func TestMetaTagsChannelFromAuthorSpan(t *testing.T) {
	page := []byte(`<html><body>
<meta itemprop="name" content="Go Concurrency Patterns">
<meta property="og:title" content="Go Concurrency Patterns">
<span itemprop="author" itemscope itemtype="http://schema.org/Person">
<link itemprop="url" href="http://www.youtube.com/@gophertv">
<link itemprop="name" content="Gopher TV">
</span>
<span itemprop="publication"><meta itemprop="name" content="not a channel"></span>
</body></html>`)

	md, ok := metadataFromMetaTags("abc12345678", page)
	if !ok {
		t.Fatal("expected metadata")
	}
	if md.Title != "Go Concurrency Patterns" {
		t.Errorf("Title = %q", md.Title)
	}
	if md.ChannelTitle != "Gopher TV" {
		t.Errorf("ChannelTitle = %q, want Gopher TV", md.ChannelTitle)
	}
}

func TestMetadataSharesPlayerWithCaptions(t *testing.T) {
	var watchHits atomic.Int32
	player := playerWithTracks(track("en", ""))
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		watchHits.Add(1)
		data, _ := json.Marshal(player)
		fmt.Fprintf(w, `<html><script>var ytInitialPlayerResponse = %s;</script></html>`, data)
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<transcript><text start="0">hello world</text></transcript>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	y := newTestYouTube(srv)
	ctx := context.Background()
	if md := y.Fetch(ctx, "abc12345678"); md.Title != "Go Concurrency" {
		t.Fatalf("Title = %q", md.Title)
	}
	if text, err := y.FetchByLanguages(ctx, "abc12345678", []string{"en"}); err != nil || text != "hello world" {
		t.Fatalf("FetchByLanguages = %q, %v", text, err)
	}
	if n := watchHits.Load(); n != 1 {
		t.Errorf("watch page fetched %d times, want 1", n)
	}
}
