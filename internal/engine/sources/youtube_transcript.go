package sources

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/anatolykoptev/go_vidsum/internal/engine"
)

// Caption-service outcomes that are expected and only advance the fallback chain.
var (
	ErrCaptionsDisabled = errors.New("captions are disabled for this video")
	ErrNoCaptions       = errors.New("no caption track in the requested languages")
)

// YouTube fetches player responses, caption tracks and metadata for videos.
type YouTube struct {
	httpClient *http.Client
	browser    *engine.BrowserClient
	retry      engine.RetryConfig
	baseURL    string
	players    *playerMemo
}

// YouTubeOption configures a YouTube client.
type YouTubeOption func(*YouTube)

// WithBrowserClient routes watch-page requests through the stealth browser client.
func WithBrowserClient(bc *engine.BrowserClient) YouTubeOption {
	return func(y *YouTube) { y.browser = bc }
}

// WithRetry overrides the retry policy for all requests.
func WithRetry(rc engine.RetryConfig) YouTubeOption {
	return func(y *YouTube) { y.retry = rc }
}

// WithBaseURL points the client at a different host (tests).
func WithBaseURL(base string) YouTubeOption {
	return func(y *YouTube) { y.baseURL = strings.TrimRight(base, "/") }
}

// NewYouTube builds a YouTube client. httpClient must not be nil.
func NewYouTube(httpClient *http.Client, opts ...YouTubeOption) *YouTube {
	y := &YouTube{
		httpClient: httpClient,
		retry:      engine.DefaultRetryConfig,
		baseURL:    ytBaseURL,
		players:    newPlayerMemo(),
	}
	for _, o := range opts {
		o(y)
	}
	return y
}

// tracks returns the caption tracks of videoID that can be fetched server-side.
// A player response without a caption block maps to ErrCaptionsDisabled.
func (y *YouTube) tracks(ctx context.Context, videoID string) ([]captionTrack, error) {
	pr, err := y.player(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if pr.Captions == nil {
		if pr.PlayabilityStatus != nil && pr.PlayabilityStatus.Status != "" && pr.PlayabilityStatus.Status != "OK" {
			return nil, fmt.Errorf("video not playable (%s): %s", pr.PlayabilityStatus.Status, pr.PlayabilityStatus.Reason)
		}
		return nil, ErrCaptionsDisabled
	}
	var usable []captionTrack
	for _, t := range pr.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks {
		if t.BaseURL != "" && !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return nil, ErrNoCaptions
	}
	return usable, nil
}

// FetchByLanguages returns the transcript text of the first track matching
// langs, in preference order. Manually created tracks win over generated ones.
func (y *YouTube) FetchByLanguages(ctx context.Context, videoID string, langs []string) (string, error) {
	tracks, err := y.tracks(ctx, videoID)
	if err != nil {
		return "", err
	}
	track, ok := selectTrack(tracks, langs)
	if !ok {
		return "", ErrNoCaptions
	}
	return y.fetchTimedText(ctx, track.BaseURL)
}

// ListAvailable lists every fetchable track, manual tracks first.
func (y *YouTube) ListAvailable(ctx context.Context, videoID string) ([]engine.CaptionTrack, error) {
	tracks, err := y.tracks(ctx, videoID)
	if err != nil {
		return nil, err
	}
	out := make([]engine.CaptionTrack, 0, len(tracks))
	for _, generated := range []bool{false, true} {
		for _, t := range tracks {
			if (t.Kind == "asr") != generated {
				continue
			}
			out = append(out, engine.CaptionTrack{
				VideoID:      videoID,
				LanguageCode: t.LanguageCode,
				Name:         t.displayName(),
				Generated:    generated,
				URL:          t.BaseURL,
			})
		}
	}
	return out, nil
}

// FetchTrack downloads the text of a track returned by ListAvailable.
func (y *YouTube) FetchTrack(ctx context.Context, track engine.CaptionTrack) (string, error) {
	if track.URL == "" {
		return "", fmt.Errorf("track %s of %s has no URL", track.LanguageCode, track.VideoID)
	}
	return y.fetchTimedText(ctx, track.URL)
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// selectTrack picks the track for the first language in langs that has one.
// Within a language, a manual track is preferred over an auto-generated one.
// Unlike a best-effort pick, no track outside langs is ever returned.
func selectTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	for _, lang := range langs {
		var generated *captionTrack
		for i, t := range tracks {
			if !sameLanguage(t.LanguageCode, lang) {
				continue
			}
			if t.Kind != "asr" {
				return t, true
			}
			if generated == nil {
				generated = &tracks[i]
			}
		}
		if generated != nil {
			return *generated, true
		}
	}
	return captionTrack{}, false
}

// sameLanguage matches "en" against "en" and regional variants such as "en-US".
func sameLanguage(code, want string) bool {
	code, want = strings.ToLower(code), strings.ToLower(want)
	return code == want || strings.HasPrefix(code, want+"-")
}

// --- Timedtext XML types ---

// ytTimedText covers both the legacy <transcript><text> format and the
// srv3 <timedtext><body><p> format.
type ytTimedText struct {
	Lines []ytLine `xml:"text"`
	Paras []ytLine `xml:"body>p"`
}

type ytLine struct {
	Inner string `xml:",innerxml"`
}

// parseTimedText joins every caption fragment with a single space, in order.
func parseTimedText(body []byte) (string, error) {
	var tt ytTimedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("parse timedtext XML: %w", err)
	}
	lines := tt.Lines
	if len(lines) == 0 {
		lines = tt.Paras
	}
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		if text := engine.CleanCaption(line.Inner); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}

// fetchTimedText fetches and parses a YouTube timedtext XML caption URL.
func (y *YouTube) fetchTimedText(ctx context.Context, baseURL string) (string, error) {
	if strings.HasPrefix(baseURL, "/") {
		baseURL = y.baseURL + baseURL
	}
	resp, err := engine.RetryHTTP(ctx, y.retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentBot)
		return y.httpClient.Do(req)
	})
	if err != nil {
		return "", fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch timedtext: %w", &engine.HTTPStatusError{StatusCode: resp.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return "", err
	}
	text, err := parseTimedText(body)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", errors.New("timedtext track is empty")
	}
	return text, nil
}
