package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/anatolykoptev/go_vidsum/internal/engine"
)

// YouTube player-response plumbing: watch-page scrape, ANDROID Innertube
// fallback, and the JSON types both return.

const (
	ytBaseURL        = "https://www.youtube.com"
	ytAndroidVersion = "20.10.38"
	ytAndroidUA      = "com.google.android.youtube/" + ytAndroidVersion + " (Linux; U; Android 11) gzip"

	// ytInitialPlayerResponseMarker marks the start of the player response JSON in watch page HTML.
	ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "

	maxWatchPageBytes = 6 * 1024 * 1024

	// Watch pages are requested in English so meta tags and error texts parse predictably.
	watchPageLang = "en-US"

	// playerMemoTTL bounds how long one player response serves repeated
	// caption attempts for the same video.
	playerMemoTTL = 2 * time.Minute
)

// --- ANDROID client types (/player endpoint) ---

type innertubeReq struct {
	VideoID        string       `json:"videoId"`
	Context        innertubeCtx `json:"context"`
	RacyCheckOk    bool         `json:"racyCheckOk"`
	ContentCheckOk bool         `json:"contentCheckOk"`
}

type innertubeCtx struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	VideoDetails *struct {
		VideoID       string `json:"videoId"`
		Title         string `json:"title"`
		LengthSeconds string `json:"lengthSeconds"`
		Author        string `json:"author"`
		ViewCount     string `json:"viewCount"`
		Thumbnail     struct {
			Thumbnails []struct {
				URL    string `json:"url"`
				Width  int    `json:"width"`
				Height int    `json:"height"`
			} `json:"thumbnails"`
		} `json:"thumbnail"`
	} `json:"videoDetails"`
	Microformat *struct {
		PlayerMicroformatRenderer struct {
			PublishDate string `json:"publishDate"`
			UploadDate  string `json:"uploadDate"`
		} `json:"playerMicroformatRenderer"`
	} `json:"microformat"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
	Name         struct {
		SimpleText string `json:"simpleText"`
		Runs       []struct {
			Text string `json:"text"`
		} `json:"runs"`
	} `json:"name"`
}

func (t captionTrack) displayName() string {
	if t.Name.SimpleText != "" {
		return t.Name.SimpleText
	}
	var parts []string
	for _, r := range t.Name.Runs {
		parts = append(parts, r.Text)
	}
	return strings.Join(parts, "")
}

// errNoPlayerResponse means the watch page carried no ytInitialPlayerResponse.
var errNoPlayerResponse = errors.New("ytInitialPlayerResponse not found in watch page")

// fetchWatchPage downloads the raw watch page HTML. The stealth browser client
// is preferred when configured; YouTube serves consent walls to bare clients.
func (y *YouTube) fetchWatchPage(ctx context.Context, videoID string) ([]byte, error) {
	watchURL := y.baseURL + "/watch?v=" + videoID

	if y.browser != nil {
		headers := engine.WatchPageHeaders(watchPageLang)
		return engine.RetryDo(ctx, y.retry, func() ([]byte, error) {
			data, _, status, err := y.browser.Do(http.MethodGet, watchURL, headers, nil)
			if err != nil {
				return nil, err
			}
			if status != http.StatusOK {
				return nil, &engine.HTTPStatusError{StatusCode: status}
			}
			return data, nil
		})
	}

	resp, err := engine.RetryHTTP(ctx, y.retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.RandomUserAgent())
		req.Header.Set("Accept-Language", engine.AcceptLanguage(watchPageLang))
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		return y.httpClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("watch page: %w", &engine.HTTPStatusError{StatusCode: resp.StatusCode})
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxWatchPageBytes))
}

// parsePlayerResponse extracts ytInitialPlayerResponse from watch page HTML.
func parsePlayerResponse(page []byte) (*playerResponse, error) {
	idx := bytes.Index(page, []byte(ytInitialPlayerResponseMarker))
	if idx < 0 {
		return nil, errNoPlayerResponse
	}
	jsonData := extractJSON(page[idx+len(ytInitialPlayerResponseMarker):])
	if jsonData == nil {
		return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}
	var pr playerResponse
	if err := json.Unmarshal(jsonData, &pr); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return &pr, nil
}

// fetchAndroidPlayer asks the ANDROID Innertube /player endpoint for the player response.
func (y *YouTube) fetchAndroidPlayer(ctx context.Context, videoID string) (*playerResponse, error) {
	reqBody, err := json.Marshal(innertubeReq{
		VideoID: videoID,
		Context: innertubeCtx{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     ytAndroidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, err
	}

	resp, err := engine.RetryHTTP(ctx, y.retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, y.baseURL+"/youtubei/v1/player?prettyPrint=false", bytes.NewReader(reqBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", ytAndroidUA)
		req.Header.Set("X-Youtube-Client-Name", "3")
		req.Header.Set("X-Youtube-Client-Version", ytAndroidVersion)
		return y.httpClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("android innertube: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("android innertube: %w", &engine.HTTPStatusError{StatusCode: resp.StatusCode})
	}

	var pr playerResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	return &pr, nil
}

type memoEntry struct {
	pr      *playerResponse
	expires time.Time
}

// playerMemo keeps recent player responses keyed by video ID.
type playerMemo struct {
	mu      sync.Mutex
	entries map[string]memoEntry
}

func newPlayerMemo() *playerMemo {
	return &playerMemo{entries: make(map[string]memoEntry)}
}

func (m *playerMemo) get(videoID string) (*playerResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[videoID]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expires) {
		delete(m.entries, videoID)
		return nil, false
	}
	return e.pr, true
}

func (m *playerMemo) put(videoID string, pr *playerResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for id, e := range m.entries {
		if now.After(e.expires) {
			delete(m.entries, id)
		}
	}
	m.entries[videoID] = memoEntry{pr: pr, expires: now.Add(playerMemoTTL)}
}

// player returns the player response for videoID, reusing a recent one.
func (y *YouTube) player(ctx context.Context, videoID string) (*playerResponse, error) {
	if pr, ok := y.players.get(videoID); ok {
		return pr, nil
	}
	pr, err := y.fetchPlayer(ctx, videoID)
	if err != nil {
		return nil, err
	}
	y.players.put(videoID, pr)
	return pr, nil
}

// fetchPlayer scrapes the watch page first and falls back to the ANDROID
// client when the page yields no caption block.
func (y *YouTube) fetchPlayer(ctx context.Context, videoID string) (*playerResponse, error) {
	var scraped *playerResponse
	page, err := y.fetchWatchPage(ctx, videoID)
	if err == nil {
		scraped, err = parsePlayerResponse(page)
		if err == nil && scraped.Captions != nil {
			return scraped, nil
		}
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	android, aerr := y.fetchAndroidPlayer(ctx, videoID)
	switch {
	case aerr == nil && (android.Captions != nil || scraped == nil):
		return android, nil
	case scraped != nil:
		return scraped, nil
	}
	return nil, errors.Join(err, aerr)
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
