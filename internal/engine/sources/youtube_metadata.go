package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/anatolykoptev/go_vidsum/internal/engine"
)

// PlaceholderMetadata is returned whenever metadata cannot be fetched.
func PlaceholderMetadata(videoID string) engine.VideoMetadata {
	return engine.VideoMetadata{
		ID:           videoID,
		URL:          WatchURL(videoID),
		Title:        "Video Analysis",
		Thumbnail:    thumbnailURL(videoID),
		Duration:     "0:00",
		ChannelTitle: "Unknown Channel",
		PublishedAt:  "Unknown",
		Views:        0,
	}
}

func thumbnailURL(videoID string) string {
	return "https://img.youtube.com/vi/" + videoID + "/maxresdefault.jpg"
}

// Fetch returns the metadata of videoID. It never fails: any error is logged
// and the placeholder record is returned instead.
func (y *YouTube) Fetch(ctx context.Context, videoID string) engine.VideoMetadata {
	md, err := y.fetchMetadata(ctx, videoID)
	if err != nil {
		engine.IncrMetadataFallback()
		slog.Warn("youtube: metadata unavailable, using placeholder",
			slog.String("id", videoID), slog.Any("error", err))
		return PlaceholderMetadata(videoID)
	}
	return md
}

func (y *YouTube) fetchMetadata(ctx context.Context, videoID string) (engine.VideoMetadata, error) {
	if pr, ok := y.players.get(videoID); ok && pr.VideoDetails != nil {
		return metadataFromPlayer(videoID, pr), nil
	}
	page, err := y.fetchWatchPage(ctx, videoID)
	if err == nil {
		if pr, perr := parsePlayerResponse(page); perr == nil && pr.VideoDetails != nil {
			y.rememberPlayer(videoID, pr)
			return metadataFromPlayer(videoID, pr), nil
		}
		if md, ok := metadataFromMetaTags(videoID, page); ok {
			return md, nil
		}
		err = errors.New("watch page carried no metadata")
	}
	if ctx.Err() != nil {
		return engine.VideoMetadata{}, ctx.Err()
	}

	pr, aerr := y.fetchAndroidPlayer(ctx, videoID)
	if aerr != nil {
		return engine.VideoMetadata{}, errors.Join(err, aerr)
	}
	if pr.VideoDetails == nil {
		return engine.VideoMetadata{}, fmt.Errorf("player response for %s has no video details", videoID)
	}
	y.rememberPlayer(videoID, pr)
	return metadataFromPlayer(videoID, pr), nil
}

// rememberPlayer shares a player response with the caption lookups that
// follow. Only responses carrying captions are kept, matching what player()
// itself would have settled on.
func (y *YouTube) rememberPlayer(videoID string, pr *playerResponse) {
	if pr.Captions != nil {
		y.players.put(videoID, pr)
	}
}

func metadataFromPlayer(videoID string, pr *playerResponse) engine.VideoMetadata {
	md := PlaceholderMetadata(videoID)
	vd := pr.VideoDetails
	if vd.Title != "" {
		md.Title = vd.Title
	}
	if vd.Author != "" {
		md.ChannelTitle = vd.Author
	}
	if secs, err := strconv.Atoi(vd.LengthSeconds); err == nil {
		md.Duration = FormatDuration(secs)
	}
	if views, err := strconv.ParseInt(vd.ViewCount, 10, 64); err == nil {
		md.Views = views
	}
	best := 0
	for _, th := range vd.Thumbnail.Thumbnails {
		if th.URL != "" && th.Width*th.Height > best {
			best = th.Width * th.Height
			md.Thumbnail = th.URL
		}
	}
	if pr.Microformat != nil {
		mf := pr.Microformat.PlayerMicroformatRenderer
		switch {
		case mf.PublishDate != "":
			md.PublishedAt = mf.PublishDate
		case mf.UploadDate != "":
			md.PublishedAt = mf.UploadDate
		}
	}
	return md
}

// metadataFromMetaTags reads Open Graph and schema.org <meta> tags from the
// watch page. Tags inside the itemprop="author" span are keyed "author.<prop>".
// ok is false when not even a title is present.
func metadataFromMetaTags(videoID string, page []byte) (engine.VideoMetadata, bool) {
	tags := map[string]string{}
	authorDepth := 0
	z := html.NewTokenizer(bytes.NewReader(page))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		name, hasAttr := z.TagName()
		tag := string(name)
		if tag == "span" && authorDepth > 0 {
			switch tt {
			case html.StartTagToken:
				authorDepth++
			case html.EndTagToken:
				authorDepth--
			}
		}
		if (tt != html.StartTagToken && tt != html.SelfClosingTagToken) || !hasAttr {
			continue
		}
		attrs := tagAttrs(z)
		if tag == "span" && tt == html.StartTagToken && authorDepth == 0 && attrs["itemprop"] == "author" {
			authorDepth = 1
			continue
		}
		if tag != "meta" && tag != "link" {
			continue
		}
		key := firstNonEmpty(attrs["property"], attrs["itemprop"], attrs["name"])
		content := attrs["content"]
		if key == "" || content == "" {
			continue
		}
		if authorDepth > 0 {
			key = "author." + key
		}
		if _, seen := tags[key]; !seen {
			tags[key] = content
		}
	}

	title := firstNonEmpty(tags["og:title"], tags["title"])
	if title == "" {
		return engine.VideoMetadata{}, false
	}
	md := PlaceholderMetadata(videoID)
	md.Title = title
	if img := tags["og:image"]; img != "" {
		md.Thumbnail = img
	}
	if secs, ok := parseISODuration(tags["duration"]); ok {
		md.Duration = FormatDuration(secs)
	}
	if d := firstNonEmpty(tags["datePublished"], tags["uploadDate"]); d != "" {
		md.PublishedAt = d
	}
	if v, err := strconv.ParseInt(tags["interactionCount"], 10, 64); err == nil {
		md.Views = v
	}
	if ch := tags["author.name"]; ch != "" {
		md.ChannelTitle = ch
	}
	return md, true
}

func tagAttrs(z *html.Tokenizer) map[string]string {
	attrs := map[string]string{}
	for {
		k, v, more := z.TagAttr()
		attrs[string(k)] = string(v)
		if !more {
			return attrs
		}
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

var isoDurationRE = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISODuration parses schema.org durations such as "PT1H2M3S".
func parseISODuration(s string) (int, bool) {
	m := isoDurationRE.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil || s == "PT" {
		return 0, false
	}
	total := 0
	for i, mult := range []int{3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, false
		}
		total += n * mult
	}
	return total, true
}

// FormatDuration renders seconds as M:SS, or H:MM:SS from one hour up.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "0:00"
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
