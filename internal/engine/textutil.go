package engine

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/anatolykoptev/go-kit/strutil"
)

// UserAgentBot identifies plain API requests.
const UserAgentBot = "GoVidsum/1.0"

var (
	htmlTagRe = regexp.MustCompile(`<[^>]+>`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// CleanHTML strips HTML tags and trims whitespace.
func CleanHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}

// CleanCaption turns one raw timedtext fragment into plain text: tags removed,
// entities decoded (captions are often double-escaped), whitespace collapsed.
func CleanCaption(s string) string {
	s = CleanHTML(s)
	for range 2 {
		u := html.UnescapeString(s)
		if u == s {
			break
		}
		s = u
	}
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

// Head returns the first limit runes of s. limit <= 0 means no limit.
func Head(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return TruncateRunes(s, limit, "")
}
