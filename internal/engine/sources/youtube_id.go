package sources

import (
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_vidsum/internal/engine"
)

// Video id patterns, tried in order: query parameter or path segment, embed path, short link.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`(?:embed/)([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`(?:youtu\.be/)([0-9A-Za-z_-]{11})`),
}

var bareIDRE = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)

// ResolveVideoID extracts the 11-character video id from a URL or bare id.
// Failure is terminal and carries ERR_INVALID_REFERENCE.
func ResolveVideoID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if bareIDRE.MatchString(ref) {
		return ref, nil
	}
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(ref); len(m) >= 2 {
			return m[1], nil
		}
	}
	return "", engine.Errorf(engine.CodeInvalidReference, "no video id in %q", ref)
}

// WatchURL returns the canonical watch URL for id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
