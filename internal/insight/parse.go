package insight

import (
	"encoding/json"
	"strings"
)

// StripFences removes a leading ```lang fence line and a trailing ``` fence.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// Drop the info string ("json", "mermaid", ...) up to the first newline.
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
			s = s[nl+1:]
		} else {
			for _, lang := range []string{"json", "mermaid"} {
				s = strings.TrimPrefix(s, lang)
			}
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ParseJSON decodes a model response into T. Code fences are stripped first;
// if the remainder is not valid JSON the first balanced {...} object inside
// the text is tried. ok is false when neither decodes.
func ParseJSON[T any](raw string) (T, bool) {
	var out T
	body := StripFences(raw)
	if body == "" {
		return out, false
	}
	if err := json.Unmarshal([]byte(body), &out); err == nil {
		return out, true
	}
	if obj := firstObject(body); obj != "" {
		var retry T
		if err := json.Unmarshal([]byte(obj), &retry); err == nil {
			return retry, true
		}
	}
	return out, false
}

// firstObject returns the first balanced JSON object in s, or "".
func firstObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inStr, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
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
				return s[start : i+1]
			}
		}
	}
	return ""
}
