package engine

import (
	stealth "github.com/anatolykoptev/go-stealth"
)

// BrowserClient is the TLS-fingerprinted client used for YouTube watch pages.
type BrowserClient = stealth.BrowserClient

// WatchPageHeaders returns Chrome request headers asking for pages in lang
// (a BCP 47 tag such as "en-US"), with English as the fallback.
func WatchPageHeaders(lang string) map[string]string {
	h := stealth.ChromeHeaders()
	h["accept-language"] = AcceptLanguage(lang)
	return h
}

// AcceptLanguage formats an Accept-Language value preferring lang.
func AcceptLanguage(lang string) string {
	if lang == "" || lang == "en" || lang == "en-US" {
		return "en-US,en;q=0.9"
	}
	return lang + ",en-US;q=0.8,en;q=0.7"
}

// RandomUserAgent returns a current desktop browser user agent.
func RandomUserAgent() string { return stealth.RandomUserAgent() }
