package insight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/anatolykoptev/go_vidsum/internal/engine"
	"github.com/anatolykoptev/go_vidsum/internal/engine/sources"
)

// fakeLLM answers prompts with respond and records every prompt it saw.
type fakeLLM struct {
	mu      sync.Mutex
	prompts []string
	respond func(prompt string) (string, error)
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.respond == nil {
		return "ok", nil
	}
	return f.respond(prompt)
}

func (f *fakeLLM) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// countPrefix counts recorded prompts starting with prefix.
func (f *fakeLLM) countPrefix(prefix string) int {
	n := 0
	for _, p := range f.calls() {
		if strings.HasPrefix(p, prefix) {
			n++
		}
	}
	return n
}

const (
	mapPrefix      = "Summarize this part"
	analysisPrefix = "You are an expert video content analyst"
	assetsPrefix   = "Create marketing content"
	notesPrefix    = "You are an expert note taker"
)

// fakeCaptions serves captions keyed by the comma-joined language set.
type fakeCaptions struct {
	mu        sync.Mutex
	byLangs   map[string]string
	disabled  bool
	tracks    []engine.CaptionTrack
	trackText map[string]string
	listErr   error
	requested []string
}

func (f *fakeCaptions) FetchByLanguages(_ context.Context, _ string, langs []string) (string, error) {
	key := strings.Join(langs, ",")
	f.mu.Lock()
	f.requested = append(f.requested, key)
	f.mu.Unlock()
	if f.disabled {
		return "", sources.ErrCaptionsDisabled
	}
	if text, ok := f.byLangs[key]; ok {
		return text, nil
	}
	return "", sources.ErrNoCaptions
}

func (f *fakeCaptions) ListAvailable(context.Context, string) ([]engine.CaptionTrack, error) {
	if f.disabled {
		return nil, sources.ErrCaptionsDisabled
	}
	return f.tracks, f.listErr
}

func (f *fakeCaptions) FetchTrack(_ context.Context, tr engine.CaptionTrack) (string, error) {
	text, ok := f.trackText[tr.LanguageCode]
	if !ok {
		return "", errors.New("track unavailable")
	}
	return text, nil
}

// fakeDownloader writes size bytes into outputDir and remembers the directory.
type fakeDownloader struct {
	size  int
	err   error
	dirs  []string
	calls int
}

func (f *fakeDownloader) Download(_ context.Context, videoID, outputDir string) (string, error) {
	f.calls++
	f.dirs = append(f.dirs, outputDir)
	if f.err != nil {
		return "", f.err
	}
	path := filepath.Join(outputDir, "audio_"+videoID+".mp3")
	if err := os.WriteFile(path, make([]byte, f.size), 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// fakeSTT returns text and records the size of the file it was given.
type fakeSTT struct {
	text    string
	err     error
	gotSize int64
	gotLang string
	gotPath string
	calls   int
}

func (f *fakeSTT) Transcribe(_ context.Context, path, lang string) (string, error) {
	f.calls++
	f.gotPath, f.gotLang = path, lang
	if fi, err := os.Stat(path); err == nil {
		f.gotSize = fi.Size()
	}
	return f.text, f.err
}

// fakeCompactor writes a file of size bytes next to the input.
type fakeCompactor struct {
	size int
	err  error
}

func (f fakeCompactor) Compact(_ context.Context, path string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	out := strings.TrimSuffix(path, filepath.Ext(path)) + ".mono.mp3"
	return out, os.WriteFile(out, make([]byte, f.size), 0o600)
}

type fakeMeta struct{ title string }

func (f fakeMeta) Fetch(_ context.Context, id string) engine.VideoMetadata {
	m := sources.PlaceholderMetadata(id)
	if f.title != "" {
		m.Title = f.title
	}
	return m
}
