package insight

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anatolykoptev/go_vidsum/internal/engine"
	"github.com/anatolykoptev/go_vidsum/internal/engine/sources"
)

// CaptionSource fetches published caption tracks. FetchByLanguages returns
// sources.ErrCaptionsDisabled or sources.ErrNoCaptions for the expected misses.
type CaptionSource interface {
	FetchByLanguages(ctx context.Context, videoID string, langs []string) (string, error)
	ListAvailable(ctx context.Context, videoID string) ([]engine.CaptionTrack, error)
	FetchTrack(ctx context.Context, track engine.CaptionTrack) (string, error)
}

// AudioDownloader saves the audio stream of a video into outputDir.
type AudioDownloader interface {
	Download(ctx context.Context, videoID, outputDir string) (string, error)
}

// SpeechToText transcribes an audio file.
type SpeechToText interface {
	Transcribe(ctx context.Context, filePath, languageHint string) (string, error)
}

// AudioCompactor re-encodes audio into a smaller file.
type AudioCompactor interface {
	Compact(ctx context.Context, path string) (string, error)
}

// MetadataFetcher returns descriptive metadata, falling back to a placeholder.
type MetadataFetcher interface {
	Fetch(ctx context.Context, videoID string) engine.VideoMetadata
}

// AcquireConfig tunes the transcript acquisition pipeline.
type AcquireConfig struct {
	LanguageSets   [][]string
	MaxAudioBytes  int64
	STTLanguage    string
	ScratchDir     string
	CaptionTimeout time.Duration
	AudioTimeout   time.Duration
	STTTimeout     time.Duration
}

// Acquirer obtains a transcript for a video: captions in preferred languages,
// then any caption track, then audio download and speech-to-text.
type Acquirer struct {
	captions  CaptionSource
	audio     AudioDownloader
	stt       SpeechToText
	compactor AudioCompactor
	cache     *engine.TieredCache
	cfg       AcquireConfig
}

// AcquirerOption configures an Acquirer.
type AcquirerOption func(*Acquirer)

// WithSpeechToText enables the audio fallback.
func WithSpeechToText(d AudioDownloader, stt SpeechToText) AcquirerOption {
	return func(a *Acquirer) {
		a.audio = d
		a.stt = stt
	}
}

// WithCompactor re-encodes oversized audio before it is truncated.
func WithCompactor(c AudioCompactor) AcquirerOption {
	return func(a *Acquirer) { a.compactor = c }
}

// WithTranscriptCache caches successful transcripts by video id.
func WithTranscriptCache(c *engine.TieredCache) AcquirerOption {
	return func(a *Acquirer) { a.cache = c }
}

// NewAcquirer builds an Acquirer over captions. Without WithSpeechToText,
// running out of captions is terminal.
func NewAcquirer(captions CaptionSource, cfg AcquireConfig, opts ...AcquirerOption) *Acquirer {
	if len(cfg.LanguageSets) == 0 {
		cfg.LanguageSets = engine.DefaultConfig().CaptionLanguageSets
	}
	a := &Acquirer{captions: captions, cfg: cfg}
	for _, o := range opts {
		o(a)
	}
	return a
}

// attempt is the outcome of one acquisition strategy.
type attempt struct {
	text   string
	ok     bool
	reason string
	// skipCaptions is set when no further caption strategy can succeed.
	skipCaptions bool
}

type strategy struct {
	name string
	run  func(ctx context.Context, videoID string) attempt
}

func (a *Acquirer) captionStrategies() []strategy {
	out := make([]strategy, 0, len(a.cfg.LanguageSets)+1)
	for _, langs := range a.cfg.LanguageSets {
		out = append(out, strategy{
			name: "captions:" + strings.Join(langs, ","),
			run: func(ctx context.Context, videoID string) attempt {
				return a.byLanguages(ctx, videoID, langs)
			},
		})
	}
	return append(out, strategy{name: "captions:any", run: a.anyTrack})
}

// Acquire returns the transcript of videoID. Failures are *engine.Error
// values with ERR_NO_CAPTIONS, ERR_AUDIO_DOWNLOAD or ERR_TRANSCRIPTION, or
// the context error when ctx ends first.
func (a *Acquirer) Acquire(ctx context.Context, videoID string) (engine.Transcript, error) {
	key := engine.CacheKey("transcript", videoID)
	if t, ok := engine.LoadJSON[engine.Transcript](ctx, a.cache, key); ok && t.Text != "" {
		slog.Debug("acquire: cache hit", slog.String("video_id", videoID))
		return t, nil
	}

	t, err := a.acquire(ctx, videoID)
	if err != nil {
		return engine.Transcript{}, err
	}
	engine.StoreJSON(ctx, a.cache, key, t)
	return t, nil
}

func (a *Acquirer) acquire(ctx context.Context, videoID string) (engine.Transcript, error) {
	for _, s := range a.captionStrategies() {
		if err := ctx.Err(); err != nil {
			return engine.Transcript{}, err
		}
		engine.IncrCaptionAttempt()
		at := s.run(ctx, videoID)
		if at.ok {
			engine.IncrCaptionHit()
			slog.Info("acquire: captions found", slog.String("video_id", videoID), slog.String("strategy", s.name))
			return engine.Transcript{Text: at.text, Provenance: engine.ProvenanceSubtitle}, nil
		}
		slog.Debug("acquire: strategy failed", slog.String("video_id", videoID),
			slog.String("strategy", s.name), slog.String("reason", at.reason))
		if at.skipCaptions {
			slog.Info("acquire: captions disabled", slog.String("video_id", videoID))
			break
		}
	}
	if err := ctx.Err(); err != nil {
		return engine.Transcript{}, err
	}

	if a.audio == nil || a.stt == nil {
		return engine.Transcript{}, engine.Errorf(engine.CodeNoCaptions, "no captions available for video %s", videoID)
	}
	text, err := a.transcribeAudio(ctx, videoID)
	if err != nil {
		return engine.Transcript{}, err
	}
	return engine.Transcript{Text: text, Provenance: engine.ProvenanceSpeechToText}, nil
}

func (a *Acquirer) byLanguages(ctx context.Context, videoID string, langs []string) attempt {
	cctx, cancel := withTimeout(ctx, a.cfg.CaptionTimeout)
	defer cancel()
	text, err := a.captions.FetchByLanguages(cctx, videoID, langs)
	if err != nil {
		return attempt{reason: captionReason(err), skipCaptions: errors.Is(err, sources.ErrCaptionsDisabled)}
	}
	return textAttempt(text)
}

func (a *Acquirer) anyTrack(ctx context.Context, videoID string) attempt {
	cctx, cancel := withTimeout(ctx, a.cfg.CaptionTimeout)
	defer cancel()
	tracks, err := a.captions.ListAvailable(cctx, videoID)
	if err != nil {
		return attempt{reason: captionReason(err)}
	}
	var last string
	for _, tr := range tracks {
		if err := ctx.Err(); err != nil {
			return attempt{reason: err.Error()}
		}
		text, err := a.captions.FetchTrack(cctx, tr)
		if err != nil {
			last = fmt.Sprintf("%s: %v", tr.LanguageCode, err)
			continue
		}
		if at := textAttempt(text); at.ok {
			return at
		}
		last = tr.LanguageCode + ": empty track"
	}
	if last == "" {
		last = string(engine.CodeNoCaptions)
	}
	return attempt{reason: last}
}

func textAttempt(text string) attempt {
	text = strings.TrimSpace(text)
	if text == "" {
		return attempt{reason: "empty transcript"}
	}
	return attempt{text: text, ok: true}
}

func captionReason(err error) string {
	switch {
	case errors.Is(err, sources.ErrCaptionsDisabled):
		return string(engine.CodeCaptionsDisabled)
	case errors.Is(err, sources.ErrNoCaptions):
		return string(engine.CodeNoCaptions)
	}
	return err.Error()
}

// transcribeAudio downloads audio into a scratch directory that is removed
// on every return path, fits it under the size ceiling and transcribes it.
func (a *Acquirer) transcribeAudio(ctx context.Context, videoID string) (string, error) {
	dir, err := os.MkdirTemp(a.cfg.ScratchDir, "vidsum-")
	if err != nil {
		return "", engine.NewError(engine.CodeAudioDownload, "create scratch directory", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			slog.Warn("acquire: scratch cleanup failed", slog.String("dir", dir), slog.Any("error", err))
		}
	}()

	engine.IncrAudioDownload()
	dctx, cancel := withTimeout(ctx, a.cfg.AudioTimeout)
	path, err := a.audio.Download(dctx, videoID, dir)
	cancel()
	if err != nil {
		engine.IncrAudioError()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", engine.NewError(engine.CodeAudioDownload, "audio download failed", err)
	}

	path, err = a.fitAudio(ctx, path, dir)
	if err != nil {
		engine.IncrAudioError()
		return "", engine.NewError(engine.CodeAudioDownload, "prepare audio", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	engine.IncrTranscription()
	sctx, cancel := withTimeout(ctx, a.cfg.STTTimeout)
	defer cancel()
	text, err := a.stt.Transcribe(sctx, path, a.cfg.STTLanguage)
	if err != nil {
		engine.IncrTranscriptionError()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", engine.NewError(engine.CodeTranscription, "speech-to-text failed", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		engine.IncrTranscriptionError()
		return "", engine.Errorf(engine.CodeTranscription, "speech-to-text returned no text")
	}
	slog.Info("acquire: transcribed audio", slog.String("video_id", videoID), slog.Int("chars", len(text)))
	return text, nil
}

// fitAudio returns a file no larger than MaxAudioBytes. Oversized audio is
// compacted first when a compactor is set; whatever is still too large is
// cut to its first MaxAudioBytes bytes.
func (a *Acquirer) fitAudio(ctx context.Context, path, dir string) (string, error) {
	limit := a.cfg.MaxAudioBytes
	if limit <= 0 {
		return path, nil
	}
	size, err := fileSize(path)
	if err != nil {
		return "", err
	}
	if size <= limit {
		return path, nil
	}

	if a.compactor != nil {
		small, err := a.compactor.Compact(ctx, path)
		if err != nil {
			slog.Warn("acquire: audio compaction failed", slog.Any("error", err))
		} else if s, err := fileSize(small); err == nil {
			slog.Debug("acquire: audio compacted", slog.Int64("from", size), slog.Int64("to", s))
			path, size = small, s
		}
		if size <= limit {
			return path, nil
		}
	}

	slog.Warn("acquire: audio exceeds size ceiling, truncating",
		slog.Int64("size", size), slog.Int64("limit", limit))
	return truncateFile(path, dir, limit)
}

func fileSize(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat audio: %w", err)
	}
	return fi.Size(), nil
}

// truncateFile copies the first limit bytes of path into a new file in dir.
func truncateFile(path, dir string, limit int64) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open audio: %w", err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(dir, "head-*"+filepath.Ext(path))
	if err != nil {
		return "", fmt.Errorf("create truncated audio: %w", err)
	}
	if _, err := io.CopyN(dst, src, limit); err != nil && !errors.Is(err, io.EOF) {
		dst.Close()
		return "", fmt.Errorf("truncate audio: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close truncated audio: %w", err)
	}
	return dst.Name(), nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
