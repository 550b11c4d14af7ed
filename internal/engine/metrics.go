package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the service.
var metrics struct {
	LLMCalls            atomic.Int64
	LLMErrors           atomic.Int64
	MapCalls            atomic.Int64
	ReduceCalls         atomic.Int64
	CaptionAttempts     atomic.Int64
	CaptionHits         atomic.Int64
	AudioDownloads      atomic.Int64
	AudioErrors         atomic.Int64
	Transcriptions      atomic.Int64
	TranscriptionErrors atomic.Int64
	MetadataFallbacks   atomic.Int64
	ParseFallbacks      atomic.Int64
}

var metricKeys = []string{
	"llm_calls", "llm_errors", "map_calls", "reduce_calls",
	"caption_attempts", "caption_hits",
	"audio_downloads", "audio_errors",
	"transcriptions", "transcription_errors",
	"metadata_fallbacks", "parse_fallbacks",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"llm_calls":            metrics.LLMCalls.Load(),
		"llm_errors":           metrics.LLMErrors.Load(),
		"map_calls":            metrics.MapCalls.Load(),
		"reduce_calls":         metrics.ReduceCalls.Load(),
		"caption_attempts":     metrics.CaptionAttempts.Load(),
		"caption_hits":         metrics.CaptionHits.Load(),
		"audio_downloads":      metrics.AudioDownloads.Load(),
		"audio_errors":         metrics.AudioErrors.Load(),
		"transcriptions":       metrics.Transcriptions.Load(),
		"transcription_errors": metrics.TranscriptionErrors.Load(),
		"metadata_fallbacks":   metrics.MetadataFallbacks.Load(),
		"parse_fallbacks":      metrics.ParseFallbacks.Load(),
		"cache_hits":           hits,
		"cache_misses":         misses,
	}
}

// FormatMetrics returns metrics as a simple text format for the HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

func IncrMapCalls()      { metrics.MapCalls.Add(1) }
func IncrReduceCalls()   { metrics.ReduceCalls.Add(1) }
func IncrParseFallback() { metrics.ParseFallbacks.Add(1) }

// Incrementors for sources/ and the acquisition pipeline.
func IncrCaptionAttempt()     { metrics.CaptionAttempts.Add(1) }
func IncrCaptionHit()         { metrics.CaptionHits.Add(1) }
func IncrAudioDownload()      { metrics.AudioDownloads.Add(1) }
func IncrAudioError()         { metrics.AudioErrors.Add(1) }
func IncrTranscription()      { metrics.Transcriptions.Add(1) }
func IncrTranscriptionError() { metrics.TranscriptionErrors.Add(1) }
func IncrMetadataFallback()   { metrics.MetadataFallbacks.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
