// Command go_vidsum is an MCP server for YouTube transcripts, analysis and study material.
//
// Exposes seven MCP tools: video_transcript, video_analyze, video_summary,
// video_mindmap, video_quiz, video_flashcards, video_chat.
// Runs as HTTP MCP server or stdio transport.
package main

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/anatolykoptev/go_vidsum/internal/engine"
	"github.com/anatolykoptev/go_vidsum/internal/engine/sources"
	"github.com/anatolykoptev/go_vidsum/internal/insight"
	"github.com/anatolykoptev/go_vidsum/internal/videoserver"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", slog.Any("error", err))
	}
	mcpPort := env.Str("MCP_PORT", "8893")

	cfg := loadConfig()
	cache := engine.NewTieredCache(cfg.RedisURL, cfg.CacheTTL, cfg.CacheMaxEntries, cfg.CacheCleanupInterval)
	defer cache.Close()

	orch := newOrchestrator(cfg, cache)

	slog.Info("starting go_vidsum",
		slog.String("port", mcpPort),
		slog.String("model", cfg.LLMModel),
		slog.Bool("speech_to_text", cfg.STTAPIKey != ""),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_vidsum",
		Version: version,
	}, nil)

	videoserver.RegisterTools(server, orch)
	slog.Info("tools registered", slog.Int("count", videoserver.ToolCount))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_vidsum",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 900 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func loadConfig() engine.Config {
	d := engine.DefaultConfig()
	c := engine.Config{
		LLMAPIKey:          env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks: env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:         env.Str("LLM_API_BASE", d.LLMAPIBase),
		LLMModel:           env.Str("LLM_MODEL", d.LLMModel),
		LLMTemperature:     env.Float("LLM_TEMPERATURE", d.LLMTemperature),
		LLMMaxTokens:       env.Int("LLM_MAX_TOKENS", d.LLMMaxTokens),
		LLMRequestsPerSec:  env.Float("LLM_RPS", d.LLMRequestsPerSec),
		LLMTimeout:         env.Duration("LLM_TIMEOUT", d.LLMTimeout),
		ChatTemperature:    env.Float("CHAT_TEMPERATURE", d.ChatTemperature),
		ChatMaxTokens:      env.Int("CHAT_MAX_TOKENS", d.ChatMaxTokens),

		STTAPIKey:   env.Str("STT_API_KEY", ""),
		STTAPIBase:  env.Str("STT_API_BASE", d.STTAPIBase),
		STTModel:    env.Str("STT_MODEL", d.STTModel),
		STTLanguage: env.Str("STT_LANGUAGE", d.STTLanguage),
		STTMaxBytes: int64(env.Int("STT_MAX_BYTES", int(d.STTMaxBytes))),
		STTTimeout:  env.Duration("STT_TIMEOUT", d.STTTimeout),

		YtDlpPath:     env.Str("YTDLP_PATH", d.YtDlpPath),
		FFmpegEnabled: parseBool(env.Str("FFMPEG_ENABLED", ""), d.FFmpegEnabled),
		AudioTimeout:  env.Duration("AUDIO_TIMEOUT", d.AudioTimeout),
		ScratchDir:    env.Str("SCRATCH_DIR", ""),

		CaptionLanguageSets: parseLanguageSets(env.Str("CAPTION_LANGS", ""), d.CaptionLanguageSets),
		CaptionTimeout:      env.Duration("CAPTION_TIMEOUT", d.CaptionTimeout),
		MetadataTimeout:     env.Duration("METADATA_TIMEOUT", d.MetadataTimeout),

		ChunkSize:      env.Int("CHUNK_SIZE", d.ChunkSize),
		ChunkOverlap:   env.Int("CHUNK_OVERLAP", d.ChunkOverlap),
		MapMaxChunks:   env.Int("MAP_MAX_CHUNKS", d.MapMaxChunks),
		MapConcurrency: env.Int("MAP_CONCURRENCY", d.MapConcurrency),

		SummaryCeiling:  env.Int("SUMMARY_CEILING", d.SummaryCeiling),
		ArtifactCeiling: env.Int("ARTIFACT_CEILING", d.ArtifactCeiling),
		DirectCeiling:   env.Int("DIRECT_CEILING", d.DirectCeiling),
		ChatCeiling:     env.Int("CHAT_CEILING", d.ChatCeiling),
		ScriptCeiling:   env.Int("SCRIPT_CEILING", d.ScriptCeiling),

		RedisURL:             env.Str("REDIS_URL", ""),
		CacheTTL:             env.Duration("CACHE_TTL", d.CacheTTL),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", d.CacheMaxEntries),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", d.CacheCleanupInterval),

		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(15))

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Warn("stealth client init failed, using plain HTTP", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("stealth browser client initialized")
	}
	return c
}

func newOrchestrator(c engine.Config, cache *engine.TieredCache) *insight.Orchestrator {
	llm := engine.NewLLM(c)

	var ytOpts []sources.YouTubeOption
	if c.BrowserClient != nil {
		ytOpts = append(ytOpts, sources.WithBrowserClient(c.BrowserClient))
	}
	yt := sources.NewYouTube(c.HTTPClient, ytOpts...)

	acqOpts := []insight.AcquirerOption{insight.WithTranscriptCache(cache)}
	if c.STTAPIKey != "" {
		acqOpts = append(acqOpts, insight.WithSpeechToText(
			sources.YtDlp{Path: c.YtDlpPath},
			sources.NewWhisper(c.STTAPIKey, c.STTAPIBase, c.STTModel),
		))
		slog.Info("speech-to-text fallback enabled", slog.String("model", c.STTModel))
	} else {
		slog.Info("STT_API_KEY not set, speech-to-text fallback disabled")
	}
	if c.FFmpegEnabled {
		acqOpts = append(acqOpts, insight.WithCompactor(sources.FFmpeg{}))
	}
	acq := insight.NewAcquirer(yt, insight.AcquireConfig{
		LanguageSets:   c.CaptionLanguageSets,
		MaxAudioBytes:  c.STTMaxBytes,
		STTLanguage:    c.STTLanguage,
		ScratchDir:     c.ScratchDir,
		CaptionTimeout: c.CaptionTimeout,
		AudioTimeout:   c.AudioTimeout,
		STTTimeout:     c.STTTimeout,
	}, acqOpts...)

	sum := insight.NewSummarizer(llm, insight.SummarizerConfig{
		ChunkSize:    c.ChunkSize,
		ChunkOverlap: c.ChunkOverlap,
		MaxChunks:    c.MapMaxChunks,
		Concurrency:  c.MapConcurrency,
	})
	gen := insight.NewGenerator(llm, llm.Chat(), sum, insight.CeilingsFrom(c))
	return insight.NewOrchestrator(yt, acq, gen, c.MetadataTimeout)
}

// parseLanguageSets parses "ko;en;ko,en" into [[ko] [en] [ko en]].
func parseLanguageSets(s string, def [][]string) [][]string {
	var sets [][]string
	for _, group := range strings.Split(s, ";") {
		var langs []string
		for _, l := range strings.Split(group, ",") {
			if l = strings.TrimSpace(l); l != "" {
				langs = append(langs, l)
			}
		}
		if len(langs) > 0 {
			sets = append(sets, langs)
		}
	}
	if len(sets) == 0 {
		return def
	}
	return sets
}

func parseBool(s string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return b
}
