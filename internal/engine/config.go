package engine

import (
	"net/http"
	"time"
)

// Config holds all service configuration, injected from main.
// Nothing below main reads the environment; each client receives the
// fields it needs through its constructor.
type Config struct {
	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int
	LLMRequestsPerSec  float64 // 0 = unlimited
	LLMTimeout         time.Duration

	ChatTemperature float64
	ChatMaxTokens   int

	STTAPIKey   string
	STTAPIBase  string
	STTModel    string
	STTLanguage string
	STTMaxBytes int64
	STTTimeout  time.Duration

	YtDlpPath     string
	FFmpegEnabled bool
	AudioTimeout  time.Duration
	ScratchDir    string // "" = os.TempDir()

	CaptionLanguageSets [][]string
	CaptionTimeout      time.Duration
	MetadataTimeout     time.Duration

	ChunkSize      int
	ChunkOverlap   int
	MapMaxChunks   int // 0 = all chunks
	MapConcurrency int

	SummaryCeiling  int
	ArtifactCeiling int
	DirectCeiling   int
	ChatCeiling     int
	ScriptCeiling   int

	RedisURL             string
	CacheTTL             time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	HTTPClient    *http.Client
	BrowserClient *BrowserClient // nil = plain HTTP client for watch pages
}

// DefaultConfig returns the values used when the environment leaves a key unset.
func DefaultConfig() Config {
	return Config{
		LLMAPIBase:           "https://api.groq.com/openai/v1",
		LLMModel:             "llama-3.3-70b-versatile",
		LLMTemperature:       0.3,
		LLMMaxTokens:         4096,
		LLMTimeout:           60 * time.Second,
		ChatTemperature:      0.5,
		ChatMaxTokens:        1024,
		STTAPIBase:           "https://api.groq.com/openai/v1",
		STTModel:             "whisper-large-v3",
		STTLanguage:          "ko",
		STTMaxBytes:          25 * 1024 * 1024,
		STTTimeout:           5 * time.Minute,
		YtDlpPath:            "yt-dlp",
		FFmpegEnabled:        true,
		AudioTimeout:         5 * time.Minute,
		CaptionLanguageSets:  [][]string{{"ko"}, {"en"}, {"ko", "en"}},
		CaptionTimeout:       30 * time.Second,
		MetadataTimeout:      15 * time.Second,
		ChunkSize:            4000,
		ChunkOverlap:         200,
		MapMaxChunks:         5,
		MapConcurrency:       1,
		SummaryCeiling:       25000,
		ArtifactCeiling:      20000,
		DirectCeiling:        8000,
		ChatCeiling:          4000,
		ScriptCeiling:        5000,
		CacheTTL:             6 * time.Hour,
		CacheMaxEntries:      500,
		CacheCleanupInterval: 5 * time.Minute,
	}
}

// MaxChatCeiling bounds the chat context window regardless of configuration.
const MaxChatCeiling = 15000
