package sources

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Whisper transcribes audio files through an OpenAI-compatible
// /audio/transcriptions endpoint (OpenAI, Groq, local whisper servers).
type Whisper struct {
	client openai.Client
	model  string
}

// NewWhisper builds a Whisper client. baseURL may be empty for the OpenAI default.
func NewWhisper(apiKey, baseURL, model string) *Whisper {
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(1)}
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Whisper{client: openai.NewClient(opts...), model: model}
}

// Transcribe uploads filePath and returns the recognised text.
// languageHint is an ISO-639-1 code; empty lets the service detect it.
func (w *Whisper) Transcribe(ctx context.Context, filePath, languageHint string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	params := openai.AudioTranscriptionNewParams{
		File:  f,
		Model: openai.AudioModel(w.model),
	}
	if languageHint != "" {
		params.Language = openai.String(languageHint)
	}

	resp, err := w.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("whisper %s: %w", w.model, err)
	}
	return strings.TrimSpace(resp.Text), nil
}
