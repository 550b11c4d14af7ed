package videoserver

import (
	"context"

	"github.com/anatolykoptev/go_vidsum/internal/engine"
	"github.com/anatolykoptev/go_vidsum/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTranscript(server *mcp.Server, svc Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_transcript",
		Description: "Get the full transcript of a YouTube video. Tries published captions (Korean, then English, then any language) and falls back to downloading the audio and running speech-to-text. Returns video metadata, the transcript text and its provenance (subtitle or speech_to_text).",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, toolutil.Handler("video_transcript", func(ctx context.Context, input engine.TranscriptInput) (engine.TranscriptOutput, error) {
		if err := toolutil.Require("url", input.URL); err != nil {
			return engine.TranscriptOutput{}, err
		}
		return svc.Transcript(ctx, input)
	}))
}
