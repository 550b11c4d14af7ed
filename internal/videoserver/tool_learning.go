package videoserver

import (
	"context"
	"strings"

	"github.com/anatolykoptev/go_vidsum/internal/engine"
	"github.com/anatolykoptev/go_vidsum/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func requireArtifactSource(in engine.ArtifactInput) error {
	if strings.TrimSpace(in.Transcript) == "" && strings.TrimSpace(in.URL) == "" {
		return engine.Errorf(engine.CodeInvalidInput, "transcript or url is required")
	}
	return nil
}

func registerMindMap(server *mcp.Server, svc Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_mindmap",
		Description: "Build a Mermaid.js mind map of a video's themes. Pass a transcript directly, or a YouTube URL to fetch one.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, toolutil.Handler("video_mindmap", func(ctx context.Context, input engine.ArtifactInput) (engine.MindMapOutput, error) {
		if err := requireArtifactSource(input); err != nil {
			return engine.MindMapOutput{}, err
		}
		return svc.MindMap(ctx, input)
	}))
}

func registerQuiz(server *mcp.Server, svc Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_quiz",
		Description: "Generate a multiple-choice quiz (question, options, answer index, explanation) from a video transcript or YouTube URL.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, toolutil.Handler("video_quiz", func(ctx context.Context, input engine.ArtifactInput) (engine.QuizOutput, error) {
		if err := requireArtifactSource(input); err != nil {
			return engine.QuizOutput{}, err
		}
		return svc.Quiz(ctx, input)
	}))
}

func registerFlashcards(server *mcp.Server, svc Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_flashcards",
		Description: "Generate term/definition study flashcards from a video transcript or YouTube URL.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, toolutil.Handler("video_flashcards", func(ctx context.Context, input engine.ArtifactInput) (engine.FlashcardsOutput, error) {
		if err := requireArtifactSource(input); err != nil {
			return engine.FlashcardsOutput{}, err
		}
		return svc.Flashcards(ctx, input)
	}))
}
