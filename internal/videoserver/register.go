package videoserver

import (
	"context"

	"github.com/anatolykoptev/go_vidsum/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Service runs the video pipeline behind the tools. *insight.Orchestrator implements it.
type Service interface {
	Transcript(ctx context.Context, in engine.TranscriptInput) (engine.TranscriptOutput, error)
	Analyze(ctx context.Context, in engine.AnalyzeInput) (engine.AnalyzeOutput, error)
	Summarize(ctx context.Context, in engine.SummaryInput) (engine.SummaryOutput, error)
	MindMap(ctx context.Context, in engine.ArtifactInput) (engine.MindMapOutput, error)
	Quiz(ctx context.Context, in engine.ArtifactInput) (engine.QuizOutput, error)
	Flashcards(ctx context.Context, in engine.ArtifactInput) (engine.FlashcardsOutput, error)
	Chat(ctx context.Context, in engine.ChatInput) (engine.ChatOutput, error)
}

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 7

// RegisterTools registers all video tools on the given MCP server:
// video_transcript, video_analyze, video_summary, video_mindmap, video_quiz,
// video_flashcards, video_chat.
func RegisterTools(server *mcp.Server, svc Service) {
	registerTranscript(server, svc)
	registerAnalyze(server, svc)
	registerSummary(server, svc)
	registerMindMap(server, svc)
	registerQuiz(server, svc)
	registerFlashcards(server, svc)
	registerChat(server, svc)
}
