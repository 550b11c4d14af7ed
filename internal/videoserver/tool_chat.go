package videoserver

import (
	"context"

	"github.com/anatolykoptev/go_vidsum/internal/engine"
	"github.com/anatolykoptev/go_vidsum/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerChat(server *mcp.Server, svc Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_chat",
		Description: "Answer a question about a video using only the supplied context (a transcript or summary). Pass previous turns in history to keep a conversation going.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, toolutil.Handler("video_chat", func(ctx context.Context, input engine.ChatInput) (engine.ChatOutput, error) {
		if err := toolutil.Require("query", input.Query); err != nil {
			return engine.ChatOutput{}, err
		}
		if err := toolutil.Require("context", input.Context); err != nil {
			return engine.ChatOutput{}, err
		}
		return svc.Chat(ctx, input)
	}))
}
