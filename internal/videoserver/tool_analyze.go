package videoserver

import (
	"context"

	"github.com/anatolykoptev/go_vidsum/internal/engine"
	"github.com/anatolykoptev/go_vidsum/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerAnalyze(server *mcp.Server, svc Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_analyze",
		Description: "Analyze a YouTube video. Returns a summary, key takeaways, timestamps, sentiment and keywords, plus generated content (blog post, Twitter/LinkedIn/Instagram posts, newsletter blurb) and the opening of the transcript. Long videos are summarized chunk by chunk before the final analysis.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, toolutil.Handler("video_analyze", func(ctx context.Context, input engine.AnalyzeInput) (engine.AnalyzeOutput, error) {
		if err := toolutil.Require("url", input.URL); err != nil {
			return engine.AnalyzeOutput{}, err
		}
		return svc.Analyze(ctx, input)
	}))
}

func registerSummary(server *mcp.Server, svc Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_summary",
		Description: "Write structured Markdown study notes for a YouTube video. Length SHORT, MEDIUM or LONG; language ko or en. Returns the notes together with the transcript they were written from.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, toolutil.Handler("video_summary", func(ctx context.Context, input engine.SummaryInput) (engine.SummaryOutput, error) {
		if err := toolutil.Require("url", input.URL); err != nil {
			return engine.SummaryOutput{}, err
		}
		return svc.Summarize(ctx, input)
	}))
}
