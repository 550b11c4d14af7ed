package videoserver

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/anatolykoptev/go_vidsum/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type fakeService struct {
	lastChat engine.ChatInput
	err      error
}

func (f *fakeService) Transcript(_ context.Context, in engine.TranscriptInput) (engine.TranscriptOutput, error) {
	if f.err != nil {
		return engine.TranscriptOutput{}, f.err
	}
	return engine.TranscriptOutput{
		Metadata:   engine.VideoMetadata{ID: in.URL, Title: "Go"},
		Transcript: "hello",
		Provenance: engine.ProvenanceSubtitle,
	}, nil
}

func (f *fakeService) Analyze(context.Context, engine.AnalyzeInput) (engine.AnalyzeOutput, error) {
	return engine.AnalyzeOutput{}, f.err
}

func (f *fakeService) Summarize(context.Context, engine.SummaryInput) (engine.SummaryOutput, error) {
	return engine.SummaryOutput{}, f.err
}

func (f *fakeService) MindMap(context.Context, engine.ArtifactInput) (engine.MindMapOutput, error) {
	return engine.MindMapOutput{Code: "graph TD"}, f.err
}

func (f *fakeService) Quiz(context.Context, engine.ArtifactInput) (engine.QuizOutput, error) {
	return engine.QuizOutput{Items: []engine.QuizItem{}}, f.err
}

func (f *fakeService) Flashcards(context.Context, engine.ArtifactInput) (engine.FlashcardsOutput, error) {
	return engine.FlashcardsOutput{Cards: []engine.Flashcard{}}, f.err
}

func (f *fakeService) Chat(_ context.Context, in engine.ChatInput) (engine.ChatOutput, error) {
	f.lastChat = in
	return engine.ChatOutput{Query: in.Query, Answer: "42"}, f.err
}

func connect(t *testing.T, svc Service) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	server := mcp.NewServer(&mcp.Implementation{Name: "go_vidsum", Version: "test"}, nil)
	RegisterTools(server, svc)

	clientT, serverT := mcp.NewInMemoryTransports()
	if _, err := server.Connect(ctx, serverT, nil); err != nil {
		t.Fatalf("server connect: %v", err)
	}
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { cs.Close() })
	return cs
}

func resultText(res *mcp.CallToolResult) string {
	var b strings.Builder
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

func TestRegisterTools(t *testing.T) {
	cs := connect(t, &fakeService{})
	res, err := cs.ListTools(context.Background(), &mcp.ListToolsParams{})
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
		if tool.Annotations == nil || !tool.Annotations.ReadOnlyHint {
			t.Errorf("%s: expected read-only hint", tool.Name)
		}
	}
	sort.Strings(names)
	want := []string{"video_analyze", "video_chat", "video_flashcards", "video_mindmap", "video_quiz", "video_summary", "video_transcript"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("tools = %v, want %v", names, want)
	}
	if len(want) != ToolCount {
		t.Errorf("ToolCount = %d, want %d", ToolCount, len(want))
	}
}

func TestCallTranscript(t *testing.T) {
	cs := connect(t, &fakeService{})
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "video_transcript",
		Arguments: map[string]any{"url": "dQw4w9WgXcQ"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), `"provenance":"subtitle"`) {
		t.Errorf("result missing provenance: %s", resultText(res))
	}
}

func TestCallToolErrors(t *testing.T) {
	tests := []struct {
		name string
		svc  *fakeService
		tool string
		args map[string]any
		want string
	}{
		{
			name: "missing url",
			svc:  &fakeService{},
			tool: "video_transcript",
			args: map[string]any{"url": "  "},
			want: string(engine.CodeInvalidInput),
		},
		{
			name: "artifact without source",
			svc:  &fakeService{},
			tool: "video_quiz",
			args: map[string]any{"title": "Go"},
			want: string(engine.CodeInvalidInput),
		},
		{
			name: "pipeline failure keeps code",
			svc:  &fakeService{err: engine.Errorf(engine.CodeNoCaptions, "no captions")},
			tool: "video_transcript",
			args: map[string]any{"url": "dQw4w9WgXcQ"},
			want: string(engine.CodeNoCaptions),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := connect(t, tt.svc)
			res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: tt.tool, Arguments: tt.args})
			if err != nil {
				t.Fatalf("CallTool: %v", err)
			}
			if !res.IsError {
				t.Fatal("expected tool error")
			}
			if !strings.Contains(resultText(res), tt.want) {
				t.Errorf("error text %q does not contain %q", resultText(res), tt.want)
			}
		})
	}
}

func TestCallChatPassesHistory(t *testing.T) {
	svc := &fakeService{}
	cs := connect(t, svc)
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "video_chat",
		Arguments: map[string]any{
			"query":    "why?",
			"context":  "because",
			"language": "en",
			"history":  []map[string]any{{"role": "user", "content": "hi"}},
		},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(res))
	}
	if len(svc.lastChat.History) != 1 || svc.lastChat.History[0].Content != "hi" {
		t.Errorf("history not forwarded: %+v", svc.lastChat.History)
	}
}
