package insight

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/anatolykoptev/go_vidsum/internal/engine"
)

// chatHistoryTurns is how many prior chat turns are replayed into the prompt.
const chatHistoryTurns = 6

// Ceilings are the head-truncation limits, in runes, applied per call site.
type Ceilings struct {
	Summary  int // study notes before map-reduce kicks in
	Artifact int // mind map, quiz, flashcards
	Direct   int // single-chunk analysis
	Chat     int // chat context, capped at engine.MaxChatCeiling
	Script   int // transcript excerpt returned with an analysis
}

// CeilingsFrom reads the ceilings from c.
func CeilingsFrom(c engine.Config) Ceilings {
	return Ceilings{
		Summary:  c.SummaryCeiling,
		Artifact: c.ArtifactCeiling,
		Direct:   c.DirectCeiling,
		Chat:     c.ChatCeiling,
		Script:   c.ScriptCeiling,
	}
}

// Generator turns transcripts into derived content with one or more model calls.
type Generator struct {
	llm        Completer
	chat       Completer
	summarizer *Summarizer
	ceil       Ceilings
}

// NewGenerator builds a Generator. chat answers chat questions and may be
// the same Completer as llm.
func NewGenerator(llm, chat Completer, summarizer *Summarizer, ceil Ceilings) *Generator {
	def := CeilingsFrom(engine.DefaultConfig())
	if ceil.Summary <= 0 {
		ceil.Summary = def.Summary
	}
	if ceil.Artifact <= 0 {
		ceil.Artifact = def.Artifact
	}
	if ceil.Direct <= 0 {
		ceil.Direct = def.Direct
	}
	if ceil.Chat <= 0 {
		ceil.Chat = def.Chat
	}
	if ceil.Chat > engine.MaxChatCeiling {
		ceil.Chat = engine.MaxChatCeiling
	}
	if ceil.Script <= 0 {
		ceil.Script = def.Script
	}
	if chat == nil {
		chat = llm
	}
	return &Generator{llm: llm, chat: chat, summarizer: summarizer, ceil: ceil}
}

// Analysis runs map-reduce over transcript with the analysis prompt as the
// final call and parses the result. Unparseable output yields defaults.
func (g *Generator) Analysis(ctx context.Context, title, transcript string, length engine.Length, lang string) (engine.AnalysisResult, error) {
	lang = normLanguage(lang)
	prompt := func(text string) string {
		return render(analysisTemplate, map[string]string{
			"title":      title,
			"transcript": text,
			"length":     analysisLength(normLength(string(length)), lang),
			"language":   languageInstruction(lang),
		})
	}
	sum, err := g.summarizer.WithLanguage(lang).Run(ctx, transcript, g.ceil.Direct, prompt)
	if err != nil {
		return engine.AnalysisResult{}, err
	}
	slog.Debug("artifacts: analysis done",
		slog.Int("chunks", sum.ChunkCount), slog.Int("mapped", len(sum.Summaries)), slog.Bool("reduced", sum.Reduced))
	return ParseAnalysis(sum.Output), nil
}

// Assets generates blog, social and newsletter copy from an analysis.
func (g *Generator) Assets(ctx context.Context, title string, analysis engine.AnalysisResult, lang string) (engine.GeneratedAssets, error) {
	lang = normLanguage(lang)
	prompt := render(assetsTemplate, map[string]string{
		"title":     title,
		"summary":   analysis.Summary,
		"takeaways": bulletList(analysis.Takeaways),
		"language":  languageInstruction(lang),
	})
	out, err := g.llm.Complete(ctx, prompt)
	if err != nil {
		return engine.GeneratedAssets{}, err
	}
	return ParseAssets(out, title, analysis.Summary), nil
}

// Notes writes markdown study notes. Transcripts within the summary ceiling
// go to the model in one call; longer ones are map-reduced with the notes
// prompt as the reduce step.
func (g *Generator) Notes(ctx context.Context, title, transcript string, length engine.Length, lang string) (string, error) {
	lang = normLanguage(lang)
	prompt := func(text string) string {
		return render(notesTemplate, map[string]string{
			"title":      title,
			"length":     notesLength(normLength(string(length))),
			"language":   languageInstruction(lang),
			"transcript": text,
		})
	}

	if utf8.RuneCountInString(transcript) <= g.ceil.Summary {
		out, err := g.llm.Complete(ctx, prompt(transcript))
		if err != nil {
			return "", err
		}
		return StripFences(out), nil
	}

	sum, err := g.summarizer.WithLanguage(lang).Run(ctx, transcript, g.ceil.Summary, prompt)
	if err != nil {
		return "", err
	}
	return StripFences(sum.Output), nil
}

// MindMap returns Mermaid code for the transcript.
func (g *Generator) MindMap(ctx context.Context, title, transcript string) (string, error) {
	out, err := g.llm.Complete(ctx, g.artifactPrompt(mindMapTemplate, title, transcript))
	if err != nil {
		return "", err
	}
	return ParseMindMap(out, title), nil
}

// Quiz returns multiple-choice questions about the transcript.
func (g *Generator) Quiz(ctx context.Context, title, transcript string) ([]engine.QuizItem, error) {
	out, err := g.llm.Complete(ctx, g.artifactPrompt(quizTemplate, title, transcript))
	if err != nil {
		return nil, err
	}
	return ParseQuiz(out), nil
}

// Flashcards returns term/definition cards about the transcript.
func (g *Generator) Flashcards(ctx context.Context, title, transcript string) ([]engine.Flashcard, error) {
	out, err := g.llm.Complete(ctx, g.artifactPrompt(flashcardsTemplate, title, transcript))
	if err != nil {
		return nil, err
	}
	return ParseFlashcards(out), nil
}

// Chat answers query from contextText and the most recent history turns.
func (g *Generator) Chat(ctx context.Context, query, contextText, lang string, history []engine.ChatTurn) (string, error) {
	prompt := render(chatTemplate, map[string]string{
		"language": languageInstruction(normLanguage(lang)),
		"context":  engine.Head(contextText, g.ceil.Chat),
		"history":  formatHistory(history),
		"query":    strings.TrimSpace(query),
	})
	out, err := g.chat.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Script is the transcript excerpt returned next to an analysis.
func (g *Generator) Script(transcript string) string {
	return engine.Head(transcript, g.ceil.Script)
}

func (g *Generator) artifactPrompt(tmpl, title, transcript string) string {
	return render(tmpl, map[string]string{
		"title":      title,
		"transcript": engine.Head(transcript, g.ceil.Artifact),
	})
}

func bulletList(items []string) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString("- ")
		b.WriteString(it)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatHistory(turns []engine.ChatTurn) string {
	if len(turns) > chatHistoryTurns {
		turns = turns[len(turns)-chatHistoryTurns:]
	}
	var b strings.Builder
	for _, t := range turns {
		content := strings.TrimSpace(t.Content)
		if content == "" {
			continue
		}
		role := "User"
		if strings.EqualFold(t.Role, "assistant") {
			role = "Assistant"
		}
		b.WriteString(role)
		b.WriteString(": ")
		b.WriteString(content)
		b.WriteByte('\n')
	}
	if b.Len() == 0 {
		return ""
	}
	return "\nConversation so far:\n" + b.String()
}
