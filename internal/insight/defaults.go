package insight

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_vidsum/internal/engine"
)

// DefaultAnalysis is the analysis used when the model output cannot be parsed.
// The raw text, truncated to 500 runes, becomes the summary.
func DefaultAnalysis(raw string) engine.AnalysisResult {
	return engine.AnalysisResult{
		Summary:    engine.Head(strings.TrimSpace(raw), 500),
		Takeaways:  []string{"Key insight from the video"},
		Timestamps: []engine.Timestamp{{Time: "0:00", Label: "Video start"}},
		Sentiment:  engine.Sentiment{Score: 0.7, Label: "Neutral", Description: "Informative content"},
		Keywords:   []string{"video", "content"},
	}
}

// DefaultAssets is the asset set used when generation output cannot be parsed.
func DefaultAssets(title, summary string) engine.GeneratedAssets {
	return engine.GeneratedAssets{
		Blog: "# " + title + "\n\n" + summary,
		SNS: engine.SNSPosts{
			Twitter:   "Check out this video: " + title,
			LinkedIn:  "Interesting insights from: " + title,
			Instagram: "🎬 " + title + " #video #content",
		},
		Newsletter: "Today's highlight: " + title,
	}
}

// analysisWire mirrors AnalysisResult with a pointer so a missing sentiment
// block can be told apart from a zero score.
type analysisWire struct {
	Summary    string             `json:"summary"`
	Takeaways  []string           `json:"takeaways"`
	Timestamps []engine.Timestamp `json:"timestamps"`
	Sentiment  *engine.Sentiment  `json:"sentiment"`
	Keywords   []string           `json:"keywords"`
}

// ParseAnalysis converts model output into an AnalysisResult. Unparseable
// output yields DefaultAnalysis(raw); missing fields are filled from it.
func ParseAnalysis(raw string) engine.AnalysisResult {
	def := DefaultAnalysis(raw)
	w, ok := ParseJSON[analysisWire](raw)
	if !ok {
		engine.IncrParseFallback()
		slog.Debug("parse: analysis fell back to defaults", slog.Int("raw_len", len(raw)))
		return def
	}

	out := engine.AnalysisResult{
		Summary:    w.Summary,
		Takeaways:  nonEmpty(w.Takeaways),
		Timestamps: validTimestamps(w.Timestamps),
		Keywords:   nonEmpty(w.Keywords),
	}
	if strings.TrimSpace(out.Summary) == "" {
		out.Summary = def.Summary
	}
	if len(out.Takeaways) == 0 {
		out.Takeaways = def.Takeaways
	}
	if len(out.Timestamps) == 0 {
		out.Timestamps = def.Timestamps
	}
	if len(out.Keywords) == 0 {
		out.Keywords = def.Keywords
	}
	if w.Sentiment == nil {
		out.Sentiment = def.Sentiment
	} else {
		out.Sentiment = *w.Sentiment
		if out.Sentiment.Label == "" {
			out.Sentiment.Label = def.Sentiment.Label
		}
		if out.Sentiment.Description == "" {
			out.Sentiment.Description = def.Sentiment.Description
		}
	}
	return out
}

// ParseAssets converts model output into GeneratedAssets, filling anything
// missing from DefaultAssets(title, summary).
func ParseAssets(raw, title, summary string) engine.GeneratedAssets {
	def := DefaultAssets(title, summary)
	a, ok := ParseJSON[engine.GeneratedAssets](raw)
	if !ok {
		engine.IncrParseFallback()
		slog.Debug("parse: assets fell back to defaults", slog.Int("raw_len", len(raw)))
		return def
	}
	fill(&a.Blog, def.Blog)
	fill(&a.SNS.Twitter, def.SNS.Twitter)
	fill(&a.SNS.LinkedIn, def.SNS.LinkedIn)
	fill(&a.SNS.Instagram, def.SNS.Instagram)
	fill(&a.Newsletter, def.Newsletter)
	return a
}

// ParseQuiz returns the valid quiz items in raw. Items without a question,
// with fewer than two options, or whose answer index is out of range are dropped.
func ParseQuiz(raw string) []engine.QuizItem {
	// Some models answer with a bare array instead of the wrapping object.
	items, ok := parseArray[engine.QuizItem](raw)
	if !ok {
		q, objOK := ParseJSON[struct {
			Items     []engine.QuizItem `json:"items"`
			Questions []engine.QuizItem `json:"questions"`
		}](raw)
		if !objOK {
			engine.IncrParseFallback()
			return []engine.QuizItem{}
		}
		items = q.Items
		if len(items) == 0 {
			items = q.Questions
		}
	}
	out := make([]engine.QuizItem, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Question) == "" || len(it.Options) < 2 {
			continue
		}
		if it.AnswerIndex < 0 || it.AnswerIndex >= len(it.Options) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// ParseFlashcards returns the complete cards in raw; malformed output gives an empty list.
func ParseFlashcards(raw string) []engine.Flashcard {
	cards, ok := parseArray[engine.Flashcard](raw)
	if !ok {
		f, objOK := ParseJSON[struct {
			Cards      []engine.Flashcard `json:"cards"`
			Flashcards []engine.Flashcard `json:"flashcards"`
		}](raw)
		if !objOK {
			engine.IncrParseFallback()
			return []engine.Flashcard{}
		}
		cards = f.Cards
		if len(cards) == 0 {
			cards = f.Flashcards
		}
	}
	out := make([]engine.Flashcard, 0, len(cards))
	for _, c := range cards {
		if strings.TrimSpace(c.Term) != "" && strings.TrimSpace(c.Definition) != "" {
			out = append(out, c)
		}
	}
	return out
}

// ParseMindMap strips fences from Mermaid output. Output that is not a
// Mermaid graph is replaced by a single-node diagram titled title.
func ParseMindMap(raw, title string) string {
	code := StripFences(raw)
	if !strings.HasPrefix(code, "graph") && !strings.HasPrefix(code, "flowchart") && !strings.HasPrefix(code, "mindmap") {
		engine.IncrParseFallback()
		return DefaultMindMap(title)
	}
	return code
}

// DefaultMindMap is a single-node Mermaid diagram.
func DefaultMindMap(title string) string {
	label := strings.NewReplacer(`"`, "'", "[", "(", "]", ")").Replace(strings.TrimSpace(title))
	if label == "" {
		label = "Video"
	}
	return fmt.Sprintf("graph TD\n    A[\"%s\"]", label)
}

func parseArray[T any](raw string) ([]T, bool) {
	return ParseJSON[[]T](raw)
}

func fill(dst *string, def string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = def
	}
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func validTimestamps(in []engine.Timestamp) []engine.Timestamp {
	out := make([]engine.Timestamp, 0, len(in))
	for _, ts := range in {
		if strings.TrimSpace(ts.Time) != "" || strings.TrimSpace(ts.Label) != "" {
			out = append(out, ts)
		}
	}
	return out
}
