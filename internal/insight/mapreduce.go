package insight

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/anatolykoptev/go_vidsum/internal/engine"
)

// Completer sends one prompt to a language model. Errors are *engine.Error
// values with an ERR_LLM_* code.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// SummarySeparator joins chunk summaries before the reduce call.
const SummarySeparator = "\n\n---\n\n"

// PromptFunc renders a prompt around the given text.
type PromptFunc func(text string) string

// Summarizer fits arbitrarily long transcripts into a bounded model input by
// summarizing chunks (map) and combining the summaries (reduce).
type Summarizer struct {
	llm         Completer
	splitter    *Splitter
	mapPrompt   func(c Chunk) string
	maxChunks   int
	concurrency int
}

// SummarizerConfig tunes the map phase.
type SummarizerConfig struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
	MaxChunks    int // 0 = every chunk is mapped
	Concurrency  int // <= 1 = sequential
}

// NewSummarizer builds a Summarizer whose chunk summaries are written in Korean.
func NewSummarizer(llm Completer, cfg SummarizerConfig) *Summarizer {
	s := &Summarizer{
		llm:         llm,
		splitter:    NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap, cfg.Separators),
		maxChunks:   cfg.MaxChunks,
		concurrency: cfg.Concurrency,
	}
	return s.WithLanguage(LanguageKorean)
}

// WithLanguage returns a copy of s whose chunk summaries are written in lang.
func (s *Summarizer) WithLanguage(lang string) *Summarizer {
	cp := *s
	lang = normLanguage(lang)
	cp.mapPrompt = func(c Chunk) string { return chunkPrompt(c, lang) }
	return &cp
}

// Condensed is the outcome of the map phase.
type Condensed struct {
	Combined   string   // text handed to the final call
	Summaries  []string // one per mapped chunk, in chunk order
	ChunkCount int      // chunks produced by the splitter
}

// Condense splits text and summarizes the first maxChunks chunks.
// When text yields at most one chunk no model call is made and Combined is
// text itself. Exactly one summary is used as Combined directly; more are
// joined with SummarySeparator. Combined is always head-truncated to
// directLimit runes.
func (s *Summarizer) Condense(ctx context.Context, text string, directLimit int) (Condensed, error) {
	chunks := s.splitter.Split(text)
	if len(chunks) <= 1 {
		return Condensed{Combined: engine.Head(text, directLimit), ChunkCount: len(chunks)}, nil
	}

	mapped := chunks
	if s.maxChunks > 0 && len(mapped) > s.maxChunks {
		mapped = mapped[:s.maxChunks]
		slog.Debug("mapreduce: chunk cap applied",
			slog.Int("chunks", len(chunks)), slog.Int("mapped", len(mapped)))
	}

	summaries, err := s.mapChunks(ctx, mapped)
	if err != nil {
		return Condensed{}, err
	}
	return Condensed{
		Combined:   engine.Head(strings.Join(summaries, SummarySeparator), directLimit),
		Summaries:  summaries,
		ChunkCount: len(chunks),
	}, nil
}

// mapChunks issues one call per chunk. Results are written back by index so
// their order matches the chunks regardless of completion order. The first
// failure cancels the calls still in flight.
func (s *Summarizer) mapChunks(ctx context.Context, chunks []Chunk) ([]string, error) {
	summaries := make([]string, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	limit := s.concurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, c := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			engine.IncrMapCalls()
			out, err := s.llm.Complete(gctx, s.mapPrompt(c))
			if err != nil {
				slog.Debug("mapreduce: chunk failed", slog.Int("chunk", c.Index), slog.Any("error", err))
				return err
			}
			summaries[i] = strings.TrimSpace(out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// Summary is the outcome of a full map-reduce run.
type Summary struct {
	Condensed
	Output  string // final model output
	Reduced bool   // true when Output came from a reduce call over joined summaries
}

// Run condenses text and issues exactly one final call built by prompt:
// the reduce call over the joined summaries when there are several, or a
// direct call over the single combined text otherwise.
func (s *Summarizer) Run(ctx context.Context, text string, directLimit int, prompt PromptFunc) (Summary, error) {
	cond, err := s.Condense(ctx, text, directLimit)
	if err != nil {
		return Summary{}, err
	}
	reduced := len(cond.Summaries) > 1
	if reduced {
		engine.IncrReduceCalls()
	}
	out, err := s.llm.Complete(ctx, prompt(cond.Combined))
	if err != nil {
		return Summary{}, err
	}
	return Summary{Condensed: cond, Output: out, Reduced: reduced}, nil
}

func chunkPrompt(c Chunk, lang string) string {
	return render(chunkSummaryTemplate, map[string]string{
		"chunk":        c.Text,
		"chunk_num":    strconv.Itoa(c.Index + 1),
		"total_chunks": strconv.Itoa(c.Total),
		"language":     languageInstruction(lang),
	})
}
