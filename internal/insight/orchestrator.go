package insight

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go_vidsum/internal/engine"
	"github.com/anatolykoptev/go_vidsum/internal/engine/sources"
)

// Orchestrator runs whole requests: resolve the reference, fetch metadata,
// acquire the transcript and generate the requested content. Every error it
// returns is an *engine.Error.
type Orchestrator struct {
	meta            MetadataFetcher
	acq             *Acquirer
	gen             *Generator
	metadataTimeout time.Duration
}

// NewOrchestrator wires the pipeline stages together.
func NewOrchestrator(meta MetadataFetcher, acq *Acquirer, gen *Generator, metadataTimeout time.Duration) *Orchestrator {
	return &Orchestrator{meta: meta, acq: acq, gen: gen, metadataTimeout: metadataTimeout}
}

// video is a resolved reference with its metadata and transcript.
type video struct {
	meta       engine.VideoMetadata
	transcript engine.Transcript
}

func (o *Orchestrator) load(ctx context.Context, ref string) (video, error) {
	id, err := sources.ResolveVideoID(ref)
	if err != nil {
		return video{}, err
	}

	mctx, cancel := withTimeout(ctx, o.metadataTimeout)
	meta := o.meta.Fetch(mctx, id)
	cancel()

	t, err := o.acq.Acquire(ctx, id)
	if err != nil {
		return video{}, err
	}
	slog.Debug("orchestrator: transcript ready", slog.String("video_id", id),
		slog.String("provenance", string(t.Provenance)), slog.Int("chars", len(t.Text)))
	return video{meta: meta, transcript: t}, nil
}

// Transcript returns metadata and the transcript only.
func (o *Orchestrator) Transcript(ctx context.Context, in engine.TranscriptInput) (engine.TranscriptOutput, error) {
	v, err := o.load(ctx, in.URL)
	if err != nil {
		return engine.TranscriptOutput{}, fail(err)
	}
	return engine.TranscriptOutput{
		Metadata:   v.meta,
		Transcript: v.transcript.Text,
		Provenance: v.transcript.Provenance,
	}, nil
}

// Analyze produces the structured analysis and generated assets for a video.
func (o *Orchestrator) Analyze(ctx context.Context, in engine.AnalyzeInput) (engine.AnalyzeOutput, error) {
	var out engine.AnalyzeOutput
	err := engine.TrackOperation(ctx, "analyze", 2*time.Minute, func(ctx context.Context) error {
		v, err := o.load(ctx, in.URL)
		if err != nil {
			return err
		}
		length := normLength(in.Length)
		analysis, err := o.gen.Analysis(ctx, v.meta.Title, v.transcript.Text, length, in.Language)
		if err != nil {
			return err
		}
		assets, err := o.gen.Assets(ctx, v.meta.Title, analysis, in.Language)
		if err != nil {
			return err
		}
		out = engine.AnalyzeOutput{
			Metadata:   v.meta,
			Analysis:   analysis,
			Assets:     assets,
			Script:     o.gen.Script(v.transcript.Text),
			Provenance: v.transcript.Provenance,
		}
		return nil
	})
	if err != nil {
		return engine.AnalyzeOutput{}, fail(err)
	}
	return out, nil
}

// Summarize writes markdown study notes for a video.
func (o *Orchestrator) Summarize(ctx context.Context, in engine.SummaryInput) (engine.SummaryOutput, error) {
	v, err := o.load(ctx, in.URL)
	if err != nil {
		return engine.SummaryOutput{}, fail(err)
	}
	length, lang := normLength(in.Length), normLanguage(in.Language)
	notes, err := o.gen.Notes(ctx, v.meta.Title, v.transcript.Text, length, lang)
	if err != nil {
		return engine.SummaryOutput{}, fail(err)
	}
	return engine.SummaryOutput{
		Metadata:   v.meta,
		Summary:    notes,
		Transcript: v.transcript.Text,
		Provenance: v.transcript.Provenance,
		Length:     length,
		Language:   lang,
	}, nil
}

// artifactSource returns the transcript and title an artifact is built from.
// An explicit transcript wins; otherwise the URL is resolved and acquired.
func (o *Orchestrator) artifactSource(ctx context.Context, in engine.ArtifactInput) (title, transcript string, err error) {
	if strings.TrimSpace(in.Transcript) != "" {
		return in.Title, in.Transcript, nil
	}
	if strings.TrimSpace(in.URL) == "" {
		return "", "", engine.Errorf(engine.CodeInvalidInput, "transcript or url is required")
	}
	v, err := o.load(ctx, in.URL)
	if err != nil {
		return "", "", err
	}
	title = in.Title
	if title == "" {
		title = v.meta.Title
	}
	return title, v.transcript.Text, nil
}

// MindMap returns a Mermaid mind map.
func (o *Orchestrator) MindMap(ctx context.Context, in engine.ArtifactInput) (engine.MindMapOutput, error) {
	title, text, err := o.artifactSource(ctx, in)
	if err != nil {
		return engine.MindMapOutput{}, fail(err)
	}
	code, err := o.gen.MindMap(ctx, title, text)
	if err != nil {
		return engine.MindMapOutput{}, fail(err)
	}
	return engine.MindMapOutput{Code: code}, nil
}

// Quiz returns multiple-choice questions.
func (o *Orchestrator) Quiz(ctx context.Context, in engine.ArtifactInput) (engine.QuizOutput, error) {
	title, text, err := o.artifactSource(ctx, in)
	if err != nil {
		return engine.QuizOutput{}, fail(err)
	}
	items, err := o.gen.Quiz(ctx, title, text)
	if err != nil {
		return engine.QuizOutput{}, fail(err)
	}
	return engine.QuizOutput{Items: items}, nil
}

// Flashcards returns study cards.
func (o *Orchestrator) Flashcards(ctx context.Context, in engine.ArtifactInput) (engine.FlashcardsOutput, error) {
	title, text, err := o.artifactSource(ctx, in)
	if err != nil {
		return engine.FlashcardsOutput{}, fail(err)
	}
	cards, err := o.gen.Flashcards(ctx, title, text)
	if err != nil {
		return engine.FlashcardsOutput{}, fail(err)
	}
	return engine.FlashcardsOutput{Cards: cards}, nil
}

// Chat answers a question grounded in the supplied context.
func (o *Orchestrator) Chat(ctx context.Context, in engine.ChatInput) (engine.ChatOutput, error) {
	if strings.TrimSpace(in.Query) == "" {
		return engine.ChatOutput{}, engine.Errorf(engine.CodeInvalidInput, "query is required")
	}
	answer, err := o.gen.Chat(ctx, in.Query, in.Context, in.Language, in.History)
	if err != nil {
		return engine.ChatOutput{}, fail(err)
	}
	return engine.ChatOutput{Query: in.Query, Answer: answer}, nil
}

func fail(err error) error {
	e := engine.AsError(err)
	slog.Warn("orchestrator: request failed", slog.String("code", string(e.Code)), slog.Any("error", err))
	return e
}
