package engine

// --- Tool inputs ---

type TranscriptInput struct {
	URL string `json:"url" jsonschema:"YouTube video URL (watch, youtu.be, embed, shorts) or 11-character video ID"`
}

type AnalyzeInput struct {
	URL      string `json:"url" jsonschema:"YouTube video URL or 11-character video ID"`
	Length   string `json:"length,omitempty" jsonschema:"Summary length: SHORT, MEDIUM (default) or LONG"`
	Language string `json:"language,omitempty" jsonschema:"Output language: ko (default) or en"`
}

type SummaryInput struct {
	URL      string `json:"url" jsonschema:"YouTube video URL or 11-character video ID"`
	Length   string `json:"length,omitempty" jsonschema:"Notes length: SHORT, MEDIUM (default) or LONG"`
	Language string `json:"language,omitempty" jsonschema:"Output language: ko (default) or en"`
}

type ArtifactInput struct {
	URL        string `json:"url,omitempty" jsonschema:"YouTube video URL or ID. Used when transcript is empty"`
	Transcript string `json:"transcript,omitempty" jsonschema:"Transcript text. Takes precedence over url"`
	Title      string `json:"title,omitempty" jsonschema:"Video title used as context"`
}

type ChatInput struct {
	Query    string     `json:"query" jsonschema:"Question about the video"`
	Context  string     `json:"context" jsonschema:"Transcript or summary the answer must be grounded in"`
	Language string     `json:"language,omitempty" jsonschema:"Answer language: ko (default) or en"`
	History  []ChatTurn `json:"history,omitempty" jsonschema:"Previous turns, oldest first"`
}

// --- Tool outputs ---

type TranscriptOutput struct {
	Metadata   VideoMetadata `json:"metadata"`
	Transcript string        `json:"transcript"`
	Provenance Provenance    `json:"provenance"`
}

type AnalyzeOutput struct {
	Metadata   VideoMetadata   `json:"metadata"`
	Analysis   AnalysisResult  `json:"analysis"`
	Assets     GeneratedAssets `json:"assets"`
	Script     string          `json:"script"`
	Provenance Provenance      `json:"provenance"`
}

type SummaryOutput struct {
	Metadata   VideoMetadata `json:"metadata"`
	Summary    string        `json:"summary"`
	Transcript string        `json:"transcript"`
	Provenance Provenance    `json:"provenance"`
	Length     Length        `json:"length"`
	Language   string        `json:"language"`
}

type MindMapOutput struct {
	Code string `json:"code"`
}

type QuizOutput struct {
	Items []QuizItem `json:"items"`
}

type FlashcardsOutput struct {
	Cards []Flashcard `json:"cards"`
}

type ChatOutput struct {
	Query  string `json:"query"`
	Answer string `json:"answer"`
}
