package engine

// Provenance records how a transcript was obtained.
type Provenance string

const (
	ProvenanceSubtitle     Provenance = "subtitle"
	ProvenanceSpeechToText Provenance = "speech_to_text"
)

// Transcript is the full text of a video's speech.
type Transcript struct {
	Text       string     `json:"text"`
	Provenance Provenance `json:"provenance"`
}

// CaptionTrack describes one caption track offered for a video.
type CaptionTrack struct {
	VideoID      string `json:"video_id"`
	LanguageCode string `json:"language_code"`
	Name         string `json:"name,omitempty"`
	Generated    bool   `json:"generated"`
	URL          string `json:"-"`
}

// VideoMetadata is the descriptive record shown next to generated content.
type VideoMetadata struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	Title        string `json:"title"`
	Thumbnail    string `json:"thumbnail"`
	Duration     string `json:"duration"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
	Views        int64  `json:"views"`
}

// Length selects how verbose generated text should be.
type Length string

const (
	LengthShort  Length = "SHORT"
	LengthMedium Length = "MEDIUM"
	LengthLong   Length = "LONG"
)

// Timestamp is a labelled point in the video.
type Timestamp struct {
	Time  string `json:"time"`
	Label string `json:"label"`
}

// Sentiment is the overall tone of a video.
type Sentiment struct {
	Score       float64 `json:"score"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
}

// AnalysisResult is the structured analysis of a transcript. Always fully populated.
type AnalysisResult struct {
	Summary    string      `json:"summary"`
	Takeaways  []string    `json:"takeaways"`
	Timestamps []Timestamp `json:"timestamps"`
	Sentiment  Sentiment   `json:"sentiment"`
	Keywords   []string    `json:"keywords"`
}

// SNSPosts holds short social posts.
type SNSPosts struct {
	Twitter   string `json:"twitter"`
	LinkedIn  string `json:"linkedin"`
	Instagram string `json:"instagram"`
}

// GeneratedAssets is the content set derived from an analysis. Always fully populated.
type GeneratedAssets struct {
	Blog       string   `json:"blog"`
	SNS        SNSPosts `json:"sns"`
	Newsletter string   `json:"newsletter"`
}

// QuizItem is one multiple-choice question.
type QuizItem struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"answer_index"`
	Explanation string   `json:"explanation"`
}

// Flashcard is one term/definition pair.
type Flashcard struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// ChatTurn is one prior message in a chat about a video.
type ChatTurn struct {
	Role    string `json:"role" jsonschema:"user or assistant"`
	Content string `json:"content" jsonschema:"Message text"`
}
