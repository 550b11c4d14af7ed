package insight

import (
	"strings"

	"github.com/anatolykoptev/go_vidsum/internal/engine"
)

// Supported output languages.
const (
	LanguageKorean  = "ko"
	LanguageEnglish = "en"
)

func normLanguage(lang string) string {
	if strings.EqualFold(strings.TrimSpace(lang), LanguageEnglish) {
		return LanguageEnglish
	}
	return LanguageKorean
}

func normLength(l string) engine.Length {
	switch engine.Length(strings.ToUpper(strings.TrimSpace(l))) {
	case engine.LengthShort:
		return engine.LengthShort
	case engine.LengthLong:
		return engine.LengthLong
	}
	return engine.LengthMedium
}

func languageInstruction(lang string) string {
	if lang == LanguageEnglish {
		return "Answer in English."
	}
	return "반드시 한국어로 답변하세요."
}

// analysisLength is the target size of the analysis summary field.
func analysisLength(l engine.Length, lang string) string {
	guides := map[string]map[engine.Length]string{
		LanguageKorean: {
			engine.LengthShort:  "2-3문장",
			engine.LengthMedium: "1개 단락",
			engine.LengthLong:   "2-3개 단락",
		},
		LanguageEnglish: {
			engine.LengthShort:  "2-3 sentences",
			engine.LengthMedium: "1 paragraph",
			engine.LengthLong:   "2-3 paragraphs",
		},
	}
	return guides[lang][l]
}

// notesLength is the style instruction for study notes.
func notesLength(l engine.Length) string {
	switch l {
	case engine.LengthShort:
		return "Brief and concise. Focus only on the most essential points."
	case engine.LengthLong:
		return "Detailed and in-depth. Cover every significant point with supporting detail."
	}
	return "Moderate and standard. Cover the main points with brief explanations."
}

// render fills {name} placeholders in tmpl. Values are inserted verbatim and
// never rescanned, so transcript text containing braces is safe.
func render(tmpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

const chunkSummaryTemplate = `Summarize this part ({chunk_num}/{total_chunks}) of a video transcript.
Keep every key fact, name, number and argument. Do not add information that is not in the text.
{language}

Transcript part:
{chunk}`

const analysisTemplate = `You are an expert video content analyst. Analyze the video below and respond with JSON only.

Title: {title}

Content:
{transcript}

Return exactly this JSON structure:
{
  "summary": "summary of the video ({length})",
  "takeaways": ["key takeaway", "..."],
  "timestamps": [{"time": "M:SS", "label": "what happens"}],
  "sentiment": {"score": 0.0, "label": "Positive | Neutral | Negative", "description": "one sentence"},
  "keywords": ["keyword", "..."]
}

Rules: 3-5 takeaways, 3-6 timestamps, 5-8 keywords, sentiment score between -1 and 1.
{language}`

const assetsTemplate = `Create marketing content for the video below. Respond with JSON only.

Title: {title}
Summary: {summary}
Key takeaways:
{takeaways}

Return exactly this JSON structure:
{
  "blog": "markdown blog post with a title heading and 3-4 sections",
  "sns": {
    "twitter": "tweet under 280 characters with hashtags",
    "linkedin": "professional LinkedIn post",
    "instagram": "Instagram caption with emojis and hashtags"
  },
  "newsletter": "short newsletter section"
}
{language}`

const notesTemplate = `You are an expert note taker. Turn the video transcript below into well-structured study notes in Markdown.

Title: {title}
Style: {length}

Use headings, bullet points and bold key terms. End with a short "Key Takeaways" section.
{language}

Transcript:
{transcript}`

const mindMapTemplate = `Create a mind map of the video below as Mermaid.js code.

Title: {title}

Use "graph TD". The root node is the video topic; branch into 4-6 main themes with 2-4 sub-points each.
Keep node labels short and do not use parentheses or quotes inside labels.
Output only the Mermaid code.

Transcript:
{transcript}`

const quizTemplate = `Create a multiple-choice quiz of 5 questions from the video transcript below. Respond with JSON only.

Title: {title}

Return exactly this JSON structure:
{
  "items": [
    {"question": "...", "options": ["A", "B", "C", "D"], "answer_index": 0, "explanation": "..."}
  ]
}

Transcript:
{transcript}`

const flashcardsTemplate = `Create 8-12 study flashcards from the video transcript below. Respond with JSON only.

Title: {title}

Return exactly this JSON structure:
{
  "cards": [
    {"term": "...", "definition": "..."}
  ]
}

Transcript:
{transcript}`

const chatTemplate = `You are a helpful assistant answering questions about a video.
Answer only from the context below. If the context does not contain the answer, say so.
{language}

Context:
{context}
{history}
Question: {query}`
