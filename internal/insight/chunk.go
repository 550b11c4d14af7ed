package insight

import (
	"strings"
)

// DefaultSeparators is the separator priority used by NewSplitter when none is given.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Chunk is a contiguous slice of a transcript. Start and End are rune offsets
// into the source text; consecutive chunks may overlap.
type Chunk struct {
	Text  string `json:"text"`
	Index int    `json:"index"`
	Total int    `json:"total"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Splitter is a recursive character splitter. Lengths are counted in runes.
type Splitter struct {
	size       int
	overlap    int
	separators []string
}

// NewSplitter returns a splitter producing chunks of at most size runes with
// up to overlap runes shared between neighbours.
func NewSplitter(size, overlap int, separators []string) *Splitter {
	if size <= 0 {
		size = 4000
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	if len(separators) == 0 {
		separators = DefaultSeparators
	}
	return &Splitter{size: size, overlap: overlap, separators: separators}
}

// span is a half-open rune range [start, end) of the source.
type span struct{ start, end int }

func (s span) len() int { return s.end - s.start }

// Split divides text into ordered chunks. It is deterministic: equal inputs
// give equal outputs. Every chunk is at most size runes long unless it is an
// atomic unit the separators cannot break further.
func (sp *Splitter) Split(text string) []Chunk {
	if text == "" {
		return nil
	}
	src := []rune(text)
	spans := sp.split(src, span{0, len(src)}, sp.separators)

	chunks := make([]Chunk, len(spans))
	for i, s := range spans {
		chunks[i] = Chunk{
			Text:  string(src[s.start:s.end]),
			Index: i,
			Total: len(spans),
			Start: s.start,
			End:   s.end,
		}
	}
	return chunks
}

func (sp *Splitter) split(src []rune, whole span, separators []string) []span {
	sep, rest := pickSeparator(src[whole.start:whole.end], separators)
	pieces := splitKeep(src, whole, sep)

	var out, good []span
	for _, p := range pieces {
		if p.len() <= sp.size {
			good = append(good, p)
			continue
		}
		if len(good) > 0 {
			out = append(out, sp.merge(good)...)
			good = nil
		}
		if len(rest) == 0 {
			out = append(out, p)
			continue
		}
		out = append(out, sp.split(src, p, rest)...)
	}
	if len(good) > 0 {
		out = append(out, sp.merge(good)...)
	}
	return out
}

// pickSeparator returns the first separator present in text ("" always
// matches) and the separators after it.
func pickSeparator(text []rune, separators []string) (string, []string) {
	s := string(text)
	for i, sep := range separators {
		if sep == "" || strings.Contains(s, sep) {
			return sep, separators[i+1:]
		}
	}
	return "", nil
}

// splitKeep cuts whole at every occurrence of sep, keeping the separator at
// the end of the preceding piece so the pieces tile whole exactly.
func splitKeep(src []rune, whole span, sep string) []span {
	if sep == "" {
		pieces := make([]span, 0, whole.len())
		for i := whole.start; i < whole.end; i++ {
			pieces = append(pieces, span{i, i + 1})
		}
		return pieces
	}
	sepRunes := []rune(sep)
	var pieces []span
	start := whole.start
	for i := whole.start; i+len(sepRunes) <= whole.end; {
		if runesAt(src, i, sepRunes) {
			i += len(sepRunes)
			pieces = append(pieces, span{start, i})
			start = i
			continue
		}
		i++
	}
	if start < whole.end {
		pieces = append(pieces, span{start, whole.end})
	}
	return pieces
}

func runesAt(src []rune, i int, want []rune) bool {
	for j, r := range want {
		if src[i+j] != r {
			return false
		}
	}
	return true
}

// merge greedily packs contiguous pieces (each at most size) into chunks,
// carrying up to overlap runes of trailing pieces into the next chunk.
func (sp *Splitter) merge(pieces []span) []span {
	var out []span
	var window []span
	total := 0
	for _, p := range pieces {
		if total+p.len() > sp.size && len(window) > 0 {
			out = append(out, span{window[0].start, window[len(window)-1].end})
			for len(window) > 0 && (total > sp.overlap || total+p.len() > sp.size) {
				total -= window[0].len()
				window = window[1:]
			}
		}
		window = append(window, p)
		total += p.len()
	}
	if len(window) > 0 {
		out = append(out, span{window[0].start, window[len(window)-1].end})
	}
	return out
}

// Reassemble concatenates the non-overlapping portions of chunks, which
// reconstructs the source text of Split exactly.
func Reassemble(chunks []Chunk) string {
	var sb strings.Builder
	covered := 0
	for _, c := range chunks {
		r := []rune(c.Text)
		if c.End <= covered {
			continue
		}
		skip := covered - c.Start
		if skip < 0 {
			skip = 0
		}
		sb.WriteString(string(r[skip:]))
		covered = c.End
	}
	return sb.String()
}
