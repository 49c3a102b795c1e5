package pkg

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Ellipsis is appended to text cut by Truncate.
const Ellipsis = "..."

// Chunk is one indexed fragment of a longer text.
type Chunk struct {
	Index int
	Data  string
}

// SplitChunks cuts text into pieces of at most limit bytes each without
// splitting an encoded rune. Empty text produces no chunks.
func SplitChunks(text string, limit int) ([]string, error) {
	if limit < utf8.UTFMax {
		return nil, Validationf("chunk limit %d below %d bytes", limit, utf8.UTFMax)
	}
	if text == "" {
		return nil, nil
	}

	chunks := make([]string, 0, len(text)/limit+1)
	for len(text) > limit {
		cut := limit
		// back off to the start of the rune straddling the boundary
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}
	chunks = append(chunks, text)
	return chunks, nil
}

// JoinChunks orders chunks by index and concatenates them. The indexes must
// be exactly 0..n-1; anything else is reported as ErrIntegrity.
func JoinChunks(chunks []Chunk) (string, error) {
	if len(chunks) == 0 {
		return "", nil
	}
	sorted := make([]Chunk, len(chunks))
	copy(sorted, chunks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	var b strings.Builder
	size := 0
	for _, c := range sorted {
		size += len(c.Data)
	}
	b.Grow(size)
	for i, c := range sorted {
		if c.Index != i {
			if c.Index < i {
				return "", Integrityf("duplicate chunk index %d", c.Index)
			}
			return "", Integrityf("missing chunk index %d", i)
		}
		b.WriteString(c.Data)
	}
	return b.String(), nil
}

// Truncate keeps at most maxChars characters of text and appends Ellipsis
// when something was cut. maxChars < 0 means unbounded.
func Truncate(text string, maxChars int) (string, bool) {
	if maxChars < 0 || utf8.RuneCountInString(text) <= maxChars {
		return text, false
	}
	n := 0
	for i := range text {
		if n == maxChars {
			return text[:i] + Ellipsis, true
		}
		n++
	}
	return text, false
}
