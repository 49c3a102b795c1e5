package pkg

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitChunksRoundTrip(t *testing.T) {
	const limit = 16
	tests := []struct {
		name      string
		text      string
		wantCount int
	}{
		{name: "empty", text: "", wantCount: 0},
		{name: "one short of the limit", text: strings.Repeat("a", limit-1), wantCount: 1},
		{name: "exactly the limit", text: strings.Repeat("a", limit), wantCount: 1},
		{name: "one past the limit", text: strings.Repeat("a", limit+1), wantCount: 2},
		{name: "ten times the limit", text: strings.Repeat("a", 10*limit), wantCount: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts, err := SplitChunks(tt.text, limit)
			require.NoError(t, err)
			assert.Len(t, parts, tt.wantCount)

			chunks := make([]Chunk, len(parts))
			for i, p := range parts {
				assert.LessOrEqual(t, len(p), limit)
				chunks[i] = Chunk{Index: i, Data: p}
			}
			joined, err := JoinChunks(chunks)
			require.NoError(t, err)
			assert.Equal(t, tt.text, joined)
		})
	}
}

func TestSplitChunksKeepsRunesWhole(t *testing.T) {
	// 3-byte runes never align with a 7-byte limit
	text := strings.Repeat("日本語", 20)
	parts, err := SplitChunks(text, 7)
	require.NoError(t, err)

	for _, p := range parts {
		assert.True(t, utf8.ValidString(p), "chunk %q splits a rune", p)
		assert.LessOrEqual(t, len(p), 7)
	}
	assert.Equal(t, text, strings.Join(parts, ""))
}

func TestSplitChunksRejectsTinyLimit(t *testing.T) {
	_, err := SplitChunks("abc", utf8.UTFMax-1)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestJoinChunksOrdersByIndex(t *testing.T) {
	chunks := []Chunk{{Index: 2, Data: "c"}, {Index: 0, Data: "a"}, {Index: 1, Data: "b"}}
	text, err := JoinChunks(chunks)
	require.NoError(t, err)
	assert.Equal(t, "abc", text)
	// caller's slice is left as it was
	assert.Equal(t, 2, chunks[0].Index)
}

func TestJoinChunksRejectsBrokenSequences(t *testing.T) {
	tests := []struct {
		name   string
		chunks []Chunk
	}{
		{name: "gap", chunks: []Chunk{{Index: 0, Data: "a"}, {Index: 2, Data: "c"}}},
		{name: "duplicate", chunks: []Chunk{{Index: 0, Data: "a"}, {Index: 0, Data: "a"}, {Index: 1, Data: "b"}}},
		{name: "missing head", chunks: []Chunk{{Index: 1, Data: "b"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := JoinChunks(tt.chunks)
			assert.True(t, errors.Is(err, ErrIntegrity), "got %v", err)
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		max      int
		want     string
		wantTrim bool
	}{
		{name: "unbounded", text: "hello", max: -1, want: "hello"},
		{name: "fits", text: "hello", max: 5, want: "hello"},
		{name: "cut", text: "hello world", max: 5, want: "hello...", wantTrim: true},
		{name: "counts runes", text: "日本語テキスト", max: 3, want: "日本語...", wantTrim: true},
		{name: "zero", text: "abc", max: 0, want: "...", wantTrim: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, trimmed := Truncate(tt.text, tt.max)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantTrim, trimmed)
		})
	}
}
