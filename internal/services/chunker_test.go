package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_ShortTextIsSingleChunk(t *testing.T) {
	chunks := NewTextChunker(100, 10).Chunk("  Skills: Go, Rust  ")
	assert.Equal(t, []string{"Skills: Go, Rust"}, chunks)
}

func TestChunk_Empty(t *testing.T) {
	assert.Empty(t, NewTextChunker(100, 10).Chunk("   "))
}

func TestChunk_ParagraphsRespectSize(t *testing.T) {
	para := strings.Repeat("x", 40)
	text := strings.Join([]string{para, para, para, para}, "\n\n")

	chunks := NewTextChunker(100, 10).Chunk(text)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 100)
	}
}

func TestChunk_OverlapCarriesTail(t *testing.T) {
	text := "alpha one two three\n\nbravo four five six\n\ncharlie seven eight nine"

	chunks := NewTextChunker(30, 5).Chunk(text)

	require.GreaterOrEqual(t, len(chunks), 2)
	tail := lastRunes(chunks[0], 5)
	assert.True(t, strings.HasPrefix(chunks[1], tail))
}

func TestChunk_OversizedSentenceIsHardSplit(t *testing.T) {
	text := strings.Repeat("y", 250)

	chunks := NewTextChunker(100, 0).Chunk(text)

	require.Len(t, chunks, 3)
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestNewTextChunker_ClampsOverlap(t *testing.T) {
	tc := NewTextChunker(40, 100).(*textChunker)
	assert.Equal(t, 10, tc.overlap)

	tc = NewTextChunker(0, -1).(*textChunker)
	assert.Equal(t, defaultChunkSize, tc.size)
	assert.Zero(t, tc.overlap)
}
