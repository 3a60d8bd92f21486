package services

import (
	"strings"
	"unicode/utf8"
)

const (
	defaultChunkSize    = 8000
	defaultChunkOverlap = 200
)

// TextChunker splits long CV text into overlapping windows that each fit
// under the embedding model's input limit.
type TextChunker interface {
	Chunk(text string) []string
}

type textChunker struct {
	size    int
	overlap int
}

func NewTextChunker(size, overlap int) TextChunker {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 4
	}

	return &textChunker{size: size, overlap: overlap}
}

// Chunk implements TextChunker.
func (tc *textChunker) Chunk(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= tc.size {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder

	fits := func(piece, sep string) bool {
		return utf8.RuneCountInString(current.String())+len(sep)+utf8.RuneCountInString(piece) <= tc.size
	}

	appendPiece := func(piece, sep string) {
		if current.Len() > 0 && !fits(piece, sep) {
			chunks = append(chunks, current.String())
			tail := lastRunes(current.String(), tc.overlap)
			current.Reset()
			current.WriteString(tail)
			if !fits(piece, sep) {
				current.Reset()
			}
		}
		if current.Len() > 0 {
			current.WriteString(sep)
		}
		current.WriteString(piece)
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if utf8.RuneCountInString(para) <= tc.size {
			appendPiece(para, "\n\n")
			continue
		}

		// Oversized paragraphs fall back to sentence boundaries, then hard cuts.
		for _, sentence := range splitIntoSentences(para) {
			for _, piece := range hardSplit(sentence, tc.size-tc.overlap-1) {
				appendPiece(piece, " ")
			}
		}
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}

func splitIntoSentences(text string) []string {
	sentences := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	var out []string
	for _, s := range sentences {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func hardSplit(s string, limit int) []string {
	if limit <= 0 {
		limit = 1
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return []string{s}
	}

	var out []string
	for start := 0; start < len(runes); start += limit {
		end := start + limit
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}

func lastRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}
