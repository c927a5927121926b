// Package chunker provides whitespace normalisation and word-window text splitting.
package chunker

import (
	"strings"
	"unicode"
)

// DefaultChunkSize is the default number of words per chunk.
const DefaultChunkSize = 750

// DefaultChunkOverlap is the default number of words shared by adjacent chunks.
const DefaultChunkOverlap = 50

// Accepted bounds for chunking parameters.
const (
	MinChunkSize    = 100
	MaxChunkSize    = 4000
	MinChunkOverlap = 0
	MaxChunkOverlap = 500
)

// Splitter cuts text into overlapping word-count windows.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures a splitter.
type Option func(*Splitter)

// WithChunkSize sets the window size in words.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the number of words repeated between adjacent windows.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Split normalises whitespace and cuts the text into windows of whole words.
// Each window holds at most chunkSize words and starts chunkSize-overlap
// words after the previous one, with a minimum advance of one word.
// Empty or whitespace-only input yields no chunks.
func (s *Splitter) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := s.chunkSize - s.overlap
	if step < 1 {
		step = 1
	}

	var chunks []string
	for start := 0; start < len(words); start += step {
		end := start + s.chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}

// Normalize collapses whitespace runs into single spaces and trims the ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Truncate abbreviates text so the result, ellipsis included, fits within
// max runes. Text that already fits is returned unchanged.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	if max < 1 {
		max = 1
	}
	cut := strings.TrimRightFunc(string(runes[:max-1]), unicode.IsSpace)
	return cut + "…"
}
