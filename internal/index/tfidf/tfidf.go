// Package tfidf implements a deterministic TF-IDF vectorizer and the
// serialisable index artifact built from a collection's chunk corpus.
package tfidf

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// MaxFeatures caps the vocabulary at the terms with the highest total
// count across the corpus.
const MaxFeatures = 4096

// tokenPattern matches lowercased word tokens of at least two characters,
// keeping internal apostrophes so contractions stay whole.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]{2,}(?:['’][\p{L}\p{N}]+)*`)

// Artifact is a fitted index in its persisted form. Rows are stored sparse
// and L2-normalised, aligned one-to-one with ChunkIDs.
type Artifact struct {
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
	ChunkIDs   []string       `json:"chunk_ids"`
	Rows       []Vector       `json:"rows"`
}

// Vector is one sparse row. Indices are vocabulary positions in ascending
// order and Weights holds the matching TF-IDF values.
type Vector struct {
	Indices []int     `json:"indices"`
	Weights []float64 `json:"weights"`
}

// Hit pairs a chunk id with its similarity score against a query.
type Hit struct {
	ChunkID string
	Score   float64
}

// Fit builds an artifact over the chunk corpus. The two slices are aligned:
// texts[i] is the content stored under chunkIDs[i]. Vocabulary order is
// alphabetical so repeated fits over the same corpus produce identical
// artifacts.
func Fit(chunkIDs, texts []string) (*Artifact, error) {
	if len(chunkIDs) != len(texts) {
		return nil, errors.New("chunk ids and texts are not aligned")
	}
	if len(texts) == 0 {
		return nil, errors.New("empty corpus")
	}

	tokenized := make([][]string, len(texts))
	counts := make(map[string]int)
	df := make(map[string]int)
	for i, text := range texts {
		tokens := tokenize(text)
		tokenized[i] = tokens
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			counts[tok]++
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				df[tok]++
			}
		}
	}
	if len(counts) == 0 {
		return nil, errors.New("no indexable terms in corpus")
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	if len(terms) > MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if counts[terms[i]] != counts[terms[j]] {
				return counts[terms[i]] > counts[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:MaxFeatures]
	}
	sort.Strings(terms)

	art := &Artifact{
		Vocabulary: make(map[string]int, len(terms)),
		IDF:        make([]float64, len(terms)),
		ChunkIDs:   chunkIDs,
		Rows:       make([]Vector, len(texts)),
	}
	n := float64(len(texts))
	for i, term := range terms {
		art.Vocabulary[term] = i
		art.IDF[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}

	for i, tokens := range tokenized {
		art.Rows[i] = art.vectorize(tokens)
	}
	return art, nil
}

// Dimension returns the size of the fitted vocabulary.
func (a *Artifact) Dimension() int { return len(a.IDF) }

// Transform projects text into the fitted vocabulary as a dense
// L2-normalised vector. Terms outside the vocabulary contribute nothing.
func (a *Artifact) Transform(text string) []float64 {
	vec := make([]float64, a.Dimension())
	row := a.vectorize(tokenize(text))
	for i, idx := range row.Indices {
		vec[idx] = row.Weights[i]
	}
	return vec
}

// Scores returns the cosine similarity of a query vector against every row.
// Rows and query are already L2-normalised, so this is a dot product.
func (a *Artifact) Scores(query []float64) []float64 {
	scores := make([]float64, len(a.Rows))
	for i, row := range a.Rows {
		var sum float64
		for j, idx := range row.Indices {
			sum += row.Weights[j] * query[idx]
		}
		scores[i] = sum
	}
	return scores
}

// Search scores text against every chunk and returns the topK best rows in
// descending score order, ties keeping their row order. When no row scores
// above zero there are no hits at all; otherwise low-scoring rows may pad
// the result up to topK.
func (a *Artifact) Search(text string, topK int) []Hit {
	if topK <= 0 {
		return nil
	}
	scores := a.Scores(a.Transform(text))

	nonzero := false
	for _, s := range scores {
		if s != 0 {
			nonzero = true
			break
		}
	}
	if !nonzero {
		return nil
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})
	if topK > len(order) {
		topK = len(order)
	}

	hits := make([]Hit, 0, topK)
	for _, idx := range order[:topK] {
		hits = append(hits, Hit{ChunkID: a.ChunkIDs[idx], Score: scores[idx]})
	}
	return hits
}

// vectorize turns a token stream into a sparse L2-normalised row over the
// fitted vocabulary.
func (a *Artifact) vectorize(tokens []string) Vector {
	tf := make(map[int]int)
	total := 0
	for _, tok := range tokens {
		if idx, ok := a.Vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return Vector{}
	}

	indices := make([]int, 0, len(tf))
	for idx := range tf {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	weights := make([]float64, len(indices))
	var norm float64
	for i, idx := range indices {
		w := float64(tf[idx]) / float64(total) * a.IDF[idx]
		weights[i] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range weights {
			weights[i] /= norm
		}
	}
	return Vector{Indices: indices, Weights: weights}
}

// tokenize lowercases text and extracts word tokens, dropping stop-words.
func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, tok := range raw {
		if _, isStop := englishStopwords[tok]; isStop {
			continue
		}
		out = append(out, tok)
	}
	return out
}
