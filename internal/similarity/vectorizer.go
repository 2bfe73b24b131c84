package similarity

import (
	"math"
	"strings"
	"unicode"
)

// Document-frequency bounds: terms must appear in at least minDF
// documents and in at most maxDFRatio of all documents.
const (
	minDF      = 2
	maxDFRatio = 0.8
)

// categoryWeight scales the multi-hot category block relative to the
// TF-IDF text block.
const categoryWeight = 0.5

// sparseVec is a sparse vector keyed by feature index.
type sparseVec map[int]float64

// tokenize lowercases text, splits on non-alphanumeric runes, and
// drops stop words and single-character tokens.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 || englishStopWords[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// terms expands tokens into unigrams and bigrams.
func terms(tokens []string) []string {
	out := make([]string, 0, 2*len(tokens))
	out = append(out, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}

// vectorizer builds L2-normalized TF-IDF vectors over a corpus of
// combined text fields.
type vectorizer struct {
	vocab map[string]int
	idf   []float64
}

// fit learns the term vocabulary and inverse document frequencies,
// applying the document-frequency bounds.
func fit(docs [][]string) *vectorizer {
	n := len(docs)
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, term := range doc {
			if !seen[term] {
				seen[term] = true
				df[term]++
			}
		}
	}

	maxDF := int(math.Floor(maxDFRatio * float64(n)))
	v := &vectorizer{vocab: make(map[string]int)}
	for _, doc := range docs {
		for _, term := range doc {
			if _, ok := v.vocab[term]; ok {
				continue
			}
			if df[term] < minDF || df[term] > maxDF {
				continue
			}
			v.vocab[term] = len(v.vocab)
			v.idf = append(v.idf, math.Log(float64(1+n)/float64(1+df[term]))+1)
		}
	}
	return v
}

// transform converts a document's terms into an L2-normalized TF-IDF
// vector over the learned vocabulary.
func (v *vectorizer) transform(doc []string) sparseVec {
	vec := make(sparseVec)
	for _, term := range doc {
		if idx, ok := v.vocab[term]; ok {
			vec[idx] += v.idf[idx]
		}
	}

	var norm float64
	for _, val := range vec {
		norm += val * val
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range vec {
			vec[idx] /= norm
		}
	}
	return vec
}

// cosine computes cosine similarity between two sparse vectors.
func cosine(a, b sparseVec) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}

	var dot, normA, normB float64
	for idx, val := range a {
		normA += val * val
		if other, ok := b[idx]; ok {
			dot += val * other
		}
	}
	for _, val := range b {
		normB += val * val
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
