package store

import (
	"math"
	"strings"
	"unicode"
)

// Weights for blending vector similarity and keyword relevance.
const (
	VectorWeight = 0.7
	TextWeight   = 0.3
)

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func terms(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// keywordScore is the fraction of distinct query terms found in text.
func keywordScore(query, text string) float64 {
	qs := terms(query)
	if len(qs) == 0 {
		return 0
	}
	present := make(map[string]bool)
	for _, t := range terms(text) {
		present[t] = true
	}

	seen := make(map[string]bool)
	var hits, total int
	for _, q := range qs {
		if seen[q] {
			continue
		}
		seen[q] = true
		total++
		if present[q] {
			hits++
		}
	}
	return float64(hits) / float64(total)
}

// hybridScore blends the two signals. When only one side of the query
// is present it is used unweighted.
func hybridScore(vectorSim, textScore float64, hasVector, hasText bool) float64 {
	switch {
	case hasVector && hasText:
		return VectorWeight*vectorSim + TextWeight*textScore
	case hasVector:
		return vectorSim
	default:
		return textScore
	}
}
