// Package resolver picks the catalog product named by a cleaned utterance
// fragment.
package resolver

import (
	"strings"

	"shopsense-voice/internal/models"
	"shopsense-voice/internal/nlu/cleaner"
	"shopsense-voice/internal/nlu/fuzzy"
	"shopsense-voice/internal/nlu/vocabulary"
)

// DefaultThreshold is the strict score a product must exceed to count as a match.
const DefaultThreshold = 75

// Match is an accepted product resolution.
type Match struct {
	Product models.Product
	Index   int
	Score   int
}

type Resolver struct {
	threshold int
	pipeline  *cleaner.Pipeline
	scorer    fuzzy.Scorer
}

// New builds a resolver that strips the vocabulary's unit words and digits
// before scoring. A non-positive threshold selects DefaultThreshold.
func New(vocab *vocabulary.Vocabulary, threshold int) *Resolver {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Resolver{
		threshold: threshold,
		pipeline:  cleaner.ForEntity(vocab),
		scorer:    fuzzy.TokenSetRatio,
	}
}

func (r *Resolver) Threshold() int { return r.threshold }

// Resolve returns the highest scoring product for fragment. The first product
// wins ties. An empty fragment or catalog is simply no match.
func (r *Resolver) Resolve(fragment string, products []models.Product) (Match, bool) {
	best, ok := r.Best(fragment, products)
	if !ok || best.Score <= r.threshold {
		return Match{}, false
	}
	return best, true
}

// Best returns the highest scoring product regardless of the threshold.
func (r *Resolver) Best(fragment string, products []models.Product) (Match, bool) {
	query := r.pipeline.Apply(strings.ToLower(fragment))
	if query == "" || len(products) == 0 {
		return Match{}, false
	}

	best := Match{Index: -1, Score: -1}
	for i, p := range products {
		score := r.scorer(query, strings.ToLower(p.Name))
		if score > best.Score {
			best = Match{Product: p, Index: i, Score: score}
		}
	}
	return best, true
}
