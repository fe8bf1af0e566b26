package classifier

import (
	"context"
	"fmt"
	"strings"
)

const (
	keywordScore = 0.9
	neutralScore = 0.5
)

type keywordRule struct {
	label   Label
	phrases []string
	// prefixes only match at the start of the utterance
	prefixes []string
	// together lists word sets that match when every word occurs, in any order
	together [][]string
	// alone words match when every other token is in billCompanions
	alone []string
}

// billCompanions may surround a bare bill word without making it a product
// mention: "bill karo", "bill do please".
var billCompanions = map[string]bool{
	"bill": true, "generate": true, "make": true, "create": true,
	"karo": true, "kar": true, "do": true, "de": true, "dedo": true, "dijiye": true, "kijiye": true,
	"banao": true, "bana": true, "please": true, "the": true, "my": true, "me": true, "ji": true,
	"दो": true, "बनाओ": true, "करो": true,
}

// Evaluated in order over normalised text, mirroring the priority of the
// legacy rule engine: checkout beats bill beats clear and so on.
var keywordRules = []keywordRule{
	{label: LabelCheckout, phrases: []string{"checkout", "save order", "place order"}},
	// Print, download and preview all normalise to "bill", so "bill print"
	// arrives as "bill bill". A lone fuzzed "bill" next to other words is
	// usually a product ("add pill").
	{label: LabelBill, phrases: []string{"generate bill", "make bill", "create bill", "bill bill"}, alone: []string{"bill"}},
	{label: LabelClear, together: [][]string{{"clear", "cart"}}},
	{label: LabelUpdate, phrases: []string{"quantity"}, prefixes: []string{"set"}},
	{label: LabelRemove, phrases: []string{"remove"}},
	{label: LabelNavigation, prefixes: []string{"navigate", "open", "show", "go"}},
	{label: LabelSearch, phrases: []string{"search"}},
	{label: LabelAdd, phrases: []string{"add"}},
}

// Keyword is a deterministic offline backend built from fixed keyword rules.
// Utterances without any keyword are answered with the search label at a
// neutral score, leaving the product match to decide.
type Keyword struct{}

func NewKeyword() *Keyword { return &Keyword{} }

func (k *Keyword) Classify(ctx context.Context, text string, labels []string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	label, score := KeywordLabel(text)
	if !contains(labels, label.String()) {
		return Result{}, fmt.Errorf("%w: label %q not offered", ErrUnavailable, label.String())
	}
	return Result{Label: label.String(), Score: score}, nil
}

// KeywordLabel returns the label chosen by the keyword rules and its score.
func KeywordLabel(text string) (Label, float64) {
	tokens := strings.Fields(strings.ToLower(text))
	for _, rule := range keywordRules {
		for _, p := range rule.phrases {
			if containsPhrase(tokens, strings.Fields(p)) {
				return rule.label, keywordScore
			}
		}
		for _, p := range rule.prefixes {
			if hasPrefix(tokens, strings.Fields(p)) {
				return rule.label, keywordScore
			}
		}
		for _, words := range rule.together {
			if containsAll(tokens, words) {
				return rule.label, keywordScore
			}
		}
		for _, w := range rule.alone {
			if onlyCompanions(tokens, w) {
				return rule.label, keywordScore
			}
		}
	}
	return LabelSearch, neutralScore
}

func containsPhrase(tokens, phrase []string) bool {
	for i := range tokens {
		if hasPrefix(tokens[i:], phrase) {
			return true
		}
	}
	return false
}

func containsAll(tokens, words []string) bool {
	for _, w := range words {
		if !contains(tokens, w) {
			return false
		}
	}
	return true
}

// onlyCompanions reports whether word occurs and every other token is a
// bill companion.
func onlyCompanions(tokens []string, word string) bool {
	if !contains(tokens, word) {
		return false
	}
	for _, t := range tokens {
		if t != word && !billCompanions[t] {
			return false
		}
	}
	return true
}
