// Package normalizer rewrites a transcript token by token into canonical
// domain terms and digit strings.
package normalizer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"shopsense-voice/internal/nlu/fuzzy"
	"shopsense-voice/internal/nlu/vocabulary"
)

const (
	DefaultThreshold      = 70
	DefaultMinFuzzyLength = 3
)

// Match kinds reported by Trace.
const (
	MatchNumeral   = "numeral"
	MatchDigits    = "digits"
	MatchProtected = "protected"
	MatchExact     = "exact"
	MatchFuzzy     = "fuzzy"
	MatchNone      = "none"
)

type Config struct {
	// Threshold is the fuzzy score a token must exceed to be rewritten.
	Threshold int
	// MinFuzzyLength is the shortest token, in runes, that is fuzzily matched.
	MinFuzzyLength int
}

func DefaultConfig() Config {
	return Config{Threshold: DefaultThreshold, MinFuzzyLength: DefaultMinFuzzyLength}
}

// Token records how one input token was rewritten.
type Token struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	Match  string `json:"match"`
	Score  int    `json:"score,omitempty"`
}

type Normalizer struct {
	vocab  *vocabulary.Vocabulary
	config Config
	scorer fuzzy.Scorer
}

func New(vocab *vocabulary.Vocabulary, config Config) *Normalizer {
	if vocab == nil {
		vocab = vocabulary.Default()
	}
	if config.Threshold <= 0 {
		config.Threshold = DefaultThreshold
	}
	if config.MinFuzzyLength <= 0 {
		config.MinFuzzyLength = DefaultMinFuzzyLength
	}
	return &Normalizer{vocab: vocab, config: config, scorer: fuzzy.WeightedRatio}
}

// Prepare applies the compatibility fold, lower-cases and trims. Callers that
// hand raw transcripts to Normalize should run it first.
func Prepare(text string) string {
	return strings.TrimSpace(strings.ToLower(norm.NFKC.String(text)))
}

// Normalize rewrites every whitespace-delimited token of text.
func (n *Normalizer) Normalize(text string) string {
	tokens := n.Trace(text)
	if len(tokens) == 0 {
		return ""
	}
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Output
	}
	return strings.Join(out, " ")
}

// Trace is Normalize with the per-token decisions kept.
func (n *Normalizer) Trace(text string) []Token {
	fields := strings.Fields(text)
	tokens := make([]Token, len(fields))
	for i, f := range fields {
		tokens[i] = n.NormalizeToken(f)
	}
	return tokens
}

// NormalizeToken applies, in order: exact numeral, digit passthrough,
// protected word passthrough, exact variant, fuzzy variant.
func (n *Normalizer) NormalizeToken(token string) Token {
	if value, ok := n.vocab.Numeral(token); ok {
		return Token{Input: token, Output: strconv.Itoa(value), Match: MatchNumeral, Score: 100}
	}
	if hasDigit(token) {
		return Token{Input: token, Output: token, Match: MatchDigits}
	}
	if n.vocab.IsProtected(token) {
		return Token{Input: token, Output: token, Match: MatchProtected}
	}
	if e, ok := n.vocab.Exact(token); ok {
		return Token{Input: token, Output: e.Canonical, Match: MatchExact, Score: 100}
	}
	if utf8.RuneCountInString(token) < n.config.MinFuzzyLength {
		return Token{Input: token, Output: token, Match: MatchNone}
	}

	canonical, score := n.bestFuzzy(token)
	if score > n.config.Threshold {
		return Token{Input: token, Output: canonical, Match: MatchFuzzy, Score: score}
	}
	return Token{Input: token, Output: token, Match: MatchNone, Score: score}
}

// bestFuzzy scores token against every variant of every term. The first
// term to reach the top score wins.
func (n *Normalizer) bestFuzzy(token string) (string, int) {
	best, bestScore := "", -1
	for _, e := range n.vocab.Terms() {
		for _, variant := range e.Variants {
			if s := n.scorer(token, variant); s > bestScore {
				best, bestScore = e.Canonical, s
			}
		}
	}
	return best, bestScore
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
