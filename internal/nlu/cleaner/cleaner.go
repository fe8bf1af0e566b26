// Package cleaner is an ordered pipeline of stateless text rewrite rules used
// to reduce a normalised utterance to the fragment that names a product.
package cleaner

import (
	"regexp"
	"sort"
	"strings"

	"shopsense-voice/internal/nlu/vocabulary"
)

// Rule is a single named rewrite.
type Rule interface {
	Name() string
	Apply(s string) string
}

type funcRule struct {
	name string
	fn   func(string) string
}

func (r funcRule) Name() string          { return r.name }
func (r funcRule) Apply(s string) string { return r.fn(s) }

// NewRule wraps fn as a Rule.
func NewRule(name string, fn func(string) string) Rule {
	return funcRule{name: name, fn: fn}
}

var (
	digitThenLetter = regexp.MustCompile(`(\p{Nd})(\p{L})`)
	letterThenDigit = regexp.MustCompile(`(\p{L}|\p{M})(\p{Nd})`)
	digitRun        = regexp.MustCompile(`\p{Nd}+`)
)

// SplitDigitBoundaries separates glued quantities such as "2kg" into "2 kg".
func SplitDigitBoundaries() Rule {
	return NewRule("split-digit-boundaries", func(s string) string {
		s = digitThenLetter.ReplaceAllString(s, "${1} ${2}")
		return letterThenDigit.ReplaceAllString(s, "${1} ${2}")
	})
}

// StripDigits removes every run of decimal digits.
func StripDigits() Rule {
	return NewRule("strip-digits", func(s string) string {
		return digitRun.ReplaceAllString(s, " ")
	})
}

// StripWords drops every token for which match reports true.
func StripWords(name string, match func(string) bool) Rule {
	return NewRule(name, func(s string) string {
		tokens := strings.Fields(s)
		kept := tokens[:0]
		for _, t := range tokens {
			if !match(t) {
				kept = append(kept, t)
			}
		}
		return strings.Join(kept, " ")
	})
}

// StripPhrases removes whole-token occurrences of the given phrases. Longer
// phrases are tried first so "take me to" wins over "to".
func StripPhrases(name string, phrases []string) Rule {
	split := make([][]string, 0, len(phrases))
	for _, p := range phrases {
		if fields := strings.Fields(strings.ToLower(p)); len(fields) > 0 {
			split = append(split, fields)
		}
	}
	sort.SliceStable(split, func(i, j int) bool { return len(split[i]) > len(split[j]) })

	return NewRule(name, func(s string) string {
		tokens := strings.Fields(s)
		out := make([]string, 0, len(tokens))
		for i := 0; i < len(tokens); {
			if n := matchAt(tokens, i, split); n > 0 {
				i += n
				continue
			}
			out = append(out, tokens[i])
			i++
		}
		return strings.Join(out, " ")
	})
}

func matchAt(tokens []string, i int, phrases [][]string) int {
	for _, p := range phrases {
		if i+len(p) > len(tokens) {
			continue
		}
		matched := true
		for j, w := range p {
			if tokens[i+j] != w {
				matched = false
				break
			}
		}
		if matched {
			return len(p)
		}
	}
	return 0
}

func CollapseWhitespace() Rule {
	return NewRule("collapse-whitespace", func(s string) string {
		return strings.Join(strings.Fields(s), " ")
	})
}

// Pipeline applies its rules in order.
type Pipeline struct {
	rules []Rule
}

func NewPipeline(rules ...Rule) *Pipeline {
	return &Pipeline{rules: rules}
}

func (p *Pipeline) Apply(s string) string {
	for _, r := range p.rules {
		s = r.Apply(s)
	}
	return s
}

// Names lists the rule names in application order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.rules))
	for i, r := range p.rules {
		names[i] = r.Name()
	}
	return names
}

// ForCommand strips action verbs, the extra phrases, fillers, quantity digits
// and unit words, leaving the words that should name a product.
func ForCommand(v *vocabulary.Vocabulary, phrases ...string) *Pipeline {
	actions := append(v.Canonicals(vocabulary.KindVerb), phrases...)
	return NewPipeline(
		SplitDigitBoundaries(),
		StripPhrases("strip-actions", actions),
		StripWords("strip-fillers", v.IsFiller),
		StripDigits(),
		StripWords("strip-units", v.IsUnit),
		CollapseWhitespace(),
	)
}

// ForEntity strips only what never belongs to a product name: quantity
// digits and unit words.
func ForEntity(v *vocabulary.Vocabulary) *Pipeline {
	return NewPipeline(
		SplitDigitBoundaries(),
		StripDigits(),
		StripWords("strip-units", v.IsUnit),
		CollapseWhitespace(),
	)
}
