// Package vocabulary holds the static multilingual lexicon used to canonicalise
// voice transcripts: domain terms with their surface variants, numeral words,
// unit words and words that must never be rewritten.
package vocabulary

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type Kind string

const (
	KindNoun Kind = "noun"
	KindVerb Kind = "verb"
)

var ErrInvalidVocabulary = errors.New("VOCABULARY_INVALID")

// Entry maps one canonical domain term to its surface variants.
type Entry struct {
	Canonical string   `yaml:"canonical" json:"canonical"`
	Kind      Kind     `yaml:"kind" json:"kind"`
	Variants  []string `yaml:"variants" json:"variants"`
}

// Spec is the raw, unvalidated form of a vocabulary.
type Spec struct {
	Terms    []Entry        `yaml:"terms"`
	Numerals map[string]int `yaml:"numerals"`
	Units    []string       `yaml:"units"`
	Fillers  []string       `yaml:"fillers"`
	Reserved []string       `yaml:"reserved"`
}

// Vocabulary is immutable once built. Lookups are case-insensitive.
type Vocabulary struct {
	terms    []Entry
	numerals map[string]int
	units    map[string]bool
	fillers  map[string]bool
	reserved map[string]bool

	// exact maps a lower-cased variant to the index of its entry.
	exact map[string]int
}

// New validates spec and builds a Vocabulary from it.
func New(spec Spec) (*Vocabulary, error) {
	v := &Vocabulary{
		numerals: make(map[string]int, len(spec.Numerals)),
		units:    toSet(spec.Units),
		fillers:  toSet(spec.Fillers),
		reserved: toSet(spec.Reserved),
		exact:    make(map[string]int),
	}

	for word, n := range spec.Numerals {
		key := strings.ToLower(strings.TrimSpace(word))
		if key == "" {
			return nil, fmt.Errorf("%w: empty numeral word", ErrInvalidVocabulary)
		}
		if n <= 0 {
			return nil, fmt.Errorf("%w: numeral %q maps to non-positive %d", ErrInvalidVocabulary, word, n)
		}
		if prev, ok := v.numerals[key]; ok && prev != n {
			return nil, fmt.Errorf("%w: numeral %q maps to both %d and %d", ErrInvalidVocabulary, key, prev, n)
		}
		v.numerals[key] = n
	}

	for _, e := range spec.Terms {
		entry, err := normalizeEntry(e)
		if err != nil {
			return nil, err
		}
		idx := len(v.terms)
		v.terms = append(v.terms, entry)
		for _, variant := range entry.Variants {
			if _, taken := v.exact[variant]; !taken {
				v.exact[variant] = idx
			}
		}
	}

	return v, nil
}

// MustNew is New for built-in data; it panics on an invalid spec.
func MustNew(spec Spec) *Vocabulary {
	v, err := New(spec)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate reports whether spec would build a Vocabulary.
func (s Spec) Validate() error {
	_, err := New(s)
	return err
}

func normalizeEntry(e Entry) (Entry, error) {
	canonical := strings.ToLower(strings.TrimSpace(e.Canonical))
	if canonical == "" {
		return Entry{}, fmt.Errorf("%w: term with empty canonical form", ErrInvalidVocabulary)
	}
	if e.Kind != KindNoun && e.Kind != KindVerb {
		return Entry{}, fmt.Errorf("%w: term %q has kind %q", ErrInvalidVocabulary, canonical, e.Kind)
	}
	if len(e.Variants) == 0 {
		return Entry{}, fmt.Errorf("%w: term %q has no variants", ErrInvalidVocabulary, canonical)
	}

	// The canonical form always resolves to itself.
	variants := []string{canonical}
	seen := map[string]bool{canonical: true}
	for _, raw := range e.Variants {
		variant := strings.ToLower(strings.TrimSpace(raw))
		if variant == "" {
			return Entry{}, fmt.Errorf("%w: term %q has an empty variant", ErrInvalidVocabulary, canonical)
		}
		if !seen[variant] {
			seen[variant] = true
			variants = append(variants, variant)
		}
	}

	return Entry{Canonical: canonical, Kind: e.Kind, Variants: variants}, nil
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			set[w] = true
		}
	}
	return set
}

// Terms returns the entries in definition order.
func (v *Vocabulary) Terms() []Entry {
	out := make([]Entry, len(v.terms))
	copy(out, v.terms)
	return out
}

// Numeral looks up an exact numeral word.
func (v *Vocabulary) Numeral(word string) (int, bool) {
	n, ok := v.numerals[strings.ToLower(word)]
	return n, ok
}

// Exact returns the canonical term for an exact variant match.
func (v *Vocabulary) Exact(word string) (Entry, bool) {
	idx, ok := v.exact[strings.ToLower(word)]
	if !ok {
		return Entry{}, false
	}
	return v.terms[idx], true
}

func (v *Vocabulary) IsUnit(word string) bool {
	return v.units[strings.ToLower(word)]
}

func (v *Vocabulary) IsFiller(word string) bool {
	return v.fillers[strings.ToLower(word)]
}

// IsProtected reports whether word must pass through normalisation untouched.
// Units and fillers are protected along with the explicit reserved words.
func (v *Vocabulary) IsProtected(word string) bool {
	w := strings.ToLower(word)
	return v.reserved[w] || v.units[w] || v.fillers[w]
}

// Canonicals returns the canonical forms of kind k in definition order.
func (v *Vocabulary) Canonicals(k Kind) []string {
	var out []string
	for _, e := range v.terms {
		if e.Kind == k {
			out = append(out, e.Canonical)
		}
	}
	return out
}

// Units returns the unit words sorted for stable output.
func (v *Vocabulary) Units() []string {
	return sortedKeys(v.units)
}

func (v *Vocabulary) Fillers() []string {
	return sortedKeys(v.fillers)
}

func (v *Vocabulary) NumeralWords() map[string]int {
	out := make(map[string]int, len(v.numerals))
	for k, n := range v.numerals {
		out[k] = n
	}
	return out
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
