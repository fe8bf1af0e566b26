package vocabulary

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk vocabulary format. With Extend set the file is merged
// into the built-in vocabulary instead of replacing it.
type File struct {
	Extend bool `yaml:"extend"`
	Spec   `yaml:",inline"`
}

// LoadFile reads a YAML vocabulary file.
func LoadFile(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Vocabulary, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVocabulary, err)
	}

	spec := f.Spec
	if f.Extend {
		spec = Merge(DefaultSpec(), f.Spec)
	}
	return New(spec)
}

// Merge appends extra to base. Variants of a canonical term already present
// in base are added to that term; numerals in extra override base.
func Merge(base, extra Spec) Spec {
	out := base
	out.Terms = append([]Entry(nil), base.Terms...)

	index := make(map[string]int, len(out.Terms))
	for i, e := range out.Terms {
		index[e.Canonical] = i
	}
	for _, e := range extra.Terms {
		if i, ok := index[e.Canonical]; ok && out.Terms[i].Kind == e.Kind {
			merged := out.Terms[i]
			merged.Variants = append(append([]string(nil), merged.Variants...), e.Variants...)
			out.Terms[i] = merged
			continue
		}
		index[e.Canonical] = len(out.Terms)
		out.Terms = append(out.Terms, e)
	}

	out.Numerals = make(map[string]int, len(base.Numerals)+len(extra.Numerals))
	for k, n := range base.Numerals {
		out.Numerals[k] = n
	}
	for k, n := range extra.Numerals {
		out.Numerals[k] = n
	}

	out.Units = append(append([]string(nil), base.Units...), extra.Units...)
	out.Fillers = append(append([]string(nil), base.Fillers...), extra.Fillers...)
	out.Reserved = append(append([]string(nil), base.Reserved...), extra.Reserved...)
	return out
}
