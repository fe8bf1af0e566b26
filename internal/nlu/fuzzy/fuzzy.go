// Package fuzzy implements fuzzball-style similarity scorers on a 0..100
// integer scale. All scorers lower-case their inputs, treat anything that is
// not a letter, digit or combining mark as a separator and are rune-aware, so
// Devanagari and other scripts score the same way Latin text does.
package fuzzy

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// Scorer compares two strings and returns a similarity in [0, 100].
type Scorer func(a, b string) int

// Process lower-cases s and replaces every run of separator runes with a
// single space.
func Process(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

// Ratio is the normalised LCS similarity 2*LCS/(len(a)+len(b)).
func Ratio(a, b string) int {
	return scale(ratio(Process(a), Process(b)))
}

// PartialRatio scores the shorter string against the best-matching window of
// the longer one.
func PartialRatio(a, b string) int {
	return scale(partialRatio(Process(a), Process(b)))
}

// TokenSortRatio compares both strings after sorting their tokens.
func TokenSortRatio(a, b string) int {
	return scale(ratio(sortedTokens(Process(a)), sortedTokens(Process(b))))
}

// TokenSetRatio compares the shared tokens against each side's remainder.
// It is insensitive to token order and repetition, so "rice" scores 100
// against "Basmati Rice".
func TokenSetRatio(a, b string) int {
	return scale(tokenSetRatio(Process(a), Process(b)))
}

// WeightedRatio picks the best of the plain, partial and token scorers with
// the usual fuzzball weights.
func WeightedRatio(a, b string) int {
	p1, p2 := Process(a), Process(b)
	if p1 == "" || p2 == "" {
		return 0
	}

	base := ratio(p1, p2)
	l1, l2 := utf8.RuneCountInString(p1), utf8.RuneCountInString(p2)
	lenRatio := float64(max(l1, l2)) / float64(min(l1, l2))

	if lenRatio < 1.5 {
		best := base
		best = math.Max(best, ratio(sortedTokens(p1), sortedTokens(p2))*0.95)
		best = math.Max(best, tokenSetRatio(p1, p2)*0.95)
		return scale(best)
	}

	partialScale := 0.9
	if lenRatio > 8 {
		partialScale = 0.6
	}
	best := base
	best = math.Max(best, partialRatio(p1, p2)*partialScale)
	best = math.Max(best, partialRatio(sortedTokens(p1), sortedTokens(p2))*0.95*partialScale)
	return scale(best)
}

func ratio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	return 2 * float64(edlib.LCS(a, b)) / float64(total)
}

func partialRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == len(long) {
		return ratio(a, b)
	}

	s := string(short)
	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		r := ratio(s, string(long[i:i+len(short)]))
		if r > best {
			best = r
			if best == 1 {
				break
			}
		}
	}
	return best
}

func tokenSetRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	set1, set2 := tokenSet(a), tokenSet(b)

	var common, only1, only2 []string
	for t := range set1 {
		if set2[t] {
			common = append(common, t)
		} else {
			only1 = append(only1, t)
		}
	}
	for t := range set2 {
		if !set1[t] {
			only2 = append(only2, t)
		}
	}
	sort.Strings(common)
	sort.Strings(only1)
	sort.Strings(only2)

	sect := strings.Join(common, " ")
	combined1 := strings.TrimSpace(sect + " " + strings.Join(only1, " "))
	combined2 := strings.TrimSpace(sect + " " + strings.Join(only2, " "))

	best := ratio(sect, combined1)
	best = math.Max(best, ratio(sect, combined2))
	best = math.Max(best, ratio(combined1, combined2))
	return best
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Fields(s) {
		set[t] = true
	}
	return set
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func scale(r float64) int {
	return int(math.Round(r * 100))
}
