package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shopsense-voice/internal/nlu/vocabulary"
)

// ==========================
// Individual rules
// ==========================

func TestSplitDigitBoundaries(t *testing.T) {
	r := SplitDigitBoundaries()
	assert.Equal(t, "split-digit-boundaries", r.Name())
	assert.Equal(t, "2 kg sugar", r.Apply("2kg sugar"))
	assert.Equal(t, "rice 5 kg", r.Apply("rice5kg"))
	assert.Equal(t, "no digits", r.Apply("no digits"))
}

func TestStripDigits(t *testing.T) {
	assert.Equal(t, "add  sugar", StripDigits().Apply("add 12 sugar"))
}

func TestStripPhrases_LongestFirst(t *testing.T) {
	r := StripPhrases("strip", []string{"to", "take me to"})
	assert.Equal(t, "billing", r.Apply("take me to billing"))
	assert.Equal(t, "go billing", r.Apply("go to billing"))
}

func TestStripPhrases_WholeTokensOnly(t *testing.T) {
	r := StripPhrases("strip", []string{"add"})
	assert.Equal(t, "ladder", r.Apply("add ladder"))
}

func TestStripWords(t *testing.T) {
	r := StripWords("strip-x", func(w string) bool { return w == "x" })
	assert.Equal(t, "a b", r.Apply("x a x b x"))
	assert.Equal(t, "", r.Apply("x x"))
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "a b", CollapseWhitespace().Apply("  a \t  b  "))
}

// ==========================
// Pipelines
// ==========================

func TestPipeline_RunsRulesInOrder(t *testing.T) {
	var order []string
	rec := func(name string) Rule {
		return NewRule(name, func(s string) string {
			order = append(order, name)
			return s + name
		})
	}

	p := NewPipeline(rec("a"), rec("b"), rec("c"))
	assert.Equal(t, "xabc", p.Apply("x"))
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, []string{"a", "b", "c"}, p.Names())
}

func TestForCommand(t *testing.T) {
	p := ForCommand(vocabulary.Default(), "go to", "take me to", "generate")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"verb and quantity", "add 2 sugar", "sugar"},
		{"glued unit", "1kg sugar", "sugar"},
		{"fillers removed", "add 2 kg rice to the cart", "rice"},
		{"set quantity", "set quantity of milk to 5", "milk"},
		{"remove", "remove oil", "oil"},
		{"navigation trigger", "take me to billing", "billing"},
		{"multi word product", "add basmati rice", "basmati rice"},
		{"nothing left", "add 2", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Apply(tt.input))
		})
	}
}

func TestForCommand_RuleNames(t *testing.T) {
	p := ForCommand(vocabulary.Default())
	assert.Equal(t, []string{
		"split-digit-boundaries",
		"strip-actions",
		"strip-fillers",
		"strip-digits",
		"strip-units",
		"collapse-whitespace",
	}, p.Names())
}

func TestForEntity_KeepsVerbsAndFillers(t *testing.T) {
	p := ForEntity(vocabulary.Default())
	assert.Equal(t, "add sugar to cart", p.Apply("add 2kg sugar to cart"))
}
