package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopsense-voice/internal/models"
)

// ==========================
// Corpus
// ==========================

func TestLoadCorpus(t *testing.T) {
	c, err := LoadCorpus("testdata/corpus.yaml")
	require.NoError(t, err)

	assert.Len(t, c.Catalog(), 4)
	assert.Equal(t, "Basmati Rice", c.Catalog()[0].Name)
	assert.NotEmpty(t, c.Cases)
}

func TestLoadCorpus_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		return p
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "nope.yaml")},
		{"malformed yaml", write("bad.yaml", "cases: [: :")},
		{"unknown intent", write("intent.yaml", "cases:\n  - text: hi\n    intent: dance\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCorpus(tt.path)
			assert.Error(t, err)
		})
	}
}

// ==========================
// Evaluate
// ==========================

type fixedParser map[string]models.Command

func (f fixedParser) Parse(_ context.Context, text string, _ []models.Product) models.Command {
	if cmd, ok := f[text]; ok {
		return cmd
	}
	return models.UnknownCommand()
}

func TestEvaluate_ReportsMismatches(t *testing.T) {
	sugar := &models.Product{ID: 8, Name: "Sugar"}
	corpus := &Corpus{Cases: []Case{
		{Text: "add 2 sugar", Intent: models.IntentAddToCart, Product: 8, Quantity: 2},
		{Text: "add 3 sugar", Intent: models.IntentAddToCart, Product: 8, Quantity: 3},
		{Text: "go to billing", Intent: models.IntentNavigation, Route: "/billing"},
		{Text: "checkout", Intent: models.IntentCheckout},
	}}
	parser := fixedParser{
		"add 2 sugar":   {Intent: models.IntentAddToCart, Product: sugar, Quantity: 2},
		"add 3 sugar":   {Intent: models.IntentAddToCart, Product: sugar, Quantity: 1},
		"go to billing": {Intent: models.IntentNavigation, Route: "/dashboard"},
	}

	r := Evaluate(context.Background(), parser, corpus)

	assert.Equal(t, 4, r.Total)
	assert.Equal(t, 1, r.Passed)
	assert.InDelta(t, 0.25, r.Accuracy(), 1e-9)
	assert.Equal(t, IntentStats{Total: 2, Passed: 1}, r.ByIntent[models.IntentAddToCart])
	assert.Equal(t, []models.Intent{models.IntentAddToCart, models.IntentCheckout, models.IntentNavigation}, r.Intents())

	require.Len(t, r.Failures, 3)
	assert.Equal(t, []string{"quantity: want 3, got 1"}, r.Failures[0].Mismatch)
	assert.Equal(t, []string{"route: want /billing, got /dashboard"}, r.Failures[1].Mismatch)
	assert.Equal(t, []string{"intent: want checkout, got unknown"}, r.Failures[2].Mismatch)
}

func TestEvaluate_MissingProduct(t *testing.T) {
	corpus := &Corpus{Cases: []Case{{Text: "sugar", Intent: models.IntentAddToCart, Product: 8}}}
	parser := fixedParser{"sugar": {Intent: models.IntentAddToCart}}

	r := Evaluate(context.Background(), parser, corpus)

	require.Len(t, r.Failures, 1)
	assert.Equal(t, []string{"product: want 8, got none"}, r.Failures[0].Mismatch)
}

func TestReport_EmptyAccuracy(t *testing.T) {
	assert.Zero(t, Report{}.Accuracy())
}

// ==========================
// Commands
// ==========================

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	vocabularyFile, verbose, jsonOutput = "", false, false

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRunCommand_BundledCorpusPasses(t *testing.T) {
	out, err := runCLI(t, "run", "--corpus", "testdata/corpus.yaml", "--min-accuracy", "1")

	require.NoError(t, err, out)
	assert.Contains(t, out, "accuracy: 1.000")
	assert.NotContains(t, out, "FAIL")
}

func TestRunCommand_JSON(t *testing.T) {
	out, err := runCLI(t, "run", "--corpus", "testdata/corpus.yaml", "--json")
	require.NoError(t, err)

	var r Report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, r.Total, r.Passed)
}

func TestParseCommand(t *testing.T) {
	out, err := runCLI(t, "parse", "--corpus", "testdata/corpus.yaml", "--json", "add", "2", "kg", "sugar")
	require.NoError(t, err)

	var exp struct {
		Command models.Command `json:"command"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &exp))
	assert.Equal(t, models.IntentAddToCart, exp.Command.Intent)
	require.NotNil(t, exp.Command.Product)
	assert.Equal(t, int64(8), exp.Command.Product.ID)
}

func TestParseCommand_RequiresText(t *testing.T) {
	_, err := runCLI(t, "parse")
	assert.Error(t, err)
}
