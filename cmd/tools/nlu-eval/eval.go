package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"shopsense-voice/internal/models"
)

// Corpus is a catalog plus the utterances to replay against it.
type Corpus struct {
	Products []CorpusProduct `yaml:"products"`
	Cases    []Case          `yaml:"cases"`
}

type CorpusProduct struct {
	ID    int64   `yaml:"id"`
	Name  string  `yaml:"name"`
	Price float64 `yaml:"price"`
	Stock int     `yaml:"stock"`
	Unit  string  `yaml:"unit"`
}

// Case is one utterance and what it must parse to. Zero Product and
// Quantity are not checked.
type Case struct {
	Text     string        `yaml:"text"`
	Intent   models.Intent `yaml:"intent"`
	Product  int64         `yaml:"product"`
	Quantity int           `yaml:"quantity"`
	Route    string        `yaml:"route"`
}

func LoadCorpus(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}
	var c Corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode corpus %s: %w", path, err)
	}
	for i, tc := range c.Cases {
		if !tc.Intent.Valid() {
			return nil, fmt.Errorf("case %d (%q): unknown intent %q", i, tc.Text, tc.Intent)
		}
	}
	return &c, nil
}

func (c *Corpus) Catalog() []models.Product {
	out := make([]models.Product, len(c.Products))
	for i, p := range c.Products {
		out[i] = models.Product{ID: p.ID, Name: p.Name, Price: p.Price, Stock: p.Stock, Unit: p.Unit}
	}
	return out
}

type Parser interface {
	Parse(ctx context.Context, text string, products []models.Product) models.Command
}

type Failure struct {
	Case     Case           `json:"case"`
	Got      models.Command `json:"got"`
	Mismatch []string       `json:"mismatch"`
}

type IntentStats struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
}

type Report struct {
	Total    int                           `json:"total"`
	Passed   int                           `json:"passed"`
	ByIntent map[models.Intent]IntentStats `json:"byIntent"`
	Failures []Failure                     `json:"failures,omitempty"`
}

func (r Report) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Passed) / float64(r.Total)
}

// Intents returns the intents seen in the corpus in a stable order.
func (r Report) Intents() []models.Intent {
	out := make([]models.Intent, 0, len(r.ByIntent))
	for i := range r.ByIntent {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// Evaluate replays every case through p.
func Evaluate(ctx context.Context, p Parser, c *Corpus) Report {
	catalog := c.Catalog()
	report := Report{ByIntent: make(map[models.Intent]IntentStats)}

	for _, tc := range c.Cases {
		got := p.Parse(ctx, tc.Text, catalog)
		mismatch := compare(tc, got)

		stats := report.ByIntent[tc.Intent]
		stats.Total++
		report.Total++
		if len(mismatch) == 0 {
			stats.Passed++
			report.Passed++
		} else {
			report.Failures = append(report.Failures, Failure{Case: tc, Got: got, Mismatch: mismatch})
		}
		report.ByIntent[tc.Intent] = stats
	}
	return report
}

func compare(tc Case, got models.Command) []string {
	var out []string
	if got.Intent != tc.Intent {
		out = append(out, fmt.Sprintf("intent: want %s, got %s", tc.Intent, got.Intent))
	}
	if tc.Product != 0 {
		switch {
		case got.Product == nil:
			out = append(out, fmt.Sprintf("product: want %d, got none", tc.Product))
		case got.Product.ID != tc.Product:
			out = append(out, fmt.Sprintf("product: want %d, got %d", tc.Product, got.Product.ID))
		}
	}
	if tc.Quantity != 0 && got.Quantity != tc.Quantity {
		out = append(out, fmt.Sprintf("quantity: want %d, got %d", tc.Quantity, got.Quantity))
	}
	if tc.Route != "" && got.Route != tc.Route {
		out = append(out, fmt.Sprintf("route: want %s, got %s", tc.Route, got.Route))
	}
	return out
}
