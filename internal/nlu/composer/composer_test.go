package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopsense-voice/internal/models"
	"shopsense-voice/internal/nlu/classifier"
	"shopsense-voice/internal/nlu/resolver"
	"shopsense-voice/internal/nlu/vocabulary"
)

// ==========================
// Test Helpers
// ==========================

func newComposer() *Composer {
	vocab := vocabulary.Default()
	return New(vocab, resolver.New(vocab, 0))
}

func catalog() []models.Product {
	return []models.Product{
		{ID: 1, Name: "Rice", Price: 60, Stock: 100, Unit: "kg"},
		{ID: 2, Name: "Milk", Price: 30, Stock: 20, Unit: "l"},
		{ID: 3, Name: "Tata Salt", Price: 25, Stock: 50},
	}
}

func classified(label classifier.Label, score float64) classifier.Decision {
	return classifier.Decision{
		Intent: label.Intent(),
		Label:  label.String(),
		Score:  score,
		Reason: classifier.ReasonClassified,
	}
}

func forced(term string, label classifier.Label, score float64) classifier.Decision {
	return classifier.Decision{
		Intent: models.IntentSearch,
		Label:  label.String(),
		Score:  score,
		Term:   term,
		Forced: true,
		Reason: classifier.ReasonLowConfidence,
	}
}

// ==========================
// Quantity
// ==========================

func TestQuantity(t *testing.T) {
	tests := map[string]int{
		"add 2 rice":             2,
		"rice":                   1,
		"set milk 5 then 7":      5,
		"0 rice":                 1,
		"12kg rice":              12,
		"99999999999999999999 x": 1,
		"":                       1,
	}
	for in, want := range tests {
		assert.Equal(t, want, Quantity(in), in)
	}
}

// ==========================
// Reconciliation Rules
// ==========================

func TestCompose_ExplicitNonEntityIntents(t *testing.T) {
	c := newComposer()

	tests := []struct {
		name   string
		label  classifier.Label
		text   string
		want   models.Intent
		direct bool
	}{
		{"checkout ignores entity", classifier.LabelCheckout, "checkout rice", models.IntentCheckout, false},
		{"clear", classifier.LabelClear, "clear cart", models.IntentClearCart, false},
		{"bill downloads", classifier.LabelBill, "bill", models.IntentGenerateBill, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, products := range [][]models.Product{nil, catalog()} {
				cmd := c.Compose(Input{Normalized: tt.text, Decision: classified(tt.label, 0.9), Products: products})
				assert.Equal(t, tt.want, cmd.Intent)
				assert.Nil(t, cmd.Product)
				assert.Equal(t, tt.direct, cmd.DirectDownload)
				assert.Zero(t, cmd.Quantity)
			}
		})
	}
}

func TestCompose_RemoveAndUpdateNeedEntity(t *testing.T) {
	c := newComposer()

	cmd := c.Compose(Input{Normalized: "remove rice", Decision: classified(classifier.LabelRemove, 0.8), Products: catalog()})
	assert.Equal(t, models.IntentRemoveFromCart, cmd.Intent)
	require.NotNil(t, cmd.Product)
	assert.Equal(t, "Rice", cmd.Product.Name)
	assert.Equal(t, 1, cmd.Quantity)

	cmd = c.Compose(Input{Normalized: "set quantity of milk to 5", Decision: classified(classifier.LabelUpdate, 0.8), Products: catalog()})
	assert.Equal(t, models.IntentUpdateQuantity, cmd.Intent)
	require.NotNil(t, cmd.Product)
	assert.Equal(t, "Milk", cmd.Product.Name)
	assert.Equal(t, 5, cmd.Quantity)

	cmd = c.Compose(Input{Normalized: "remove laptop", Decision: classified(classifier.LabelRemove, 0.8), Products: catalog()})
	assert.Equal(t, models.IntentSearch, cmd.Intent)
	assert.Equal(t, "laptop", cmd.Term)
	assert.Nil(t, cmd.Product)
}

func TestCompose_AddWithEntity(t *testing.T) {
	cmd := newComposer().Compose(Input{Normalized: "add 2 kg rice", Decision: classified(classifier.LabelAdd, 0.9), Products: catalog()})

	assert.Equal(t, models.IntentAddToCart, cmd.Intent)
	require.NotNil(t, cmd.Product)
	assert.Equal(t, int64(1), cmd.Product.ID)
	assert.Equal(t, 2, cmd.Quantity)
	assert.Equal(t, models.SourceClassifier, cmd.Source)
}

func TestCompose_ImplicitAdd(t *testing.T) {
	c := newComposer()

	for _, label := range []classifier.Label{classifier.LabelSearch, classifier.LabelNavigation} {
		t.Run(label.String(), func(t *testing.T) {
			d := classified(label, 0.6)
			d.Intent = models.IntentSearch
			cmd := c.Compose(Input{Normalized: "2 kg rice", Decision: d, Products: catalog()})

			assert.Equal(t, models.IntentAddToCart, cmd.Intent)
			require.NotNil(t, cmd.Product)
			assert.Equal(t, "Rice", cmd.Product.Name)
			assert.Equal(t, 2, cmd.Quantity)
			assert.Equal(t, models.SourceImplicitAdd, cmd.Source)
			assert.Equal(t, 1.0, cmd.Confidence)
		})
	}
}

func TestCompose_ForcedSearchNeverMutates(t *testing.T) {
	c := newComposer()

	// Same text, same catalog: only the forced flag differs.
	matching := Input{Normalized: "add 2 rice", Products: catalog()}

	matching.Decision = forced("add 2 rice", classifier.LabelAdd, 0.2)
	cmd := c.Compose(matching)
	assert.Equal(t, models.IntentSearch, cmd.Intent)
	assert.Equal(t, "add 2 rice", cmd.Term)
	assert.Nil(t, cmd.Product)
	assert.False(t, cmd.Intent.MutatesCart())

	matching.Decision = classified(classifier.LabelSearch, 0.5)
	cmd = c.Compose(matching)
	assert.Equal(t, models.IntentAddToCart, cmd.Intent, "implicit add applies once the decision is not forced")
}

func TestCompose_Navigation(t *testing.T) {
	d := classifier.Decision{Intent: models.IntentNavigation, Route: classifier.RouteBilling, Score: 1, Reason: classifier.ReasonNavigationRule}
	cmd := newComposer().Compose(Input{Normalized: "go to billing", Decision: d, Products: catalog()})

	assert.Equal(t, models.IntentNavigation, cmd.Intent)
	assert.Equal(t, "/billing", cmd.Route)
	assert.Equal(t, models.SourceNavigation, cmd.Source)
}

func TestCompose_SearchFallbackTerm(t *testing.T) {
	c := newComposer()
	search := classified(classifier.LabelSearch, 0.5)

	cmd := c.Compose(Input{Normalized: "1kg sugar", Decision: search})
	assert.Equal(t, models.Command{Intent: models.IntentSearch, Term: "sugar", Confidence: 0.5, Source: models.SourceFallback}, cmd)

	cmd = c.Compose(Input{Normalized: "add 2", Decision: classified(classifier.LabelAdd, 0.9), Products: catalog()})
	assert.Equal(t, models.IntentSearch, cmd.Intent)
	assert.Equal(t, "add 2", cmd.Term, "empty fragment falls back to the normalized text")
}

func TestCompose_PreparedTextRescuesFuzzedProductNames(t *testing.T) {
	c := newComposer()
	in := Input{
		Normalized: "flour salt",
		Prepared:   "tata salt",
		Decision:   classified(classifier.LabelSearch, 0.5),
		Products:   catalog(),
	}

	cmd := c.Compose(in)
	assert.Equal(t, models.IntentAddToCart, cmd.Intent)
	require.NotNil(t, cmd.Product)
	assert.Equal(t, "Tata Salt", cmd.Product.Name)

	in.Prepared = ""
	assert.Equal(t, models.IntentSearch, c.Compose(in).Intent)
}
