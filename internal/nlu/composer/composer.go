// Package composer reconciles an intent decision with the product named in
// the utterance and produces the final command.
package composer

import (
	"regexp"
	"strconv"

	"shopsense-voice/internal/models"
	"shopsense-voice/internal/nlu/classifier"
	"shopsense-voice/internal/nlu/cleaner"
	"shopsense-voice/internal/nlu/resolver"
	"shopsense-voice/internal/nlu/vocabulary"
)

// Action words stripped from the fragment on top of the vocabulary verbs.
var actionPhrases = append([]string{"generate", "save order", "place order"}, classifier.NavigationTriggers...)

var firstInteger = regexp.MustCompile(`[0-9]+`)

// Input is everything the composer needs for one utterance.
type Input struct {
	// Normalized is the canonicalised utterance.
	Normalized string
	// Prepared is the utterance before canonicalisation (NFKC, lower-cased).
	// It is resolved too, so product names that fuzz onto a vocabulary term
	// ("tata" onto flour) can still match the catalog.
	Prepared string
	Decision classifier.Decision
	Products []models.Product
}

type Composer struct {
	resolver *resolver.Resolver
	cleaner  *cleaner.Pipeline
}

func New(vocab *vocabulary.Vocabulary, res *resolver.Resolver) *Composer {
	return &Composer{
		resolver: res,
		cleaner:  cleaner.ForCommand(vocab, actionPhrases...),
	}
}

// Fragment is the product-naming remainder of text.
func (c *Composer) Fragment(text string) string {
	return c.cleaner.Apply(text)
}

// Quantity is the first integer in the normalised text, or 1.
func Quantity(normalized string) int {
	m := firstInteger.FindString(normalized)
	if m == "" {
		return 1
	}
	n, err := strconv.Atoi(m)
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

func (c *Composer) Compose(in Input) models.Command {
	d := in.Decision

	// Low confidence or a failed classifier never reaches the entity rules.
	if d.Forced {
		return models.Command{
			Intent:     models.IntentSearch,
			Term:       d.Term,
			Confidence: d.Score,
			Source:     models.SourceFallback,
		}
	}

	switch d.Intent {
	case models.IntentNavigation:
		return models.Command{
			Intent:     models.IntentNavigation,
			Route:      d.Route,
			Confidence: d.Score,
			Source:     models.SourceNavigation,
		}
	case models.IntentCheckout, models.IntentClearCart:
		return models.Command{Intent: d.Intent, Confidence: d.Score, Source: models.SourceClassifier}
	case models.IntentGenerateBill:
		return models.Command{
			Intent:         models.IntentGenerateBill,
			DirectDownload: true,
			Confidence:     d.Score,
			Source:         models.SourceClassifier,
		}
	}

	fragment := c.Fragment(in.Normalized)
	match, matched := c.resolve(fragment, in)

	if matched {
		product := match.Product
		switch d.Intent {
		case models.IntentRemoveFromCart, models.IntentUpdateQuantity, models.IntentAddToCart:
			return models.Command{
				Intent:     d.Intent,
				Product:    &product,
				Quantity:   Quantity(in.Normalized),
				Term:       fragment,
				Confidence: d.Score,
				Source:     models.SourceClassifier,
			}
		default:
			// Implicit add: a resolved product outranks a weak verb label.
			return models.Command{
				Intent:     models.IntentAddToCart,
				Product:    &product,
				Quantity:   Quantity(in.Normalized),
				Term:       fragment,
				Confidence: float64(match.Score) / 100,
				Source:     models.SourceImplicitAdd,
			}
		}
	}

	term := fragment
	if term == "" {
		term = in.Normalized
	}
	return models.Command{
		Intent:     models.IntentSearch,
		Term:       term,
		Confidence: d.Score,
		Source:     models.SourceFallback,
	}
}

// resolve matches the cleaned normalised fragment and, when available, the
// cleaned prepared text. The higher score wins; ties keep the normalised one.
func (c *Composer) resolve(fragment string, in Input) (resolver.Match, bool) {
	best, ok := c.resolver.Resolve(fragment, in.Products)

	if in.Prepared == "" || in.Prepared == in.Normalized {
		return best, ok
	}
	raw, rawOK := c.resolver.Resolve(c.Fragment(in.Prepared), in.Products)
	if rawOK && (!ok || raw.Score > best.Score) {
		return raw, true
	}
	return best, ok
}
