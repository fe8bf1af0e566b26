// internal/models/command.go
package models

type Intent string

const (
	IntentAddToCart      Intent = "add_to_cart"
	IntentRemoveFromCart Intent = "remove_from_cart"
	IntentUpdateQuantity Intent = "update_quantity"
	IntentCheckout       Intent = "checkout"
	IntentClearCart      Intent = "clear_cart"
	IntentGenerateBill   Intent = "generate_bill"
	IntentNavigation     Intent = "navigation"
	IntentSearch         Intent = "search"
	IntentUnknown        Intent = "unknown"
)

var allIntents = []Intent{
	IntentAddToCart,
	IntentRemoveFromCart,
	IntentUpdateQuantity,
	IntentCheckout,
	IntentClearCart,
	IntentGenerateBill,
	IntentNavigation,
	IntentSearch,
	IntentUnknown,
}

// AllIntents returns every intent the engine can emit.
func AllIntents() []Intent {
	out := make([]Intent, len(allIntents))
	copy(out, allIntents)
	return out
}

func (i Intent) Valid() bool {
	for _, known := range allIntents {
		if i == known {
			return true
		}
	}
	return false
}

// MutatesCart reports whether acting on the intent changes cart contents.
func (i Intent) MutatesCart() bool {
	switch i {
	case IntentAddToCart, IntentRemoveFromCart, IntentUpdateQuantity, IntentClearCart:
		return true
	}
	return false
}

// NeedsProduct reports whether the intent is only meaningful with a resolved product.
func (i Intent) NeedsProduct() bool {
	switch i {
	case IntentAddToCart, IntentRemoveFromCart, IntentUpdateQuantity:
		return true
	}
	return false
}

// Decision sources recorded on a Command.
const (
	SourceEmptyInput  = "empty_input"
	SourceNavigation  = "navigation"
	SourceClassifier  = "classifier"
	SourceImplicitAdd = "implicit_add"
	SourceFallback    = "fallback"
)

// Command is the structured result of parsing one utterance. It has no
// identity and is discarded once the caller has acted on it.
type Command struct {
	Intent         Intent   `json:"intent"`
	Product        *Product `json:"product,omitempty"`
	Quantity       int      `json:"quantity,omitempty"`
	Term           string   `json:"term,omitempty"`
	Route          string   `json:"route,omitempty"`
	DirectDownload bool     `json:"directDownload,omitempty"`
	Confidence     float64  `json:"confidence,omitempty"`
	Source         string   `json:"source,omitempty"`
}

func UnknownCommand() Command {
	return Command{Intent: IntentUnknown, Source: SourceEmptyInput}
}

func SearchCommand(term, source string) Command {
	return Command{Intent: IntentSearch, Term: term, Source: source}
}
