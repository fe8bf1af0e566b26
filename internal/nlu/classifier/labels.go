package classifier

import "shopsense-voice/internal/models"

// Label is one entry of the candidate label set offered to the zero-shot model.
type Label int

const (
	LabelAdd Label = iota
	LabelRemove
	LabelCheckout
	LabelClear
	LabelUpdate
	LabelBill
	LabelNavigation
	LabelSearch

	labelCount
)

var labelTexts = [labelCount]string{
	LabelAdd:        "add item to cart",
	LabelRemove:     "remove item from cart",
	LabelCheckout:   "checkout and complete order",
	LabelClear:      "clear the cart",
	LabelUpdate:     "change item quantity",
	LabelBill:       "generate bill",
	LabelNavigation: "navigate to page",
	LabelSearch:     "search for product",
}

// Every label must map to an intent; the zero value fails TestLabels_Total.
var labelIntents = [labelCount]models.Intent{
	LabelAdd:        models.IntentAddToCart,
	LabelRemove:     models.IntentRemoveFromCart,
	LabelCheckout:   models.IntentCheckout,
	LabelClear:      models.IntentClearCart,
	LabelUpdate:     models.IntentUpdateQuantity,
	LabelBill:       models.IntentGenerateBill,
	LabelNavigation: models.IntentNavigation,
	LabelSearch:     models.IntentSearch,
}

// Labels returns the candidate label set in its fixed order.
func Labels() []Label {
	out := make([]Label, labelCount)
	for i := range out {
		out[i] = Label(i)
	}
	return out
}

// LabelTexts returns the natural-language text of every label, in order.
func LabelTexts() []string {
	out := make([]string, labelCount)
	copy(out, labelTexts[:])
	return out
}

func (l Label) valid() bool { return l >= 0 && l < labelCount }

// String is the text presented to the model.
func (l Label) String() string {
	if !l.valid() {
		return ""
	}
	return labelTexts[l]
}

// Intent maps the label to an engine intent. Out of range labels are search.
func (l Label) Intent() models.Intent {
	if !l.valid() {
		return models.IntentSearch
	}
	return labelIntents[l]
}

// ParseLabel finds the label whose text equals s.
func ParseLabel(s string) (Label, bool) {
	for i, text := range labelTexts {
		if text == s {
			return Label(i), true
		}
	}
	return -1, false
}
