package classifier

import (
	"context"
	"errors"

	"shopsense-voice/internal/common/logger"
	"shopsense-voice/internal/models"
)

// DefaultMinConfidence is the score below which a model answer is not trusted.
const DefaultMinConfidence = 0.4

// Decision reasons.
const (
	ReasonNavigationRule  = "navigation_rule"
	ReasonClassified      = "classified"
	ReasonLowConfidence   = "low_confidence"
	ReasonClassifierError = "classifier_error"
	ReasonUnmappedLabel   = "unmapped_label"
	ReasonNoRoute         = "navigation_without_route"
)

// Decision is the outcome of the two-tier intent decision. Forced decisions
// were overridden to search and must not be reconciled into a cart mutation.
type Decision struct {
	Intent models.Intent
	Label  string
	Score  float64
	Route  string
	Term   string
	Forced bool
	Reason string
	Err    error
}

// FromRule reports whether the navigation rules decided without the model.
func (d Decision) FromRule() bool { return d.Reason == ReasonNavigationRule }

type IntentClassifier struct {
	backend       Classifier
	minConfidence float64
	labels        []string
	logger        logger.Logger
}

// NewIntentClassifier wraps backend. A non-positive minConfidence selects
// DefaultMinConfidence.
func NewIntentClassifier(backend Classifier, minConfidence float64, log logger.Logger) *IntentClassifier {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &IntentClassifier{
		backend:       backend,
		minConfidence: minConfidence,
		labels:        LabelTexts(),
		logger:        log,
	}
}

func (c *IntentClassifier) MinConfidence() float64 { return c.minConfidence }

// Decide never fails: backend errors and weak answers become search with the
// normalised text as the term.
func (c *IntentClassifier) Decide(ctx context.Context, normalized string) Decision {
	if route, ok := Navigate(normalized); ok {
		return Decision{
			Intent: models.IntentNavigation,
			Label:  LabelNavigation.String(),
			Score:  1,
			Route:  route,
			Reason: ReasonNavigationRule,
		}
	}

	if c.backend == nil {
		return c.forced(normalized, Result{}, ReasonClassifierError, ErrUnavailable)
	}

	res, err := c.backend.Classify(ctx, normalized, c.labels)
	if err != nil {
		if !errors.Is(err, ErrTimeout) && (errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)) {
			err = errors.Join(ErrTimeout, err)
		}
		c.logger.Warn("intent classifier failed, falling back to search", map[string]interface{}{
			"text":  normalized,
			"error": err.Error(),
		})
		return c.forced(normalized, Result{}, ReasonClassifierError, err)
	}

	if res.Score < c.minConfidence {
		return c.forced(normalized, res, ReasonLowConfidence, nil)
	}

	label, ok := ParseLabel(res.Label)
	if !ok {
		c.logger.Warn("classifier returned unknown label", map[string]interface{}{
			"label": res.Label,
		})
		return Decision{
			Intent: models.IntentSearch,
			Label:  res.Label,
			Score:  res.Score,
			Term:   normalized,
			Reason: ReasonUnmappedLabel,
		}
	}

	d := Decision{
		Intent: label.Intent(),
		Label:  res.Label,
		Score:  res.Score,
		Reason: ReasonClassified,
	}

	if d.Intent == models.IntentNavigation {
		route, ok := Route(normalized)
		if !ok {
			d.Intent = models.IntentSearch
			d.Term = normalized
			d.Reason = ReasonNoRoute
			return d
		}
		d.Route = route
	}
	if d.Intent == models.IntentSearch {
		d.Term = normalized
	}
	return d
}

func (c *IntentClassifier) forced(normalized string, res Result, reason string, err error) Decision {
	return Decision{
		Intent: models.IntentSearch,
		Label:  res.Label,
		Score:  res.Score,
		Term:   normalized,
		Forced: true,
		Reason: reason,
		Err:    err,
	}
}
