// Package classifier decides the intent of a normalised utterance. A fixed
// navigation rule set runs first; everything else goes to a pluggable
// zero-shot backend whose answer is mapped onto the closed intent set.
package classifier

import (
	"context"
	"errors"
)

var (
	ErrUnavailable = errors.New("CLASSIFIER_UNAVAILABLE")
	ErrTimeout     = errors.New("CLASSIFIER_TIMEOUT")
	ErrModelLoad   = errors.New("MODEL_LOAD_FAILED")
)

// Result is the top-ranked label of a zero-shot call.
type Result struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier ranks labels for text and returns the best one.
type Classifier interface {
	Classify(ctx context.Context, text string, labels []string) (Result, error)
}

// Func adapts a plain function to Classifier.
type Func func(ctx context.Context, text string, labels []string) (Result, error)

func (f Func) Classify(ctx context.Context, text string, labels []string) (Result, error) {
	return f(ctx, text, labels)
}

// Fixed returns a Classifier that always answers label with score.
func Fixed(label Label, score float64) Classifier {
	return Func(func(context.Context, string, []string) (Result, error) {
		return Result{Label: label.String(), Score: score}, nil
	})
}

// Failing returns a Classifier that always fails with err.
func Failing(err error) Classifier {
	return Func(func(context.Context, string, []string) (Result, error) {
		return Result{}, err
	})
}

func contains(labels []string, s string) bool {
	for _, l := range labels {
		if l == s {
			return true
		}
	}
	return false
}
