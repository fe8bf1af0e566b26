// Package nlu turns a spoken-command transcript and a catalog snapshot into a
// structured command. Parse never fails: anything that goes wrong inside the
// pipeline degrades to a search for what the user said.
package nlu

import (
	"context"
	"fmt"
	"time"

	"shopsense-voice/internal/common/logger"
	"shopsense-voice/internal/common/metrics"
	"shopsense-voice/internal/models"
	"shopsense-voice/internal/nlu/classifier"
	"shopsense-voice/internal/nlu/composer"
	"shopsense-voice/internal/nlu/normalizer"
	"shopsense-voice/internal/nlu/resolver"
	"shopsense-voice/internal/nlu/vocabulary"
)

// Options tunes the pipeline. Zero values select the defaults.
type Options struct {
	Vocabulary          *vocabulary.Vocabulary
	NormalizerThreshold int
	MinFuzzyLength      int
	EntityThreshold     int
	MinConfidence       float64
}

func DefaultOptions() Options {
	return Options{
		Vocabulary:          vocabulary.Default(),
		NormalizerThreshold: normalizer.DefaultThreshold,
		MinFuzzyLength:      normalizer.DefaultMinFuzzyLength,
		EntityThreshold:     resolver.DefaultThreshold,
		MinConfidence:       classifier.DefaultMinConfidence,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Vocabulary == nil {
		o.Vocabulary = d.Vocabulary
	}
	if o.NormalizerThreshold <= 0 {
		o.NormalizerThreshold = d.NormalizerThreshold
	}
	if o.MinFuzzyLength <= 0 {
		o.MinFuzzyLength = d.MinFuzzyLength
	}
	if o.EntityThreshold <= 0 {
		o.EntityThreshold = d.EntityThreshold
	}
	if o.MinConfidence <= 0 {
		o.MinConfidence = d.MinConfidence
	}
	return o
}

// Explanation records every stage of one parse.
type Explanation struct {
	Prepared   string             `json:"prepared"`
	Normalized string             `json:"normalized"`
	Tokens     []normalizer.Token `json:"tokens,omitempty"`
	Decision   DecisionTrace      `json:"decision"`
	Fragment   string             `json:"fragment"`
	Command    models.Command     `json:"command"`
	Duration   time.Duration      `json:"duration"`
}

type DecisionTrace struct {
	Intent models.Intent `json:"intent"`
	Label  string        `json:"label,omitempty"`
	Score  float64       `json:"score"`
	Reason string        `json:"reason"`
	Forced bool          `json:"forced"`
	Error  string        `json:"error,omitempty"`
}

type Engine struct {
	options    Options
	normalizer *normalizer.Normalizer
	classifier *classifier.IntentClassifier
	composer   *composer.Composer
	logger     logger.Logger
}

// New builds an engine around backend, the zero-shot classifier.
func New(backend classifier.Classifier, opts Options, log logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	opts = opts.withDefaults()
	log = log.With(map[string]interface{}{"component": "nlu"})

	return &Engine{
		options: opts,
		normalizer: normalizer.New(opts.Vocabulary, normalizer.Config{
			Threshold:      opts.NormalizerThreshold,
			MinFuzzyLength: opts.MinFuzzyLength,
		}),
		classifier: classifier.NewIntentClassifier(backend, opts.MinConfidence, log),
		composer:   composer.New(opts.Vocabulary, resolver.New(opts.Vocabulary, opts.EntityThreshold)),
		logger:     log,
	}
}

func (e *Engine) Options() Options { return e.options }

// Parse understands one utterance. Empty text yields the unknown intent
// without running any stage.
func (e *Engine) Parse(ctx context.Context, text string, products []models.Product) models.Command {
	return e.run(ctx, text, products, false).Command
}

// Explain is Parse plus the intermediate results of every stage.
func (e *Engine) Explain(ctx context.Context, text string, products []models.Product) Explanation {
	return e.run(ctx, text, products, true)
}

func (e *Engine) run(ctx context.Context, text string, products []models.Product, trace bool) (exp Explanation) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			metrics.ParsePanics.Inc()
			e.logger.Error("parse panicked, falling back to search", map[string]interface{}{
				"text":  text,
				"panic": fmt.Sprint(r),
			})
			term := exp.Normalized
			if term == "" {
				term = exp.Prepared
			}
			exp.Command = models.SearchCommand(term, models.SourceFallback)
		}
		exp.Duration = time.Since(start)
		e.record(exp)
	}()

	exp.Prepared = normalizer.Prepare(text)
	if exp.Prepared == "" {
		exp.Command = models.UnknownCommand()
		return exp
	}

	if trace {
		exp.Tokens = e.normalizer.Trace(exp.Prepared)
	}
	exp.Normalized = e.normalizer.Normalize(exp.Prepared)

	decision := e.classifier.Decide(ctx, exp.Normalized)
	exp.Decision = DecisionTrace{
		Intent: decision.Intent,
		Label:  decision.Label,
		Score:  decision.Score,
		Reason: decision.Reason,
		Forced: decision.Forced,
	}
	if decision.Err != nil {
		exp.Decision.Error = decision.Err.Error()
	}
	exp.Fragment = e.composer.Fragment(exp.Normalized)

	exp.Command = e.composer.Compose(composer.Input{
		Normalized: exp.Normalized,
		Prepared:   exp.Prepared,
		Decision:   decision,
		Products:   products,
	})
	return exp
}

func (e *Engine) record(exp Explanation) {
	cmd := exp.Command
	metrics.ParsesTotal.WithLabelValues(string(cmd.Intent), cmd.Source).Inc()
	metrics.ParseDuration.WithLabelValues(string(cmd.Intent)).Observe(exp.Duration.Seconds())
	if exp.Decision.Forced {
		metrics.ClassifierFallbacks.WithLabelValues(exp.Decision.Reason).Inc()
	}

	fields := map[string]interface{}{
		"intent":     cmd.Intent,
		"source":     cmd.Source,
		"normalized": exp.Normalized,
		"durationMs": exp.Duration.Milliseconds(),
	}
	if cmd.Product != nil {
		fields["productId"] = cmd.Product.ID
		fields["quantity"] = cmd.Quantity
	}
	if exp.Decision.Reason != "" {
		fields["reason"] = exp.Decision.Reason
	}
	e.logger.Info("voice command parsed", fields)
}
