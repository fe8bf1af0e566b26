package classifier

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"google.golang.org/genai"
)

// DefaultEmbeddingModel is the Gemini embedding model used when none is configured.
const DefaultEmbeddingModel = "gemini-embedding-001"

// Embedder turns texts into vectors, one per input, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// GeminiEmbedder embeds text through the Gemini API.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

func NewGeminiEmbedder(ctx context.Context, apiKey, model string) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: genai api key is required", ErrModelLoad)
	}
	if model == "" {
		model = DefaultEmbeddingModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create genai client: %v", ErrModelLoad, err)
	}
	return &GeminiEmbedder{client: client, model: model}, nil
}

func (g *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := g.client.Models.EmbedContent(ctx, g.model, contents, &genai.EmbedContentConfig{
		TaskType: "CLASSIFICATION",
	})
	if err != nil {
		return nil, fmt.Errorf("genai embed failed: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("genai returned %d embeddings for %d texts", len(result.Embeddings), len(texts))
	}

	out := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		out[i] = emb.Values
	}
	return out, nil
}

// DefaultTemperature sharpens cosine similarities before the softmax. Cosine
// scores between short texts sit close together, so a low temperature keeps
// a clear winner above the confidence threshold.
const DefaultTemperature = 0.05

// Embedding is a zero-shot backend that compares the utterance embedding with
// the embedding of every label and soft-maxes the cosine similarities.
type Embedding struct {
	embedder    Embedder
	temperature float64

	mu     sync.RWMutex
	labels map[string][]float32
}

func NewEmbedding(embedder Embedder, temperature float64) *Embedding {
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	return &Embedding{
		embedder:    embedder,
		temperature: temperature,
		labels:      make(map[string][]float32),
	}
}

// Warm embeds labels ahead of the first Classify call.
func (e *Embedding) Warm(ctx context.Context, labels []string) error {
	_, err := e.labelVectors(ctx, labels)
	return err
}

func (e *Embedding) Classify(ctx context.Context, text string, labels []string) (Result, error) {
	if len(labels) == 0 {
		return Result{}, fmt.Errorf("%w: no candidate labels", ErrUnavailable)
	}

	vectors, err := e.labelVectors(ctx, labels)
	if err != nil {
		return Result{}, err
	}

	embedded, err := e.embedder.Embed(ctx, []string{text})
	if err != nil {
		return Result{}, wrapEmbedError(err)
	}
	if len(embedded) != 1 {
		return Result{}, fmt.Errorf("%w: expected one utterance embedding", ErrUnavailable)
	}

	sims := make([]float64, len(labels))
	for i, v := range vectors {
		sims[i] = cosine(embedded[0], v)
	}
	probs := softmax(sims, e.temperature)

	best := 0
	for i := range probs {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return Result{Label: labels[best], Score: probs[best]}, nil
}

func (e *Embedding) labelVectors(ctx context.Context, labels []string) ([][]float32, error) {
	out := make([][]float32, len(labels))
	var missing []string

	e.mu.RLock()
	for i, l := range labels {
		if v, ok := e.labels[l]; ok {
			out[i] = v
		} else {
			missing = append(missing, l)
		}
	}
	e.mu.RUnlock()

	if len(missing) == 0 {
		return out, nil
	}

	vectors, err := e.embedder.Embed(ctx, missing)
	if err != nil {
		return nil, wrapEmbedError(err)
	}
	if len(vectors) != len(missing) {
		return nil, fmt.Errorf("%w: got %d label embeddings for %d labels", ErrUnavailable, len(vectors), len(missing))
	}

	e.mu.Lock()
	for i, l := range missing {
		e.labels[l] = vectors[i]
	}
	for i, l := range labels {
		out[i] = e.labels[l]
	}
	e.mu.Unlock()

	return out, nil
}

func wrapEmbedError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func softmax(xs []float64, temperature float64) []float64 {
	if len(xs) == 0 {
		return nil
	}
	max := xs[0]
	for _, x := range xs[1:] {
		if x > max {
			max = x
		}
	}
	out := make([]float64, len(xs))
	var sum float64
	for i, x := range xs {
		out[i] = math.Exp((x - max) / temperature)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
