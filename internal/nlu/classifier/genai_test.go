package classifier

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder maps known texts to fixed vectors and counts requested texts.
type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	calls   [][]string
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string(nil), texts...))
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := f.vectors[t]
		if !ok {
			v = []float32{0, 0, 1}
		}
		out[i] = v
	}
	return out, nil
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{vectors: map[string][]float32{
		"add item to cart":      {1, 0, 0},
		"remove item from cart": {0, 1, 0},
		"search for product":    {0, 0, 1},
		"add 2 rice":            {0.9, 0.1, 0},
		"remove oil":            {0.1, 0.95, 0},
	}}
}

var embeddingLabels = []string{"add item to cart", "remove item from cart", "search for product"}

func TestEmbedding_Classify(t *testing.T) {
	e := NewEmbedding(newFakeEmbedder(), 0)

	res, err := e.Classify(context.Background(), "add 2 rice", embeddingLabels)
	require.NoError(t, err)
	assert.Equal(t, "add item to cart", res.Label)
	assert.Greater(t, res.Score, DefaultMinConfidence)

	res, err = e.Classify(context.Background(), "remove oil", embeddingLabels)
	require.NoError(t, err)
	assert.Equal(t, "remove item from cart", res.Label)
}

func TestEmbedding_LabelsEmbeddedOnce(t *testing.T) {
	fe := newFakeEmbedder()
	e := NewEmbedding(fe, 0)

	require.NoError(t, e.Warm(context.Background(), embeddingLabels))
	_, err := e.Classify(context.Background(), "add 2 rice", embeddingLabels)
	require.NoError(t, err)
	_, err = e.Classify(context.Background(), "remove oil", embeddingLabels)
	require.NoError(t, err)

	require.Len(t, fe.calls, 3)
	assert.Equal(t, embeddingLabels, fe.calls[0])
	assert.Equal(t, []string{"add 2 rice"}, fe.calls[1])
	assert.Equal(t, []string{"remove oil"}, fe.calls[2])
}

func TestEmbedding_Errors(t *testing.T) {
	_, err := NewEmbedding(newFakeEmbedder(), 0).Classify(context.Background(), "rice", nil)
	assert.ErrorIs(t, err, ErrUnavailable)

	fe := newFakeEmbedder()
	fe.err = errors.New("quota exceeded")
	_, err = NewEmbedding(fe, 0).Classify(context.Background(), "rice", embeddingLabels)
	assert.ErrorIs(t, err, ErrUnavailable)

	fe.err = context.DeadlineExceeded
	_, err = NewEmbedding(fe, 0).Classify(context.Background(), "rice", embeddingLabels)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestNewGeminiEmbedder_RequiresKey(t *testing.T) {
	_, err := NewGeminiEmbedder(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrModelLoad)
}

func TestSoftmaxAndCosine(t *testing.T) {
	assert.InDelta(t, 1.0, cosine([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.Equal(t, 0.0, cosine([]float32{1}, []float32{1, 2}))
	assert.Equal(t, 0.0, cosine([]float32{0, 0}, []float32{1, 2}))

	probs := softmax([]float64{0.2, 0.2}, 0.05)
	assert.InDelta(t, 0.5, probs[0], 1e-9)
	var sum float64
	for _, p := range softmax([]float64{0.9, 0.1, 0.3}, 0.05) {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}
