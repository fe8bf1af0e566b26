package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestParsesTotal(t *testing.T) {
	c := ParsesTotal.WithLabelValues("checkout", "classifier")
	before := testutil.ToFloat64(c)
	c.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestClassifierFallbacks(t *testing.T) {
	c := ClassifierFallbacks.WithLabelValues("low_confidence")
	before := testutil.ToFloat64(c)
	c.Add(2)
	assert.Equal(t, before+2, testutil.ToFloat64(c))
}
