package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory()

	for i := 1; i <= HistorySize+1; i++ {
		h.Update(float64(i))
	}

	assert.Equal(t, HistorySize, h.Len())
	values := h.Values()
	assert.InDelta(t, 2.0, values[0], 1e-12)
	assert.InDelta(t, float64(HistorySize+1), values[len(values)-1], 1e-12)
}

func TestHistoryMeanDefaultsToOne(t *testing.T) {
	h := NewHistory()
	assert.InDelta(t, 1.0, h.Mean(), 1e-12)

	h.Update(4)
	h.Update(8)
	assert.InDelta(t, 6.0, h.Mean(), 1e-12)
}

func TestHistoryVariance(t *testing.T) {
	h := NewHistory()
	assert.Zero(t, h.Variance())

	h.Update(10)
	assert.Zero(t, h.Variance())

	// Population variance of {10, 14} is 4.
	h.Update(14)
	assert.InDelta(t, 4.0, h.Variance(), 1e-12)
}

func TestHistoryCustomLimit(t *testing.T) {
	h := NewHistoryWithLimit(3)
	for i := 0; i < 5; i++ {
		h.Update(float64(i))
	}

	assert.Equal(t, []float64{2, 3, 4}, h.Values())
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory()
	h.Update(5)
	h.Clear()

	assert.Zero(t, h.Len())
	assert.InDelta(t, 1.0, h.Mean(), 1e-12)
}

func TestHistoryValuesIsACopy(t *testing.T) {
	h := NewHistory()
	h.Update(1)

	h.Values()[0] = 99
	assert.InDelta(t, 1.0, h.Values()[0], 1e-12)
}
