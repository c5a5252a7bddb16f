package apriori

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	s, err := Support(3, 4)
	require.NoError(t, err)
	assert.Equal(t, 0.75, s)

	c, err := Confidence(2, 3)
	require.NoError(t, err)
	assert.InDelta(t, 0.6667, c, 1e-4)

	l, err := Lift(c, 0.75)
	require.NoError(t, err)
	assert.InDelta(t, 0.8889, l, 1e-4)

	assert.InDelta(t, 0.5-0.75*0.75, Leverage(0.5, 0.75, 0.75), 1e-12)
}

func TestMetrics_ZeroDenominators(t *testing.T) {
	var inv *InvariantViolationError

	_, err := Support(1, 0)
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, "support", inv.Op)

	_, err = Confidence(0, 0)
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, "confidence", inv.Op)

	_, err = Confidence(4, 3)
	require.True(t, errors.As(err, &inv))

	_, err = Lift(0.5, 0)
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, "lift", inv.Op)
}

func TestCheckFraction(t *testing.T) {
	for _, v := range []float64{0, -0.1, 1.01} {
		assert.ErrorIs(t, checkFraction("x", v), ErrInvalidParameter, "value %v", v)
	}
	for _, v := range []float64{0.0001, 0.5, 1} {
		assert.NoError(t, checkFraction("x", v), "value %v", v)
	}
}
