package plotting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKDEIntegratesToOne(t *testing.T) {

	x := []float64{0.2, 0.3, 0.35, 0.4, 0.5, 0.6, 0.62, 0.7}
	gx, gy := kde(x, -1, 2, 600)
	require.Len(t, gy, 600)

	var area float64
	for i := 1; i < len(gx); i++ {
		area += 0.5 * (gy[i] + gy[i-1]) * (gx[i] - gx[i-1])
	}
	assert.InDelta(t, 1.0, area, 0.02)

	for _, v := range gy {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestKDEEmpty(t *testing.T) {
	gx, gy := kde(nil, 0, 1, 10)
	assert.Len(t, gx, 10)
	for _, v := range gy {
		assert.Zero(t, v)
	}
}
