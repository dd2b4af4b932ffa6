package survival

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogRankNull(t *testing.T) {

	// Identical event histories in both arms: observed equals expected
	// exactly and the test cannot reject.
	var time, status, group []float64
	for _, tv := range []float64{3, 5, 8, 12, 14, 20} {
		for g := 0.0; g <= 1; g++ {
			time = append(time, tv)
			status = append(status, 1)
			group = append(group, g)
		}
	}

	lr, err := LogRankTest(time, status, group)
	require.NoError(t, err)

	assert.InDelta(t, 0, lr.ChiSq, 1e-12)
	assert.InDelta(t, 1, lr.P, 1e-9)
	assert.InDelta(t, lr.Expected, lr.Observed, 1e-12)
}

func TestLogRankNoEvents(t *testing.T) {
	_, err := LogRankTest([]float64{1, 2}, []float64{0, 0}, []float64{0, 1})
	require.Error(t, err)
}

func TestLogRankLengthMismatch(t *testing.T) {
	_, err := LogRankTest([]float64{1, 2}, []float64{1}, []float64{0, 1})
	require.Error(t, err)
}
