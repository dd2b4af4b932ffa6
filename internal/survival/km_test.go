package survival

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKMShape(t *testing.T) {

	time := []float64{2, 4, 4, 7, 10, 12, 15, 18}
	status := []float64{1, 1, 0, 1, 0, 1, 1, 0}

	c, err := KM(time, status)
	require.NoError(t, err)

	assert.Equal(t, 8, c.N)
	assert.Equal(t, 5, c.Events)

	// The estimate is a non-increasing step function from 1.
	assert.Equal(t, 1.0, c.ProbAt(0))
	prev := 1.0
	for i := range c.Time {
		assert.LessOrEqual(t, c.Prob[i], prev)
		prev = c.Prob[i]
	}

	// At-risk counts come straight from the raw times.
	assert.Equal(t, 8, c.AtRisk(0))
	assert.Equal(t, 7, c.AtRisk(4))
	assert.Equal(t, 1, c.AtRisk(16))
	assert.Equal(t, 0, c.AtRisk(19))
}

func TestKMEmpty(t *testing.T) {
	_, err := KM(nil, nil)
	require.Error(t, err)

	_, err = KM([]float64{1}, []float64{1, 0})
	require.Error(t, err)
}

func TestMedianFollowup(t *testing.T) {

	// Censor every other subject so the reverse-KM distribution has mass.
	recs := plantedCohort()
	for i, r := range recs {
		if i%2 == 0 {
			r.Dead = false
		}
	}

	data, err := NewData(recs)
	require.NoError(t, err)

	fu := MedianFollowup(data, OS)
	assert.False(t, math.IsNaN(fu))
	assert.Greater(t, fu, 0.0)
}

func TestMedianFollowupNotReached(t *testing.T) {

	// A fully-observed cohort has no censoring distribution to estimate;
	// the median is not reached rather than an error.
	data, err := NewData(plantedCohort())
	require.NoError(t, err)

	assert.True(t, math.IsNaN(MedianFollowup(data, OS)))
}
