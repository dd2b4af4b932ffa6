package survival

import (
	"math"

	"github.com/kshedden/statmodel/duration"
	"github.com/kshedden/statmodel/statmodel"
)

// MedianFollowup estimates the median follow-up of the cohort by the
// reverse Kaplan-Meier method: the censoring indicator is flipped and the
// median of the resulting distribution is read off. When the curve never
// drops to 0.5 the median is not reached and NaN is returned.
func MedianFollowup(d *Data, ep Endpoint) float64 {

	status := d.Column(ep.StatusVar)
	rstatus := make([]float64, len(status))
	for i := range rstatus {
		rstatus[i] = 1 - status[i]
	}

	data := statmodel.NewDataset(
		[][]float64{
			copyFloats(d.Column(ep.TimeVar)),
			rstatus,
		},
		[]string{"Time", "Rstatus"},
	)

	sf, err := duration.NewSurvfuncRight(data, "Time", "Rstatus", nil)
	if err != nil {
		return math.NaN()
	}
	sf.Fit()

	ti := sf.Time()
	sp := sf.SurvProb()
	for i := range ti {
		if sp[i] <= 0.5 {
			return ti[i]
		}
	}

	return math.NaN()
}
