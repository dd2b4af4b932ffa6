package survival

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// LogRank holds the two-group log-rank test of equal survival.
type LogRank struct {
	ChiSq float64
	P     float64

	// Observed and expected event counts in the treated group
	Observed float64
	Expected float64
}

// LogRankTest compares survival between control (group==0) and treated
// (group==1) subjects with the standard O-E/V statistic on one degree of
// freedom.
func LogRankTest(time, status, group []float64) (*LogRank, error) {

	n := len(time)
	if n == 0 || len(status) != n || len(group) != n {
		return nil, fmt.Errorf("logrank: need equal-length, non-empty inputs")
	}

	// Distinct event times, ascending.
	evset := make(map[float64]bool)
	for i := range time {
		if status[i] == 1 {
			evset[time[i]] = true
		}
	}
	if len(evset) == 0 {
		return nil, fmt.Errorf("logrank: no events")
	}
	var evt []float64
	for t := range evset {
		evt = append(evt, t)
	}
	sort.Float64s(evt)

	var o, e, v float64
	for _, t := range evt {

		var n1, nt, d1, dt float64
		for i := range time {
			if time[i] >= t {
				nt++
				if group[i] == 1 {
					n1++
				}
			}
			if time[i] == t && status[i] == 1 {
				dt++
				if group[i] == 1 {
					d1++
				}
			}
		}

		o += d1
		e += dt * n1 / nt
		if nt > 1 {
			v += dt * (n1 / nt) * (1 - n1/nt) * (nt - dt) / (nt - 1)
		}
	}

	if v == 0 {
		return nil, fmt.Errorf("logrank: zero variance")
	}

	chi := (o - e) * (o - e) / v
	p := distuv.ChiSquared{K: 1}.Survival(chi)
	if math.IsNaN(p) {
		return nil, fmt.Errorf("logrank: undefined p-value")
	}

	return &LogRank{ChiSq: chi, P: p, Observed: o, Expected: e}, nil
}
