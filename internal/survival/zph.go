package survival

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// schoenfeldTest runs the Grambsch-Therneau proportional-hazards check for
// each covariate of a fitted model: scaled Schoenfeld residuals are
// regressed on event time and the slope tested against zero. Risk sets
// honor the model's weights and subclass strata.
func schoenfeldTest(d *Data, ep Endpoint, spec Spec, beta []float64) ([]float64, error) {

	p := len(spec.Covariates)
	n := len(d.Recs)

	x := make([][]float64, p)
	for j, na := range spec.Covariates {
		x[j] = d.Column(na)
	}
	time := d.Column(ep.TimeVar)
	status := d.Column(ep.StatusVar)

	wgt := make([]float64, n)
	for i := range wgt {
		wgt[i] = 1
	}
	if spec.Weighted {
		copy(wgt, d.Column("Weight"))
	}

	strat := make([]float64, n)
	if spec.Strata {
		copy(strat, d.Column("Subclass"))
	}

	// Risk score per subject
	risk := make([]float64, n)
	for i := 0; i < n; i++ {
		var eta float64
		for j := 0; j < p; j++ {
			eta += beta[j] * x[j][i]
		}
		risk[i] = wgt[i] * math.Exp(eta)
	}

	// Event order
	var events []int
	for i := 0; i < n; i++ {
		if status[i] == 1 {
			events = append(events, i)
		}
	}
	if len(events) <= p {
		return nil, fmt.Errorf("schoenfeld: too few events (%d) for %d covariates", len(events), p)
	}
	sort.Slice(events, func(a, b int) bool { return time[events[a]] < time[events[b]] })
	nd := len(events)

	resid := make([][]float64, nd) // Schoenfeld residual per event
	vbar := mat.NewDense(p, p, nil)
	xbar := make([]float64, p)

	for k, i := range events {

		// Weighted covariate mean over the risk set, within stratum.
		var rtot float64
		for j := range xbar {
			xbar[j] = 0
		}
		for l := 0; l < n; l++ {
			if time[l] < time[i] || strat[l] != strat[i] {
				continue
			}
			rtot += risk[l]
			for j := 0; j < p; j++ {
				xbar[j] += risk[l] * x[j][l]
			}
		}
		for j := 0; j < p; j++ {
			xbar[j] /= rtot
		}

		// Risk-set covariance contribution
		for l := 0; l < n; l++ {
			if time[l] < time[i] || strat[l] != strat[i] {
				continue
			}
			for a := 0; a < p; a++ {
				for b := 0; b < p; b++ {
					vbar.Set(a, b, vbar.At(a, b)+
						risk[l]*(x[a][l]-xbar[a])*(x[b][l]-xbar[b])/rtot)
				}
			}
		}

		s := make([]float64, p)
		for j := 0; j < p; j++ {
			s[j] = x[j][i] - xbar[j]
		}
		resid[k] = s
	}

	vbar.Scale(1/float64(nd), vbar)

	var vinv mat.Dense
	if err := vinv.Inverse(vbar); err != nil {
		return nil, fmt.Errorf("schoenfeld: singular covariance: %w", err)
	}

	// Centered event times
	g := make([]float64, nd)
	var gmean, gss float64
	for k, i := range events {
		g[k] = time[i]
		gmean += g[k]
	}
	gmean /= float64(nd)
	for k := range g {
		g[k] -= gmean
		gss += g[k] * g[k]
	}

	out := make([]float64, p)
	chi1 := distuv.ChiSquared{K: 1}

	for j := 0; j < p; j++ {

		// Slope numerator for the scaled residual of covariate j
		var num float64
		for k := range resid {
			var sj float64
			for a := 0; a < p; a++ {
				sj += vinv.At(j, a) * resid[k][a]
			}
			num += g[k] * float64(nd) * sj
		}

		den := float64(nd) * vinv.At(j, j) * gss
		if den <= 0 {
			return nil, fmt.Errorf("schoenfeld: degenerate test for %s", spec.Covariates[j])
		}

		out[j] = chi1.Survival(num * num / den)
	}

	return out, nil
}
