package cem

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/jeremi-chabros/GBM-FUS/internal/cohort"
)

// BalanceRow summarizes one covariate's distribution across arms before and
// after matching. SMD is the standardized mean difference, standardized by
// the pre-match pooled standard deviation in both columns so the two are
// comparable.
type BalanceRow struct {
	Name string

	PreMeanT, PreMeanC   float64
	PostMeanT, PostMeanC float64
	PreSMD, PostSMD      float64
	PreVR, PostVR        float64
}

// Balance computes pre/post matching diagnostics for the matching
// covariates. Post-match moments are weighted by the CEM weights.
// Categorical covariates are expanded into one indicator row per observed
// level.
func Balance(all, matched []*cohort.Record, covs []Covariate) []BalanceRow {

	var rows []BalanceRow
	for _, c := range covs {
		if c.Cat == nil {
			rows = append(rows, balanceOne(all, matched, c.Name, c.Num))
			continue
		}

		for _, lev := range levels(all, c.Cat) {
			lev := lev
			f := func(r *cohort.Record) float64 {
				if c.Cat(r) == lev {
					return 1
				}
				return 0
			}
			rows = append(rows, balanceOne(all, matched, c.Name+"="+lev, f))
		}
	}

	return rows
}

func levels(recs []*cohort.Record, f func(*cohort.Record) string) []string {
	seen := make(map[string]bool)
	var lv []string
	for _, r := range recs {
		if v := f(r); !seen[v] {
			seen[v] = true
			lv = append(lv, v)
		}
	}
	sort.Strings(lv)
	return lv
}

func balanceOne(all, matched []*cohort.Record, name string, f func(*cohort.Record) float64) BalanceRow {

	xt, _ := armValues(all, f, true, false)
	xc, _ := armValues(all, f, false, false)
	mt, mc := stat.Mean(xt, nil), stat.Mean(xc, nil)
	vt, vc := stat.Variance(xt, nil), stat.Variance(xc, nil)

	// Pooled pre-match SD is the SMD denominator throughout.
	denom := math.Sqrt((vt + vc) / 2)

	wxt, wt := armValues(matched, f, true, true)
	wxc, wc := armValues(matched, f, false, true)
	wmt, wmc := stat.Mean(wxt, wt), stat.Mean(wxc, wc)
	wvt, wvc := stat.Variance(wxt, wt), stat.Variance(wxc, wc)

	return BalanceRow{
		Name:      name,
		PreMeanT:  mt,
		PreMeanC:  mc,
		PostMeanT: wmt,
		PostMeanC: wmc,
		PreSMD:    smd(mt, mc, denom),
		PostSMD:   smd(wmt, wmc, denom),
		PreVR:     ratio(vt, vc),
		PostVR:    ratio(wvt, wvc),
	}
}

// armValues extracts the covariate values for one arm, with CEM weights
// when weighted is set.
func armValues(recs []*cohort.Record, f func(*cohort.Record) float64, treated, weighted bool) ([]float64, []float64) {

	var x, w []float64
	for _, r := range recs {
		if r.FUS != treated {
			continue
		}
		x = append(x, f(r))
		if weighted {
			w = append(w, r.Weight)
		}
	}
	if !weighted {
		return x, nil
	}
	return x, w
}

func smd(mt, mc, denom float64) float64 {
	if denom == 0 {
		return 0
	}
	return (mt - mc) / denom
}

func ratio(a, b float64) float64 {
	if b == 0 {
		return math.NaN()
	}
	return a / b
}
