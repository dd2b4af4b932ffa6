package cem

import (
	"fmt"
	"math"

	"github.com/kshedden/statmodel/glm"
	"github.com/kshedden/statmodel/statmodel"

	"github.com/jeremi-chabros/GBM-FUS/internal/cohort"
)

// Propensity fits a logistic regression of treatment on the matching
// covariates and returns the fitted treatment probability per record, in
// input order. The scores feed the overlap diagnostics; CEM itself does not
// use them as a distance.
func Propensity(recs []*cohort.Record, covs []Covariate) ([]float64, error) {

	if len(recs) == 0 {
		return nil, fmt.Errorf("propensity: empty cohort")
	}

	names := []string{"icept"}
	design := [][]float64{constant(len(recs), 1)}

	for _, c := range covs {
		if c.Cat == nil {
			design = append(design, column(recs, c.Num))
			names = append(names, c.Name)
			continue
		}

		// Categorical covariates enter as indicators, first level as
		// reference.
		lv := levels(recs, c.Cat)
		for _, lev := range lv[1:] {
			lev := lev
			design = append(design, column(recs, func(r *cohort.Record) float64 {
				if c.Cat(r) == lev {
					return 1
				}
				return 0
			}))
			names = append(names, c.Name+"="+lev)
		}
	}

	fus := column(recs, ind(func(r *cohort.Record) bool { return r.FUS }))

	da := append([][]float64{fus}, design...)
	dnames := append([]string{"FUS"}, names...)

	ds := statmodel.NewDataset(da, dnames)

	c := glm.DefaultConfig()
	c.Family = glm.NewFamily(glm.BinomialFamily)

	model, err := glm.NewGLM(ds, "FUS", names, c)
	if err != nil {
		return nil, fmt.Errorf("propensity: %w", err)
	}
	result := model.Fit()
	params := result.Params()

	// Fitted probabilities from the linear predictor.
	scores := make([]float64, len(recs))
	for i := range recs {
		var eta float64
		for j := range design {
			eta += params[j] * design[j][i]
		}
		scores[i] = 1 / (1 + math.Exp(-eta))
	}

	return scores, nil
}

func column(recs []*cohort.Record, f func(*cohort.Record) float64) []float64 {
	x := make([]float64, len(recs))
	for i, r := range recs {
		x[i] = f(r)
	}
	return x
}

func constant(n int, v float64) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = v
	}
	return x
}
