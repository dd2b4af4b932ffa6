// Package cem implements coarsened exact matching of treated and control
// subjects: continuous covariates are banded at fixed cutpoints, subjects
// agreeing on every banded and categorical covariate form a stratum, and
// strata containing both arms become matched subclasses with the usual CEM
// weighting.
package cem

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jeremi-chabros/GBM-FUS/internal/cohort"
)

// Covariate is one matching variable. Num extracts the numeric value used
// for balance diagnostics and, together with Cutpoints, for coarsening.
// When Cat is set the covariate is matched exactly on the category label
// instead.
type Covariate struct {
	Name      string
	Num       func(*cohort.Record) float64
	Cat       func(*cohort.Record) string
	Cutpoints []float64
}

// DefaultCovariates is the study's matching set: age and tumor size banded
// at the configured cutpoints, the rest matched exactly.
func DefaultCovariates(ageCuts, sizeCuts []float64) []Covariate {
	return []Covariate{
		{Name: "Age", Num: func(r *cohort.Record) float64 { return r.Age }, Cutpoints: ageCuts},
		{Name: "TumorSize", Num: func(r *cohort.Record) float64 { return r.TumorSize }, Cutpoints: sizeCuts},
		{Name: "Male", Num: ind(func(r *cohort.Record) bool { return r.Male() })},
		{Name: "White", Num: ind(func(r *cohort.Record) bool { return r.White })},
		{Name: "MGMTMethylated", Num: ind(func(r *cohort.Record) bool { return r.MGMT == cohort.MGMTResolved })},
		{Name: "Location", Cat: func(r *cohort.Record) string { return r.Location }},
	}
}

func ind(f func(*cohort.Record) bool) func(*cohort.Record) float64 {
	return func(r *cohort.Record) float64 {
		if f(r) {
			return 1
		}
		return 0
	}
}

// Result holds the matching assignment and its bookkeeping counts.
type Result struct {

	// Matched records in input order, each annotated with Subclass and
	// Weight
	Matched []*cohort.Record

	NumStrata      int
	MatchedTreated int
	MatchedControl int
	DroppedTreated int
	DroppedControl int
}

type stratum struct {
	treated []int
	control []int
}

// signature returns the exact-match key for one record: the coarsened bin
// of each continuous covariate and the label of each categorical one.
func signature(r *cohort.Record, covs []Covariate) string {

	parts := make([]string, len(covs))
	for i, c := range covs {
		if c.Cat != nil {
			parts[i] = c.Cat(r)
			continue
		}
		parts[i] = strconv.Itoa(sort.SearchFloat64s(c.Cutpoints, c.Num(r)))
	}

	return strings.Join(parts, "|")
}

// Match assigns subclasses and CEM weights. Subclass ids are assigned in
// sorted-signature order and records keep their input order, so identical
// input and cutpoints produce identical output.
func Match(recs []*cohort.Record, covs []Covariate) (*Result, error) {

	strata := make(map[string]*stratum)
	sigs := make([]string, len(recs))

	for i, r := range recs {
		sig := signature(r, covs)
		sigs[i] = sig
		s := strata[sig]
		if s == nil {
			s = new(stratum)
			strata[sig] = s
		}
		if r.FUS {
			s.treated = append(s.treated, i)
		} else {
			s.control = append(s.control, i)
		}
	}

	// Matched strata are those holding at least one subject per arm.
	var keys []string
	for sig, s := range strata {
		if len(s.treated) > 0 && len(s.control) > 0 {
			keys = append(keys, sig)
		}
	}
	sort.Strings(keys)

	if len(keys) == 0 {
		return nil, fmt.Errorf("no stratum contains both a treated and a control subject")
	}

	res := &Result{NumStrata: len(keys)}

	subclass := make(map[string]int)
	for k, sig := range keys {
		subclass[sig] = k + 1
		s := strata[sig]
		res.MatchedTreated += len(s.treated)
		res.MatchedControl += len(s.control)
	}

	// CEM weights: treated subjects count 1; controls in stratum s are
	// reweighted so the control mass per stratum is proportional to its
	// treated count.
	scale := float64(res.MatchedControl) / float64(res.MatchedTreated)

	for i, r := range recs {
		sc, ok := subclass[sigs[i]]
		if !ok {
			r.Subclass = 0
			r.Weight = 0
			if r.FUS {
				res.DroppedTreated++
			} else {
				res.DroppedControl++
			}
			continue
		}

		r.Subclass = sc
		if r.FUS {
			r.Weight = 1
		} else {
			s := strata[sigs[i]]
			r.Weight = float64(len(s.treated)) / float64(len(s.control)) * scale
		}
		res.Matched = append(res.Matched, r)
	}

	return res, nil
}
