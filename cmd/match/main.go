/*
Build the matched cohort: load the raw registry export, apply the protocol
eligibility filters and recodes, run coarsened exact matching of FUS-treated
against control subjects, and emit the matched cohort with its balance
diagnostics.
*/

package main

import (
	"flag"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/jeremi-chabros/GBM-FUS/internal/cem"
	"github.com/jeremi-chabros/GBM-FUS/internal/cohort"
	"github.com/jeremi-chabros/GBM-FUS/internal/config"
	"github.com/jeremi-chabros/GBM-FUS/internal/plotting"
	"github.com/jeremi-chabros/GBM-FUS/internal/report"
)

func main() {

	var confPath string
	flag.StringVar(&confPath, "config", "", "YAML run configuration (defaults apply when omitted)")
	flag.Parse()

	cfg, err := config.Load(confPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		log.Fatal(err)
	}

	tab, err := cohort.Load(cfg.Input)
	if err != nil {
		log.Fatal(err)
	}
	log.WithFields(log.Fields{"file": cfg.Input, "rows": len(tab.Rows)}).Info("loaded raw export")

	recs, st, err := cohort.Clean(tab, cohort.Criteria{
		AgeMax:    cfg.AgeMax,
		KPSMin:    cfg.KPSMin,
		Locations: cfg.Locations,
	})
	if err != nil {
		log.Fatal(err)
	}
	log.WithFields(log.Fields{
		"kept":           st.Kept,
		"no_censor_date": st.NoCensorDate,
		"not_eligible":   st.NotEligible,
		"bad_location":   st.BadLocation,
		"unknown_mgmt":   st.UnknownMGMT,
	}).Info("cleaned cohort")

	if err := cohort.Derive(recs); err != nil {
		log.Fatal(err)
	}

	covs := cem.DefaultCovariates(cfg.AgeCutpoints, cfg.SizeCutpoints)

	res, err := cem.Match(recs, covs)
	if err != nil {
		log.Fatal(err)
	}
	log.WithFields(log.Fields{
		"strata":  res.NumStrata,
		"treated": res.MatchedTreated,
		"control": res.MatchedControl,
	}).Info("matched")

	rows := cem.Balance(recs, res.Matched, covs)
	if err := report.Balance(cfg.OutPath("balance.txt"), res, rows); err != nil {
		log.Fatal(err)
	}

	// Propensity overlap, before and after matching.
	scores, err := cem.Propensity(recs, covs)
	if err != nil {
		log.Fatal(err)
	}
	preC, preT, postC, postT := splitScores(recs, scores)
	err = plotting.DensityOverlay(cfg.OutPath("balance_density.png"),
		"Propensity overlap before/after matching", preC, preT, postC, postT)
	if err != nil {
		log.Fatal(err)
	}

	if err := cohort.WriteMatched(res.Matched, cfg.MatchedPath()); err != nil {
		log.Fatal(err)
	}
	log.WithField("file", cfg.MatchedPath()).Info("wrote matched cohort")
}

// splitScores partitions propensity scores by arm, for the full cleaned
// cohort and for the matched subset.
func splitScores(recs []*cohort.Record, scores []float64) (preC, preT, postC, postT []float64) {

	for i, r := range recs {
		if r.FUS {
			preT = append(preT, scores[i])
			if r.Subclass != 0 {
				postT = append(postT, scores[i])
			}
		} else {
			preC = append(preC, scores[i])
			if r.Subclass != 0 {
				postC = append(postC, scores[i])
			}
		}
	}

	return preC, preT, postC, postT
}
