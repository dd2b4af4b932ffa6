/*
Analyze the matched cohort: Kaplan-Meier curves and log-rank tests for
overall and progression-free survival, crude and covariate-adjusted Cox
proportional-hazards models with CEM weights and subclass strata, and the
sensitivity comparison across all model specifications.
*/

package main

import (
	"flag"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/jeremi-chabros/GBM-FUS/internal/cohort"
	"github.com/jeremi-chabros/GBM-FUS/internal/config"
	"github.com/jeremi-chabros/GBM-FUS/internal/plotting"
	"github.com/jeremi-chabros/GBM-FUS/internal/report"
	"github.com/jeremi-chabros/GBM-FUS/internal/survival"
)

func main() {

	var confPath string
	flag.StringVar(&confPath, "config", "", "YAML run configuration (defaults apply when omitted)")
	flag.Parse()

	cfg, err := config.Load(confPath)
	if err != nil {
		log.Fatal(err)
	}

	recs, err := cohort.ReadMatched(cfg.MatchedPath())
	if err != nil {
		log.Fatal(err)
	}
	log.WithFields(log.Fields{"file": cfg.MatchedPath(), "rows": len(recs)}).Info("loaded matched cohort")

	data, err := survival.NewData(recs)
	if err != nil {
		log.Fatal(err)
	}

	for _, ep := range []struct {
		ep  survival.Endpoint
		tag string
	}{
		{survival.OS, "os"},
		{survival.PFS, "pfs"},
	} {
		analyze(cfg, data, ep.ep, ep.tag)
	}
}

// analyze runs the full battery for one endpoint.
func analyze(cfg config.Config, data *survival.Data, ep survival.Endpoint, tag string) {

	ctrl, trt, err := survival.CurvesByArm(data, ep)
	if err != nil {
		log.Fatal(err)
	}

	lr, err := survival.LogRankTest(
		data.Column(ep.TimeVar), data.Column(ep.StatusVar), data.Column(survival.TreatVar))
	if err != nil {
		log.Fatal(err)
	}
	log.WithFields(log.Fields{"endpoint": ep.Name, "chi2": lr.ChiSq, "p": lr.P}).Info("log-rank")

	title := strings.ToUpper(ep.Name[:1]) + ep.Name[1:]
	err = plotting.KMPlot(cfg.OutPath("km_"+tag+".png"), title, "Months since diagnosis", ctrl, trt, lr)
	if err != nil {
		log.Fatal(err)
	}

	// Fit every specification; a single failed fit aborts the run rather
	// than dropping a row from the comparison.
	var fits []*survival.Fit
	var adjusted *survival.Fit
	for _, spec := range survival.Battery(data) {
		f, err := survival.FitCox(data, ep, spec)
		if err != nil {
			log.Fatal(err)
		}
		log.WithFields(log.Fields{
			"endpoint": ep.Name,
			"model":    spec.Name,
			"hr":       fmt.Sprintf("%.3f", f.HR[0]),
			"p":        fmt.Sprintf("%.4f", f.TreatP()),
		}).Info("cox fit")
		fits = append(fits, f)
		if spec.Name == "adjusted" {
			adjusted = f
		}
	}

	fu := survival.MedianFollowup(data, ep)

	if err := report.CoxSummary(cfg.OutPath("cox_"+tag+".txt"), ep.Name, fu, lr, fits); err != nil {
		log.Fatal(err)
	}

	adj, err := survival.AdjustedCurves(adjusted)
	if err != nil {
		log.Fatal(err)
	}
	err = plotting.AdjustedPlot(cfg.OutPath("cox_adjusted_"+tag+".png"),
		"Adjusted "+ep.Name, "Months since diagnosis", adj)
	if err != nil {
		log.Fatal(err)
	}

	if err := report.Sensitivity(cfg.OutPath("sensitivity_"+tag+".txt"), ep.Name, fits); err != nil {
		log.Fatal(err)
	}
}
