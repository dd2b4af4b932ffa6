// Package report writes the pipeline's flat text reports. Each writer opens
// its file, writes, and closes before returning, so no two report targets
// are ever open at once.
package report

import (
	"fmt"
	"math"
	"os"

	"github.com/jeremi-chabros/GBM-FUS/internal/cem"
	"github.com/jeremi-chabros/GBM-FUS/internal/survival"
)

// Balance writes the covariate balance diagnostics.
func Balance(path string, res *cem.Result, rows []cem.BalanceRow) error {

	fid, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fid.Close()

	fmt.Fprintf(fid, "Coarsened exact matching summary\n")
	fmt.Fprintf(fid, "================================\n\n")
	fmt.Fprintf(fid, "Matched strata:    %d\n", res.NumStrata)
	fmt.Fprintf(fid, "Matched treated:   %d (dropped %d)\n", res.MatchedTreated, res.DroppedTreated)
	fmt.Fprintf(fid, "Matched controls:  %d (dropped %d)\n\n", res.MatchedControl, res.DroppedControl)

	fmt.Fprintf(fid, "%-22s %10s %10s %8s %8s %10s %10s %8s %8s\n",
		"Covariate", "MeanT.pre", "MeanC.pre", "SMD.pre", "VR.pre",
		"MeanT.post", "MeanC.post", "SMD.post", "VR.post")

	for _, r := range rows {
		fmt.Fprintf(fid, "%-22s %10.3f %10.3f %8.3f %8.3f %10.3f %10.3f %8.3f %8.3f\n",
			r.Name, r.PreMeanT, r.PreMeanC, r.PreSMD, r.PreVR,
			r.PostMeanT, r.PostMeanC, r.PostSMD, r.PostVR)
	}

	return nil
}

// CoxSummary writes the full modeling report for one endpoint: log-rank
// test, median follow-up, and each fitted model's coefficient table with
// assumption checks, plus the library summary verbatim.
func CoxSummary(path, title string, followup float64, lr *survival.LogRank, fits []*survival.Fit) error {

	fid, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fid.Close()

	fmt.Fprintf(fid, "Cox proportional hazards models: %s\n", title)
	if math.IsNaN(followup) {
		fmt.Fprintf(fid, "Median follow-up (reverse KM): not reached\n")
	} else {
		fmt.Fprintf(fid, "Median follow-up (reverse KM): %.1f months\n", followup)
	}
	fmt.Fprintf(fid, "Log-rank: chi2=%.3f  p=%.4f\n\n", lr.ChiSq, lr.P)

	for _, f := range fits {

		fmt.Fprintf(fid, "--- %s (n=%d, events=%d) ---\n", f.Spec.Name, f.N, f.Events)
		fmt.Fprintf(fid, "%-18s %8s %8s %8s %10s %18s %8s\n",
			"Covariate", "HR", "SE", "z", "p", "95% CI", "PH.p")
		for i, na := range f.Names {
			fmt.Fprintf(fid, "%-18s %8.3f %8.3f %8.3f %10.4g %8.3f-%8.3f %8.4f\n",
				na, f.HR[i], f.SE[i], f.Z[i], f.P[i], f.Lo[i], f.Hi[i], f.ZPH[i])
		}
		fmt.Fprintf(fid, "loglik=%.3f  AIC=%.1f  BIC=%.1f\n\n", f.LogLike, f.AIC, f.BIC)
		fmt.Fprintf(fid, "%s\n", f.SummaryText)
	}

	return nil
}

// Sensitivity writes the model-comparison table: one row per specification,
// effect sizes at two decimals, information criteria at zero. Every
// supplied fit produces a row.
func Sensitivity(path, title string, fits []*survival.Fit) error {

	fid, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fid.Close()

	fmt.Fprintf(fid, "Sensitivity analysis: %s\n", title)
	fmt.Fprintf(fid, "%-20s %8s %8s %8s %10s %15s %8s %8s %8s\n",
		"Model", "HR", "SE", "z", "p", "95% CI", "PH.p", "AIC", "BIC")

	for _, f := range fits {
		ci := fmt.Sprintf("%.2f-%.2f", f.Lo[0], f.Hi[0])
		fmt.Fprintf(fid, "%-20s %8.2f %8.2f %8.2f %10.4g %15s %8.2f %8.0f %8.0f\n",
			f.Spec.Name, f.HR[0], f.SE[0], f.Z[0], f.TreatP(), ci,
			f.TreatZPH(), f.AIC, f.BIC)
	}

	return nil
}
