package survival

import (
	"fmt"
	"math"

	"github.com/kshedden/statmodel/duration"
	"gonum.org/v1/gonum/stat/distuv"
)

// Spec names one Cox model configuration in the battery.
type Spec struct {
	Name string

	// Covariates of the linear predictor; the treatment indicator is
	// always first.
	Covariates []string

	// Weighted applies the CEM matching weights to the partial likelihood.
	Weighted bool

	// Strata stratifies the baseline hazard by matched subclass. This is
	// the repo's rendering of the shared-frailty-by-subclass model: each
	// matched stratum carries its own baseline.
	Strata bool
}

// Battery returns the named sensitivity specifications, identical for both
// endpoints.
func Battery(d *Data) []Spec {
	adj := append([]string{TreatVar}, d.AdjustNames...)
	return []Spec{
		{Name: "crude", Covariates: []string{TreatVar}},
		{Name: "adjusted", Covariates: adj},
		{Name: "adjusted+strata", Covariates: adj, Strata: true},
		{Name: "weighted crude", Covariates: []string{TreatVar}, Weighted: true},
		{Name: "weighted adjusted", Covariates: adj, Weighted: true},
	}
}

// Fit is one fitted proportional-hazards model. Write-once: nothing mutates
// a Fit after FitCox returns it.
type Fit struct {
	Spec     Spec
	Endpoint Endpoint

	Names []string
	Coef  []float64
	SE    []float64
	Z     []float64
	P     []float64
	HR    []float64
	Lo    []float64
	Hi    []float64

	LogLike float64
	AIC     float64
	BIC     float64

	N      int
	Events int

	// PH-assumption (Schoenfeld) test p-value per covariate
	ZPH []float64

	// Library summary text, verbatim
	SummaryText string

	data *Data
}

// TreatP returns the treatment-effect p-value.
func (f *Fit) TreatP() float64 { return f.P[0] }

// TreatZPH returns the PH-assumption p-value for the treatment covariate.
func (f *Fit) TreatZPH() float64 { return f.ZPH[0] }

// FitCox fits one proportional-hazards specification against an endpoint.
func FitCox(d *Data, ep Endpoint, spec Spec) (*Fit, error) {

	names := []string{ep.TimeVar, ep.StatusVar}
	names = append(names, spec.Covariates...)

	config := &duration.PHRegConfig{}
	if spec.Weighted {
		config.WeightVar = "Weight"
		names = append(names, "Weight")
	}
	if spec.Strata {
		config.StrataVar = "Subclass"
		names = append(names, "Subclass")
	}

	ds := d.Dataset(names)

	model, err := duration.NewPHReg(ds, ep.TimeVar, ep.StatusVar, spec.Covariates, config)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", ep.Name, spec.Name, err)
	}

	result, err := model.Fit()
	if err != nil {
		return nil, fmt.Errorf("%s %s: fit failed: %w", ep.Name, spec.Name, err)
	}

	f := &Fit{
		Spec:     spec,
		Endpoint: ep,
		Names:    append([]string(nil), spec.Covariates...),
		Coef:     result.Params(),
		SE:       result.StdErr(),
		LogLike:  result.LogLike(),
		N:        len(d.Recs),
		data:     d,
	}
	f.SummaryText = fmt.Sprintf("%v", result.Summary())

	status := d.Column(ep.StatusVar)
	for _, s := range status {
		if s == 1 {
			f.Events++
		}
	}

	// Stratified and weighted fits do not always populate the z and p
	// vectors of the result; when a field is absent or undefined it is
	// rebuilt from the coefficient and its standard error. The two fields
	// fall back independently.
	zs := result.ZScores()
	ps := result.PValues()

	norm := distuv.Normal{Mu: 0, Sigma: 1}
	k := len(f.Coef)
	f.Z = make([]float64, k)
	f.P = make([]float64, k)
	f.HR = make([]float64, k)
	f.Lo = make([]float64, k)
	f.Hi = make([]float64, k)

	for i := 0; i < k; i++ {

		if i < len(zs) && !math.IsNaN(zs[i]) {
			f.Z[i] = zs[i]
		} else {
			f.Z[i] = f.Coef[i] / f.SE[i]
		}

		if i < len(ps) && !math.IsNaN(ps[i]) {
			f.P[i] = ps[i]
		} else {
			f.P[i] = 2 * norm.Survival(math.Abs(f.Z[i]))
		}

		f.HR[i] = math.Exp(f.Coef[i])
		f.Lo[i] = math.Exp(f.Coef[i] - 1.96*f.SE[i])
		f.Hi[i] = math.Exp(f.Coef[i] + 1.96*f.SE[i])
	}

	// Information criteria on the partial likelihood, with the event
	// count as the effective sample size.
	f.AIC = -2*f.LogLike + 2*float64(k)
	f.BIC = -2*f.LogLike + float64(k)*math.Log(float64(f.Events))

	f.ZPH, err = schoenfeldTest(d, ep, spec, f.Coef)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", ep.Name, spec.Name, err)
	}

	return f, nil
}
