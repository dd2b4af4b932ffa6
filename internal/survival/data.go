// Package survival fits the study's time-to-event models on the matched
// cohort: Kaplan-Meier curves with log-rank tests, Cox proportional-hazards
// regressions with CEM weights or subclass strata, Schoenfeld-residual
// assumption checks, and direct-adjusted survival curves.
package survival

import (
	"fmt"
	"sort"

	"github.com/kshedden/statmodel/statmodel"

	"github.com/jeremi-chabros/GBM-FUS/internal/cohort"
)

// TreatVar is the treatment indicator column; it is always the first
// covariate of every model in this study.
const TreatVar = "FUS"

// Endpoint selects which time-to-event outcome a model is fit against.
type Endpoint struct {
	Name      string
	TimeVar   string
	StatusVar string
	Time      func(*cohort.Record) float64
	Event     func(*cohort.Record) bool
}

var (
	// OS is overall survival: death as the event.
	OS = Endpoint{
		Name:      "overall survival",
		TimeVar:   "OSMonths",
		StatusVar: "OSEvent",
		Time:      func(r *cohort.Record) float64 { return r.OSMonths },
		Event:     func(r *cohort.Record) bool { return r.Dead },
	}

	// PFS is progression-free survival: progression as the event.
	PFS = Endpoint{
		Name:      "progression-free survival",
		TimeVar:   "PFSMonths",
		StatusVar: "PFSEvent",
		Time:      func(r *cohort.Record) float64 { return r.PFSMonths },
		Event:     func(r *cohort.Record) bool { return r.Progressed },
	}
)

// Data is the matched cohort in column form, ready to feed the models.
type Data struct {
	Recs []*cohort.Record

	cols map[string][]float64

	// AdjustNames are the non-treatment covariates of the adjusted
	// models, location dummies included.
	AdjustNames []string
}

// NewData materializes the model columns from the matched records.
func NewData(recs []*cohort.Record) (*Data, error) {

	if len(recs) == 0 {
		return nil, fmt.Errorf("empty matched cohort")
	}

	d := &Data{Recs: recs, cols: make(map[string][]float64)}

	put := func(name string, f func(*cohort.Record) float64) {
		x := make([]float64, len(recs))
		for i, r := range recs {
			x[i] = f(r)
		}
		d.cols[name] = x
	}

	bput := func(name string, f func(*cohort.Record) bool) {
		put(name, func(r *cohort.Record) float64 {
			if f(r) {
				return 1
			}
			return 0
		})
	}

	bput(TreatVar, func(r *cohort.Record) bool { return r.FUS })
	put("Age", func(r *cohort.Record) float64 { return r.Age })
	bput("Male", func(r *cohort.Record) bool { return r.Male() })
	bput("White", func(r *cohort.Record) bool { return r.White })
	bput("MGMTMethylated", func(r *cohort.Record) bool { return r.MGMT == cohort.MGMTResolved })
	put("TumorSize", func(r *cohort.Record) float64 { return r.TumorSize })
	put("Weight", func(r *cohort.Record) float64 { return r.Weight })
	put("Subclass", func(r *cohort.Record) float64 { return float64(r.Subclass) })

	for _, ep := range []Endpoint{OS, PFS} {
		ep := ep
		put(ep.TimeVar, ep.Time)
		bput(ep.StatusVar, ep.Event)
	}

	d.AdjustNames = []string{"Age", "Male", "MGMTMethylated", "White", "TumorSize"}

	// Location enters the adjusted models as dummies, first observed
	// level as reference.
	locs := make(map[string]bool)
	var lv []string
	for _, r := range recs {
		if !locs[r.Location] {
			locs[r.Location] = true
			lv = append(lv, r.Location)
		}
	}
	sort.Strings(lv)
	for _, loc := range lv[1:] {
		loc := loc
		name := "Location" + loc
		bput(name, func(r *cohort.Record) bool { return r.Location == loc })
		d.AdjustNames = append(d.AdjustNames, name)
	}

	return d, nil
}

// Column returns a named column; the name must exist.
func (d *Data) Column(name string) []float64 {
	x, ok := d.cols[name]
	if !ok {
		panic(fmt.Sprintf("survival: no column %q", name))
	}
	return x
}

// Dataset assembles a statmodel dataset holding the named columns.
func (d *Data) Dataset(names []string) statmodel.Dataset {

	da := make([][]float64, len(names))
	for i, na := range names {
		da[i] = d.Column(na)
	}

	return statmodel.NewDataset(da, names)
}

// Split partitions a column's values by treatment arm, control first.
func (d *Data) Split(name string) (ctrl, trt []float64) {
	fus := d.Column(TreatVar)
	x := d.Column(name)
	for i := range x {
		if fus[i] == 1 {
			trt = append(trt, x[i])
		} else {
			ctrl = append(ctrl, x[i])
		}
	}
	return ctrl, trt
}
