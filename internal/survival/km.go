package survival

import (
	"fmt"

	"github.com/kshedden/statmodel/duration"
	"github.com/kshedden/statmodel/statmodel"
)

// Curve is a Kaplan-Meier estimate for one group.
type Curve struct {

	// Event times and the survival probability and its standard error at
	// each
	Time []float64
	Prob []float64
	SE   []float64

	N      int
	Events int

	rawTime   []float64
	rawStatus []float64
}

// KM estimates the survival function from right-censored data.
func KM(time, status []float64) (*Curve, error) {

	if len(time) == 0 || len(time) != len(status) {
		return nil, fmt.Errorf("km: need equal-length, non-empty time and status")
	}

	data := statmodel.NewDataset(
		[][]float64{copyFloats(time), copyFloats(status)},
		[]string{"Time", "Status"},
	)

	sf, err := duration.NewSurvfuncRight(data, "Time", "Status", nil)
	if err != nil {
		return nil, fmt.Errorf("km: %w", err)
	}
	sf.Fit()

	c := &Curve{
		Time:      sf.Time(),
		Prob:      sf.SurvProb(),
		SE:        sf.SurvProbSE(),
		N:         len(time),
		rawTime:   time,
		rawStatus: status,
	}
	for _, s := range status {
		if s == 1 {
			c.Events++
		}
	}

	return c, nil
}

// CurvesByArm estimates one curve per treatment arm for an endpoint.
func CurvesByArm(d *Data, ep Endpoint) (ctrl, trt *Curve, err error) {

	tc, tt := d.Split(ep.TimeVar)
	sc, st := d.Split(ep.StatusVar)

	if ctrl, err = KM(tc, sc); err != nil {
		return nil, nil, fmt.Errorf("%s, control arm: %w", ep.Name, err)
	}
	if trt, err = KM(tt, st); err != nil {
		return nil, nil, fmt.Errorf("%s, treated arm: %w", ep.Name, err)
	}

	return ctrl, trt, nil
}

// AtRisk counts the subjects still under observation at time t.
func (c *Curve) AtRisk(t float64) int {
	n := 0
	for _, v := range c.rawTime {
		if v >= t {
			n++
		}
	}
	return n
}

// ProbAt returns the step-function survival probability at time t.
func (c *Curve) ProbAt(t float64) float64 {
	p := 1.0
	for i, tm := range c.Time {
		if tm > t {
			break
		}
		p = c.Prob[i]
	}
	return p
}

func copyFloats(x []float64) []float64 {
	y := make([]float64, len(x))
	copy(y, x)
	return y
}
