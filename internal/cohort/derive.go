package cohort

import (
	"fmt"
	"time"
)

// daysPerMonth converts day spans to months (365.25/12).
const daysPerMonth = 30.4375

// Derive computes the time-to-event durations for each record: overall
// survival from diagnosis to death or censoring, and progression-free
// survival from diagnosis to progression or censoring. A terminal date
// before diagnosis is a data error and aborts the run.
func Derive(recs []*Record) error {

	for _, r := range recs {

		r.OSMonths = months(r.DiagDate, r.LastDate)
		if r.OSMonths < 0 {
			return fmt.Errorf("subject %s: follow-up date precedes diagnosis", r.ID)
		}

		end := r.LastDate
		if r.Progressed {
			end = r.ProgDate
		}
		r.PFSMonths = months(r.DiagDate, end)
		if r.PFSMonths < 0 {
			return fmt.Errorf("subject %s: progression date precedes diagnosis", r.ID)
		}
	}

	return nil
}

func months(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24 / daysPerMonth
}
