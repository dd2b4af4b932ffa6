package cohort

import (
	"fmt"
	"time"
)

// Criteria holds the protocol-eligibility thresholds and the tumor-location
// allow-list applied during cleaning.
type Criteria struct {
	AgeMax    float64
	KPSMin    float64
	Locations []string
}

// mgmtProvisional marks an unknown MGMT status on a FUS-treated subject
// until it is resolved at the end of the cleaning pass.
const mgmtProvisional = "ProvisionalFUS"

// MGMTResolved is the category that provisional MGMT values resolve to.
// Preserved as observed in the study protocol: the resolution is
// unconditional.
const MGMTResolved = "Methylated"

// Stats counts rows dropped by each cleaning rule.
type Stats struct {
	Total        int
	NoCensorDate int
	NotEligible  int
	BadLocation  int
	UnknownMGMT  int
	Kept         int
}

// Clean applies the eligibility filters and recodes to a raw table, in
// protocol order, producing the cleaned cohort. The first cell that cannot
// be coerced aborts the run; rows are never silently repaired.
func Clean(t *Table, cr Criteria) ([]*Record, *Stats, error) {

	locOK := make(map[string]bool)
	for _, v := range cr.Locations {
		locOK[v] = true
	}

	st := &Stats{Total: len(t.Rows)}
	var out []*Record

	for _, row := range t.Rows {

		id, err := t.Get(row, "ID")
		if err != nil {
			return nil, nil, err
		}

		// Censoring date must be known before anything else is looked at.
		last, err := t.Get(row, "LastFollowUpDate")
		if err != nil {
			return nil, nil, err
		}
		if last == "" || last == Unknown {
			st.NoCensorDate++
			continue
		}

		r := &Record{ID: id}

		// Protocol eligibility: chemo, radio, performance status, age.
		if r.Chemo, err = getFlag(t, row, id, "Chemo"); err != nil {
			return nil, nil, err
		}
		if r.Radio, err = getFlag(t, row, id, "Radio"); err != nil {
			return nil, nil, err
		}
		if r.KPS, err = getFloat(t, row, id, "KPS"); err != nil {
			return nil, nil, err
		}
		if r.Age, err = getFloat(t, row, id, "Age"); err != nil {
			return nil, nil, err
		}
		if !r.Chemo || !r.Radio || r.KPS < cr.KPSMin || r.Age > cr.AgeMax {
			st.NotEligible++
			continue
		}

		// Tumor location allow-list.
		if r.Location, err = t.Get(row, "Location"); err != nil {
			return nil, nil, err
		}
		if !locOK[r.Location] {
			st.BadLocation++
			continue
		}

		if r.FUS, err = getFlag(t, row, id, "FUS"); err != nil {
			return nil, nil, err
		}
		if r.MGMT, err = t.Get(row, "MGMT"); err != nil {
			return nil, nil, err
		}

		// Two-step MGMT recode. The order matters: unknowns on FUS
		// subjects are marked provisional first, then resolved, and only
		// the unknowns that remain are dropped.
		if r.MGMT == Unknown && r.FUS {
			r.MGMT = mgmtProvisional
		}
		if r.MGMT == mgmtProvisional {
			r.MGMT = MGMTResolved
		}
		if r.MGMT == Unknown {
			st.UnknownMGMT++
			continue
		}

		// Race is collapsed to majority label vs all other.
		if r.Race, err = t.Get(row, "Race"); err != nil {
			return nil, nil, err
		}
		r.White = r.Race == "White"

		if r.Sex, err = t.Get(row, "Sex"); err != nil {
			return nil, nil, err
		}
		if r.Sex != "Male" && r.Sex != "Female" {
			return nil, nil, cellError(id, "Sex", fmt.Errorf("invalid category %q", r.Sex))
		}

		if r.TumorSize, err = getFloat(t, row, id, "TumorSize"); err != nil {
			return nil, nil, err
		}
		if r.Dead, err = getFlag(t, row, id, "Dead"); err != nil {
			return nil, nil, err
		}
		if r.Progressed, err = getFlag(t, row, id, "Progressed"); err != nil {
			return nil, nil, err
		}

		if r.DiagDate, err = getDate(t, row, id, "DiagnosisDate", true); err != nil {
			return nil, nil, err
		}
		if r.SurgDate, err = getDate(t, row, id, "SurgeryDate", false); err != nil {
			return nil, nil, err
		}
		if r.ProgDate, err = getDate(t, row, id, "ProgressionDate", r.Progressed); err != nil {
			return nil, nil, err
		}
		if r.LastDate, err = getDate(t, row, id, "LastFollowUpDate", true); err != nil {
			return nil, nil, err
		}

		out = append(out, r)
	}

	st.Kept = len(out)

	return out, st, nil
}

func getFloat(t *Table, row []string, id, col string) (float64, error) {
	v, err := t.Get(row, col)
	if err != nil {
		return 0, err
	}
	return parseFloatCell(id, col, v)
}

func getFlag(t *Table, row []string, id, col string) (bool, error) {
	v, err := t.Get(row, col)
	if err != nil {
		return false, err
	}
	return parseFlagCell(id, col, v)
}

// getDate parses a date cell. When required is false, an empty or Unknown
// cell yields the zero time instead of an error.
func getDate(t *Table, row []string, id, col string, required bool) (tm time.Time, err error) {
	v, err := t.Get(row, col)
	if err != nil {
		return tm, err
	}
	if v == "" || v == Unknown {
		if required {
			return tm, cellError(id, col, fmt.Errorf("missing required date"))
		}
		return tm, nil
	}
	return parseDateCell(id, col, v)
}
