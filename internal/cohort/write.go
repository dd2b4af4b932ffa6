package cohort

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

// matchedHeader is the matched-cohort output schema: the input schema plus
// the matching annotations.
var matchedHeader = []string{
	"ID", "Age", "Sex", "Race", "KPS", "Chemo", "Radio", "FUS",
	"TumorSize", "Location", "MGMT",
	"DiagnosisDate", "SurgeryDate", "ProgressionDate", "LastFollowUpDate",
	"Dead", "Progressed",
	"Subclass", "Weight",
}

// WriteMatched emits the matched cohort as CSV in input order. Every record
// must carry a subclass; an unmatched record reaching this point is a bug in
// the matching stage.
func WriteMatched(recs []*Record, path string) error {

	for _, r := range recs {
		if r.Subclass == 0 {
			return fmt.Errorf("subject %s has no matched subclass", r.ID)
		}
	}

	fid, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fid.Close()

	w := csv.NewWriter(fid)

	if err := w.Write(matchedHeader); err != nil {
		return err
	}

	for _, r := range recs {
		row := []string{
			r.ID,
			fmtFloat(r.Age),
			r.Sex,
			r.Race,
			fmtFloat(r.KPS),
			fmtFlag(r.Chemo),
			fmtFlag(r.Radio),
			fmtFlag(r.FUS),
			fmtFloat(r.TumorSize),
			r.Location,
			r.MGMT,
			fmtDate(r.DiagDate),
			fmtDate(r.SurgDate),
			fmtDate(r.ProgDate),
			fmtDate(r.LastDate),
			fmtFlag(r.Dead),
			fmtFlag(r.Progressed),
			strconv.Itoa(r.Subclass),
			strconv.FormatFloat(r.Weight, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}

// ReadMatched loads a matched-cohort CSV written by WriteMatched.
func ReadMatched(path string) ([]*Record, error) {

	t, err := Load(path)
	if err != nil {
		return nil, err
	}

	var recs []*Record
	for _, row := range t.Rows {

		id, err := t.Get(row, "ID")
		if err != nil {
			return nil, err
		}

		r := &Record{ID: id}

		if r.Age, err = getFloat(t, row, id, "Age"); err != nil {
			return nil, err
		}
		if r.Sex, err = t.Get(row, "Sex"); err != nil {
			return nil, err
		}
		if r.Race, err = t.Get(row, "Race"); err != nil {
			return nil, err
		}
		r.White = r.Race == "White"
		if r.KPS, err = getFloat(t, row, id, "KPS"); err != nil {
			return nil, err
		}
		if r.Chemo, err = getFlag(t, row, id, "Chemo"); err != nil {
			return nil, err
		}
		if r.Radio, err = getFlag(t, row, id, "Radio"); err != nil {
			return nil, err
		}
		if r.FUS, err = getFlag(t, row, id, "FUS"); err != nil {
			return nil, err
		}
		if r.TumorSize, err = getFloat(t, row, id, "TumorSize"); err != nil {
			return nil, err
		}
		if r.Location, err = t.Get(row, "Location"); err != nil {
			return nil, err
		}
		if r.MGMT, err = t.Get(row, "MGMT"); err != nil {
			return nil, err
		}
		if r.DiagDate, err = getDate(t, row, id, "DiagnosisDate", true); err != nil {
			return nil, err
		}
		if r.SurgDate, err = getDate(t, row, id, "SurgeryDate", false); err != nil {
			return nil, err
		}
		if r.ProgDate, err = getDate(t, row, id, "ProgressionDate", false); err != nil {
			return nil, err
		}
		if r.LastDate, err = getDate(t, row, id, "LastFollowUpDate", true); err != nil {
			return nil, err
		}
		if r.Dead, err = getFlag(t, row, id, "Dead"); err != nil {
			return nil, err
		}
		if r.Progressed, err = getFlag(t, row, id, "Progressed"); err != nil {
			return nil, err
		}

		sc, err := getFloat(t, row, id, "Subclass")
		if err != nil {
			return nil, err
		}
		r.Subclass = int(sc)
		if r.Subclass == 0 {
			return nil, fmt.Errorf("subject %s has no matched subclass", id)
		}
		if r.Weight, err = getFloat(t, row, id, "Weight"); err != nil {
			return nil, err
		}

		recs = append(recs, r)
	}

	// Durations are derived, not stored: recompute them from the dates.
	if err := Derive(recs); err != nil {
		return nil, err
	}

	return recs, nil
}

func fmtFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func fmtDate(d time.Time) string {
	if d.IsZero() {
		return Unknown
	}
	return d.Format(DateLayout)
}
