package cohort

import "time"

// Sentinel used throughout the raw export for missing categorical values.
const Unknown = "Unknown"

// Record describes one subject in the study data set.
type Record struct {

	// Subject identifier from the registry export
	ID string

	// Demographics
	Age  float64
	Sex  string
	Race string

	// True when Race is the majority label ("White"); set during cleaning
	White bool

	// Karnofsky performance status at diagnosis
	KPS float64

	// Protocol-eligibility flags
	Chemo bool
	Radio bool

	// Indicator that the subject received focused ultrasound
	FUS bool

	// Tumor attributes
	TumorSize float64
	Location  string
	MGMT      string

	// Key dates; SurgDate and ProgDate may be zero
	DiagDate time.Time
	SurgDate time.Time
	ProgDate time.Time
	LastDate time.Time

	// Event indicators
	Dead       bool
	Progressed bool

	// Derived time-to-event durations, in months
	OSMonths  float64
	PFSMonths float64

	// Set by the matching stage; Subclass 0 means unmatched
	Subclass int
	Weight   float64
}

// Male reports the sex indicator used as a model covariate.
func (r *Record) Male() bool {
	return r.Sex == "Male"
}
