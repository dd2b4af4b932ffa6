package cohort

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matchedRecords() []*Record {
	return []*Record{
		{
			ID: "s1", Age: 61, Sex: "Male", Race: "White", White: true,
			KPS: 90, Chemo: true, Radio: true, FUS: true,
			TumorSize: 3.4, Location: "Frontal", MGMT: "Methylated",
			DiagDate: day("01-01-2020"), SurgDate: day("05-01-2020"),
			LastDate: day("01-01-2021"), Dead: true,
			OSMonths: 12.02, PFSMonths: 12.02,
			Subclass: 1, Weight: 1,
		},
		{
			ID: "s2", Age: 63, Sex: "Female", Race: "Asian",
			KPS: 80, Chemo: true, Radio: true,
			TumorSize: 3.1, Location: "Frontal", MGMT: "Unmethylated",
			DiagDate: day("01-02-2020"), ProgDate: day("01-08-2020"),
			LastDate: day("01-03-2021"), Progressed: true,
			OSMonths: 12.85, PFSMonths: 6.0,
			Subclass: 1, Weight: 0.5,
		},
	}
}

func TestMatchedRoundTrip(t *testing.T) {

	dir := t.TempDir()
	path := filepath.Join(dir, "matched.csv")
	require.NoError(t, WriteMatched(matchedRecords(), path))

	recs, err := ReadMatched(path)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "s1", recs[0].ID)
	assert.True(t, recs[0].FUS)
	assert.Equal(t, 1, recs[0].Subclass)
	assert.Equal(t, 0.5, recs[1].Weight)
	assert.InDelta(t, 12.02, recs[0].OSMonths, 0.05)
	assert.InDelta(t, 6.0, recs[1].PFSMonths, 0.05)
	assert.True(t, recs[1].Progressed)
	assert.True(t, recs[1].ProgDate.Equal(day("01-08-2020")))
	assert.True(t, recs[0].SurgDate.Equal(day("05-01-2020")))
	assert.True(t, recs[1].SurgDate.IsZero())
	assert.False(t, recs[1].White)
}

// Two writes of the same cohort must be byte-identical.
func TestMatchedDeterministic(t *testing.T) {

	dir := t.TempDir()
	p1 := filepath.Join(dir, "a.csv")
	p2 := filepath.Join(dir, "b.csv")
	require.NoError(t, WriteMatched(matchedRecords(), p1))
	require.NoError(t, WriteMatched(matchedRecords(), p2))

	b1, err := os.ReadFile(p1)
	require.NoError(t, err)
	b2, err := os.ReadFile(p2)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}

func TestWriteMatchedRejectsUnmatched(t *testing.T) {

	recs := matchedRecords()
	recs[1].Subclass = 0
	err := WriteMatched(recs, filepath.Join(t.TempDir(), "m.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s2")
}
