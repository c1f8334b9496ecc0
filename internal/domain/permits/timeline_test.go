package permits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func byKey(recs []LifecycleRecord) map[string]LifecycleRecord {
	out := make(map[string]LifecycleRecord, len(recs))
	for _, r := range recs {
		out[r.Key] = r
	}
	return out
}

func TestBuildLifecycles_ExampleScenario(t *testing.T) {
	recs := byKey(BuildLifecycles(exampleSequence()))

	require.Contains(t, recs, "100")
	assert.Equal(t, "2026-01-12", recs["100"].Start)
	assert.Equal(t, "2026-01-15", recs["100"].End)
	assert.Equal(t, StatusFinalized, recs["100"].LastStatus)

	require.Contains(t, recs, "200")
	assert.False(t, recs["200"].HasInterval())
	assert.Equal(t, "", recs["200"].End, "never-authorized records get no fallback end")
	assert.Equal(t, "2026-01-12", recs["200"].LastSeen)

	timeline := Timeline(BuildLifecycles(exampleSequence()), Filter{})
	require.Len(t, timeline, 1)
	assert.Equal(t, "100", timeline[0].Key)
}

func TestBuildLifecycles_FirstOccurrenceWins(t *testing.T) {
	seq := Canonicalize([]NormalizedSnapshot{
		snap("2026-01-01", 9, map[string]Status{"1": StatusAuthorized}),
		snap("2026-01-02", 9, map[string]Status{"1": StatusFinalized}),
		snap("2026-01-03", 9, map[string]Status{"1": StatusPending}),
		snap("2026-01-04", 9, map[string]Status{"1": StatusAuthorized}),
		snap("2026-01-05", 9, map[string]Status{"1": StatusFinalized}),
	})

	rec := byKey(BuildLifecycles(seq))["1"]
	assert.Equal(t, "2026-01-01", rec.Start)
	assert.Equal(t, "2026-01-02", rec.End)
	assert.Equal(t, "2026-01-05", rec.LastSeen)
	assert.Equal(t, StatusFinalized, rec.LastStatus)
}

func TestBuildLifecycles_OpenIntervalEndsAtLastSeen(t *testing.T) {
	seq := Canonicalize([]NormalizedSnapshot{
		snap("2026-01-01", 9, map[string]Status{"gone": StatusAuthorized, "open": StatusAuthorized}),
		snap("2026-01-02", 9, map[string]Status{"open": StatusAuthorized}),
		snap("2026-01-05", 9, map[string]Status{"open": StatusApproved}),
	})

	recs := byKey(BuildLifecycles(seq))
	assert.Equal(t, "2026-01-01", recs["gone"].End)
	assert.Equal(t, "2026-01-05", recs["open"].End)
}

func TestBuildLifecycles_KeepsLatestMetadataButFirstSemanticDate(t *testing.T) {
	seq := Sequence{
		{Day: "2026-01-01", Entities: map[string]EntityState{
			"1": {Status: StatusPending, Department: DepartmentOther, Description: "old"},
		}},
		{Day: "2026-01-02", Entities: map[string]EntityState{
			"1": {Status: StatusAuthorized, Department: DepartmentGE, Description: "mid", SemanticDate: "2026-01-20"},
		}},
		{Day: "2026-01-03", Entities: map[string]EntityState{
			"1": {Status: StatusAuthorized, Department: DepartmentIC, Description: "new", SemanticDate: "2026-02-01"},
		}},
	}

	rec := byKey(BuildLifecycles(seq))["1"]
	assert.Equal(t, DepartmentIC, rec.Department)
	assert.Equal(t, "new", rec.Description)
	assert.Equal(t, "2026-01-20", rec.SemanticDate)
}

func TestTimeline_SortedByDepartmentThenStart(t *testing.T) {
	recs := []LifecycleRecord{
		{Key: "o1", Department: DepartmentOther, Start: "2026-01-01", End: "2026-01-02"},
		{Key: "e2", Department: DepartmentElectrical, Start: "2026-01-05", End: "2026-01-06"},
		{Key: "g1", Department: DepartmentGE, Start: "2026-01-01", End: "2026-01-03"},
		{Key: "e1", Department: DepartmentElectrical, Start: "2026-01-02", End: "2026-01-04"},
		{Key: "m1", Department: DepartmentMechanical, Start: "2026-01-09", End: "2026-01-09"},
		{Key: "x", Department: DepartmentGE},
	}

	got := Timeline(recs, Filter{})
	keys := make([]string, 0, len(got))
	for _, r := range got {
		keys = append(keys, r.Key)
	}
	assert.Equal(t, []string{"e1", "e2", "m1", "g1", "o1"}, keys)
}
