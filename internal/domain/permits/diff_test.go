package permits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff_ExampleScenario(t *testing.T) {
	changes := Diff(exampleSequence())

	require.Len(t, changes, 2, "first day never produces a change set")

	day12 := changes[0]
	assert.Equal(t, "2026-01-12", day12.Day)
	assert.Equal(t, ChangeCounts{New: 1, ToAuthorized: 1}, day12.Counts())
	assert.Equal(t, []string{"200"}, day12.NewKeys)
	assert.Equal(t, []Transition{{Key: "100", From: StatusPending, To: StatusAuthorized}}, day12.Transitions)

	day15 := changes[1]
	assert.Equal(t, "2026-01-15", day15.Day)
	assert.Equal(t, ChangeCounts{ToFinalized: 1, Removed: 1}, day15.Counts())
	assert.Equal(t, []string{"200"}, day15.RemovedKeys)
}

func TestDiff_NoChangeSetForSingleDay(t *testing.T) {
	seq := Canonicalize([]NormalizedSnapshot{snap("2026-01-10", 9, map[string]Status{"1": StatusPending})})
	assert.Empty(t, Diff(seq))
	assert.Empty(t, Diff(nil))
}

func TestDiff_RecordsAnyDirection(t *testing.T) {
	seq := Canonicalize([]NormalizedSnapshot{
		snap("2026-01-10", 9, map[string]Status{"1": StatusFinalized, "2": StatusAuthorized, "3": StatusPending, "4": StatusPending}),
		snap("2026-01-11", 9, map[string]Status{"1": StatusPending, "2": StatusApproved, "3": StatusPending, "4": StatusFinalized}),
	})

	changes := Diff(seq)
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeCounts{ToPending: 1, ToApproved: 1, ToFinalized: 1}, changes[0].Counts())
}

func TestDiff_Conservation(t *testing.T) {
	seq := Canonicalize([]NormalizedSnapshot{
		snap("2026-01-01", 9, map[string]Status{"a": StatusPending, "b": StatusPending}),
		snap("2026-01-02", 9, map[string]Status{"a": StatusApproved, "c": StatusPending, "d": StatusPending}),
		snap("2026-01-04", 9, map[string]Status{"d": StatusAuthorized}),
		snap("2026-01-07", 9, map[string]Status{"d": StatusFinalized, "e": StatusPending, "f": StatusPending, "g": StatusPending}),
	})
	changes := Diff(seq)
	require.Len(t, changes, len(seq)-1)

	net := 0
	for i, cs := range changes {
		c := cs.Counts()
		prev, curr := seq[i], seq[i+1]
		assert.Equal(t, len(curr.Entities), len(prev.Entities)+c.New-c.Removed, "day %s", cs.Day)

		net += c.New - c.Removed
		assert.Equal(t, len(curr.Entities)-len(seq[0].Entities), net)
	}
}

func TestDiff_SameDayEarlierSnapshotNeverCountsAsRemoved(t *testing.T) {
	seq := Canonicalize([]NormalizedSnapshot{
		snap("2026-01-10", 9, map[string]Status{"100": StatusPending}),
		snap("2026-01-12", 8, map[string]Status{"100": StatusPending, "555": StatusPending}),
		snap("2026-01-12", 18, map[string]Status{"100": StatusPending}),
		snap("2026-01-13", 9, map[string]Status{"100": StatusPending}),
	})

	for _, cs := range Diff(seq) {
		assert.NotContains(t, cs.NewKeys, "555")
		assert.NotContains(t, cs.RemovedKeys, "555")
	}
}
