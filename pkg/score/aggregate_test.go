package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTable(t *testing.T, studies []string, items []Item) *Table {
	t.Helper()
	tbl := NewTable()
	for _, it := range items {
		require.NoError(t, tbl.AddItem(it))
	}
	for _, s := range studies {
		require.NoError(t, tbl.AddStudy(s))
	}
	return tbl
}

func TestComputeSummaries_WorkedExample(t *testing.T) {
	tbl := buildTable(t, []string{"StudyX"}, []Item{
		{ID: "A", Category: CategoryMethods},
		{ID: "B", Category: CategoryMethods},
	})
	require.NoError(t, tbl.SetScore("StudyX", "A", 1))
	// B left missing

	w := Weights{"A": 2, "B": 3}

	summaries, err := ComputeSummaries(tbl, w)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, "StudyX", s.Study)
	assert.InDelta(t, 5, s.ScoreMissingAsPresent, 1e-9)
	assert.InDelta(t, 2, s.ScoreMissingAsAbsent, 1e-9)
	assert.InDelta(t, 5, s.MaxScore, 1e-9)
	assert.InDelta(t, 2, s.MaxScoreExcludingMissing, 1e-9)
	assert.InDelta(t, 100.00, s.PctMissingAsPresent, 1e-9)
	assert.InDelta(t, 100.00, s.PctMissingExcluded, 1e-9)
	assert.Empty(t, s.Warnings)
}

func TestComputeSummaries_NoMissingItems(t *testing.T) {
	tbl := buildTable(t, []string{"s1"}, []Item{
		{ID: "M1", Category: CategoryMethods},
		{ID: "M2", Category: CategoryMethods},
	})
	require.NoError(t, tbl.SetScore("s1", "M1", 1))
	require.NoError(t, tbl.SetScore("s1", "M2", 0.5))

	w := Weights{"M1": 1, "M2": 2}

	summaries, err := ComputeSummaries(tbl, w)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	s := summaries[0]
	// With no missing items the two treatments coincide and the
	// adjusted max equals the full max.
	assert.Equal(t, s.ScoreMissingAsPresent, s.ScoreMissingAsAbsent)
	assert.Equal(t, s.MaxScore, s.MaxScoreExcludingMissing)
	assert.Equal(t, s.PctMissingAsPresent, s.PctMissingExcluded)
}

func TestComputeSummaries_Properties(t *testing.T) {
	tbl := buildTable(t, []string{"s1", "s2", "s3"}, []Item{
		{ID: "M1", Category: CategoryMethods},
		{ID: "M2", Category: CategoryMethods},
		{ID: "R1", Category: CategoryReporting},
	})
	require.NoError(t, tbl.SetScore("s1", "M1", 1))
	require.NoError(t, tbl.SetScore("s1", "M2", 0))
	require.NoError(t, tbl.SetScore("s1", "R1", 0.5))
	require.NoError(t, tbl.SetScore("s2", "M1", 0.5))
	// s2: M2, R1 missing
	require.NoError(t, tbl.SetScore("s3", "M1", 1))
	require.NoError(t, tbl.SetScore("s3", "M2", 1))
	require.NoError(t, tbl.SetScore("s3", "R1", 1))

	w := Weights{"M1": 2, "M2": 1, "R1": 3}

	summaries, err := ComputeSummaries(tbl, w)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	for _, s := range summaries {
		// Optimistic fill never scores lower than conservative fill.
		assert.GreaterOrEqual(t, s.ScoreMissingAsPresent, s.ScoreMissingAsAbsent, s.Study)
		// Max score is weight-only, identical for every study.
		assert.InDelta(t, 6, s.MaxScore, 1e-9, s.Study)
		assert.LessOrEqual(t, s.MaxScoreExcludingMissing, s.MaxScore, s.Study)
		if tbl.MissingCount(s.Study) == 0 {
			assert.Equal(t, s.MaxScore, s.MaxScoreExcludingMissing, s.Study)
		} else {
			assert.Less(t, s.MaxScoreExcludingMissing, s.MaxScore, s.Study)
		}
	}

	// Study order follows table order.
	assert.Equal(t, "s1", summaries[0].Study)
	assert.Equal(t, "s2", summaries[1].Study)
	assert.Equal(t, "s3", summaries[2].Study)
}

func TestComputeSummaries_Idempotent(t *testing.T) {
	tbl := buildTable(t, []string{"s1", "s2"}, []Item{
		{ID: "M1", Category: CategoryMethods},
		{ID: "R1", Category: CategoryReporting},
	})
	require.NoError(t, tbl.SetScore("s1", "M1", 0.5))
	require.NoError(t, tbl.SetScore("s2", "R1", 1))

	w := Weights{"M1": 1, "R1": 2}

	first, err := ComputeSummaries(tbl, w)
	require.NoError(t, err)
	second, err := ComputeSummaries(tbl, w)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeSummaries_Rounding(t *testing.T) {
	tbl := buildTable(t, []string{"s1"}, []Item{
		{ID: "M1", Category: CategoryMethods},
		{ID: "M2", Category: CategoryMethods},
		{ID: "M3", Category: CategoryMethods},
	})
	require.NoError(t, tbl.SetScore("s1", "M1", 1))
	require.NoError(t, tbl.SetScore("s1", "M2", 0))
	require.NoError(t, tbl.SetScore("s1", "M3", 0))

	w := Weights{"M1": 1, "M2": 1, "M3": 1}

	summaries, err := ComputeSummaries(tbl, w)
	require.NoError(t, err)
	assert.InDelta(t, 33.33, summaries[0].PctMissingAsPresent, 1e-9)
	assert.InDelta(t, 33.33, summaries[0].PctMissingExcluded, 1e-9)
}

func TestComputeSummaries_AllItemsMissing(t *testing.T) {
	tbl := buildTable(t, []string{"s1"}, []Item{
		{ID: "M1", Category: CategoryMethods},
		{ID: "M2", Category: CategoryMethods},
	})
	// no scores set at all

	_, err := ComputeSummaries(tbl, Weights{"M1": 1, "M2": 1})
	require.Error(t, err)

	var allMissing *AllMissingError
	require.ErrorAs(t, err, &allMissing)
	assert.Equal(t, "s1", allMissing.Study)
}

func TestComputeSummaries_EmptySets(t *testing.T) {
	empty := NewTable()
	_, err := ComputeSummaries(empty, Weights{})
	assert.ErrorIs(t, err, ErrEmptyStudySet)

	noItems := NewTable()
	require.NoError(t, noItems.AddStudy("s1"))
	_, err = ComputeSummaries(noItems, Weights{})
	assert.ErrorIs(t, err, ErrEmptyItemSet)

	_, err = ComputeSummaries(nil, Weights{})
	assert.ErrorIs(t, err, ErrEmptyStudySet)
}

func TestComputeSummaries_ZeroTotalWeight(t *testing.T) {
	tbl := buildTable(t, []string{"s1"}, []Item{{ID: "M1", Category: CategoryMethods}})
	require.NoError(t, tbl.SetScore("s1", "M1", 1))

	_, err := ComputeSummaries(tbl, Weights{"M1": 0})
	assert.ErrorIs(t, err, ErrEmptyItemSet)
}

func TestComputeSummaries_MissingWeight(t *testing.T) {
	tbl := buildTable(t, []string{"s1"}, []Item{
		{ID: "M1", Category: CategoryMethods},
		{ID: "M2", Category: CategoryMethods},
	})
	require.NoError(t, tbl.SetScore("s1", "M1", 1))

	_, err := ComputeSummaries(tbl, Weights{"M1": 1})
	require.Error(t, err)

	var missing *MissingWeightError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "M2", missing.Item)
}

func TestComputeSummaries_NegativeWeight(t *testing.T) {
	tbl := buildTable(t, []string{"s1"}, []Item{{ID: "M1", Category: CategoryMethods}})
	require.NoError(t, tbl.SetScore("s1", "M1", 1))

	_, err := ComputeSummaries(tbl, Weights{"M1": -2})
	var invalid *InvalidWeightError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "M1", invalid.Item)
}

func TestComputeSummaries_InvalidCellValue(t *testing.T) {
	tbl := buildTable(t, []string{"s1"}, []Item{{ID: "M1", Category: CategoryMethods}})
	// bypass SetScore validation to simulate a corrupted store
	tbl.cells[cellKey{study: "s1", item: "M1"}] = 2

	_, err := ComputeSummaries(tbl, Weights{"M1": 1})
	require.Error(t, err)

	var invalid *InvalidScoreError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "s1", invalid.Study)
	assert.Equal(t, "M1", invalid.Item)
	assert.InDelta(t, 2, invalid.Value, 1e-9)
}

func TestSetScore_Validation(t *testing.T) {
	tbl := buildTable(t, []string{"s1"}, []Item{{ID: "M1", Category: CategoryMethods}})

	var invalid *InvalidScoreError
	err := tbl.SetScore("s1", "M1", 2)
	require.ErrorAs(t, err, &invalid)

	assert.Error(t, tbl.SetScore("nope", "M1", 1))
	assert.Error(t, tbl.SetScore("s1", "nope", 1))
	assert.NoError(t, tbl.SetScore("s1", "M1", 0.5))
}

func TestSlice_ScopesAreIndependent(t *testing.T) {
	tbl := buildTable(t, []string{"s1"}, []Item{
		{ID: "M1", Category: CategoryMethods},
		{ID: "R1", Category: CategoryReporting},
	})
	require.NoError(t, tbl.SetScore("s1", "M1", 1))
	require.NoError(t, tbl.SetScore("s1", "R1", 0))

	w := Weights{"M1": 2, "R1": 3}

	methods, err := ComputeSummaries(tbl.Slice(ScopeMethods), w)
	require.NoError(t, err)
	reporting, err := ComputeSummaries(tbl.Slice(ScopeReporting), w)
	require.NoError(t, err)
	total, err := ComputeSummaries(tbl.Slice(ScopeTotal), w)
	require.NoError(t, err)

	assert.InDelta(t, 2, methods[0].MaxScore, 1e-9)
	assert.InDelta(t, 3, reporting[0].MaxScore, 1e-9)
	assert.InDelta(t, 5, total[0].MaxScore, 1e-9)
}

func TestSlice_DoesNotMutateSource(t *testing.T) {
	tbl := buildTable(t, []string{"s1"}, []Item{
		{ID: "M1", Category: CategoryMethods},
		{ID: "R1", Category: CategoryReporting},
	})
	require.NoError(t, tbl.SetScore("s1", "M1", 1))

	sub := tbl.Slice(ScopeMethods)
	require.NoError(t, sub.SetScore("s1", "M1", 0))

	v, ok := tbl.Score("s1", "M1")
	require.True(t, ok)
	assert.InDelta(t, 1, v, 1e-9)
}

func TestParseScope(t *testing.T) {
	for _, s := range []string{"methods", "reporting", "total"} {
		got, err := ParseScope(s)
		require.NoError(t, err)
		assert.Equal(t, Scope(s), got)
	}
	_, err := ParseScope("everything")
	assert.Error(t, err)
}
