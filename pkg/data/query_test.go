package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStudies(t *testing.T) {
	db := setupTestDB(t)
	tbl, w := testDataset(t)
	require.NoError(t, ReplaceDataset(db, tbl, w))

	studies, err := GetStudies(db)
	require.NoError(t, err)
	require.Len(t, studies, 2)

	assert.Equal(t, "Alpha 2019", studies[0].Name)
	assert.Equal(t, 3, studies[0].Scored)
	assert.Equal(t, 0, studies[0].Missing)

	assert.Equal(t, "Beta 2020", studies[1].Name)
	assert.Equal(t, 1, studies[1].Scored)
	assert.Equal(t, 2, studies[1].Missing)
}

func TestGetStudies_NilDB(t *testing.T) {
	_, err := GetStudies(nil)
	assert.Error(t, err)
}

func TestGetItems(t *testing.T) {
	db := setupTestDB(t)
	tbl, w := testDataset(t)
	require.NoError(t, ReplaceDataset(db, tbl, w))

	items, err := GetItems(db)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "M1", items[0].ID)
	assert.Equal(t, "methods", items[0].Category)
	assert.Equal(t, "Design", items[0].Section)
	assert.InDelta(t, 2, items[0].Weight, 1e-9)
	assert.Equal(t, "reporting", items[2].Category)
}

func TestGetStudyScores(t *testing.T) {
	db := setupTestDB(t)
	tbl, w := testDataset(t)
	require.NoError(t, ReplaceDataset(db, tbl, w))

	scores, err := GetStudyScores(db, "Beta 2020")
	require.NoError(t, err)
	require.Len(t, scores, 3)

	assert.Equal(t, "M1", scores[0].Item)
	require.NotNil(t, scores[0].Value)
	assert.InDelta(t, 0, *scores[0].Value, 1e-9)
	assert.Nil(t, scores[1].Value)
	assert.Nil(t, scores[2].Value)
}

func TestGetStudyScores_UnknownStudy(t *testing.T) {
	db := setupTestDB(t)
	tbl, w := testDataset(t)
	require.NoError(t, ReplaceDataset(db, tbl, w))

	scores, err := GetStudyScores(db, "nope")
	require.NoError(t, err)
	assert.Nil(t, scores)
}
