package kb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z89kdf9k4p-code/crewbot/internal/domain"
	"github.com/z89kdf9k4p-code/crewbot/internal/kb"
)

// fixedCatalog serves a static corpus in insertion order.
type fixedCatalog []domain.Article

func (c fixedCatalog) Articles() []domain.Article { return c }

func trainingCorpus() fixedCatalog {
	return fixedCatalog{
		{ID: 1, Title: "Getting started", Body: "Press start and complete registration.", Tags: "start,registration"},
		{ID: 2, Title: "Connecting the terminal", Body: "Power on the terminal, check the internet connection, sign in to the app, run a test transaction.", Tags: "training,courier,picker"},
		{ID: 3, Title: "Handling returns", Body: "Record the reason, report to the shift lead.", Tags: "training,courier,picker"},
		{ID: 4, Title: "Loading the van", Body: "Heavy items at the bottom, fragile on top.", Tags: "training,courier"},
	}
}

func TestSearchMatchesTruncatedWord(t *testing.T) {
	ix := kb.NewIndex(trainingCorpus())

	got := ix.Search("termin", 5)
	require.NotEmpty(t, got)
	assert.Equal(t, "Connecting the terminal", got[0].Title)
}

func TestSearchExactTitleRanksFirst(t *testing.T) {
	ix := kb.NewIndex(fixedCatalog{
		{ID: 1, Title: "Rules of returns", Body: "Record the reason.", Tags: ""},
		{ID: 2, Title: "Ground rules", Body: "Follow safety instructions.", Tags: ""},
	})

	got := ix.Search("ground rules", 5)
	require.NotEmpty(t, got)
	assert.Equal(t, "Ground rules", got[0].Title)
}

func TestSearchEmptyQuery(t *testing.T) {
	ix := kb.NewIndex(trainingCorpus())

	assert.Empty(t, ix.Search("", 5))
	assert.Empty(t, ix.Search("   ", 5))
}

func TestSearchNoQualifyingMatch(t *testing.T) {
	ix := kb.NewIndex(trainingCorpus())

	assert.Empty(t, ix.Search("xyzzyx", 5))
}

func TestSearchTiesKeepInsertionOrder(t *testing.T) {
	ix := kb.NewIndex(fixedCatalog{
		{ID: 1, Title: "Opening the shop", Body: "Unlock and count the till.", Tags: "training"},
		{ID: 2, Title: "Opening the shop", Body: "Unlock and count the till.", Tags: "training"},
	})

	got := ix.Search("opening the shop", 5)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
}

func TestSearchHonorsLimit(t *testing.T) {
	ix := kb.NewIndex(fixedCatalog{
		{ID: 1, Title: "Shift handover", Body: "Write a handover note.", Tags: ""},
		{ID: 2, Title: "Shift schedule", Body: "Shifts rotate weekly.", Tags: ""},
	})

	got := ix.Search("shift", 1)
	assert.Len(t, got, 1)
}

func TestMaterialsForRoleVisibility(t *testing.T) {
	ix := kb.NewIndex(fixedCatalog{
		{ID: 1, Title: "Welcome", Body: "Hello.", Tags: ""},
		{ID: 2, Title: "Loading the van", Body: "Heavy items at the bottom.", Tags: "training,courier"},
		{ID: 3, Title: "Order picking rules", Body: "Pick strictly by the list.", Tags: "training,picker"},
		{ID: 4, Title: "Ground rules", Body: "Follow safety instructions.", Tags: "training"},
		{ID: 5, Title: "Where to find links", Body: "Open Links in the menu.", Tags: "links"},
	})

	titles := func(list []domain.Article) []string {
		out := make([]string, len(list))
		for i, a := range list {
			out[i] = a.Title
		}
		return out
	}

	// Sorted by title; untagged and role-less training material go to everyone,
	// the other role's material never shows up.
	assert.Equal(t,
		[]string{"Ground rules", "Loading the van", "Welcome"},
		titles(ix.MaterialsForRole(domain.RoleCourier, 0)))
	assert.Equal(t,
		[]string{"Ground rules", "Order picking rules", "Welcome"},
		titles(ix.MaterialsForRole(domain.RolePicker, 0)))
}

func TestMaterialsForRoleLimit(t *testing.T) {
	ix := kb.NewIndex(trainingCorpus())

	got := ix.MaterialsForRole(domain.RoleCourier, 2)
	assert.Len(t, got, 2)
}
