package services

import (
	"testing"

	"github.com/shuttlenet/racquet-rankings/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakdownTally(t *testing.T) {
	b := make(Breakdown)

	first := b.tally(1, models.CategoryMensSingles)
	require.NotNil(t, first)
	first.MatchWinPoints = 10

	// Same pair returns the same accumulator.
	assert.Same(t, first, b.tally(1, models.CategoryMensSingles))

	// Different category for the same player is a separate tally.
	other := b.tally(1, models.CategoryMensDoubles)
	assert.NotSame(t, first, other)
	assert.Equal(t, 0, other.MatchWinPoints)
}

func TestBreakdownFinalizeTotals(t *testing.T) {
	b := make(Breakdown)
	tally := b.tally(1, models.CategoryMensSingles)
	tally.PlacementPoints = 100
	tally.MatchWinPoints = 30
	tally.SetWinPoints = 8

	b.finalizeTotals()

	assert.Equal(t, 138, tally.TotalPoints)
}
