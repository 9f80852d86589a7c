package alpha

import (
	"testing"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestMatchPlayerByName_ExactMatch(t *testing.T) {
	candidates := []domain.Player{
		{ID: "1", Name: "Justin Jefferson", ProTeamID: "MIN"},
		{ID: "2", Name: "Ja'Marr Chase", ProTeamID: "CIN"},
	}
	best, score := MatchPlayerByName("Justin Jefferson", "MIN", candidates)
	assert.NotNil(t, best)
	assert.Equal(t, "1", best.ID)
	assert.Equal(t, 1.0, score)
}

func TestMatchPlayerByName_InitialVariation(t *testing.T) {
	candidates := []domain.Player{
		{ID: "1", Name: "D.J. Moore", ProTeamID: "CHI"},
	}
	best, score := MatchPlayerByName("DJ Moore", "CHI", candidates)
	assert.NotNil(t, best)
	assert.Greater(t, score, 0.6)
}

func TestMatchPlayerByName_SuffixVariation(t *testing.T) {
	candidates := []domain.Player{
		{ID: "1", Name: "Michael Pittman Jr.", ProTeamID: "IND"},
	}
	best, _ := MatchPlayerByName("Michael Pittman", "IND", candidates)
	assert.NotNil(t, best)
	assert.Equal(t, "1", best.ID)
}

func TestMatchPlayerByName_TeamAliasNormalization(t *testing.T) {
	candidates := []domain.Player{
		{ID: "1", Name: "Terry McLaurin", ProTeamID: "was"},
	}
	best, _ := MatchPlayerByName("Terry McLaurin", "wsh", candidates)
	assert.NotNil(t, best)
	assert.Equal(t, "1", best.ID)
}

func TestMatchPlayerByName_NoCandidateClearsFloor(t *testing.T) {
	candidates := []domain.Player{
		{ID: "1", Name: "Completely Different Name", ProTeamID: "ZZZ"},
	}
	best, score := MatchPlayerByName("Nobody Alike", "AAA", candidates)
	assert.Nil(t, best)
	assert.Equal(t, 0.0, score)
}
