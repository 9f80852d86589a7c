package decisions

import (
	"testing"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/jstittsworth/ff-alpha-core/internal/valuation"
	"github.com/stretchr/testify/assert"
)

func tradeLeague() *domain.LeagueContext {
	return &domain.LeagueContext{CurrentWeek: 10, RegSeasonFinalWeek: 14}
}

func TestAnalyzeTrade_UnrealisticLopsidedTradeIsRejected(t *testing.T) {
	league := tradeLeague()
	myTeam := &domain.Team{ID: "me", Roster: []domain.Player{{ID: "mine", Position: domain.PositionWR}}}
	theirTeam := &domain.Team{ID: "them", Roster: []domain.Player{{ID: "theirs", Position: domain.PositionWR}}}
	strength := &valuation.OpponentStrength{}

	values := map[string]float64{"mine": 10, "theirs": 22.5}
	base := func(p *domain.Player, week int) float64 { return values[p.ID] }

	slots := domain.RosterSlots{"WR": 1}
	cfg := TradeConfig{UseROS: true, MinAdvantage: 3, MinAcceptanceProbability: 0.30}

	result := AnalyzeTrade(league, myTeam, theirTeam, []domain.Player{myTeam.Roster[0]}, []domain.Player{theirTeam.Roster[0]}, strength, base, slots, slots, cfg)

	assert.InDelta(t, 12.5, result.MyValueChange, 0.01)
	assert.InDelta(t, -12.5, result.TheirValueChange, 0.01)
	assert.LessOrEqual(t, result.AcceptanceProbability, 0.10)
	assert.False(t, result.IsRealistic)
	assert.Equal(t, "REJECT", result.Recommendation)
}

func TestAnalyzeTrade_AdvantageMarginMatchesDefinition(t *testing.T) {
	league := tradeLeague()
	myTeam := &domain.Team{ID: "me", Roster: []domain.Player{{ID: "mine", Position: domain.PositionRB}}}
	theirTeam := &domain.Team{ID: "them", Roster: []domain.Player{{ID: "theirs", Position: domain.PositionRB}}}
	strength := &valuation.OpponentStrength{}

	values := map[string]float64{"mine": 8, "theirs": 11}
	base := func(p *domain.Player, week int) float64 { return values[p.ID] }
	slots := domain.RosterSlots{"RB": 1}
	cfg := TradeConfig{UseROS: true, MinAdvantage: 3, MinAcceptanceProbability: 0.30}

	result := AnalyzeTrade(league, myTeam, theirTeam, []domain.Player{myTeam.Roster[0]}, []domain.Player{theirTeam.Roster[0]}, strength, base, slots, slots, cfg)
	assert.InDelta(t, result.MyValueChange-result.TheirValueChange, result.AdvantageMargin, 1e-9)
}

func TestAnalyzeTrade_AutoWeeksRemaining(t *testing.T) {
	league := tradeLeague()
	myTeam := &domain.Team{ID: "me"}
	theirTeam := &domain.Team{ID: "them"}
	strength := &valuation.OpponentStrength{}
	base := func(*domain.Player, int) float64 { return 0 }
	cfg := TradeConfig{UseROS: true}

	result := AnalyzeTrade(league, myTeam, theirTeam, nil, nil, strength, base, domain.RosterSlots{}, domain.RosterSlots{}, cfg)
	assert.Equal(t, league.RegSeasonFinalWeek-league.CurrentWeek+1, result.WeeksRemaining)
}

func TestAcceptanceProbability_MonotonicInTheirChange(t *testing.T) {
	// Holding my_change fixed, acceptance should not decrease as
	// their_change increases (more favorable to the counterparty).
	myChange := 5.0
	pLowTheir := acceptanceProbability(myChange, -8, 100, myChange-(-8))
	pMidTheir := acceptanceProbability(myChange, -1, 100, myChange-(-1))
	pHighTheir := acceptanceProbability(myChange, 5, 100, myChange-5)

	assert.LessOrEqual(t, pLowTheir, pMidTheir+1e-9)
	assert.LessOrEqual(t, pMidTheir, pHighTheir+1e-9)
}
