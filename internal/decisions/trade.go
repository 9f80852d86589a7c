package decisions

import (
	"math"
	"sort"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/jstittsworth/ff-alpha-core/internal/valuation"
)

// TradeResult is C7's answer to "should I make this trade".
type TradeResult struct {
	MyValueChange         float64
	TheirValueChange      float64
	AdvantageMargin       float64
	UsesROS               bool
	WeeksRemaining        int
	AcceptanceProbability float64
	IsRealistic           bool
	Recommendation        string // ACCEPT or REJECT
}

// TradeConfig is the analysis-section tunable surface for trade
// evaluation.
type TradeConfig struct {
	UseROS                   bool
	WeeksRemaining           int // 0 triggers the auto calculation
	MinAdvantage             float64
	MinAcceptanceProbability float64
}

// AnalyzeTrade computes each side's rest-of-season roster value change
// from swapping myPlayers for theirPlayers and derives a deterministic
// acceptance probability and ACCEPT/REJECT recommendation.
func AnalyzeTrade(league *domain.LeagueContext, myTeam, theirTeam *domain.Team, myPlayers, theirPlayers []domain.Player, strength *valuation.OpponentStrength, base valuation.BaseValueFunc, mySlots, theirSlots domain.RosterSlots, cfg TradeConfig) TradeResult {
	weeksRemaining := cfg.WeeksRemaining
	if weeksRemaining <= 0 {
		weeksRemaining = league.RegSeasonFinalWeek - league.CurrentWeek + 1
	}

	valueOf := valueFunc(league, strength, base, cfg.UseROS)

	beforeMy := rosterValueFor(myTeam.Roster, mySlots, valueOf)
	beforeTheir := rosterValueFor(theirTeam.Roster, theirSlots, valueOf)

	afterMy := rosterValueFor(swapRoster(myTeam.Roster, myPlayers, theirPlayers), mySlots, valueOf)
	afterTheir := rosterValueFor(swapRoster(theirTeam.Roster, theirPlayers, myPlayers), theirSlots, valueOf)

	myChange := afterMy.Total - beforeMy.Total
	theirChange := afterTheir.Total - beforeTheir.Total
	advantageMargin := myChange - theirChange

	acceptance := acceptanceProbability(myChange, theirChange, beforeTheir.Total, advantageMargin)
	isRealistic := acceptance >= cfg.MinAcceptanceProbability

	recommendation := "REJECT"
	if myChange >= cfg.MinAdvantage && isRealistic {
		recommendation = "ACCEPT"
	}

	return TradeResult{
		MyValueChange:         myChange,
		TheirValueChange:      theirChange,
		AdvantageMargin:       advantageMargin,
		UsesROS:               cfg.UseROS,
		WeeksRemaining:        weeksRemaining,
		AcceptanceProbability: acceptance,
		IsRealistic:           isRealistic,
		Recommendation:        recommendation,
	}
}

func rosterValueFor(roster []domain.Player, slots domain.RosterSlots, valueOf func(domain.Player) float64) valuation.RosterValue {
	values := make([]valuation.PlayerROSValue, 0, len(roster))
	for _, p := range roster {
		values = append(values, valuation.PlayerROSValue{Player: p, Value: valueOf(p)})
	}
	return valuation.ComputeRosterValue(slots, values)
}

func swapRoster(roster []domain.Player, outgoing, incoming []domain.Player) []domain.Player {
	out := make(map[string]bool, len(outgoing))
	for _, p := range outgoing {
		out[p.ID] = true
	}
	result := make([]domain.Player, 0, len(roster)+len(incoming))
	for _, p := range roster {
		if !out[p.ID] {
			result = append(result, p)
		}
	}
	return append(result, incoming...)
}

// acceptanceProbability is a piecewise deterministic function: both
// sides gaining scales 70-95%
// by how much the counterparty gains; the counterparty losing a small
// amount is graded by the size of that loss; both sides losing is a
// flat 10%; and any trade with an advantage margin over 15 points is
// capped at 10% regardless of branch.
func acceptanceProbability(myChange, theirChange, theirBeforeValue, advantageMargin float64) float64 {
	var p float64
	switch {
	case myChange > 0 && theirChange > 0:
		total := myChange + theirChange
		ratio := 0.5
		if total > 0 {
			ratio = theirChange / total
		}
		p = 0.70 + ratio*0.25
	case myChange > 0 && theirChange < 0:
		lossPct := 0.0
		if theirBeforeValue > 0 {
			lossPct = (-theirChange / theirBeforeValue) * 100
		}
		switch {
		case lossPct <= 2:
			p = 0.60
		case lossPct <= 5:
			p = 0.40
		case lossPct <= 10:
			p = 0.20
		default:
			p = 0.05
		}
	case myChange < 0 && theirChange < 0:
		p = 0.10
	default:
		p = 0.10
	}
	if math.Abs(advantageMargin) > 15 && p > 0.10 {
		p = 0.10
	}
	return p
}

// TradeOpportunity is one league-wide candidate swap surfaced by
// SearchTrades.
type TradeOpportunity struct {
	TheirTeamID  string
	MyPlayers    []domain.Player
	TheirPlayers []domain.Player
	Result       TradeResult
}

// SearchConfig bounds a league-wide trade search.
type SearchConfig struct {
	TradeConfig
	MaxTradesPerTeam      int
	MaxTotalOpportunities int
}

// SearchTrades enumerates 1-for-1 and 2-for-1 (my two players for
// their one) combinations between myTeam and every other league team,
// keeps only combinations AnalyzeTrade recommends ACCEPT, caps the
// count kept per counterparty team at MaxTradesPerTeam, and caps the
// overall result at MaxTotalOpportunities, both by descending
// advantage margin.
func SearchTrades(league *domain.LeagueContext, myTeam *domain.Team, strength *valuation.OpponentStrength, base valuation.BaseValueFunc, cfg SearchConfig) []TradeOpportunity {
	var opportunities []TradeOpportunity

	for i := range league.Teams {
		theirTeam := league.Teams[i]
		if theirTeam.ID == myTeam.ID {
			continue
		}

		var perTeam []TradeOpportunity
		consider := func(mine, theirs []domain.Player) {
			result := AnalyzeTrade(league, myTeam, &theirTeam, mine, theirs, strength, base, league.RosterSlots, league.RosterSlots, cfg.TradeConfig)
			if result.Recommendation == "ACCEPT" {
				perTeam = append(perTeam, TradeOpportunity{TheirTeamID: theirTeam.ID, MyPlayers: mine, TheirPlayers: theirs, Result: result})
			}
		}

		for _, mine := range myTeam.Roster {
			for _, theirs := range theirTeam.Roster {
				consider([]domain.Player{mine}, []domain.Player{theirs})
			}
		}
		for a := 0; a < len(myTeam.Roster); a++ {
			for b := a + 1; b < len(myTeam.Roster); b++ {
				for _, theirs := range theirTeam.Roster {
					consider([]domain.Player{myTeam.Roster[a], myTeam.Roster[b]}, []domain.Player{theirs})
				}
			}
		}

		sort.SliceStable(perTeam, func(a, b int) bool { return perTeam[a].Result.AdvantageMargin > perTeam[b].Result.AdvantageMargin })
		if cfg.MaxTradesPerTeam > 0 && len(perTeam) > cfg.MaxTradesPerTeam {
			perTeam = perTeam[:cfg.MaxTradesPerTeam]
		}
		opportunities = append(opportunities, perTeam...)
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].Result.AdvantageMargin > opportunities[j].Result.AdvantageMargin
	})
	if cfg.MaxTotalOpportunities > 0 && len(opportunities) > cfg.MaxTotalOpportunities {
		opportunities = opportunities[:cfg.MaxTotalOpportunities]
	}
	return opportunities
}
