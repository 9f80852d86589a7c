package valuation

import "github.com/jstittsworth/ff-alpha-core/internal/domain"

// BaseValueFunc supplies a single predictive draw for a player in a
// given week, typically C1's state-biased sample or an ESPN projected
// average fallback when C1 is unavailable.
type BaseValueFunc func(player *domain.Player, week int) float64

// WeekContribution is one week's contribution to a player's ROS value.
type WeekContribution struct {
	Week       int
	Base       float64
	Multiplier float64
	NoSchedule bool
}

// ROSPlayerValue sums base(player, w) * multiplier(position, opponent)
// over the league's rest-of-season horizon and divides by the number
// of weeks in that horizon. When schedule data for a week is missing
// the multiplier defaults to 1.0 and that week's contribution is
// flagged no_schedule. An empty horizon (current week past the
// regular-season final week) yields zero points per week.
func ROSPlayerValue(league *domain.LeagueContext, player *domain.Player, strength *OpponentStrength, base BaseValueFunc) (ptsPerWeek float64, contributions []WeekContribution, emptyHorizon bool) {
	weeks := league.ROSWeeks()
	if len(weeks) == 0 {
		return 0, nil, true
	}

	total := 0.0
	for _, w := range weeks {
		baseVal := base(player, w)
		multiplier := 1.0
		noSchedule := true
		if game, ok := player.Schedule[w]; ok {
			multiplier = strength.MultiplierFor(player.Position, game.OpponentTeamID)
			noSchedule = false
		}
		contribution := baseVal * multiplier
		total += contribution
		contributions = append(contributions, WeekContribution{
			Week:       w,
			Base:       baseVal,
			Multiplier: multiplier,
			NoSchedule: noSchedule,
		})
	}

	return total / float64(len(weeks)), contributions, false
}
