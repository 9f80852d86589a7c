package domain

// Outcome is a team's result for a given week.
type Outcome string

const (
	OutcomeWin      Outcome = "W"
	OutcomeLoss     Outcome = "L"
	OutcomeTie      Outcome = "T"
	OutcomeUnplayed Outcome = "U"
)

// Team is the closed record for a fantasy roster within a league.
// Schedule, Scores and Outcomes are all keyed by week number 1..N
// where N equals the league's TotalWeeks.
type Team struct {
	ID          string
	Name        string
	Division    string
	Roster      []Player
	Schedule    map[int]string // week -> opponent team id
	Scores      map[int]float64
	Outcomes    map[int]Outcome
	Acquisitions int
	Drops        int
	Trades       int
}

// StartersBySlot groups the current roster by position, preserving
// roster order within each position.
func (t *Team) StartersBySlot() map[Position][]Player {
	bySlot := make(map[Position][]Player)
	for _, p := range t.Roster {
		bySlot[p.Position] = append(bySlot[p.Position], p)
	}
	return bySlot
}

// FindPlayer returns the roster player with the given id, if present.
func (t *Team) FindPlayer(playerID string) (*Player, bool) {
	for i := range t.Roster {
		if t.Roster[i].ID == playerID {
			return &t.Roster[i], true
		}
	}
	return nil, false
}
