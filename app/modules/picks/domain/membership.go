package picksdomain

import "fmt"

// AutopickPreference is a user's standing instruction for gamesets they miss.
type AutopickPreference string

const (
	AutopickNone   AutopickPreference = "NONE"
	AutopickRandom AutopickPreference = "RAND"
	AutopickHome   AutopickPreference = "HOME"
	AutopickBest   AutopickPreference = "BEST"
)

func ParseAutopick(s string) (AutopickPreference, error) {
	p := AutopickPreference(s)
	switch p {
	case AutopickNone, AutopickRandom, AutopickHome, AutopickBest:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAutopick, s)
}

func (p AutopickPreference) ShouldAutopick() bool { return p != AutopickNone }

// Strategy maps the preference onto the pickset strategy it produces.
func (p AutopickPreference) Strategy() Strategy {
	switch p {
	case AutopickRandom:
		return StrategyRandom
	case AutopickHome:
		return StrategyHome
	case AutopickBest:
		return StrategyBest
	case AutopickNone:
		return StrategyUser
	}
	return StrategyUser
}

type MembershipStatus string

const (
	MembershipActive     MembershipStatus = "ACTV"
	MembershipInactive   MembershipStatus = "IDLE"
	MembershipSuspended  MembershipStatus = "SUSP"
	MembershipManagement MembershipStatus = "MNGT"
)

// Participant is an active member of a group playing a league.
type Participant struct {
	UserID         string
	Autopick       AutopickPreference
	FavoriteTeamID *int64
}

// Favorite is a user's favorite team in a league.
type Favorite struct {
	UserID   string
	LeagueID int64
	TeamID   *int64
}
