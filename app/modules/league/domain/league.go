package leaguedomain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// ReservedPrefix marks internal sentinels. No team abbreviation may start with it.
	ReservedPrefix = "__"
	// TieKey is the reserved token a pick uses to call a tie.
	TieKey = ReservedPrefix + "TIE" + ReservedPrefix

	DefaultGameDuration = 240 * time.Minute
)

// League is the root of a contest: its teams, gamesets and settings.
type League struct {
	ID              int64
	Name            string
	Abbr            string
	Slug            string
	CurrentSeason   int
	AvgGameDuration time.Duration
	Settings        Settings
}

// Season returns the configured CURRENT_SEASON, falling back to the stored one.
func (l League) Season() int {
	return l.Settings.Int(KeyCurrentSeason, l.CurrentSeason)
}

// GameDuration is how long after kickoff a game is assumed to be over. The
// AVG_GAME_DURATION setting wins over the stored value.
func (l League) GameDuration() time.Duration {
	stored := l.AvgGameDuration
	if stored <= 0 {
		stored = DefaultGameDuration
	}
	minutes := l.Settings.Int(KeyAvgGameDuration, int(stored/time.Minute))
	if minutes <= 0 {
		return stored
	}
	return time.Duration(minutes) * time.Minute
}

func (l League) AllowTies() bool { return l.Settings.Bool(KeyAllowTies, false) }

func (l League) ForceAutopick() bool { return l.Settings.Bool(KeyForceAutopick, true) }

func (l League) GameSetDuration() time.Duration {
	return l.Settings.Duration(KeyGameSetDuration, DefaultGameSetDuration)
}

func (l League) PlayoffWeights() map[int]int {
	return l.Settings.IntMap(KeyPlayoffScore, DefaultPlayoffScore())
}

func (l League) ParticipationHooks() []string {
	return l.Settings.Strings(KeyParticipationHooks)
}

type Conference struct {
	ID       int64
	LeagueID int64
	Name     string
	Abbr     string
}

type Division struct {
	ID           int64
	ConferenceID int64
	Name         string
}

// Team belongs to exactly one league.
type Team struct {
	ID           int64
	LeagueID     int64
	ConferenceID *int64
	DivisionID   *int64
	Abbr         string
	Name         string
	Nickname     string
	Aliases      []string
}

// ValidateAbbr rejects empty abbreviations and ones that could collide with TieKey.
func ValidateAbbr(abbr string) error {
	if strings.TrimSpace(abbr) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidAbbr)
	}
	if strings.HasPrefix(abbr, ReservedPrefix) {
		return fmt.Errorf("%w: %q uses reserved prefix %q", ErrInvalidAbbr, abbr, ReservedPrefix)
	}
	return nil
}

// TeamLookup resolves abbreviations, names and aliases to teams.
type TeamLookup map[string]Team

// NewTeamLookup indexes teams by abbreviation, name, nickname and alias.
// Abbreviations win over any alias that happens to share the same string.
func NewTeamLookup(teams []Team) TeamLookup {
	lookup := make(TeamLookup, len(teams)*2)
	for _, t := range teams {
		for _, alias := range t.Aliases {
			lookup[alias] = t
		}
		if t.Name != "" {
			lookup[t.Name] = t
		}
		if t.Nickname != "" {
			lookup[t.Nickname] = t
		}
	}
	for _, t := range teams {
		lookup[t.Abbr] = t
	}
	return lookup
}
