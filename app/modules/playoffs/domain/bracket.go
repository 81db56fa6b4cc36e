// Package playoffsdomain scores playoff brackets.
package playoffsdomain

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
)

// BracketSlots is four first-round games, four second-round games, two
// conference championships and the final.
const BracketSlots = 11

// roundSizes partitions the slots by round.
var roundSizes = [...]int{4, 4, 2, 1}

const pointsKey = "points"

func slotKey(i int) string { return "game_" + strconv.Itoa(i) }

// BracketPicks is one bracket: a team abbreviation per slot (empty when not
// picked) and a combined-score guess for the final.
type BracketPicks struct {
	Teams  [BracketSlots]string
	Points int
}

// ParseBracketPayload reads the flat "game_1".."game_11" + "points" form.
// A points value that is not all digits counts as zero.
func ParseBracketPayload(payload map[string]string) BracketPicks {
	var b BracketPicks
	for i := range BracketSlots {
		b.Teams[i] = strings.ToUpper(strings.TrimSpace(payload[slotKey(i+1)]))
	}
	b.Points = parsePoints(payload[pointsKey])
	return b
}

func parsePoints(s string) int {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// Payload is the inverse of ParseBracketPayload.
func (b BracketPicks) Payload() map[string]string {
	out := make(map[string]string, BracketSlots+1)
	for i, t := range b.Teams {
		if t != "" {
			out[slotKey(i+1)] = t
		}
	}
	out[pointsKey] = strconv.Itoa(b.Points)
	return out
}

// Rounds splits the slots into first round, second round, conference
// championships and the final.
func (b BracketPicks) Rounds() [][]string {
	rounds := make([][]string, 0, len(roundSizes))
	start := 0
	for _, n := range roundSizes {
		rounds = append(rounds, b.Teams[start:start+n])
		start += n
	}
	return rounds
}

// Seed places a team in the playoff field.
type Seed struct {
	Seed int
	Team leaguedomain.Team
}

type Playoff struct {
	ID       int64
	LeagueID int64
	Season   int
	Kickoff  time.Time
	Seeds    []Seed
}

func (p Playoff) HasStarted(now time.Time) bool {
	return now.After(p.Kickoff)
}

// Teams indexes the seeded teams by abbreviation.
func (p Playoff) Teams() map[string]leaguedomain.Team {
	out := make(map[string]leaguedomain.Team, len(p.Seeds))
	for _, s := range p.Seeds {
		out[strings.ToUpper(s.Team.Abbr)] = s.Team
	}
	return out
}

// SeedsByConference groups seeds by conference id, each group in seed order.
// Teams without a conference are grouped under 0.
func (p Playoff) SeedsByConference() map[int64][]Seed {
	out := make(map[int64][]Seed)
	for _, s := range p.Seeds {
		var conf int64
		if s.Team.ConferenceID != nil {
			conf = *s.Team.ConferenceID
		}
		out[conf] = append(out[conf], s)
	}
	for _, seeds := range out {
		slices.SortFunc(seeds, func(a, b Seed) int { return cmp.Compare(a.Seed, b.Seed) })
	}
	return out
}

// ValidateSeeds rejects two teams sharing a seed within a conference.
func ValidateSeeds(seeds []Seed) error {
	type key struct {
		conf int64
		seed int
	}
	seen := make(map[key]bool, len(seeds))
	for _, s := range seeds {
		k := key{seed: s.Seed}
		if s.Team.ConferenceID != nil {
			k.conf = *s.Team.ConferenceID
		}
		if seen[k] {
			return fmt.Errorf("%w: %d (%s)", ErrDuplicateSeed, s.Seed, s.Team.Abbr)
		}
		seen[k] = true
	}
	return nil
}

// Validate checks that every picked team is seeded.
func (b BracketPicks) Validate(teams map[string]leaguedomain.Team) error {
	for i, t := range b.Teams {
		if t == "" {
			continue
		}
		if _, ok := teams[t]; !ok {
			return fmt.Errorf("%w: %q in game_%d", ErrUnknownTeam, t, i+1)
		}
	}
	return nil
}
