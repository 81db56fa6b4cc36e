package picksdomain

import (
	"fmt"

	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
)

// ParticipationHook decides whether a participant without picks should get
// a pickset created for them at kickoff.
type ParticipationHook func(p Participant, gs leaguedomain.GameSet) bool

// HookHasFavorite requires the participant to have picked a favorite team.
const HookHasFavorite = "has_favorite"

var hooks = map[string]ParticipationHook{
	HookHasFavorite: func(p Participant, _ leaguedomain.GameSet) bool {
		return p.FavoriteTeamID != nil
	},
}

// ResolveHooks looks up hooks by name.
func ResolveHooks(names []string) ([]ParticipationHook, error) {
	out := make([]ParticipationHook, 0, len(names))
	for _, name := range names {
		h, ok := hooks[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownHook, name)
		}
		out = append(out, h)
	}
	return out, nil
}

// Participates reports whether every hook accepts p.
func Participates(hs []ParticipationHook, p Participant, gs leaguedomain.GameSet) bool {
	for _, h := range hs {
		if !h(p, gs) {
			return false
		}
	}
	return true
}
