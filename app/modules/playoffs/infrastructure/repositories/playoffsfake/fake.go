// Package playoffsfake provides an in-memory playoffs repository for service tests.
package playoffsfake

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	leaguedb "github.com/Black-And-White-Club/picker-bot/app/modules/league/infrastructure/repositories"
	playoffsdb "github.com/Black-And-White-Club/picker-bot/app/modules/playoffs/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// Repo is an in-memory playoffsdb.Repository. Teams resolve through the
// league repository's Teams map when seeds are loaded.
type Repo struct {
	mu     sync.Mutex
	trace  []string
	nextID int64
	teams  map[int64]*leaguedb.Team

	Playoffs map[int64]*playoffsdb.Playoff
	Picks    map[int64]*playoffsdb.PlayoffPicks

	UpsertUserPicksFunc func(ctx context.Context, db bun.IDB, picks *playoffsdb.PlayoffPicks) error
}

var _ playoffsdb.Repository = (*Repo)(nil)

func New(teams map[int64]*leaguedb.Team) *Repo {
	return &Repo{
		nextID:   5000,
		teams:    teams,
		Playoffs: map[int64]*playoffsdb.Playoff{},
		Picks:    map[int64]*playoffsdb.PlayoffPicks{},
	}
}

func (f *Repo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.trace)
}

func (f *Repo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *Repo) id() int64 {
	f.nextID++
	return f.nextID
}

// UserPicks returns a copy of a user's stored bracket, or nil.
func (f *Repo) UserPicks(playoffID int64, userID string) *playoffsdb.PlayoffPicks {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p := f.findPicks(playoffID, &userID); p != nil {
		return copyPicks(p)
	}
	return nil
}

func (f *Repo) findPicks(playoffID int64, userID *string) *playoffsdb.PlayoffPicks {
	for _, p := range f.Picks {
		if p.PlayoffID != playoffID {
			continue
		}
		switch {
		case userID == nil && p.UserID == nil:
			return p
		case userID != nil && p.UserID != nil && *userID == *p.UserID:
			return p
		}
	}
	return nil
}

func (f *Repo) copyPlayoff(p *playoffsdb.Playoff) *playoffsdb.Playoff {
	c := *p
	c.Teams = nil
	for _, t := range p.Teams {
		tc := *t
		tc.Team = f.teams[t.TeamID]
		c.Teams = append(c.Teams, &tc)
	}
	slices.SortFunc(c.Teams, func(a, b *playoffsdb.PlayoffTeam) int { return cmp.Compare(a.Seed, b.Seed) })
	return &c
}

func copyPicks(p *playoffsdb.PlayoffPicks) *playoffsdb.PlayoffPicks {
	c := *p
	c.Picks = maps.Clone(p.Picks)
	return &c
}

func (f *Repo) GetPlayoff(ctx context.Context, db bun.IDB, id int64) (*playoffsdb.Playoff, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetPlayoff")
	p, ok := f.Playoffs[id]
	if !ok {
		return nil, playoffsdb.ErrNotFound
	}
	return f.copyPlayoff(p), nil
}

func (f *Repo) GetPlayoffBySeason(ctx context.Context, db bun.IDB, leagueID int64, season int) (*playoffsdb.Playoff, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetPlayoffBySeason")
	for _, p := range f.Playoffs {
		if p.LeagueID == leagueID && p.Season == season {
			return f.copyPlayoff(p), nil
		}
	}
	return nil, playoffsdb.ErrNotFound
}

func (f *Repo) UpsertPlayoff(ctx context.Context, db bun.IDB, p *playoffsdb.Playoff) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpsertPlayoff")
	for _, existing := range f.Playoffs {
		if existing.LeagueID == p.LeagueID && existing.Season == p.Season {
			existing.Kickoff = p.Kickoff
			p.ID = existing.ID
			return nil
		}
	}
	p.ID = f.id()
	c := *p
	c.Teams = nil
	f.Playoffs[p.ID] = &c
	return nil
}

func (f *Repo) ReplaceSeeds(ctx context.Context, db bun.IDB, playoffID int64, teams []*playoffsdb.PlayoffTeam) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ReplaceSeeds")
	p, ok := f.Playoffs[playoffID]
	if !ok {
		return playoffsdb.ErrNotFound
	}
	p.Teams = nil
	for _, t := range teams {
		t.ID = f.id()
		t.PlayoffID = playoffID
		c := *t
		p.Teams = append(p.Teams, &c)
	}
	return nil
}

func (f *Repo) GetAdminPicks(ctx context.Context, db bun.IDB, playoffID int64) (*playoffsdb.PlayoffPicks, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetAdminPicks")
	if p := f.findPicks(playoffID, nil); p != nil {
		return copyPicks(p), nil
	}
	return nil, playoffsdb.ErrNotFound
}

func (f *Repo) upsertPicks(picks *playoffsdb.PlayoffPicks) {
	if existing := f.findPicks(picks.PlayoffID, picks.UserID); existing != nil {
		existing.Picks = maps.Clone(picks.Picks)
		picks.ID = existing.ID
		return
	}
	picks.ID = f.id()
	f.Picks[picks.ID] = copyPicks(picks)
}

func (f *Repo) UpsertAdminPicks(ctx context.Context, db bun.IDB, picks *playoffsdb.PlayoffPicks) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpsertAdminPicks")
	picks.UserID = nil
	f.upsertPicks(picks)
	return nil
}

func (f *Repo) UpsertUserPicks(ctx context.Context, db bun.IDB, picks *playoffsdb.PlayoffPicks) error {
	if f.UpsertUserPicksFunc != nil {
		f.mu.Lock()
		f.record("UpsertUserPicks")
		f.mu.Unlock()
		return f.UpsertUserPicksFunc(ctx, db, picks)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpsertUserPicks")
	f.upsertPicks(picks)
	return nil
}

func (f *Repo) ListUserPicks(ctx context.Context, db bun.IDB, playoffID int64) ([]*playoffsdb.PlayoffPicks, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListUserPicks")
	var out []*playoffsdb.PlayoffPicks
	for _, p := range f.Picks {
		if p.PlayoffID == playoffID && p.UserID != nil {
			out = append(out, copyPicks(p))
		}
	}
	slices.SortFunc(out, func(a, b *playoffsdb.PlayoffPicks) int { return cmp.Compare(*a.UserID, *b.UserID) })
	return out, nil
}
