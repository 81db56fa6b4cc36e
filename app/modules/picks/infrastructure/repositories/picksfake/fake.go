// Package picksfake provides an in-memory picks repository for service tests.
package picksfake

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	leaguedb "github.com/Black-And-White-Club/picker-bot/app/modules/league/infrastructure/repositories"
	picksdb "github.com/Black-And-White-Club/picker-bot/app/modules/picks/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// Repo is an in-memory picksdb.Repository. ListSeasonPickSets reads
// gamesets from the league repository passed to New.
type Repo struct {
	mu     sync.Mutex
	trace  []string
	nextID int64

	leagues     leaguedb.Repository
	PickSets    map[int64]*picksdb.PickSet
	Preferences map[string]*picksdb.Preference
	Favorites   map[FavoriteKey]*picksdb.Favorite
	Groups      map[int64]*picksdb.Group
	GroupLeague map[[2]int64]bool
	Memberships map[int64]*picksdb.Membership

	CreatePickSetFunc         func(ctx context.Context, db bun.IDB, ps *picksdb.PickSet) (bool, error)
	UpdatePickSetStatusesFunc func(ctx context.Context, db bun.IDB, picksets []*picksdb.PickSet) error
}

var _ picksdb.Repository = (*Repo)(nil)

type FavoriteKey struct {
	UserID   string
	LeagueID int64
}

// New returns an empty repository. leagues may be nil when season queries
// are not exercised.
func New(leagues leaguedb.Repository) *Repo {
	return &Repo{
		nextID:      1000,
		leagues:     leagues,
		PickSets:    map[int64]*picksdb.PickSet{},
		Preferences: map[string]*picksdb.Preference{},
		Favorites:   map[FavoriteKey]*picksdb.Favorite{},
		Groups:      map[int64]*picksdb.Group{},
		GroupLeague: map[[2]int64]bool{},
		Memberships: map[int64]*picksdb.Membership{},
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

// AddParticipant enrolls userID in an active group playing leagueID.
func (f *Repo) AddParticipant(leagueID int64, userID string, autopick string, favoriteTeamID *int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var groupID int64
	for id := range f.GroupLeague {
		if id[1] == leagueID {
			groupID = id[0]
		}
	}
	if groupID == 0 {
		groupID = f.id()
		f.Groups[groupID] = &picksdb.Group{ID: groupID, Name: "group", Status: "ACTV"}
		f.GroupLeague[[2]int64{groupID, leagueID}] = true
	}
	m := &picksdb.Membership{ID: f.id(), UserID: userID, GroupID: groupID, Status: "ACTV"}
	f.Memberships[m.ID] = m
	if autopick != "" {
		f.Preferences[userID] = &picksdb.Preference{UserID: userID, Autopick: autopick}
	}
	if favoriteTeamID != nil {
		f.Favorites[FavoriteKey{userID, leagueID}] = &picksdb.Favorite{UserID: userID, LeagueID: leagueID, TeamID: favoriteTeamID}
	}
}

// PickSetFor returns a copy of the stored pickset for (gameset, user).
func (f *Repo) PickSetFor(gamesetID int64, userID string) *picksdb.PickSet {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ps := f.find(gamesetID, userID); ps != nil {
		return copyPickSet(ps)
	}
	return nil
}

// Seed stores ps as is, assigning ids.
func (f *Repo) Seed(ps *picksdb.PickSet) *picksdb.PickSet {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ps.ID == 0 {
		ps.ID = f.id()
	}
	if ps.Strategy == "" {
		ps.Strategy = "USER"
	}
	for _, p := range ps.Picks {
		if p.ID == 0 {
			p.ID = f.id()
		}
		p.PickSetID = ps.ID
	}
	f.PickSets[ps.ID] = ps
	return ps
}

func (f *Repo) find(gamesetID int64, userID string) *picksdb.PickSet {
	for _, ps := range f.PickSets {
		if ps.GameSetID == gamesetID && ps.UserID == userID {
			return ps
		}
	}
	return nil
}

func (f *Repo) GetPickSet(ctx context.Context, db bun.IDB, gamesetID int64, userID string) (*picksdb.PickSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetPickSet")
	ps := f.find(gamesetID, userID)
	if ps == nil {
		return nil, picksdb.ErrNotFound
	}
	return copyPickSet(ps), nil
}

func (f *Repo) CreatePickSet(ctx context.Context, db bun.IDB, ps *picksdb.PickSet) (bool, error) {
	if f.CreatePickSetFunc != nil {
		f.mu.Lock()
		f.record("CreatePickSet")
		f.mu.Unlock()
		return f.CreatePickSetFunc(ctx, db, ps)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreatePickSet")
	if f.find(ps.GameSetID, ps.UserID) != nil {
		return false, nil
	}
	ps.ID = f.id()
	ps.CreatedAt = time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	ps.UpdatedAt = ps.CreatedAt
	c := *ps
	c.Picks = nil
	f.PickSets[ps.ID] = &c
	return true, nil
}

func (f *Repo) UpdatePickSetPoints(ctx context.Context, db bun.IDB, id int64, points int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdatePickSetPoints")
	ps, ok := f.PickSets[id]
	if !ok {
		return picksdb.ErrNoRowsAffected
	}
	ps.Points = points
	return nil
}

func (f *Repo) ListGameSetPickSets(ctx context.Context, db bun.IDB, gamesetID int64) ([]*picksdb.PickSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListGameSetPickSets")
	var out []*picksdb.PickSet
	for _, ps := range f.PickSets {
		if ps.GameSetID == gamesetID {
			out = append(out, copyPickSet(ps))
		}
	}
	slices.SortFunc(out, func(a, b *picksdb.PickSet) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (f *Repo) UpdatePickSetStatuses(ctx context.Context, db bun.IDB, picksets []*picksdb.PickSet) error {
	if f.UpdatePickSetStatusesFunc != nil {
		f.mu.Lock()
		f.record("UpdatePickSetStatuses")
		f.mu.Unlock()
		return f.UpdatePickSetStatusesFunc(ctx, db, picksets)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdatePickSetStatuses")
	for _, in := range picksets {
		if ps, ok := f.PickSets[in.ID]; ok {
			ps.Correct, ps.Wrong, ps.IsWinner = in.Correct, in.Wrong, in.IsWinner
		}
	}
	return nil
}

func (f *Repo) ListSeasonPickSets(ctx context.Context, db bun.IDB, leagueID int64, season int) ([]*picksdb.SeasonPickSet, error) {
	f.mu.Lock()
	f.record("ListSeasonPickSets")
	f.mu.Unlock()

	sets, err := f.leagues.ListGameSets(ctx, db, leagueID, season)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*picksdb.SeasonPickSet
	for _, gs := range sets {
		for _, ps := range f.PickSets {
			if ps.GameSetID == gs.ID {
				out = append(out, &picksdb.SeasonPickSet{PickSet: *copyPickSet(ps), Sequence: gs.Sequence, GameSetPoints: gs.Points})
			}
		}
	}
	slices.SortFunc(out, func(a, b *picksdb.SeasonPickSet) int {
		if c := cmp.Compare(a.Sequence, b.Sequence); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	return out, nil
}

func (f *Repo) InsertGamePicks(ctx context.Context, db bun.IDB, picks []*picksdb.GamePick) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("InsertGamePicks")
	for _, p := range picks {
		ps, ok := f.PickSets[p.PickSetID]
		if !ok {
			return picksdb.ErrNotFound
		}
		if slices.ContainsFunc(ps.Picks, func(existing *picksdb.GamePick) bool { return existing.GameID == p.GameID }) {
			continue
		}
		p.ID = f.id()
		c := *p
		ps.Picks = append(ps.Picks, &c)
	}
	return nil
}

func (f *Repo) UpdateGamePick(ctx context.Context, db bun.IDB, pick *picksdb.GamePick) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateGamePick")
	for _, ps := range f.PickSets {
		for _, p := range ps.Picks {
			if p.ID == pick.ID {
				p.WinnerID, p.IsTie = pick.WinnerID, pick.IsTie
				return nil
			}
		}
	}
	return picksdb.ErrNoRowsAffected
}

func (f *Repo) GetPreference(ctx context.Context, db bun.IDB, userID string) (*picksdb.Preference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetPreference")
	p, ok := f.Preferences[userID]
	if !ok {
		return nil, picksdb.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (f *Repo) UpsertPreference(ctx context.Context, db bun.IDB, pref *picksdb.Preference) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpsertPreference")
	c := *pref
	f.Preferences[pref.UserID] = &c
	return nil
}

func (f *Repo) UpsertFavorite(ctx context.Context, db bun.IDB, fav *picksdb.Favorite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpsertFavorite")
	c := *fav
	f.Favorites[FavoriteKey{fav.UserID, fav.LeagueID}] = &c
	return nil
}

func (f *Repo) UpsertGroup(ctx context.Context, db bun.IDB, group *picksdb.Group) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpsertGroup")
	for _, g := range f.Groups {
		if g.Name == group.Name {
			g.Status, g.Category = group.Status, group.Category
			group.ID = g.ID
			return nil
		}
	}
	group.ID = f.id()
	c := *group
	f.Groups[group.ID] = &c
	return nil
}

func (f *Repo) AddGroupLeague(ctx context.Context, db bun.IDB, groupID, leagueID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AddGroupLeague")
	f.GroupLeague[[2]int64{groupID, leagueID}] = true
	return nil
}

func (f *Repo) UpsertMembership(ctx context.Context, db bun.IDB, m *picksdb.Membership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpsertMembership")
	for _, existing := range f.Memberships {
		if existing.UserID == m.UserID && existing.GroupID == m.GroupID {
			existing.Status = m.Status
			m.ID = existing.ID
			return nil
		}
	}
	m.ID = f.id()
	c := *m
	f.Memberships[m.ID] = &c
	return nil
}

func (f *Repo) ListParticipants(ctx context.Context, db bun.IDB, leagueID int64) ([]*picksdb.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListParticipants")
	seen := map[string]bool{}
	var out []*picksdb.Participant
	for _, m := range f.Memberships {
		g := f.Groups[m.GroupID]
		if m.Status != "ACTV" || g == nil || g.Status != "ACTV" || !f.GroupLeague[[2]int64{m.GroupID, leagueID}] || seen[m.UserID] {
			continue
		}
		seen[m.UserID] = true
		p := &picksdb.Participant{UserID: m.UserID, Autopick: "RAND"}
		if pref, ok := f.Preferences[m.UserID]; ok {
			p.Autopick = pref.Autopick
		}
		if fav, ok := f.Favorites[FavoriteKey{m.UserID, leagueID}]; ok {
			p.FavoriteTeamID = fav.TeamID
		}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *picksdb.Participant) int { return cmp.Compare(a.UserID, b.UserID) })
	return out, nil
}

func copyPickSet(ps *picksdb.PickSet) *picksdb.PickSet {
	c := *ps
	c.Picks = make([]*picksdb.GamePick, 0, len(ps.Picks))
	for _, p := range ps.Picks {
		pc := *p
		c.Picks = append(c.Picks, &pc)
	}
	return &c
}
