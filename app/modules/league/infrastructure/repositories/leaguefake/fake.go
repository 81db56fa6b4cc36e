// Package leaguefake provides an in-memory league repository for service tests.
package leaguefake

import (
	"cmp"
	"context"
	"math"
	"slices"
	"strings"
	"sync"

	leaguedb "github.com/Black-And-White-Club/picker-bot/app/modules/league/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// Repo is an in-memory leaguedb.Repository. Func fields override the
// default behavior of the matching method.
type Repo struct {
	mu     sync.Mutex
	trace  []string
	nextID int64

	Leagues     map[int64]*leaguedb.League
	Conferences map[int64]*leaguedb.Conference
	Divisions   map[int64]*leaguedb.Division
	Teams       map[int64]*leaguedb.Team
	GameSets    map[int64]*leaguedb.GameSet

	GetGameSetFunc       func(ctx context.Context, db bun.IDB, id int64) (*leaguedb.GameSet, error)
	UpdateGameResultFunc func(ctx context.Context, db bun.IDB, game *leaguedb.Game) error
	PointsStatsFunc      func(ctx context.Context, db bun.IDB, leagueID int64) (leaguedb.PointsStats, error)
}

var _ leaguedb.Repository = (*Repo)(nil)

func New() *Repo {
	return &Repo{
		nextID:      100,
		Leagues:     map[int64]*leaguedb.League{},
		Conferences: map[int64]*leaguedb.Conference{},
		Divisions:   map[int64]*leaguedb.Division{},
		Teams:       map[int64]*leaguedb.Team{},
		GameSets:    map[int64]*leaguedb.GameSet{},
	}
}

// Trace returns the method calls recorded so far.
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

// AddLeague stores a league and returns it.
func (f *Repo) AddLeague(l *leaguedb.League) *leaguedb.League {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l.ID == 0 {
		l.ID = f.id()
	}
	f.Leagues[l.ID] = l
	return l
}

// AddTeam stores a team and returns it.
func (f *Repo) AddTeam(t *leaguedb.Team) *leaguedb.Team {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == 0 {
		t.ID = f.id()
	}
	f.Teams[t.ID] = t
	return t
}

// AddGameSet stores a gameset with its games, wiring game ids and teams.
func (f *Repo) AddGameSet(gs *leaguedb.GameSet) *leaguedb.GameSet {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gs.ID == 0 {
		gs.ID = f.id()
	}
	for _, g := range gs.Games {
		if g.ID == 0 {
			g.ID = f.id()
		}
		g.GameSetID = gs.ID
		if g.Status == "" {
			g.Status = "U"
		}
		if g.Home != nil {
			g.HomeID = g.Home.ID
		} else {
			g.Home = f.Teams[g.HomeID]
		}
		if g.Away != nil {
			g.AwayID = g.Away.ID
		} else {
			g.Away = f.Teams[g.AwayID]
		}
	}
	f.GameSets[gs.ID] = gs
	return gs
}

// Game returns the stored game by id.
func (f *Repo) Game(id int64) *leaguedb.Game {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, gs := range f.GameSets {
		for _, g := range gs.Games {
			if g.ID == id {
				c := *g
				return &c
			}
		}
	}
	return nil
}

func (f *Repo) GetLeague(ctx context.Context, db bun.IDB, id int64) (*leaguedb.League, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetLeague")
	l, ok := f.Leagues[id]
	if !ok {
		return nil, leaguedb.ErrNotFound
	}
	c := *l
	return &c, nil
}

func (f *Repo) GetLeagueByAbbr(ctx context.Context, db bun.IDB, abbr string) (*leaguedb.League, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetLeagueByAbbr")
	for _, l := range f.Leagues {
		if strings.EqualFold(l.Abbr, abbr) {
			c := *l
			return &c, nil
		}
	}
	return nil, leaguedb.ErrNotFound
}

func (f *Repo) UpsertLeague(ctx context.Context, db bun.IDB, league *leaguedb.League) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpsertLeague")
	for _, l := range f.Leagues {
		if l.Abbr == league.Abbr {
			league.ID = l.ID
		}
	}
	if league.ID == 0 {
		league.ID = f.id()
	}
	c := *league
	f.Leagues[league.ID] = &c
	return nil
}

func (f *Repo) ListTeams(ctx context.Context, db bun.IDB, leagueID int64) ([]*leaguedb.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListTeams")
	var out []*leaguedb.Team
	for _, t := range f.Teams {
		if t.LeagueID == leagueID {
			c := *t
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *leaguedb.Team) int { return cmp.Compare(a.Abbr, b.Abbr) })
	return out, nil
}

func (f *Repo) UpsertTeam(ctx context.Context, db bun.IDB, team *leaguedb.Team) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpsertTeam")
	for _, t := range f.Teams {
		if t.LeagueID == team.LeagueID && t.Abbr == team.Abbr {
			team.ID = t.ID
		}
	}
	if team.ID == 0 {
		team.ID = f.id()
	}
	c := *team
	f.Teams[team.ID] = &c
	return nil
}

func (f *Repo) UpsertConference(ctx context.Context, db bun.IDB, conf *leaguedb.Conference) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpsertConference")
	for _, c := range f.Conferences {
		if c.LeagueID == conf.LeagueID && c.Abbr == conf.Abbr {
			conf.ID = c.ID
		}
	}
	if conf.ID == 0 {
		conf.ID = f.id()
	}
	c := *conf
	f.Conferences[conf.ID] = &c
	return nil
}

func (f *Repo) UpsertDivision(ctx context.Context, db bun.IDB, div *leaguedb.Division) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpsertDivision")
	for _, d := range f.Divisions {
		if d.ConferenceID == div.ConferenceID && d.Name == div.Name {
			div.ID = d.ID
		}
	}
	if div.ID == 0 {
		div.ID = f.id()
	}
	c := *div
	f.Divisions[div.ID] = &c
	return nil
}

func (f *Repo) GetGameSet(ctx context.Context, db bun.IDB, id int64) (*leaguedb.GameSet, error) {
	if f.GetGameSetFunc != nil {
		f.mu.Lock()
		f.record("GetGameSet")
		f.mu.Unlock()
		return f.GetGameSetFunc(ctx, db, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetGameSet")
	gs, ok := f.GameSets[id]
	if !ok {
		return nil, leaguedb.ErrNotFound
	}
	return copyGameSet(gs), nil
}

func (f *Repo) LockGameSet(ctx context.Context, db bun.IDB, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("LockGameSet")
	if _, ok := f.GameSets[id]; !ok {
		return leaguedb.ErrNotFound
	}
	return nil
}

func (f *Repo) ListGameSets(ctx context.Context, db bun.IDB, leagueID int64, season int) ([]*leaguedb.GameSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListGameSets")
	var out []*leaguedb.GameSet
	for _, gs := range f.GameSets {
		if gs.LeagueID == leagueID && (season == 0 || gs.Season == season) {
			c := *gs
			c.Games, c.Byes = nil, nil
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *leaguedb.GameSet) int {
		if c := cmp.Compare(a.Season, b.Season); c != 0 {
			return c
		}
		return cmp.Compare(a.Sequence, b.Sequence)
	})
	return out, nil
}

func (f *Repo) UpsertGameSet(ctx context.Context, db bun.IDB, gs *leaguedb.GameSet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpsertGameSet")
	for _, existing := range f.GameSets {
		if existing.LeagueID == gs.LeagueID && existing.Season == gs.Season && existing.Sequence == gs.Sequence {
			existing.Opens, existing.Closes = gs.Opens, gs.Closes
			gs.ID, gs.Points = existing.ID, existing.Points
			return nil
		}
	}
	gs.ID = f.id()
	c := *gs
	f.GameSets[gs.ID] = &c
	return nil
}

func (f *Repo) SetGameSetPoints(ctx context.Context, db bun.IDB, id int64, points int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetGameSetPoints")
	gs, ok := f.GameSets[id]
	if !ok {
		return leaguedb.ErrNoRowsAffected
	}
	gs.Points = points
	return nil
}

func (f *Repo) ReplaceByes(ctx context.Context, db bun.IDB, gamesetID int64, teamIDs []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ReplaceByes")
	gs, ok := f.GameSets[gamesetID]
	if !ok {
		return leaguedb.ErrNotFound
	}
	gs.Byes = nil
	for _, id := range teamIDs {
		gs.Byes = append(gs.Byes, f.Teams[id])
	}
	return nil
}

func (f *Repo) UpsertGame(ctx context.Context, db bun.IDB, game *leaguedb.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpsertGame")
	gs, ok := f.GameSets[game.GameSetID]
	if !ok {
		return leaguedb.ErrNotFound
	}
	for _, g := range gs.Games {
		if g.HomeID == game.HomeID && g.AwayID == game.AwayID {
			g.StartTime, g.Location = game.StartTime, game.Location
			game.ID, game.Status = g.ID, g.Status
			return nil
		}
	}
	game.ID = f.id()
	game.Status = "U"
	c := *game
	c.Home, c.Away = f.Teams[game.HomeID], f.Teams[game.AwayID]
	gs.Games = append(gs.Games, &c)
	return nil
}

func (f *Repo) UpdateGameResult(ctx context.Context, db bun.IDB, game *leaguedb.Game) error {
	if f.UpdateGameResultFunc != nil {
		f.mu.Lock()
		f.record("UpdateGameResult")
		f.mu.Unlock()
		return f.UpdateGameResultFunc(ctx, db, game)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateGameResult")
	for _, gs := range f.GameSets {
		for _, g := range gs.Games {
			if g.ID == game.ID {
				g.Status, g.HomeScore, g.AwayScore = game.Status, game.HomeScore, game.AwayScore
				return nil
			}
		}
	}
	return leaguedb.ErrNoRowsAffected
}

func (f *Repo) ListSeasonGames(ctx context.Context, db bun.IDB, leagueID int64, season int) ([]*leaguedb.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListSeasonGames")
	var out []*leaguedb.Game
	for _, gs := range f.GameSets {
		if gs.LeagueID != leagueID || gs.Season != season {
			continue
		}
		for _, g := range gs.Games {
			c := *g
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *leaguedb.Game) int { return a.StartTime.Compare(b.StartTime) })
	return out, nil
}

func (f *Repo) PointsStats(ctx context.Context, db bun.IDB, leagueID int64) (leaguedb.PointsStats, error) {
	if f.PointsStatsFunc != nil {
		f.mu.Lock()
		f.record("PointsStats")
		f.mu.Unlock()
		return f.PointsStatsFunc(ctx, db, leagueID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("PointsStats")
	var pts []float64
	for _, gs := range f.GameSets {
		if gs.LeagueID == leagueID && gs.Points > 0 {
			pts = append(pts, float64(gs.Points))
		}
	}
	return summarize(pts), nil
}

// summarize matches Postgres avg() and sample stddev().
func summarize(pts []float64) leaguedb.PointsStats {
	n := len(pts)
	if n == 0 {
		return leaguedb.PointsStats{}
	}
	var sum float64
	for _, p := range pts {
		sum += p
	}
	avg := sum / float64(n)
	if n == 1 {
		return leaguedb.PointsStats{Count: 1, Avg: avg}
	}
	var sq float64
	for _, p := range pts {
		sq += (p - avg) * (p - avg)
	}
	return leaguedb.PointsStats{Count: n, Avg: avg, StdDev: math.Sqrt(sq / float64(n-1))}
}

func copyGameSet(gs *leaguedb.GameSet) *leaguedb.GameSet {
	c := *gs
	c.Games = make([]*leaguedb.Game, 0, len(gs.Games))
	for _, g := range gs.Games {
		gc := *g
		c.Games = append(c.Games, &gc)
	}
	slices.SortFunc(c.Games, func(a, b *leaguedb.Game) int { return a.StartTime.Compare(b.StartTime) })
	c.Byes = slices.Clone(gs.Byes)
	return &c
}
