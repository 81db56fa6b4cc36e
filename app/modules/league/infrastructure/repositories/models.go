package leaguedb

import (
	"time"

	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
	"github.com/uptrace/bun"
)

// League is the persisted league row.
type League struct {
	bun.BaseModel `bun:"table:leagues,alias:l"`

	ID              int64     `bun:"id,pk,autoincrement"`
	Name            string    `bun:"name,notnull"`
	Abbr            string    `bun:"abbr,notnull,unique"`
	Slug            string    `bun:"slug,notnull,unique"`
	CurrentSeason   int       `bun:"current_season,notnull,default:0"`
	AvgGameDuration int       `bun:"avg_game_duration,notnull,default:240"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type Conference struct {
	bun.BaseModel `bun:"table:conferences,alias:c"`

	ID       int64  `bun:"id,pk,autoincrement"`
	LeagueID int64  `bun:"league_id,notnull"`
	Name     string `bun:"name,notnull"`
	Abbr     string `bun:"abbr,notnull"`
}

type Division struct {
	bun.BaseModel `bun:"table:divisions,alias:d"`

	ID           int64  `bun:"id,pk,autoincrement"`
	ConferenceID int64  `bun:"conference_id,notnull"`
	Name         string `bun:"name,notnull"`
}

type Team struct {
	bun.BaseModel `bun:"table:teams,alias:t"`

	ID           int64    `bun:"id,pk,autoincrement"`
	LeagueID     int64    `bun:"league_id,notnull"`
	ConferenceID *int64   `bun:"conference_id"`
	DivisionID   *int64   `bun:"division_id"`
	Abbr         string   `bun:"abbr,notnull"`
	Name         string   `bun:"name,notnull"`
	Nickname     string   `bun:"nickname,notnull,default:''"`
	Aliases      []string `bun:"aliases,array"`
}

type GameSet struct {
	bun.BaseModel `bun:"table:gamesets,alias:gs"`

	ID       int64     `bun:"id,pk,autoincrement"`
	LeagueID int64     `bun:"league_id,notnull"`
	Season   int       `bun:"season,notnull"`
	Sequence int       `bun:"sequence,notnull"`
	Opens    time.Time `bun:"opens,notnull"`
	Closes   time.Time `bun:"closes,notnull"`
	Points   int       `bun:"points,notnull,default:0"`

	Games []*Game `bun:"rel:has-many,join:id=gameset_id"`
	Byes  []*Team `bun:"m2m:gameset_byes,join:GameSet=Team"`
}

// GameSetBye links a team sitting out a gameset.
type GameSetBye struct {
	bun.BaseModel `bun:"table:gameset_byes,alias:gb"`

	GameSetID int64    `bun:"gameset_id,pk"`
	GameSet   *GameSet `bun:"rel:belongs-to,join:gameset_id=id"`
	TeamID    int64    `bun:"team_id,pk"`
	Team      *Team    `bun:"rel:belongs-to,join:team_id=id"`
}

type Game struct {
	bun.BaseModel `bun:"table:games,alias:g"`

	ID        int64     `bun:"id,pk,autoincrement"`
	GameSetID int64     `bun:"gameset_id,notnull"`
	HomeID    int64     `bun:"home_id,notnull"`
	AwayID    int64     `bun:"away_id,notnull"`
	StartTime time.Time `bun:"start_time,notnull"`
	HomeScore *int      `bun:"home_score"`
	AwayScore *int      `bun:"away_score"`
	Status    string    `bun:"status,notnull,default:'U'"`
	Location  string    `bun:"location,notnull,default:''"`

	Home *Team `bun:"rel:belongs-to,join:home_id=id"`
	Away *Team `bun:"rel:belongs-to,join:away_id=id"`
}

// PointsStats summarizes the tiebreaker points of graded gamesets.
type PointsStats struct {
	Count  int     `bun:"n"`
	Avg    float64 `bun:"avg"`
	StdDev float64 `bun:"stddev"`
}

func (l *League) ToDomain(settings leaguedomain.SettingsSource) leaguedomain.League {
	out := leaguedomain.League{
		ID:              l.ID,
		Name:            l.Name,
		Abbr:            l.Abbr,
		Slug:            l.Slug,
		CurrentSeason:   l.CurrentSeason,
		AvgGameDuration: time.Duration(l.AvgGameDuration) * time.Minute,
	}
	if settings != nil {
		out.Settings = settings(l.Abbr)
	}
	return out
}

func (t *Team) ToDomain() leaguedomain.Team {
	if t == nil {
		return leaguedomain.Team{}
	}
	return leaguedomain.Team{
		ID:           t.ID,
		LeagueID:     t.LeagueID,
		ConferenceID: t.ConferenceID,
		DivisionID:   t.DivisionID,
		Abbr:         t.Abbr,
		Name:         t.Name,
		Nickname:     t.Nickname,
		Aliases:      t.Aliases,
	}
}

func (g *Game) ToDomain() leaguedomain.Game {
	home, away := g.Home.ToDomain(), g.Away.ToDomain()
	home.ID, away.ID = g.HomeID, g.AwayID
	return leaguedomain.Game{
		ID:        g.ID,
		GameSetID: g.GameSetID,
		Home:      home,
		Away:      away,
		StartTime: g.StartTime,
		HomeScore: g.HomeScore,
		AwayScore: g.AwayScore,
		Status:    leaguedomain.GameStatus(g.Status),
		Location:  g.Location,
	}
}

func (gs *GameSet) ToDomain() leaguedomain.GameSet {
	out := leaguedomain.GameSet{
		ID:       gs.ID,
		LeagueID: gs.LeagueID,
		Season:   gs.Season,
		Sequence: gs.Sequence,
		Opens:    gs.Opens,
		Closes:   gs.Closes,
		Points:   gs.Points,
	}
	for _, g := range gs.Games {
		out.Games = append(out.Games, g.ToDomain())
	}
	leaguedomain.SortGames(out.Games)
	for _, t := range gs.Byes {
		out.Byes = append(out.Byes, t.ToDomain())
	}
	return out
}
