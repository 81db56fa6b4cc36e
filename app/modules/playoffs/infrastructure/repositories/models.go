package playoffsdb

import (
	"time"

	leaguedb "github.com/Black-And-White-Club/picker-bot/app/modules/league/infrastructure/repositories"
	playoffsdomain "github.com/Black-And-White-Club/picker-bot/app/modules/playoffs/domain"
	"github.com/uptrace/bun"
)

type Playoff struct {
	bun.BaseModel `bun:"table:playoffs,alias:po"`

	ID       int64     `bun:"id,pk,autoincrement"`
	LeagueID int64     `bun:"league_id,notnull"`
	Season   int       `bun:"season,notnull"`
	Kickoff  time.Time `bun:"kickoff,notnull"`

	Teams []*PlayoffTeam `bun:"rel:has-many,join:id=playoff_id"`
}

type PlayoffTeam struct {
	bun.BaseModel `bun:"table:playoff_teams,alias:pt"`

	ID        int64          `bun:"id,pk,autoincrement"`
	PlayoffID int64          `bun:"playoff_id,notnull"`
	TeamID    int64          `bun:"team_id,notnull"`
	Seed      int            `bun:"seed,notnull"`
	Team      *leaguedb.Team `bun:"rel:belongs-to,join:team_id=id"`
}

// PlayoffPicks holds a bracket in its flat payload form. The admin bracket
// has no user.
type PlayoffPicks struct {
	bun.BaseModel `bun:"table:playoff_picks,alias:ppk"`

	ID        int64             `bun:"id,pk,autoincrement"`
	PlayoffID int64             `bun:"playoff_id,notnull"`
	UserID    *string           `bun:"user_id"`
	Picks     map[string]string `bun:"picks,type:jsonb,notnull"`
	CreatedAt time.Time         `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time         `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (p *Playoff) ToDomain() playoffsdomain.Playoff {
	out := playoffsdomain.Playoff{
		ID:       p.ID,
		LeagueID: p.LeagueID,
		Season:   p.Season,
		Kickoff:  p.Kickoff,
	}
	for _, t := range p.Teams {
		team := t.Team.ToDomain()
		team.ID = t.TeamID
		out.Seeds = append(out.Seeds, playoffsdomain.Seed{Seed: t.Seed, Team: team})
	}
	return out
}

func (p *PlayoffPicks) ToDomain() playoffsdomain.BracketPicks {
	return playoffsdomain.ParseBracketPayload(p.Picks)
}
