package picksdb

import (
	"time"

	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
	picksdomain "github.com/Black-And-White-Club/picker-bot/app/modules/picks/domain"
	"github.com/uptrace/bun"
)

type PickSet struct {
	bun.BaseModel `bun:"table:picksets,alias:ps"`

	ID        int64     `bun:"id,pk,autoincrement"`
	UserID    string    `bun:"user_id,notnull"`
	GameSetID int64     `bun:"gameset_id,notnull"`
	Strategy  string    `bun:"strategy,notnull,default:'USER'"`
	Points    int       `bun:"points,notnull,default:0"`
	Correct   int       `bun:"correct,notnull,default:0"`
	Wrong     int       `bun:"wrong,notnull,default:0"`
	IsWinner  bool      `bun:"is_winner,notnull,default:false"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`

	Picks []*GamePick `bun:"rel:has-many,join:id=pickset_id"`
}

// GamePick stores a team winner in WinnerID or a tie in IsTie, never both.
type GamePick struct {
	bun.BaseModel `bun:"table:gamepicks,alias:gp"`

	ID        int64  `bun:"id,pk,autoincrement"`
	PickSetID int64  `bun:"pickset_id,notnull"`
	GameID    int64  `bun:"game_id,notnull"`
	WinnerID  *int64 `bun:"winner_id"`
	IsTie     bool   `bun:"is_tie,notnull,default:false"`
}

type Preference struct {
	bun.BaseModel `bun:"table:picker_preferences,alias:pp"`

	UserID   string `bun:"user_id,pk"`
	Autopick string `bun:"autopick,notnull,default:'RAND'"`
}

type Group struct {
	bun.BaseModel `bun:"table:picker_groups,alias:pg"`

	ID       int64  `bun:"id,pk,autoincrement"`
	Name     string `bun:"name,notnull,unique"`
	Status   string `bun:"status,notnull,default:'ACTV'"`
	Category string `bun:"category,notnull,default:'PVT'"`
}

type GroupLeague struct {
	bun.BaseModel `bun:"table:picker_group_leagues,alias:pgl"`

	GroupID  int64 `bun:"group_id,pk"`
	LeagueID int64 `bun:"league_id,pk"`
}

type Membership struct {
	bun.BaseModel `bun:"table:picker_memberships,alias:pm"`

	ID       int64  `bun:"id,pk,autoincrement"`
	UserID   string `bun:"user_id,notnull"`
	GroupID  int64  `bun:"group_id,notnull"`
	Status   string `bun:"status,notnull,default:'ACTV'"`
}

type Favorite struct {
	bun.BaseModel `bun:"table:picker_favorites,alias:pf"`

	UserID   string `bun:"user_id,pk"`
	LeagueID int64  `bun:"league_id,pk"`
	TeamID   *int64 `bun:"team_id"`
}

// Participant is the scan target of ListParticipants.
type Participant struct {
	UserID         string `bun:"user_id"`
	Autopick       string `bun:"autopick"`
	FavoriteTeamID *int64 `bun:"favorite_team_id"`
}

// SeasonPickSet is a pickset joined with its gameset's sequence and points.
type SeasonPickSet struct {
	PickSet `bun:",extend"`

	Sequence      int `bun:"sequence"`
	GameSetPoints int `bun:"gameset_points"`
}

func (p *GamePick) Winner() leaguedomain.WinnerRef {
	switch {
	case p.IsTie:
		return leaguedomain.TieWinner()
	case p.WinnerID != nil:
		return leaguedomain.TeamWinner(*p.WinnerID)
	}
	return leaguedomain.WinnerRef{}
}

// SetWinner stores w in the column pair.
func (p *GamePick) SetWinner(w leaguedomain.WinnerRef) {
	p.IsTie = w.Tie
	p.WinnerID = nil
	if !w.Tie && w.TeamID != 0 {
		id := w.TeamID
		p.WinnerID = &id
	}
}

func (p *GamePick) ToDomain() picksdomain.GamePick {
	return picksdomain.GamePick{
		ID:        p.ID,
		PickSetID: p.PickSetID,
		GameID:    p.GameID,
		Winner:    p.Winner(),
	}
}

func (ps *PickSet) ToDomain() picksdomain.PickSet {
	out := picksdomain.PickSet{
		ID:        ps.ID,
		UserID:    ps.UserID,
		GameSetID: ps.GameSetID,
		Strategy:  picksdomain.Strategy(ps.Strategy),
		Points:    ps.Points,
		Correct:   ps.Correct,
		Wrong:     ps.Wrong,
		IsWinner:  ps.IsWinner,
		Created:   ps.CreatedAt,
		Updated:   ps.UpdatedAt,
	}
	for _, p := range ps.Picks {
		out.Picks = append(out.Picks, p.ToDomain())
	}
	return out
}

func (p *Participant) ToDomain() picksdomain.Participant {
	return picksdomain.Participant{
		UserID:         p.UserID,
		Autopick:       picksdomain.AutopickPreference(p.Autopick),
		FavoriteTeamID: p.FavoriteTeamID,
	}
}
