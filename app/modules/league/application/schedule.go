package leagueservice

import "time"

// SeasonSchedule is a normalized season: the league, its teams and its
// gamesets. Parsing provider-specific files into this shape happens upstream.
type SeasonSchedule struct {
	League   LeagueSpec    `json:"league"`
	Season   int           `json:"season"`
	Teams    []TeamSpec    `json:"teams"`
	GameSets []GameSetSpec `json:"gamesets"`
}

type LeagueSpec struct {
	Abbr            string `json:"abbr"`
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	AvgGameDuration int    `json:"avg_game_duration,omitempty"`
}

type TeamSpec struct {
	Abbr       string   `json:"abbr"`
	Name       string   `json:"name"`
	Nickname   string   `json:"nickname,omitempty"`
	Conference string   `json:"conference,omitempty"`
	Division   string   `json:"division,omitempty"`
	Aliases    []string `json:"aliases,omitempty"`
}

type GameSetSpec struct {
	Sequence int        `json:"sequence"`
	Opens    time.Time  `json:"opens"`
	Closes   *time.Time `json:"closes,omitempty"`
	Byes     []string   `json:"byes,omitempty"`
	Games    []GameSpec `json:"games"`
}

type GameSpec struct {
	Home     string    `json:"home"`
	Away     string    `json:"away"`
	Start    time.Time `json:"start"`
	Location string    `json:"location,omitempty"`
}

// ImportSummary reports what an import touched.
type ImportSummary struct {
	LeagueID int64
	Teams    int
	Games    int
	GameSets []ImportedGameSet
}

type ImportedGameSet struct {
	ID       int64
	Sequence int
	Opens    time.Time
	Closes   time.Time
}
