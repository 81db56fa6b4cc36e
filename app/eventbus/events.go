package eventbus

import "time"

// Topics published by the picker.
const (
	TopicPicksUpdated  = "picker.picks.updated"
	TopicResultsGraded = "picker.results.graded"
)

// PicksUpdated is published after a pickset change commits.
type PicksUpdated struct {
	PickSetID  int64     `json:"pickset_id"`
	GameSetID  int64     `json:"gameset_id"`
	UserID     string    `json:"user_id"`
	AutoPick   bool      `json:"auto_pick"`
	Changed    int       `json:"changed"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ResultsGraded is published after a grading pass commits.
type ResultsGraded struct {
	GameSetID  int64     `json:"gameset_id"`
	League     string    `json:"league"`
	Season     int       `json:"season"`
	Sequence   int       `json:"sequence"`
	Updated    int       `json:"updated"`
	Points     int       `json:"points"`
	Winners    []string  `json:"winners,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
