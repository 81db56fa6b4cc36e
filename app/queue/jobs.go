package queue

// KickoffJob prepares every participant's picks once a gameset opens.
type KickoffJob struct {
	GameSetID int64 `json:"gameset_id"`
}

// Kind returns the job type identifier for River
func (KickoffJob) Kind() string { return "picker_kickoff" }

// GradeJob fetches and applies results for a league's current gameset.
type GradeJob struct {
	League string `json:"league"`
}

// Kind returns the job type identifier for River
func (GradeJob) Kind() string { return "picker_grade" }
