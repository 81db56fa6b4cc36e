package picksdomain

import (
	"fmt"

	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
)

// Strategy records how a pickset was filled.
type Strategy string

const (
	StrategyUser   Strategy = "USER"
	StrategyRandom Strategy = "RAND"
	StrategyHome   Strategy = "HOME"
	StrategyBest   Strategy = "BEST"
)

func ParseStrategy(s string) (Strategy, error) {
	st := Strategy(s)
	switch st {
	case StrategyUser, StrategyRandom, StrategyHome, StrategyBest:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStrategy, s)
}

// IsAuto reports whether picks under st are made by the system.
func (st Strategy) IsAuto() bool { return st != StrategyUser }

// IntN returns a uniform integer in [0, n). math/rand/v2.IntN satisfies it.
type IntN func(n int) int

// Autopicker chooses a winner for a game on a participant's behalf.
type Autopicker func(g leaguedomain.Game) leaguedomain.WinnerRef

// RandomPicker flips a fair coin between home and away.
func RandomPicker(intn IntN) Autopicker {
	return func(g leaguedomain.Game) leaguedomain.WinnerRef {
		if intn(2) == 0 {
			return leaguedomain.TeamWinner(g.Home.ID)
		}
		return leaguedomain.TeamWinner(g.Away.ID)
	}
}

func HomePicker() Autopicker {
	return func(g leaguedomain.Game) leaguedomain.WinnerRef {
		return leaguedomain.TeamWinner(g.Home.ID)
	}
}

// BestRecordPicker takes the team with more season points. Equal records go home.
func BestRecordPicker(records map[int64]leaguedomain.TeamRecord) Autopicker {
	return func(g leaguedomain.Game) leaguedomain.WinnerRef {
		if records[g.Away.ID].SeasonPoints() > records[g.Home.ID].SeasonPoints() {
			return leaguedomain.TeamWinner(g.Away.ID)
		}
		return leaguedomain.TeamWinner(g.Home.ID)
	}
}

// AutopickerInputs carries what the strategies may need.
type AutopickerInputs struct {
	Rand    IntN
	Records map[int64]leaguedomain.TeamRecord
}

// AutopickerFor returns the picker for st. StrategyUser never autopicks and
// yields nil.
func AutopickerFor(st Strategy, in AutopickerInputs) (Autopicker, error) {
	switch st {
	case StrategyUser:
		return nil, nil
	case StrategyRandom:
		return RandomPicker(in.Rand), nil
	case StrategyHome:
		return HomePicker(), nil
	case StrategyBest:
		return BestRecordPicker(in.Records), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidStrategy, st)
}

// RandomPoints draws a tiebreaker guess uniformly from
// [int(avg)-int(stddev), int(avg)+int(stddev)]. With no history it is 0.
func RandomPoints(count int, avg, stddev float64, intn IntN) int {
	if count == 0 {
		return 0
	}
	lo, hi := int(avg)-int(stddev), int(avg)+int(stddev)
	if lo < 0 {
		lo = 0
	}
	if hi < lo {
		return lo
	}
	return lo + intn(hi-lo+1)
}
