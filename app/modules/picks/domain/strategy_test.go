package picksdomain

import (
	"errors"
	"math/rand/v2"
	"testing"

	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
	"github.com/brianvoe/gofakeit/v7"
)

func testGame() leaguedomain.Game {
	return leaguedomain.Game{
		ID:   7,
		Home: leaguedomain.Team{ID: 1, Abbr: "HUF"},
		Away: leaguedomain.Team{ID: 2, Abbr: "GRF"},
	}
}

func TestRandomPickerDrawsFromBothTeams(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	pick := RandomPicker(r.IntN)
	g := testGame()

	seen := map[int64]int{}
	for range 200 {
		w := pick(g)
		if !g.Involves(w.TeamID) || w.Tie {
			t.Fatalf("random pick %+v is not a team in the game", w)
		}
		seen[w.TeamID]++
	}
	if seen[1] == 0 || seen[2] == 0 {
		t.Errorf("random picker never chose one side: %v", seen)
	}
}

func TestBestRecordPicker(t *testing.T) {
	g := testGame()
	tests := []struct {
		name    string
		records map[int64]leaguedomain.TeamRecord
		want    int64
	}{
		{"away has more season points", map[int64]leaguedomain.TeamRecord{1: {Wins: 1}, 2: {Wins: 1, Ties: 1}}, 2},
		{"home has more season points", map[int64]leaguedomain.TeamRecord{1: {Wins: 3}, 2: {Wins: 2, Ties: 1}}, 1},
		{"equal records go home", map[int64]leaguedomain.TeamRecord{1: {Ties: 2}, 2: {Wins: 1}}, 1},
		{"no records go home", nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BestRecordPicker(tt.records)(g); got.TeamID != tt.want {
				t.Errorf("got team %d, want %d", got.TeamID, tt.want)
			}
		})
	}
}

func TestAutopickerFor(t *testing.T) {
	in := AutopickerInputs{Rand: func(int) int { return 1 }}
	g := testGame()

	user, err := AutopickerFor(StrategyUser, in)
	if err != nil || user != nil {
		t.Fatalf("USER strategy should not autopick, got %v, %v", user, err)
	}
	home, _ := AutopickerFor(StrategyHome, in)
	if home(g).TeamID != 1 {
		t.Error("HOME strategy should pick the home team")
	}
	random, _ := AutopickerFor(StrategyRandom, in)
	if random(g).TeamID != 2 {
		t.Error("RAND strategy should follow the injected source")
	}
	if _, err := AutopickerFor("NOPE", in); !errors.Is(err, ErrInvalidStrategy) {
		t.Errorf("unknown strategy error = %v", err)
	}
}

func TestRandomPointsStaysInRange(t *testing.T) {
	if got := RandomPoints(0, 44, 10, rand.IntN); got != 0 {
		t.Errorf("no history should give 0, got %d", got)
	}

	f := gofakeit.New(42)
	r := rand.New(rand.NewPCG(3, 4))
	for range 500 {
		avg := f.Float64Range(5, 80)
		sd := f.Float64Range(0, 20)
		got := RandomPoints(f.IntRange(1, 40), avg, sd, r.IntN)
		lo, hi := max(int(avg)-int(sd), 0), int(avg)+int(sd)
		if got < lo || got > hi {
			t.Fatalf("RandomPoints(avg=%v, sd=%v) = %d, want within [%d, %d]", avg, sd, got, lo, hi)
		}
	}
}
