// Package standingsdomain ranks picksets and season aggregates with
// competition ranking: entries with equal scores share a place and the next
// place skips accordingly (1, 1, 3).
package standingsdomain

import (
	"cmp"
	"slices"
)

// Score is what places are decided on.
type Score struct {
	Correct     int
	PointsDelta int
}

// Ranked pairs an item with its 1-based place.
type Ranked[T any] struct {
	Place int
	Item  T
}

// ByScore orders by correct picks descending, then points delta ascending.
func ByScore(a, b Score) int {
	if c := cmp.Compare(b.Correct, a.Correct); c != 0 {
		return c
	}
	return cmp.Compare(a.PointsDelta, b.PointsDelta)
}

// RankStandings sorts items and assigns places. order defaults to ByScore on
// score; a custom order must sort by ByScore first and may only break ties
// further, which never changes places. The sort is stable, so items equal
// under order keep their input order.
func RankStandings[T any](items []T, score func(T) Score, order func(a, b T) int) []Ranked[T] {
	if order == nil {
		order = func(a, b T) int { return ByScore(score(a), score(b)) }
	}
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, order)

	out := make([]Ranked[T], 0, len(sorted))
	var prev Score
	for i, item := range sorted {
		s := score(item)
		place := i + 1
		if i > 0 && s == prev {
			place = out[i-1].Place
		}
		out = append(out, Ranked[T]{Place: place, Item: item})
		prev = s
	}
	return out
}

// Winners returns every item in first place. Nothing wins until graded.
func Winners[T any](ranked []Ranked[T], graded bool) []T {
	if !graded {
		return nil
	}
	var out []T
	for _, r := range ranked {
		if r.Place != 1 {
			break
		}
		out = append(out, r.Item)
	}
	return out
}
