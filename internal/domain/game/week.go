package game

import "sort"

// OpenWeek returns the earliest week holding at least one game that is not
// calculated. ok is false when every week is calculated or there are no games.
func OpenWeek(games []Game) (week int, ok bool) {
	for _, g := range games {
		if g.Calculated() {
			continue
		}
		if !ok || g.Week < week {
			week, ok = g.Week, true
		}
	}
	return week, ok
}

// ByWeek groups games by week, keeping store order inside each week.
func ByWeek(games []Game) map[int][]Game {
	out := make(map[int][]Game)
	for _, g := range games {
		out[g.Week] = append(out[g.Week], g)
	}
	return out
}

// Weeks lists the distinct weeks in ascending order.
func Weeks(games []Game) []int {
	seen := make(map[int]struct{}, len(games))
	out := make([]int, 0)
	for _, g := range games {
		if _, ok := seen[g.Week]; ok {
			continue
		}
		seen[g.Week] = struct{}{}
		out = append(out, g.Week)
	}
	sort.Ints(out)
	return out
}

func IndexByID(games []Game) map[string]Game {
	out := make(map[string]Game, len(games))
	for _, g := range games {
		out[g.ID] = g
	}
	return out
}
