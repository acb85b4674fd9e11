package scoring

import (
	"math"
	"sort"

	"github.com/riskibarqy/fantaqb/internal/domain/formation"
	"github.com/riskibarqy/fantaqb/internal/domain/game"
	"github.com/riskibarqy/fantaqb/internal/domain/user"
	"github.com/riskibarqy/fantaqb/internal/domain/weekstat"
)

const rankEpsilon = 1e-9

// Snapshot indexes games and weekstats for repeated formation scoring.
// Stats keep their store order per quarterback.
type Snapshot struct {
	games    map[string]game.Game
	byPlayer map[string][]weekstat.WeekStat
}

func NewSnapshot(games []game.Game, stats []weekstat.WeekStat) *Snapshot {
	byPlayer := make(map[string][]weekstat.WeekStat)
	for _, s := range stats {
		byPlayer[s.QuarterbackID] = append(byPlayer[s.QuarterbackID], s)
	}
	return &Snapshot{games: game.IndexByID(games), byPlayer: byPlayer}
}

// statFor returns the first weekstat of qbID whose game belongs to week.
func (s *Snapshot) statFor(qbID string, week int) (weekstat.WeekStat, bool) {
	for _, st := range s.byPlayer[qbID] {
		g, ok := s.games[st.GameID]
		if ok && g.Week == week {
			return st, true
		}
	}
	return weekstat.WeekStat{}, false
}

// Breakdown returns one contribution per formation slot, in slot order.
func (s *Snapshot) Breakdown(f formation.Formation) []Contribution {
	out := make([]Contribution, 0, formation.Size)
	for _, id := range f.QuarterbackIDs {
		c := Contribution{QuarterbackID: id}
		if st, ok := s.statFor(id, f.Week); ok {
			c.GameID = st.GameID
			c.Score = st.Score
			c.Scored = true
			c.Counted = Counts(st.Score)
		}
		out = append(out, c)
	}
	return out
}

func (s *Snapshot) FormationTotal(f formation.Formation) float64 {
	var total float64
	for _, c := range s.Breakdown(f) {
		if c.Counted {
			total += c.Score
		}
	}
	return total
}

// UserLeagueTotals sums formation totals for every non-admin user. Users with
// no formations total 0. Sorted by total desc, then user id asc.
func (s *Snapshot) UserLeagueTotals(users []user.User, formations []formation.Formation) []UserTotal {
	players := user.Players(users)
	totals := make(map[string]*UserTotal, len(players))
	out := make([]UserTotal, 0, len(players))
	for _, u := range players {
		totals[u.ID] = &UserTotal{UserID: u.ID}
	}

	for _, f := range formations {
		t, ok := totals[f.UserID]
		if !ok {
			continue
		}
		t.Total += s.FormationTotal(f)
		t.Formations++
	}

	for _, u := range players {
		out = append(out, *totals[u.ID])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !almostEqual(out[i].Total, out[j].Total) {
			return out[i].Total > out[j].Total
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// FormationTotal scores a single formation without building a Snapshot.
func FormationTotal(f formation.Formation, games []game.Game, stats []weekstat.WeekStat) float64 {
	return NewSnapshot(games, stats).FormationTotal(f)
}

// PlayerSeasonStats aggregates every quarterback that has at least one
// weekstat. Sorted by total points desc, then quarterback id asc.
func PlayerSeasonStats(stats []weekstat.WeekStat) []PlayerStats {
	index := make(map[string]int)
	out := make([]PlayerStats, 0)
	for _, st := range stats {
		i, ok := index[st.QuarterbackID]
		if !ok {
			i = len(out)
			index[st.QuarterbackID] = i
			out = append(out, PlayerStats{QuarterbackID: st.QuarterbackID})
		}
		out[i].GamesPlayed++
		if Counts(st.Score) {
			out[i].TotalPoints += st.Score
		}
	}

	for i := range out {
		if out[i].GamesPlayed > 0 {
			out[i].PointsPerGame = out[i].TotalPoints / float64(out[i].GamesPlayed)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !almostEqual(out[i].TotalPoints, out[j].TotalPoints) {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].QuarterbackID < out[j].QuarterbackID
	})
	return out
}

// DenseRanks assigns 1-based dense ranks to values already sorted in
// descending order: equal values share a rank and the next value takes the
// following integer.
func DenseRanks(values []float64) []int {
	ranks := make([]int, len(values))
	rank := 0
	for i, v := range values {
		if i == 0 || !almostEqual(v, values[i-1]) {
			rank++
		}
		ranks[i] = rank
	}
	return ranks
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < rankEpsilon
}
