package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fantaqb/internal/domain/formation"
	"github.com/riskibarqy/fantaqb/internal/domain/game"
	"github.com/riskibarqy/fantaqb/internal/domain/user"
	"github.com/riskibarqy/fantaqb/internal/domain/weekstat"
)

func lockedFormation(userID string, week int, a, b, c string) formation.Formation {
	return formation.Formation{
		UserID:         userID,
		Week:           week,
		QuarterbackIDs: [formation.Size]string{a, b, c},
		State:          formation.StateLocked,
	}
}

func TestPlayerSeasonStats_ZeroCountsAsGamePlayedOnly(t *testing.T) {
	stats := []weekstat.WeekStat{
		{QuarterbackID: "P", GameID: "g1", Score: 0},
		{QuarterbackID: "P", GameID: "g2", Score: 12.5},
		{QuarterbackID: "P", GameID: "g3", Score: 0},
	}

	got := PlayerSeasonStats(stats)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].GamesPlayed)
	assert.InDelta(t, 12.5, got[0].TotalPoints, 1e-9)
	assert.InDelta(t, 12.5/3, got[0].PointsPerGame, 1e-9)
}

func TestPlayerSeasonStats_NegativeScoresIgnoredInTotals(t *testing.T) {
	got := PlayerSeasonStats([]weekstat.WeekStat{
		{QuarterbackID: "P", GameID: "g1", Score: -4},
		{QuarterbackID: "P", GameID: "g2", Score: 6},
	})

	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].GamesPlayed)
	assert.InDelta(t, 6, got[0].TotalPoints, 1e-9)
}

func TestPlayerSeasonStats_SortsByPointsThenID(t *testing.T) {
	got := PlayerSeasonStats([]weekstat.WeekStat{
		{QuarterbackID: "qb-c", GameID: "g1", Score: 10},
		{QuarterbackID: "qb-b", GameID: "g1", Score: 20},
		{QuarterbackID: "qb-a", GameID: "g1", Score: 10},
		{QuarterbackID: "qb-d", GameID: "g1", Score: 0},
	})

	ids := make([]string, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.QuarterbackID)
	}
	assert.Equal(t, []string{"qb-b", "qb-a", "qb-c", "qb-d"}, ids)
}

func TestFormationTotal_CountsOnlyPositiveScoresOfFormationWeek(t *testing.T) {
	games := []game.Game{
		{ID: "g5a", Week: 5, State: game.StatePlayed},
		{ID: "g5b", Week: 5, State: game.StatePlayed},
		{ID: "g4", Week: 4, State: game.StateCalculated},
	}
	stats := []weekstat.WeekStat{
		{QuarterbackID: "A", GameID: "g4", Score: 30},
		{QuarterbackID: "A", GameID: "g5a", Score: 10},
		{QuarterbackID: "B", GameID: "g5b", Score: 0},
	}

	f := lockedFormation("U", 5, "A", "B", "C")
	assert.InDelta(t, 10, FormationTotal(f, games, stats), 1e-9)

	breakdown := NewSnapshot(games, stats).Breakdown(f)
	require.Len(t, breakdown, 3)
	assert.Equal(t, Contribution{QuarterbackID: "A", GameID: "g5a", Score: 10, Scored: true, Counted: true}, breakdown[0])
	assert.Equal(t, Contribution{QuarterbackID: "B", GameID: "g5b", Score: 0, Scored: true, Counted: false}, breakdown[1])
	assert.Equal(t, Contribution{QuarterbackID: "C"}, breakdown[2])
}

func TestFormationTotal_FirstMatchingStatWins(t *testing.T) {
	games := []game.Game{{ID: "g1", Week: 1}}
	stats := []weekstat.WeekStat{
		{ID: "first", QuarterbackID: "A", GameID: "g1", Score: 7},
		{ID: "dup", QuarterbackID: "A", GameID: "g1", Score: 99},
	}

	f := lockedFormation("U", 1, "A", "B", "C")
	assert.InDelta(t, 7, FormationTotal(f, games, stats), 1e-9)
}

func TestFormationTotal_IgnoresStatsForUnknownGames(t *testing.T) {
	stats := []weekstat.WeekStat{{QuarterbackID: "A", GameID: "ghost", Score: 50}}
	f := lockedFormation("U", 1, "A", "B", "C")

	assert.Zero(t, FormationTotal(f, nil, stats))
}

func TestUserLeagueTotals(t *testing.T) {
	games := []game.Game{
		{ID: "g1", Week: 1},
		{ID: "g2", Week: 2},
	}
	stats := []weekstat.WeekStat{
		{QuarterbackID: "A", GameID: "g1", Score: 10},
		{QuarterbackID: "B", GameID: "g1", Score: 5},
		{QuarterbackID: "A", GameID: "g2", Score: 3},
		{QuarterbackID: "C", GameID: "g2", Score: 0},
	}
	users := []user.User{
		{ID: "u3"},
		{ID: "admin", IsAdmin: true},
		{ID: "u1"},
		{ID: "u2"},
	}
	formations := []formation.Formation{
		lockedFormation("u1", 1, "A", "B", "C"),
		lockedFormation("u1", 2, "A", "B", "C"),
		lockedFormation("u2", 1, "B", "C", "D"),
		lockedFormation("admin", 1, "A", "B", "C"),
		lockedFormation("u3", 1, "B", "X", "Y"),
	}

	got := NewSnapshot(games, stats).UserLeagueTotals(users, formations)
	require.Len(t, got, 3)

	assert.Equal(t, "u1", got[0].UserID)
	assert.InDelta(t, 18, got[0].Total, 1e-9)
	assert.Equal(t, 2, got[0].Formations)

	// u2 and u3 tie on 5; user id breaks the tie.
	assert.Equal(t, "u2", got[1].UserID)
	assert.Equal(t, "u3", got[2].UserID)
	assert.InDelta(t, 5, got[2].Total, 1e-9)
}

func TestUserLeagueTotals_UserWithoutFormationsIsZero(t *testing.T) {
	got := NewSnapshot(nil, nil).UserLeagueTotals([]user.User{{ID: "u1"}}, nil)

	require.Len(t, got, 1)
	assert.Zero(t, got[0].Total)
	assert.Zero(t, got[0].Formations)
}

func TestDenseRanks(t *testing.T) {
	assert.Equal(t, []int{1, 2, 2, 3}, DenseRanks([]float64{20, 10, 10, 5}))
	assert.Empty(t, DenseRanks(nil))
}
