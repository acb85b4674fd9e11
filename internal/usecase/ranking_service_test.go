package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fantaqb/internal/domain/user"

	"github.com/riskibarqy/fantaqb/internal/domain/weekstat"
)

func seedTiedWeek(t *testing.T, l *testLeague, goff float64) {
	t.Helper()
	ctx := context.Background()

	_, err := l.formationSvc.Submit(ctx, demoPrincipal, SubmitFormationInput{Week: 1, QuarterbackIDs: []string{"qb-mahomes", "qb-allen", "qb-burrow"}})
	require.NoError(t, err)
	_, err = l.formationSvc.Submit(ctx, rivalPrincipal, SubmitFormationInput{Week: 1, QuarterbackIDs: []string{"qb-hurts", "qb-jackson", "qb-goff"}})
	require.NoError(t, err)

	l.playWeek1(t, map[string]float64{
		"qb-mahomes": 20,
		"qb-allen":   15.5,
		"qb-burrow":  0,
		"qb-hurts":   10,
		"qb-jackson": -2,
		"qb-goff":    goff,
	})
}

func TestRankingService_LeagueTableSharesRankOnTie(t *testing.T) {
	t.Parallel()

	l := newLeague(t)
	seedTiedWeek(t, l, 25.5)

	rows, err := l.rankingSvc.LeagueTable(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2, "admin must not appear")

	assert.Equal(t, LeagueRow{Rank: 1, UserID: "demo-user", Username: "demo", TeamName: "Demo Gunslingers", Total: 35.5, Formations: 1}, rows[0])
	assert.Equal(t, LeagueRow{Rank: 1, UserID: "rival", Username: "rival", TeamName: "Rival Arms", Total: 35.5, Formations: 1}, rows[1])
}

func TestRankingService_LeagueTableOrdersByTotal(t *testing.T) {
	t.Parallel()

	l := newLeague(t)
	seedTiedWeek(t, l, 30)

	rows, err := l.rankingSvc.LeagueTable(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "rival", rows[0].UserID)
	assert.Equal(t, 1, rows[0].Rank)
	assert.InDelta(t, 40, rows[0].Total, 1e-9)
	assert.Equal(t, "demo-user", rows[1].UserID)
	assert.Equal(t, 2, rows[1].Rank)
}

func TestRankingService_LeagueTableIncludesUsersWithoutFormations(t *testing.T) {
	t.Parallel()

	l := newLeague(t)
	rows, err := l.rankingSvc.LeagueTable(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, 1, row.Rank)
		assert.Zero(t, row.Total)
		assert.Zero(t, row.Formations)
	}
}

func TestRankingService_QuarterbackTable(t *testing.T) {
	t.Parallel()

	l := newLeague(t)
	seedTiedWeek(t, l, 25.5)
	require.NoError(t, l.stats.Upsert(context.Background(), weekstat.WeekStat{QuarterbackID: "qb-retired", GameID: "w1-kc-buf", Score: 3}))

	rows, err := l.rankingSvc.QuarterbackTable(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 7)

	ids := make([]string, 0, len(rows))
	ranks := make([]int, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.QuarterbackID)
		ranks = append(ranks, row.Rank)
	}
	assert.Equal(t, []string{"qb-goff", "qb-mahomes", "qb-allen", "qb-hurts", "qb-retired", "qb-burrow", "qb-jackson"}, ids)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 6}, ranks)

	assert.Equal(t, "Jared Goff", rows[0].Name)
	assert.Equal(t, "Lions", rows[0].Team)
	assert.Equal(t, 1, rows[0].GamesPlayed)
	assert.InDelta(t, 25.5, rows[0].PointsPerGame, 1e-9)

	assert.Empty(t, rows[4].Name, "unknown quarterback keeps empty metadata")
	assert.Zero(t, rows[6].TotalPoints, "negative scores do not count")
}

func TestRankingService_FormationView(t *testing.T) {
	t.Parallel()

	l := newLeague(t)
	seedTiedWeek(t, l, 25.5)
	ctx := context.Background()

	view, err := l.rankingSvc.FormationView(ctx, demoPrincipal, "demo-user", 1)
	require.NoError(t, err)
	require.True(t, view.Exists)
	assert.False(t, view.Final)
	assert.InDelta(t, 35.5, view.Total, 1e-9)
	require.Len(t, view.Players, 3)
	assert.Equal(t, "Patrick Mahomes", view.Players[0].Name)
	assert.True(t, view.Players[0].Counted)
	assert.Equal(t, "qb-burrow", view.Players[2].QuarterbackID)
	assert.True(t, view.Players[2].Scored)
	assert.False(t, view.Players[2].Counted)

	empty, err := l.rankingSvc.FormationView(ctx, demoPrincipal, "demo-user", 2)
	require.NoError(t, err)
	assert.False(t, empty.Exists)
	assert.Zero(t, empty.Total)

	_, err = l.rankingSvc.FormationView(ctx, demoPrincipal, "", 1)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestRankingService_FormationViewHidesPeersUntilWeekCalculated(t *testing.T) {
	t.Parallel()

	l := newLeague(t)
	seedTiedWeek(t, l, 25.5)
	ctx := context.Background()

	_, err := l.rankingSvc.FormationView(ctx, rivalPrincipal, "demo-user", 1)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = l.rankingSvc.FormationView(ctx, user.Principal{}, "demo-user", 1)
	require.ErrorIs(t, err, ErrUnauthorized)

	asAdmin, err := l.rankingSvc.FormationView(ctx, adminPrincipal, "demo-user", 1)
	require.NoError(t, err)
	assert.True(t, asAdmin.Exists)
	assert.False(t, asAdmin.Final)

	_, err = l.weekSvc.CalculateWeek(ctx, adminPrincipal, 1)
	require.NoError(t, err)

	asRival, err := l.rankingSvc.FormationView(ctx, rivalPrincipal, "demo-user", 1)
	require.NoError(t, err)
	assert.True(t, asRival.Final)
	assert.InDelta(t, 35.5, asRival.Total, 1e-9)
}
