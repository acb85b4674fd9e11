package docimport

import (
	"context"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fantaqb/internal/domain/changefeed"
	"github.com/riskibarqy/fantaqb/internal/domain/game"
	"github.com/riskibarqy/fantaqb/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantaqb/internal/platform/logging"
)

var importedAt = time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

const legacyExport = `{
  "qbs": {
    "qb-a": {"nome": "Anna Arm", "squadra": "Hawks", "stato": "Titolare"},
    "qb-b": {"nome": "Ben Bomb", "squadra": "Owls", "stato": "Titolare"},
    "qb-c": {"nome": "Cal Cannon", "squadra": "Hawks", "stato": "Riserva"}
  },
  "games": {
    "g1": {"weekNumber": "1", "squadraCasa": "Hawks", "squadraOspite": "Owls", "partitaGiocata": true, "risultato": "21-14", "partitaCalcolata": true},
    "g2": {"weekNumber": 2, "squadraCasa": "Owls", "squadraOspite": "Hawks", "partitaGiocata": true, "risultato": "lost", "partitaCalcolata": false},
    "g3": {"weekNumber": 3, "squadraCasa": "Hawks", "squadraOspite": "Owls", "partitaGiocata": false, "risultato": null, "partitaCalcolata": false}
  },
  "users": {
    "u1": {
      "email": "u1@example.com", "username": "uno", "nomeTeam": "Team Uno", "isAdmin": false,
      "formations": {
        "1": {"weekNumber": 1, "qbIds": ["qb-a", "qb-b", "qb-c"], "locked": true},
        "2": {"weekNumber": "2", "qbIds": ["qb-a", "qb-b", "qb-c"], "locked": false},
        "3": {"qbIds": ["qb-a", "qb-a", "qb-b"], "locked": true}
      }
    },
    "boss": {"email": "boss@example.com", "isAdmin": true}
  },
  "weekstats": {
    "ws1": {"qb_id": "qb-a", "game_id": "g1", "punteggioQB": 18.5},
    "ws2": {"qb_id": "qb-b", "game_id": "g1", "punteggio": "7.25"},
    "ws3": {"qb_id": "qb-c", "game_id": "g1", "score": 0},
    "ws4": {"qb_id": "qb-c", "game_id": "g2", "points": "-3", "punteggioQB": null},
    "ws5": {"qb_id": "qb-a", "game_id": "g2"}
  }
}`

func TestDecode_LegacyExport(t *testing.T) {
	t.Parallel()

	bundle, err := Decode([]byte(legacyExport), importedAt)
	require.NoError(t, err)

	require.Len(t, bundle.Quarterbacks, 3)
	assert.False(t, bundle.Quarterbacks[2].IsStarter())

	require.Len(t, bundle.Games, 3)
	assert.Equal(t, 1, bundle.Games[0].Week)
	assert.Equal(t, game.StateCalculated, bundle.Games[0].State)
	require.NotNil(t, bundle.Games[0].Result)
	assert.Equal(t, "21 - 14", bundle.Games[0].ResultText())
	assert.Equal(t, game.StatePlayed, bundle.Games[1].State)
	assert.Nil(t, bundle.Games[1].Result, "unreadable result is dropped")
	assert.Equal(t, game.StateScheduled, bundle.Games[2].State)

	require.Len(t, bundle.Users, 2)
	assert.Equal(t, "boss", bundle.Users[0].ID)
	assert.True(t, bundle.Users[0].IsAdmin)
	assert.Equal(t, "Team Uno", bundle.Users[1].TeamName)

	require.Len(t, bundle.Formations, 1)
	assert.Equal(t, 1, bundle.Formations[0].Week)
	assert.True(t, bundle.Formations[0].Locked())
	assert.Equal(t, importedAt, bundle.Formations[0].UpdatedAt)

	scores := make(map[string]float64, len(bundle.WeekStats))
	for _, s := range bundle.WeekStats {
		scores[s.ID] = s.Score
	}
	assert.Equal(t, map[string]float64{"ws1": 18.5, "ws2": 7.25, "ws3": 0, "ws4": -3}, scores)

	assert.Equal(t, []string{
		`games/g2: unreadable result "lost"`,
		"users/u1/formations/2: not locked",
		"users/u1/formations/3: formation quarterbacks must be distinct: qb-a",
		"weekstats/ws5: no score",
	}, bundle.Skipped)
}

func TestMigrate_RejectsNonNumericScore(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte(`{"weekstats": {"ws1": {"qb_id": "qb", "game_id": "g", "score": "lots"}}}`), importedAt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weekstat ws1")
	assert.Contains(t, err.Error(), `"lots" is not a number`)
}

func TestMigrate_UnsupportedVersion(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte(`{"schemaVersion": 7}`), importedAt)
	require.Error(t, err)
	assert.True(t, crerr.Is(err, ErrUnsupportedVersion))
	assert.NotEmpty(t, crerr.GetAllHints(err))
}

func TestCanonical_CurrentVersionSkipsMigration(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(`{"schemaVersion": 1, "weekstats": {"ws1": {"qb_id": "qb", "game_id": "g", "score": 4}}}`))
	require.NoError(t, err)
	require.NoError(t, Migrate(&doc))

	bundle, err := doc.Canonical(importedAt)
	require.NoError(t, err)
	assert.Empty(t, bundle.WeekStats, "aliases are not read at the current version")
	assert.Equal(t, []string{"weekstats/ws1: no score"}, bundle.Skipped)
}

func TestParse_InvalidJSONCarriesHint(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`[1, 2`))
	require.Error(t, err)
	assert.NotEmpty(t, crerr.GetAllHints(err))
}

func TestImporter_WritesBundle(t *testing.T) {
	t.Parallel()

	bundle, err := Decode([]byte(legacyExport), importedAt)
	require.NoError(t, err)

	hub := changefeed.NewHub(changefeed.DefaultBuffer)
	qbs := memory.NewQuarterbackRepository(nil, hub)
	games := memory.NewGameRepository(nil, hub)
	users := memory.NewUserRepository(nil, hub)
	formations := memory.NewFormationRepository(hub)
	stats := memory.NewWeekStatRepository(nil, nil, hub)

	importer := NewImporter(qbs, games, users, formations, stats, logging.NewNop())
	ctx := context.Background()

	report, err := importer.Import(ctx, bundle)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Quarterbacks)
	assert.Equal(t, 3, report.Games)
	assert.Equal(t, 2, report.Users)
	assert.Equal(t, 1, report.Formations)
	assert.Equal(t, 4, report.WeekStats)
	assert.Len(t, report.Skipped, 4)

	_, err = importer.Import(ctx, bundle)
	require.NoError(t, err)

	storedStats, err := stats.List(ctx)
	require.NoError(t, err)
	assert.Len(t, storedStats, 4, "re-import upserts by id")

	f, exists, err := formations.Get(ctx, "u1", 1)
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, []string{"qb-a", "qb-b", "qb-c"}, f.IDs())

	g, exists, err := games.GetByID(ctx, "g1")
	require.NoError(t, err)
	require.True(t, exists)
	assert.True(t, g.Calculated())
}
