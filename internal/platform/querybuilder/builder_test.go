package querybuilder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "week", "home_team").
		From("games").
		Where(Eq("week", 3), Neq("state", "scheduled")).
		OrderBy("week", "id").
		Limit(10).
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, week, home_team FROM games WHERE week = $1 AND state <> $2 ORDER BY week, id LIMIT 10", query)
	assert.Equal(t, []any{3, "scheduled"}, args)
}

func TestSelectBuilder_InContinuesNumbering(t *testing.T) {
	query, args, err := Select("id").
		From("weekstats").
		Where(Eq("qb_id", "qb-1"), In("game_id", []string{"g1", "g2"})).
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM weekstats WHERE qb_id = $1 AND game_id IN ($2, $3)", query)
	assert.Equal(t, []any{"qb-1", "g1", "g2"}, args)
}

func TestSelectBuilder_EmptyInMatchesNothing(t *testing.T) {
	query, args, err := Select("id").From("games").Where(In[string]("id", nil)).ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM games WHERE FALSE", query)
	assert.Empty(t, args)
}

func TestSelectBuilder_RequiresTable(t *testing.T) {
	_, _, err := Select("id").ToSQL()
	assert.Error(t, err)
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("games").
		Set("state", "calculated").
		SetRaw("updated_at", "NOW()").
		Where(In("id", []string{"g1", "g2"}), Neq("state", "calculated")).
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "UPDATE games SET state = $1, updated_at = NOW() WHERE id IN ($2, $3) AND state <> $4", query)
	assert.Equal(t, []any{"calculated", "g1", "g2", "calculated"}, args)
}

func TestUpdateBuilder_RefusesUnboundedUpdate(t *testing.T) {
	_, _, err := Update("games").Set("state", "calculated").ToSQL()
	assert.Error(t, err)
}

type formationRow struct {
	UserID    string    `db:"user_id"`
	Week      int       `db:"week_number"`
	Locked    bool      `db:"locked"`
	UpdatedAt time.Time `db:"updated_at"`
	ignored   string
	Skipped   string `db:"-"`
}

func TestInsertModel(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	query, args, err := InsertModel("formations", formationRow{UserID: "u1", Week: 2, Locked: true, UpdatedAt: now}, "ON CONFLICT DO NOTHING")
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO formations (user_id, week_number, locked, updated_at) VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING", query)
	assert.Equal(t, []any{"u1", 2, true, now}, args)
}

func TestUpsertModel(t *testing.T) {
	query, _, err := UpsertModel("formations", &formationRow{UserID: "u1", Week: 2}, "user_id", "week_number")
	require.NoError(t, err)

	assert.Equal(t,
		"INSERT INTO formations (user_id, week_number, locked, updated_at) VALUES ($1, $2, $3, $4) "+
			"ON CONFLICT (user_id, week_number) DO UPDATE SET locked = EXCLUDED.locked, updated_at = EXCLUDED.updated_at",
		query)
}

func TestUpsertModelWhere_GuardsConflictingRow(t *testing.T) {
	query, args, err := UpsertModelWhere("formations", formationRow{UserID: "u1", Week: 2}, "formations.locked = FALSE", "user_id", "week_number")
	require.NoError(t, err)

	assert.Equal(t,
		"INSERT INTO formations (user_id, week_number, locked, updated_at) VALUES ($1, $2, $3, $4) "+
			"ON CONFLICT (user_id, week_number) DO UPDATE SET locked = EXCLUDED.locked, updated_at = EXCLUDED.updated_at "+
			"WHERE formations.locked = FALSE",
		query)
	assert.Len(t, args, 4)

	unguarded, _, err := UpsertModelWhere("formations", formationRow{UserID: "u1", Week: 2}, "  ", "user_id", "week_number")
	require.NoError(t, err)
	assert.NotContains(t, unguarded, "WHERE")
}

func TestInsertModel_RejectsNonStruct(t *testing.T) {
	_, _, err := InsertModel("games", 42, "")
	assert.Error(t, err)

	var row *formationRow
	_, _, err = InsertModel("games", row, "")
	assert.Error(t, err)
}
