package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantaqb/internal/domain/game"
	qb "github.com/riskibarqy/fantaqb/internal/platform/querybuilder"
)

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) List(ctx context.Context) ([]game.Game, error) {
	query, args, err := qb.Select(gameColumns...).From(tableGames).OrderBy("seq").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list games query: %w", err)
	}
	return r.selectRows(ctx, "list games", query, args)
}

func (r *GameRepository) ListByWeek(ctx context.Context, week int) ([]game.Game, error) {
	query, args, err := qb.Select(gameColumns...).
		From(tableGames).
		Where(qb.Eq("week_number", week)).
		OrderBy("seq").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list games by week query: %w", err)
	}
	return r.selectRows(ctx, "list games by week", query, args)
}

func (r *GameRepository) GetByID(ctx context.Context, id string) (game.Game, bool, error) {
	query, args, err := qb.Select(gameColumns...).From(tableGames).Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build get game query: %w", err)
	}

	var row gameModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("get game id=%s: %w", id, err)
	}
	return gameFromRow(row), true, nil
}

// Upsert leaves a calculated row untouched unless the incoming game is
// calculated too, and reports that as game.ErrGameCalculated.
func (r *GameRepository) Upsert(ctx context.Context, item game.Game) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("upsert game: %w", err)
	}
	query, args, err := upsertGameQuery(item)
	if err != nil {
		return fmt.Errorf("build upsert game query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("upsert game id=%s: %w", item.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("upsert game id=%s rows affected: %w", item.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("upsert game id=%s: %w", item.ID, game.ErrGameCalculated)
	}
	return nil
}

func upsertGameQuery(item game.Game) (string, []any, error) {
	return qb.UpsertModelWhere(tableGames, gameModelOf(item),
		tableGames+".partita_calcolata = FALSE OR EXCLUDED.partita_calcolata = TRUE", "id")
}

// HoldOpen share-locks the row for the duration of fn. MarkCalculatedBatch
// updates the same row, so it blocks until fn returns.
func (r *GameRepository) HoldOpen(ctx context.Context, id string, fn func(game.Game) error) (bool, error) {
	query, args, err := holdGameQuery(id)
	if err != nil {
		return false, fmt.Errorf("build hold game query: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin hold game: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var row gameModel
	if err := tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("hold game id=%s: %w", id, err)
	}
	g := gameFromRow(row)
	if g.Calculated() {
		return true, fmt.Errorf("game %s: %w", id, game.ErrGameCalculated)
	}
	if err := fn(g); err != nil {
		return true, err
	}
	if err := tx.Commit(); err != nil {
		return true, fmt.Errorf("commit hold game: %w", err)
	}
	committed = true
	return true, nil
}

func holdGameQuery(id string) (string, []any, error) {
	query, args, err := qb.Select(gameColumns...).From(tableGames).Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return "", nil, err
	}
	return query + " FOR SHARE", args, nil
}

// MarkCalculatedBatch flags the games in one transaction. If any id is
// missing or not played the transaction is rolled back.
func (r *GameRepository) MarkCalculatedBatch(ctx context.Context, ids []string) (err error) {
	ids = distinct(ids)
	if len(ids) == 0 {
		return nil
	}

	query, args, err := qb.Update(tableGames).
		Set("partita_calcolata", true).
		SetRaw("updated_at", "NOW()").
		Where(qb.In("id", ids), qb.Eq("partita_giocata", true)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark calculated query: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mark calculated: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark calculated: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark calculated rows affected: %w", err)
	}
	if affected != int64(len(ids)) {
		return fmt.Errorf("mark calculated: %w: %d of %d games eligible", game.ErrGameNotPlayed, affected, len(ids))
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit mark calculated: %w", err)
	}
	return nil
}

func (r *GameRepository) selectRows(ctx context.Context, op, query string, args []any) ([]game.Game, error) {
	var rows []gameModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameFromRow(row))
	}
	return out, nil
}

func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
