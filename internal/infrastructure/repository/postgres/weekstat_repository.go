package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantaqb/internal/domain/weekstat"
	"github.com/riskibarqy/fantaqb/internal/platform/id"
	qb "github.com/riskibarqy/fantaqb/internal/platform/querybuilder"
)

type WeekStatRepository struct {
	db  *sqlx.DB
	ids id.Generator
}

func NewWeekStatRepository(db *sqlx.DB, ids id.Generator) *WeekStatRepository {
	if ids == nil {
		ids = id.NewRandomGenerator("ws")
	}
	return &WeekStatRepository{db: db, ids: ids}
}

func (r *WeekStatRepository) List(ctx context.Context) ([]weekstat.WeekStat, error) {
	query, args, err := qb.Select(weekStatColumns...).From(tableWeekStats).OrderBy("seq").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list weekstats query: %w", err)
	}
	return r.selectRows(ctx, "list weekstats", query, args)
}

func (r *WeekStatRepository) ListByGameIDs(ctx context.Context, gameIDs []string) ([]weekstat.WeekStat, error) {
	if len(gameIDs) == 0 {
		return []weekstat.WeekStat{}, nil
	}
	query, args, err := qb.Select(weekStatColumns...).
		From(tableWeekStats).
		Where(qb.In("game_id", gameIDs)).
		OrderBy("seq").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list weekstats by games query: %w", err)
	}
	return r.selectRows(ctx, "list weekstats by games", query, args)
}

func (r *WeekStatRepository) Upsert(ctx context.Context, item weekstat.WeekStat) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("upsert weekstat: %w", err)
	}
	if item.ID == "" {
		next, err := r.ids.NewID()
		if err != nil {
			return fmt.Errorf("upsert weekstat: %w", err)
		}
		item.ID = next
	}

	row := weekStatModel{ID: item.ID, QuarterbackID: item.QuarterbackID, GameID: item.GameID, Score: item.Score}
	query, args, err := qb.UpsertModel(tableWeekStats, row, "id")
	if err != nil {
		return fmt.Errorf("build upsert weekstat query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert weekstat id=%s: %w", item.ID, err)
	}
	return nil
}

func (r *WeekStatRepository) selectRows(ctx context.Context, op, query string, args []any) ([]weekstat.WeekStat, error) {
	var rows []weekStatModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := make([]weekstat.WeekStat, 0, len(rows))
	for _, row := range rows {
		out = append(out, weekStatFromRow(row))
	}
	return out, nil
}
