package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantaqb/internal/domain/quarterback"
	qb "github.com/riskibarqy/fantaqb/internal/platform/querybuilder"
)

type QuarterbackRepository struct {
	db *sqlx.DB
}

func NewQuarterbackRepository(db *sqlx.DB) *QuarterbackRepository {
	return &QuarterbackRepository{db: db}
}

func (r *QuarterbackRepository) List(ctx context.Context) ([]quarterback.Quarterback, error) {
	query, args, err := qb.Select(quarterbackColumns...).From(tableQuarterbacks).OrderBy("seq").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list quarterbacks query: %w", err)
	}
	return r.selectRows(ctx, "list quarterbacks", query, args)
}

func (r *QuarterbackRepository) GetByIDs(ctx context.Context, ids []string) ([]quarterback.Quarterback, error) {
	if len(ids) == 0 {
		return []quarterback.Quarterback{}, nil
	}
	query, args, err := qb.Select(quarterbackColumns...).
		From(tableQuarterbacks).
		Where(qb.In("id", ids)).
		OrderBy("seq").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get quarterbacks query: %w", err)
	}
	return r.selectRows(ctx, "get quarterbacks", query, args)
}

func (r *QuarterbackRepository) Upsert(ctx context.Context, item quarterback.Quarterback) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("upsert quarterback: %w", err)
	}
	row := quarterbackModel{ID: item.ID, Name: item.Name, Team: item.Team, Status: item.Status}
	query, args, err := qb.UpsertModel(tableQuarterbacks, row, "id")
	if err != nil {
		return fmt.Errorf("build upsert quarterback query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert quarterback id=%s: %w", item.ID, err)
	}
	return nil
}

func (r *QuarterbackRepository) selectRows(ctx context.Context, op, query string, args []any) ([]quarterback.Quarterback, error) {
	var rows []quarterbackModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := make([]quarterback.Quarterback, 0, len(rows))
	for _, row := range rows {
		out = append(out, quarterbackFromRow(row))
	}
	return out, nil
}
