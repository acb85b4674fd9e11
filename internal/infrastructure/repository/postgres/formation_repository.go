package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantaqb/internal/domain/formation"
	qb "github.com/riskibarqy/fantaqb/internal/platform/querybuilder"
)

type FormationRepository struct {
	db *sqlx.DB
}

func NewFormationRepository(db *sqlx.DB) *FormationRepository {
	return &FormationRepository{db: db}
}

func (r *FormationRepository) Get(ctx context.Context, userID string, week int) (formation.Formation, bool, error) {
	query, args, err := qb.Select(formationColumns...).
		From(tableFormations).
		Where(qb.Eq("user_id", userID), qb.Eq("week_number", week)).
		ToSQL()
	if err != nil {
		return formation.Formation{}, false, fmt.Errorf("build get formation query: %w", err)
	}

	var row formationModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return formation.Formation{}, false, nil
		}
		return formation.Formation{}, false, fmt.Errorf("get formation user=%s week=%d: %w", userID, week, err)
	}
	return formationFromRow(row), true, nil
}

func (r *FormationRepository) ListByUser(ctx context.Context, userID string) ([]formation.Formation, error) {
	query, args, err := qb.Select(formationColumns...).
		From(tableFormations).
		Where(qb.Eq("user_id", userID)).
		OrderBy("week_number").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list formations by user query: %w", err)
	}
	return r.selectRows(ctx, "list formations by user", query, args)
}

func (r *FormationRepository) ListAll(ctx context.Context) ([]formation.Formation, error) {
	query, args, err := qb.Select(formationColumns...).
		From(tableFormations).
		OrderBy("user_id", "week_number").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list formations query: %w", err)
	}
	return r.selectRows(ctx, "list formations", query, args)
}

// Create inserts the formation locked in a single statement. A conflicting
// row means the user already submitted for that week.
func (r *FormationRepository) Create(ctx context.Context, item formation.Formation) error {
	query, args, err := qb.InsertModel(tableFormations, formationModelOf(item), "ON CONFLICT (user_id, week_number) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build create formation query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return formation.ErrFormationLocked
		}
		return fmt.Errorf("create formation user=%s week=%d: %w", item.UserID, item.Week, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create formation rows affected: %w", err)
	}
	if affected == 0 {
		return formation.ErrFormationLocked
	}
	return nil
}

func (r *FormationRepository) Override(ctx context.Context, item formation.Formation) error {
	query, args, err := qb.UpsertModel(tableFormations, formationModelOf(item), "user_id", "week_number")
	if err != nil {
		return fmt.Errorf("build override formation query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("override formation user=%s week=%d: %w", item.UserID, item.Week, err)
	}
	return nil
}

func (r *FormationRepository) selectRows(ctx context.Context, op, query string, args []any) ([]formation.Formation, error) {
	var rows []formationModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := make([]formation.Formation, 0, len(rows))
	for _, row := range rows {
		out = append(out, formationFromRow(row))
	}
	return out, nil
}
