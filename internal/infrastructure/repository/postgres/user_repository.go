package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantaqb/internal/domain/user"
	qb "github.com/riskibarqy/fantaqb/internal/platform/querybuilder"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	query, args, err := qb.Select(userColumns...).From(tableUsers).OrderBy("seq").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list users query: %w", err)
	}

	var rows []userModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, userFromRow(row))
	}
	return out, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (user.User, bool, error) {
	query, args, err := qb.Select(userColumns...).From(tableUsers).Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return user.User{}, false, fmt.Errorf("build get user query: %w", err)
	}

	var row userModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("get user id=%s: %w", id, err)
	}
	return userFromRow(row), true, nil
}

func (r *UserRepository) Upsert(ctx context.Context, item user.User) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	row := userModel{ID: item.ID, Email: item.Email, Username: item.Username, TeamName: item.TeamName, IsAdmin: item.IsAdmin}
	query, args, err := qb.UpsertModel(tableUsers, row, "id")
	if err != nil {
		return fmt.Errorf("build upsert user query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert user id=%s: %w", item.ID, err)
	}
	return nil
}
