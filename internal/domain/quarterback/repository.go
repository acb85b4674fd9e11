package quarterback

import "context"

// Repository exposes the qbs collection.
type Repository interface {
	List(ctx context.Context) ([]Quarterback, error)
	GetByIDs(ctx context.Context, ids []string) ([]Quarterback, error)
	Upsert(ctx context.Context, qb Quarterback) error
}
