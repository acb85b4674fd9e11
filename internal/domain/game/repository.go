package game

import "context"

// Repository exposes the games collection.
type Repository interface {
	List(ctx context.Context) ([]Game, error)
	ListByWeek(ctx context.Context, week int) ([]Game, error)
	GetByID(ctx context.Context, id string) (Game, bool, error)
	// Upsert refuses to replace a calculated game with an uncalculated one
	// and reports ErrGameCalculated instead. The check and the write are a
	// single step.
	Upsert(ctx context.Context, g Game) error
	// MarkCalculatedBatch flags every listed game calculated in one atomic
	// write. Unknown ids fail the whole batch.
	MarkCalculatedBatch(ctx context.Context, ids []string) error
	// HoldOpen runs fn with the stored game while no batch can calculate it.
	// It reports false without calling fn for an unknown id and returns
	// ErrGameCalculated without calling fn for a calculated game. fn must not
	// write to the games collection.
	HoldOpen(ctx context.Context, id string, fn func(Game) error) (bool, error)
}
