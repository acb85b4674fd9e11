package weekstat

import "context"

// Repository exposes the weekstats collection. Listing order is stable
// insertion order so duplicate (quarterback, game) records resolve to the
// first one written.
type Repository interface {
	List(ctx context.Context) ([]WeekStat, error)
	ListByGameIDs(ctx context.Context, gameIDs []string) ([]WeekStat, error)
	Upsert(ctx context.Context, stat WeekStat) error
}
