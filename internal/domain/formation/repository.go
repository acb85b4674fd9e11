package formation

import "context"

// Repository stores formations at users/{uid}/formations/{week}.
type Repository interface {
	Get(ctx context.Context, userID string, week int) (Formation, bool, error)
	ListByUser(ctx context.Context, userID string) ([]Formation, error)
	ListAll(ctx context.Context) ([]Formation, error)
	// Create writes a locked formation. It fails with ErrFormationLocked when
	// one already exists for the same user and week.
	Create(ctx context.Context, f Formation) error
	Override(ctx context.Context, f Formation) error
}
