package user

import "context"

type Repository interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id string) (User, bool, error)
	Upsert(ctx context.Context, u User) error
}
