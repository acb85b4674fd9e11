package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/fantaqb/internal/domain/changefeed"
	"github.com/riskibarqy/fantaqb/internal/domain/user"
)

type UserRepository struct {
	mu    sync.RWMutex
	order []string
	items map[string]user.User
	feed  Publisher
}

func NewUserRepository(items []user.User, feed Publisher) *UserRepository {
	r := &UserRepository{items: make(map[string]user.User), feed: publisherOrNop(feed)}
	for _, u := range items {
		r.put(u)
	}
	return r
}

func (r *UserRepository) List(_ context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out, nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	return u, ok, nil
}

func (r *UserRepository) Upsert(_ context.Context, u user.User) error {
	if err := u.Validate(); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}

	r.mu.Lock()
	r.put(u)
	r.mu.Unlock()

	r.feed.Publish(changefeed.Event{Collection: changefeed.CollectionUsers, DocumentID: u.ID})
	return nil
}

func (r *UserRepository) put(u user.User) {
	if _, ok := r.items[u.ID]; !ok {
		r.order = append(r.order, u.ID)
	}
	r.items[u.ID] = u
}
