package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/fantaqb/internal/domain/changefeed"
	"github.com/riskibarqy/fantaqb/internal/domain/quarterback"
)

type QuarterbackRepository struct {
	mu    sync.RWMutex
	order []string
	items map[string]quarterback.Quarterback
	feed  Publisher
}

func NewQuarterbackRepository(items []quarterback.Quarterback, feed Publisher) *QuarterbackRepository {
	r := &QuarterbackRepository{items: make(map[string]quarterback.Quarterback), feed: publisherOrNop(feed)}
	for _, qb := range items {
		r.put(qb)
	}
	return r
}

func (r *QuarterbackRepository) List(_ context.Context) ([]quarterback.Quarterback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]quarterback.Quarterback, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out, nil
}

func (r *QuarterbackRepository) GetByIDs(_ context.Context, ids []string) ([]quarterback.Quarterback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]quarterback.Quarterback, 0, len(ids))
	for _, id := range ids {
		qb, ok := r.items[id]
		if !ok {
			continue
		}
		out = append(out, qb)
	}
	return out, nil
}

func (r *QuarterbackRepository) Upsert(_ context.Context, qb quarterback.Quarterback) error {
	if err := qb.Validate(); err != nil {
		return fmt.Errorf("upsert quarterback: %w", err)
	}

	r.mu.Lock()
	r.put(qb)
	r.mu.Unlock()

	r.feed.Publish(changefeed.Event{Collection: changefeed.CollectionQuarterbacks, DocumentID: qb.ID})
	return nil
}

func (r *QuarterbackRepository) put(qb quarterback.Quarterback) {
	if _, ok := r.items[qb.ID]; !ok {
		r.order = append(r.order, qb.ID)
	}
	r.items[qb.ID] = qb
}
