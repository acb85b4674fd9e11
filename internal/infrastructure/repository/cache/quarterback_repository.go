package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/fantaqb/internal/domain/changefeed"
	"github.com/riskibarqy/fantaqb/internal/domain/quarterback"
	basecache "github.com/riskibarqy/fantaqb/internal/platform/cache"
	"github.com/riskibarqy/fantaqb/internal/platform/logging"
)

const quarterbackListKey = "qb:list"

type quarterbackIndex struct {
	items []quarterback.Quarterback
	byID  map[string]quarterback.Quarterback
}

// QuarterbackRepository keeps the whole qbs collection in memory. The pool is
// small and read on every ranking derivation; any qbs change drops the cache.
type QuarterbackRepository struct {
	next  quarterback.Repository
	cache *basecache.Store[quarterbackIndex]
}

// NewQuarterbackRepository caches next. A zero ttl relies on change events
// alone for invalidation.
func NewQuarterbackRepository(next quarterback.Repository, ttl time.Duration) *QuarterbackRepository {
	return &QuarterbackRepository{next: next, cache: basecache.NewStore[quarterbackIndex](ttl)}
}

func (r *QuarterbackRepository) List(ctx context.Context) ([]quarterback.Quarterback, error) {
	idx, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return append([]quarterback.Quarterback(nil), idx.items...), nil
}

func (r *QuarterbackRepository) GetByIDs(ctx context.Context, ids []string) ([]quarterback.Quarterback, error) {
	idx, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]quarterback.Quarterback, 0, len(ids))
	for _, id := range ids {
		if qb, ok := idx.byID[id]; ok {
			out = append(out, qb)
		}
	}
	return out, nil
}

func (r *QuarterbackRepository) Upsert(ctx context.Context, qb quarterback.Quarterback) error {
	if err := r.next.Upsert(ctx, qb); err != nil {
		return err
	}
	r.Invalidate()
	return nil
}

func (r *QuarterbackRepository) Invalidate() {
	r.cache.Purge()
}

// RunInvalidation drops the cache on every qbs change until ctx ends.
func (r *QuarterbackRepository) RunInvalidation(ctx context.Context, feed changefeed.Feed, logger *logging.Logger) error {
	sub, err := feed.Subscribe(ctx, changefeed.CollectionQuarterbacks)
	if err != nil {
		return fmt.Errorf("subscribe quarterback changes: %w", err)
	}
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-sub.C:
			if !ok {
				return ctx.Err()
			}
			r.Invalidate()
			logger.DebugContext(ctx, "quarterback cache invalidated", "qb_id", ev.DocumentID)
		}
	}
}

func (r *QuarterbackRepository) load(ctx context.Context) (quarterbackIndex, error) {
	return r.cache.GetOrLoad(ctx, quarterbackListKey, func(ctx context.Context) (quarterbackIndex, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return quarterbackIndex{}, err
		}
		idx := quarterbackIndex{
			items: append([]quarterback.Quarterback(nil), items...),
			byID:  make(map[string]quarterback.Quarterback, len(items)),
		}
		for _, qb := range items {
			idx.byID[qb.ID] = qb
		}
		return idx, nil
	})
}
