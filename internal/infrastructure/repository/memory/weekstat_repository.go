package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/fantaqb/internal/domain/changefeed"
	"github.com/riskibarqy/fantaqb/internal/domain/weekstat"
	"github.com/riskibarqy/fantaqb/internal/platform/id"
)

type WeekStatRepository struct {
	mu    sync.RWMutex
	order []string
	items map[string]weekstat.WeekStat
	ids   id.Generator
	feed  Publisher
}

func NewWeekStatRepository(items []weekstat.WeekStat, ids id.Generator, feed Publisher) *WeekStatRepository {
	if ids == nil {
		ids = id.NewRandomGenerator("ws")
	}
	r := &WeekStatRepository{items: make(map[string]weekstat.WeekStat), ids: ids, feed: publisherOrNop(feed)}
	for _, s := range items {
		if s.ID == "" {
			s.ID = fmt.Sprintf("seed-%d", len(r.order)+1)
		}
		r.put(s)
	}
	return r
}

func (r *WeekStatRepository) List(_ context.Context) ([]weekstat.WeekStat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]weekstat.WeekStat, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.items[key])
	}
	return out, nil
}

func (r *WeekStatRepository) ListByGameIDs(_ context.Context, gameIDs []string) ([]weekstat.WeekStat, error) {
	wanted := make(map[string]struct{}, len(gameIDs))
	for _, gameID := range gameIDs {
		wanted[gameID] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]weekstat.WeekStat, 0)
	for _, key := range r.order {
		s := r.items[key]
		if _, ok := wanted[s.GameID]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// Upsert assigns an id to new records.
func (r *WeekStatRepository) Upsert(_ context.Context, s weekstat.WeekStat) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("upsert weekstat: %w", err)
	}
	if s.ID == "" {
		next, err := r.ids.NewID()
		if err != nil {
			return fmt.Errorf("upsert weekstat: %w", err)
		}
		s.ID = next
	}

	r.mu.Lock()
	r.put(s)
	r.mu.Unlock()

	r.feed.Publish(changefeed.Event{Collection: changefeed.CollectionWeekStats, DocumentID: s.ID})
	return nil
}

func (r *WeekStatRepository) put(s weekstat.WeekStat) {
	if _, ok := r.items[s.ID]; !ok {
		r.order = append(r.order, s.ID)
	}
	r.items[s.ID] = s
}
