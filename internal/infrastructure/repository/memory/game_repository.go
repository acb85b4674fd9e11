package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/fantaqb/internal/domain/changefeed"
	"github.com/riskibarqy/fantaqb/internal/domain/game"
)

type GameRepository struct {
	mu    sync.RWMutex
	order []string
	items map[string]game.Game
	feed  Publisher
}

func NewGameRepository(items []game.Game, feed Publisher) *GameRepository {
	r := &GameRepository{items: make(map[string]game.Game), feed: publisherOrNop(feed)}
	for _, g := range items {
		r.put(g)
	}
	return r
}

func (r *GameRepository) List(_ context.Context) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneGame(r.items[id]))
	}
	return out, nil
}

func (r *GameRepository) ListByWeek(_ context.Context, week int) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0)
	for _, id := range r.order {
		if g := r.items[id]; g.Week == week {
			out = append(out, cloneGame(g))
		}
	}
	return out, nil
}

func (r *GameRepository) GetByID(_ context.Context, id string) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.items[id]
	if !ok {
		return game.Game{}, false, nil
	}
	return cloneGame(g), true, nil
}

func (r *GameRepository) Upsert(_ context.Context, g game.Game) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("upsert game: %w", err)
	}

	r.mu.Lock()
	if prev, ok := r.items[g.ID]; ok && prev.Calculated() && !g.Calculated() {
		r.mu.Unlock()
		return fmt.Errorf("upsert game %s: %w", g.ID, game.ErrGameCalculated)
	}
	r.put(g)
	r.mu.Unlock()

	r.feed.Publish(changefeed.Event{Collection: changefeed.CollectionGames, DocumentID: g.ID})
	return nil
}

// MarkCalculatedBatch applies all transitions or none.
func (r *GameRepository) MarkCalculatedBatch(_ context.Context, ids []string) error {
	r.mu.Lock()
	next := make([]game.Game, 0, len(ids))
	for _, id := range ids {
		g, ok := r.items[id]
		if !ok {
			r.mu.Unlock()
			return fmt.Errorf("mark calculated: game %s not found", id)
		}
		calculated, err := g.MarkCalculated()
		if err != nil {
			r.mu.Unlock()
			return fmt.Errorf("mark calculated: %w", err)
		}
		next = append(next, calculated)
	}
	for _, g := range next {
		r.items[g.ID] = g
	}
	r.mu.Unlock()

	for _, g := range next {
		r.feed.Publish(changefeed.Event{Collection: changefeed.CollectionGames, DocumentID: g.ID})
	}
	return nil
}

// HoldOpen keeps the read lock while fn runs, so MarkCalculatedBatch waits.
func (r *GameRepository) HoldOpen(_ context.Context, id string, fn func(game.Game) error) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.items[id]
	if !ok {
		return false, nil
	}
	if g.Calculated() {
		return true, fmt.Errorf("game %s: %w", id, game.ErrGameCalculated)
	}
	return true, fn(cloneGame(g))
}

func (r *GameRepository) put(g game.Game) {
	if _, ok := r.items[g.ID]; !ok {
		r.order = append(r.order, g.ID)
	}
	r.items[g.ID] = cloneGame(g)
}

func cloneGame(g game.Game) game.Game {
	if g.Result != nil {
		result := *g.Result
		g.Result = &result
	}
	return g
}
