package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/riskibarqy/fantaqb/internal/domain/changefeed"
	"github.com/riskibarqy/fantaqb/internal/domain/formation"
)

type FormationRepository struct {
	mu    sync.RWMutex
	items map[string]formation.Formation
	feed  Publisher
}

func NewFormationRepository(feed Publisher) *FormationRepository {
	return &FormationRepository{items: make(map[string]formation.Formation), feed: publisherOrNop(feed)}
}

func (r *FormationRepository) Get(_ context.Context, userID string, week int) (formation.Formation, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.items[formationKey(userID, week)]
	return f, ok, nil
}

func (r *FormationRepository) ListByUser(_ context.Context, userID string) ([]formation.Formation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]formation.Formation, 0)
	for _, f := range r.items {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	sortFormations(out)
	return out, nil
}

func (r *FormationRepository) ListAll(_ context.Context) ([]formation.Formation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]formation.Formation, 0, len(r.items))
	for _, f := range r.items {
		out = append(out, f)
	}
	sortFormations(out)
	return out, nil
}

// Create is check-and-set under the write lock so concurrent submissions
// for one user and week resolve to a single winner.
func (r *FormationRepository) Create(_ context.Context, f formation.Formation) error {
	key := formationKey(f.UserID, f.Week)

	r.mu.Lock()
	if _, exists := r.items[key]; exists {
		r.mu.Unlock()
		return formation.ErrFormationLocked
	}
	r.items[key] = f
	r.mu.Unlock()

	r.publish(key)
	return nil
}

func (r *FormationRepository) Override(_ context.Context, f formation.Formation) error {
	key := formationKey(f.UserID, f.Week)

	r.mu.Lock()
	r.items[key] = f
	r.mu.Unlock()

	r.publish(key)
	return nil
}

func (r *FormationRepository) publish(key string) {
	r.feed.Publish(changefeed.Event{Collection: changefeed.CollectionFormations, DocumentID: key})
}

func formationKey(userID string, week int) string {
	return userID + "/formations/" + strconv.Itoa(week)
}

func sortFormations(items []formation.Formation) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].UserID != items[j].UserID {
			return items[i].UserID < items[j].UserID
		}
		return items[i].Week < items[j].Week
	})
}
