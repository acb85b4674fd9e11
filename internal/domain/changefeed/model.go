package changefeed

import (
	"context"
	"fmt"
)

// Collection names a persisted collection. The values are part of the
// storage contract.
type Collection string

const (
	CollectionQuarterbacks Collection = "qbs"
	CollectionGames        Collection = "games"
	CollectionUsers        Collection = "users"
	CollectionFormations   Collection = "formations"
	CollectionWeekStats    Collection = "weekstats"
)

var AllCollections = []Collection{
	CollectionQuarterbacks,
	CollectionGames,
	CollectionUsers,
	CollectionFormations,
	CollectionWeekStats,
}

func ParseCollection(raw string) (Collection, error) {
	for _, c := range AllCollections {
		if string(c) == raw {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown collection: %q", raw)
}

// Event signals that a document changed. It carries no payload; consumers
// re-read what they need.
type Event struct {
	Collection Collection
	DocumentID string
}

// Feed hands out change subscriptions. With no collections the subscription
// receives every event.
type Feed interface {
	Subscribe(ctx context.Context, collections ...Collection) (*Subscription, error)
}
