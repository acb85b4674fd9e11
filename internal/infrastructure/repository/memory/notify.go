package memory

import "github.com/riskibarqy/fantaqb/internal/domain/changefeed"

// Publisher receives a change event after every successful write.
type Publisher interface {
	Publish(ev changefeed.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(changefeed.Event) {}

func publisherOrNop(p Publisher) Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}
