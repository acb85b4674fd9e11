package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/lib/pq"

	"github.com/riskibarqy/fantaqb/internal/domain/changefeed"
	"github.com/riskibarqy/fantaqb/internal/platform/logging"
)

// ChangeChannel is the NOTIFY channel written by the table triggers.
const ChangeChannel = "fantaqb_changes"

const listenerPingInterval = 90 * time.Second

type Publisher interface {
	Publish(ev changefeed.Event)
}

type changePayload struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
}

// ChangeListener forwards trigger notifications to a Publisher. After a
// reconnect it emits one event per collection since notifications sent while
// disconnected are lost.
type ChangeListener struct {
	listener *pq.Listener
	out      Publisher
	logger   *logging.Logger
}

func NewChangeListener(dsn string, out Publisher, logger *logging.Logger) *ChangeListener {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.With("component", "change_listener")

	callback := func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventDisconnected:
			logger.Warn("change listener disconnected", "error", err)
		case pq.ListenerEventConnectionAttemptFailed:
			logger.Warn("change listener reconnect failed", "error", err)
		case pq.ListenerEventReconnected:
			logger.Info("change listener reconnected")
		}
	}

	return &ChangeListener{
		listener: pq.NewListener(dsn, time.Second, time.Minute, callback),
		out:      out,
		logger:   logger,
	}
}

// Run listens until ctx ends.
func (l *ChangeListener) Run(ctx context.Context) error {
	if err := l.listener.Listen(ChangeChannel); err != nil {
		return fmt.Errorf("listen %s: %w", ChangeChannel, err)
	}
	l.logger.InfoContext(ctx, "change listener started", "channel", ChangeChannel)

	ticker := time.NewTicker(listenerPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-l.listener.Notify:
			if n == nil {
				l.resync()
				continue
			}
			l.forward(n.Extra)
		case <-ticker.C:
			if err := l.listener.Ping(); err != nil {
				l.logger.WarnContext(ctx, "change listener ping failed", "error", err)
			}
		}
	}
}

func (l *ChangeListener) Close() error {
	return l.listener.Close()
}

func (l *ChangeListener) forward(raw string) {
	ev, err := decodeChange(raw)
	if err != nil {
		l.logger.Warn("drop change notification", "payload", raw, "error", err)
		return
	}
	l.out.Publish(ev)
}

func (l *ChangeListener) resync() {
	for _, c := range changefeed.AllCollections {
		l.out.Publish(changefeed.Event{Collection: c})
	}
}

func decodeChange(raw string) (changefeed.Event, error) {
	var payload changePayload
	if err := sonic.UnmarshalString(raw, &payload); err != nil {
		return changefeed.Event{}, fmt.Errorf("decode change payload: %w", err)
	}
	collection, err := changefeed.ParseCollection(payload.Collection)
	if err != nil {
		return changefeed.Event{}, err
	}
	return changefeed.Event{Collection: collection, DocumentID: payload.ID}, nil
}
