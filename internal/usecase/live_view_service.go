package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/fantaqb/internal/domain/changefeed"
	"github.com/riskibarqy/fantaqb/internal/domain/user"
	"github.com/riskibarqy/fantaqb/internal/platform/logging"
)

var (
	leagueTableCollections = []changefeed.Collection{
		changefeed.CollectionGames,
		changefeed.CollectionWeekStats,
		changefeed.CollectionUsers,
		changefeed.CollectionFormations,
	}
	quarterbackTableCollections = []changefeed.Collection{
		changefeed.CollectionWeekStats,
		changefeed.CollectionQuarterbacks,
	}
	formationCollections = []changefeed.Collection{
		changefeed.CollectionFormations,
		changefeed.CollectionGames,
		changefeed.CollectionWeekStats,
		changefeed.CollectionQuarterbacks,
	}
)

// Watch is a caller-owned live view. It re-derives the whole view once on
// start and again after every relevant change; changes that arrive while a
// derivation runs are folded into the next one.
type Watch struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Close stops the watch and waits for the running derivation to return. It
// must not be called from inside the watch callback.
func (w *Watch) Close() {
	if w == nil {
		return
	}
	w.once.Do(func() {
		w.cancel()
		<-w.done
	})
}

// Done is closed once the watch has stopped, either by Close or because the
// parent context ended.
func (w *Watch) Done() <-chan struct{} {
	return w.done
}

// LiveViewService turns RankingService reads into live views.
type LiveViewService struct {
	rankings *RankingService
	feed     changefeed.Feed
	metrics  EngineMetrics
	logger   *logging.Logger
}

func NewLiveViewService(rankings *RankingService, feed changefeed.Feed, metrics EngineMetrics, logger *logging.Logger) *LiveViewService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LiveViewService{
		rankings: rankings,
		feed:     feed,
		metrics:  metricsOrNop(metrics),
		logger:   logger.With("component", "live_view"),
	}
}

func (s *LiveViewService) WatchLeagueTable(ctx context.Context, fn func([]LeagueRow, error)) (*Watch, error) {
	return s.start(ctx, "league_table", leagueTableCollections, func(ctx context.Context) {
		fn(s.rankings.LeagueTable(ctx))
	})
}

func (s *LiveViewService) WatchQuarterbackTable(ctx context.Context, fn func([]QuarterbackRow, error)) (*Watch, error) {
	return s.start(ctx, "quarterback_table", quarterbackTableCollections, func(ctx context.Context) {
		fn(s.rankings.QuarterbackTable(ctx))
	})
}

// WatchFormation refuses up front when viewer may not see the formation yet.
func (s *LiveViewService) WatchFormation(ctx context.Context, viewer user.Principal, userID string, week int, fn func(FormationView, error)) (*Watch, error) {
	if userID == "" || week <= 0 {
		return nil, fmt.Errorf("%w: user_id and a positive week are required", ErrInvalidInput)
	}
	if _, err := s.rankings.authorizeView(ctx, viewer, userID, week); err != nil {
		return nil, err
	}
	return s.start(ctx, "formation", formationCollections, func(ctx context.Context) {
		fn(s.rankings.FormationView(ctx, viewer, userID, week))
	})
}

func (s *LiveViewService) start(ctx context.Context, view string, collections []changefeed.Collection, derive func(context.Context)) (*Watch, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	sub, err := s.feed.Subscribe(watchCtx, collections...)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe %s changes: %w", view, err)
	}

	w := &Watch{cancel: cancel, done: make(chan struct{})}
	s.metrics.AddLiveWatches(1)
	s.logger.InfoContext(ctx, "live view opened", "view", view)

	go func() {
		defer func() {
			sub.Close()
			s.metrics.AddLiveWatches(-1)
			s.logger.Info("live view closed", "view", view)
			close(w.done)
		}()

		derive(watchCtx)
		for {
			select {
			case <-watchCtx.Done():
				return
			case _, ok := <-sub.C:
				if !ok {
					return
				}
				if !drain(sub.C) {
					return
				}
				if watchCtx.Err() != nil {
					return
				}
				derive(watchCtx)
			}
		}
	}()
	return w, nil
}

// drain discards queued events. It reports false if the channel was closed.
func drain(ch <-chan changefeed.Event) bool {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return false
			}
		default:
			return true
		}
	}
}
