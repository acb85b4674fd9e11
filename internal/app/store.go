package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sourcegraph/conc"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/fantaqb/internal/config"
	"github.com/riskibarqy/fantaqb/internal/domain/changefeed"
	"github.com/riskibarqy/fantaqb/internal/domain/formation"
	"github.com/riskibarqy/fantaqb/internal/domain/game"
	"github.com/riskibarqy/fantaqb/internal/domain/quarterback"
	"github.com/riskibarqy/fantaqb/internal/domain/user"
	"github.com/riskibarqy/fantaqb/internal/domain/weekstat"
	"github.com/riskibarqy/fantaqb/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/fantaqb/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantaqb/internal/infrastructure/repository/postgres"
	idgen "github.com/riskibarqy/fantaqb/internal/platform/id"
	"github.com/riskibarqy/fantaqb/internal/platform/logging"
)

const dbPingTimeout = 5 * time.Second

type backgroundTask struct {
	name string
	run  func(ctx context.Context) error
}

// Store holds the repositories of the configured driver and the change feed
// they publish into. Background tasks run between Start and Close.
type Store struct {
	Quarterbacks *cache.QuarterbackRepository
	Games        game.Repository
	Users        user.Repository
	Formations   formation.Repository
	WeekStats    weekstat.Repository
	Feed         *changefeed.Hub

	logger  *logging.Logger
	tasks   []backgroundTask
	closers []func() error
	wg      conc.WaitGroup
}

func OpenStore(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Default()
	}

	hub := changefeed.NewHub(cfg.LiveViewBuffer)
	ids := idgen.NewRandomGenerator("ws")

	switch cfg.StoreDriver {
	case config.StorePostgres:
		return openPostgresStore(ctx, cfg, hub, ids, logger)
	case config.StoreMemory, "":
		s := &Store{
			Games:      memory.NewGameRepository(memory.SeedGames(), hub),
			Users:      memory.NewUserRepository(memory.SeedUsers(), hub),
			Formations: memory.NewFormationRepository(hub),
			WeekStats:  memory.NewWeekStatRepository(nil, ids, hub),
			Feed:       hub,
			logger:     logger,
		}
		s.wireQuarterbacks(memory.NewQuarterbackRepository(memory.SeedQuarterbacks(), hub), cfg.CacheTTL)
		logger.Info("store opened", "driver", config.StoreMemory)
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

func openPostgresStore(ctx context.Context, cfg config.Config, hub *changefeed.Hub, ids idgen.Generator, logger *logging.Logger) (*Store, error) {
	dsn := postgres.ParseDSN(cfg.DBURL)
	if cfg.DBDisablePreparedBinary {
		dsn = dsn.ForPooler()
	}

	db, err := otelsqlx.Open("postgres", dsn.String(),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dsn.Database()),
		otelsql.WithQueryFormatter(postgres.TraceStatement),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	listener := postgres.NewChangeListener(dsn.String(), hub, logger)
	s := &Store{
		Games:      postgres.NewGameRepository(db),
		Users:      postgres.NewUserRepository(db),
		Formations: postgres.NewFormationRepository(db),
		WeekStats:  postgres.NewWeekStatRepository(db, ids),
		Feed:       hub,
		logger:     logger,
		closers:    []func() error{listener.Close, db.Close},
	}
	s.tasks = append(s.tasks, backgroundTask{name: "change_listener", run: listener.Run})
	s.wireQuarterbacks(postgres.NewQuarterbackRepository(db), cfg.CacheTTL)

	configureDBPool(db)
	logger.Info("store opened", "driver", config.StorePostgres, "db_name", dsn.Database())
	return s, nil
}

func configureDBPool(db *sqlx.DB) {
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
}

func (s *Store) wireQuarterbacks(next quarterback.Repository, ttl time.Duration) {
	s.Quarterbacks = cache.NewQuarterbackRepository(next, ttl)
	s.tasks = append(s.tasks, backgroundTask{
		name: "quarterback_cache_invalidation",
		run: func(ctx context.Context) error {
			return s.Quarterbacks.RunInvalidation(ctx, s.Feed, s.logger)
		},
	})
}

// Start launches the background tasks. They stop when ctx ends.
func (s *Store) Start(ctx context.Context) {
	for _, task := range s.tasks {
		s.wg.Go(func() {
			err := task.run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				s.logger.ErrorContext(ctx, "store background task stopped", "task", task.name, "error", err)
			}
		})
	}
}

// Close waits for the background tasks, so the context passed to Start must
// already be done.
func (s *Store) Close() error {
	s.wg.Wait()

	var errs []error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
