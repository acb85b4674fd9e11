package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/fantaqb/internal/domain/formation"
	"github.com/riskibarqy/fantaqb/internal/domain/game"
	"github.com/riskibarqy/fantaqb/internal/domain/scoring"
	"github.com/riskibarqy/fantaqb/internal/domain/user"
	"github.com/riskibarqy/fantaqb/internal/domain/weekstat"
	"github.com/riskibarqy/fantaqb/internal/platform/logging"
)

const defaultAggregateWorkers = 8

// LeagueSnapshot is one consistent-enough read of everything the aggregator
// needs. Formations belong to non-admin users only.
type LeagueSnapshot struct {
	Games      []game.Game
	Stats      []weekstat.WeekStat
	Users      []user.User
	Formations []formation.Formation
}

func (s LeagueSnapshot) Index() *scoring.Snapshot {
	return scoring.NewSnapshot(s.Games, s.Stats)
}

// ScoringService derives totals on every call; nothing derived is stored.
type ScoringService struct {
	gameRepo      game.Repository
	statRepo      weekstat.Repository
	userRepo      user.Repository
	formationRepo formation.Repository
	workers       int
	logger        *logging.Logger
}

func NewScoringService(
	gameRepo game.Repository,
	statRepo weekstat.Repository,
	userRepo user.Repository,
	formationRepo formation.Repository,
	workers int,
	logger *logging.Logger,
) *ScoringService {
	if workers <= 0 {
		workers = defaultAggregateWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ScoringService{
		gameRepo:      gameRepo,
		statRepo:      statRepo,
		userRepo:      userRepo,
		formationRepo: formationRepo,
		workers:       workers,
		logger:        logger.With("component", "scoring_service"),
	}
}

// LoadSnapshot reads games, stats and users concurrently, then each player's
// formations on a bounded worker pool.
func (s *ScoringService) LoadSnapshot(ctx context.Context) (LeagueSnapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.LoadSnapshot")
	defer span.End()

	var snap LeagueSnapshot
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		games, err := s.gameRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("list games: %w", err)
		}
		snap.Games = games
		return nil
	})
	p.Go(func(ctx context.Context) error {
		stats, err := s.statRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("list weekstats: %w", err)
		}
		snap.Stats = stats
		return nil
	})
	p.Go(func(ctx context.Context) error {
		users, err := s.userRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		snap.Users = users
		return nil
	})
	if err := p.Wait(); err != nil {
		return LeagueSnapshot{}, err
	}

	formations, err := s.loadFormations(ctx, user.Players(snap.Users))
	if err != nil {
		return LeagueSnapshot{}, err
	}
	snap.Formations = formations
	return snap, nil
}

func (s *ScoringService) loadFormations(ctx context.Context, players []user.User) ([]formation.Formation, error) {
	if len(players) == 0 {
		return nil, nil
	}

	workerCount := s.workers
	if workerCount > len(players) {
		workerCount = len(players)
	}
	workers, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer workers.Release()

	perUser := make([][]formation.Formation, len(players))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i, u := range players {
		wg.Add(1)
		if err := workers.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			items, err := s.formationRepo.ListByUser(ctx, u.ID)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("list formations for user %s: %w", u.ID, err)
				}
				mu.Unlock()
				return
			}
			perUser[i] = items
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submit formation load: %w", err)
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]formation.Formation, 0, len(players))
	for _, items := range perUser {
		out = append(out, items...)
	}
	return out, nil
}

// FormationScore scores one formation against current stats.
func (s *ScoringService) FormationScore(ctx context.Context, f formation.Formation) (float64, []scoring.Contribution, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.FormationScore")
	defer span.End()

	games, err := s.gameRepo.ListByWeek(ctx, f.Week)
	if err != nil {
		return 0, nil, fmt.Errorf("list games for week %d: %w", f.Week, err)
	}
	ids := make([]string, 0, len(games))
	for _, g := range games {
		ids = append(ids, g.ID)
	}
	stats, err := s.statRepo.ListByGameIDs(ctx, ids)
	if err != nil {
		return 0, nil, fmt.Errorf("list weekstats for week %d: %w", f.Week, err)
	}

	index := scoring.NewSnapshot(games, stats)
	return index.FormationTotal(f), index.Breakdown(f), nil
}

func (s *ScoringService) PlayerStats(ctx context.Context) ([]scoring.PlayerStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.PlayerStats")
	defer span.End()

	stats, err := s.statRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list weekstats: %w", err)
	}
	return scoring.PlayerSeasonStats(stats), nil
}

// LeagueTotals returns totals for every non-admin user, best first.
func (s *ScoringService) LeagueTotals(ctx context.Context) ([]scoring.UserTotal, LeagueSnapshot, error) {
	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		return nil, LeagueSnapshot{}, err
	}
	return snap.Index().UserLeagueTotals(snap.Users, snap.Formations), snap, nil
}
