package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/fantaqb/internal/domain/game"
	"github.com/riskibarqy/fantaqb/internal/domain/quarterback"
	"github.com/riskibarqy/fantaqb/internal/domain/user"
	"github.com/riskibarqy/fantaqb/internal/domain/weekstat"
	"github.com/riskibarqy/fantaqb/internal/platform/id"
	"github.com/riskibarqy/fantaqb/internal/platform/logging"
	"github.com/riskibarqy/fantaqb/internal/platform/resilience"
)

const (
	problemNoGames       = "no games for this week"
	problemNotPlayed     = "game not played: "
	problemMissingScores = "missing quarterback scores: "
	problemStoreError    = "store error: "
)

// CalculationReport is the outcome of CalculateWeek. Problems is non-empty
// only when the week was rejected.
type CalculationReport struct {
	Week              int
	Problems          []string
	Flagged           int
	AlreadyCalculated bool
}

type RecordScoreInput struct {
	QuarterbackID string
	GameID        string
	Score         float64
}

// CalendarWeek is one week of the schedule with its games in store order.
type CalendarWeek struct {
	Week       int
	Games      []game.Game
	Calculated bool
}

type WeekService struct {
	gameRepo game.Repository
	statRepo weekstat.Repository
	qbRepo   quarterback.Repository
	userRepo user.Repository
	metrics  EngineMetrics
	logger   *logging.Logger
	ids      id.Generator
	flight   resilience.Group[CalculationReport]
}

func NewWeekService(
	gameRepo game.Repository,
	statRepo weekstat.Repository,
	qbRepo quarterback.Repository,
	userRepo user.Repository,
	metrics EngineMetrics,
	logger *logging.Logger,
) *WeekService {
	if logger == nil {
		logger = logging.Default()
	}
	return &WeekService{
		gameRepo: gameRepo,
		statRepo: statRepo,
		qbRepo:   qbRepo,
		userRepo: userRepo,
		metrics:  metricsOrNop(metrics),
		logger:   logger.With("component", "week_service"),
		ids:      id.NewRandomGenerator("ws"),
	}
}

// ValidateWeek lists the reasons week cannot be calculated. A store failure
// is reported as a single problem.
func (s *WeekService) ValidateWeek(ctx context.Context, week int) []string {
	ctx, span := startUsecaseSpan(ctx, "usecase.WeekService.ValidateWeek", attribute.Int("week", week))
	defer span.End()

	problems, _, err := s.validate(ctx, week)
	if err != nil {
		s.logger.WarnContext(ctx, "validate week store failure", "week", week, "error", err)
		return []string{problemStoreError + err.Error()}
	}
	return problems
}

func (s *WeekService) validate(ctx context.Context, week int) ([]string, []game.Game, error) {
	games, err := s.gameRepo.ListByWeek(ctx, week)
	if err != nil {
		return nil, nil, fmt.Errorf("list games for week %d: %w", week, err)
	}
	if len(games) == 0 {
		return []string{problemNoGames}, nil, nil
	}

	playedIDs := make([]string, 0, len(games))
	for _, g := range games {
		if g.Played() {
			playedIDs = append(playedIDs, g.ID)
		}
	}

	scored := make(map[string]struct{})
	if len(playedIDs) > 0 {
		stats, err := s.statRepo.ListByGameIDs(ctx, playedIDs)
		if err != nil {
			return nil, nil, fmt.Errorf("list weekstats for week %d: %w", week, err)
		}
		for _, st := range stats {
			scored[st.GameID] = struct{}{}
		}
	}

	problems := make([]string, 0)
	for _, g := range games {
		if !g.Played() {
			problems = append(problems, problemNotPlayed+g.Matchup())
			continue
		}
		if _, ok := scored[g.ID]; !ok {
			problems = append(problems, problemMissingScores+g.Matchup())
		}
	}
	return problems, games, nil
}

// CalculateWeek finalizes week after re-validating it. Concurrent calls for
// the same week share one execution. Recalculating is a no-op.
func (s *WeekService) CalculateWeek(ctx context.Context, admin user.Principal, week int) (CalculationReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WeekService.CalculateWeek", attribute.Int("week", week))
	defer span.End()

	if week <= 0 {
		return CalculationReport{}, fmt.Errorf("%w: week must be positive", ErrInvalidInput)
	}
	if _, err := requireAdmin(ctx, s.userRepo, admin); err != nil {
		return CalculationReport{}, err
	}

	report, err, shared := s.flight.Do(strconv.Itoa(week), func() (CalculationReport, error) {
		return s.calculate(ctx, week)
	})
	report.Problems = append([]string(nil), report.Problems...)
	if shared {
		// The run is counted once, by the caller that started it.
		s.logger.DebugContext(ctx, "week calculation joined in-flight run", "week", week)
		return report, err
	}

	switch {
	case err == nil && report.AlreadyCalculated:
		s.metrics.IncWeekCalculation(OutcomeNoop)
	case err == nil:
		s.metrics.IncWeekCalculation(OutcomeCalculated)
	case errors.Is(err, ErrWeekNotCalculable):
		s.metrics.IncWeekCalculation(OutcomeRejected)
	default:
		s.metrics.IncWeekCalculation(OutcomeError)
	}
	return report, err
}

func (s *WeekService) calculate(ctx context.Context, week int) (CalculationReport, error) {
	report := CalculationReport{Week: week}

	problems, games, err := s.validate(ctx, week)
	if err != nil {
		report.Problems = []string{problemStoreError + err.Error()}
		s.logger.WarnContext(ctx, "week calculation store failure", "week", week, "error", err)
		return report, fmt.Errorf("%w: %w", ErrWeekNotCalculable, err)
	}
	if len(problems) > 0 {
		report.Problems = problems
		s.logger.InfoContext(ctx, "week calculation rejected", "week", week, "problems", problems)
		return report, fmt.Errorf("%w: %s", ErrWeekNotCalculable, strings.Join(problems, "; "))
	}

	pending := make([]string, 0, len(games))
	for _, g := range games {
		if !g.Calculated() {
			pending = append(pending, g.ID)
		}
	}
	if len(pending) == 0 {
		report.AlreadyCalculated = true
		s.logger.InfoContext(ctx, "week already calculated", "week", week)
		return report, nil
	}

	if err := s.gameRepo.MarkCalculatedBatch(ctx, pending); err != nil {
		s.logger.ErrorContext(ctx, "mark week calculated failed", "week", week, "error", err)
		return report, fmt.Errorf("mark week %d calculated: %w", week, err)
	}

	report.Flagged = len(pending)
	s.logger.InfoContext(ctx, "week calculated", "week", week, "flagged", report.Flagged)
	return report, nil
}

// RecordResult sets a game's final score. An empty result clears it and
// returns the game to scheduled.
func (s *WeekService) RecordResult(ctx context.Context, admin user.Principal, gameID, raw string) (game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WeekService.RecordResult", attribute.String("game_id", gameID))
	defer span.End()

	if _, err := requireAdmin(ctx, s.userRepo, admin); err != nil {
		return game.Game{}, err
	}

	current, err := s.getGame(ctx, gameID)
	if err != nil {
		return game.Game{}, err
	}

	updated, err := current.RecordResult(raw)
	if err != nil {
		return game.Game{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := s.gameRepo.Upsert(ctx, updated); err != nil {
		if errors.Is(err, game.ErrGameCalculated) {
			return game.Game{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return game.Game{}, fmt.Errorf("save game result: %w", err)
	}

	s.logger.InfoContext(ctx, "game result recorded", "game_id", updated.ID, "week", updated.Week, "result", updated.ResultText(), "state", string(updated.State))
	return updated, nil
}

// RecordScore writes a quarterback's score for a played game, replacing an
// existing record for the same pair. Calculated games are immutable.
func (s *WeekService) RecordScore(ctx context.Context, admin user.Principal, input RecordScoreInput) (weekstat.WeekStat, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WeekService.RecordScore", attribute.String("game_id", input.GameID))
	defer span.End()

	if _, err := requireAdmin(ctx, s.userRepo, admin); err != nil {
		return weekstat.WeekStat{}, err
	}

	stat := weekstat.WeekStat{
		QuarterbackID: strings.TrimSpace(input.QuarterbackID),
		GameID:        strings.TrimSpace(input.GameID),
		Score:         input.Score,
	}
	if err := stat.Validate(); err != nil {
		return weekstat.WeekStat{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	qbs, err := s.qbRepo.GetByIDs(ctx, []string{stat.QuarterbackID})
	if err != nil {
		return weekstat.WeekStat{}, fmt.Errorf("get quarterback: %w", err)
	}
	if len(qbs) == 0 {
		return weekstat.WeekStat{}, fmt.Errorf("%w: quarterback %s not found", ErrInvalidInput, stat.QuarterbackID)
	}

	// The game stays uncalculated until the write below returns.
	exists, err := s.gameRepo.HoldOpen(ctx, stat.GameID, func(g game.Game) error {
		if !g.Played() {
			return fmt.Errorf("%w: %w: %s", ErrInvalidInput, game.ErrGameNotPlayed, g.Matchup())
		}
		return s.saveScore(ctx, &stat)
	})
	switch {
	case errors.Is(err, game.ErrGameCalculated):
		return weekstat.WeekStat{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case err != nil:
		return weekstat.WeekStat{}, err
	case !exists:
		return weekstat.WeekStat{}, fmt.Errorf("%w: game %s", ErrNotFound, stat.GameID)
	}

	s.logger.InfoContext(ctx, "quarterback score recorded", "qb_id", stat.QuarterbackID, "game_id", stat.GameID, "score", stat.Score)
	return stat, nil
}

// saveScore reuses the id of an existing record for the same quarterback
// and game.
func (s *WeekService) saveScore(ctx context.Context, stat *weekstat.WeekStat) error {
	existing, err := s.statRepo.ListByGameIDs(ctx, []string{stat.GameID})
	if err != nil {
		return fmt.Errorf("list weekstats for game: %w", err)
	}
	for _, prev := range existing {
		if prev.QuarterbackID == stat.QuarterbackID {
			stat.ID = prev.ID
			break
		}
	}
	if stat.ID == "" {
		if stat.ID, err = s.ids.NewID(); err != nil {
			return fmt.Errorf("generate weekstat id: %w", err)
		}
	}
	if err := s.statRepo.Upsert(ctx, *stat); err != nil {
		return fmt.Errorf("save weekstat: %w", err)
	}
	return nil
}

// Calendar groups every game by week, ascending.
func (s *WeekService) Calendar(ctx context.Context) ([]CalendarWeek, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WeekService.Calendar")
	defer span.End()

	games, err := s.gameRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}

	byWeek := game.ByWeek(games)
	out := make([]CalendarWeek, 0, len(byWeek))
	for _, week := range game.Weeks(games) {
		items := byWeek[week]
		calculated := true
		for _, g := range items {
			if !g.Calculated() {
				calculated = false
				break
			}
		}
		out = append(out, CalendarWeek{Week: week, Games: items, Calculated: calculated})
	}
	return out, nil
}

func (s *WeekService) getGame(ctx context.Context, gameID string) (game.Game, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return game.Game{}, fmt.Errorf("%w: game_id is required", ErrInvalidInput)
	}
	g, exists, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return game.Game{}, fmt.Errorf("get game: %w", err)
	}
	if !exists {
		return game.Game{}, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}
	return g, nil
}
