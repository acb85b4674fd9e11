package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/fantaqb/internal/domain/formation"
	"github.com/riskibarqy/fantaqb/internal/domain/quarterback"
	"github.com/riskibarqy/fantaqb/internal/domain/scoring"
	"github.com/riskibarqy/fantaqb/internal/domain/user"
	"github.com/riskibarqy/fantaqb/internal/platform/logging"
)

type LeagueRow struct {
	Rank       int
	UserID     string
	Username   string
	TeamName   string
	Total      float64
	Formations int
}

type QuarterbackRow struct {
	Rank          int
	QuarterbackID string
	Name          string
	Team          string
	GamesPlayed   int
	TotalPoints   float64
	PointsPerGame float64
}

type FormationPlayer struct {
	QuarterbackID string
	Name          string
	Team          string
	GameID        string
	Score         float64
	Scored        bool
	Counted       bool
}

// FormationView is a formation with its per-player breakdown. Exists is
// false when the user has not submitted for the week. Scores of a week that
// is not Final are provisional.
type FormationView struct {
	UserID    string
	Week      int
	Exists    bool
	Final     bool
	Formation formation.Formation
	Players   []FormationPlayer
	Total     float64
}

// RankingService composes aggregator output with entity metadata. Every call
// re-derives from the store.
type RankingService struct {
	scoring       *ScoringService
	qbRepo        quarterback.Repository
	formationRepo formation.Repository
	metrics       EngineMetrics
	logger        *logging.Logger
}

func NewRankingService(
	scoringSvc *ScoringService,
	qbRepo quarterback.Repository,
	formationRepo formation.Repository,
	metrics EngineMetrics,
	logger *logging.Logger,
) *RankingService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RankingService{
		scoring:       scoringSvc,
		qbRepo:        qbRepo,
		formationRepo: formationRepo,
		metrics:       metricsOrNop(metrics),
		logger:        logger.With("component", "ranking_service"),
	}
}

// LeagueTable ranks non-admin users by league total with dense ranks.
func (s *RankingService) LeagueTable(ctx context.Context) ([]LeagueRow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.LeagueTable")
	defer span.End()
	defer s.observe("league_table", time.Now())

	totals, snap, err := s.scoring.LeagueTotals(ctx)
	if err != nil {
		return nil, err
	}

	users := make(map[string]user.User, len(snap.Users))
	for _, u := range snap.Users {
		users[u.ID] = u
	}

	values := make([]float64, len(totals))
	for i, t := range totals {
		values[i] = t.Total
	}
	ranks := scoring.DenseRanks(values)

	out := make([]LeagueRow, 0, len(totals))
	for i, t := range totals {
		u := users[t.UserID]
		out = append(out, LeagueRow{
			Rank:       ranks[i],
			UserID:     t.UserID,
			Username:   u.DisplayName(),
			TeamName:   u.TeamName,
			Total:      t.Total,
			Formations: t.Formations,
		})
	}
	return out, nil
}

// QuarterbackTable ranks every quarterback with at least one weekstat.
// Stats for unknown quarterbacks are kept with empty metadata.
func (s *RankingService) QuarterbackTable(ctx context.Context) ([]QuarterbackRow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.QuarterbackTable")
	defer span.End()
	defer s.observe("quarterback_table", time.Now())

	stats, err := s.scoring.PlayerStats(ctx)
	if err != nil {
		return nil, err
	}
	meta, err := s.quarterbacks(ctx)
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(stats))
	for i, p := range stats {
		values[i] = p.TotalPoints
	}
	ranks := scoring.DenseRanks(values)

	out := make([]QuarterbackRow, 0, len(stats))
	for i, p := range stats {
		qb := meta[p.QuarterbackID]
		out = append(out, QuarterbackRow{
			Rank:          ranks[i],
			QuarterbackID: p.QuarterbackID,
			Name:          qb.Name,
			Team:          qb.Team,
			GamesPlayed:   p.GamesPlayed,
			TotalPoints:   p.TotalPoints,
			PointsPerGame: p.PointsPerGame,
		})
	}
	return out, nil
}

func (s *RankingService) FormationView(ctx context.Context, viewer user.Principal, userID string, week int) (FormationView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.FormationView", attribute.Int("week", week))
	defer span.End()
	defer s.observe("formation", time.Now())

	userID = strings.TrimSpace(userID)
	if userID == "" || week <= 0 {
		return FormationView{}, fmt.Errorf("%w: user_id and a positive week are required", ErrInvalidInput)
	}
	final, err := s.authorizeView(ctx, viewer, userID, week)
	if err != nil {
		return FormationView{}, err
	}

	view := FormationView{UserID: userID, Week: week, Final: final}
	item, exists, err := s.formationRepo.Get(ctx, userID, week)
	if err != nil {
		return FormationView{}, fmt.Errorf("get formation: %w", err)
	}
	if !exists {
		return view, nil
	}

	total, breakdown, err := s.scoring.FormationScore(ctx, item)
	if err != nil {
		return FormationView{}, err
	}
	meta, err := s.quarterbacks(ctx)
	if err != nil {
		return FormationView{}, err
	}

	view.Exists = true
	view.Formation = item
	view.Total = total
	view.Players = make([]FormationPlayer, 0, len(breakdown))
	for _, c := range breakdown {
		qb := meta[c.QuarterbackID]
		view.Players = append(view.Players, FormationPlayer{
			QuarterbackID: c.QuarterbackID,
			Name:          qb.Name,
			Team:          qb.Team,
			GameID:        c.GameID,
			Score:         c.Score,
			Scored:        c.Scored,
			Counted:       c.Counted,
		})
	}
	return view, nil
}

// authorizeView lets the owner and admins see a formation at any time and
// everyone else once its week is calculated.
func (s *RankingService) authorizeView(ctx context.Context, viewer user.Principal, userID string, week int) (bool, error) {
	final, err := weekFinal(ctx, s.scoring.gameRepo, week)
	if err != nil {
		return false, err
	}
	if final || viewer.UserID == userID {
		return final, nil
	}
	if !viewer.Authenticated() {
		return false, ErrUnauthorized
	}
	admin, err := isAdmin(ctx, s.scoring.userRepo, viewer)
	if err != nil {
		return false, err
	}
	if !admin {
		return false, fmt.Errorf("%w: picks of %s for week %d are hidden until the week is calculated", ErrForbidden, userID, week)
	}
	return false, nil
}

func (s *RankingService) quarterbacks(ctx context.Context) (map[string]quarterback.Quarterback, error) {
	items, err := s.qbRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quarterbacks: %w", err)
	}
	out := make(map[string]quarterback.Quarterback, len(items))
	for _, qb := range items {
		out[qb.ID] = qb
	}
	return out, nil
}

func (s *RankingService) observe(view string, started time.Time) {
	s.metrics.ObserveDerivation(view, time.Since(started))
}
