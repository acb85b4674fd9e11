package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/fantaqb/internal/domain/formation"
	"github.com/riskibarqy/fantaqb/internal/domain/game"
	"github.com/riskibarqy/fantaqb/internal/domain/quarterback"
	"github.com/riskibarqy/fantaqb/internal/domain/user"
	"github.com/riskibarqy/fantaqb/internal/platform/logging"
)

type SubmitFormationInput struct {
	Week           int
	QuarterbackIDs []string
}

type OverrideFormationInput struct {
	UserID         string
	Week           int
	QuarterbackIDs []string
}

// FormationListing is a formation with its owner's display data.
type FormationListing struct {
	Formation formation.Formation
	Username  string
	TeamName  string
}

type FormationService struct {
	gameRepo      game.Repository
	qbRepo        quarterback.Repository
	formationRepo formation.Repository
	userRepo      user.Repository
	metrics       EngineMetrics
	logger        *logging.Logger
	now           func() time.Time
}

func NewFormationService(
	gameRepo game.Repository,
	qbRepo quarterback.Repository,
	formationRepo formation.Repository,
	userRepo user.Repository,
	metrics EngineMetrics,
	logger *logging.Logger,
) *FormationService {
	if logger == nil {
		logger = logging.Default()
	}
	return &FormationService{
		gameRepo:      gameRepo,
		qbRepo:        qbRepo,
		formationRepo: formationRepo,
		userRepo:      userRepo,
		metrics:       metricsOrNop(metrics),
		logger:        logger.With("component", "formation_service"),
		now:           time.Now,
	}
}

// CurrentWeek is the earliest week that still has an uncalculated game.
func (s *FormationService) CurrentWeek(ctx context.Context) (int, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FormationService.CurrentWeek")
	defer span.End()

	games, err := s.gameRepo.List(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("list games: %w", err)
	}
	week, ok := game.OpenWeek(games)
	return week, ok, nil
}

// Get returns the formation for (userID, week). exists is false when the user
// has not submitted.
func (s *FormationService) Get(ctx context.Context, userID string, week int) (formation.Formation, bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return formation.Formation{}, false, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if week <= 0 {
		return formation.Formation{}, false, fmt.Errorf("%w: week must be positive", ErrInvalidInput)
	}

	item, exists, err := s.formationRepo.Get(ctx, userID, week)
	if err != nil {
		return formation.Formation{}, false, fmt.Errorf("get formation: %w", err)
	}
	return item, exists, nil
}

func (s *FormationService) Submit(ctx context.Context, principal user.Principal, input SubmitFormationInput) (formation.Formation, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FormationService.Submit", attribute.Int("week", input.Week))
	defer span.End()

	item, err := s.submit(ctx, principal, input)
	switch {
	case err == nil:
		s.metrics.IncFormationSubmission(OutcomeAccepted)
		s.logger.InfoContext(ctx, "formation submitted", "user_id", item.UserID, "week", item.Week, "qb_ids", item.IDs())
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrWeekClosed), errors.Is(err, ErrFormationLocked), errors.Is(err, ErrUnauthorized):
		s.metrics.IncFormationSubmission(OutcomeRejected)
	default:
		s.metrics.IncFormationSubmission(OutcomeError)
		s.logger.WarnContext(ctx, "formation submission failed", "user_id", principal.UserID, "week", input.Week, "error", err)
	}
	return item, err
}

func (s *FormationService) submit(ctx context.Context, principal user.Principal, input SubmitFormationInput) (formation.Formation, error) {
	if !principal.Authenticated() {
		return formation.Formation{}, ErrUnauthorized
	}

	profile, exists, err := s.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		return formation.Formation{}, fmt.Errorf("load user profile: %w", err)
	}
	if exists && profile.IsAdmin {
		return formation.Formation{}, fmt.Errorf("%w: admins do not submit formations", ErrInvalidInput)
	}

	if err := formation.ValidateIDs(input.QuarterbackIDs); err != nil {
		return formation.Formation{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	current, open, err := s.CurrentWeek(ctx)
	if err != nil {
		return formation.Formation{}, err
	}
	if !open {
		return formation.Formation{}, fmt.Errorf("%w: no open week", ErrWeekClosed)
	}
	if input.Week != current {
		return formation.Formation{}, fmt.Errorf("%w: week %d is not open, current week is %d", ErrWeekClosed, input.Week, current)
	}

	item, err := formation.NewLocked(principal.UserID, input.Week, input.QuarterbackIDs, s.now().UTC())
	if err != nil {
		return formation.Formation{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := s.validateStarters(ctx, item.IDs()); err != nil {
		return formation.Formation{}, err
	}

	if _, exists, err := s.formationRepo.Get(ctx, item.UserID, item.Week); err != nil {
		return formation.Formation{}, fmt.Errorf("get formation: %w", err)
	} else if exists {
		return formation.Formation{}, fmt.Errorf("%w: week %d", ErrFormationLocked, item.Week)
	}

	if err := s.formationRepo.Create(ctx, item); err != nil {
		if errors.Is(err, formation.ErrFormationLocked) {
			return formation.Formation{}, fmt.Errorf("%w: week %d", ErrFormationLocked, item.Week)
		}
		return formation.Formation{}, fmt.Errorf("create formation: %w", err)
	}
	return item, nil
}

// Override replaces the quarterbacks of an already submitted formation. Any
// week is allowed, including calculated ones.
func (s *FormationService) Override(ctx context.Context, admin user.Principal, input OverrideFormationInput) (formation.Formation, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FormationService.Override", attribute.Int("week", input.Week))
	defer span.End()

	if _, err := requireAdmin(ctx, s.userRepo, admin); err != nil {
		return formation.Formation{}, err
	}

	input.UserID = strings.TrimSpace(input.UserID)
	if input.UserID == "" {
		return formation.Formation{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if err := formation.ValidateIDs(input.QuarterbackIDs); err != nil {
		return formation.Formation{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	current, exists, err := s.Get(ctx, input.UserID, input.Week)
	if err != nil {
		return formation.Formation{}, err
	}
	if !exists {
		return formation.Formation{}, fmt.Errorf("%w: no formation for user %s week %d", ErrNotFound, input.UserID, input.Week)
	}

	updated, err := current.Override(input.QuarterbackIDs, s.now().UTC())
	if err != nil {
		return formation.Formation{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := s.validateExisting(ctx, updated.IDs()); err != nil {
		return formation.Formation{}, err
	}
	if err := s.formationRepo.Override(ctx, updated); err != nil {
		return formation.Formation{}, fmt.Errorf("override formation: %w", err)
	}

	s.logger.InfoContext(ctx, "formation overridden",
		"admin_id", admin.UserID,
		"user_id", updated.UserID,
		"week", updated.Week,
		"previous_qb_ids", current.IDs(),
		"qb_ids", updated.IDs(),
	)
	return updated, nil
}

// ListByWeek lists formations of non-admin users for week, ordered by user
// id. Until the week is calculated a non-admin viewer only sees their own.
func (s *FormationService) ListByWeek(ctx context.Context, viewer user.Principal, week int) ([]FormationListing, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FormationService.ListByWeek", attribute.Int("week", week))
	defer span.End()

	if week <= 0 {
		return nil, fmt.Errorf("%w: week must be positive", ErrInvalidInput)
	}

	final, err := weekFinal(ctx, s.gameRepo, week)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	formations, err := s.formationRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list formations: %w", err)
	}

	seeAll := final
	players := make(map[string]user.User)
	for _, u := range users {
		if u.IsAdmin {
			seeAll = seeAll || u.ID == viewer.UserID
			continue
		}
		players[u.ID] = u
	}

	out := make([]FormationListing, 0)
	for _, f := range formations {
		if f.Week != week {
			continue
		}
		if !seeAll && f.UserID != viewer.UserID {
			continue
		}
		owner, ok := players[f.UserID]
		if !ok {
			continue
		}
		out = append(out, FormationListing{Formation: f, Username: owner.DisplayName(), TeamName: owner.TeamName})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Formation.UserID < out[j].Formation.UserID
	})
	return out, nil
}

func (s *FormationService) validateStarters(ctx context.Context, ids []string) error {
	found, err := s.lookup(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		qb, ok := found[id]
		if !ok {
			return fmt.Errorf("%w: quarterback %s not found", ErrInvalidInput, id)
		}
		if !qb.IsStarter() {
			return fmt.Errorf("%w: quarterback %s is not a starter", ErrInvalidInput, id)
		}
	}
	return nil
}

// validateExisting only requires the quarterbacks to exist; an admin may
// correct a formation with players who have since lost starter status.
func (s *FormationService) validateExisting(ctx context.Context, ids []string) error {
	found, err := s.lookup(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return fmt.Errorf("%w: quarterback %s not found", ErrInvalidInput, id)
		}
	}
	return nil
}

func (s *FormationService) lookup(ctx context.Context, ids []string) (map[string]quarterback.Quarterback, error) {
	items, err := s.qbRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get quarterbacks by ids: %w", err)
	}
	out := make(map[string]quarterback.Quarterback, len(items))
	for _, qb := range items {
		out[qb.ID] = qb
	}
	return out, nil
}
