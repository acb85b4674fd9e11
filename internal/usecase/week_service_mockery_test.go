package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/fantaqb/internal/domain/game"
	"github.com/riskibarqy/fantaqb/internal/domain/user"
	"github.com/riskibarqy/fantaqb/internal/domain/weekstat"
	gamemock "github.com/riskibarqy/fantaqb/internal/mocks/domain/game"
	quarterbackmock "github.com/riskibarqy/fantaqb/internal/mocks/domain/quarterback"
	usermock "github.com/riskibarqy/fantaqb/internal/mocks/domain/user"
	weekstatmock "github.com/riskibarqy/fantaqb/internal/mocks/domain/weekstat"
)

func TestWeekService_CalculateWeek_BatchFailureUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gameRepo := gamemock.NewRepository(t)
	statRepo := weekstatmock.NewRepository(t)
	qbRepo := quarterbackmock.NewRepository(t)
	userRepo := usermock.NewRepository(t)

	service := NewWeekService(gameRepo, statRepo, qbRepo, userRepo, nil, nil)

	games := []game.Game{
		{ID: "g1", Week: 3, HomeTeam: "A", AwayTeam: "B", State: game.StatePlayed, Result: &game.Result{Home: 7, Away: 3}},
		{ID: "g2", Week: 3, HomeTeam: "C", AwayTeam: "D", State: game.StateCalculated, Result: &game.Result{Home: 10, Away: 13}},
	}
	storeErr := errors.New("write conflict")

	userRepo.
		On("GetByID", mock.Anything, "admin").
		Return(user.User{ID: "admin", IsAdmin: true}, true, nil).
		Once()
	gameRepo.
		On("ListByWeek", mock.Anything, 3).
		Return(games, nil).
		Once()
	statRepo.
		On("ListByGameIDs", mock.Anything, []string{"g1", "g2"}).
		Return([]weekstat.WeekStat{{ID: "ws1", QuarterbackID: "qb", GameID: "g1", Score: 4}, {ID: "ws2", QuarterbackID: "qb2", GameID: "g2", Score: 1}}, nil).
		Once()
	gameRepo.
		On("MarkCalculatedBatch", mock.Anything, []string{"g1"}).
		Return(storeErr).
		Once()

	report, err := service.CalculateWeek(ctx, user.Principal{UserID: "admin"}, 3)
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
	if report.Flagged != 0 {
		t.Fatalf("nothing should be flagged on failure, got %d", report.Flagged)
	}
}

func TestWeekService_CalculateWeek_NonAdminUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gameRepo := gamemock.NewRepository(t)
	userRepo := usermock.NewRepository(t)

	service := NewWeekService(gameRepo, weekstatmock.NewRepository(t), quarterbackmock.NewRepository(t), userRepo, nil, nil)

	userRepo.
		On("GetByID", mock.Anything, "u1").
		Return(user.User{}, false, nil).
		Once()

	_, err := service.CalculateWeek(ctx, user.Principal{UserID: "u1"}, 3)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestWeekService_StoreFailureIsOneProblemUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gameRepo := gamemock.NewRepository(t)
	userRepo := usermock.NewRepository(t)

	service := NewWeekService(gameRepo, weekstatmock.NewRepository(t), quarterbackmock.NewRepository(t), userRepo, nil, nil)

	storeErr := errors.New("connection reset")
	userRepo.
		On("GetByID", mock.Anything, "admin").
		Return(user.User{ID: "admin", IsAdmin: true}, true, nil).
		Once()
	gameRepo.
		On("ListByWeek", mock.Anything, 4).
		Return(nil, storeErr).
		Twice()

	problems := service.ValidateWeek(ctx, 4)
	if len(problems) != 1 || !strings.HasPrefix(problems[0], "store error: ") {
		t.Fatalf("expected a single store error problem, got %q", problems)
	}
	if !strings.Contains(problems[0], "connection reset") {
		t.Fatalf("problem should carry the cause, got %q", problems[0])
	}

	report, err := service.CalculateWeek(ctx, user.Principal{UserID: "admin"}, 4)
	if !errors.Is(err, ErrWeekNotCalculable) {
		t.Fatalf("expected ErrWeekNotCalculable, got %v", err)
	}
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected the store error to be wrapped, got %v", err)
	}
	if len(report.Problems) != 1 || !strings.HasPrefix(report.Problems[0], "store error: ") {
		t.Fatalf("expected a single store error problem, got %q", report.Problems)
	}
	gameRepo.AssertNotCalled(t, "MarkCalculatedBatch", mock.Anything, mock.Anything)
}
