package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/fantaqb/internal/domain/changefeed"
	"github.com/riskibarqy/fantaqb/internal/domain/user"
	"github.com/riskibarqy/fantaqb/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantaqb/internal/platform/logging"
)

var (
	adminPrincipal = user.Principal{UserID: memory.SeedAdminID, Email: "admin@fantaqb.local"}
	demoPrincipal  = user.Principal{UserID: "demo-user", Email: "demo@fantaqb.local"}
	rivalPrincipal = user.Principal{UserID: "rival", Email: "rival@fantaqb.local"}
)

type testLeague struct {
	hub        *changefeed.Hub
	games      *memory.GameRepository
	qbs        *memory.QuarterbackRepository
	formations *memory.FormationRepository
	users      *memory.UserRepository
	stats      *memory.WeekStatRepository
	metrics    *recordingMetrics

	formationSvc *FormationService
	weekSvc      *WeekService
	scoringSvc   *ScoringService
	rankingSvc   *RankingService
	liveSvc      *LiveViewService
}

func newLeague(t *testing.T) *testLeague {
	t.Helper()

	logger := logging.NewNop()
	hub := changefeed.NewHub(changefeed.DefaultBuffer)
	users := append(memory.SeedUsers(), user.User{ID: "rival", Email: "rival@fantaqb.local", Username: "rival", TeamName: "Rival Arms"})

	l := &testLeague{
		hub:        hub,
		games:      memory.NewGameRepository(memory.SeedGames(), hub),
		qbs:        memory.NewQuarterbackRepository(memory.SeedQuarterbacks(), hub),
		formations: memory.NewFormationRepository(hub),
		users:      memory.NewUserRepository(users, hub),
		stats:      memory.NewWeekStatRepository(nil, nil, hub),
		metrics:    &recordingMetrics{},
	}
	l.formationSvc = NewFormationService(l.games, l.qbs, l.formations, l.users, l.metrics, logger)
	l.formationSvc.now = func() time.Time { return time.Date(2025, 9, 7, 12, 0, 0, 0, time.UTC) }
	l.weekSvc = NewWeekService(l.games, l.stats, l.qbs, l.users, l.metrics, logger)
	l.scoringSvc = NewScoringService(l.games, l.stats, l.users, l.formations, 2, logger)
	l.rankingSvc = NewRankingService(l.scoringSvc, l.qbs, l.formations, l.metrics, logger)
	l.liveSvc = NewLiveViewService(l.rankingSvc, hub, l.metrics, logger)
	return l
}

// playWeek1 records results for every week-1 game and one score per
// quarterback in the given map.
func (l *testLeague) playWeek1(t *testing.T, scores map[string]float64) {
	t.Helper()
	ctx := context.Background()

	games := map[string]string{
		"qb-mahomes": "w1-kc-buf",
		"qb-allen":   "w1-kc-buf",
		"qb-burrow":  "w1-cin-phi",
		"qb-hurts":   "w1-cin-phi",
		"qb-jackson": "w1-bal-det",
		"qb-goff":    "w1-bal-det",
	}
	for _, gameID := range []string{"w1-kc-buf", "w1-cin-phi", "w1-bal-det"} {
		if _, err := l.weekSvc.RecordResult(ctx, adminPrincipal, gameID, "24 - 17"); err != nil {
			t.Fatalf("record result %s: %v", gameID, err)
		}
	}
	for qbID, score := range scores {
		if _, err := l.weekSvc.RecordScore(ctx, adminPrincipal, RecordScoreInput{QuarterbackID: qbID, GameID: games[qbID], Score: score}); err != nil {
			t.Fatalf("record score %s: %v", qbID, err)
		}
	}
}

type recordingMetrics struct {
	mu           sync.Mutex
	calculations map[string]int
	submissions  map[string]int
	derivations  map[string]int
	liveWatches  int
}

func (m *recordingMetrics) IncWeekCalculation(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calculations == nil {
		m.calculations = make(map[string]int)
	}
	m.calculations[outcome]++
}

func (m *recordingMetrics) IncFormationSubmission(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.submissions == nil {
		m.submissions = make(map[string]int)
	}
	m.submissions[outcome]++
}

func (m *recordingMetrics) ObserveDerivation(view string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.derivations == nil {
		m.derivations = make(map[string]int)
	}
	m.derivations[view]++
}

func (m *recordingMetrics) AddLiveWatches(delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.liveWatches += delta
}

func (m *recordingMetrics) snapshot() (calc, sub map[string]int, live int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	calc = make(map[string]int, len(m.calculations))
	for k, v := range m.calculations {
		calc[k] = v
	}
	sub = make(map[string]int, len(m.submissions))
	for k, v := range m.submissions {
		sub[k] = v
	}
	return calc, sub, m.liveWatches
}
