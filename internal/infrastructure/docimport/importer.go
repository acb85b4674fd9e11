package docimport

import (
	"context"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/fantaqb/internal/domain/formation"
	"github.com/riskibarqy/fantaqb/internal/domain/game"
	"github.com/riskibarqy/fantaqb/internal/domain/quarterback"
	"github.com/riskibarqy/fantaqb/internal/domain/user"
	"github.com/riskibarqy/fantaqb/internal/domain/weekstat"
	"github.com/riskibarqy/fantaqb/internal/platform/logging"
)

type Report struct {
	Quarterbacks int
	Games        int
	Users        int
	Formations   int
	WeekStats    int
	Skipped      []string
}

// Importer writes a Bundle through the repositories. Every write is an
// upsert, so importing the same export twice is harmless.
type Importer struct {
	qbRepo        quarterback.Repository
	gameRepo      game.Repository
	userRepo      user.Repository
	formationRepo formation.Repository
	statRepo      weekstat.Repository
	logger        *logging.Logger
}

func NewImporter(
	qbRepo quarterback.Repository,
	gameRepo game.Repository,
	userRepo user.Repository,
	formationRepo formation.Repository,
	statRepo weekstat.Repository,
	logger *logging.Logger,
) *Importer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Importer{
		qbRepo:        qbRepo,
		gameRepo:      gameRepo,
		userRepo:      userRepo,
		formationRepo: formationRepo,
		statRepo:      statRepo,
		logger:        logger.With("component", "docimport"),
	}
}

// Import writes quarterbacks, games and users before the documents that
// reference them.
func (i *Importer) Import(ctx context.Context, b Bundle) (Report, error) {
	report := Report{Skipped: append([]string(nil), b.Skipped...)}

	for _, qb := range b.Quarterbacks {
		if err := i.qbRepo.Upsert(ctx, qb); err != nil {
			return report, crerr.Wrapf(err, "import quarterback %s", qb.ID)
		}
		report.Quarterbacks++
	}
	for _, g := range b.Games {
		if err := i.gameRepo.Upsert(ctx, g); err != nil {
			return report, crerr.Wrapf(err, "import game %s", g.ID)
		}
		report.Games++
	}
	for _, u := range b.Users {
		if err := i.userRepo.Upsert(ctx, u); err != nil {
			return report, crerr.Wrapf(err, "import user %s", u.ID)
		}
		report.Users++
	}
	for _, f := range b.Formations {
		if err := i.formationRepo.Override(ctx, f); err != nil {
			return report, crerr.Wrapf(err, "import formation %s/%d", f.UserID, f.Week)
		}
		report.Formations++
	}
	for _, stat := range b.WeekStats {
		if err := i.statRepo.Upsert(ctx, stat); err != nil {
			return report, crerr.Wrapf(err, "import weekstat %s", stat.ID)
		}
		report.WeekStats++
	}

	for _, reason := range report.Skipped {
		i.logger.WarnContext(ctx, "import skipped document", "reason", reason)
	}
	i.logger.InfoContext(ctx, "import finished",
		"qbs", report.Quarterbacks,
		"games", report.Games,
		"users", report.Users,
		"formations", report.Formations,
		"weekstats", report.WeekStats,
		"skipped", len(report.Skipped),
	)
	return report, nil
}
