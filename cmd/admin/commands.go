package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/riskibarqy/fantaqb/internal/app"
	"github.com/riskibarqy/fantaqb/internal/config"
	"github.com/riskibarqy/fantaqb/internal/domain/user"
	"github.com/riskibarqy/fantaqb/internal/infrastructure/docimport"
	"github.com/riskibarqy/fantaqb/internal/platform/logging"
)

type session struct {
	runtime *app.Runtime
	logger  *logging.Logger
	close   func()
}

type rootOptions struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "fantaqb-admin",
		Short: "Operate a FantaQB league store from the command line",
		Long: `fantaqb-admin runs league operations directly against the configured
store (STORE_DRIVER, DB_URL) without going through the HTTP API.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(
		newValidateCmd(opts),
		newCalculateCmd(opts),
		newImportCmd(opts),
		newStandingsCmd(opts),
	)
	return root
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <week>",
		Short: "List the reasons a week cannot be calculated yet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			week, err := parseWeek(args[0])
			if err != nil {
				return err
			}
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			problems := s.runtime.Weeks.ValidateWeek(cmd.Context(), week)
			out := cmd.OutOrStdout()
			if len(problems) == 0 {
				fmt.Fprintf(out, "week %d is calculable\n", week)
				return nil
			}
			fmt.Fprintf(out, "week %d is not calculable:\n", week)
			for _, p := range problems {
				fmt.Fprintf(out, "  - %s\n", p)
			}
			return nil
		},
	}
}

func newCalculateCmd(opts *rootOptions) *cobra.Command {
	var adminID string

	cmd := &cobra.Command{
		Use:   "calculate <week>",
		Short: "Finalize a week once every game is played and scored",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			week, err := parseWeek(args[0])
			if err != nil {
				return err
			}
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			report, err := s.runtime.Weeks.CalculateWeek(cmd.Context(), user.Principal{UserID: adminID}, week)
			out := cmd.OutOrStdout()
			if err != nil {
				for _, p := range report.Problems {
					fmt.Fprintf(out, "  - %s\n", p)
				}
				return err
			}
			if report.AlreadyCalculated {
				fmt.Fprintf(out, "week %d was already calculated\n", week)
				return nil
			}
			fmt.Fprintf(out, "week %d calculated, %d games flagged\n", week, report.Flagged)
			return nil
		},
	}
	cmd.Flags().StringVar(&adminID, "as", "", "User id of the admin running the calculation")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Load an exported league document, upgrading legacy layouts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			bundle, err := docimport.Decode(data, time.Now().UTC())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintf(out, "qbs=%d games=%d users=%d formations=%d weekstats=%d skipped=%d\n",
					len(bundle.Quarterbacks), len(bundle.Games), len(bundle.Users),
					len(bundle.Formations), len(bundle.WeekStats), len(bundle.Skipped))
				for _, reason := range bundle.Skipped {
					fmt.Fprintf(out, "  skipped %s\n", reason)
				}
				return nil
			}

			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			report, err := s.runtime.Importer(s.logger).Import(cmd.Context(), bundle)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "imported qbs=%d games=%d users=%d formations=%d weekstats=%d skipped=%d\n",
				report.Quarterbacks, report.Games, report.Users,
				report.Formations, report.WeekStats, len(report.Skipped))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Decode and report without writing")
	return cmd
}

func newStandingsCmd(opts *rootOptions) *cobra.Command {
	var quarterbacks bool

	cmd := &cobra.Command{
		Use:   "standings",
		Short: "Print the league table as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			var rows any
			if quarterbacks {
				rows, err = s.runtime.Rankings.QuarterbackTable(cmd.Context())
			} else {
				rows, err = s.runtime.Rankings.LeagueTable(cmd.Context())
			}
			if err != nil {
				return err
			}

			encoded, err := sonic.ConfigDefault.MarshalIndent(rows, "", "  ")
			if err != nil {
				return fmt.Errorf("encode standings: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return err
		},
	}
	cmd.Flags().BoolVar(&quarterbacks, "qbs", false, "Print the quarterback table instead")
	return cmd
}

func openSession(cmd *cobra.Command, opts *rootOptions) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.MetricsEnabled = false

	logger := newCLILogger(cmd.ErrOrStderr(), opts.verbose)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return &session{
		runtime: app.NewRuntime(cfg, store, logger),
		logger:  logger,
		close: func() {
			if err := store.Close(); err != nil {
				logger.Warn("store close failed", "error", err)
			}
			_ = logger.Sync()
		},
	}, nil
}

func newCLILogger(w io.Writer, verbose bool) *logging.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		level,
	)
	return logging.FromZap(zap.New(core))
}

func parseWeek(raw string) (int, error) {
	week, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || week <= 0 {
		return 0, fmt.Errorf("week must be a positive integer, got %q", raw)
	}
	return week, nil
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
