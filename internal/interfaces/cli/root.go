// Package cli implements the patmaint command tree: staging loads, the
// transformation run, migrations, and the three reports.
package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ipfolio/patmaint/internal/application/pipeline"
	"github.com/ipfolio/patmaint/internal/config"
	"github.com/ipfolio/patmaint/internal/domain/obligation"
	"github.com/ipfolio/patmaint/internal/domain/patent"
	"github.com/ipfolio/patmaint/internal/domain/reference"
	"github.com/ipfolio/patmaint/internal/domain/reporting"
	"github.com/ipfolio/patmaint/internal/domain/staging"
	"github.com/ipfolio/patmaint/internal/infrastructure/database/postgres"
	"github.com/ipfolio/patmaint/internal/infrastructure/database/postgres/repositories"
	"github.com/ipfolio/patmaint/internal/infrastructure/monitoring/logging"
	"github.com/ipfolio/patmaint/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds the global CLI flags.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
}

// app carries the initialized dependencies of one command invocation.
type app struct {
	cfg  *config.Config
	log  logging.Logger
	conn *postgres.Connection

	stagingRepo staging.Repository
	patentRepo  patent.Repository
	refRepo     reference.Repository
	oblRepo     obligation.Repository
	reporter    reporting.Reporter
	tx          *postgres.TxManager
}

// close releases the database connection.
func (a *app) close() {
	if a.conn != nil {
		_ = a.conn.Close()
	}
}

// pipelineService assembles the full transformation service over the
// app's repositories.
func (a *app) pipelineService() (pipeline.Service, error) {
	schedule, err := feeScheduleFromConfig(a.cfg)
	if err != nil {
		return nil, err
	}
	resolver := reference.NewResolver(a.refRepo, a.log)
	collapser := patent.NewCollapser(resolver, a.log)
	deriver := obligation.NewDeriver(a.oblRepo, schedule, a.log)
	return pipeline.NewService(a.stagingRepo, a.patentRepo, collapser, deriver, a.tx, nil, a.log), nil
}

// feeScheduleFromConfig builds the fee schedule from the configured tiers.
func feeScheduleFromConfig(cfg *config.Config) (*obligation.FeeSchedule, error) {
	tiers := make([]obligation.FeeTier, 0, len(cfg.Pipeline.FeeTiers))
	for _, t := range cfg.Pipeline.FeeTiers {
		tiers = append(tiers, obligation.FeeTier{
			OffsetYears: t.OffsetYears,
			AmountCents: t.AmountCents,
		})
	}
	return obligation.NewFeeSchedule(tiers, cfg.Pipeline.FeeCurrency)
}

// defaultConfigFile is consulted when --config is not given.
const defaultConfigFile = "patmaint.yaml"

// loadConfig resolves configuration from, in order: the explicit --config
// path, ./patmaint.yaml if present, and finally PATMAINT_* environment
// variables alone.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return config.Load(defaultConfigFile)
	}
	return config.LoadFromEnv()
}

// buildApp loads config, initializes logging, and connects to the
// database.
func buildApp(opts *RootOptions) (*app, error) {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	log, err := logging.NewLogger(logging.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, err
	}

	conn, err := postgres.NewConnection(cfg.Database, log)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:         cfg,
		log:         log,
		conn:        conn,
		stagingRepo: repositories.NewStagingRepo(conn, log),
		patentRepo:  repositories.NewPatentRepo(conn, log),
		refRepo:     repositories.NewReferenceRepo(conn, log),
		oblRepo:     repositories.NewObligationRepo(conn, log),
		reporter:    repositories.NewReporter(conn, cfg.Pipeline.ExpiryTermYears, log),
		tx:          postgres.NewTxManager(conn, log),
	}, nil
}

// NewRootCommand creates the root command with global flags and all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "patmaint",
		Short:   "Patent maintenance-fee normalization and reporting",
		Long:    "patmaint loads raw patent exports, collapses them into a normalized\nmodel, derives maintenance deadlines and fees, and answers schedule,\nrevenue, and expiry questions over the result.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./patmaint.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")

	cmd.AddCommand(
		NewLoadCmd(opts),
		NewRunCmd(opts),
		NewReportCmd(opts),
		NewMigrateCmd(opts),
	)
	return cmd
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		if code := errors.GetCode(err); code != errors.CodeUnknown && code != errors.CodeOK {
			fmt.Fprintf(os.Stderr, "Code: %s\n", code)
		}
		os.Exit(1)
	}
}

// newTable returns a tabwriter on the command's stdout for aligned
// columnar output.
func newTable(cmd *cobra.Command) *tabwriter.Writer {
	return tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
}
