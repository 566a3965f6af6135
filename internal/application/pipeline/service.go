// Package pipeline orchestrates the full normalization run: staged raw rows
// are grouped by patent number, collapsed into canonical patents with
// resolved references, and each new patent's maintenance obligations are
// derived in the same transactional unit.  The run is a batch, single-pass,
// single-writer transformation and is safe to repeat: re-running against an
// unchanged staging set changes nothing.
package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/ipfolio/patmaint/internal/domain/obligation"
	"github.com/ipfolio/patmaint/internal/domain/patent"
	"github.com/ipfolio/patmaint/internal/domain/staging"
	"github.com/ipfolio/patmaint/internal/infrastructure/monitoring/logging"
	"github.com/ipfolio/patmaint/pkg/errors"
)

// TxRunner executes fn as one atomic unit of work.  The postgres
// implementation opens a transaction and threads it through ctx; the
// in-memory test implementation just calls fn.
type TxRunner interface {
	InTx(ctx context.Context, fn func(context.Context) error) error
}

// Metrics receives per-run observations.  A nil Metrics is valid and
// disables recording.
type Metrics interface {
	ObserveRun(stats RunStats, duration time.Duration)
}

// RunStats summarizes one pipeline run.
type RunStats struct {
	RawRows          int64 `json:"raw_rows"`
	RowsWithoutKey   int   `json:"rows_without_key"`
	PatentsCreated   int   `json:"patents_created"`
	PatentsSkipped   int   `json:"patents_skipped"`
	DeadlinesCreated int   `json:"deadlines_created"`
	CostsCreated     int   `json:"costs_created"`
}

// Service runs the normalization pipeline.
type Service interface {
	Run(ctx context.Context) (*RunStats, error)
}

type service struct {
	stagingRepo staging.Repository
	patentRepo  patent.Repository
	collapser   patent.Collapser
	deriver     obligation.Deriver
	tx          TxRunner
	metrics     Metrics
	log         logging.Logger
}

// NewService wires the pipeline from its collaborators.  metrics may be nil.
func NewService(
	stagingRepo staging.Repository,
	patentRepo patent.Repository,
	collapser patent.Collapser,
	deriver obligation.Deriver,
	tx TxRunner,
	metrics Metrics,
	log logging.Logger,
) Service {
	return &service{
		stagingRepo: stagingRepo,
		patentRepo:  patentRepo,
		collapser:   collapser,
		deriver:     deriver,
		tx:          tx,
		metrics:     metrics,
		log:         log.Named("pipeline"),
	}
}

func (s *service) Run(ctx context.Context) (*RunStats, error) {
	started := time.Now()
	stats := &RunStats{}

	records, err := s.stagingRepo.ListAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "failed to read staging rows")
	}
	stats.RawRows = int64(len(records))

	groups, dropped := staging.GroupByPatentNumber(records)
	stats.RowsWithoutKey = dropped
	if dropped > 0 {
		s.log.Debug("dropped raw rows without patent number", logging.Int("rows", dropped))
	}

	existing, err := s.patentRepo.ListNumbers(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "failed to list collapsed patent numbers")
	}

	// Deterministic processing order; groups are independent, so order does
	// not affect the outcome, only log and id allocation order.
	numbers := make([]string, 0, len(groups))
	for number := range groups {
		numbers = append(numbers, number)
	}
	sort.Strings(numbers)

	for _, number := range numbers {
		if existing[number] {
			stats.PatentsSkipped++
			if err := s.healObligations(ctx, number, stats); err != nil {
				return nil, err
			}
			continue
		}

		if err := s.collapseAndDerive(ctx, groups[number], stats); err != nil {
			return nil, err
		}
	}

	elapsed := time.Since(started)
	s.log.Info("pipeline run complete",
		logging.Int64("raw_rows", stats.RawRows),
		logging.Int("rows_without_key", stats.RowsWithoutKey),
		logging.Int("patents_created", stats.PatentsCreated),
		logging.Int("patents_skipped", stats.PatentsSkipped),
		logging.Int("deadlines_created", stats.DeadlinesCreated),
		logging.Int("costs_created", stats.CostsCreated),
		logging.Duration("elapsed", elapsed),
	)
	if s.metrics != nil {
		s.metrics.ObserveRun(*stats, elapsed)
	}
	return stats, nil
}

// collapseAndDerive commits the full (patent, deadlines, costs) set for one
// new raw group, or none of it.  Reference resolution happens inside the
// collapse and is deliberately outside the rollback scope: reference rows
// are shared and append-only, so an orphaned client or jurisdiction from an
// aborted unit is harmless and reused on retry.
func (s *service) collapseAndDerive(ctx context.Context, group []*staging.RawRecord, stats *RunStats) error {
	p, err := s.collapser.Collapse(ctx, group)
	if err != nil {
		return err
	}

	return s.tx.InTx(ctx, func(txCtx context.Context) error {
		if err := s.patentRepo.Create(txCtx, p); err != nil {
			// Another writer collapsed this number between our existence
			// check and the insert.  Already-exists means done.
			if errors.IsConflict(err) {
				stats.PatentsSkipped++
				return nil
			}
			return err
		}
		stats.PatentsCreated++

		deadlines, costs, err := s.deriver.Derive(txCtx, p)
		if err != nil {
			return err
		}
		stats.DeadlinesCreated += len(deadlines)
		stats.CostsCreated += len(costs)
		return nil
	})
}

// healObligations re-derives obligations for an already-collapsed patent.
// This is a no-op on a clean store; it covers a previous run that was
// interrupted between its existence check and commit under a weaker
// isolation setup, and patents whose grant year was present but whose
// derivation never ran.
func (s *service) healObligations(ctx context.Context, number string, stats *RunStats) error {
	p, err := s.patentRepo.GetByNumber(ctx, number)
	if err != nil {
		return err
	}

	return s.tx.InTx(ctx, func(txCtx context.Context) error {
		deadlines, costs, err := s.deriver.Derive(txCtx, p)
		if err != nil {
			return err
		}
		stats.DeadlinesCreated += len(deadlines)
		stats.CostsCreated += len(costs)
		return nil
	})
}
