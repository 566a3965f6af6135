// Package testutil provides in-memory implementations of the persistence
// contracts for unit tests.  The Store satisfies every repository interface
// plus the reporting.Reporter contract, with the same semantics the SQL
// implementations enforce through constraints: unique natural keys,
// insert-if-absent reference resolution, and conflict on duplicate patent
// numbers.
package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ipfolio/patmaint/internal/domain/obligation"
	"github.com/ipfolio/patmaint/internal/domain/patent"
	"github.com/ipfolio/patmaint/internal/domain/reference"
	"github.com/ipfolio/patmaint/internal/domain/reporting"
	"github.com/ipfolio/patmaint/internal/domain/staging"
	"github.com/ipfolio/patmaint/pkg/errors"
)

// Store is a mutex-guarded in-memory database.  The single mutex mirrors
// the serialize-creation requirement of the reference resolver; all
// operations are safe for concurrent use.
type Store struct {
	mu sync.Mutex

	raw []*staging.RawRecord

	clientsByName map[string]*reference.Client
	clientsByID   map[uuid.UUID]*reference.Client

	jurisdictionsByCode map[string]*reference.Jurisdiction
	jurisdictionsByID   map[uuid.UUID]*reference.Jurisdiction

	patentsByNumber map[string]*patent.Patent
	patentsByID     map[uuid.UUID]*patent.Patent

	deadlines []*obligation.Deadline
	costs     []*obligation.Cost

	// ExpiryTermYears is the statutory term used by ExpiringPatents.
	ExpiryTermYears int
}

// NewStore returns an empty Store with the standard 20-year term.
func NewStore() *Store {
	return &Store{
		clientsByName:       make(map[string]*reference.Client),
		clientsByID:         make(map[uuid.UUID]*reference.Client),
		jurisdictionsByCode: make(map[string]*reference.Jurisdiction),
		jurisdictionsByID:   make(map[uuid.UUID]*reference.Jurisdiction),
		patentsByNumber:     make(map[string]*patent.Patent),
		patentsByID:         make(map[uuid.UUID]*patent.Patent),
		ExpiryTermYears:     20,
	}
}

// InTx satisfies the pipeline's transaction-runner contract.  The in-memory
// store is single-writer in tests, so the unit of work is just the
// function call.
func (s *Store) InTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// ── staging.Repository ──────────────────────────────────────────────────────

func (s *Store) BulkInsert(_ context.Context, records []*staging.RawRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = append(s.raw, records...)
	return nil
}

func (s *Store) ListAll(_ context.Context) ([]*staging.RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*staging.RawRecord, len(s.raw))
	copy(out, s.raw)
	return out, nil
}

func (s *Store) CountAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.raw)), nil
}

// ── reference.Repository ────────────────────────────────────────────────────

func (s *Store) GetOrCreateClient(_ context.Context, candidate *reference.Client) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.clientsByName[candidate.Name]; ok {
		return existing.ID, nil
	}
	s.clientsByName[candidate.Name] = candidate
	s.clientsByID[candidate.ID] = candidate
	return candidate.ID, nil
}

func (s *Store) GetOrCreateJurisdiction(_ context.Context, candidate *reference.Jurisdiction) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.jurisdictionsByCode[candidate.Code]; ok {
		return existing.ID, nil
	}
	s.jurisdictionsByCode[candidate.Code] = candidate
	s.jurisdictionsByID[candidate.ID] = candidate
	return candidate.ID, nil
}

func (s *Store) GetJurisdiction(_ context.Context, id uuid.UUID) (*reference.Jurisdiction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jurisdictionsByID[id]
	if !ok {
		return nil, errors.NotFound("jurisdiction not found")
	}
	return j, nil
}

func (s *Store) CountClients(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.clientsByName)), nil
}

func (s *Store) CountJurisdictions(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.jurisdictionsByCode)), nil
}

// ── patent.Repository ───────────────────────────────────────────────────────

func (s *Store) Create(_ context.Context, p *patent.Patent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.patentsByNumber[p.PatentNumber]; ok {
		return errors.New(errors.ErrCodePatentExists, "patent number already exists").
			WithDetail(p.PatentNumber)
	}
	s.patentsByNumber[p.PatentNumber] = p
	s.patentsByID[p.ID] = p
	return nil
}

func (s *Store) GetByID(_ context.Context, id uuid.UUID) (*patent.Patent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.patentsByID[id]
	if !ok {
		return nil, errors.New(errors.ErrCodePatentNotFound, "patent not found")
	}
	return p, nil
}

func (s *Store) GetByNumber(_ context.Context, patentNumber string) (*patent.Patent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.patentsByNumber[patentNumber]
	if !ok {
		return nil, errors.New(errors.ErrCodePatentNotFound, "patent not found").
			WithDetail(patentNumber)
	}
	return p, nil
}

func (s *Store) ListNumbers(_ context.Context) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool, len(s.patentsByNumber))
	for number := range s.patentsByNumber {
		out[number] = true
	}
	return out, nil
}

func (s *Store) List(_ context.Context) ([]*patent.Patent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*patent.Patent, 0, len(s.patentsByNumber))
	for _, p := range s.patentsByNumber {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PatentNumber < out[j].PatentNumber })
	return out, nil
}

func (s *Store) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.patentsByNumber)), nil
}

// ── obligation.Repository ───────────────────────────────────────────────────

func (s *Store) HasDeadlines(_ context.Context, assetID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.deadlines {
		if d.AssetID == assetID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateDeadline(_ context.Context, d *obligation.Deadline) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deadlines = append(s.deadlines, d)
	return nil
}

func (s *Store) CreateCost(_ context.Context, c *obligation.Cost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.costs = append(s.costs, c)
	return nil
}

func (s *Store) ListDeadlinesByAsset(_ context.Context, assetID uuid.UUID) ([]*obligation.Deadline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*obligation.Deadline
	for _, d := range s.deadlines {
		if d.AssetID == assetID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueYear < out[j].DueYear })
	return out, nil
}

func (s *Store) ListCostsByAsset(_ context.Context, assetID uuid.UUID) ([]*obligation.Cost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*obligation.Cost
	for _, c := range s.costs {
		if c.AssetID == assetID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueYear < out[j].DueYear })
	return out, nil
}

func (s *Store) CountDeadlines(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.deadlines)), nil
}

func (s *Store) CountCosts(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.costs)), nil
}

// ── reporting.Reporter ──────────────────────────────────────────────────────

func (s *Store) MaintenanceSchedule(_ context.Context) ([]reporting.ScheduleRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []reporting.ScheduleRow
	for _, d := range s.deadlines {
		p, ok := s.patentsByID[d.AssetID]
		if !ok {
			continue
		}
		rows = append(rows, reporting.ScheduleRow{
			PatentNumber: p.PatentNumber,
			Title:        p.Title,
			GrantYear:    p.GrantYear,
			DeadlineType: d.Type,
			DueYear:      d.DueYear,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PatentNumber != rows[j].PatentNumber {
			return rows[i].PatentNumber < rows[j].PatentNumber
		}
		return rows[i].DueYear < rows[j].DueYear
	})
	return rows, nil
}

func (s *Store) RevenueForecast(_ context.Context) ([]reporting.RevenueRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type key struct {
		year  int
		label string
	}
	totals := make(map[key]int64)
	currencies := make(map[key]string)
	for _, c := range s.costs {
		label := reporting.UnknownJurisdictionLabel
		if c.JurisdictionID != nil {
			if j, ok := s.jurisdictionsByID[*c.JurisdictionID]; ok && j.DisplayName != "" {
				label = j.DisplayName
			}
		}
		k := key{year: c.DueYear, label: label}
		totals[k] += c.Amount.Amount
		currencies[k] = c.Amount.Currency
	}

	rows := make([]reporting.RevenueRow, 0, len(totals))
	for k, total := range totals {
		rows = append(rows, reporting.RevenueRow{
			DueYear:           k.year,
			JurisdictionLabel: k.label,
			TotalCents:        total,
			Currency:          currencies[k],
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DueYear != rows[j].DueYear {
			return rows[i].DueYear < rows[j].DueYear
		}
		return rows[i].TotalCents > rows[j].TotalCents
	})
	return rows, nil
}

func (s *Store) ExpiringPatents(_ context.Context, startYear, endYear int) ([]reporting.ExpiryRow, error) {
	if err := reporting.ValidateWindow(startYear, endYear); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []reporting.ExpiryRow
	for _, p := range s.patentsByNumber {
		if p.FilingYear == nil {
			continue
		}
		expiry := *p.FilingYear + s.ExpiryTermYears
		if expiry < startYear || expiry > endYear {
			continue
		}
		row := reporting.ExpiryRow{
			PatentNumber: p.PatentNumber,
			Title:        p.Title,
			FilingYear:   *p.FilingYear,
			ExpiryYear:   expiry,
		}
		if p.ClientID != nil {
			if c, ok := s.clientsByID[*p.ClientID]; ok {
				row.ClientName = c.Name
			}
		}
		if p.JurisdictionID != nil {
			if j, ok := s.jurisdictionsByID[*p.JurisdictionID]; ok {
				row.JurisdictionName = j.DisplayName
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ExpiryYear != rows[j].ExpiryYear {
			return rows[i].ExpiryYear < rows[j].ExpiryYear
		}
		return rows[i].PatentNumber < rows[j].PatentNumber
	})
	return rows, nil
}
