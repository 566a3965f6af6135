package obligation

import (
	"fmt"
	"sort"

	"github.com/ipfolio/patmaint/pkg/errors"
)

// FeeTier is one entry of a maintenance-fee schedule: a year offset from
// the grant year and the amount charged at that offset, in minor units.
type FeeTier struct {
	OffsetYears int
	AmountCents int64
}

// FeeSchedule maps year offsets to maintenance-fee amounts.  It is
// replaceable configuration data rather than inlined constants; a real
// schedule would be parameterized by jurisdiction and year, and the single
// flat table here is a deliberate stand-in for that.
type FeeSchedule struct {
	offsets  []int
	amounts  map[int]int64
	currency string
}

// NewFeeSchedule builds a schedule from tiers.  Offsets are kept in
// ascending order regardless of input order so that derivation emits
// deadlines deterministically.
func NewFeeSchedule(tiers []FeeTier, currency string) (*FeeSchedule, error) {
	if len(tiers) == 0 {
		return nil, errors.InvalidParam("fee schedule requires at least one tier")
	}
	if currency == "" {
		return nil, errors.InvalidParam("fee schedule requires a currency")
	}

	s := &FeeSchedule{
		offsets:  make([]int, 0, len(tiers)),
		amounts:  make(map[int]int64, len(tiers)),
		currency: currency,
	}
	for _, t := range tiers {
		if t.OffsetYears < 1 {
			return nil, errors.InvalidParam(fmt.Sprintf("fee tier offset %d must be >= 1", t.OffsetYears))
		}
		if t.AmountCents < 0 {
			return nil, errors.InvalidParam(fmt.Sprintf("fee tier amount %d must be >= 0", t.AmountCents))
		}
		if _, dup := s.amounts[t.OffsetYears]; dup {
			return nil, errors.InvalidParam(fmt.Sprintf("duplicate fee tier offset %d", t.OffsetYears))
		}
		s.offsets = append(s.offsets, t.OffsetYears)
		s.amounts[t.OffsetYears] = t.AmountCents
	}
	sort.Ints(s.offsets)
	return s, nil
}

// DefaultFeeSchedule returns the standard USD schedule: 2150.00 at +3,
// 4040.00 at +7, 8280.00 at +11.
func DefaultFeeSchedule() *FeeSchedule {
	s, err := NewFeeSchedule([]FeeTier{
		{OffsetYears: 3, AmountCents: 215000},
		{OffsetYears: 7, AmountCents: 404000},
		{OffsetYears: 11, AmountCents: 828000},
	}, "USD")
	if err != nil {
		// The literal tiers above are statically valid.
		panic(err)
	}
	return s
}

// Offsets returns the schedule's year offsets in ascending order.
func (s *FeeSchedule) Offsets() []int {
	out := make([]int, len(s.offsets))
	copy(out, s.offsets)
	return out
}

// AmountFor returns the fee for a given offset.
func (s *FeeSchedule) AmountFor(offsetYears int) (Money, error) {
	cents, ok := s.amounts[offsetYears]
	if !ok {
		return Money{}, errors.New(errors.ErrCodeUnknownFeeOffset,
			fmt.Sprintf("no fee configured for offset %d", offsetYears))
	}
	return NewMoney(cents, s.currency), nil
}

// Currency returns the schedule's currency code.
func (s *FeeSchedule) Currency() string {
	return s.currency
}

// DeadlineTypeFor returns the deadline type label for an offset, e.g.
// "3-year maintenance fee".
func DeadlineTypeFor(offsetYears int) string {
	return fmt.Sprintf("%d-year maintenance fee", offsetYears)
}
