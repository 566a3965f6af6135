package obligation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipfolio/patmaint/internal/domain/obligation"
)

func TestDefaultFeeSchedule(t *testing.T) {
	t.Parallel()

	s := obligation.DefaultFeeSchedule()

	assert.Equal(t, []int{3, 7, 11}, s.Offsets())
	assert.Equal(t, "USD", s.Currency())

	cases := []struct {
		offset int
		cents  int64
	}{
		{3, 215000},
		{7, 404000},
		{11, 828000},
	}
	for _, tc := range cases {
		amount, err := s.AmountFor(tc.offset)
		require.NoError(t, err)
		assert.Equal(t, tc.cents, amount.Amount)
		assert.Equal(t, "USD", amount.Currency)
	}
}

func TestFeeSchedule_UnknownOffset(t *testing.T) {
	t.Parallel()

	_, err := obligation.DefaultFeeSchedule().AmountFor(5)
	require.Error(t, err)
}

func TestNewFeeSchedule_SortsOffsets(t *testing.T) {
	t.Parallel()

	s, err := obligation.NewFeeSchedule([]obligation.FeeTier{
		{OffsetYears: 11, AmountCents: 3},
		{OffsetYears: 3, AmountCents: 1},
		{OffsetYears: 7, AmountCents: 2},
	}, "USD")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 7, 11}, s.Offsets())
}

func TestNewFeeSchedule_Invalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		tiers    []obligation.FeeTier
		currency string
	}{
		{"no tiers", nil, "USD"},
		{"no currency", []obligation.FeeTier{{OffsetYears: 3, AmountCents: 1}}, ""},
		{"zero offset", []obligation.FeeTier{{OffsetYears: 0, AmountCents: 1}}, "USD"},
		{"negative amount", []obligation.FeeTier{{OffsetYears: 3, AmountCents: -1}}, "USD"},
		{"duplicate offset", []obligation.FeeTier{
			{OffsetYears: 3, AmountCents: 1},
			{OffsetYears: 3, AmountCents: 2},
		}, "USD"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := obligation.NewFeeSchedule(tc.tiers, tc.currency)
			require.Error(t, err)
		})
	}
}

func TestDeadlineTypeFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "3-year maintenance fee", obligation.DeadlineTypeFor(3))
	assert.Equal(t, "11-year maintenance fee", obligation.DeadlineTypeFor(11))
}

func TestMoney(t *testing.T) {
	t.Parallel()

	m := obligation.NewMoney(215000, "USD")
	assert.InDelta(t, 2150.00, m.ToFloat64(), 0.001)
	assert.Equal(t, "2150.00 USD", m.String())

	sum, err := m.Add(obligation.NewMoney(404000, "USD"))
	require.NoError(t, err)
	assert.Equal(t, int64(619000), sum.Amount)

	_, err = m.Add(obligation.NewMoney(1, "EUR"))
	require.Error(t, err)

	require.NoError(t, m.Validate())
	require.Error(t, obligation.NewMoney(-1, "USD").Validate())
	require.Error(t, obligation.NewMoney(1, "").Validate())
}
