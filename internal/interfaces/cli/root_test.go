package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipfolio/patmaint/internal/config"
)

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	cmd := NewRootCommand()
	assert.Equal(t, "patmaint", cmd.Use)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("log-level"))

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"load", "run", "report", "migrate"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestReportSubcommands(t *testing.T) {
	t.Parallel()

	report := NewReportCmd(&RootOptions{})
	names := make(map[string]bool)
	for _, sub := range report.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["schedule"])
	assert.True(t, names["revenue"])
	assert.True(t, names["expiry"])
}

func TestExpiryRequiresWindowFlags(t *testing.T) {
	t.Parallel()

	cmd := newExpiryCmd(&RootOptions{})
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

func TestFeeScheduleFromConfig(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	schedule, err := feeScheduleFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 7, 11}, schedule.Offsets())
	assert.Equal(t, "USD", schedule.Currency())

	amount, err := schedule.AmountFor(7)
	require.NoError(t, err)
	assert.Equal(t, int64(404000), amount.Amount)
}

func TestFeeScheduleFromConfigRejectsDuplicates(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Pipeline.FeeTiers = append(cfg.Pipeline.FeeTiers, config.FeeTierConfig{OffsetYears: 3, AmountCents: 1})

	_, err := feeScheduleFromConfig(cfg)
	assert.Error(t, err)
}
