package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "Europe/Amsterdam", cfg.Location.String())
	assert.True(t, cfg.TimeRestriction.Enabled)
	assert.Equal(t, 12, cfg.TimeRestriction.BlockStartHour)
	assert.Equal(t, 17, cfg.TimeRestriction.BlockEndHour)
	assert.True(t, cfg.TimeRestriction.BlockWeekdaysOnly)
	assert.Equal(t, 15*time.Minute, cfg.Sweep.Interval)
	assert.False(t, cfg.Submissions.LockArchived)
	assert.Equal(t, ",", cfg.Export.CSVDelimiter)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("TIME_RESTRICTION_START_HOUR", "8")
	t.Setenv("TIME_RESTRICTION_END_HOUR", "10")
	t.Setenv("TIME_RESTRICTION_WEEKDAYS_ONLY", "false")
	t.Setenv("ARCHIVE_SWEEP_INTERVAL", "not-a-duration")
	t.Setenv("SUBMISSIONS_LOCK_ARCHIVED", "true")
	t.Setenv("EXPORT_CSV_DELIMITER", ";")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, 8, cfg.TimeRestriction.BlockStartHour)
	assert.Equal(t, 10, cfg.TimeRestriction.BlockEndHour)
	assert.False(t, cfg.TimeRestriction.BlockWeekdaysOnly)
	assert.Equal(t, 15*time.Minute, cfg.Sweep.Interval)
	assert.True(t, cfg.Submissions.LockArchived)
	assert.Equal(t, ";", cfg.Export.CSVDelimiter)
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "Mars/Olympus_Mons")
	_, err := Load()
	require.Error(t, err)
}
