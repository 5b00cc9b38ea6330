package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurationTypedValues(t *testing.T) {
	enabled := BoolSetting("time_restriction_enabled", true)
	assert.Equal(t, ConfigurationTypeBoolean, enabled.Type)
	v, err := enabled.Bool()
	require.NoError(t, err)
	assert.True(t, v)

	hour := IntSetting("time_restriction_start_hour", 8)
	assert.Equal(t, "8", hour.Value)
	n, err := hour.Int()
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	_, err = hour.Bool()
	assert.Error(t, err)

	untyped := Configuration{Key: "time_restriction_end_hour", Value: "12"}
	n, err = untyped.Int()
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}
