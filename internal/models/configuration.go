package models

import (
	"fmt"
	"strconv"
	"time"
)

// ConfigurationType tags how a stored setting value is parsed.
type ConfigurationType string

const (
	ConfigurationTypeString  ConfigurationType = "STRING"
	ConfigurationTypeBoolean ConfigurationType = "BOOLEAN"
	ConfigurationTypeInteger ConfigurationType = "INTEGER"
)

// Configuration is one key/value row of the settings store.
type Configuration struct {
	Key         string            `db:"key" json:"key"`
	Value       string            `db:"value" json:"value"`
	Type        ConfigurationType `db:"type" json:"type"`
	Description *string           `db:"description" json:"description,omitempty"`
	UpdatedBy   *string           `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}

// BoolSetting builds a BOOLEAN row.
func BoolSetting(key string, value bool) Configuration {
	return Configuration{Key: key, Value: strconv.FormatBool(value), Type: ConfigurationTypeBoolean}
}

// IntSetting builds an INTEGER row.
func IntSetting(key string, value int) Configuration {
	return Configuration{Key: key, Value: strconv.Itoa(value), Type: ConfigurationTypeInteger}
}

// Bool parses the value of a BOOLEAN row. Untyped rows are accepted.
func (c Configuration) Bool() (bool, error) {
	if c.Type != "" && c.Type != ConfigurationTypeBoolean {
		return false, fmt.Errorf("setting %s is %s, not %s", c.Key, c.Type, ConfigurationTypeBoolean)
	}
	return strconv.ParseBool(c.Value)
}

// Int parses the value of an INTEGER row. Untyped rows are accepted.
func (c Configuration) Int() (int, error) {
	if c.Type != "" && c.Type != ConfigurationTypeInteger {
		return 0, fmt.Errorf("setting %s is %s, not %s", c.Key, c.Type, ConfigurationTypeInteger)
	}
	return strconv.Atoi(c.Value)
}
