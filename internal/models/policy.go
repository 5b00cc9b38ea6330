package models

// TimeRestrictionPolicy blocks writes during a daily hour range.
type TimeRestrictionPolicy struct {
	Enabled           bool `json:"enabled"`
	BlockStartHour    int  `json:"block_start_hour"`
	BlockEndHour      int  `json:"block_end_hour"`
	BlockWeekdaysOnly bool `json:"block_weekdays_only"`
}

// DefaultTimeRestrictionPolicy blocks weekdays from 12:00 until 17:00.
func DefaultTimeRestrictionPolicy() TimeRestrictionPolicy {
	return TimeRestrictionPolicy{
		Enabled:           true,
		BlockStartHour:    12,
		BlockEndHour:      17,
		BlockWeekdaysOnly: true,
	}
}

// Malformed reports an enabled policy whose range is empty, inverted or off the clock.
func (p TimeRestrictionPolicy) Malformed() bool {
	return p.Enabled && (!p.HoursInRange() || p.BlockStartHour >= p.BlockEndHour)
}

// HoursInRange reports whether both hours are valid clock hours.
func (p TimeRestrictionPolicy) HoursInRange() bool {
	return p.BlockStartHour >= 0 && p.BlockStartHour <= 23 && p.BlockEndHour >= 0 && p.BlockEndHour <= 23
}
