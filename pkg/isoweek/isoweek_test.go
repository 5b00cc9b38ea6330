package isoweek

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOfYearBoundaries(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		year int
		week int
	}{
		{"dec 31 2024 belongs to next year", date(2024, time.December, 31), 2025, 1},
		{"jan 1 2023 belongs to previous year", date(2023, time.January, 1), 2022, 52},
		{"dec 29 2024 sunday", date(2024, time.December, 29), 2024, 52},
		{"dec 30 2024 monday", date(2024, time.December, 30), 2025, 1},
		{"jan 3 2021 in week 53 of 2020", date(2021, time.January, 3), 2020, 53},
		{"jan 1 2021 friday", date(2021, time.January, 1), 2020, 53},
		{"jan 4 2021 monday", date(2021, time.January, 4), 2021, 1},
		{"dec 31 2020 leap year thursday", date(2020, time.December, 31), 2020, 53},
		{"dec 29 2025", date(2025, time.December, 29), 2026, 1},
		{"jan 1 2026 thursday", date(2026, time.January, 1), 2026, 1},
		{"jan 2 2022 sunday", date(2022, time.January, 2), 2021, 52},
		{"jan 3 2022 monday", date(2022, time.January, 3), 2022, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			year, week := Of(tc.in)
			assert.Equal(t, tc.year, year)
			assert.Equal(t, tc.week, week)
		})
	}
}

func TestOfIgnoresTimeOfDay(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Amsterdam")
	require.NoError(t, err)
	early := time.Date(2025, time.March, 9, 0, 0, 1, 0, loc)
	late := time.Date(2025, time.March, 9, 23, 59, 59, 0, loc)
	y1, w1 := Of(early)
	y2, w2 := Of(late)
	assert.Equal(t, y1, y2)
	assert.Equal(t, w1, w2)
	assert.Equal(t, 10, w1)
}

func TestOfMatchesStandardLibrary(t *testing.T) {
	day := date(1999, time.December, 1)
	end := date(2041, time.January, 31)
	for !day.After(end) {
		wantYear, wantWeek := day.ISOWeek()
		year, week := Of(day)
		if year != wantYear || week != wantWeek {
			t.Fatalf("%s: got %d-W%02d want %d-W%02d", day.Format("2006-01-02"), year, week, wantYear, wantWeek)
		}
		day = day.AddDate(0, 0, 1)
	}
}

func TestMondayInverse(t *testing.T) {
	for year := 2000; year <= 2040; year++ {
		for week := 1; week <= WeeksInYear(year); week++ {
			monday := Monday(year, week, time.UTC)
			require.Equal(t, time.Monday, monday.Weekday())
			gotYear, gotWeek := Of(monday)
			require.Equal(t, year, gotYear, "week %d", week)
			require.Equal(t, week, gotWeek, "year %d", year)
		}
	}
}

func TestMondayKnownValues(t *testing.T) {
	assert.Equal(t, date(2024, time.December, 30), Monday(2025, 1, time.UTC))
	assert.Equal(t, date(2025, time.March, 3), Monday(2025, 10, time.UTC))
	assert.Equal(t, date(2020, time.December, 28), Monday(2020, 53, time.UTC))
	assert.Equal(t, date(2023, time.January, 2), Monday(2023, 1, time.UTC))
}

func TestWeeksInYear(t *testing.T) {
	assert.Equal(t, 53, WeeksInYear(2020))
	assert.Equal(t, 52, WeeksInYear(2021))
	assert.Equal(t, 52, WeeksInYear(2024))
	assert.Equal(t, 53, WeeksInYear(2026))
	assert.True(t, Valid(2026, 53))
	assert.False(t, Valid(2025, 53))
	assert.False(t, Valid(2025, 0))
}

func TestCompare(t *testing.T) {
	assert.Equal(t, -1, Compare(2024, 52, 2025, 1))
	assert.Equal(t, 1, Compare(2025, 11, 2025, 10))
	assert.Equal(t, 0, Compare(2025, 10, 2025, 10))
	assert.Equal(t, -1, Compare(2020, 53, 2021, 1))
}
