package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGenerateTimeline_MonthCoversWholeMonth(t *testing.T) {
	refs := []time.Time{
		day(2024, time.February, 15), // leap year
		day(2023, time.February, 1),
		day(2024, time.April, 30),
		day(2024, time.December, 31),
		time.Date(2024, time.July, 4, 18, 30, 0, 0, time.UTC),
	}

	for _, ref := range refs {
		days := GenerateTimeline(ref, ViewMonth)
		require.Len(t, days, DaysInMonth(ref.Year(), ref.Month()), ref.String())

		assert.Equal(t, 1, days[0].Day())
		for i := 1; i < len(days); i++ {
			assert.Equal(t, 1, DaysBetween(days[i-1], days[i]), "gap at %d", i)
			assert.Equal(t, ref.Month(), days[i].Month())
		}
	}
}

func TestGenerateTimeline_WeekIsFifteenDaysCentered(t *testing.T) {
	ref := time.Date(2024, time.March, 1, 15, 0, 0, 0, time.UTC)
	days := GenerateTimeline(ref, ViewWeek)

	require.Len(t, days, 15)
	assert.Equal(t, day(2024, time.February, 23), days[0])
	assert.Equal(t, day(2024, time.March, 1), days[7])
	assert.Equal(t, day(2024, time.March, 8), days[14])
	for i := 1; i < len(days); i++ {
		assert.Equal(t, 1, DaysBetween(days[i-1], days[i]))
	}
}

func TestGenerateTimeline_AcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	ref := time.Date(2024, time.March, 10, 12, 0, 0, 0, loc)

	days := GenerateTimeline(ref, ViewWeek)
	require.Len(t, days, 15)
	for i := 1; i < len(days); i++ {
		assert.Equal(t, 1, DaysBetween(days[i-1], days[i]))
		assert.Equal(t, 0, days[i].Hour())
	}
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(day(2024, 1, 1), time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, 31, DaysBetween(day(2024, 1, 1), day(2024, 2, 1)))
	assert.Equal(t, -1, DaysBetween(day(2024, 1, 2), day(2024, 1, 1)))
	assert.Equal(t, 366, DaysBetween(day(2024, 1, 1), day(2025, 1, 1)))
}

func TestShift(t *testing.T) {
	assert.Equal(t, day(2024, 1, 8), Shift(day(2024, 1, 1), ViewWeek, 1))
	assert.Equal(t, day(2023, 12, 25), Shift(day(2024, 1, 1), ViewWeek, -1))
	assert.Equal(t, day(2024, 2, 29), Shift(day(2024, 1, 31), ViewMonth, 1))
	assert.Equal(t, day(2023, 12, 31), Shift(day(2024, 1, 31), ViewMonth, -1))
	assert.Equal(t, day(2024, 1, 5), Shift(day(2024, 1, 5), ViewMonth, 0))
}

func TestParseViewModeAndColumnWidth(t *testing.T) {
	assert.Equal(t, ViewMonth, ParseViewMode("month"))
	assert.Equal(t, ViewWeek, ParseViewMode("week"))
	assert.Equal(t, ViewWeek, ParseViewMode("bogus"))
	assert.Greater(t, ColumnWidth(ViewWeek), ColumnWidth(ViewMonth))
}
