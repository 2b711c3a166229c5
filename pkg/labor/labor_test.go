package labor

import (
	"math"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute, second int) time.Time {
	return time.Date(2025, time.March, 10, hour, minute, second, 0, time.UTC)
}

func TestRoundToQuarter(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"вниз до часа", at(9, 7, 0), at(9, 0, 0)},
		{"вверх до 15", at(9, 8, 0), at(9, 15, 0)},
		{"ровно 30", at(9, 30, 0), at(9, 30, 0)},
		{"22 минуты", at(13, 22, 0), at(13, 15, 0)},
		{"секунды отбрасываются", at(13, 22, 59), at(13, 15, 0)},
		{"перенос на следующий час", at(9, 53, 0), at(10, 0, 0)},
		{"52 минуты", at(9, 52, 0), at(9, 45, 0)},
		{"перенос через полночь", time.Date(2025, time.December, 31, 23, 58, 0, 0, time.UTC), time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.want.Equal(RoundToQuarter(tc.in)), "got %s", RoundToQuarter(tc.in))
		})
	}
}

func TestRoundToQuarter_Idempotent(t *testing.T) {
	base := at(0, 0, 0)
	for m := 0; m < 24*60; m += 7 {
		once := RoundToQuarter(base.Add(time.Duration(m)*time.Minute + 13*time.Second))
		assert.True(t, once.Equal(RoundToQuarter(once)), "minute offset %d", m)
		assert.Zero(t, once.Minute()%QuarterMinutes)
		assert.Zero(t, once.Second())
	}
}

func TestRoundToQuarter_KeepsLocation(t *testing.T) {
	// Зона со смещением +05:30: округляются минуты местных часов.
	loc := time.FixedZone("IST", 5*3600+30*60)
	in := time.Date(2025, time.March, 10, 9, 7, 0, 0, loc)
	out := RoundToQuarter(in)

	assert.Equal(t, loc, out.Location())
	assert.Equal(t, 9, out.Hour())
	assert.Equal(t, 0, out.Minute())
}

func TestRoundToQuarter_DaylightSaving(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	utc := func(month time.Month, day, hour, minute int) time.Time {
		return time.Date(2025, month, day, hour, minute, 0, 0, time.UTC)
	}

	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		// 2 ноября 2025 час 01:00-02:00 проходит дважды: сначала EDT, затем EST
		{"первый 01:40 (EDT)", utc(time.November, 2, 5, 40), utc(time.November, 2, 5, 45)},
		{"второй 01:40 (EST)", utc(time.November, 2, 6, 40), utc(time.November, 2, 6, 45)},
		{"второй 01:07 (EST)", utc(time.November, 2, 6, 7), utc(time.November, 2, 6, 0)},
		{"перенос из EDT в EST", utc(time.November, 2, 5, 55), utc(time.November, 2, 6, 0)},
		// 9 марта 2025 после 01:59 EST сразу 03:00 EDT
		{"01:58 EST в 03:00 EDT", utc(time.March, 9, 6, 58), utc(time.March, 9, 7, 0)},
		{"03:07 EDT", utc(time.March, 9, 7, 7), utc(time.March, 9, 7, 0)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RoundToQuarter(tc.in.In(ny))
			assert.True(t, tc.want.Equal(got), "got %s (%s)", got, got.UTC())
			assert.LessOrEqual(t, got.Sub(tc.in).Abs(), 8*time.Minute)
		})
	}
}

func TestClose_DaylightSaving(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Сессия 01:45 EDT - 01:40 EST длится час реального времени
	start := RoundToQuarter(time.Date(2025, time.November, 2, 5, 40, 0, 0, time.UTC).In(ny))
	totals := Close(start, time.Date(2025, time.November, 2, 6, 40, 0, 0, time.UTC).In(ny), 0, 40, false)

	assert.Equal(t, 1.0, totals.TotalHours)
	assert.Equal(t, 40.0, totals.TotalCost)

	// Через переход на летнее время: 01:30 EST - 03:15 EDT это 45 минут
	start = RoundToQuarter(time.Date(2025, time.March, 9, 6, 30, 0, 0, time.UTC).In(ny))
	totals = Close(start, time.Date(2025, time.March, 9, 7, 15, 0, 0, time.UTC).In(ny), 0, 40, false)
	assert.Equal(t, 0.75, totals.TotalHours)
}

func TestBillableHours(t *testing.T) {
	t.Run("сценарий с перерывом", func(t *testing.T) {
		assert.Equal(t, 3.75, BillableHours(at(9, 0, 0), at(13, 15, 0), 30))
	})

	t.Run("перерыв больше длительности", func(t *testing.T) {
		assert.Equal(t, 0.0, BillableHours(at(9, 0, 0), at(9, 30, 0), 60))
	})

	t.Run("всегда неотрицательно и кратно четверти", func(t *testing.T) {
		start := at(8, 0, 0)
		for endMin := 0; endMin <= 600; endMin += 15 {
			for br := 0; br <= 120; br += 15 {
				h := BillableHours(start, start.Add(time.Duration(endMin)*time.Minute), br)
				require.GreaterOrEqual(t, h, 0.0)
				assert.Zero(t, math.Mod(h*4, 1), "hours %v", h)
			}
		}
	})
}

func TestRoundHours(t *testing.T) {
	assert.Equal(t, 1.25, RoundHours(1.2))
	assert.Equal(t, 1.0, RoundHours(1.1))
	assert.Equal(t, 2.5, RoundHours(2.4))
	assert.Equal(t, 0.0, RoundHours(0))
}

func TestCost(t *testing.T) {
	assert.Equal(t, 150.0, Cost(3.75, 40, false))
	assert.Equal(t, 225.0, Cost(3.75, 40, true))
	assert.Equal(t, 0.0, Cost(0, 40, true))
}

func TestIsValidBreak(t *testing.T) {
	assert.True(t, IsValidBreak(0))
	assert.True(t, IsValidBreak(45))
	assert.False(t, IsValidBreak(10))
	assert.False(t, IsValidBreak(-15))
}

func TestClose(t *testing.T) {
	t.Run("полный сценарий", func(t *testing.T) {
		start := RoundToQuarter(at(9, 7, 0))
		totals := Close(start, at(13, 22, 0), 30, 40, false)

		assert.True(t, at(13, 15, 0).Equal(totals.End))
		assert.Equal(t, 3.75, totals.TotalHours)
		assert.Equal(t, 150.0, totals.TotalCost)
	})

	t.Run("сверхурочные", func(t *testing.T) {
		totals := Close(at(9, 0, 0), at(11, 0, 0), 0, 40, true)
		assert.Equal(t, 2.0, totals.TotalHours)
		assert.Equal(t, 120.0, totals.TotalCost)
	})

	t.Run("конец не раньше начала", func(t *testing.T) {
		start := at(10, 0, 0)
		totals := Close(start, at(9, 40, 0), 0, 40, false)
		assert.True(t, start.Equal(totals.End))
		assert.Equal(t, 0.0, totals.TotalHours)
	})
}
