package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
)

var cst = time.FixedZone("CST", 8*3600)

func at(day, hour, minute int) time.Time {
	// 2025-11-10 是周一
	return time.Date(2025, 11, day, hour, minute, 0, 0, cst)
}

func TestAdvance(t *testing.T) {
	cal := New(cst)

	tests := []struct {
		name  string
		start time.Time
		hours float64
		want  time.Time
	}{
		{"当天可以完成", at(13, 10, 0), 2, at(13, 12, 0)},
		{"顺延到第二天", at(13, 15, 0), 4, at(14, 11, 0)},
		{"跨过周末", at(14, 15, 0), 4, at(17, 11, 0)},
		{"恰好到下班", at(13, 15, 0), 2, at(13, 17, 0)},
		{"上班前开始", at(13, 7, 30), 1, at(13, 10, 0)},
		{"下班后开始", at(13, 20, 0), 1, at(14, 10, 0)},
		{"周六开始", at(15, 11, 0), 3, at(17, 12, 0)},
		{"周日开始", at(16, 23, 0), 0.5, at(17, 9, 30)},
		{"跨越多天", at(10, 9, 0), 20, at(12, 13, 0)},
		{"零小时仍需要对齐", at(15, 11, 0), 0, at(17, 9, 0)},
		{"小数小时", at(13, 16, 0), 1.25, at(14, 9, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cal.Advance(tt.start, tt.hours)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestAdvanceRejectsNegativeHours(t *testing.T) {
	cal := New(cst)

	_, err := cal.Advance(at(13, 10, 0), -1)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInput))
}

func TestAdvanceRejectsTooManyHours(t *testing.T) {
	cal := New(cst)

	for _, hours := range []float64{MaxAdvanceHours + 1, 3e6, 1e300} {
		_, err := cal.Advance(at(13, 10, 0), hours)
		require.Error(t, err, "hours=%v", hours)
		assert.True(t, domain.IsKind(err, domain.KindInput))
	}

	// 上限本身仍然可以计算，并且确实向后推进了
	got, err := cal.Advance(at(13, 10, 0), MaxAdvanceHours)
	require.NoError(t, err)
	assert.True(t, got.After(at(13, 10, 0)))
	assert.True(t, cal.IsBusinessTime(got) || got.Hour() == WorkdayEndHour)
}

func TestAdvanceConvertsIntoCalendarZone(t *testing.T) {
	cal := New(cst)

	// UTC 02:00 等于 CST 10:00
	start := time.Date(2025, 11, 13, 2, 0, 0, 0, time.UTC)
	got, err := cal.Advance(start, 2)
	require.NoError(t, err)

	assert.Equal(t, cst, got.Location())
	assert.True(t, at(13, 12, 0).Equal(got))
}

func TestAdvanceLandsInsideBusinessHours(t *testing.T) {
	cal := New(cst)

	for day := 10; day <= 16; day++ {
		for hour := 0; hour < 24; hour += 3 {
			for _, hours := range []float64{0, 0.25, 1, 3.5, 8, 9, 17.75, 40} {
				start := at(day, hour, 15)
				got, err := cal.Advance(start, hours)
				require.NoError(t, err)

				assert.False(t, got.Before(start), "结果 %v 早于起点 %v", got, start)
				assert.False(t, isWeekend(got), "结果 %v 落在周末", got)

				dayStart := time.Date(got.Year(), got.Month(), got.Day(), WorkdayStartHour, 0, 0, 0, cst)
				dayEnd := time.Date(got.Year(), got.Month(), got.Day(), WorkdayEndHour, 0, 0, 0, cst)
				assert.False(t, got.Before(dayStart), "结果 %v 早于上班时间", got)
				assert.False(t, got.After(dayEnd), "结果 %v 晚于下班时间", got)
			}
		}
	}
}

func TestAdvanceIsPure(t *testing.T) {
	cal := New(cst)
	start := at(14, 16, 45)

	first, err := cal.Advance(start, 13.5)
	require.NoError(t, err)
	second, err := cal.Advance(start, 13.5)
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
}

func TestNextBusinessDayStart(t *testing.T) {
	cal := New(cst)

	assert.True(t, at(14, 9, 0).Equal(cal.NextBusinessDayStart(at(13, 16, 0))))
	assert.True(t, at(17, 9, 0).Equal(cal.NextBusinessDayStart(at(14, 8, 0))))
	assert.True(t, at(17, 9, 0).Equal(cal.NextBusinessDayStart(at(15, 12, 0))))
}

func TestIsBusinessTime(t *testing.T) {
	cal := New(cst)

	assert.True(t, cal.IsBusinessTime(at(13, 9, 0)))
	assert.True(t, cal.IsBusinessTime(at(13, 16, 59)))
	assert.False(t, cal.IsBusinessTime(at(13, 17, 0)))
	assert.False(t, cal.IsBusinessTime(at(13, 8, 59)))
	assert.False(t, cal.IsBusinessTime(at(15, 10, 0)))
}
