// Package calendar 提供按工作时间（工作日 9:00 - 17:00）计算截止时间的工具
package calendar

import (
	"math"
	"time"

	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
)

const (
	WorkdayStartHour = 9
	WorkdayEndHour   = 17
	HoursPerWorkday  = WorkdayEndHour - WorkdayStartHour

	// MaxAdvanceHours 一次最多累加的工作小时数，超过后按纳秒计的时长会溢出
	MaxAdvanceHours = 1_000_000
)

type Calendar struct {
	loc *time.Location
}

// New 创建一个在 loc 时区下计算的日历，loc 为 nil 时使用本地时区
func New(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	return &Calendar{loc: loc}
}

func Default() *Calendar {
	return New(time.Local)
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

func (c *Calendar) at(t time.Time, hour int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, hour, 0, 0, 0, c.loc)
}

// NextBusinessDayStart 返回 t 之后下一个工作日的 9:00（周五之后是周一）
func (c *Calendar) NextBusinessDayStart(t time.Time) time.Time {
	t = t.In(c.loc)
	y, m, d := t.Date()
	next := time.Date(y, m, d+1, WorkdayStartHour, 0, 0, 0, c.loc)
	for isWeekend(next) {
		next = time.Date(next.Year(), next.Month(), next.Day()+1, WorkdayStartHour, 0, 0, 0, c.loc)
	}
	return next
}

// IsBusinessTime 判断 t 是否落在工作日的 [9:00, 17:00) 内
func (c *Calendar) IsBusinessTime(t time.Time) bool {
	t = t.In(c.loc)
	if isWeekend(t) {
		return false
	}
	return !t.Before(c.at(t, WorkdayStartHour)) && t.Before(c.at(t, WorkdayEndHour))
}

// normalize 把非工作时间的起点挪到最近的工作时间起点
func (c *Calendar) normalize(t time.Time) time.Time {
	switch {
	case isWeekend(t):
		return c.NextBusinessDayStart(t)
	case !t.Before(c.at(t, WorkdayEndHour)):
		return c.NextBusinessDayStart(t)
	case t.Before(c.at(t, WorkdayStartHour)):
		return c.at(t, WorkdayStartHour)
	default:
		return t
	}
}

// Advance 从 start 开始累加 hours 个工作小时，当天剩余时间不够时顺延到下一个工作日
func (c *Calendar) Advance(start time.Time, hours float64) (time.Time, error) {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 {
		return time.Time{}, domain.NewError(domain.KindInput, "工作小时数必须是非负数")
	}
	if hours > MaxAdvanceHours {
		return time.Time{}, domain.NewError(domain.KindInput, "工作小时数过大")
	}

	current := c.normalize(start.In(c.loc))
	remaining := time.Duration(math.Round(hours * float64(time.Hour)))

	for remaining > 0 {
		leftToday := c.at(current, WorkdayEndHour).Sub(current)
		if leftToday >= remaining {
			current = current.Add(remaining)
			remaining = 0
		} else {
			remaining -= leftToday
			current = c.NextBusinessDayStart(current)
		}
	}

	return current, nil
}
