package scheduler

import "time"

const (
	IncrementMinutes   = 15
	WorkDays           = 5
	minutesPerDay      = 24 * 60
	TotalIncrements    = WorkDays * minutesPerDay / IncrementMinutes // 480
	SearchStartMinute  = 9 * 60
	SearchEndMinute    = 17 * 60
	MaxDurationMinutes = SearchEndMinute - SearchStartMinute
)

// WeekStart 返回 now 所在周的周一 00:00
func WeekStart(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	offset := (int(now.Weekday()) + 6) % 7 // 周一为 0
	y, m, d := now.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
}

// Decode 把基因解码为 (星期几, 当天的分钟数)，星期一为 0
func Decode(index int) (day int, minutes int) {
	total := index * IncrementMinutes
	return total / minutesPerDay, total % minutesPerDay
}

// Evaluator 计算某个会议开始时间的适应度
type Evaluator struct {
	index           *AvailabilityIndex
	durationMinutes int
	weekStart       time.Time
}

func NewEvaluator(index *AvailabilityIndex, durationMinutes int, weekStart time.Time) *Evaluator {
	return &Evaluator{
		index:           index,
		durationMinutes: durationMinutes,
		weekStart:       weekStart,
	}
}

// InWindow 会议必须在工作日的 9:00 之后开始并在 17:00 之前结束
func (ev *Evaluator) InWindow(index int) bool {
	if index < 0 || index >= TotalIncrements {
		return false
	}
	day, minutes := Decode(index)
	if day < 0 || day >= WorkDays {
		return false
	}
	return minutes >= SearchStartMinute && minutes+ev.durationMinutes <= SearchEndMinute
}

// Window 返回基因对应的会议时间段
func (ev *Evaluator) Window(index int) (time.Time, time.Time) {
	day, minutes := Decode(index)
	start := time.Date(ev.weekStart.Year(), ev.weekStart.Month(), ev.weekStart.Day()+day, 0, minutes, 0, 0, ev.weekStart.Location())
	return start, start.Add(time.Duration(ev.durationMinutes) * time.Minute)
}

// Evaluate 适应度 = 能完整参加会议的成员数 / 成员总数
func (ev *Evaluator) Evaluate(index int) float64 {
	if !ev.InWindow(index) || ev.index.MemberCount() == 0 {
		return 0
	}
	start, end := ev.Window(index)
	return float64(ev.index.CountAvailable(start, end)) / float64(ev.index.MemberCount())
}
