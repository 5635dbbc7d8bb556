package scheduler

import (
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
)

type interval struct {
	start time.Time
	end   time.Time
}

// AvailabilityIndex 项目成员的空闲时间，只保留项目成员的记录
type AvailabilityIndex struct {
	memberIDs []int64
	slots     map[int64][]interval // {employeeID: [interval1, interval2, ...]}
}

func NewAvailabilityIndex(members []*domain.Employee, slots []*domain.AvailabilitySlot) *AvailabilityIndex {
	idx := &AvailabilityIndex{
		memberIDs: make([]int64, 0, len(members)),
		slots:     make(map[int64][]interval),
	}

	for _, m := range members {
		if slices.Contains(idx.memberIDs, m.ID) {
			continue
		}
		idx.memberIDs = append(idx.memberIDs, m.ID)
		idx.slots[m.ID] = []interval{}
	}

	for _, s := range slots {
		if _, isMember := idx.slots[s.EmployeeID]; !isMember {
			continue
		}
		idx.slots[s.EmployeeID] = append(idx.slots[s.EmployeeID], interval{start: s.StartTime, end: s.EndTime})
	}

	return idx
}

func (idx *AvailabilityIndex) MemberCount() int {
	return len(idx.memberIDs)
}

// SlotCount 返回所有成员的空闲时间段数量
func (idx *AvailabilityIndex) SlotCount() int {
	n := 0
	for _, s := range idx.slots {
		n += len(s)
	}
	return n
}

// Covers 员工是否有一段空闲时间完整覆盖 [start, end)
func (idx *AvailabilityIndex) Covers(employeeID int64, start, end time.Time) bool {
	for _, iv := range idx.slots[employeeID] {
		if !iv.start.After(start) && !iv.end.Before(end) {
			return true
		}
	}
	return false
}

// AvailableMembers 按成员顺序返回能完整参加 [start, end) 的成员
func (idx *AvailabilityIndex) AvailableMembers(start, end time.Time) []int64 {
	ids := make([]int64, 0)
	for _, id := range idx.memberIDs {
		if idx.Covers(id, start, end) {
			ids = append(ids, id)
		}
	}
	return ids
}

// CountAvailable 与 AvailableMembers 相同但不分配内存
func (idx *AvailabilityIndex) CountAvailable(start, end time.Time) int {
	n := 0
	for _, id := range idx.memberIDs {
		if idx.Covers(id, start, end) {
			n++
		}
	}
	return n
}
