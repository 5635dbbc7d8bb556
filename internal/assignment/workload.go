package assignment

import "github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"

// RemainingWorkload 计算员工名下所有未完成任务的剩余工时之和
func RemainingWorkload(employeeID int64, tasks []*domain.Task) float64 {
	total := 0.0
	for _, t := range tasks {
		if t.IsAssignedTo(employeeID) && t.Progress < 100 {
			total += t.RemainingHours()
		}
	}
	return total
}

// WorkloadTracker 在一次分配过程中维护每个成员的实时剩余工作量
// 只在内存中更新，分配过程中不会落库
type WorkloadTracker struct {
	loads map[int64]float64
	max   float64
}

func NewWorkloadTracker(memberIDs []int64, tasks []*domain.Task) *WorkloadTracker {
	w := &WorkloadTracker{
		loads: make(map[int64]float64, len(memberIDs)),
	}

	for _, id := range memberIDs {
		w.loads[id] = 0
	}

	// 一次遍历任务，避免每个成员都扫描一遍
	for _, t := range tasks {
		if t.AssignedTo == nil || t.Progress >= 100 {
			continue
		}
		if _, tracked := w.loads[*t.AssignedTo]; !tracked {
			continue
		}
		w.loads[*t.AssignedTo] += t.RemainingHours()
	}

	for _, load := range w.loads {
		if load > w.max {
			w.max = load
		}
	}

	return w
}

// Load 返回成员当前的剩余工作量
func (w *WorkloadTracker) Load(employeeID int64) float64 {
	return w.loads[employeeID]
}

// Max 返回所有成员中最大的剩余工作量，最小为 0
func (w *WorkloadTracker) Max() float64 {
	return w.max
}

// Add 把新分配任务的工时加到成员身上，同时更新最大值
func (w *WorkloadTracker) Add(employeeID int64, hours float64) {
	w.loads[employeeID] += hours
	if w.loads[employeeID] > w.max {
		w.max = w.loads[employeeID]
	}
}

// Snapshot 返回当前工作量的拷贝
func (w *WorkloadTracker) Snapshot() map[int64]float64 {
	out := make(map[int64]float64, len(w.loads))
	for id, load := range w.loads {
		out[id] = load
	}
	return out
}
