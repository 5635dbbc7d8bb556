package utils

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
)

// ValidateAvailabilitySlots 检查空闲时间是否合法，同一员工的空闲时间之间不能重叠
func ValidateAvailabilitySlots(slots []*domain.AvailabilitySlot) error {
	// 检查每一段的结束时间是不是都晚于开始时间
	for i, slot := range slots {
		if err := slot.Validate(); err != nil {
			return fmt.Errorf("第 %d 段空闲时间的结束时间必须晚于开始时间", i+1)
		}
	}

	// 检查同一员工的各段空闲时间是否冲突，首尾相接不算冲突
	for i := 0; i < len(slots); i++ {
		for j := i + 1; j < len(slots); j++ {
			if slots[i].EmployeeID != slots[j].EmployeeID {
				continue
			}
			if slots[i].StartTime.Before(slots[j].EndTime) && slots[j].StartTime.Before(slots[i].EndTime) {
				return fmt.Errorf("第 %d 段和第 %d 段空闲时间冲突", i+1, j+1)
			}
		}
	}

	return nil
}

// ValidateRequiredSkills 检查任务所需技能，不允许重复
func ValidateRequiredSkills(skills []string) error {
	seen := make([]string, 0, len(skills))
	for _, skill := range skills {
		if err := domain.ValidateProfileKey(skill); err != nil {
			return err
		}
		if slices.Contains(seen, skill) {
			return fmt.Errorf("技能 %q 重复", skill)
		}
		seen = append(seen, skill)
	}
	return nil
}

// ValidateMemberRemoval 负责人不能被移出项目
func ValidateMemberRemoval(project *domain.Project, employeeID int64) error {
	if project.LeaderID == employeeID {
		return fmt.Errorf("不能移除项目负责人")
	}
	if project.Member(employeeID) == nil {
		return fmt.Errorf("该员工不是项目成员")
	}
	if len(project.Members) <= 1 {
		return fmt.Errorf("不能移除项目的最后一名成员")
	}
	return nil
}

// NormalizeTaskCategory 任务类别统一去除首尾空白
func NormalizeTaskCategory(category string) string {
	return strings.TrimSpace(category)
}
