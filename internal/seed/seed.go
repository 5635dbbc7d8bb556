package seed

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/project-planner/backend/internal/config"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/repository"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/utils"
)

const DefaultEmployeesFile = "./internal/seed/data/employees.csv"

var requiredHeaders = []string{"用户名", "姓名", "邮箱", "技能", "偏好"}

// ParseLevels 解析形如 "Go:5; SQL:3" 的字符串
func ParseLevels(raw string) (map[string]int, error) {
	levels := make(map[string]int)
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		idx := strings.LastIndex(part, ":")
		if idx <= 0 {
			return nil, fmt.Errorf("无法解析 %q", part)
		}

		key := strings.TrimSpace(part[:idx])
		level, err := strconv.Atoi(strings.TrimSpace(part[idx+1:]))
		if err != nil {
			return nil, fmt.Errorf("无法解析 %q 的等级: %w", key, err)
		}
		levels[key] = level
	}
	return levels, nil
}

// ReadEmployees 从 CSV 中读取员工，表头必须包含用户名、姓名、邮箱、技能、偏好
func ReadEmployees(in io.Reader) ([]*domain.Employee, error) {
	reader := csv.NewReader(in)

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}
	for _, h := range requiredHeaders {
		if !slices.Contains(headers, h) {
			return nil, fmt.Errorf("没有找到 %s 列", h)
		}
	}

	employees := make([]*domain.Employee, 0)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}

		record := make(map[string]string)
		for i, value := range row {
			record[headers[i]] = strings.TrimSpace(value)
		}

		if record["用户名"] == "" {
			slog.Error("没有找到用户名", "line", line)
			continue
		}

		employee, err := employeeFromRecord(record)
		if err != nil {
			slog.Error("解析员工失败", "line", line, "error", err)
			continue
		}
		employees = append(employees, employee)
	}

	return employees, nil
}

func employeeFromRecord(record map[string]string) (*domain.Employee, error) {
	rawSkills, err := ParseLevels(record["技能"])
	if err != nil {
		return nil, err
	}
	skills, err := domain.NewSkillLevels(rawSkills)
	if err != nil {
		return nil, err
	}

	rawPrefs, err := ParseLevels(record["偏好"])
	if err != nil {
		return nil, err
	}
	prefs, err := domain.NewPreferenceLevels(rawPrefs)
	if err != nil {
		return nil, err
	}

	return &domain.Employee{
		Username: record["用户名"],
		FullName: record["姓名"],
		Email:    record["邮箱"],
		Profile:  domain.Profile{Skills: skills, Preferences: prefs},
	}, nil
}

// SeedEmployeesFromFile 插入文件中的员工，已经存在的员工会被跳过
func SeedEmployeesFromFile(r *repository.Repository, path string) {
	file, err := os.Open(path)
	if err != nil {
		slog.Error("打开文件失败", "error", err)
		return
	}
	defer file.Close()

	employees, err := ReadEmployees(file)
	if err != nil {
		slog.Error("读取员工失败", "error", err)
		return
	}

	cnt := 0
	for _, employee := range employees {
		if _, err := r.GetEmployeeByUsername(employee.Username); err == nil {
			continue
		} else if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("获取员工失败", "username", employee.Username, "error", err)
			continue
		}

		if err := r.CreateEmployee(employee); err != nil {
			slog.Error("插入员工失败", "username", employee.Username, "error", err)
			continue
		}
		cnt++
	}

	slog.Info("插入员工完成", "count", cnt)
}

// SeedRandomData 按配置插入随机的员工、项目、任务以及本周的空闲时间
func SeedRandomData(r *repository.Repository, cfg *config.Config, loc *time.Location) error {
	if cfg.Seed.Employees <= 0 || cfg.Seed.Projects < 0 || cfg.Seed.TasksPerProject < 0 {
		return errors.New("随机数据的数量不合法")
	}

	employees := make([]*domain.Employee, 0, cfg.Seed.Employees)
	for i := 0; i < cfg.Seed.Employees; i++ {
		employee := utils.GenerateRandomEmployee(cfg.Email.UserDomain)
		if err := r.CreateEmployee(employee); err != nil {
			// 随机生成的用户名可能重复
			slog.Error("无法插入员工", "username", employee.Username, "error", err)
			continue
		}
		employees = append(employees, employee)
	}
	if len(employees) == 0 {
		return errors.New("没有插入任何员工")
	}
	slog.Info("插入员工成功", "count", len(employees))

	weekStart := scheduler.WeekStart(time.Now(), loc)
	slots := 0
	for _, employee := range employees {
		s := utils.GenerateRandomAvailability(employee.ID, weekStart)
		if err := r.CreateAvailabilitySlots(s); err != nil {
			slog.Error("无法插入空闲时间", "employeeID", employee.ID, "error", err)
			continue
		}
		slots += len(s)
	}
	slog.Info("插入空闲时间成功", "count", slots)

	for i := 0; i < cfg.Seed.Projects; i++ {
		leader := employees[rand.Intn(len(employees))]
		project := utils.GenerateRandomProject(leader.ID)
		if err := r.CreateProject(project); err != nil {
			slog.Error("无法插入项目", "error", err)
			continue
		}

		members := utils.GenerateRandomSubset(employees)
		if len(members) > 6 {
			members = members[:6]
		}
		for _, m := range members {
			if err := r.AddProjectMember(project.ID, m.ID); err != nil {
				slog.Error("无法添加项目成员", "projectID", project.ID, "employeeID", m.ID, "error", err)
			}
		}

		for j := 0; j < cfg.Seed.TasksPerProject; j++ {
			task := utils.GenerateRandomTask(project.ID)
			if err := r.CreateTask(task); err != nil {
				slog.Error("无法插入任务", "projectID", project.ID, "error", err)
				continue
			}
			slog.Debug("插入任务", "projectID", project.ID, "task", utils.RandomTaskSummary(task))
		}

		slog.Info("插入项目成功", "projectID", project.ID, "name", project.Name)
	}

	return nil
}
