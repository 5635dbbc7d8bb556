package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

// 随机数据使用的技能和任务类别
var (
	SkillPool    = []string{"Go", "Python", "SQL", "React", "Docker", "Kubernetes", "Testing", "Design", "Writing", "Linux"}
	CategoryPool = []string{"backend", "frontend", "devops", "qa", "docs", "design"}
)

var taskVerbs = []string{"实现", "重构", "测试", "设计", "部署", "整理"}
var taskObjects = []string{"登录接口", "报表页面", "数据迁移", "监控告警", "用户文档", "缓存层", "消息队列", "权限模块"}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

// 使用 Fisher-Yates 洗牌算法来生成一个非空的随机子集
func GenerateRandomSubset[T any](arr []T) []T {
	if len(arr) == 0 {
		return nil
	}

	arrCopy := append([]T{}, arr...) // 复制数组，避免修改原数组

	for i := 0; i < len(arrCopy)-1; i++ {
		j := rand.Intn(len(arrCopy)-i) + i
		arrCopy[i], arrCopy[j] = arrCopy[j], arrCopy[i]
	}

	l := rand.Intn(len(arrCopy)) + 1
	return arrCopy[:l]
}

func GenerateRandomSkills() domain.SkillLevels {
	skills := domain.SkillLevels{}
	for _, s := range GenerateRandomSubset(SkillPool) {
		skills[s] = rand.Intn(domain.MaxSkillLevel) + 1
	}
	return skills
}

func GenerateRandomPreferences() domain.PreferenceLevels {
	prefs := domain.PreferenceLevels{}
	for _, c := range GenerateRandomSubset(CategoryPool) {
		prefs[c] = rand.Intn(domain.MaxPreferenceLevel + 1)
	}
	return prefs
}

func GenerateRandomEmployee(emailDomainName string) *domain.Employee {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)

	return &domain.Employee{
		Username: username,
		FullName: fullName,
		Email:    username + "@" + emailDomainName,
		Profile: domain.Profile{
			Skills:      GenerateRandomSkills(),
			Preferences: GenerateRandomPreferences(),
		},
	}
}

func GenerateRandomProject(leaderID int64) *domain.Project {
	return &domain.Project{
		Name:        "项目" + GenerateRandomID(3, 3),
		Description: "项目描述" + GenerateRandomID(20, 10),
		LeaderID:    leaderID,
	}
}

// GenerateRandomTask 生成一个未分配的任务，工时在 1 到 40 小时之间，以半小时为单位
func GenerateRandomTask(projectID int64) *domain.Task {
	required := GenerateRandomSubset(SkillPool)
	if len(required) > 3 {
		required = required[:3]
	}

	return &domain.Task{
		ProjectID:      projectID,
		Title:          taskVerbs[rand.Intn(len(taskVerbs))] + taskObjects[rand.Intn(len(taskObjects))],
		Description:    "任务描述" + GenerateRandomID(10, 5),
		EstimatedHours: float64(rand.Intn(79)+2) / 2,
		RequiredSkills: required,
		Category:       CategoryPool[rand.Intn(len(CategoryPool))],
		Status:         domain.TaskStatusTodo,
	}
}

// GenerateRandomAvailability 在 weekStart 所在的一周里随机挑选若干个工作日，每天生成一段 9:00 到 18:00 之间的空闲时间
func GenerateRandomAvailability(employeeID int64, weekStart time.Time) []*domain.AvailabilitySlot {
	days := GenerateRandomSubset([]int{0, 1, 2, 3, 4})

	slots := make([]*domain.AvailabilitySlot, 0, len(days))
	for _, day := range days {
		startHour := rand.Intn(6) + 9 // 9~14
		endHour := startHour + rand.Intn(18-startHour) + 1

		date := weekStart.AddDate(0, 0, day)
		slots = append(slots, &domain.AvailabilitySlot{
			EmployeeID: employeeID,
			StartTime:  time.Date(date.Year(), date.Month(), date.Day(), startHour, 0, 0, 0, date.Location()),
			EndTime:    time.Date(date.Year(), date.Month(), date.Day(), endHour, 0, 0, 0, date.Location()),
		})
	}

	return slots
}

// RandomTaskSummary 用于日志输出
func RandomTaskSummary(t *domain.Task) string {
	return fmt.Sprintf("%s(%.1fh, %s)", t.Title, t.EstimatedHours, t.Category)
}
