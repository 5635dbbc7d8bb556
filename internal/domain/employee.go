package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	MaxSkillLevel      = 5
	MaxPreferenceLevel = 5
	maxProfileKeyLen   = 64
)

var profileKeyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 +#./_-]*$`)

// SkillLevels: 技能名称 -> 等级（0..5）
type SkillLevels map[string]int

// PreferenceLevels: 任务类别 -> 偏好等级（0..5），类别统一为小写
type PreferenceLevels map[string]int

// ValidateProfileKey 检查技能名或类别名是否合法
func ValidateProfileKey(key string) error {
	if key == "" {
		return fmt.Errorf("名称不能为空")
	}
	if strings.TrimSpace(key) != key {
		return fmt.Errorf("名称 %q 首尾不能包含空白字符", key)
	}
	if len(key) > maxProfileKeyLen {
		return fmt.Errorf("名称 %q 过长", key)
	}
	if !profileKeyPattern.MatchString(key) {
		return fmt.Errorf("名称 %q 包含非法字符", key)
	}
	return nil
}

func validateLevel(key string, level, max int) error {
	if level < 0 || level > max {
		return fmt.Errorf("%q 的等级 %d 不在 0 到 %d 之间", key, level, max)
	}
	return nil
}

// NewSkillLevels 在构造时校验所有的技能名称和等级
func NewSkillLevels(raw map[string]int) (SkillLevels, error) {
	levels := make(SkillLevels, len(raw))
	for key, level := range raw {
		if err := ValidateProfileKey(key); err != nil {
			return nil, NewError(KindInput, "技能名称无效").WithCause(err)
		}
		if err := validateLevel(key, level, MaxSkillLevel); err != nil {
			return nil, NewError(KindInput, "技能等级无效").WithCause(err)
		}
		levels[key] = level
	}
	return levels, nil
}

// NewPreferenceLevels 在构造时校验所有的类别名称和等级，类别名称会被转为小写
func NewPreferenceLevels(raw map[string]int) (PreferenceLevels, error) {
	levels := make(PreferenceLevels, len(raw))
	for key, level := range raw {
		if err := ValidateProfileKey(key); err != nil {
			return nil, NewError(KindInput, "偏好类别无效").WithCause(err)
		}
		if err := validateLevel(key, level, MaxPreferenceLevel); err != nil {
			return nil, NewError(KindInput, "偏好等级无效").WithCause(err)
		}
		normalized := NormalizeCategory(key)
		if _, exists := levels[normalized]; exists {
			return nil, NewError(KindInput, "偏好类别重复").WithCause(fmt.Errorf("类别 %q 忽略大小写后重复", key))
		}
		levels[normalized] = level
	}
	return levels, nil
}

// Level 返回技能等级，没有该技能时为 0
func (s SkillLevels) Level(skill string) int {
	return s[skill]
}

// Level 返回类别的偏好等级，没有该类别时为 0
func (p PreferenceLevels) Level(category string) int {
	return p[NormalizeCategory(category)]
}

// NormalizeCategory 类别比较时忽略大小写
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

type Profile struct {
	Skills      SkillLevels      `json:"skills"`
	Preferences PreferenceLevels `json:"preferences"`
}

type Employee struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	Profile     Profile   `json:"profile"`
	StrikeCount int32     `json:"strikeCount"`
	CreatedAt   time.Time `json:"createdAt"`
	Version     int32     `json:"-"`
}

// Eligible 累计未按时完成次数未达到上限的员工才能被分配新任务
func (e *Employee) Eligible(maxStrikes int32) bool {
	return e.StrikeCount < maxStrikes
}

// DisplayName 优先使用全名
func (e *Employee) DisplayName() string {
	if e.FullName != "" {
		return e.FullName
	}
	return e.Username
}
