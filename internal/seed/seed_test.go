package seed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevels(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    map[string]int
		wantErr bool
	}{
		{"空", "", map[string]int{}, false},
		{"单个", "Go:5", map[string]int{"Go": 5}, false},
		{"多个", "Go:5; SQL:3;", map[string]int{"Go": 5, "SQL": 3}, false},
		{"缺少等级", "Go", nil, true},
		{"等级不是数字", "Go:high", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevels(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadEmployees(t *testing.T) {
	csv := `用户名,姓名,邮箱,技能,偏好
zhangwei,张伟,zhangwei@example.com,Go:5; SQL:4,Backend:5
,无名,nobody@example.com,Go:1,
lina,李娜,lina@example.com,React:9,frontend:5
`
	employees, err := ReadEmployees(strings.NewReader(csv))
	require.NoError(t, err)

	// 第二行没有用户名，第三行技能等级超出范围
	require.Len(t, employees, 1)
	e := employees[0]
	assert.Equal(t, "zhangwei", e.Username)
	assert.Equal(t, "张伟", e.FullName)
	assert.Equal(t, 5, e.Profile.Skills["Go"])
	assert.Equal(t, 5, e.Profile.Preferences["backend"])
}

func TestReadEmployeesMissingHeader(t *testing.T) {
	_, err := ReadEmployees(strings.NewReader("用户名,姓名\nzhangwei,张伟\n"))
	assert.Error(t, err)
}
