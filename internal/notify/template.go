package notify

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
)

// Envelope 解码后的邮件，Data 为对应类型的结构体
type Envelope struct {
	Type     string
	To       string
	Subject  string
	Template string
	Data     any
}

type mailKind struct {
	subject  string
	template string
	newData  func() any
}

var mailKinds = map[string]mailKind{
	domain.MailTypeTaskAssigned: {
		subject:  "项目规划系统 - 新任务",
		template: "task_assigned_email.html",
		newData:  func() any { return &domain.TaskAssignedMailData{} },
	},
	domain.MailTypeDeadlineExtended: {
		subject:  "项目规划系统 - 截止时间已顺延",
		template: "deadline_extended_email.html",
		newData:  func() any { return &domain.DeadlineExtendedMailData{} },
	},
	domain.MailTypeStrikeIssued: {
		subject:  "项目规划系统 - 任务逾期提醒",
		template: "strike_issued_email.html",
		newData:  func() any { return &domain.StrikeIssuedMailData{} },
	},
}

// Decode 解析队列中的消息，templateDir 为模板所在的目录
func Decode(body []byte, templateDir string) (*Envelope, error) {
	var raw struct {
		Type string          `json:"type"`
		To   string          `json:"to"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	kind, ok := mailKinds[raw.Type]
	if !ok {
		return nil, fmt.Errorf("不支持的邮件类型: %s", raw.Type)
	}
	if raw.To == "" {
		return nil, fmt.Errorf("邮件没有收件人")
	}

	data := kind.newData()
	if len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			return nil, err
		}
	}

	return &Envelope{
		Type:     raw.Type,
		To:       raw.To,
		Subject:  kind.subject,
		Template: filepath.Join(templateDir, kind.template),
		Data:     data,
	}, nil
}
