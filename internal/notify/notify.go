// Package notify 通过 RabbitMQ 投递邮件通知，由 mail worker 负责真正发送
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
)

const QueueName = "email_queue"

// Channel 是 *amqp.Channel 中用到的部分
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// DeclareQueue 声明持久化的邮件队列
func DeclareQueue(ch *amqp.Channel) (amqp.Queue, error) {
	return ch.QueueDeclare(
		QueueName, // 队列名称
		true,      // 持久化
		false,     // 没有消费者时不自动删除
		false,     // 不独占
		false,     // 等待 RabbitMQ 确认
		nil,
	)
}

type Publisher struct {
	ch      Channel
	timeout time.Duration
	logger  *slog.Logger
}

func NewPublisher(ch Channel, timeout time.Duration, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{ch: ch, timeout: timeout, logger: logger}
}

func (p *Publisher) Publish(msg domain.MailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	return p.ch.PublishWithContext(
		ctx,
		"",
		QueueName,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// PublishAll 逐条投递，单条失败只记录日志，返回成功投递的数量
func (p *Publisher) PublishAll(msgs []domain.MailMessage) int {
	sent := 0
	for _, msg := range msgs {
		if err := p.Publish(msg); err != nil {
			p.logger.Error("邮件投递失败", "type", msg.Type, "to", msg.To, "error", err)
			continue
		}
		sent++
	}
	return sent
}

func TaskAssigned(employee *domain.Employee, project *domain.Project, task *domain.Task) domain.MailMessage {
	data := domain.TaskAssignedMailData{
		FullName:     employee.DisplayName(),
		ProjectName:  project.Name,
		TaskTitle:    task.Title,
		EstimatedHrs: task.EstimatedHours,
	}
	if task.DueDate != nil {
		data.DueDate = *task.DueDate
	}
	return domain.MailMessage{Type: domain.MailTypeTaskAssigned, To: employee.Email, Data: data}
}

func DeadlineExtended(employee *domain.Employee, task *domain.Task, extensionHours float64) domain.MailMessage {
	data := domain.DeadlineExtendedMailData{
		FullName:       employee.DisplayName(),
		TaskTitle:      task.Title,
		ExtensionHours: extensionHours,
	}
	if task.DueDate != nil {
		data.DueDate = *task.DueDate
	}
	return domain.MailMessage{Type: domain.MailTypeDeadlineExtended, To: employee.Email, Data: data}
}

func StrikeIssued(employee *domain.Employee, taskTitle string, strikeCount, maxStrikes int32) domain.MailMessage {
	return domain.MailMessage{
		Type: domain.MailTypeStrikeIssued,
		To:   employee.Email,
		Data: domain.StrikeIssuedMailData{
			FullName:    employee.DisplayName(),
			TaskTitle:   taskTitle,
			StrikeCount: strikeCount,
			MaxStrikes:  maxStrikes,
		},
	}
}
