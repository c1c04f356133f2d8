package mailer

import (
	"context"

	"go.uber.org/zap"
)

// Message 一封待发送的邮件
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer 邮件发送器
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer 仅写日志，本地开发使用
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.log.Info("mail",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTML)),
		zap.String("text", msg.Text),
	)
	return nil
}
