package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Sender описывает email-канал доставки уведомлений.
// Ошибки отправки сервис рассылки логирует, но не пробрасывает.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPSender отправляет письма через SMTP relay.
type SMTPSender struct {
	host string
	port string
	user string
	pass string
	from string
}

// NewSMTPSender создаёт отправителя. Хост обязателен.
func NewSMTPSender(host, port, user, pass, from string) *SMTPSender {
	return &SMTPSender{host: host, port: port, user: user, pass: pass, from: from}
}

// Send отправляет HTML письмо одному получателю.
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mail: отправка отменена: %w", err)
	}

	var msg strings.Builder
	msg.WriteString("From: " + s.from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}

	addr := s.host + ":" + s.port
	if err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("mail: не удалось отправить письмо: %w", err)
	}

	return nil
}

// NoopSender используется в development, когда SMTP не настроен:
// письма никуда не уходят, отправка всегда успешна.
type NoopSender struct{}

// NewNoopSender создаёт заглушку email-канала.
func NewNoopSender() NoopSender {
	return NoopSender{}
}

func (NoopSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	return nil
}
