package email

import (
	"fmt"

	"hirepoint_backend/internal/config"

	"gopkg.in/gomail.v2"
)

// Provider отправляет письма пользователям. Отправка всегда best-effort:
// сбой SMTP не должен ронять операцию, которая письмо инициировала.
type Provider interface {
	// SendPasswordResetEmail отправляет письмо со ссылкой подтверждения
	// сброса пароля
	SendPasswordResetEmail(to, userName, confirmationURL string) error
}

// SMTPProvider - реализация Provider поверх gomail
type SMTPProvider struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPProvider создает провайдера из SMTP-настроек конфигурации
func NewSMTPProvider(cfg *config.Config) *SMTPProvider {
	return &SMTPProvider{
		dialer: gomail.NewDialer(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUsername,
			cfg.Email.SMTPPassword,
		),
		from: cfg.Email.FromEmail,
	}
}

// SendPasswordResetEmail отправляет письмо со ссылкой подтверждения сброса
func (p *SMTPProvider) SendPasswordResetEmail(to, userName, confirmationURL string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", p.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Password reset request")
	m.SetBody("text/html", fmt.Sprintf(`
		<h2>Hello, %s!</h2>
		<p>We received a request to reset the password for your account.</p>
		<p>Follow the link below to confirm the reset. The link is valid for 30 minutes.</p>
		<p><a href="%s">Confirm password reset</a></p>
		<p>If you did not request a password reset, ignore this email.</p>
	`, userName, confirmationURL))

	if err := p.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send password reset email: %w", err)
	}
	return nil
}

// NoopProvider используется, когда отправка почты выключена в конфигурации.
// Операции сброса пароля при этом работают: ссылка возвращается в ответе.
type NoopProvider struct{}

func (NoopProvider) SendPasswordResetEmail(to, userName, confirmationURL string) error {
	return nil
}
