// Package notifier delivers transactional email: purchase
// confirmations after settlement and expiry reminders from the daily
// sweep. Delivery is best-effort, failures are logged and never
// propagated to the flows that trigger them.
package notifier

import (
	"time"

	"github.com/proxyluxe/backend/internal/config"
	"github.com/proxyluxe/backend/internal/domain"
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

type Sender interface {
	SendPurchaseConfirmation(email, lang string, expiry time.Time)
	SendExpiryNotice(email, lang string, expiry time.Time)
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	dialer.SSL = cfg.SMTPPort == 465
	return &SMTPSender{
		dialer: dialer,
		from:   cfg.SMTPUser,
	}
}

func (s *SMTPSender) SendPurchaseConfirmation(email, lang string, expiry time.Time) {
	subject := "Thank you for your purchase!"
	body := "Thank you for your purchase! Your proxies will soon be available in your dashboard. Active until " +
		expiry.Format(domain.EndDateLayout) + "."
	if lang == "ru" {
		subject = "Спасибо за покупку!"
		body = "Спасибо за покупку! Ваши прокси скоро будут доступны в личном кабинете. Действуют до " +
			expiry.Format(domain.EndDateLayout) + "."
	}
	s.send(email, subject, body)
}

func (s *SMTPSender) SendExpiryNotice(email, lang string, expiry time.Time) {
	subject := "Your proxy is expiring soon"
	body := "Your proxy will expire on " + expiry.Format(domain.EndDateLayout) +
		". Please renew it to avoid disconnection."
	if lang == "ru" {
		subject = "Срок действия вашего прокси скоро истекает"
		body = "Срок действия вашего прокси заканчивается " + expiry.Format(domain.EndDateLayout) +
			". Пожалуйста, продлите его, чтобы избежать отключения."
	}
	s.send(email, subject, body)
}

func (s *SMTPSender) send(to, subject, body string) {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(msg); err != nil {
		zap.L().Error("can't send email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return
	}
	zap.L().Info("email sent", zap.String("to", to), zap.String("subject", subject))
}
