package email

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/timeguard/timeguard-api/internal/config"
)

type smtpSender struct {
	cfg config.SMTPConfig
}

// NewSMTPSender returns nil when no SMTP host is configured.
func NewSMTPSender(cfg config.SMTPConfig) Sender {
	if cfg.Host == "" {
		return nil
	}
	return &smtpSender{cfg: cfg}
}

func (s *smtpSender) Send(_ context.Context, msg Message) error {
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	return smtp.SendMail(addr, auth, msg.From, []string{msg.To}, []byte(headers(msg)+msg.HTML))
}
