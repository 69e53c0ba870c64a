// Package mail delivers verification codes to members. The SMTP
// implementation uses net/smtp directly; the dev implementation logs the
// message and fabricates a preview URL so local flows can complete without
// a mail server.
package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ghost-league/internal/config"
)

// Mailer dispatches verification emails. PreviewURL is empty for real
// deliveries and set for dev deliveries.
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, username, code string) (previewURL string, err error)
}

// NewMailer selects SMTP delivery when a host is configured, otherwise the
// logging mailer.
func NewMailer(cfg config.MailConfig, logger *zap.Logger) Mailer {
	if cfg.SMTPHost != "" {
		return &smtpMailer{cfg: cfg, logger: logger}
	}
	logger.Warn("MAIL_SMTP_HOST not provided; verification codes will be logged, not sent")
	return &logMailer{cfg: cfg, logger: logger}
}

type smtpMailer struct {
	cfg    config.MailConfig
	logger *zap.Logger
}

func (m *smtpMailer) SendVerificationCode(_ context.Context, to, username, code string) (string, error) {
	body := fmt.Sprintf(
		"From: Ghost League <%s>\r\nTo: %s\r\nSubject: Your Ghost League verification code\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n"+
			"Hi %s,\r\n\r\nYour verification code is %s. It expires in a few minutes.\r\n\r\nIf you did not request this, you can ignore this email.\r\n",
		m.cfg.From, to, username, code,
	)

	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort
	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPassword, m.cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(body)); err != nil {
		m.logger.Error("send verification email", zap.String("to", to), zap.Error(err))
		return "", fmt.Errorf("send verification email: %w", err)
	}

	m.logger.Info("verification email sent", zap.String("to", to))
	return "", nil
}

type logMailer struct {
	cfg    config.MailConfig
	logger *zap.Logger
}

func (m *logMailer) SendVerificationCode(_ context.Context, to, username, code string) (string, error) {
	preview := fmt.Sprintf("%s/%s", m.cfg.PreviewBase, uuid.NewString())
	m.logger.Info("verification code (dev delivery)",
		zap.String("to", to),
		zap.String("username", username),
		zap.String("code", code),
		zap.String("preview_url", preview),
	)
	return preview, nil
}
