package mailer

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// SMTPMailer implements Mailer over SMTP.
type SMTPMailer struct {
	dialer     *gomail.Dialer
	from       string
	senderName string
	logger     *zap.Logger
}

func NewSMTPMailer(host string, port int, username, password, fromEmail, senderName string, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer:     gomail.NewDialer(host, port, username, password),
		from:       fromEmail,
		senderName: senderName,
		logger:     logger.Named("SMTPMailer"),
	}
}

func (s *SMTPMailer) SendVerificationEmail(toEmail, toName, otp string) error {
	subject := "Verify Your Email Address"
	htmlBody := fmt.Sprintf(`<p>Hello %s,</p>
		<p>Your verification code is: <b>%s</b></p>
		<p>This code will expire in 10 minutes.</p>
		<p>If you did not sign up, please ignore this email.</p>`, toName, otp)
	return s.send(toEmail, subject, htmlBody)
}

func (s *SMTPMailer) SendPasswordResetEmail(toEmail, toName, otp string) error {
	subject := "Reset Your Password"
	htmlBody := fmt.Sprintf(`<p>Hello %s,</p>
		<p>Your password reset code is: <b>%s</b></p>
		<p>This code will expire in 10 minutes.</p>
		<p>If you did not request a password reset, please ignore this email.</p>`, toName, otp)
	return s.send(toEmail, subject, htmlBody)
}

func (s *SMTPMailer) send(toEmail, subject, htmlBody string) error {
	m := gomail.NewMessage()
	if s.senderName != "" {
		m.SetHeader("From", m.FormatAddress(s.from, s.senderName))
	} else {
		m.SetHeader("From", s.from)
	}
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error("Failed to send email via SMTP", zap.String("toEmail", toEmail), zap.String("subject", subject), zap.Error(err))
		return fmt.Errorf("smtp send failed: %w", err)
	}
	s.logger.Info("Email sent", zap.String("toEmail", toEmail), zap.String("subject", subject))
	return nil
}
