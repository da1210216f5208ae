package notify

import (
	"fmt"
	"net/smtp"
	"os"
	"strings"
)

// SMTPSender envía el OTP por email a través de un relay SMTP (Brevo en
// producción). Usa STARTTLS en el puerto 587, que es lo que smtp.SendMail
// negocia automáticamente cuando el servidor lo anuncia.
type SMTPSender struct {
	host     string
	port     string
	user     string
	password string
	from     string
	fromName string
}

// NewSMTPSender lee la configuración SMTP desde env vars.
func NewSMTPSender() *SMTPSender {
	host := strings.TrimSpace(os.Getenv("SMTP_HOST"))
	if host == "" {
		host = "smtp-relay.brevo.com"
	}
	port := strings.TrimSpace(os.Getenv("SMTP_PORT"))
	if port == "" {
		port = "587"
	}
	fromName := strings.TrimSpace(os.Getenv("SMTP_FROM_NAME"))
	if fromName == "" {
		fromName = "Clean City Reporter"
	}
	return &SMTPSender{
		host:     host,
		port:     port,
		user:     strings.TrimSpace(os.Getenv("SMTP_USER")),
		password: strings.TrimSpace(os.Getenv("SMTP_PASSWORD")),
		from:     strings.TrimSpace(os.Getenv("SMTP_FROM_EMAIL")),
		fromName: fromName,
	}
}

func (s *SMTPSender) configured() bool {
	return s.user != "" && s.password != "" && s.from != ""
}

// Send dispatches the OTP email. Never logs the code.
func (s *SMTPSender) Send(destination, code string) error {
	if !s.configured() {
		return fmt.Errorf("smtp sender: credentials not configured")
	}

	subject := "Clean City Reporter - OTP Verification"
	body := fmt.Sprintf(
		"Hello,\r\n\r\n"+
			"Your OTP for email verification is: %s\r\n\r\n"+
			"This OTP expires in 5 minutes.\r\n"+
			"Do not share this code with anyone. Clean City Reporter will never ask for your OTP.\r\n\r\n"+
			"If you didn't request this code, please ignore this email.\r\n",
		code,
	)
	msg := []byte(
		"From: " + s.fromName + " <" + s.from + ">\r\n" +
			"To: " + destination + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=UTF-8\r\n" +
			"\r\n" +
			body,
	)

	auth := smtp.PlainAuth("", s.user, s.password, s.host)
	if err := smtp.SendMail(s.host+":"+s.port, auth, s.from, []string{destination}, msg); err != nil {
		return fmt.Errorf("smtp sender: %w", err)
	}
	return nil
}
