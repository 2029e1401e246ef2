package email

import (
	"crypto/tls"
	"fmt"
	"html"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// EmailService defines the interface for email operations
type EmailService interface {
	SendClassInvitation(toEmail, toName, className, roll string) error
	SendWelcomeEmail(toEmail, toName string) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
	BaseURL   string
}

// Message is a composed email ready for delivery
type Message struct {
	To      string
	Subject string
	HTML    string
}

// SendFunc delivers a composed message
type SendFunc func(cfg SMTPConfig, msg Message) error

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
	send   SendFunc
}

// NewEmailService creates a new EmailService delivering over SMTP
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	return NewEmailServiceWithSender(config, logger, sendSMTP)
}

// NewEmailServiceWithSender creates an EmailService with a custom delivery function
func NewEmailServiceWithSender(config SMTPConfig, logger zerolog.Logger, send SendFunc) EmailService {
	return &EmailServiceImpl{
		config: config,
		logger: logger,
		send:   send,
	}
}

func (s *EmailServiceImpl) configured() bool {
	return s.config.Host != "" && s.config.FromEmail != ""
}

// SendClassInvitation tells a manually added member which class they were added to
func (s *EmailServiceImpl) SendClassInvitation(toEmail, toName, className, roll string) error {
	if !s.configured() {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("className", className).
			Msg("SMTP not configured - class invitation not sent")
		return nil
	}

	rollLine := ""
	if roll != "" {
		rollLine = fmt.Sprintf("<p>Your roll number in this class is <strong>%s</strong>.</p>", html.EscapeString(roll))
	}

	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">You have been added to %s</h2>
				<p>Hello %s,</p>
				<p>An administrator added you to the class <strong>%s</strong> on FlashClass.</p>
				%s
				<p>Sign up at <a href="%s/register">%s</a> with this email address to study the class materials.</p>
				<p>Best regards,<br>The FlashClass Team</p>
			</div>
		</body>
		</html>
	`, html.EscapeString(className), html.EscapeString(toName), html.EscapeString(className),
		rollLine, s.config.BaseURL, s.config.BaseURL)

	return s.deliver(Message{
		To:      toEmail,
		Subject: fmt.Sprintf("You have been added to %s - FlashClass", className),
		HTML:    body,
	})
}

// SendWelcomeEmail greets a newly registered user
func (s *EmailServiceImpl) SendWelcomeEmail(toEmail, toName string) error {
	if !s.configured() {
		s.logger.Debug().Str("toEmail", toEmail).Msg("SMTP not configured - welcome email not sent")
		return nil
	}

	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">Welcome to FlashClass!</h2>
				<p>Hello %s,</p>
				<p>Your account is ready. Create your first flashcards and organize them into folders.</p>
				<p>Best regards,<br>The FlashClass Team</p>
			</div>
		</body>
		</html>
	`, html.EscapeString(toName))

	return s.deliver(Message{To: toEmail, Subject: "Welcome to FlashClass", HTML: body})
}

func (s *EmailServiceImpl) deliver(msg Message) error {
	if err := s.send(s.config, msg); err != nil {
		s.logger.Error().Err(err).Str("toEmail", msg.To).Msg("Failed to send email")
		return err
	}
	s.logger.Info().Str("toEmail", msg.To).Str("subject", msg.Subject).Msg("Email sent")
	return nil
}

// compose renders headers and body in a fixed header order
func compose(cfg SMTPConfig, msg Message) []byte {
	var b strings.Builder
	headers := [][2]string{
		{"From", fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)},
		{"To", msg.To},
		{"Subject", msg.Subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}
	for _, h := range headers {
		fmt.Fprintf(&b, "%s: %s\r\n", h[0], h[1])
	}
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}

func sendSMTP(cfg SMTPConfig, msg Message) error {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	serverAddress := cfg.Host + ":" + strconv.Itoa(cfg.Port)
	payload := compose(cfg, msg)

	if !cfg.UseTLS {
		if err := smtp.SendMail(serverAddress, auth, cfg.FromEmail, []string{msg.To}, payload); err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: cfg.Host})
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}
	if err = client.Mail(cfg.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(payload); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return nil
}
