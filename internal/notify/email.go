package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	"wifiwatch/internal/config"
	ntpl "wifiwatch/internal/notify/template"
	"wifiwatch/internal/types"
)

// EmailNotifier sends HTML mail over SMTP
type EmailNotifier struct {
	config    *config.EmailConfig
	logger    *zap.Logger
	tplLoader *ntpl.Loader
	dialer    net.Dialer
}

// NewEmailNotifier creates new email notifier
func NewEmailNotifier(cfg *config.EmailConfig, loader *ntpl.Loader, logger *zap.Logger) (*EmailNotifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &EmailNotifier{
		config:    cfg,
		logger:    logger,
		tplLoader: loader,
		dialer:    net.Dialer{Timeout: 10 * time.Second},
	}, nil
}

// NotifyDeviceIncrease sends a device increase notification
func (n *EmailNotifier) NotifyDeviceIncrease(ctx context.Context, event *types.DeviceEvent) error {
	data := ntpl.NewData(event)
	content, err := n.tplLoader.Render(ntpl.Email, ntpl.DeviceIncrease, data)
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	subject := fmt.Sprintf("[wifiwatch] %s - %s", data.Title, event.Hostname)
	return n.sendEmail(ctx, subject, content)
}

// sendEmail delivers one message to all recipients
func (n *EmailNotifier) sendEmail(ctx context.Context, subject, content string) error {
	addr := net.JoinHostPort(n.config.SMTPServer, fmt.Sprint(n.smtpPort()))

	var (
		conn net.Conn
		err  error
	)
	if n.config.UseTLS {
		d := tls.Dialer{
			NetDialer: &n.dialer,
			Config: &tls.Config{
				ServerName: n.config.SMTPServer,
				MinVersion: tls.VersionTLS12,
			},
		}
		conn, err = d.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = n.dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, n.config.SMTPServer)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if !n.config.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: n.config.SMTPServer, MinVersion: tls.VersionTLS12}); err != nil {
				return fmt.Errorf("STARTTLS failed: %w", err)
			}
		}
	}

	if n.config.Username != "" {
		auth := smtp.PlainAuth("", n.config.Username, n.config.Password, n.config.SMTPServer)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}
	}

	from := cleanEmailAddress(n.config.From)
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("MAIL FROM failed for %s: %w", from, err)
	}
	for _, to := range n.config.To {
		to = cleanEmailAddress(to)
		if err := client.Rcpt(to); err != nil {
			return fmt.Errorf("RCPT TO failed for %s: %w", to, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := w.Write(buildEmailMessage(n.config.From, n.config.To, subject, content, time.Now())); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close message writer: %w", err)
	}
	return client.Quit()
}

func (n *EmailNotifier) smtpPort() int {
	if n.config.SMTPPort > 0 {
		return n.config.SMTPPort
	}
	if n.config.UseTLS {
		return 465
	}
	return 25
}

// buildEmailMessage renders the RFC 5322 message with an HTML body
func buildEmailMessage(from string, to []string, subject, body string, date time.Time) []byte {
	var sb strings.Builder
	sb.WriteString("From: " + from + "\r\n")
	sb.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	sb.WriteString("Subject: " + mimeEncodeSubject(subject) + "\r\n")
	sb.WriteString("Date: " + date.Format(time.RFC1123Z) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	return []byte(sb.String())
}

func mimeEncodeSubject(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.QEncoding.Encode("UTF-8", s)
		}
	}
	return s
}

// cleanEmailAddress strips a display name ("Name <a@b>" -> "a@b")
func cleanEmailAddress(addr string) string {
	if parsed, err := mail.ParseAddress(addr); err == nil {
		return parsed.Address
	}
	return strings.TrimSpace(addr)
}

// Health dials the SMTP server
func (n *EmailNotifier) Health(ctx context.Context) error {
	addr := net.JoinHostPort(n.config.SMTPServer, fmt.Sprint(n.smtpPort()))
	conn, err := n.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp server unreachable: %w", err)
	}
	return conn.Close()
}
