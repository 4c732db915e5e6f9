package auth

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/smtp"
	"strings"

	"github.com/gofiber/template/django/v3"
)

// EmailRenderer produces the HTML body for outgoing notification emails.
type EmailRenderer interface {
	RenderPasswordReset(username, link string) (string, error)
}

type defaultEmailRenderer struct{}

func (defaultEmailRenderer) RenderPasswordReset(username, link string) (string, error) {
	return fmt.Sprintf(
		"<p>Hello %s,</p><p>Follow this link to reset your password:</p><p><a href=\"%s\">%s</a></p>",
		username, link, link,
	), nil
}

// DjangoEmailRenderer renders email bodies from the embedded views directory.
type DjangoEmailRenderer struct {
	engine *django.Engine
}

// NewDjangoEmailRenderer loads the embedded email templates.
func NewDjangoEmailRenderer() (*DjangoEmailRenderer, error) {
	engine := django.NewFileSystem(http.FS(GetViewsFS()), ".html")
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("unable to load email templates: %w", err)
	}
	return &DjangoEmailRenderer{engine: engine}, nil
}

func (r *DjangoEmailRenderer) RenderPasswordReset(username, link string) (string, error) {
	var buf bytes.Buffer
	err := r.engine.Render(&buf, "emails/password_reset", map[string]any{
		"username": username,
		"link":     link,
	})
	if err != nil {
		return "", fmt.Errorf("unable to render password reset email: %w", err)
	}
	return buf.String(), nil
}

// SMTPMailer delivers mail through a plain SMTP relay.
type SMTPMailer struct {
	addr   string
	from   string
	auth   smtp.Auth
	logger Logger
}

// NewSMTPMailer configures a mailer against host:port. Empty username skips
// authentication, which is what local relay containers expect.
func NewSMTPMailer(addr, from, username, password string) *SMTPMailer {
	m := &SMTPMailer{
		addr:   addr,
		from:   from,
		logger: defLogger{},
	}

	if username != "" {
		host := addr
		if i := strings.IndexByte(addr, ':'); i >= 0 {
			host = addr[:i]
		}
		m.auth = smtp.PlainAuth("", username, password, host)
	}

	return m
}

func (m *SMTPMailer) WithLogger(l Logger) *SMTPMailer {
	if l != nil {
		m.logger = l
	}
	return m
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	msg := buildMIMEMessage(m.from, to, subject, htmlBody)
	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp delivery failed: %w", err)
	}

	m.logger.Debug("delivered email to %s subject %q", to, subject)
	return nil
}

func buildMIMEMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")
	return []byte(b.String())
}

var _ Mailer = (*SMTPMailer)(nil)

// LogMailer writes outgoing mail to the logger instead of delivering it.
// Useful for development and tests.
type LogMailer struct {
	logger Logger
}

func NewLogMailer(logger Logger) *LogMailer {
	if logger == nil {
		logger = defLogger{}
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.logger.Info("email notification to %s subject %q\n%s", to, subject, htmlBody)
	return nil
}

var _ Mailer = (*LogMailer)(nil)
