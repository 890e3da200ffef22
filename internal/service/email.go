package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/Masterminds/sprig/v3"
	"github.com/contactbook/api/config"
	"github.com/contactbook/api/pkg/logger"
)

const confirmationHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2>Hello {{ .Username | title }},</h2>
  <p>Thanks for signing up for {{ .AppName }}. Confirm your email address to activate your account:</p>
  <p><a href="{{ .ConfirmURL }}">Confirm email</a></p>
  <p>If the link does not work, open this URL:</p>
  <p>{{ .ConfirmURL }}</p>
  <p style="color: #6c757d; font-size: 12px;">The link expires in {{ .ExpiresIn }}. If you did not create this account, ignore this message.</p>
</body>
</html>`

const confirmationText = `Hello {{ .Username | title }},

Thanks for signing up for {{ .AppName }}. Confirm your email address to activate your account:

{{ .ConfirmURL }}

The link expires in {{ .ExpiresIn }}. If you did not create this account, ignore this message.`

// Mailer delivers account emails over SMTP.
type Mailer struct {
	cfg      config.MailConfig
	appName  string
	baseURL  string
	htmlTmpl *template.Template
	textTmpl *template.Template
}

func NewMailer(cfg *config.Config) (*Mailer, error) {
	htmlTmpl, err := template.New("confirmation_html").Funcs(sprig.FuncMap()).Parse(confirmationHTML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse confirmation HTML template: %w", err)
	}

	textTmpl, err := template.New("confirmation_text").Funcs(sprig.FuncMap()).Parse(confirmationText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse confirmation text template: %w", err)
	}

	return &Mailer{
		cfg:      cfg.Mail,
		appName:  cfg.App.Name,
		baseURL:  strings.TrimRight(cfg.App.BaseURL, "/"),
		htmlTmpl: htmlTmpl,
		textTmpl: textTmpl,
	}, nil
}

type confirmationData struct {
	Username   string
	AppName    string
	ConfirmURL string
	ExpiresIn  string
}

// SendConfirmation delivers the confirmation link for token to email.
func (m *Mailer) SendConfirmation(ctx context.Context, email, username, token string) error {
	data := confirmationData{
		Username:   username,
		AppName:    m.appName,
		ConfirmURL: fmt.Sprintf("%s/api/v1/auth/confirmed_email/%s", m.baseURL, token),
		ExpiresIn:  "7 days",
	}

	var htmlBody, textBody bytes.Buffer
	if err := m.htmlTmpl.Execute(&htmlBody, data); err != nil {
		return fmt.Errorf("failed to render confirmation email: %w", err)
	}
	if err := m.textTmpl.Execute(&textBody, data); err != nil {
		return fmt.Errorf("failed to render confirmation email: %w", err)
	}

	message := m.buildMessage(email, "Confirm your email", textBody.String(), htmlBody.String())

	if err := m.send(ctx, email, message); err != nil {
		logger.ErrorWithContext(ctx, "Failed to send confirmation email").
			String("email", email).
			Err(err).
			Log()
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}

	logger.InfoWithContext(ctx, "Confirmation email sent").
		String("email", email).
		Log()

	return nil
}

func (m *Mailer) buildMessage(to, subject, textBody, htmlBody string) string {
	from := fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.From)

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: multipart/alternative; boundary=BOUNDARY\r\n")
	msg.WriteString("\r\n")

	msg.WriteString("--BOUNDARY\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(textBody)
	msg.WriteString("\r\n")

	msg.WriteString("--BOUNDARY\r\n")
	msg.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	msg.WriteString(htmlBody)
	msg.WriteString("\r\n")

	msg.WriteString("--BOUNDARY--\r\n")

	return msg.String()
}

func (m *Mailer) send(ctx context.Context, recipient, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	client, err := smtp.Dial(m.cfg.Address())
	if err != nil {
		return fmt.Errorf("failed to dial SMTP server: %w", err)
	}
	defer client.Close()

	if m.cfg.StartTLS {
		tlsConfig := &tls.Config{ServerName: m.cfg.Host}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(recipient); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err := wc.Write([]byte(message)); err != nil {
		wc.Close()
		return fmt.Errorf("failed to write email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}
