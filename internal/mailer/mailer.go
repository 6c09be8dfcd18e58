// Package mailer sends transactional email over SMTP.
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
)

const confirmationTemplate = `<html>
<body>
	<p>Hi {{.Username}},</p>
	<p>Thanks for signing up. Please confirm your email address by following the link below.</p>
	<p><a href="{{.ConfirmURL}}">Confirm your email</a></p>
	<p>If you did not create an account, you can ignore this message.</p>
</body>
</html>`

// Mailer renders and sends confirmation emails.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	baseURL  string
	tmpl     *template.Template
}

// Config collects the SMTP and link settings for the Mailer.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// BaseURL is the public address of the API, used to build the
	// confirmation link.
	BaseURL string
}

// New constructs a Mailer.
func New(cfg Config) (*Mailer, error) {
	tmpl, err := template.New("confirmation").Parse(confirmationTemplate)
	if err != nil {
		return nil, fmt.Errorf("mailer: parse template: %w", err)
	}
	return &Mailer{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		baseURL:  cfg.BaseURL,
		tmpl:     tmpl,
	}, nil
}

type confirmationData struct {
	Username   string
	ConfirmURL string
}

// SendConfirmation renders the confirmation email and delivers it.
func (m *Mailer) SendConfirmation(to, username, token string) error {
	msg, err := m.message(to, username, token)
	if err != nil {
		return err
	}

	var smtpAuth smtp.Auth
	if m.username != "" {
		smtpAuth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	if err := smtp.SendMail(addr, smtpAuth, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}
	return nil
}

// message renders the full MIME message for a confirmation email.
func (m *Mailer) message(to, username, token string) ([]byte, error) {
	body := &bytes.Buffer{}
	data := confirmationData{
		Username:   username,
		ConfirmURL: fmt.Sprintf("%s/auth/confirmed_email/%s", m.baseURL, token),
	}
	if err := m.tmpl.Execute(body, data); err != nil {
		return nil, fmt.Errorf("mailer: render: %w", err)
	}

	msg := &bytes.Buffer{}
	fmt.Fprintf(msg, "From: %s\r\n", m.from)
	fmt.Fprintf(msg, "To: %s\r\n", to)
	fmt.Fprintf(msg, "Subject: Confirm your email\r\n")
	fmt.Fprintf(msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(msg, "Content-Type: text/html; charset=\"UTF-8\"\r\n")
	fmt.Fprintf(msg, "\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}
