// Package mail renders and delivers activation messages. Delivery goes
// over SMTP when a host is configured; otherwise rendered messages are
// appended to logs/mail.log so local environments work without a relay.
package mail

import (
	"bytes"
	"fmt"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/smarthostel/backend/internal/config"
)

const activationTemplate = `Hello {{.Name}},

Thank you for registering with Smart Hostel. Your activation code is:

    {{.Code}}

Enter this code within {{.TTLMinutes}} minutes to activate your account.
If you did not create an account, you can ignore this message.

The Smart Hostel team
`

var activationTmpl = template.Must(template.New("activation").Parse(activationTemplate))

// ActivationData feeds the activation mail template.
type ActivationData struct {
	Name       string
	Code       string
	TTLMinutes int
}

// RenderActivation produces the plain-text body of an activation mail.
func RenderActivation(data ActivationData) (string, error) {
	var buf bytes.Buffer
	if err := activationTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Mailer delivers rendered messages.
type Mailer struct {
	cfg config.SMTPConfig
}

func NewMailer(cfg config.SMTPConfig) *Mailer { return &Mailer{cfg: cfg} }

// SendActivation renders the activation mail for the recipient and
// delivers it. With no SMTP host configured the message lands in
// logs/mail.log instead.
func (m *Mailer) SendActivation(to string, data ActivationData) error {
	body, err := RenderActivation(data)
	if err != nil {
		return fmt.Errorf("render activation mail: %w", err)
	}
	if m.cfg.Host == "" {
		return appendToLog(to, body)
	}
	return m.send(to, "Activate your account", body)
}

func (m *Mailer) send(to, subject, body string) error {
	from := m.cfg.From
	if from == "" {
		from = m.cfg.User
	}
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	addr := m.cfg.Host + ":" + m.cfg.Port
	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// appendToLog writes the rendered message to logs/mail.log, one block per
// message, mirroring how delivery would look to the recipient.
func appendToLog(to, body string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "mail.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	entry := fmt.Sprintf("[%s] To: %s\n%s\n---\n", time.Now().UTC().Format(time.RFC3339), to, body)
	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
