package pkg

import (
	"bytes"
	"crypto/tls"
	"html/template"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// From is the display sender; defaults to Username.
	From string
}

// Mailer sends HTML mail through one SMTP relay.
type Mailer struct {
	from   string
	dialer *gomail.Dialer
}

func NewMailer(cfg SMTPConfig) *Mailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host}
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &Mailer{from: from, dialer: d}
}

func (m *Mailer) Compose(to, subject, htmlBody string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return msg
}

func (m *Mailer) Send(to, subject, htmlBody string) error {
	return m.dialer.DialAndSend(m.Compose(to, subject, htmlBody))
}

// ApprovalNotice is what the approval mail says about an event.
type ApprovalNotice struct {
	Title    string
	Location string
	When     string
	Link     string
}

var approvalTmpl = template.Must(template.New("approval").Parse(
	`<p>Hello,</p>` +
		`<p>Your event <b>{{.Title}}</b> has been approved and is now public.</p>` +
		`{{if .Location}}<p>Location: {{.Location}}</p>{{end}}` +
		`{{if .When}}<p>When: {{.When}}</p>{{end}}` +
		`{{if .Link}}<p><a href="{{.Link}}">{{.Link}}</a></p>{{end}}`))

// ApprovalHTML renders the body of the mail sent to a submitter once their
// event is approved.
func ApprovalHTML(n ApprovalNotice) (string, error) {
	var buf bytes.Buffer
	if err := approvalTmpl.Execute(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
