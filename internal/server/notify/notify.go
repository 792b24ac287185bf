// Package notify composes and delivers the account emails: the registration
// confirmation link and the password reset link.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"text/template"
)

// Message is a plain-text email ready for delivery.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Sender delivers a composed message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Recipient identifies who an email goes to and the pending token embedded
// in its link.
type Recipient struct {
	Nombre string
	Email  string
	Token  string
}

var confirmationTemplate = template.Must(template.New("confirmation").Parse(
	`Hola {{.Nombre}},

Tu cuenta ya está casi lista, solo debes confirmarla en el siguiente enlace:

{{.Link}}

Si tú no creaste esta cuenta, puedes ignorar el mensaje.
`))

var resetTemplate = template.Must(template.New("reset").Parse(
	`Hola {{.Nombre}},

Has solicitado reestablecer tu password. Sigue el siguiente enlace para generar uno nuevo:

{{.Link}}

Si tú no solicitaste este cambio, puedes ignorar el mensaje.
`))

const (
	confirmationSubject = "Comprueba tu cuenta"
	resetSubject        = "Reestablece tu password"

	confirmationPath = "/confirmar/"
	resetPath        = "/olvide-password/"
)

// Mailer renders account emails and hands them to a Sender.
type Mailer struct {
	sender      Sender
	from        string
	frontendURL string
}

func NewMailer(sender Sender, from string, frontendURL string) *Mailer {
	return &Mailer{
		sender:      sender,
		from:        from,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// SendConfirmation emails the link that confirms a newly registered account.
func (m *Mailer) SendConfirmation(ctx context.Context, r Recipient) error {
	return m.send(ctx, r, confirmationSubject, confirmationTemplate, confirmationPath)
}

// SendPasswordReset emails the link that lets the account holder pick a new password.
func (m *Mailer) SendPasswordReset(ctx context.Context, r Recipient) error {
	return m.send(ctx, r, resetSubject, resetTemplate, resetPath)
}

func (m *Mailer) send(ctx context.Context, r Recipient, subject string, tmpl *template.Template, path string) error {
	if r.Email == "" || r.Token == "" {
		return fmt.Errorf("notify: recipient email and token are required")
	}

	var body bytes.Buffer
	err := tmpl.Execute(&body, struct {
		Nombre string
		Link   string
	}{
		Nombre: r.Nombre,
		Link:   m.frontendURL + path + url.PathEscape(r.Token),
	})
	if err != nil {
		return fmt.Errorf("notify: render %s: %w", tmpl.Name(), err)
	}

	msg := Message{
		From:    m.from,
		To:      r.Email,
		Subject: subject,
		Body:    body.String(),
	}
	if err := m.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: send %s: %w", tmpl.Name(), err)
	}
	return nil
}
