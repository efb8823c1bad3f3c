package mailer

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"text/template"

	"github.com/rs/zerolog"
)

// SMTPMailer renders a named template and delivers it over plain SMTP.
type SMTPMailer struct {
	host   string
	port   string
	from   string
	auth   smtp.Auth
	logger zerolog.Logger
}

func NewSMTPMailer(host, port, user, pass, from string, logger zerolog.Logger) *SMTPMailer {
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, pass, host)
	}
	return &SMTPMailer{
		host:   host,
		port:   port,
		from:   from,
		auth:   auth,
		logger: logger.With().Str("component", "mailer").Logger(),
	}
}

func (m *SMTPMailer) SendTemplated(ctx context.Context, toAddress, templateKey string, model map[string]interface{}) error {
	tmpl, ok := templates[templateKey]
	if !ok {
		return fmt.Errorf("unknown mail template %q", templateKey)
	}

	var body bytes.Buffer
	fmt.Fprintf(&body, "From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n", m.from, toAddress, tmpl.subject)
	if err := tmpl.body.Execute(&body, model); err != nil {
		return fmt.Errorf("render mail template %q: %w", templateKey, err)
	}

	addr := m.host + ":" + m.port
	if err := smtp.SendMail(addr, m.auth, m.from, []string{toAddress}, body.Bytes()); err != nil {
		return fmt.Errorf("send mail to %s: %w", toAddress, err)
	}
	m.logger.Debug().Str("to", toAddress).Str("template", templateKey).Msg("mail sent")
	return nil
}

type mailTemplate struct {
	subject string
	body    *template.Template
}

var templates = map[string]mailTemplate{
	"contract_activated": {
		subject: "Your lease contract is now active",
		body: template.Must(template.New("contract_activated").Parse(
			"Dear investor,\r\n\r\nContract {{.contractCode}} has been activated. " +
				"The lease runs from {{.startDate}} to {{.endDate}} " +
				"with a total value of {{.totalAmount}}.\r\n")),
	},
	"contract_cancelled": {
		subject: "Lease contract cancelled",
		body: template.Must(template.New("contract_cancelled").Parse(
			"Dear investor,\r\n\r\nContract {{.contractCode}} has been cancelled. " +
				"Reason: {{.reason}}\r\n")),
	},
	"contract_expiring": {
		subject: "Lease contract expiring soon",
		body: template.Must(template.New("contract_expiring").Parse(
			"Dear investor,\r\n\r\nContract {{.contractCode}} expires on {{.endDate}}. " +
				"Please contact the agency to discuss renewal.\r\n")),
	},
	"installment_overdue": {
		subject: "Installment payment overdue",
		body: template.Must(template.New("installment_overdue").Parse(
			"Dear investor,\r\n\r\nInstallment {{.sequence}} of contract {{.contractCode}} " +
				"for {{.amountDue}} was due on {{.dueDate}} and is now overdue.\r\n")),
	},
}
