// Package notify delivers invalid-IPN reports over SMTP and Telegram.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service interface {
	Send(ctx context.Context, e Email) error
}

type Email struct {
	FromName string
	From     string
	To       []string
	Subject  string
	TextBody string
}

// ReportMailer sends plain-text reports from a fixed sender.
type ReportMailer struct {
	service  Service
	from     string
	fromName string
}

func NewReportMailer(service Service, from, fromName string) *ReportMailer {
	return &ReportMailer{service: service, from: from, fromName: fromName}
}

func (m *ReportMailer) Send(ctx context.Context, to, subject, body string) error {
	return m.service.Send(ctx, Email{
		FromName: m.fromName,
		From:     m.from,
		To:       []string{to},
		Subject:  subject,
		TextBody: body,
	})
}

func buildMessage(e Email, messageIDDomain string, now time.Time) (string, error) {
	if len(e.To) == 0 {
		return "", fmt.Errorf("mailer: at least one recipient required")
	}
	if e.From == "" {
		return "", fmt.Errorf("mailer: from address required")
	}
	if e.Subject == "" {
		return "", fmt.Errorf("mailer: subject required")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Message-ID: <%s@%s>\r\n", uuid.NewString(), messageIDDomain)
	fmt.Fprintf(&b, "From: %s\r\n", formatAddress(e.FromName, e.From))
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(e.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", encodeHeader(e.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")

	// SMTP bodies use CRLF line endings.
	body := strings.ReplaceAll(e.TextBody, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\r\n")
	}
	return b.String(), nil
}
