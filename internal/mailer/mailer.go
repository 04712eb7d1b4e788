// Package mailer is the file-export + mail-composer sink used by the
// account-closing flow: it hands the generated CSV to the resort's
// accounting inbox as an attachment.
package mailer

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// ErrUnavailable is returned when no mail transport is configured or
// reachable. The closing flow treats it as a precondition failure and aborts
// before any destructive step.
var ErrUnavailable = errors.New("mail is not available")

// Message is one outgoing mail with a single text attachment.
type Message struct {
	Subject        string
	Body           string
	AttachmentName string
	Attachment     []byte
}

// Mailer delivers consumption exports. Implementations must make
// availability cheap to probe so callers can check it before destructive
// flows.
type Mailer interface {
	Available() bool
	Send(msg Message) error
}

// SMTPMailer sends over a plain SMTP relay. MockMode skips the network and
// logs the message instead, for development and tests.
type SMTPMailer struct {
	Addr     string // host:port; empty means unavailable
	From     string
	To       string
	MockMode bool
}

// Available reports whether a send can be attempted.
func (m *SMTPMailer) Available() bool {
	if m.MockMode {
		return true
	}
	if m.Addr == "" || m.From == "" || m.To == "" {
		return false
	}
	conn, err := net.DialTimeout("tcp", m.Addr, 5*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Send delivers the message, or logs it in mock mode.
func (m *SMTPMailer) Send(msg Message) error {
	if m.MockMode {
		log.Printf("mailer (mock): to=%s subject=%q attachment=%s (%d bytes)",
			m.To, msg.Subject, msg.AttachmentName, len(msg.Attachment))
		return nil
	}
	if !m.Available() {
		return ErrUnavailable
	}

	if err := smtp.SendMail(m.Addr, nil, m.From, []string{m.To}, m.encode(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// encode builds a multipart MIME message with the CSV attached.
func (m *SMTPMailer) encode(msg Message) []byte {
	const boundary = "consumption-export"

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", m.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)
	b.WriteString("\r\n\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	fmt.Fprintf(&b, "Content-Type: text/csv; charset=utf-8; name=%q\r\n", msg.AttachmentName)
	fmt.Fprintf(&b, "Content-Disposition: attachment; filename=%q\r\n", msg.AttachmentName)
	b.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
	b.WriteString(base64.StdEncoding.EncodeToString(msg.Attachment))
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}
