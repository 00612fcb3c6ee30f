// Package email delivers plain-text mail over SMTP. It supports both
// implicit TLS (port 465) and STARTTLS (587/25) because institutional
// mail servers disagree on which one they speak.
package email

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
)

// Sender is implemented by anything that can deliver a message. The jobs
// package depends on this instead of the concrete SMTP client so tests
// can swap in a recorder.
type Sender interface {
	Send(to, subject, body string) error
}

type SMTPSender struct {
	host   string
	port   string
	user   string
	pass   string
	from   string
	logger *slog.Logger
}

var _ Sender = (*SMTPSender)(nil)

func NewSMTPSender(host, port, user, pass, from string, logger *slog.Logger) *SMTPSender {
	return &SMTPSender{host: host, port: port, user: user, pass: pass, from: from, logger: logger}
}

// Configured reports whether enough settings are present to send mail.
// The digest scheduler skips delivery when this is false.
func (s *SMTPSender) Configured() bool {
	return s.host != "" && s.from != ""
}

func (s *SMTPSender) Send(to, subject, body string) error {
	if !s.Configured() {
		return fmt.Errorf("smtp not configured")
	}

	message := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		s.from, to, subject, body)

	addr := net.JoinHostPort(s.host, s.port)

	var conn net.Conn
	var err error
	if s.port == "465" {
		conn, err = tls.Dial("tcp", addr, &tls.Config{ServerName: s.host})
	} else {
		conn, err = net.Dial("tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("connect to %s: %w", addr, err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Quit()

	if s.port != "465" {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}

	if s.user != "" {
		auth := smtp.PlainAuth("", s.user, s.pass, s.host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(s.from); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("open data writer: %w", err)
	}
	if _, err := w.Write([]byte(message)); err != nil {
		w.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}

	s.logger.Info("email sent", "to", to, "subject", subject)
	return nil
}
