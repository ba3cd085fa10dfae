// Package mailer delivers the product's transactional emails over
// SMTP. Every send is best-effort from the caller's point of view:
// callers log failures, they never propagate them.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"diario/internal/core"
	"diario/pkg/config"
	"diario/pkg/logger"
)

// Mailer implements core.Mailer over a plain SMTP relay
type Mailer struct {
	cfg config.SMTPConfig
}

// New creates a Mailer from config. When SMTP is disabled the mailer
// still renders but drops sends, which keeps dev setups mail-free.
func New(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

var _ core.Mailer = (*Mailer)(nil)

// SendCommentNotification emails the instante owner about a new
// top-level comment
func (m *Mailer) SendCommentNotification(ctx context.Context, mail core.CommentMail) error {
	body, err := renderCommentMail(mail)
	if err != nil {
		return fmt.Errorf("render comment notification: %w", err)
	}
	subject := fmt.Sprintf("Nuevo comentario en «%s»", mail.EntryTitle)
	err = m.send(ctx, mail.To, subject, body)
	logger.Mail("comment_notification", mail.To, err)
	return err
}

// SendReplyNotification emails a comment author about a reply
func (m *Mailer) SendReplyNotification(ctx context.Context, mail core.CommentMail) error {
	body, err := renderReplyMail(mail)
	if err != nil {
		return fmt.Errorf("render reply notification: %w", err)
	}
	subject := fmt.Sprintf("%s ha respondido a tu comentario", mail.CommenterName)
	err = m.send(ctx, mail.To, subject, body)
	logger.Mail("reply_notification", mail.To, err)
	return err
}

// SendNewsletterConfirmation emails the double opt-in link
func (m *Mailer) SendNewsletterConfirmation(ctx context.Context, to, confirmLink string) error {
	body, err := renderConfirmationMail(confirmLink)
	if err != nil {
		return fmt.Errorf("render newsletter confirmation: %w", err)
	}
	err = m.send(ctx, to, "Confirma tu suscripción", body)
	logger.Mail("newsletter_confirmation", to, err)
	return err
}

// SendNewsletterIssue emails one newsletter issue to a confirmed
// subscriber, opt-out link included
func (m *Mailer) SendNewsletterIssue(ctx context.Context, to, subject, body, unsubscribeLink string) error {
	html, err := renderIssueMail(subject, body, unsubscribeLink)
	if err != nil {
		return fmt.Errorf("render newsletter issue: %w", err)
	}
	err = m.send(ctx, to, subject, html)
	logger.Mail("newsletter_issue", to, err)
	return err
}

// send performs the SMTP exchange. Implicit TLS when ForceTLS is set
// (port 465 relays), STARTTLS upgrade otherwise.
func (m *Mailer) send(ctx context.Context, to, subject, htmlBody string) error {
	if !m.cfg.Enabled {
		logger.Debugf("mailer disabled, dropping %q to %s", subject, to)
		return nil
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	msg := m.buildMessage(to, subject, htmlBody)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	if m.cfg.ForceTLS {
		return m.sendImplicitTLS(ctx, addr, auth, to, msg)
	}
	return m.sendSTARTTLS(ctx, addr, auth, to, msg)
}

func (m *Mailer) sendSTARTTLS(ctx context.Context, addr string, auth smtp.Auth, to string, msg []byte) error {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsConfig := &tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}

	return m.exchange(client, auth, to, msg)
}

func (m *Mailer) sendImplicitTLS(ctx context.Context, addr string, auth smtp.Auth, to string, msg []byte) error {
	tlsConfig := &tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}
	dialer := &tls.Dialer{Config: tlsConfig}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp tls dial %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	return m.exchange(client, auth, to, msg)
}

func (m *Mailer) exchange(client *smtp.Client, auth smtp.Auth, to string, msg []byte) error {
	if m.cfg.Username != "" {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := client.Mail(m.fromAddress()); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}
	return client.Quit()
}

func (m *Mailer) buildMessage(to, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

// fromAddress extracts the bare address from a "Name <addr>" From value
func (m *Mailer) fromAddress() string {
	from := m.cfg.From
	if start := strings.LastIndex(from, "<"); start >= 0 {
		if end := strings.LastIndex(from, ">"); end > start {
			return from[start+1 : end]
		}
	}
	return from
}
