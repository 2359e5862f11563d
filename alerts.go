package main

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/smtp"
	"time"

	"github.com/slack-go/slack"
)

const chatWebhookTimeout = 10 * time.Second

// AlertDispatcher delivers ticket-creation notifications. Each channel is
// attempted independently, exactly once per ticket; a failure on one channel
// never blocks the other.
type AlertDispatcher struct {
	cfg        Config
	chatClient *http.Client
}

func NewAlertDispatcher(cfg Config) *AlertDispatcher {
	return &AlertDispatcher{
		cfg:        cfg,
		chatClient: &http.Client{Timeout: chatWebhookTimeout},
	}
}

// Notify fans one ticket out to the channels enabled in opts and returns the
// per-channel outcomes. It never returns an error: delivery failures are
// outcomes, not faults.
func (d *AlertDispatcher) Notify(t Ticket, opts RunOptions) []AlertOutcome {
	var outcomes []AlertOutcome
	if opts.ChatAlerts {
		ok, msg := d.sendChat(t)
		outcomes = append(outcomes, AlertOutcome{TicketID: t.TicketID, Channel: ChannelChat, OK: ok, Message: msg})
	}
	if opts.EmailAlerts {
		ok, msg := d.sendEmail(t, opts.EmailRecipient)
		outcomes = append(outcomes, AlertOutcome{TicketID: t.TicketID, Channel: ChannelEmail, OK: ok, Message: msg})
	}
	return outcomes
}

func (d *AlertDispatcher) sendChat(t Ticket) (bool, string) {
	if d.cfg.SlackWebhookURL == "" {
		return false, "chat webhook URL not configured"
	}

	text := fmt.Sprintf(
		"New supplier ticket %s\nSupplier: %s\nComplaint: %s\nProduct: %s\nIssue: %s\nCreated: %s",
		t.TicketID, t.Supplier, t.ComplaintID, t.Product, t.Issue, t.CreatedAt,
	)
	err := slack.PostWebhookCustomHTTP(d.cfg.SlackWebhookURL, d.chatClient, &slack.WebhookMessage{Text: text})
	if err != nil {
		return false, fmt.Sprintf("chat webhook post failed: %v", err)
	}
	return true, "chat alert sent"
}

// sendEmail sends a single plain-text alert over an authenticated STARTTLS
// SMTP session. The session is closed on every exit path; any failure along
// the way becomes a (false, message) outcome.
func (d *AlertDispatcher) sendEmail(t Ticket, recipient string) (bool, string) {
	if !d.cfg.EmailConfigured() {
		return false, "email settings not configured"
	}
	if recipient == "" {
		return false, "alert email recipient not configured"
	}

	subject := fmt.Sprintf("[Supplier Quality] New Supplier Ticket %s", t.TicketID)
	body := fmt.Sprintf(
		"New Supplier Ticket Created\n\nTicket ID: %s\nSupplier: %s\nComplaint ID: %s\nProduct: %s\nIssue: %s\nCreated At: %s\n",
		t.TicketID, t.Supplier, t.ComplaintID, t.Product, t.Issue, t.CreatedAt,
	)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		d.cfg.EmailUsername, recipient, subject, body)

	addr := fmt.Sprintf("%s:%d", d.cfg.SMTPServer, d.cfg.SMTPPort)
	c, err := smtp.Dial(addr)
	if err != nil {
		return false, fmt.Sprintf("SMTP connect to %s: %v", addr, err)
	}
	defer c.Close()

	if err := c.StartTLS(&tls.Config{ServerName: d.cfg.SMTPServer}); err != nil {
		return false, fmt.Sprintf("STARTTLS: %v", err)
	}
	auth := smtp.PlainAuth("", d.cfg.EmailUsername, d.cfg.EmailPassword, d.cfg.SMTPServer)
	if err := c.Auth(auth); err != nil {
		return false, fmt.Sprintf("SMTP auth: %v", err)
	}
	if err := c.Mail(d.cfg.EmailUsername); err != nil {
		return false, fmt.Sprintf("MAIL FROM: %v", err)
	}
	if err := c.Rcpt(recipient); err != nil {
		return false, fmt.Sprintf("RCPT TO: %v", err)
	}
	w, err := c.Data()
	if err != nil {
		return false, fmt.Sprintf("DATA: %v", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return false, fmt.Sprintf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		return false, fmt.Sprintf("DATA close: %v", err)
	}
	if err := c.Quit(); err != nil {
		return false, fmt.Sprintf("QUIT: %v", err)
	}
	return true, fmt.Sprintf("email sent to %s", recipient)
}
