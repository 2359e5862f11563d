package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func sampleTicket() Ticket {
	return Ticket{
		TicketID:    "T1700000000000",
		ComplaintID: "C001",
		Supplier:    "Acme",
		Product:     "Saree",
		OrderID:     "O-42",
		Issue:       "Supplier Issue detected from complaint text",
		CreatedAt:   "2025-01-01 12:00:00",
		Status:      "Open",
	}
}

func TestNotifyChatUnconfigured(t *testing.T) {
	d := NewAlertDispatcher(Config{})
	outcomes := d.Notify(sampleTicket(), RunOptions{ChatAlerts: true})

	if len(outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(outcomes))
	}
	if outcomes[0].Channel != ChannelChat || outcomes[0].OK {
		t.Fatalf("expected chat failure outcome, got %+v", outcomes[0])
	}
	if !strings.Contains(outcomes[0].Message, "not configured") {
		t.Fatalf("expected descriptive message, got %q", outcomes[0].Message)
	}
}

func TestNotifyChatPostsTicketDetails(t *testing.T) {
	var payload struct {
		Text string `json:"text"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("webhook payload not JSON: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewAlertDispatcher(Config{SlackWebhookURL: srv.URL})
	ticket := sampleTicket()
	outcomes := d.Notify(ticket, RunOptions{ChatAlerts: true})

	if len(outcomes) != 1 || !outcomes[0].OK {
		t.Fatalf("expected chat success, got %+v", outcomes)
	}
	for _, want := range []string{ticket.TicketID, ticket.Supplier, ticket.ComplaintID, ticket.Product, ticket.Issue, ticket.CreatedAt} {
		if !strings.Contains(payload.Text, want) {
			t.Fatalf("webhook text missing %q:\n%s", want, payload.Text)
		}
	}
}

func TestNotifyChatNon200IsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewAlertDispatcher(Config{SlackWebhookURL: srv.URL})
	outcomes := d.Notify(sampleTicket(), RunOptions{ChatAlerts: true})

	if len(outcomes) != 1 || outcomes[0].OK {
		t.Fatalf("expected chat failure for 500, got %+v", outcomes)
	}
	if outcomes[0].Message == "" {
		t.Fatal("expected failure message to carry detail")
	}
}

func TestNotifyEmailUnconfigured(t *testing.T) {
	d := NewAlertDispatcher(Config{})
	outcomes := d.Notify(sampleTicket(), RunOptions{EmailAlerts: true, EmailRecipient: "ops@example.com"})

	if len(outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(outcomes))
	}
	if outcomes[0].Channel != ChannelEmail || outcomes[0].OK {
		t.Fatalf("expected email failure outcome, got %+v", outcomes[0])
	}
	if outcomes[0].Message != "email settings not configured" {
		t.Fatalf("unexpected message: %q", outcomes[0].Message)
	}
}

func TestNotifyEmailMissingRecipient(t *testing.T) {
	cfg := Config{SMTPServer: "smtp.example.com", SMTPPort: 587, EmailUsername: "bot", EmailPassword: "secret"}
	d := NewAlertDispatcher(cfg)
	outcomes := d.Notify(sampleTicket(), RunOptions{EmailAlerts: true})

	if len(outcomes) != 1 || outcomes[0].OK {
		t.Fatalf("expected email failure outcome, got %+v", outcomes)
	}
	if !strings.Contains(outcomes[0].Message, "recipient") {
		t.Fatalf("unexpected message: %q", outcomes[0].Message)
	}
}

func TestNotifyChannelsAreIndependent(t *testing.T) {
	// Chat webhook is unreachable, email is not configured at all: both fail
	// independently and both outcomes are reported.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // now unreachable

	d := NewAlertDispatcher(Config{SlackWebhookURL: srv.URL})
	outcomes := d.Notify(sampleTicket(), RunOptions{ChatAlerts: true, EmailAlerts: true, EmailRecipient: "ops@example.com"})

	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	if outcomes[0].Channel != ChannelChat || outcomes[0].OK {
		t.Fatalf("expected chat failure, got %+v", outcomes[0])
	}
	if outcomes[1].Channel != ChannelEmail || outcomes[1].OK {
		t.Fatalf("expected email failure, got %+v", outcomes[1])
	}
}

func TestNotifyNothingEnabled(t *testing.T) {
	d := NewAlertDispatcher(Config{})
	if outcomes := d.Notify(sampleTicket(), RunOptions{}); len(outcomes) != 0 {
		t.Fatalf("expected no outcomes with all channels disabled, got %+v", outcomes)
	}
}
