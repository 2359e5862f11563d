package main

import (
	"fmt"
	"strings"
	"time"
)

// Category is the triage outcome for a single complaint.
type Category string

const (
	CategorySupplier  Category = "Supplier Issue"
	CategoryLogistics Category = "Logistics Issue"
	CategoryCustomer  Category = "Customer Issue"
	// CategoryUnknown marks complaints the classifier could not reach a
	// verdict on. Unknown complaints never produce tickets.
	CategoryUnknown Category = "Unknown"
)

type ComplaintRecord struct {
	ComplaintID string
	Message     string
	Supplier    string
	Product     string
	OrderID     string // optional
	Category    Category
}

// Ticket is one row of the ticket log. CreatedAt is kept as the formatted
// string that goes into the file so a read-back compares byte-for-byte.
type Ticket struct {
	TicketID    string
	ComplaintID string
	Supplier    string
	Product     string
	OrderID     string
	Issue       string
	CreatedAt   string
	Status      string // always "Open" at creation
	Notes       string
}

type AlertChannel string

const (
	ChannelChat  AlertChannel = "chat"
	ChannelEmail AlertChannel = "email"
)

// AlertOutcome is the per-channel delivery result for one ticket.
type AlertOutcome struct {
	TicketID string
	Channel  AlertChannel
	OK       bool
	Message  string
}

// RunSummary is the full result of one batch run.
type RunSummary struct {
	Source         string
	Records        []ComplaintRecord
	SupplierCounts map[string]int
	Tickets        []Ticket
	Alerts         []AlertOutcome
	Warnings       []string
	StartedAt      time.Time
	FinishedAt     time.Time
}

func (s RunSummary) AlertFailures() int {
	failures := 0
	for _, a := range s.Alerts {
		if !a.OK {
			failures++
		}
	}
	return failures
}

func (s RunSummary) CountByCategory(c Category) int {
	n := 0
	for _, rec := range s.Records {
		if rec.Category == c {
			n++
		}
	}
	return n
}

// StructuralError means the uploaded batch is missing required columns and
// nothing in it was processed.
type StructuralError struct {
	Missing []string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("batch is missing required columns: %s", strings.Join(e.Missing, ", "))
}
