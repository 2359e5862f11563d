package main

import (
	"encoding/csv"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"
)

// ticketHeader is the durable column contract of the ticket log. Other
// tooling reads this file; order and spelling must not change.
var ticketHeader = []string{
	"Ticket_ID", "Complaint_ID", "Supplier", "Product",
	"Order_ID", "Issue", "Created_At", "Status", "Notes",
}

const createdAtLayout = "2006-01-02 15:04:05"

// listAllLimit bounds ListAll for display purposes.
const listAllLimit = 200

// TicketStore is an append-only CSV log of tickets. A single process may
// append concurrently; the mutex serializes both initialization and writes.
type TicketStore struct {
	path string

	mu          sync.Mutex
	initialized bool
	lastIDMilli int64
}

func NewTicketStore(path string) *TicketStore {
	return &TicketStore{path: path}
}

// ensureInitialized writes the header row once if the log does not exist
// yet. Safe to call repeatedly; callers must hold s.mu.
func (s *TicketStore) ensureInitialized() error {
	if s.initialized {
		return nil
	}
	if _, err := os.Stat(s.path); err == nil {
		s.initialized = true
		return nil
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			s.initialized = true
			return nil
		}
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(ticketHeader); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	s.initialized = true
	return nil
}

// NewTicket builds an open ticket for a complaint. The ticket ID keeps the
// "T"+milliseconds shape but is bumped past the last issued value so rapid
// creation cannot collide within this process.
func (s *TicketStore) NewTicket(rec ComplaintRecord, issue string) Ticket {
	return Ticket{
		TicketID:    s.nextTicketID(),
		ComplaintID: rec.ComplaintID,
		Supplier:    rec.Supplier,
		Product:     rec.Product,
		OrderID:     rec.OrderID,
		Issue:       issue,
		CreatedAt:   time.Now().Format(createdAtLayout),
		Status:      "Open",
		Notes:       "",
	}
}

func (s *TicketStore) nextTicketID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := time.Now().UnixMilli()
	if ms <= s.lastIDMilli {
		ms = s.lastIDMilli + 1
	}
	s.lastIDMilli = ms
	return "T" + strconv.FormatInt(ms, 10)
}

// Append writes exactly one row to the end of the log and returns the stored
// ticket unchanged. Prior rows are never rewritten.
func (s *TicketStore) Append(t Ticket) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureInitialized(); err != nil {
		return Ticket{}, err
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return Ticket{}, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(ticketRow(t)); err != nil {
		return Ticket{}, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Ticket{}, err
	}
	return t, nil
}

func ticketRow(t Ticket) []string {
	return []string{
		t.TicketID, t.ComplaintID, t.Supplier, t.Product,
		t.OrderID, t.Issue, t.CreatedAt, t.Status, t.Notes,
	}
}

// ListAll returns tickets ordered by creation time descending, capped at 200
// for display. A missing or unreadable log is reported as empty with a
// logged diagnostic, never as a failure.
func (s *TicketStore) ListAll() []Ticket {
	f, err := os.Open(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("ticket log read error path=%s err=%v", s.path, err)
		}
		return nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var tickets []Ticket
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("ticket log malformed row skipped path=%s err=%v", s.path, err)
			continue
		}
		if first {
			first = false
			continue // header
		}
		if len(row) < len(ticketHeader) {
			log.Printf("ticket log short row skipped path=%s fields=%d", s.path, len(row))
			continue
		}
		tickets = append(tickets, Ticket{
			TicketID:    row[0],
			ComplaintID: row[1],
			Supplier:    row[2],
			Product:     row[3],
			OrderID:     row[4],
			Issue:       row[5],
			CreatedAt:   row[6],
			Status:      row[7],
			Notes:       row[8],
		})
	}

	// Created_At is a fixed-width layout, so string order is time order.
	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt > tickets[j].CreatedAt
	})
	if len(tickets) > listAllLimit {
		tickets = tickets[:listAllLimit]
	}
	return tickets
}
