package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const supplierIssueText = "Supplier Issue detected from complaint text"

// Pipeline runs one batch end to end: classify, aggregate, create tickets,
// dispatch alerts. A batch runs on a single logical thread; every external
// call blocks with its own timeout.
type Pipeline struct {
	classifier Classifier
	store      *TicketStore
	alerts     *AlertDispatcher
	history    *sql.DB // optional; nil disables run history
}

func NewPipeline(classifier Classifier, store *TicketStore, alerts *AlertDispatcher, history *sql.DB) *Pipeline {
	return &Pipeline{
		classifier: classifier,
		store:      store,
		alerts:     alerts,
		history:    history,
	}
}

// RunFile reads, validates, and runs one complaints file.
func (p *Pipeline) RunFile(ctx context.Context, path string, opts RunOptions) (RunSummary, error) {
	records, err := ReadComplaintsFile(path)
	if err != nil {
		return RunSummary{Source: filepath.Base(path)}, err
	}
	return p.Run(ctx, filepath.Base(path), records, opts)
}

// Run processes an already-validated batch. Classification failures degrade
// single records to Unknown; store write failures skip that ticket only;
// alert failures are reported outcomes. None of these abort the run. The
// context is checked between records, which is the only cancellation point.
func (p *Pipeline) Run(ctx context.Context, source string, records []ComplaintRecord, opts RunOptions) (RunSummary, error) {
	summary := RunSummary{
		Source:         source,
		SupplierCounts: make(map[string]int),
		StartedAt:      time.Now(),
	}
	threshold := opts.Threshold
	if threshold < 1 {
		threshold = 1
	}

	// Classify in input order; no record's result depends on another's.
	for i := range records {
		if err := ctx.Err(); err != nil {
			summary.Records = records
			summary.FinishedAt = time.Now()
			return summary, err
		}
		category, err := p.classifier.Classify(ctx, records[i].Message)
		if err != nil {
			category = CategoryUnknown
			warn := fmt.Sprintf("classify complaint %s: %v", records[i].ComplaintID, err)
			summary.Warnings = append(summary.Warnings, warn)
			log.Printf("pipeline warning: %s", warn)
		}
		records[i].Category = category
	}
	summary.Records = records

	for _, rec := range records {
		if rec.Category == CategorySupplier {
			summary.SupplierCounts[rec.Supplier]++
		}
	}

	// One ticket per supplier-issue complaint, in input order.
	for _, rec := range records {
		if rec.Category != CategorySupplier {
			continue
		}
		p.createTicket(rec, supplierIssueText, opts, &summary)
	}

	// One aggregate ticket per supplier at or over threshold, keyed to that
	// supplier's first record in input order. Deliberately independent of the
	// per-complaint tickets above: an escalation, not a duplicate.
	for _, supplier := range sortedSuppliers(summary.SupplierCounts) {
		count := summary.SupplierCounts[supplier]
		if count < threshold {
			continue
		}
		rep, ok := firstRecordForSupplier(records, supplier)
		if !ok {
			continue
		}
		issue := fmt.Sprintf("Aggregate alert: %d supplier issues in upload", count)
		p.createTicket(rep, issue, opts, &summary)
	}

	summary.FinishedAt = time.Now()

	if p.history != nil {
		if err := RecordRun(p.history, summary); err != nil {
			log.Printf("run history write failed (non-fatal): %v", err)
		}
	}
	return summary, nil
}

// createTicket appends one ticket and dispatches its alerts. A store write
// failure is recorded as a warning and skips only this ticket.
func (p *Pipeline) createTicket(rec ComplaintRecord, issue string, opts RunOptions, summary *RunSummary) {
	ticket := p.store.NewTicket(rec, issue)
	stored, err := p.store.Append(ticket)
	if err != nil {
		warn := fmt.Sprintf("store ticket for complaint %s: %v", rec.ComplaintID, err)
		summary.Warnings = append(summary.Warnings, warn)
		log.Printf("pipeline warning: %s", warn)
		return
	}
	summary.Tickets = append(summary.Tickets, stored)
	summary.Alerts = append(summary.Alerts, p.alerts.Notify(stored, opts)...)
}

func sortedSuppliers(counts map[string]int) []string {
	suppliers := make([]string, 0, len(counts))
	for s := range counts {
		suppliers = append(suppliers, s)
	}
	sort.Strings(suppliers)
	return suppliers
}

func firstRecordForSupplier(records []ComplaintRecord, supplier string) (ComplaintRecord, bool) {
	for _, rec := range records {
		if rec.Supplier == supplier {
			return rec, true
		}
	}
	return ComplaintRecord{}, false
}

// FormatRunSummary returns a human-readable summary of one run.
func FormatRunSummary(s RunSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Processed %d complaints from %s: %d supplier, %d logistics, %d customer, %d unknown\n",
		len(s.Records), s.Source,
		s.CountByCategory(CategorySupplier), s.CountByCategory(CategoryLogistics),
		s.CountByCategory(CategoryCustomer), s.CountByCategory(CategoryUnknown))

	if len(s.Tickets) == 0 {
		b.WriteString("No supplier-related tickets created.\n")
	} else {
		fmt.Fprintf(&b, "%d ticket(s) created:\n", len(s.Tickets))
		for _, t := range s.Tickets {
			fmt.Fprintf(&b, "  %s  supplier=%s complaint=%s  %s\n", t.TicketID, t.Supplier, t.ComplaintID, t.Issue)
		}
	}

	if len(s.Alerts) > 0 {
		delivered := len(s.Alerts) - s.AlertFailures()
		fmt.Fprintf(&b, "Alerts: %d delivered, %d failed\n", delivered, s.AlertFailures())
		for _, a := range s.Alerts {
			if !a.OK {
				fmt.Fprintf(&b, "  %s %s: %s\n", a.TicketID, a.Channel, a.Message)
			}
		}
	}

	if len(s.Warnings) > 0 {
		fmt.Fprintf(&b, "Warnings:\n")
		for _, w := range s.Warnings {
			fmt.Fprintf(&b, "  %s\n", w)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
