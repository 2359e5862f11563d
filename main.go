package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
)

func main() {
	fileFlag := flag.String("file", "", "complaints CSV file to process")
	watchFlag := flag.Bool("watch", false, "scan the inbox directory on the configured cron schedule")
	listFlag := flag.Bool("list", false, "print recent tickets and exit")
	thresholdFlag := flag.Int("threshold", 0, "override auto-ticket threshold for this run (>= 1)")
	chatFlag := flag.String("chat-alerts", "", "override chat alerts for this run (true/false)")
	emailFlag := flag.String("email-alerts", "", "override email alerts for this run (true/false)")
	recipientFlag := flag.String("email-to", "", "override alert email recipient for this run")
	flag.Parse()

	cfg := LoadConfig()
	store := NewTicketStore(cfg.TicketsFile)

	if *listFlag {
		tickets := store.ListAll()
		if len(tickets) == 0 {
			fmt.Println("No tickets yet.")
			return
		}
		for _, t := range tickets {
			fmt.Printf("%s  %s  %s  supplier=%s complaint=%s  %s\n",
				t.TicketID, t.CreatedAt, t.Status, t.Supplier, t.ComplaintID, t.Issue)
		}
		return
	}

	opts := cfg.RunOptions()
	if *thresholdFlag > 0 {
		opts.Threshold = *thresholdFlag
	}
	applyBoolFlag(&opts.ChatAlerts, *chatFlag, "chat-alerts")
	applyBoolFlag(&opts.EmailAlerts, *emailFlag, "email-alerts")
	if *recipientFlag != "" {
		opts.EmailRecipient = *recipientFlag
	}

	db, err := InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init history database: %v", err)
	}
	defer db.Close()

	pipeline := NewPipeline(NewClassifier(cfg), store, NewAlertDispatcher(cfg), db)

	switch {
	case *fileFlag != "":
		summary, err := pipeline.RunFile(context.Background(), *fileFlag, opts)
		if err != nil {
			log.Fatalf("Batch run failed: %v", err)
		}
		fmt.Println(FormatRunSummary(summary))
	case *watchFlag:
		os.MkdirAll(cfg.InboxDir, 0755)
		run := func(path string) (RunSummary, error) {
			return pipeline.RunFile(context.Background(), path, opts)
		}
		if err := RunWatchScheduler(cfg, run); err != nil {
			log.Fatalf("Watcher error: %v", err)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func applyBoolFlag(field *bool, val, name string) {
	if val == "" {
		return
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		log.Fatalf("invalid -%s '%s': %v", name, val, err)
	}
	*field = parsed
}
