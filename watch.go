package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// RunWatchScheduler processes the inbox directory on a cron schedule. The
// schedule is a standard 5-field cron expression (minute hour day-of-month
// month day-of-week). Examples: "*/15 * * * *" (every 15 minutes),
// "0 9 * * 1-5" (weekdays 9am). Blocks until the process exits.
func RunWatchScheduler(cfg Config, run func(path string) (RunSummary, error)) error {
	schedule := strings.TrimSpace(cfg.WatchSchedule)
	if schedule == "" {
		return fmt.Errorf("watch_schedule is not set")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("invalid watch_schedule '%s': %v", schedule, err)
	}

	log.Printf("Inbox watcher scheduled (cron: %s) dir=%s", schedule, cfg.InboxDir)

	for {
		now := time.Now()
		next := sched.Next(now)
		wait := next.Sub(now)
		log.Printf("Next inbox scan at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

		time.Sleep(wait)

		processed, failed := ProcessInbox(cfg.InboxDir, run)
		if processed+failed > 0 {
			log.Printf("Inbox scan complete: processed=%d failed=%d", processed, failed)
		}
	}
}

// ProcessInbox runs every *.csv batch found in dir, oldest name first.
// Processed files are renamed to <name>.done, failed ones to <name>.failed,
// so a file is picked up exactly once.
func ProcessInbox(dir string, run func(path string) (RunSummary, error)) (processed, failed int) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		log.Printf("inbox scan error dir=%s err=%v", dir, err)
		return 0, 0
	}
	sort.Strings(paths)

	for _, path := range paths {
		summary, err := run(path)
		if err != nil {
			failed++
			log.Printf("inbox batch failed file=%s err=%v", path, err)
			markInboxFile(path, ".failed")
			continue
		}
		processed++
		log.Printf("inbox batch done file=%s\n%s", path, FormatRunSummary(summary))
		markInboxFile(path, ".done")
	}
	return processed, failed
}

func markInboxFile(path, suffix string) {
	if err := os.Rename(path, path+suffix); err != nil {
		log.Printf("inbox rename failed file=%s err=%v", path, err)
	}
}
