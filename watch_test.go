package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestProcessInboxRenamesHandledFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.csv", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("write inbox file: %v", err)
		}
	}

	var ran []string
	run := func(path string) (RunSummary, error) {
		ran = append(ran, filepath.Base(path))
		if filepath.Base(path) == "b.csv" {
			return RunSummary{}, errors.New("bad batch")
		}
		return RunSummary{Source: filepath.Base(path)}, nil
	}

	processed, failed := ProcessInbox(dir, run)
	if processed != 1 || failed != 1 {
		t.Fatalf("expected processed=1 failed=1, got %d/%d", processed, failed)
	}
	if len(ran) != 2 || ran[0] != "a.csv" || ran[1] != "b.csv" {
		t.Fatalf("expected csv files in name order, got %v", ran)
	}

	if _, err := os.Stat(filepath.Join(dir, "a.csv.done")); err != nil {
		t.Fatalf("expected a.csv renamed to .done: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "b.csv.failed")); err != nil {
		t.Fatalf("expected b.csv renamed to .failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
		t.Fatalf("expected non-csv file untouched: %v", err)
	}
}

func TestProcessInboxSkipsHandledFilesOnRescan(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.csv"), []byte("x"), 0644); err != nil {
		t.Fatalf("write inbox file: %v", err)
	}

	calls := 0
	run := func(path string) (RunSummary, error) {
		calls++
		return RunSummary{}, nil
	}

	ProcessInbox(dir, run)
	ProcessInbox(dir, run)
	if calls != 1 {
		t.Fatalf("expected file to be picked up exactly once, got %d calls", calls)
	}
}

func TestProcessInboxEmptyDir(t *testing.T) {
	processed, failed := ProcessInbox(t.TempDir(), func(string) (RunSummary, error) {
		t.Fatal("runner should not be called")
		return RunSummary{}, nil
	})
	if processed != 0 || failed != 0 {
		t.Fatalf("expected nothing processed, got %d/%d", processed, failed)
	}
}

func TestRunWatchSchedulerRejectsBadSchedule(t *testing.T) {
	err := RunWatchScheduler(Config{WatchSchedule: "not a cron"}, nil)
	if err == nil {
		t.Fatal("expected error for invalid schedule")
	}
	err = RunWatchScheduler(Config{}, nil)
	if err == nil {
		t.Fatal("expected error for empty schedule")
	}
}
