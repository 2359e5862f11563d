package main

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// InitDB opens the run-history database and applies the schema. History is
// operational bookkeeping: the ticket log, not this database, is the durable
// contract.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id              TEXT PRIMARY KEY,
		source          TEXT NOT NULL DEFAULT '',
		total_records   INTEGER NOT NULL,
		supplier_issues INTEGER NOT NULL,
		tickets_created INTEGER NOT NULL,
		alert_failures  INTEGER NOT NULL DEFAULT 0,
		started_at      DATETIME NOT NULL,
		finished_at     DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

	CREATE TABLE IF NOT EXISTS run_classifications (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id       TEXT NOT NULL,
		complaint_id TEXT NOT NULL,
		supplier     TEXT DEFAULT '',
		category     TEXT NOT NULL,
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_rc_run ON run_classifications(run_id);
	CREATE INDEX IF NOT EXISTS idx_rc_category ON run_classifications(category);
	`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, err
	}
	return db, nil
}

type RunRecord struct {
	ID             string
	Source         string
	TotalRecords   int
	SupplierIssues int
	TicketsCreated int
	AlertFailures  int
	StartedAt      time.Time
	FinishedAt     time.Time
}

// RecordRun persists one run summary and its per-record classifications.
func RecordRun(db *sql.DB, s RunSummary) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	runID := uuid.New().String()
	_, err = tx.Exec(
		`INSERT INTO runs (id, source, total_records, supplier_issues, tickets_created, alert_failures, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, s.Source, len(s.Records), s.CountByCategory(CategorySupplier),
		len(s.Tickets), s.AlertFailures(), s.StartedAt, s.FinishedAt,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO run_classifications (run_id, complaint_id, supplier, category)
		 VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range s.Records {
		if _, err := stmt.Exec(runID, rec.ComplaintID, rec.Supplier, string(rec.Category)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func GetRecentRuns(db *sql.DB, limit int) ([]RunRecord, error) {
	rows, err := db.Query(
		`SELECT id, source, total_records, supplier_issues, tickets_created, alert_failures, started_at, finished_at
		 FROM runs ORDER BY started_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(
			&r.ID, &r.Source, &r.TotalRecords, &r.SupplierIssues,
			&r.TicketsCreated, &r.AlertFailures, &r.StartedAt, &r.FinishedAt,
		); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

type CategoryStat struct {
	Category string
	Count    int
}

// GetCategoryStats counts classifications per category since a cutoff.
func GetCategoryStats(db *sql.DB, since time.Time) ([]CategoryStat, error) {
	rows, err := db.Query(
		`SELECT category, COUNT(*) as cnt
		 FROM run_classifications
		 WHERE created_at >= ?
		 GROUP BY category
		 ORDER BY cnt DESC, category`,
		since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []CategoryStat
	for rows.Next() {
		var s CategoryStat
		if err := rows.Scan(&s.Category, &s.Count); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// GetSupplierIssueCounts aggregates supplier-issue classifications across all
// recorded runs since a cutoff, most affected supplier first.
func GetSupplierIssueCounts(db *sql.DB, since time.Time, limit int) (map[string]int, error) {
	rows, err := db.Query(
		`SELECT supplier, COUNT(*) as cnt
		 FROM run_classifications
		 WHERE category = ? AND created_at >= ? AND supplier <> ''
		 GROUP BY supplier
		 ORDER BY cnt DESC
		 LIMIT ?`,
		string(CategorySupplier), since, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var supplier string
		var cnt int
		if err := rows.Scan(&supplier, &cnt); err != nil {
			return nil, err
		}
		counts[supplier] = cnt
	}
	return counts, rows.Err()
}
