package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"EquityScreener/internal/model"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so report readers do not block the writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

// latestRun selects the most recently finished run for the report views.
const latestRun = `(SELECT id FROM runs ORDER BY finished_at DESC, rowid DESC LIMIT 1)`

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			source      TEXT,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			tickers     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_finished ON runs(finished_at)`,

		`CREATE TABLE IF NOT EXISTS outcomes (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL REFERENCES runs(id),
			position       INTEGER NOT NULL,
			symbol         TEXT NOT NULL,
			status         TEXT NOT NULL,
			category       TEXT NOT NULL,
			fundamentals   TEXT,
			fired          TEXT,
			reason         TEXT,
			error          TEXT,
			close          REAL,
			volume         INTEGER,
			sma50          REAL,
			sma200         REAL,
			rsi            REAL,
			macd           REAL,
			macd_signal    REAL,
			macd_hist      REAL,
			avg_volume     REAL,
			low_52w        REAL,
			peak_above_pct REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id, symbol)`,

		`CREATE TABLE IF NOT EXISTS alerts (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			run_id    TEXT,
			category  TEXT NOT NULL,
			symbol    TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_ts ON alerts(timestamp)`,

		`CREATE VIEW IF NOT EXISTS all_stocks AS
			SELECT * FROM outcomes WHERE run_id = ` + latestRun + ` ORDER BY symbol`,
		`CREATE VIEW IF NOT EXISTS fundamental_strong AS
			SELECT * FROM outcomes WHERE run_id = ` + latestRun + ` AND fundamentals = 'pass' ORDER BY position`,
		`CREATE VIEW IF NOT EXISTS trending AS
			SELECT * FROM outcomes WHERE run_id = ` + latestRun + ` AND category = 'Trending' ORDER BY position`,
		`CREATE VIEW IF NOT EXISTS retest200 AS
			SELECT * FROM outcomes WHERE run_id = ` + latestRun + ` AND category = 'Retest200' ORDER BY position`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores the run and all of its outcomes in one transaction.
func (r *SQLiteRecorder) RecordRun(run *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO runs (id, source, started_at, finished_at, tickers) VALUES (?,?,?,?,?)`,
		run.ID, run.Source, run.StartedAt.Unix(), run.FinishedAt.Unix(), len(run.Outcomes),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO outcomes
		(run_id, position, symbol, status, category, fundamentals, fired, reason, error,
		 close, volume, sma50, sma200, rsi, macd, macd_signal, macd_hist,
		 avg_volume, low_52w, peak_above_pct)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare outcome: %w", err)
	}
	defer stmt.Close()

	for i, o := range run.Outcomes {
		snap := o.Snapshot
		if snap == nil {
			snap = &model.Snapshot{}
		}
		var closePx, volume any
		if o.Snapshot != nil {
			closePx, volume = snap.Close, snap.Volume
		}
		if _, err := stmt.Exec(
			run.ID, i, o.Symbol, string(o.Status), string(o.Category), nullString(string(o.Fundamentals)),
			nullString(strings.Join(o.Fired, ",")), nullString(o.Reason), nullString(o.Error),
			closePx, volume, snap.SMAShort, snap.SMALong, snap.RSI,
			snap.MACD, snap.MACDSignal, snap.MACDHist,
			snap.AvgVolume, snap.Low52w, snap.PeakAboveLongPct,
		); err != nil {
			return fmt.Errorf("insert outcome %s: %w", o.Symbol, err)
		}
	}
	return tx.Commit()
}

// RecordAlerts stores one row per alerted symbol.
func (r *SQLiteRecorder) RecordAlerts(evt *AlertEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().Unix()
	for _, sym := range evt.Symbols {
		if _, err := r.db.Exec(`INSERT INTO alerts (timestamp, run_id, category, symbol) VALUES (?,?,?,?)`,
			now, evt.RunID, string(evt.Category), sym,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
