package recorder

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"MacroSentinel/internal/model"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so dashboards can read while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS allocation_runs (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			source        TEXT,
			inflation     REAL,
			gdp_growth    REAL,
			interest_rate REAL,
			missing       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alloc_ts ON allocation_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS sector_weights (
			run_id      INTEGER NOT NULL REFERENCES allocation_runs(id),
			sector      TEXT NOT NULL,
			momentum    REAL,
			volatility  REAL,
			has_metrics INTEGER NOT NULL,
			weight      REAL NOT NULL,
			PRIMARY KEY (run_id, sector)
		)`,

		`CREATE TABLE IF NOT EXISTS macro_snapshots (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp         INTEGER NOT NULL,
			inflation         REAL,
			unemployment_rate REAL,
			gdp_growth        REAL,
			risk_free_rate    REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_macro_ts ON macro_snapshots(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordAllocation(run *model.AllocationRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := run.At
	if at.IsZero() {
		at = time.Now()
	}
	missing := make([]string, len(run.Missing))
	for i, s := range run.Missing {
		missing[i] = s.String()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO allocation_runs
		(timestamp, source, inflation, gdp_growth, interest_rate, missing)
		VALUES (?,?,?,?,?,?)`,
		at.Unix(), run.Source,
		run.Economic.Inflation, run.Economic.GDPGrowth, run.Economic.InterestRate,
		strings.Join(missing, ","),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	for _, s := range model.AllSectors() {
		m, ok := run.Sectors[s]
		hasMetrics := 0
		if ok {
			hasMetrics = 1
		}
		if _, err := tx.Exec(`INSERT INTO sector_weights
			(run_id, sector, momentum, volatility, has_metrics, weight)
			VALUES (?,?,?,?,?,?)`,
			runID, s.String(), m.Momentum, m.Volatility, hasMetrics, run.Weights[s],
		); err != nil {
			return fmt.Errorf("insert weight %s: %w", s, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordMacro(d *model.MacroDashboard) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := d.FetchedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO macro_snapshots
		(timestamp, inflation, unemployment_rate, gdp_growth, risk_free_rate)
		VALUES (?,?,?,?,?)`,
		at.Unix(), d.Inflation, d.UnemploymentRate, d.GDPGrowth, d.RiskFreeRate,
	)
	return err
}

// RecentAllocations returns up to limit runs, newest first.
func (r *SQLiteRecorder) RecentAllocations(limit int) ([]AllocationRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, timestamp, source, inflation, gdp_growth, interest_rate, missing
		FROM allocation_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	var out []AllocationRow
	for rows.Next() {
		var (
			row     AllocationRow
			ts      int64
			missing string
		)
		if err := rows.Scan(&row.ID, &ts, &row.Source,
			&row.Economic.Inflation, &row.Economic.GDPGrowth, &row.Economic.InterestRate, &missing); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		row.At = time.Unix(ts, 0)
		if missing != "" {
			row.Missing = len(strings.Split(missing, ","))
		}
		out = append(out, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		w, err := r.weights(out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Weights = w
	}
	return out, nil
}

func (r *SQLiteRecorder) weights(runID int64) (model.SectorWeightMap, error) {
	var w model.SectorWeightMap
	rows, err := r.db.Query(`SELECT sector, weight FROM sector_weights WHERE run_id = ?`, runID)
	if err != nil {
		return w, fmt.Errorf("query weights: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			name   string
			weight float64
		)
		if err := rows.Scan(&name, &weight); err != nil {
			return w, fmt.Errorf("scan weight: %w", err)
		}
		s, err := model.ParseSector(name)
		if err != nil {
			r.log.Warn().Str("sector", name).Int64("run_id", runID).Msg("skipping unknown sector row")
			continue
		}
		w[s] = weight
	}
	return w, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
