package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"StockVision/internal/model"
)

// SQLiteRecorder persists forecast runs to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

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
		`CREATE TABLE IF NOT EXISTS forecast_runs (
			run_id       TEXT PRIMARY KEY,
			timestamp    INTEGER NOT NULL,
			symbol       TEXT NOT NULL,
			model        TEXT NOT NULL,
			days         INTEGER NOT NULL,
			last_date    INTEGER,
			last_close   REAL,
			final_close  REAL,
			mae          REAL,
			r2           REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol_ts ON forecast_runs(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS forecast_points (
			run_id  TEXT NOT NULL,
			step    INTEGER NOT NULL,
			date    INTEGER NOT NULL,
			close   REAL NOT NULL,
			PRIMARY KEY (run_id, step)
		)`,

		`CREATE TABLE IF NOT EXISTS model_metrics (
			run_id     TEXT NOT NULL,
			model      TEXT NOT NULL,
			mae        REAL,
			r2         REAL,
			train_rows INTEGER,
			test_rows  INTEGER,
			PRIMARY KEY (run_id, model)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordForecast writes the run, its points and its model metrics in one transaction.
func (r *SQLiteRecorder) RecordForecast(res *model.ForecastResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	final, err := res.Final()
	if err != nil {
		return err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var mae, r2 sql.NullFloat64
	if res.Metrics != nil {
		mae = sql.NullFloat64{Float64: res.Metrics.MAE, Valid: true}
		r2 = sql.NullFloat64{Float64: res.Metrics.R2, Valid: true}
	}
	if _, err := tx.Exec(`INSERT INTO forecast_runs
		(run_id, timestamp, symbol, model, days, last_date, last_close, final_close, mae, r2)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		res.RunID, res.GeneratedAt.Unix(), res.Symbol, string(res.Model), len(res.Points),
		res.LastDate.Unix(), res.LastClose, final.Close, mae, r2,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, p := range res.Points {
		if _, err := tx.Exec(`INSERT INTO forecast_points (run_id, step, date, close) VALUES (?,?,?,?)`,
			res.RunID, i+1, p.Date.Unix(), p.Close); err != nil {
			return fmt.Errorf("insert point %d: %w", i+1, err)
		}
	}

	evals := res.Components
	if res.Metrics != nil {
		evals = map[model.ModelKind]model.Evaluation{res.Model: *res.Metrics}
	}
	for kind, ev := range evals {
		if _, err := tx.Exec(`INSERT INTO model_metrics
			(run_id, model, mae, r2, train_rows, test_rows) VALUES (?,?,?,?,?,?)`,
			res.RunID, string(kind), ev.MAE, ev.R2, ev.TrainRows, ev.TestRows); err != nil {
			return fmt.Errorf("insert metrics: %w", err)
		}
	}
	return tx.Commit()
}

// RecentRuns returns the newest runs for a symbol, newest first.
func (r *SQLiteRecorder) RecentRuns(symbol string, limit int) ([]RunSummary, error) {
	rows, err := r.db.Query(`SELECT run_id, symbol, model, days, last_close, final_close, timestamp
		FROM forecast_runs WHERE symbol = ? ORDER BY timestamp DESC, rowid DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		var kind string
		var ts int64
		if err := rows.Scan(&s.RunID, &s.Symbol, &kind, &s.Days, &s.LastClose, &s.FinalClose, &ts); err != nil {
			return nil, err
		}
		s.Model = model.ModelKind(kind)
		s.CreatedAt = time.Unix(ts, 0)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
