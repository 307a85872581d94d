package storage

// sqlite.go — persistencia de resultados de sweep en SQLite.
//
// Estrategia:
//   - `runs`: una fila por sweep, con metadatos de arranque y cierre.
//   - `trades`: ledger completo por candidato. Los workers escriben en
//     paralelo; SQLite es single-writer, así que serializamos con un mutex
//     además de SetMaxOpenConns(1).
//   - `leaderboard`: snapshot del ranking final, una fila por puesto.

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/stratsweep/internal/domain"
	"github.com/alejandrodnm/stratsweep/internal/ports"
	_ "modernc.org/sqlite"
)

const schema = `
-- Una fila por sweep
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    started_at  DATETIME NOT NULL,
    finished_at DATETIME
);

-- Ledger de trades por configuración evaluada
CREATE TABLE IF NOT EXISTS trades (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id       TEXT NOT NULL,
    candidate_id TEXT NOT NULL,
    strategy     TEXT NOT NULL,
    instrument   TEXT NOT NULL,
    params       TEXT NOT NULL,
    outcome      TEXT NOT NULL,
    exit_reason  TEXT NOT NULL,
    direction    TEXT NOT NULL,
    entry_price  REAL NOT NULL,
    exit_price   REAL NOT NULL,
    stop_loss    REAL NOT NULL,
    take_profit  REAL NOT NULL,
    entry_ts     DATETIME,
    exit_ts      DATETIME,
    ticks        REAL NOT NULL,
    profit       REAL NOT NULL,
    dollars      REAL NOT NULL
);

-- Ranking final del sweep
CREATE TABLE IF NOT EXISTS leaderboard (
    run_id        TEXT    NOT NULL,
    rank          INTEGER NOT NULL,
    candidate_id  TEXT    NOT NULL,
    seq           INTEGER NOT NULL,
    strategy      TEXT    NOT NULL,
    instrument    TEXT    NOT NULL,
    params        TEXT    NOT NULL,
    score         REAL    NOT NULL,
    trades        INTEGER NOT NULL,
    winners       INTEGER NOT NULL,
    losers        INTEGER NOT NULL,
    net_dollars   REAL    NOT NULL,
    profit_factor REAL    NOT NULL,
    PRIMARY KEY (run_id, rank)
);

CREATE INDEX IF NOT EXISTS idx_trades_run       ON trades(run_id);
CREATE INDEX IF NOT EXISTS idx_trades_candidate ON trades(candidate_id);
`

// SQLiteSink implementa ports.ReportSink usando SQLite (pure Go, sin CGo).
type SQLiteSink struct {
	db    *sql.DB
	runID string
	mu    sync.Mutex
}

// NewSQLiteSink abre (o crea) la base de datos en la ruta dada, aplica el
// schema y registra el arranque del run.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteSink: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteSink: apply schema: %w", err)
	}

	s := &SQLiteSink{db: db, runID: uuid.New().String()}
	if _, err := db.Exec(
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		s.runID, time.Now().UTC(),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteSink: insert run: %w", err)
	}
	return s, nil
}

// RunID devuelve el identificador del run en curso.
func (s *SQLiteSink) RunID() string { return s.runID }

// SaveTrades persiste el ledger de una configuración en una transacción.
func (s *SQLiteSink) SaveTrades(ctx context.Context, c domain.CandidateConfiguration, ledger []domain.TradePnL) error {
	if len(ledger) == 0 {
		return nil
	}
	params, err := json.Marshal(c.Params)
	if err != nil {
		return fmt.Errorf("storage.SaveTrades: marshal params: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveTrades: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trades
			(run_id, candidate_id, strategy, instrument, params, outcome,
			 exit_reason, direction, entry_price, exit_price, stop_loss,
			 take_profit, entry_ts, exit_ts, ticks, profit, dollars)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("storage.SaveTrades: prepare: %w", err)
	}
	defer stmt.Close()

	for _, t := range ledger {
		if _, err := stmt.ExecContext(ctx,
			s.runID,
			c.ID,
			c.Strategy,
			c.Instrument,
			string(params),
			t.Outcome.String(),
			t.Reason.String(),
			t.Direction.String(),
			t.EntryPrice,
			t.ExitPrice,
			t.StopLoss,
			t.TakeProfit,
			nullableTime(t.EntryTS),
			nullableTime(t.ExitTS),
			t.Ticks,
			t.Profit,
			t.Dollars,
		); err != nil {
			return fmt.Errorf("storage.SaveTrades: insert trade for %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveTrades: commit: %w", err)
	}
	return nil
}

// SaveLeaderboard persiste el ranking final, una fila por puesto.
func (s *SQLiteSink) SaveLeaderboard(ctx context.Context, results []domain.ScoredResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveLeaderboard: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO leaderboard
			(run_id, rank, candidate_id, seq, strategy, instrument, params,
			 score, trades, winners, losers, net_dollars, profit_factor)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("storage.SaveLeaderboard: prepare: %w", err)
	}
	defer stmt.Close()

	for i, r := range results {
		params, err := json.Marshal(r.Candidate.Params)
		if err != nil {
			return fmt.Errorf("storage.SaveLeaderboard: marshal params: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			s.runID,
			i+1,
			r.Candidate.ID,
			r.Candidate.Seq,
			r.Candidate.Strategy,
			r.Candidate.Instrument,
			string(params),
			r.Score,
			r.Perf.Trades,
			r.Perf.Winners,
			r.Perf.Losers,
			r.Perf.NetDollars,
			nullableFloat(r.Perf.ProfitFactor()),
		); err != nil {
			return fmt.Errorf("storage.SaveLeaderboard: insert rank %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveLeaderboard: commit: %w", err)
	}
	return nil
}

// Close marca el run como terminado y cierra la conexión.
func (s *SQLiteSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(
		`UPDATE runs SET finished_at = ? WHERE id = ?`,
		time.Now().UTC(), s.runID,
	); err != nil {
		s.db.Close()
		return fmt.Errorf("storage.Close: finish run: %w", err)
	}
	return s.db.Close()
}

// nullableTime mapea el zero time a NULL.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

// nullableFloat mapea ±Inf y NaN a NULL; SQLite no los representa.
func nullableFloat(v float64) any {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return v
}

var _ ports.ReportSink = (*SQLiteSink)(nil)
