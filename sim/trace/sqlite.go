package trace

import (
	"database/sql"
	"encoding/json"
	"fmt"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
)

// SQLiteWriter persists simulation traces to a SQLite database.
// Several runs can share one database; rows are keyed by run ID.
type SQLiteWriter struct {
	*sql.DB
	path string
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		level  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS dispatch (
		run_id    TEXT NOT NULL,
		seq       INTEGER NOT NULL,
		clock     INTEGER NOT NULL,
		pid       INTEGER NOT NULL,
		ran       INTEGER NOT NULL,
		remaining INTEGER NOT NULL,
		outcome   TEXT NOT NULL,
		device    TEXT NOT NULL,
		ready     TEXT NOT NULL,
		blocked   TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS device_event (
		run_id TEXT NOT NULL,
		seq    INTEGER NOT NULL,
		clock  INTEGER NOT NULL,
		device TEXT NOT NULL,
		pid    INTEGER NOT NULL,
		kind   TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS idle (
		run_id  TEXT NOT NULL,
		seq     INTEGER NOT NULL,
		clock   INTEGER NOT NULL,
		blocked INTEGER NOT NULL
	)`,
}

// NewSQLiteWriter opens (or creates) the database at path and ensures the schema exists.
func NewSQLiteWriter(path string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening trace db %s: %w", path, err)
	}
	w := &SQLiteWriter{DB: db, path: path}
	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating trace schema: %w", err)
		}
	}
	return w, nil
}

// NewRunID returns a fresh, sortable run identifier.
func NewRunID() string {
	return xid.New().String()
}

// Write stores every record of st under runID in one transaction.
// An empty runID is replaced by NewRunID(). Returns the run ID used.
func (w *SQLiteWriter) Write(runID string, st *SimulationTrace) (string, error) {
	if st == nil {
		return "", fmt.Errorf("writing trace: nil trace")
	}
	if runID == "" {
		runID = NewRunID()
	}

	tx, err := w.Begin()
	if err != nil {
		return "", fmt.Errorf("begin trace transaction: %w", err)
	}
	if err := writeTx(tx, runID, st); err != nil {
		tx.Rollback()
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit trace transaction: %w", err)
	}
	return runID, nil
}

func writeTx(tx *sql.Tx, runID string, st *SimulationTrace) error {
	if _, err := tx.Exec(`INSERT INTO runs (run_id, level) VALUES (?, ?)`, runID, string(st.Config.Level)); err != nil {
		return fmt.Errorf("inserting run %s: %w", runID, err)
	}

	dispatchStmt, err := tx.Prepare(`INSERT INTO dispatch
		(run_id, seq, clock, pid, ran, remaining, outcome, device, ready, blocked)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing dispatch insert: %w", err)
	}
	defer dispatchStmt.Close()
	for i, d := range st.Dispatches {
		ready, err := json.Marshal(nonNil(d.Ready))
		if err != nil {
			return fmt.Errorf("encoding ready pids: %w", err)
		}
		blocked, err := json.Marshal(nonNil(d.Blocked))
		if err != nil {
			return fmt.Errorf("encoding blocked pids: %w", err)
		}
		if _, err := dispatchStmt.Exec(runID, i, d.Clock, d.PID, d.Ran, d.Remaining,
			string(d.Outcome), d.Device, string(ready), string(blocked)); err != nil {
			return fmt.Errorf("inserting dispatch %d: %w", i, err)
		}
	}

	deviceStmt, err := tx.Prepare(`INSERT INTO device_event
		(run_id, seq, clock, device, pid, kind) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing device insert: %w", err)
	}
	defer deviceStmt.Close()
	for i, r := range st.Devices {
		if _, err := deviceStmt.Exec(runID, i, r.Clock, r.Device, r.PID, string(r.Kind)); err != nil {
			return fmt.Errorf("inserting device event %d: %w", i, err)
		}
	}

	idleStmt, err := tx.Prepare(`INSERT INTO idle (run_id, seq, clock, blocked) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing idle insert: %w", err)
	}
	defer idleStmt.Close()
	for i, r := range st.Idles {
		if _, err := idleStmt.Exec(runID, i, r.Clock, r.Blocked); err != nil {
			return fmt.Errorf("inserting idle tick %d: %w", i, err)
		}
	}
	return nil
}

// Load reads back the trace stored under runID.
func (w *SQLiteWriter) Load(runID string) (*SimulationTrace, error) {
	var level string
	err := w.QueryRow(`SELECT level FROM runs WHERE run_id = ?`, runID).Scan(&level)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found in %s", runID, w.path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading run %s: %w", runID, err)
	}
	st := NewSimulationTrace(TraceConfig{Level: TraceLevel(level)})

	rows, err := w.Query(`SELECT clock, pid, ran, remaining, outcome, device, ready, blocked
		FROM dispatch WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("reading dispatches: %w", err)
	}
	for rows.Next() {
		var d DispatchRecord
		var outcome, ready, blocked string
		if err := rows.Scan(&d.Clock, &d.PID, &d.Ran, &d.Remaining, &outcome, &d.Device, &ready, &blocked); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning dispatch: %w", err)
		}
		d.Outcome = DispatchOutcome(outcome)
		if err := json.Unmarshal([]byte(ready), &d.Ready); err != nil {
			rows.Close()
			return nil, fmt.Errorf("decoding ready pids: %w", err)
		}
		if err := json.Unmarshal([]byte(blocked), &d.Blocked); err != nil {
			rows.Close()
			return nil, fmt.Errorf("decoding blocked pids: %w", err)
		}
		st.Dispatches = append(st.Dispatches, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading dispatches: %w", err)
	}

	rows, err = w.Query(`SELECT clock, device, pid, kind FROM device_event WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("reading device events: %w", err)
	}
	for rows.Next() {
		var r DeviceRecord
		var kind string
		if err := rows.Scan(&r.Clock, &r.Device, &r.PID, &kind); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning device event: %w", err)
		}
		r.Kind = DeviceEventKind(kind)
		st.Devices = append(st.Devices, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading device events: %w", err)
	}

	rows, err = w.Query(`SELECT clock, blocked FROM idle WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("reading idle ticks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var r IdleRecord
		if err := rows.Scan(&r.Clock, &r.Blocked); err != nil {
			return nil, fmt.Errorf("scanning idle tick: %w", err)
		}
		st.Idles = append(st.Idles, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading idle ticks: %w", err)
	}
	return st, nil
}

// Runs lists the stored run IDs in insertion order.
func (w *SQLiteWriter) Runs() ([]string, error) {
	rows, err := w.Query(`SELECT run_id FROM runs ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning run id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nonNil(pids []int) []int {
	if pids == nil {
		return []int{}
	}
	return pids
}
