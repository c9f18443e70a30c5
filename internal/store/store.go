// Package store is the named memory-output store (spec.md §6
// "Persistence"): every `INTO <name>` output writes its rows into an
// in-memory SQLite table, which any number of external readers can
// snapshot concurrently with the flow still running.
//
// Grounded on the teacher's internal/store (brutalist variant): same
// database/sql + mattn/go-sqlite3 pairing, single-writer pragmas, and
// Open/Close shape, retargeted from a durable on-disk event log to an
// in-memory table-per-output keyed by name.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/nysm/internal/ir"
	"github.com/roach88/nysm/internal/operator"
	"github.com/roach88/nysm/internal/types"
)

// Store holds every named memory output for one engine instance. Rows
// are appended as canonical JSON so a single generic table serves every
// output regardless of its schema; Snapshot reconstructs typed ir.Row
// values from the output's declared schema.
type Store struct {
	mu sync.RWMutex
	db *sql.DB
}

// Open creates the backing in-memory SQLite database and its one
// bookkeeping table. The returned Store is safe for concurrent use.
func Open() (*Store, error) {
	db, err := sql.Open("sqlite3", "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open memory-output store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to memory-output store: %w", err)
	}

	// SQLite allows one writer at a time; the scheduler's single worker
	// goroutine is the only writer, but external readers snapshot
	// concurrently, so keep the pool small rather than single-conn.
	db.SetMaxOpenConns(4)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = MEMORY",
		"PRAGMA synchronous = OFF",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}
	return nil
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS memory_output_rows (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	output_name TEXT NOT NULL,
	payload     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_memory_output_rows_name ON memory_output_rows(output_name);
`

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply memory-output schema: %w", err)
	}
	return nil
}

// Close closes the backing database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Sink returns the operator.SubscriberSink a MemoryOutputNode's Sink
// context publishes rows through. schema is retained so Snapshot can
// decode each row's canonical JSON back into typed ir.Values.
func (s *Store) Sink(name string, schema ir.Schema) (operator.SubscriberSink, error) {
	if name == "" {
		return nil, fmt.Errorf("memory output name must not be empty")
	}
	return &outputSink{store: s, name: name, schema: schema}, nil
}

// Snapshot returns every row published to the named output so far, in
// publication order, decoded against schema. Safe to call while the
// flow that feeds name is still running.
func (s *Store) Snapshot(name string, schema ir.Schema) ([]ir.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT payload FROM memory_output_rows WHERE output_name = ? ORDER BY seq ASC`,
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: %w", name, err)
	}
	defer rows.Close()

	var out []ir.Row
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("snapshot %q: scan row: %w", name, err)
		}
		row, err := decodeRow(payload, schema)
		if err != nil {
			return nil, fmt.Errorf("snapshot %q: %w", name, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Drop deletes every row stored for name. The engine does not call it
// when a flow is canceled or redeployed under the same name.
func (s *Store) Drop(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`DELETE FROM memory_output_rows WHERE output_name = ?`, name)
	if err != nil {
		return fmt.Errorf("drop memory output %q: %w", name, err)
	}
	return nil
}

// outputSink is the operator.SubscriberSink wired into a MemoryOutputNode's
// Sink context. Publish is called synchronously on the scheduler's
// worker goroutine, so it must never block on a lock the worker itself
// could be waiting on elsewhere — it only ever takes Store's own mutex.
type outputSink struct {
	store  *Store
	name   string
	schema ir.Schema
}

func (o *outputSink) Publish(row ir.Row) {
	payload, err := ir.MarshalCanonical(ir.RowToObj(row))
	if err != nil {
		// A row that fails to encode is dropped rather than panicking
		// the scheduler; it would only happen for a Value type outside
		// the sealed set, which the type checker should never produce.
		return
	}
	o.store.mu.Lock()
	defer o.store.mu.Unlock()
	_, _ = o.store.db.Exec(
		`INSERT INTO memory_output_rows(output_name, payload) VALUES (?, ?)`,
		o.name, string(payload),
	)
}

func decodeRow(payload string, schema ir.Schema) (ir.Row, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &obj); err != nil {
		return ir.Row{}, fmt.Errorf("decode row: %w", err)
	}
	row := ir.Row{
		Fields: make([]string, 0, len(schema)),
		Values: make([]ir.Value, 0, len(schema)),
	}
	for _, f := range schema {
		raw, ok := obj[f.Name]
		if !ok {
			row.Fields = append(row.Fields, f.Name)
			row.Values = append(row.Values, ir.Null{})
			continue
		}
		v, err := decodeValue(raw, f.Type)
		if err != nil {
			return ir.Row{}, fmt.Errorf("field %q: %w", f.Name, err)
		}
		row.Fields = append(row.Fields, f.Name)
		row.Values = append(row.Values, v)
	}
	return row, nil
}

func decodeValue(raw json.RawMessage, t types.Type) (ir.Value, error) {
	if string(raw) == "null" {
		return ir.Null{}, nil
	}
	kind, ok := kindOf(t)
	if !ok {
		return nil, fmt.Errorf("cannot decode non-primitive type %s", t)
	}
	switch kind {
	case types.BOOLEAN:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return ir.Bool(b), nil
	case types.INT:
		var n int64
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		return ir.Int(n), nil
	case types.BIGINT:
		var n int64
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		return ir.BigInt(n), nil
	case types.FLOAT:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, err
		}
		return ir.Float(float32(f)), nil
	case types.DOUBLE:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, err
		}
		return ir.Double(f), nil
	case types.STRING:
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return nil, err
		}
		return ir.Str(str), nil
	case types.TIMESTAMP:
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return nil, err
		}
		ts, err := parseTimestamp(str)
		if err != nil {
			return nil, err
		}
		return ts, nil
	case types.TIMESPAN:
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return nil, err
		}
		return parseTimespan(str)
	default:
		return nil, fmt.Errorf("unsupported kind %s", kind)
	}
}

func kindOf(t types.Type) (types.Kind, bool) {
	switch v := t.(type) {
	case types.Primitive:
		return v.Kind, true
	case types.Nullable:
		return kindOf(v.Of)
	default:
		return 0, false
	}
}
