/*
Package sqlite provides a SQLite-backed tabular source and sink for the
payments engine.

PURPOSE:
  The engine's boundaries are tabular: transactions in, account snapshots
  out. CSV covers files; this package covers SQLite databases - a run can
  read its transaction stream from a transactions table and write the final
  snapshot to an accounts table.

KEY TABLES:
  transactions: input stream, ordered by seq (insertion order is the
                processing order, which the engine requires)
  accounts:     output snapshot, fully rewritten each run

AMOUNTS:
  Stored as TEXT in normalized decimal form. Never REAL - binary floating
  point has no place anywhere near balances.

WAL MODE:
  Opened with WAL for better concurrency, same as the rest of our stores.

SEE ALSO:
  - csvio: the file-based source/sink with identical semantics
  - engine/ledger.go: the fold that consumes the source
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"math"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/payments-engine/engine"
)

// Store reads transaction streams from and writes snapshots to a SQLite
// database.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New opens (or creates) the database at path and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Input stream. seq preserves ingestion order; the engine folds rows
	-- strictly in that order.
	CREATE TABLE IF NOT EXISTS transactions (
		seq    INTEGER PRIMARY KEY AUTOINCREMENT,
		kind   TEXT NOT NULL,
		client INTEGER NOT NULL,
		tx     INTEGER NOT NULL,
		amount TEXT
	);

	-- Output snapshot, one row per account, rewritten wholesale each run.
	CREATE TABLE IF NOT EXISTS accounts (
		client    INTEGER PRIMARY KEY,
		available TEXT NOT NULL,
		held      TEXT NOT NULL,
		total     TEXT NOT NULL,
		locked    INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTION SOURCE
// =============================================================================

// AppendTransaction adds one transaction to the end of the input stream.
func (s *Store) AppendTransaction(ctx context.Context, tx engine.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var amount any
	if tx.HasAmount {
		amount = tx.Amount.String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (kind, client, tx, amount) VALUES (?, ?, ?, ?)`,
		string(tx.Kind), tx.Client, tx.Tx, amount)
	return err
}

// Source returns a TransactionSource streaming the stored transactions in
// insertion order.
func (s *Store) Source(ctx context.Context) (*Source, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, client, tx, amount FROM transactions ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	return &Source{rows: rows}, nil
}

// Source streams transactions out of the database. Implements
// engine.TransactionSource.
type Source struct {
	rows *sql.Rows
}

// Next returns the next stored transaction, io.EOF at the end, or an error
// wrapping engine.ErrBadRecord for a row that fails type coercion.
func (src *Source) Next() (engine.Transaction, error) {
	if !src.rows.Next() {
		if err := src.rows.Err(); err != nil {
			return engine.Transaction{}, err
		}
		src.rows.Close()
		return engine.Transaction{}, io.EOF
	}

	var (
		kindText string
		client   int64
		txID     int64
		amount   sql.NullString
	)
	if err := src.rows.Scan(&kindText, &client, &txID, &amount); err != nil {
		return engine.Transaction{}, err
	}

	tx, err := coerceRow(kindText, client, txID, amount)
	if err != nil {
		return engine.Transaction{}, fmt.Errorf("%w: %v", engine.ErrBadRecord, err)
	}
	return tx, nil
}

// Close releases the underlying rows early; Next closes them at io.EOF.
func (src *Source) Close() error {
	return src.rows.Close()
}

func coerceRow(kindText string, client, txID int64, amount sql.NullString) (engine.Transaction, error) {
	kind, err := engine.ParseKind(kindText)
	if err != nil {
		return engine.Transaction{}, err
	}
	if client < 0 || client > math.MaxUint16 {
		return engine.Transaction{}, fmt.Errorf("client id %d out of range", client)
	}
	if txID < 0 || txID > math.MaxUint32 {
		return engine.Transaction{}, fmt.Errorf("tx id %d out of range", txID)
	}

	tx := engine.Transaction{
		Kind:   kind,
		Client: engine.ClientID(client),
		Tx:     engine.TxID(txID),
	}
	if amount.Valid && amount.String != "" {
		a, err := engine.ParseAmount(amount.String)
		if err != nil {
			return engine.Transaction{}, err
		}
		tx.Amount = a
		tx.HasAmount = true
	}
	return tx, nil
}

// =============================================================================
// SNAPSHOT SINK
// =============================================================================

// WriteSnapshots replaces the accounts table with the given snapshots,
// atomically.
func (s *Store) WriteSnapshots(ctx context.Context, snaps []engine.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM accounts`); err != nil {
		return err
	}
	for _, snap := range snaps {
		_, err := dbTx.ExecContext(ctx,
			`INSERT INTO accounts (client, available, held, total, locked) VALUES (?, ?, ?, ?, ?)`,
			snap.Client, snap.Available.String(), snap.Held.String(), snap.Total.String(), snap.Locked)
		if err != nil {
			return err
		}
	}
	return dbTx.Commit()
}

// ReadSnapshots returns the stored account snapshots ordered by client id.
func (s *Store) ReadSnapshots(ctx context.Context) ([]engine.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT client, available, held, total, locked FROM accounts ORDER BY client`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []engine.Snapshot
	for rows.Next() {
		var (
			client                 int64
			available, held, total string
			locked                 bool
		)
		if err := rows.Scan(&client, &available, &held, &total, &locked); err != nil {
			return nil, err
		}

		snap := engine.Snapshot{Client: engine.ClientID(client), Locked: locked}
		if snap.Available, err = engine.ParseAmount(available); err != nil {
			return nil, err
		}
		if snap.Held, err = engine.ParseAmount(held); err != nil {
			return nil, err
		}
		if snap.Total, err = engine.ParseAmount(total); err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}
