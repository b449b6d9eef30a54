/*
Package csvio adapts the CSV input and output boundaries to the engine.

The reader turns tabular rows into engine.Transaction values, the writer
renders final snapshots. Both are thin: trimming, type coercion and
rendering only - every decision about whether a transaction is legal
belongs to the rule engine.

INPUT FORMAT:
  type,client,tx,amount
  deposit,1,1,100.0
  dispute,1,1,

  Kind is case-insensitive, all fields are trimmed, amount is decimal text
  present only on deposits and withdrawals (truncated to four fractional
  digits on ingestion).

OUTPUT FORMAT:
  client,available,held,total,locked

  Monetary fields are normalized decimal text, trailing zeros stripped.
*/
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/warp/payments-engine/engine"
)

// BadRecordError reports a row that could not be turned into a transaction.
// It wraps engine.ErrBadRecord so the fold skips the row and continues.
type BadRecordError struct {
	Line int
	Err  error
}

func (e *BadRecordError) Error() string {
	return fmt.Sprintf("bad record at line %d: %v", e.Line, e.Err)
}

func (e *BadRecordError) Unwrap() error { return engine.ErrBadRecord }

// Reader streams transactions from CSV input. Implements
// engine.TransactionSource.
type Reader struct {
	cr         *csv.Reader
	skipHeader bool
}

// NewReader wraps r. The first row is treated as the header and skipped.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // reference kinds may omit the amount column
	cr.TrimLeadingSpace = true
	return &Reader{cr: cr, skipHeader: true}
}

// Next returns the next transaction, io.EOF at end of input, or a
// BadRecordError for a row that fails to parse.
func (r *Reader) Next() (engine.Transaction, error) {
	for {
		record, err := r.cr.Read()
		if err == io.EOF {
			return engine.Transaction{}, io.EOF
		}
		if err != nil {
			line := 0
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				line = parseErr.Line
			}
			return engine.Transaction{}, &BadRecordError{Line: line, Err: err}
		}

		if r.skipHeader {
			r.skipHeader = false
			continue
		}

		line, _ := r.cr.FieldPos(0)
		tx, err := parseRecord(record)
		if err != nil {
			return engine.Transaction{}, &BadRecordError{Line: line, Err: err}
		}
		return tx, nil
	}
}

func parseRecord(record []string) (engine.Transaction, error) {
	if len(record) < 3 {
		return engine.Transaction{}, fmt.Errorf("want at least 3 fields, got %d", len(record))
	}

	kind, err := engine.ParseKind(record[0])
	if err != nil {
		return engine.Transaction{}, err
	}

	client, err := strconv.ParseUint(strings.TrimSpace(record[1]), 10, 16)
	if err != nil {
		return engine.Transaction{}, fmt.Errorf("invalid client id %q", record[1])
	}

	txID, err := strconv.ParseUint(strings.TrimSpace(record[2]), 10, 32)
	if err != nil {
		return engine.Transaction{}, fmt.Errorf("invalid tx id %q", record[2])
	}

	tx := engine.Transaction{
		Kind:   kind,
		Client: engine.ClientID(client),
		Tx:     engine.TxID(txID),
	}

	// The amount column is meaningful only for deposits and withdrawals.
	// Whether it is required is the rule engine's call, so an empty field
	// simply leaves HasAmount unset.
	if len(record) > 3 {
		if raw := strings.TrimSpace(record[3]); raw != "" {
			amount, err := engine.ParseAmount(raw)
			if err != nil {
				return engine.Transaction{}, err
			}
			tx.Amount = amount
			tx.HasAmount = true
		}
	}

	return tx, nil
}
