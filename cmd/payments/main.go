/*
main.go - Payments CLI entry point

PURPOSE:
  Reads a transaction stream from a tabular source, folds it through the
  engine, and writes the final account snapshot.

USAGE:
  payments [flags] <input>

  <input>  Transaction source. A .db/.sqlite path is read through the
           SQLite source; anything else is read as CSV.

FLAGS:
  -db      Also write the snapshot to this SQLite database

STREAMS:
  Snapshot CSV goes to stdout; diagnostics (per-record rule violations and
  bad records) go to stderr only. The two never mix.

EXIT:
  A missing or unreadable input is fatal, reported before any processing.
  Everything per-record is logged and skipped.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/warp/payments-engine/csvio"
	"github.com/warp/payments-engine/engine"
	"github.com/warp/payments-engine/store/sqlite"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("payments: ")

	dbOut := flag.String("db", "", "also write the snapshot to this SQLite database")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <input>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *dbOut); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(input, dbOut string) error {
	ctx := context.Background()

	src, cleanup, err := openSource(ctx, input)
	if err != nil {
		return err
	}
	defer cleanup()

	ledger := engine.NewLedger()
	onErr := func(tx engine.Transaction, err error) {
		if engine.IsRuleViolation(err) {
			log.Printf("skipping %s tx=%d client=%d: %v", tx.Kind, tx.Tx, tx.Client, err)
			return
		}
		log.Printf("skipping record: %v", err)
	}
	if err := ledger.Run(src, onErr); err != nil {
		return fmt.Errorf("reading %s: %w", input, err)
	}

	snaps := ledger.Snapshots()
	if err := csvio.WriteSnapshots(os.Stdout, snaps); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	if dbOut != "" {
		sink, err := sqlite.New(dbOut)
		if err != nil {
			return err
		}
		defer sink.Close()
		if err := sink.WriteSnapshots(ctx, snaps); err != nil {
			return fmt.Errorf("writing snapshot to %s: %w", dbOut, err)
		}
	}
	return nil
}

// openSource picks the source by extension: SQLite for .db/.sqlite,
// CSV otherwise. Unreadable input fails here, before any processing.
func openSource(ctx context.Context, input string) (engine.TransactionSource, func(), error) {
	if strings.HasSuffix(input, ".db") || strings.HasSuffix(input, ".sqlite") {
		if _, err := os.Stat(input); err != nil {
			return nil, nil, fmt.Errorf("cannot open %s: %w", input, err)
		}
		store, err := sqlite.New(input)
		if err != nil {
			return nil, nil, err
		}
		src, err := store.Source(ctx)
		if err != nil {
			store.Close()
			return nil, nil, err
		}
		return src, func() { src.Close(); store.Close() }, nil
	}

	f, err := os.Open(input)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open %s: %w", input, err)
	}
	return csvio.NewReader(f), func() { f.Close() }, nil
}
