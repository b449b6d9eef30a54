/*
main.go - Payments API server entry point

PURPOSE:
  Starts the HTTP surface over a live ledger. Transactions submitted over
  the API are folded in arrival order; account snapshots are served from
  the same ledger.

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      Optional SQLite database; its transaction stream is folded into
           the ledger before the server starts accepting requests

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/payments-engine/api"
	"github.com/warp/payments-engine/engine"
	"github.com/warp/payments-engine/store/sqlite"
)

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "", "SQLite database to preload transactions from")
	flag.Parse()

	ledger := engine.NewLedger()
	if *dbPath != "" {
		if err := preload(ledger, *dbPath); err != nil {
			log.Fatalf("Failed to preload transactions: %v", err)
		}
		log.Printf("Preloaded %d account(s) from %s", ledger.Len(), *dbPath)
	}

	handler := api.NewHandler(ledger)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// preload folds the stored transaction stream into the ledger. Rule
// violations in stored history are logged and skipped, same as a CLI run.
func preload(ledger *engine.Ledger, path string) error {
	store, err := sqlite.New(path)
	if err != nil {
		return err
	}
	defer store.Close()

	src, err := store.Source(context.Background())
	if err != nil {
		return err
	}
	defer src.Close()

	return ledger.Run(src, func(tx engine.Transaction, err error) {
		log.Printf("skipping stored record (tx=%d client=%d): %v", tx.Tx, tx.Client, err)
	})
}
