// Command stubstore serves a JSON-file backed stand-in for the upstream
// bookstore service, for local development.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"bookstand/internal/stubstore"
)

// seedData is written when the data file does not exist yet, so a first run
// has something to browse and a credential pair to sign in with.
const seedData = `{
  "stores": [
    {"id": "1", "name": "Main St Books"},
    {"id": "2", "name": "Harbor Reads"}
  ],
  "books": [
    {"id": "1", "name": "Dune", "page_count": 412, "author_id": "1"},
    {"id": "2", "name": "The Hobbit", "page_count": 310, "author_id": "2"}
  ],
  "authors": [
    {"id": "1", "first_name": "Frank", "last_name": "Herbert"},
    {"id": "2", "first_name": "J. R. R.", "last_name": "Tolkien"}
  ],
  "inventory": [
    {"invId": "1", "store_id": "1", "book_id": "1", "price": 9.99},
    {"invId": "2", "store_id": "1", "book_id": "2", "price": 14.5},
    {"invId": "3", "store_id": "2", "book_id": "2", "price": 12}
  ],
  "users": [
    {"id": "1", "email": "admin@example.com", "name": "Admin", "password": "admin"}
  ]
}
`

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "stubstore: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	httpAddr := flag.String("http", "localhost:5000", "Address to listen on")
	dataFile := flag.String("data", "./data/bookstore.json", "Path to the JSON data file")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()
	if len(flag.Args()) > 0 {
		return fmt.Errorf("unknown arguments: %v", flag.Args())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()
	ll := &slog.LevelVar{}
	switch *logLevel {
	case "debug":
		ll.Set(slog.LevelDebug)
	case "info":
		ll.Set(slog.LevelInfo)
	case "warn":
		ll.Set(slog.LevelWarn)
	case "error":
		ll.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %q", *logLevel)
	}
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(filepath.Dir(*dataFile), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if _, err := os.Stat(*dataFile); os.IsNotExist(err) {
		if err := os.WriteFile(*dataFile, []byte(seedData), 0o644); err != nil {
			return fmt.Errorf("failed to seed data file: %w", err)
		}
		slog.InfoContext(ctx, "Seeded data file", "path", *dataFile)
	}

	db, err := stubstore.Open(*dataFile)
	if err != nil {
		return err
	}
	if err := db.Watch(ctx); err != nil {
		return fmt.Errorf("failed to watch data file: %w", err)
	}

	addr := *httpAddr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           stubstore.NewRouter(db),
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "Starting stub store", "addr", addr, "data", *dataFile)
		serverErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		slog.InfoContext(ctx, "Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}
	return nil
}
