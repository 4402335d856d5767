package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcomposer "github.com/morelab/appcomposer"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("appcomposer: %v", err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("appcomposer", flag.ExitOnError)
	addr := fs.String("addr", ":8080", "HTTP listen address")
	baseURL := fs.String("base-url", "http://localhost:8080", "Externally reachable base URL")
	driver := fs.String("storage", "sqlite", "Storage driver (sqlite, memory)")
	dsn := fs.String("dsn", "appcomposer.db", "Database DSN for the sqlite driver")
	syncPeriod := fs.Duration("sync-period", 30*time.Minute, "Interval between full sync passes")
	logLevel := fs.String("log-level", "info", "Log level")
	logFormat := fs.String("log-format", "console", "Log format (json, console, pretty)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := appcomposer.DefaultConfig()
	cfg.Hosting.BaseURL = *baseURL
	cfg.Storage.Driver = *driver
	cfg.Storage.DSN = *dsn
	cfg.Sync.Period = *syncPeriod
	cfg.Logging.Level = *logLevel
	cfg.Logging.Format = *logFormat

	module, err := appcomposer.New(cfg)
	if err != nil {
		return fmt.Errorf("building module: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := module.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}

	handler, err := module.Handler()
	if err != nil {
		return fmt.Errorf("building handler: %w", err)
	}

	server := &http.Server{
		Addr:              *addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 2)
	go func() {
		if err := module.Sync().Run(ctx, cfg.Sync.Poll, cfg.Sync.Period); err != nil && !errors.Is(err, context.Canceled) {
			errs <- fmt.Errorf("replication worker: %w", err)
		}
	}()
	go func() {
		log.Printf("appcomposer: listening on %s", *addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errs:
		stop()
		shutdown(server)
		return err
	}

	shutdown(server)
	return nil
}

func shutdown(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(ctx)
}
