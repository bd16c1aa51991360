package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"gitlab.com/dirk.krummacker/records-service/internal/store"
)

// CLI holds the arguments of the wait tool.
type CLI struct {
	URL      string        `help:"Base URL of the records service." default:"http://localhost:8080" env:"RECORDS_URL"`
	Interval time.Duration `help:"Time between two attempts." default:"5s"`
	MaxWait  time.Duration `help:"Give up after this time; 0 waits forever." default:"0s"`
}

// Usage example on the command line:
// > go run main.go --max-wait=2m
func main() {
	var cli CLI
	kong.Parse(&cli, kong.Description("Waits until the records service answers the list request."))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if cli.MaxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cli.MaxWait)
		defer cancel()
	}

	client := store.NewHTTPClient(cli.URL, store.WithTimeout(cli.Interval))
	if err := waitUntilAvailable(ctx, client, cli.Interval); err != nil {
		slog.Error("service not available", "url", cli.URL, "error", err)
		os.Exit(1)
	}
	slog.Info("service available", "url", cli.URL)
}

// waitUntilAvailable lists the records until the service answers or ctx is done.
func waitUntilAvailable(ctx context.Context, client store.Store, interval time.Duration) error {
	var waited time.Duration
	for {
		records, err := client.ListRecords(ctx)
		if err == nil {
			slog.Info("records listed", "count", len(records))
			return nil
		}
		slog.Info("waiting for service", "waited", waited.String(), "error", err)
		select {
		case <-ctx.Done():
			return fmt.Errorf("gave up after %s: %w", waited, err)
		case <-time.After(interval):
			waited += interval
		}
	}
}
