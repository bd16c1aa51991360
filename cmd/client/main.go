package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"gitlab.com/dirk.krummacker/records-service/internal/model"
	"gitlab.com/dirk.krummacker/records-service/internal/store"
)

// CLI holds the arguments of the load client.
type CLI struct {
	URL   string `help:"Base URL of the records service." default:"http://localhost:8080" env:"RECORDS_URL"`
	Sizes []int  `help:"Number of requests per round." default:"1000,5000,10000"`
}

var sample = model.Fields{
	FirstName: "Marcus",
	LastName:  "Antonius",
	Phone:     "(999)-777-5555",
	Email:     "marcus@example.com",
	Address:   "1 Via Appia",
	State:     "KA",
	District:  "Mysuru",
	City:      "Mysuru",
	Zip:       "570001",
}

// Usage example on the command line:
// > go run main.go --sizes=100,1000
func main() {
	var cli CLI
	kong.Parse(&cli, kong.Description("Measures the average duration of service calls in microseconds."))
	client := store.NewHTTPClient(cli.URL)
	if err := run(context.Background(), client, cli.Sizes, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

// run creates, updates and reads records in rounds of the given sizes and prints the average
// duration of each operation per round.
func run(ctx context.Context, client *store.HTTPClient, sizes []int, out io.Writer) error {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  Elements      POST       PUT       GET      LIST ")
	fmt.Fprintln(out, "---------------------------------------------------")
	for _, loops := range sizes {
		if loops <= 0 {
			continue
		}
		fmt.Fprintf(out, "%10d", loops)

		// POST requests
		ids := make([]int64, 0, loops)
		var duration time.Duration
		for i := 0; i < loops; i++ {
			before := time.Now()
			record, err := client.CreateRecord(ctx, sample)
			if err != nil {
				return err
			}
			duration += time.Since(before)
			ids = append(ids, record.Id)
		}
		fmt.Fprintf(out, "%10d", average(duration, loops))

		// PUT requests
		shuffle(ids)
		updated := sample
		updated.City = "Udupi"
		duration, err := callInLoop(ids, func(id int64) error {
			_, err := client.UpdateRecord(ctx, id, updated)
			return err
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%10d", average(duration, loops))

		// GET requests
		shuffle(ids)
		duration, err = callInLoop(ids, func(id int64) error {
			_, err := client.GetRecord(ctx, id)
			return err
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%10d", average(duration, loops))

		// LIST request
		before := time.Now()
		if _, err := client.ListRecords(ctx); err != nil {
			return err
		}
		fmt.Fprintf(out, "%10d", time.Since(before).Microseconds())
		fmt.Fprintln(out)
	}
	return nil
}

func callInLoop(ids []int64, f func(id int64) error) (time.Duration, error) {
	var duration time.Duration
	for _, id := range ids {
		before := time.Now()
		if err := f(id); err != nil {
			return duration, err
		}
		duration += time.Since(before)
	}
	return duration, nil
}

func shuffle(ids []int64) {
	rand.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
}

// average returns the mean duration in microseconds.
func average(total time.Duration, n int) int64 {
	return total.Microseconds() / int64(n)
}
