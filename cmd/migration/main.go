package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"gitlab.com/dirk.krummacker/records-service/internal/config"
	"gitlab.com/dirk.krummacker/records-service/internal/logging"
	"gitlab.com/dirk.krummacker/records-service/internal/service"
)

// CLI holds the arguments of the migration tool.
type CLI struct {
	File string `help:"The SQL file to execute." default:"scripts/database.sql" type:"existingfile"`
}

// Usage example on the command line:
// > DBHOST=localhost:3306 DBUSER=dirk DBPWD=bullo92 go run main.go --file=../../scripts/database.sql
func main() {
	var cli CLI
	kong.Parse(&cli, kong.Description("Runs the statements of an SQL file against the records database."))

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	sqlDB, err := service.CreateDatabase(cfg.Database)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	db := sqlx.NewDb(sqlDB, "mysql")
	defer db.Close()

	readFile, err := os.Open(cli.File) // nosemgrep
	if err != nil {
		slog.Error("failed to open SQL file", "file", cli.File, "error", err)
		os.Exit(1)
	}
	defer readFile.Close()

	count, err := runStatements(context.Background(), db, readFile)
	if err != nil {
		slog.Error("migration failed", "file", cli.File, "executed", count, "error", err)
		os.Exit(1)
	}
	slog.Info("migration finished", "file", cli.File, "statements", count)
}

// runStatements executes the statements read from r one by one. A statement ends with the line
// containing its semicolon. It returns the number of executed statements.
func runStatements(ctx context.Context, db *sqlx.DB, r io.Reader) (int, error) {
	fileScanner := bufio.NewScanner(r)
	fileScanner.Split(bufio.ScanLines)
	builder := strings.Builder{}
	count := 0
	for fileScanner.Scan() {
		line := fileScanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		builder.WriteString(line)
		builder.WriteString(" ")
		if strings.Contains(line, ";") {
			sql := builder.String()
			if _, err := db.ExecContext(ctx, sql); err != nil {
				return count, fmt.Errorf("statement %d: %w", count+1, err)
			}
			count++
			builder = strings.Builder{}
		}
	}
	if err := fileScanner.Err(); err != nil {
		return count, fmt.Errorf("read statements: %w", err)
	}
	if rest := strings.TrimSpace(builder.String()); rest != "" {
		return count, fmt.Errorf("statement %d is not terminated by a semicolon", count+1)
	}
	return count, nil
}
