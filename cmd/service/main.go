package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"gitlab.com/dirk.krummacker/records-service/internal/config"
	"gitlab.com/dirk.krummacker/records-service/internal/logging"
	"gitlab.com/dirk.krummacker/records-service/internal/region"
	"gitlab.com/dirk.krummacker/records-service/internal/service"
)

// Usage example on the command line:
// > PORT=8080 DBUSER=dirk DBPWD=bullo92 GIN_MODE=release GIN_LOGGING=OFF go run main.go
func main() {
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sqlDB, err := service.CreateDatabase(cfg.Database)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer sqlDB.Close()
	if err := sqlDB.PingContext(ctx); err != nil {
		slog.Error("failed to ping database", "host", cfg.Database.Host, "error", err)
		os.Exit(1)
	}
	if err := service.SetupDatabaseWrapper(sqlDB); err != nil {
		slog.Error("failed to prepare statements", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to database", "host", cfg.Database.Host, "name", cfg.Database.Name)

	regions := region.Default()
	if len(regions.States(cfg.Region.Country)) == 0 {
		slog.Warn("no states known for the configured country", "country", cfg.Region.Country)
	}

	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: service.SetupHttpRouter(cfg.LogRequests(), regions),
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Addr())
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
