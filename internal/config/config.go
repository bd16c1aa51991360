// Package config loads the settings of the service and the migration tool from environment
// variables, applying defaults and validating the result on startup.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Config holds all settings of the service.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Region   RegionConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Port is the port to listen on (default: 8080)
	Port int `env:"PORT" default:"8080"`

	// RequestLogging is "off" to turn off HTTP request logging (default: on)
	RequestLogging string `env:"GIN_LOGGING" default:"on"`

	// ShutdownTimeout is how long running requests may take after a stop signal (default: 10s)
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// DatabaseConfig holds the MySQL connection settings.
type DatabaseConfig struct {
	Host     string `env:"DBHOST" default:"localhost:3306"`
	User     string `env:"DBUSER" required:"true"`
	Password string `env:"DBPWD"`
	Name     string `env:"DBNAME" default:"test"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// RegionConfig selects the reference data offered for states and districts.
type RegionConfig struct {
	Country string `env:"REGION_COUNTRY" default:"IN"`
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// LogRequests reports whether HTTP requests are logged.
func (c *Config) LogRequests() bool {
	return !strings.EqualFold(c.Server.RequestLogging, "off")
}

// DSN returns the data source name for the MySQL driver. Timestamps are parsed into
// time.Time, and an UPDATE reports matched rather than changed rows so that saving
// unchanged values still finds the record.
func (d DatabaseConfig) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = d.Host
	cfg.DBName = d.Name
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	return cfg.FormatDSN()
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Database.Name == "" {
		errs = append(errs, "DBNAME must not be empty")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if c.Region.Country == "" {
		errs = append(errs, "REGION_COUNTRY must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// String returns the configuration with the database password masked.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Server: {Port: %d, RequestLogging: %q}, Database: {Host: %q, User: %q, Password: [MASKED], Name: %q}, Logging: {Level: %q, Format: %q}, Region: {Country: %q}}",
		c.Server.Port, c.Server.RequestLogging,
		c.Database.Host, c.Database.User, c.Database.Name,
		c.Logging.Level, c.Logging.Format,
		c.Region.Country)
}
