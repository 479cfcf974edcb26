package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/altoke/printship/internal/domain"
	"github.com/altoke/printship/internal/receipt"
	"github.com/altoke/printship/internal/spool"
	"github.com/altoke/printship/internal/transport"
	"github.com/altoke/printship/pkg/log"
)

// Printer link kinds.
const (
	LinkBLE  = "ble"
	LinkFile = "file"
)

// Config holds CLI configuration for printship.
type Config struct {
	// Link selects how the printer is reached: "ble" or "file".
	Link string

	// Device filters BLE printers by address or name. Empty picks the first
	// device advertising the printer service.
	Device             string
	ServiceUUID        string
	CharacteristicUUID string
	ConnectTimeout     time.Duration

	// DevicePath is the rfcomm/serial node or dump file for the file link.
	DevicePath string
	Truncate   bool

	ChunkSize    int
	ChunkDelay   time.Duration
	RetryDelay   time.Duration
	MaxAttempts  int
	WriteTimeout time.Duration

	BusinessName string
	TaxID        string
	Address      string
	TimeZone     string

	StateDir      string
	SpoolDir      string
	SpoolAttempts int

	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	tc := transport.DefaultConfig()
	return Config{
		Link:           LinkBLE,
		ConnectTimeout: 20 * time.Second,
		ChunkSize:      tc.MaxChunkSize,
		ChunkDelay:     tc.ChunkDelay,
		RetryDelay:     tc.RetryDelay,
		MaxAttempts:    tc.MaxAttempts,
		TimeZone:       domain.DefaultTimeZone,
		SpoolAttempts:  5,
		StateDir:       "", // Derived from the home directory during Validate
		LogLevel:       "info",
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	switch c.Link {
	case LinkBLE:
	case LinkFile:
		if c.DevicePath == "" {
			return fmt.Errorf("%w: device-path is required for the file link", domain.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown link %q (want %s or %s)", domain.ErrInvalidConfig, c.Link, LinkBLE, LinkFile)
	}

	if err := c.TransportConfig().Validate(); err != nil {
		return err
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("%w: connect timeout must be positive", domain.ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	if c.StateDir == "" {
		c.StateDir = DefaultStateDir()
		if c.StateDir == "" {
			return fmt.Errorf("%w: state-dir is required", domain.ErrInvalidConfig)
		}
	}
	if c.SpoolDir == "" {
		c.SpoolDir = filepath.Join(c.StateDir, "spool")
	}
	if c.SpoolAttempts <= 0 {
		c.SpoolAttempts = 5
	}
	return nil
}

// TransportConfig returns the chunking and retry settings.
func (c Config) TransportConfig() transport.Config {
	return transport.Config{
		MaxChunkSize: c.ChunkSize,
		ChunkDelay:   c.ChunkDelay,
		RetryDelay:   c.RetryDelay,
		MaxAttempts:  c.MaxAttempts,
		WriteTimeout: c.WriteTimeout,
	}
}

// SpoolConfig returns the watcher settings.
func (c Config) SpoolConfig() spool.Config {
	sc := spool.DefaultConfig(c.SpoolDir)
	sc.Attempts = c.SpoolAttempts
	return sc
}

// Business returns the receipt header. Empty fields fall back to defaults when printing.
func (c Config) Business() domain.BusinessInfo {
	return domain.BusinessInfo{Name: c.BusinessName, TaxID: c.TaxID, Address: c.Address}
}

// Location resolves TimeZone. The shop zone falls back to a fixed offset
// when the tz database is missing.
func (c Config) Location() (*time.Location, error) {
	if c.TimeZone == "" || c.TimeZone == domain.DefaultTimeZone {
		return receipt.ShopLocation(), nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("%w: time zone %q: %v", domain.ErrInvalidConfig, c.TimeZone, err)
	}
	return loc, nil
}

// DefaultStateDir returns ~/.printship, or "" when the home directory is unknown.
func DefaultStateDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".printship")
	}
	return ""
}

// Logger returns the console logger used by the CLI.
func Logger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}

// LoggerAt returns Logger restricted to level.
func LoggerAt(level string) zerolog.Logger {
	return Logger().Level(log.ParseLevel(level))
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
