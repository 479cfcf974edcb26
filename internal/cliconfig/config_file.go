package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Link               string `toml:"link"`
	Device             string `toml:"device"`
	ServiceUUID        string `toml:"service_uuid"`
	CharacteristicUUID string `toml:"characteristic_uuid"`
	ConnectTimeout     string `toml:"connect_timeout"`
	DevicePath         string `toml:"device_path"`
	Truncate           *bool  `toml:"truncate"`

	ChunkSize    int    `toml:"chunk_size"`
	ChunkDelay   string `toml:"chunk_delay"`
	RetryDelay   string `toml:"retry_delay"`
	MaxAttempts  int    `toml:"max_attempts"`
	WriteTimeout string `toml:"write_timeout"`

	Business FileBusiness `toml:"business"`
	TimeZone string       `toml:"time_zone"`

	StateDir      string `toml:"state_dir"`
	SpoolDir      string `toml:"spool_dir"`
	SpoolAttempts int    `toml:"spool_attempts"`

	LogLevel string `toml:"log_level"`
}

// FileBusiness is the [business] table.
type FileBusiness struct {
	Name    string `toml:"name"`
	TaxID   string `toml:"tax_id"`
	Address string `toml:"address"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.printship/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if dir := DefaultStateDir(); dir != "" {
		return filepath.Join(dir, "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("link", fc.Link, &cfg.Link)
	s.setString("device", fc.Device, &cfg.Device)
	s.setString("service-uuid", fc.ServiceUUID, &cfg.ServiceUUID)
	s.setString("characteristic-uuid", fc.CharacteristicUUID, &cfg.CharacteristicUUID)
	s.setString("device-path", fc.DevicePath, &cfg.DevicePath)
	s.setString("business-name", fc.Business.Name, &cfg.BusinessName)
	s.setString("tax-id", fc.Business.TaxID, &cfg.TaxID)
	s.setString("address", fc.Business.Address, &cfg.Address)
	s.setString("time-zone", fc.TimeZone, &cfg.TimeZone)
	s.setString("state-dir", fc.StateDir, &cfg.StateDir)
	s.setString("spool-dir", fc.SpoolDir, &cfg.SpoolDir)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("connect-timeout", fc.ConnectTimeout, &cfg.ConnectTimeout); err != nil {
		return err
	}
	if err := s.setDuration("chunk-delay", fc.ChunkDelay, &cfg.ChunkDelay); err != nil {
		return err
	}
	if err := s.setDuration("retry-delay", fc.RetryDelay, &cfg.RetryDelay); err != nil {
		return err
	}
	if err := s.setDuration("write-timeout", fc.WriteTimeout, &cfg.WriteTimeout); err != nil {
		return err
	}

	s.setInt("chunk-size", fc.ChunkSize, &cfg.ChunkSize)
	s.setInt("max-attempts", fc.MaxAttempts, &cfg.MaxAttempts)
	s.setInt("spool-attempts", fc.SpoolAttempts, &cfg.SpoolAttempts)

	s.setBool("truncate", fc.Truncate, &cfg.Truncate)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
