package cliconfig

import "os"

// EnvPrefix prefixes every environment variable printship reads.
const EnvPrefix = "PRINTSHIP_"

func getenv(name string) string { return os.Getenv(EnvPrefix + name) }

// ApplyEnvConfig applies PRINTSHIP_* environment variables to cfg.
// Values override the config file but not explicitly set flags.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("link", getenv("LINK"), &cfg.Link)
	s.setString("device", getenv("DEVICE"), &cfg.Device)
	s.setString("service-uuid", getenv("SERVICE_UUID"), &cfg.ServiceUUID)
	s.setString("characteristic-uuid", getenv("CHARACTERISTIC_UUID"), &cfg.CharacteristicUUID)
	s.setString("device-path", getenv("DEVICE_PATH"), &cfg.DevicePath)
	s.setString("business-name", getenv("BUSINESS_NAME"), &cfg.BusinessName)
	s.setString("tax-id", getenv("TAX_ID"), &cfg.TaxID)
	s.setString("address", getenv("ADDRESS"), &cfg.Address)
	s.setString("time-zone", getenv("TIME_ZONE"), &cfg.TimeZone)
	s.setString("state-dir", getenv("STATE_DIR"), &cfg.StateDir)
	s.setString("spool-dir", getenv("SPOOL_DIR"), &cfg.SpoolDir)
	s.setString("log-level", getenv("LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("connect-timeout", getenv("CONNECT_TIMEOUT"), &cfg.ConnectTimeout); err != nil {
		return err
	}
	if err := s.setDuration("chunk-delay", getenv("CHUNK_DELAY"), &cfg.ChunkDelay); err != nil {
		return err
	}
	if err := s.setDuration("retry-delay", getenv("RETRY_DELAY"), &cfg.RetryDelay); err != nil {
		return err
	}
	if err := s.setDuration("write-timeout", getenv("WRITE_TIMEOUT"), &cfg.WriteTimeout); err != nil {
		return err
	}

	if err := s.setIntFromString("chunk-size", getenv("CHUNK_SIZE"), &cfg.ChunkSize); err != nil {
		return err
	}
	if err := s.setIntFromString("max-attempts", getenv("MAX_ATTEMPTS"), &cfg.MaxAttempts); err != nil {
		return err
	}
	if err := s.setIntFromString("spool-attempts", getenv("SPOOL_ATTEMPTS"), &cfg.SpoolAttempts); err != nil {
		return err
	}

	s.setBoolFromString("truncate", getenv("TRUNCATE"), &cfg.Truncate)

	return nil
}
