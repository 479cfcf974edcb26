package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				Link:         "file",
				DevicePath:   "/dev/rfcomm0",
				ChunkSize:    120,
				ChunkDelay:   "100ms",
				MaxAttempts:  6,
				Truncate:     &trueVal,
				Business:     FileBusiness{Name: "BODEGA LUZ", TaxID: "RUC 20123456789"},
				TimeZone:     "UTC",
				WriteTimeout: "3s",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Link:         "file",
				DevicePath:   "/dev/rfcomm0",
				ChunkSize:    120,
				ChunkDelay:   100 * time.Millisecond,
				MaxAttempts:  6,
				Truncate:     true,
				BusinessName: "BODEGA LUZ",
				TaxID:        "RUC 20123456789",
				TimeZone:     "UTC",
				WriteTimeout: 3 * time.Second,
			},
			wantErr: false,
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				Device:    "66:22:AA:BB:CC:DD",
				ChunkSize: 100,
			},
			changed: map[string]bool{"device": true},
			initial: Config{
				Device:    "Caja 1",
				ChunkSize: 200,
			},
			expected: Config{
				Device:    "Caja 1", // unchanged because flag was set
				ChunkSize: 100,
			},
			wantErr: false,
		},
		{
			name: "returns error for invalid duration",
			fileConfig: FileConfig{
				RetryDelay: "soon",
			},
			changed: map[string]bool{},
			initial: Config{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr && err == nil {
				t.Error("ApplyFileConfig() expected error but got nil")
				return
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ApplyFileConfig() unexpected error: %v", err)
				return
			}

			if !tt.wantErr && cfg != tt.expected {
				t.Errorf("ApplyFileConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.toml")

	tomlContent := `
link = "ble"
device = "66:22:AA:BB:CC:DD"
chunk_size = 180
retry_delay = "750ms"
time_zone = "America/Lima"
truncate = false

[business]
name = "BODEGA LUZ"
address = "Av. Huancavelica 120"
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if fc.Device != "66:22:AA:BB:CC:DD" {
		t.Errorf("Device = %v, want 66:22:AA:BB:CC:DD", fc.Device)
	}
	if fc.ChunkSize != 180 {
		t.Errorf("ChunkSize = %v, want 180", fc.ChunkSize)
	}
	if fc.RetryDelay != "750ms" {
		t.Errorf("RetryDelay = %v, want 750ms", fc.RetryDelay)
	}
	if fc.Business.Name != "BODEGA LUZ" || fc.Business.Address != "Av. Huancavelica 120" {
		t.Errorf("Business = %+v", fc.Business)
	}
	if fc.Truncate == nil || *fc.Truncate {
		t.Errorf("Truncate = %v, want false", fc.Truncate)
	}
}

func TestLoadFileConfig_InvalidFile(t *testing.T) {
	_, err := LoadFileConfig("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("LoadFileConfig() expected error for nonexistent file")
	}
}

func TestLoadFileConfig_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.toml")

	invalidContent := `
link = "ble"
this is not valid toml
`

	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	_, err := LoadFileConfig(configPath)
	if err == nil {
		t.Error("LoadFileConfig() expected error for invalid TOML")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	if path != "" && !strings.Contains(path, ".printship") {
		t.Errorf("DefaultConfigPath() = %v, should contain .printship", path)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "exists.txt")

	if err := os.WriteFile(existingFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if !FileExists(existingFile) {
		t.Error("FileExists() = false, want true for existing file")
	}

	if FileExists(filepath.Join(tmpDir, "nonexistent.txt")) {
		t.Error("FileExists() = true, want false for nonexistent file")
	}
}
