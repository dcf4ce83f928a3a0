package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Host != "localhost" {
		t.Errorf("Host = %q, want localhost", cfg.Server.Host)
	}
	if cfg.Server.Port != 8084 {
		t.Errorf("Port = %d, want 8084", cfg.Server.Port)
	}
	if cfg.Generator.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Generator.Seed)
	}
	if cfg.Data.SalesFile != "superstore_sales.csv" {
		t.Errorf("SalesFile = %q", cfg.Data.SalesFile)
	}
	if cfg.Logger.Level != "info" || cfg.Logger.Format != "json" {
		t.Errorf("Logger = %+v", cfg.Logger)
	}
	if !cfg.Security.EnableRateLimit {
		t.Error("rate limiting should default to enabled")
	}
}

func TestLoad_TOMLFile(t *testing.T) {
	t.Chdir(t.TempDir())

	content := `
[server]
host = "0.0.0.0"
port = 9090

[data]
dir = "/var/data"

[generator]
seed = 7
sales_rows = 100

[log]
level = "debug"
format = "text"
`
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9090 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Data.Dir != "/var/data" {
		t.Errorf("Dir = %q", cfg.Data.Dir)
	}
	if cfg.Generator.Seed != 7 || cfg.Generator.SalesRows != 100 {
		t.Errorf("generator = %+v", cfg.Generator)
	}
	if cfg.Logger.Level != "debug" || cfg.Logger.Format != "text" {
		t.Errorf("logger = %+v", cfg.Logger)
	}

	// Values absent from the file keep their defaults.
	if cfg.Generator.CustomerRows != 1500 {
		t.Errorf("CustomerRows = %d, want default 1500", cfg.Generator.CustomerRows)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("SERVER_PORT", "7777")
	t.Setenv("SERVER_READ_TIMEOUT", "5s")
	t.Setenv("DATA_DIR", "datasets")
	t.Setenv("GENERATOR_SEED", "12345")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 7777 {
		t.Errorf("Port = %d, want 7777", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
	if cfg.Data.Dir != "datasets" {
		t.Errorf("Dir = %q, want datasets", cfg.Data.Dir)
	}
	if cfg.Generator.Seed != 12345 {
		t.Errorf("Seed = %d, want 12345", cfg.Generator.Seed)
	}
	if cfg.Logger.Level != "warn" {
		t.Errorf("Level = %q, want warn", cfg.Logger.Level)
	}
	if len(cfg.Security.AllowedOrigins) != 2 || cfg.Security.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.Security.AllowedOrigins)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port too low", "SERVER_PORT", "0"},
		{"port too high", "SERVER_PORT", "70000"},
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"bad log format", "LOG_FORMAT", "xml"},
		{"negative sales rows", "GENERATOR_SALES_ROWS", "-1"},
		{"zero rate limit", "SECURITY_RATE_LIMIT_RPS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() should reject %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_FILE", "/nonexistent/config.toml")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail for an explicitly named missing file")
	}
}

func TestConfig_Paths(t *testing.T) {
	cfg := defaults()
	cfg.Data.Dir = "/srv/data"

	if got := cfg.SalesPath(); got != filepath.Join("/srv/data", "superstore_sales.csv") {
		t.Errorf("SalesPath() = %q", got)
	}
	if got := cfg.OperationsPath(); got != filepath.Join("/srv/data", "operations_data.csv") {
		t.Errorf("OperationsPath() = %q", got)
	}
	if got := cfg.FinancialPath(); got != filepath.Join("/srv/data", "financial_data.csv") {
		t.Errorf("FinancialPath() = %q", got)
	}
	if got := cfg.CustomersPath(); got != filepath.Join("/srv/data", "customer_data.csv") {
		t.Errorf("CustomersPath() = %q", got)
	}
}

func TestConfig_Address(t *testing.T) {
	cfg := defaults()
	if got := cfg.Address(); got != "localhost:8084" {
		t.Errorf("Address() = %q, want localhost:8084", got)
	}
}
