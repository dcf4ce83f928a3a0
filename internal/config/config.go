package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Data      DataConfig      `toml:"data"`
	Generator GeneratorConfig `toml:"generator"`
	Logger    LoggerConfig    `toml:"log"`
	Security  SecurityConfig  `toml:"security"`
}

type ServerConfig struct {
	Host            string        `toml:"host"`
	Port            int           `toml:"port"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	IdleTimeout     time.Duration `toml:"idle_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// DataConfig locates the four generated CSV files.
type DataConfig struct {
	Dir            string `toml:"dir"`
	SalesFile      string `toml:"sales_file"`
	OperationsFile string `toml:"operations_file"`
	FinancialFile  string `toml:"financial_file"`
	CustomersFile  string `toml:"customers_file"`
}

// GeneratorConfig holds the dataset generation parameters. One seed fully
// determines all four datasets.
type GeneratorConfig struct {
	Seed         uint64 `toml:"seed"`
	SalesRows    int    `toml:"sales_rows"`
	CustomerRows int    `toml:"customer_rows"`
}

type LoggerConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type SecurityConfig struct {
	EnableRateLimit bool     `toml:"rate_limit_enabled"`
	RateLimitRPS    int      `toml:"rate_limit_rps"`
	RateLimitBurst  int      `toml:"rate_limit_burst"`
	AllowedOrigins  []string `toml:"allowed_origins"`
	TrustedProxies  []string `toml:"trusted_proxies"`
}

// Load builds the configuration in three layers: defaults, an optional TOML
// file (CONFIG_FILE, falling back to config.toml when present), then
// environment variable overrides.
func Load() (*Config, error) {
	cfg := defaults()

	if path := configFilePath(); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8084,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Data: DataConfig{
			Dir:            ".",
			SalesFile:      "superstore_sales.csv",
			OperationsFile: "operations_data.csv",
			FinancialFile:  "financial_data.csv",
			CustomersFile:  "customer_data.csv",
		},
		Generator: GeneratorConfig{
			Seed:         42,
			SalesRows:    5000,
			CustomerRows: 1500,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "json",
		},
		Security: SecurityConfig{
			EnableRateLimit: true,
			RateLimitRPS:    100,
			RateLimitBurst:  10,
			AllowedOrigins:  []string{"http://localhost:8084"},
			TrustedProxies:  []string{"127.0.0.1"},
		},
	}
}

func configFilePath() string {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return path
	}
	if _, err := os.Stat("config.toml"); err == nil {
		return "config.toml"
	}
	return ""
}

func loadFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return toml.NewDecoder(file).Decode(cfg)
}

func applyEnv(cfg *Config) {
	envString("SERVER_HOST", &cfg.Server.Host)
	envInt("SERVER_PORT", &cfg.Server.Port)
	envDuration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	envDuration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	envString("DATA_DIR", &cfg.Data.Dir)
	envString("DATA_SALES_FILE", &cfg.Data.SalesFile)
	envString("DATA_OPERATIONS_FILE", &cfg.Data.OperationsFile)
	envString("DATA_FINANCIAL_FILE", &cfg.Data.FinancialFile)
	envString("DATA_CUSTOMERS_FILE", &cfg.Data.CustomersFile)

	envUint64("GENERATOR_SEED", &cfg.Generator.Seed)
	envInt("GENERATOR_SALES_ROWS", &cfg.Generator.SalesRows)
	envInt("GENERATOR_CUSTOMER_ROWS", &cfg.Generator.CustomerRows)

	envString("LOG_LEVEL", &cfg.Logger.Level)
	envString("LOG_FORMAT", &cfg.Logger.Format)

	envBool("SECURITY_RATE_LIMIT_ENABLED", &cfg.Security.EnableRateLimit)
	envInt("SECURITY_RATE_LIMIT_RPS", &cfg.Security.RateLimitRPS)
	envInt("SECURITY_RATE_LIMIT_BURST", &cfg.Security.RateLimitBurst)
	envStringSlice("SECURITY_ALLOWED_ORIGINS", &cfg.Security.AllowedOrigins)
	envStringSlice("SECURITY_TRUSTED_PROXIES", &cfg.Security.TrustedProxies)
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if c.Data.Dir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}
	for _, name := range []string{c.Data.SalesFile, c.Data.OperationsFile, c.Data.FinancialFile, c.Data.CustomersFile} {
		if name == "" {
			return fmt.Errorf("dataset file names cannot be empty")
		}
	}
	if c.Generator.SalesRows < 0 || c.Generator.CustomerRows < 0 {
		return fmt.Errorf("generator row counts must be non-negative")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLevels, ", "))
	}
	validFormats := []string{"json", "text"}
	if !slices.Contains(validFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}
	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}
	return nil
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Path helpers resolving dataset files against the data directory.
func (c *Config) SalesPath() string      { return filepath.Join(c.Data.Dir, c.Data.SalesFile) }
func (c *Config) OperationsPath() string { return filepath.Join(c.Data.Dir, c.Data.OperationsFile) }
func (c *Config) FinancialPath() string  { return filepath.Join(c.Data.Dir, c.Data.FinancialFile) }
func (c *Config) CustomersPath() string  { return filepath.Join(c.Data.Dir, c.Data.CustomersFile) }

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envUint64(key string, dst *uint64) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func envStringSlice(key string, dst *[]string) {
	if v := os.Getenv(key); v != "" {
		*dst = strings.Split(v, ",")
	}
}
