package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ruslano69/tdtp-sybase/pkg/retry"
)

// Config represents the main configuration structure
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	QueryLog QueryLogConfig `yaml:"querylog,omitempty"`
	Redis    RedisConfig    `yaml:"redis,omitempty"`
	Metrics  bool           `yaml:"metrics,omitempty"`
	LogLevel string         `yaml:"log_level,omitempty"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver      string `yaml:"driver"`                // odbc, mssql
	DSN         string `yaml:"dsn,omitempty"`         // Overrides host/port/user settings
	Host        string `yaml:"host,omitempty"`        // ASE server host
	Port        int    `yaml:"port,omitempty"`        // ASE server port
	Database    string `yaml:"database,omitempty"`    // Database name
	User        string `yaml:"user,omitempty"`        // Username
	Password    string `yaml:"password,omitempty"`    // Password
	ODBCDriver  string `yaml:"odbc_driver,omitempty"` // ODBC driver name
	TablePrefix string `yaml:"table_prefix,omitempty"`
	Timeout     int    `yaml:"timeout,omitempty"` // Ping timeout in seconds
	MaxConns    int    `yaml:"max_conns,omitempty"`
	Native      *bool  `yaml:"native_transactions,omitempty"`

	ConnectRetry RetryConfig `yaml:"connect_retry,omitempty"`
}

// RetryConfig for connection retry settings
type RetryConfig struct {
	MaxAttempts int    `yaml:"max_attempts"`
	Strategy    string `yaml:"strategy"` // constant, linear, exponential
	InitialWait int    `yaml:"initial_wait_ms"`
	MaxWait     int    `yaml:"max_wait_ms"`
}

// QueryLogConfig for statement log file
type QueryLogConfig struct {
	File       string `yaml:"file,omitempty"`
	JSON       bool   `yaml:"json,omitempty"`
	MaxSizeMB  int64  `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
	Async      bool   `yaml:"async,omitempty"`
}

// RedisConfig for publishing the statement log
type RedisConfig struct {
	Addr   string `yaml:"addr,omitempty"`
	Prefix string `yaml:"prefix,omitempty"`
	MaxLen int64  `yaml:"max_len,omitempty"`
	TTL    int    `yaml:"ttl,omitempty"` // seconds
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:     "odbc",
			Port:       5000,
			ODBCDriver: "Adaptive Server Enterprise",
			Timeout:    30,
			ConnectRetry: RetryConfig{
				MaxAttempts: 3,
				Strategy:    "exponential",
				InitialWait: 1000,
				MaxWait:     10000,
			},
		},
		LogLevel: "info",
	}
}

// LoadConfig loads configuration from YAML file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML over the default configuration
func ParseConfig(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.Database.DSN == "" && config.Database.Host == "" {
		return nil, fmt.Errorf("database: dsn or host is required")
	}
	return config, nil
}

// BuildDSN constructs database connection string from config
func (c *DatabaseConfig) BuildDSN() string {
	if c.DSN != "" {
		return c.DSN
	}

	switch c.Driver {
	case "mssql", "sqlserver":
		u := url.URL{
			Scheme: "sqlserver",
			User:   url.UserPassword(c.User, c.Password),
			Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		}
		if c.Database != "" {
			u.RawQuery = url.Values{"database": {c.Database}}.Encode()
		}
		return u.String()

	case "odbc", "":
		parts := []string{
			fmt.Sprintf("Driver={%s}", c.ODBCDriver),
			"Server=" + c.Host,
			fmt.Sprintf("Port=%d", c.Port),
		}
		if c.Database != "" {
			parts = append(parts, "Database="+c.Database)
		}
		if c.User != "" {
			parts = append(parts, "UID="+c.User, "PWD="+c.Password)
		}
		return strings.Join(parts, ";")

	default:
		return ""
	}
}

// Policy converts the section to a retry policy
func (r RetryConfig) Policy() retry.Config {
	return retry.Config{
		MaxAttempts:  r.MaxAttempts,
		Strategy:     retry.BackoffStrategy(r.Strategy),
		InitialDelay: time.Duration(r.InitialWait) * time.Millisecond,
		MaxDelay:     time.Duration(r.MaxWait) * time.Millisecond,
		Jitter:       0.1,
	}
}

// TimeoutDuration returns the ping timeout
func (c *DatabaseConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}
