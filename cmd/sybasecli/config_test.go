package main

import (
	"strings"
	"testing"
)

func TestParseConfig_Defaults(t *testing.T) {
	config, err := ParseConfig([]byte(`
database:
  host: ase01
  user: sa
  password: secret
  database: app
`))
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}

	if config.Database.Driver != "odbc" {
		t.Errorf("Driver = %s, want odbc", config.Database.Driver)
	}
	if config.Database.Port != 5000 {
		t.Errorf("Port = %d, want 5000", config.Database.Port)
	}
	if config.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", config.LogLevel)
	}
}

func TestParseConfig_RequiresDatabase(t *testing.T) {
	if _, err := ParseConfig([]byte("metrics: true\n")); err == nil {
		t.Error("expected error without dsn and host")
	}
}

func TestParseConfig_Sections(t *testing.T) {
	config, err := ParseConfig([]byte(`
database:
  dsn: "DSN=ase"
  native_transactions: true
querylog:
  file: /tmp/q.log
  json: true
redis:
  addr: localhost:6379
  max_len: 50
  ttl: 60
metrics: true
`))
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}

	if config.Database.Native == nil || !*config.Database.Native {
		t.Error("native_transactions must be parsed")
	}
	if !config.QueryLog.JSON || config.QueryLog.File != "/tmp/q.log" {
		t.Errorf("querylog = %+v", config.QueryLog)
	}
	if config.Redis.MaxLen != 50 || config.Redis.TTL != 60 {
		t.Errorf("redis = %+v", config.Redis)
	}
	if !config.Metrics {
		t.Error("metrics must be enabled")
	}
}

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "explicit dsn",
			cfg:  DatabaseConfig{Driver: "odbc", DSN: "DSN=ase", Host: "ignored"},
			want: "DSN=ase",
		},
		{
			name: "odbc",
			cfg: DatabaseConfig{Driver: "odbc", Host: "ase01", Port: 5000, Database: "app",
				User: "sa", Password: "pw", ODBCDriver: "Adaptive Server Enterprise"},
			want: "Driver={Adaptive Server Enterprise};Server=ase01;Port=5000;Database=app;UID=sa;PWD=pw",
		},
		{
			name: "tds",
			cfg:  DatabaseConfig{Driver: "mssql", Host: "ase01", Port: 5000, Database: "app", User: "sa", Password: "pw"},
			want: "sqlserver://sa:pw@ase01:5000?database=app",
		},
		{
			name: "unknown driver",
			cfg:  DatabaseConfig{Driver: "pgx", Host: "h"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.BuildDSN(); got != tt.want {
				t.Errorf("BuildDSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAdapterConfig(t *testing.T) {
	config := DefaultConfig()
	config.Database.DSN = "DSN=ase"

	cfg := adapterConfig(config)
	if cfg.Type != "sybase" || cfg.Driver != "odbc" || cfg.DSN != "DSN=ase" {
		t.Errorf("adapterConfig() = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if !strings.HasPrefix(cfg.Timeout.String(), "30s") {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
}

func TestRetryConfig_Policy(t *testing.T) {
	config := DefaultConfig()
	policy := config.Database.ConnectRetry.Policy()

	if err := policy.Validate(); err != nil {
		t.Fatalf("default retry policy is invalid: %v", err)
	}
	if policy.MaxAttempts != 3 || policy.InitialDelay.Milliseconds() != 1000 {
		t.Errorf("Policy() = %+v", policy)
	}
}
