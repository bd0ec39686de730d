package util

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestGetEnvWithDefault(t *testing.T) {
	t.Setenv("TEST_STRING", "test-value")
	if got := GetEnvWithDefault("TEST_STRING", "default"); got != "test-value" {
		t.Errorf("GetEnvWithDefault(TEST_STRING) = %q; want test-value", got)
	}

	if got := GetEnvWithDefault("PGSTRUCTURE_MISSING_VAR", "default"); got != "default" {
		t.Errorf("GetEnvWithDefault(missing) = %q; want default", got)
	}

	t.Setenv("EMPTY_VAR", "")
	if got := GetEnvWithDefault("EMPTY_VAR", "default"); got != "default" {
		t.Errorf("GetEnvWithDefault(empty) = %q; want default", got)
	}
}

func TestGetEnvIntWithDefault(t *testing.T) {
	t.Setenv("TEST_INT", "12345")
	if got := GetEnvIntWithDefault("TEST_INT", 0); got != 12345 {
		t.Errorf("GetEnvIntWithDefault(TEST_INT) = %d; want 12345", got)
	}

	t.Setenv("TEST_INVALID_INT", "not-a-number")
	if got := GetEnvIntWithDefault("TEST_INVALID_INT", 999); got != 999 {
		t.Errorf("GetEnvIntWithDefault(invalid) = %d; want 999", got)
	}

	if got := GetEnvIntWithDefault("PGSTRUCTURE_MISSING_INT", 777); got != 777 {
		t.Errorf("GetEnvIntWithDefault(missing) = %d; want 777", got)
	}
}

func newTestCommand(config *ConnectionConfig) *cobra.Command {
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	AddConnectionFlags(cmd, config)
	cmd.PreRunE = PreRunEWithEnvVars(config)
	return cmd
}

func TestPreRunEWithEnvVars(t *testing.T) {
	t.Setenv("PGDATABASE", "env-db")
	t.Setenv("PGUSER", "env-user")
	t.Setenv("PGHOST", "env-host")
	t.Setenv("PGPORT", "1234")
	t.Setenv("PGPASSWORD", "secret")
	t.Setenv("PGAPPNAME", "")
	t.Setenv("PGSSLMODE", "")

	var config ConnectionConfig
	cmd := newTestCommand(&config)
	cmd.SetArgs([]string{"--user", "flag-user"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	want := ConnectionConfig{
		Host:            "env-host",
		Port:            1234,
		Database:        "env-db",
		User:            "flag-user",
		Password:        "secret",
		SSLMode:         "prefer",
		ApplicationName: "pgstructure",
	}
	if config != want {
		t.Errorf("config = %+v; want %+v", config, want)
	}
}

func TestPreRunEWithEnvVarsRequiresDatabase(t *testing.T) {
	for _, env := range []string{"PGDATABASE", "PGUSER", "PGHOST", "PGPORT", "PGPASSWORD", "PGSSLMODE"} {
		t.Setenv(env, "")
	}

	var config ConnectionConfig
	cmd := newTestCommand(&config)
	cmd.SetArgs([]string{"--user", "someone"})
	if err := cmd.Execute(); err == nil {
		t.Error("Execute() without a database succeeded; want error")
	}

	config = ConnectionConfig{}
	cmd = newTestCommand(&config)
	cmd.SetArgs([]string{"--dsn", "postgres://localhost/app"})
	if err := cmd.Execute(); err != nil {
		t.Errorf("Execute() with --dsn error: %v", err)
	}
}

func TestConnectionConfigDSN(t *testing.T) {
	tests := []struct {
		name   string
		config ConnectionConfig
		want   string
	}{
		{
			name:   "plain",
			config: ConnectionConfig{Host: "localhost", Port: 5432, Database: "app", User: "me"},
			want:   "host=localhost port=5432 dbname=app user=me",
		},
		{
			name:   "quoted password",
			config: ConnectionConfig{Host: "db", Database: "app", User: "me", Password: `it's a \secret`, SSLMode: "disable"},
			want:   `host=db dbname=app user=me password='it\'s a \\secret' sslmode=disable`,
		},
		{
			name:   "explicit dsn wins",
			config: ConnectionConfig{Host: "ignored", DSN: "postgres://me@db/app"},
			want:   "postgres://me@db/app",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.dsn(); got != tt.want {
				t.Errorf("dsn() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestRedactDSN(t *testing.T) {
	if got := RedactDSN("postgres://me:hunter2@db:5432/app"); got != "postgres://me:xxxxx@db:5432/app" {
		t.Errorf("RedactDSN() = %q", got)
	}
	if got := RedactDSN("host=db user=me"); got != "host=db user=me" {
		t.Errorf("RedactDSN(keyword form) = %q", got)
	}
}
