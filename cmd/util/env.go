package util

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// GetEnvWithDefault returns the value of an environment variable or a default value if not set
func GetEnvWithDefault(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvIntWithDefault returns the value of an environment variable as int or a default value if not set
func GetEnvIntWithDefault(envVar string, defaultValue int) int {
	if value := os.Getenv(envVar); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// AddConnectionFlags registers the connection flags of a command that talks
// to a database.
func AddConnectionFlags(cmd *cobra.Command, config *ConnectionConfig) {
	cmd.Flags().StringVar(&config.Host, "host", "localhost", "Database server host (env: PGHOST)")
	cmd.Flags().IntVar(&config.Port, "port", 5432, "Database server port (env: PGPORT)")
	cmd.Flags().StringVar(&config.Database, "db", "", "Database name (env: PGDATABASE)")
	cmd.Flags().StringVar(&config.User, "user", "", "Database user name (env: PGUSER)")
	cmd.Flags().StringVar(&config.Password, "password", "", "Database password (env: PGPASSWORD)")
	cmd.Flags().StringVar(&config.SSLMode, "sslmode", "prefer", "SSL mode (env: PGSSLMODE)")
	cmd.Flags().StringVar(&config.DSN, "dsn", "", "Connection string; overrides the other connection flags")
}

// PreRunEWithEnvVars creates a PreRunE function that fills connection
// parameters from PG* environment variables when the corresponding flags
// weren't explicitly set, then validates the required ones.
func PreRunEWithEnvVars(config *ConnectionConfig) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		fromEnv := func(flag, envVar string, target *string) {
			if value := GetEnvWithDefault(envVar, ""); value != "" && !cmd.Flags().Changed(flag) {
				*target = value
			}
		}
		fromEnv("host", "PGHOST", &config.Host)
		fromEnv("db", "PGDATABASE", &config.Database)
		fromEnv("user", "PGUSER", &config.User)
		fromEnv("password", "PGPASSWORD", &config.Password)
		fromEnv("sslmode", "PGSSLMODE", &config.SSLMode)
		if port := GetEnvIntWithDefault("PGPORT", 0); port != 0 && !cmd.Flags().Changed("port") {
			config.Port = port
		}
		if config.ApplicationName == "" {
			config.ApplicationName = GetEnvWithDefault("PGAPPNAME", "pgstructure")
		}

		if config.DSN != "" {
			return nil
		}
		if config.Database == "" {
			return fmt.Errorf("database name is required (use --db flag or PGDATABASE environment variable)")
		}
		if config.User == "" {
			return fmt.Errorf("database user is required (use --user flag or PGUSER environment variable)")
		}
		return nil
	}
}
