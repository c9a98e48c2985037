package migration

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/go-sql-driver/mysql"
)

// DatabaseManager manages the test database
type DatabaseManager struct {
	lookup func(string) string
	log    log.Logger
}

// NewDatabaseManager creates a new DatabaseManager. lookup resolves
// connection settings (DB_HOST, DB_PORT, DB_USERNAME, DB_PASSWORD).
func NewDatabaseManager(lookup func(string) string, logger log.Logger) *DatabaseManager {
	return &DatabaseManager{lookup: lookup, log: logger}
}

func (dm *DatabaseManager) setting(key, fallback string) string {
	if v := dm.lookup(key); v != "" {
		return v
	}
	return fallback
}

// DSN returns the server connection string, without a database selected
func (dm *DatabaseManager) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = dm.setting("DB_USERNAME", "root")
	cfg.Passwd = dm.setting("DB_PASSWORD", "")
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(dm.setting("DB_HOST", "127.0.0.1"), dm.setting("DB_PORT", "3306"))
	return cfg.FormatDSN()
}

// EnsureDatabase creates the named database when it does not exist yet
func (dm *DatabaseManager) EnsureDatabase(ctx context.Context, name string) (bool, error) {
	if !isValidDatabaseName(name) {
		return false, fmt.Errorf("invalid database name: %s", name)
	}

	db, err := sql.Open("mysql", dm.DSN())
	if err != nil {
		return false, fmt.Errorf("failed to connect to database server: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return false, fmt.Errorf("failed to ping database server: %w", err)
	}

	exists, err := databaseExists(ctx, db, name)
	if err != nil {
		return false, fmt.Errorf("failed to check database %s: %w", name, err)
	}
	if exists {
		dm.log.Debug("Test database present", "name", name)
		return false, nil
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", name)); err != nil {
		return false, fmt.Errorf("failed to create database %s: %w", name, err)
	}
	dm.log.Info("Created test database", "name", name)
	return true, nil
}

func databaseExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?)"
	err := db.QueryRowContext(ctx, query, name).Scan(&exists)
	return exists, err
}

// isValidDatabaseName rejects names that cannot be safely quoted
func isValidDatabaseName(name string) bool {
	if len(name) == 0 || len(name) > 64 {
		return false
	}
	if strings.ContainsAny(name, "`'\";/\\ ") || strings.Contains(name, "--") {
		return false
	}
	upper := strings.ToUpper(name)
	for _, word := range []string{"DROP", "DELETE", "TRUNCATE"} {
		if strings.Contains(upper, word) {
			return false
		}
	}
	return true
}
