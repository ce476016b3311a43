package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect identifies the SQL flavour of the warehouse behind a DB
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectDuckDB   Dialect = "duckdb"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

// Placeholder returns the bind parameter marker for the n-th argument (1-based)
func (d Dialect) Placeholder(n int) string {
	if d == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Placeholders returns count comma separated markers starting at argument start
func (d Dialect) Placeholders(start, count int) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = d.Placeholder(start + i)
	}
	return strings.Join(parts, ", ")
}

// Config holds database configuration
type Config struct {
	Driver string
	DSN    string
}

// DB is a connection pool tagged with its dialect
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open connects to the configured warehouse and verifies the connection
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	dialect := Dialect(strings.ToLower(cfg.Driver))
	dsn := cfg.DSN

	switch dialect {
	case DialectSQLite, DialectDuckDB, DialectPostgres:
	case "mariadb", DialectMySQL:
		dialect = DialectMySQL
		converted, err := toMySQLDSN(dsn)
		if err != nil {
			return nil, err
		}
		dsn = converted
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}

	conn, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}

	// Set connection pool settings
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(30 * time.Minute)

	db := &DB{DB: conn, Dialect: dialect}
	if dialect == DialectSQLite {
		if err := db.sqlitePragmas(ctx); err != nil {
			conn.Close()
			return nil, err
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dialect, err)
	}

	logger.Info("database initialized", "driver", dialect)
	return db, nil
}

func (db *DB) sqlitePragmas(ctx context.Context) error {
	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL: %w", err)
	}
	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return nil
}

// toMySQLDSN converts mysql:// and mariadb:// URLs to the driver's native
// DSN form. Any other string is returned unchanged.
func toMySQLDSN(dsn string) (string, error) {
	if !strings.HasPrefix(dsn, "mariadb://") && !strings.HasPrefix(dsn, "mysql://") {
		return dsn, nil
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("failed to parse mysql dsn: %w", err)
	}

	var user, pass string
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}
	name := strings.TrimPrefix(u.Path, "/")
	if user == "" || u.Host == "" || name == "" {
		return "", fmt.Errorf("incomplete mysql dsn: user, host and database are required")
	}

	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&interpolateParams=true",
		user, pass, u.Host, name), nil
}

// Transaction executes a function within a database transaction
func (db *DB) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
