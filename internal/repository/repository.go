package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"github.com/jengzang/retention-backend-go/internal/database"
)

// insertBatchSize bounds the rows written per transaction
const insertBatchSize = 500

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidateTableName rejects anything but a plain or schema-qualified identifier
func ValidateTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %q", name)
	}
	return nil
}

// table is the shared part of the ledger repositories
type table struct {
	db   *database.DB
	name string
}

func newTable(db *database.DB, name string) (table, error) {
	if err := ValidateTableName(name); err != nil {
		return table{}, err
	}
	return table{db: db, name: name}, nil
}

// Ping checks that the warehouse answers and the table is readable
func (t table) Ping(ctx context.Context) error {
	if err := t.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	rows, err := t.db.QueryContext(ctx, fmt.Sprintf("SELECT 1 FROM %s WHERE 1 = 0", t.name))
	if err != nil {
		return fmt.Errorf("failed to query table %s: %w", t.name, err)
	}
	return rows.Close()
}

// Table returns the table name the repository reads from
func (t table) Table() string {
	return t.name
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullTime(p *time.Time) sql.NullTime {
	if p == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: p.UTC(), Valid: true}
}

func batches(n int) [][2]int {
	var out [][2]int
	for start := 0; start < n; start += insertBatchSize {
		end := start + insertBatchSize
		if end > n {
			end = n
		}
		out = append(out, [2]int{start, end})
	}
	return out
}
