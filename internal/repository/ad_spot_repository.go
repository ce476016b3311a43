package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/retention-backend-go/internal/database"
	"github.com/jengzang/retention-backend-go/internal/models"
)

// AdSpotRepository reads the TV ad spot ledger
type AdSpotRepository struct {
	table
}

// NewAdSpotRepository creates a new ad spot repository over tableName
func NewAdSpotRepository(db *database.DB, tableName string) (*AdSpotRepository, error) {
	t, err := newTable(db, tableName)
	if err != nil {
		return nil, err
	}
	return &AdSpotRepository{table: t}, nil
}

// FetchAdSpotRecords returns every ad airing in the ledger.
// Missing spot counts default to 1, missing measures to 0.
func (r *AdSpotRepository) FetchAdSpotRecords(ctx context.Context) ([]models.AdSpotRecord, error) {
	query := fmt.Sprintf(`SELECT timezone, channel, program, ad_time_ntz, spot, cost, impression, users
		FROM %s ORDER BY timezone, ad_time_ntz`, r.name)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ad spots: %w", err)
	}
	defer rows.Close()

	records := make([]models.AdSpotRecord, 0)
	for rows.Next() {
		var rec models.AdSpotRecord
		var spots sql.NullInt64
		var cost, impression, users sql.NullFloat64
		err := rows.Scan(
			&rec.Timezone, &rec.Channel, &rec.Program, &rec.AdTime,
			&spots, &cost, &impression, &users,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ad spot: %w", err)
		}

		rec.Spots = 1
		if spots.Valid {
			rec.Spots = int(spots.Int64)
		}
		rec.Cost = cost.Float64
		rec.Impression = impression.Float64
		rec.Users = users.Float64
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ad spots: %w", err)
	}

	return records, nil
}

// InsertAdSpotRecords appends records to the ledger in batched transactions
func (r *AdSpotRepository) InsertAdSpotRecords(ctx context.Context, records []models.AdSpotRecord, progress func(int)) error {
	query := fmt.Sprintf(`INSERT INTO %s (timezone, channel, program, ad_time_ntz, spot, cost, impression, users)
		VALUES (%s)`, r.name, r.db.Dialect.Placeholders(1, 8))

	for _, b := range batches(len(records)) {
		batch := records[b[0]:b[1]]
		err := r.db.Transaction(ctx, func(tx *sql.Tx) error {
			stmt, err := tx.PrepareContext(ctx, query)
			if err != nil {
				return fmt.Errorf("failed to prepare statement: %w", err)
			}
			defer stmt.Close()

			for _, rec := range batch {
				_, err := stmt.ExecContext(ctx,
					rec.Timezone, rec.Channel, rec.Program, rec.AdTime.UTC(),
					rec.Spots, rec.Cost, rec.Impression, rec.Users,
				)
				if err != nil {
					return fmt.Errorf("failed to insert ad spot %s/%s: %w", rec.Timezone, rec.Program, err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		if progress != nil {
			progress(len(batch))
		}
	}

	return nil
}
