package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/retention-backend-go/internal/database"
	"github.com/jengzang/retention-backend-go/internal/models"
)

// OrderRepository reads the customer order ledger
type OrderRepository struct {
	table
}

// NewOrderRepository creates a new order repository over tableName
func NewOrderRepository(db *database.DB, tableName string) (*OrderRepository, error) {
	t, err := newTable(db, tableName)
	if err != nil {
		return nil, err
	}
	return &OrderRepository{table: t}, nil
}

// FetchOrders returns the full order ledger ordered by creation time
func (r *OrderRepository) FetchOrders(ctx context.Context) ([]models.Order, error) {
	query := fmt.Sprintf(`SELECT order_id, customer_id, created_at_tz, previous_created_at_tz,
		week_delay, is_repurchase, has_mattress, has_accessory, purchase_sequence
		FROM %s ORDER BY created_at_tz, order_id`, r.name)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]models.Order, 0)
	for rows.Next() {
		var o models.Order
		var previous sql.NullTime
		var delay sql.NullFloat64
		err := rows.Scan(
			&o.OrderID, &o.CustomerID, &o.CreatedAt, &previous,
			&delay, &o.IsRepurchase, &o.HasMattress, &o.HasAccessory, &o.PurchaseSequence,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		if previous.Valid {
			t := previous.Time
			o.PreviousCreatedAt = &t
		}
		if delay.Valid {
			d := delay.Float64
			o.WeekDelay = &d
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	return orders, nil
}

// InsertOrders appends orders to the ledger in batched transactions.
// progress, when set, is called with the number of rows written per batch.
func (r *OrderRepository) InsertOrders(ctx context.Context, orders []models.Order, progress func(int)) error {
	query := fmt.Sprintf(`INSERT INTO %s (order_id, customer_id, created_at_tz, previous_created_at_tz,
		week_delay, is_repurchase, has_mattress, has_accessory, purchase_sequence) VALUES (%s)`,
		r.name, r.db.Dialect.Placeholders(1, 9))

	for _, b := range batches(len(orders)) {
		batch := orders[b[0]:b[1]]
		err := r.db.Transaction(ctx, func(tx *sql.Tx) error {
			stmt, err := tx.PrepareContext(ctx, query)
			if err != nil {
				return fmt.Errorf("failed to prepare statement: %w", err)
			}
			defer stmt.Close()

			for _, o := range batch {
				_, err := stmt.ExecContext(ctx,
					o.OrderID, o.CustomerID, o.CreatedAt.UTC(), nullTime(o.PreviousCreatedAt),
					nullFloat(o.WeekDelay), o.IsRepurchase, o.HasMattress, o.HasAccessory, o.PurchaseSequence,
				)
				if err != nil {
					return fmt.Errorf("failed to insert order %s: %w", o.OrderID, err)
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
