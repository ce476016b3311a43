package repository

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/retention-backend-go/internal/database"
	"github.com/jengzang/retention-backend-go/internal/models"
)

func openMigratedDB(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := database.Open(ctx, database.Config{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "ledger.db"),
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = database.NewMigrationManager(db, database.Migrations(), logger).RunMigrations(ctx)
	require.NoError(t, err)
	return db
}

func TestValidateTableName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"customer_order", "analytics.customer_order", "_t1"} {
		assert.NoError(t, ValidateTableName(name), name)
	}
	for _, name := range []string{"", "orders; DROP TABLE x", "a.b.c", "1abc", `"quoted"`} {
		assert.Error(t, ValidateTableName(name), name)
	}
}

func TestOrderRepository_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openMigratedDB(t)
	repo, err := NewOrderRepository(db, "customer_order")
	require.NoError(t, err)
	require.NoError(t, repo.Ping(ctx))

	first := time.Date(2021, 1, 2, 9, 30, 0, 0, time.UTC)
	second := first.AddDate(0, 0, 21)
	delay := 3.0
	orders := []models.Order{
		{OrderID: "1", CustomerID: "c1", CreatedAt: first, PurchaseSequence: 1},
		{
			OrderID: "2", CustomerID: "c1", CreatedAt: second, PreviousCreatedAt: &first,
			WeekDelay: &delay, IsRepurchase: true, HasMattress: true, PurchaseSequence: 2,
		},
	}

	var written int
	require.NoError(t, repo.InsertOrders(ctx, orders, func(n int) { written += n }))
	assert.Equal(t, 2, written)

	got, err := repo.FetchOrders(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "1", got[0].OrderID)
	assert.True(t, got[0].CreatedAt.Equal(first))
	assert.Nil(t, got[0].PreviousCreatedAt)
	assert.Nil(t, got[0].WeekDelay)
	assert.False(t, got[0].IsRepurchase)

	assert.Equal(t, "2", got[1].OrderID)
	require.NotNil(t, got[1].PreviousCreatedAt)
	assert.True(t, got[1].PreviousCreatedAt.Equal(first))
	require.NotNil(t, got[1].WeekDelay)
	assert.Equal(t, 3.0, *got[1].WeekDelay)
	assert.True(t, got[1].IsRepurchase)
	assert.True(t, got[1].HasMattress)
	assert.False(t, got[1].HasAccessory)
	assert.Equal(t, 2, got[1].PurchaseSequence)
	assert.Equal(t, "2021-01", got[1].YearMonth())
}

func TestOrderRepository_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openMigratedDB(t)

	_, err := NewOrderRepository(db, "orders; --")
	require.Error(t, err)

	missing, err := NewOrderRepository(db, "no_such_table")
	require.NoError(t, err)
	require.Error(t, missing.Ping(ctx))
	_, err = missing.FetchOrders(ctx)
	require.Error(t, err)
}

func TestAdSpotRepository_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openMigratedDB(t)
	repo, err := NewAdSpotRepository(db, "tv_program_spot")
	require.NoError(t, err)
	assert.Equal(t, "tv_program_spot", repo.Table())

	aired := time.Date(2021, 3, 4, 20, 0, 0, 0, time.UTC)
	records := make([]models.AdSpotRecord, 0, 1200)
	for i := 0; i < 1200; i++ {
		records = append(records, models.AdSpotRecord{
			Timezone: "Australia/Sydney", Channel: "seven", Program: "news",
			AdTime: aired.Add(time.Duration(i) * time.Minute), Spots: 1,
			Cost: 100, Impression: 20, Users: float64(i % 7),
		})
	}

	batches := 0
	require.NoError(t, repo.InsertAdSpotRecords(ctx, records, func(int) { batches++ }))
	assert.Equal(t, 3, batches)

	// nullable measures coming from the warehouse
	_, err = db.ExecContext(ctx, `INSERT INTO tv_program_spot (timezone, channel, program, ad_time_ntz, spot, cost, impression, users)
		VALUES (?, ?, ?, ?, NULL, 5, NULL, 2)`, "Australia/Perth", "nine", "movie", aired)
	require.NoError(t, err)

	got, err := repo.FetchAdSpotRecords(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1201)

	perth := got[0]
	assert.Equal(t, "Australia/Perth", perth.Timezone)
	assert.Equal(t, 1, perth.Spots)
	assert.Equal(t, 5.0, perth.Cost)
	assert.Zero(t, perth.Impression)
	assert.Equal(t, 2.0, perth.Users)
	assert.True(t, perth.AdTime.Equal(aired))

	assert.Equal(t, "Australia/Sydney", got[1].Timezone)
	assert.Equal(t, 100.0, got[1].Cost)
}
