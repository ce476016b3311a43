package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/retention-backend-go/internal/middleware"
	"github.com/jengzang/retention-backend-go/internal/models"
	"github.com/jengzang/retention-backend-go/internal/stats"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_EndToEnd(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "retention.db")
	db := []string{"--db-driver", "sqlite", "--db-dsn", dsn}
	run := func(args ...string) (string, error) {
		return execute(t, append(args, db...)...)
	}

	_, err := run("migrate")
	require.NoError(t, err)

	// migrations are idempotent
	_, err = run("migrate")
	require.NoError(t, err)

	_, err = run("seed", "--orders", "300", "--spots", "200", "--seed", "42", "--no-progress")
	require.NoError(t, err)

	out, err := run("retention", "monthly")
	require.NoError(t, err)
	assert.Contains(t, out, "Repurchase %")
	assert.Contains(t, out, "2019-")

	out, err = run("retention", "overall", "--start", "2000-01-01", "--end", "2000-01-31")
	require.NoError(t, err)
	assert.Contains(t, out, "N/A")

	out, err = run("retention", "delay", "--buckets", "baseline,recent", "--product", "mattress")
	require.NoError(t, err)
	assert.Contains(t, out, "Baseline")

	_, err = run("retention", "monthly", "--start", "2021-02-01", "--end", "2021-01-01")
	require.Error(t, err)

	_, err = run("retention", "sequence", "--product", "pillow")
	require.Error(t, err)

	out, err = run("marketing", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Australia/")

	out, err = run("marketing", "rank", "--exponent", "2", "--timezones", "Australia/Perth")
	require.NoError(t, err)
	assert.Contains(t, out, "Most recommended programs")

	_, err = run("marketing", "rank", "--exponent", "0.5")
	require.Error(t, err)
}

func TestCLI_Token(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-test-secret")

	out, err := execute(t, "token", "--subject", "ops")
	require.NoError(t, err)

	claims, err := middleware.ParseToken([]byte("cli-test-secret"), strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
}

func TestCLI_InvalidDate(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "retention", "monthly", "--start", "01/02/2021", "--db-driver", "sqlite",
		"--db-dsn", filepath.Join(t.TempDir(), "unused.db"))
	require.ErrorContains(t, err, "invalid start date")
}

func TestRender_UndefinedPercent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	renderMonthlySummary(&buf, []models.MonthlySummaryRow{{
		YearMonth:              "2021-01",
		OrderCount:             2,
		RepurchaseCount:        1,
		RepurchasePct:          models.NewPercent(50),
		MattressRepurchasePct:  models.NewPercent(50),
		AccessoryRepurchasePct: models.UndefinedPercent,
	}})

	out := buf.String()
	assert.Contains(t, out, "2021-01")
	assert.Contains(t, out, "50.00")
	assert.Contains(t, out, "N/A")
}

func TestRender_DelayHistogram(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	renderDelayHistogram(&buf, []models.DelayDistribution{
		{Bucket: "baseline", Label: "Baseline", Count: 2, Bins: []stats.Bin{{Lower: 0, Upper: 10, Count: 2, Percent: 100}}},
		{Bucket: "recent", Empty: true, Bins: []stats.Bin{}},
	})

	out := buf.String()
	assert.Contains(t, out, "Baseline (2 repurchases)")
	assert.Contains(t, out, "100.00")
	assert.Contains(t, out, "recent (0 repurchases)")
	assert.Contains(t, out, "no repurchases")
}
