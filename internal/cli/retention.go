package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jengzang/retention-backend-go/internal/analysis"
	"github.com/jengzang/retention-backend-go/internal/app"
	"github.com/jengzang/retention-backend-go/internal/models"
)

type RetentionCmd struct{}

func NewRetentionCmd() *RetentionCmd {
	return &RetentionCmd{}
}

func (c *RetentionCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retention",
		Short: "Repurchase retention reports over the order ledger",
	}

	cmd.PersistentFlags().String("start", "", "first order date, YYYY-MM-DD (default from dashboard)")
	cmd.PersistentFlags().String("end", "", "last order date, YYYY-MM-DD (default today)")
	cmd.PersistentFlags().Bool("remove-short-term", false, "do not count repurchases within two weeks as repurchases")
	cmd.PersistentFlags().String("product", string(models.ProductAll), "product filter: all, mattress, accessory")

	cmd.AddCommand(
		c.reportCmd("months", "List months with repurchases, newest first", func(cmd *cobra.Command, a *app.App, f models.RetentionFilter) error {
			r, err := a.Retention.Months(cmd.Context(), f)
			if err != nil {
				return err
			}
			renderMonths(cmd.OutOrStdout(), r.Data)
			return nil
		}),
		c.reportCmd("monthly", "Per-month repurchase summary", func(cmd *cobra.Command, a *app.App, f models.RetentionFilter) error {
			r, err := a.Retention.MonthlySummary(cmd.Context(), f)
			if err != nil {
				return err
			}
			renderMonthlySummary(cmd.OutOrStdout(), r.Data)
			return nil
		}),
		c.reportCmd("overall", "Repurchase snapshot over the whole range", func(cmd *cobra.Command, a *app.App, f models.RetentionFilter) error {
			r, err := a.Retention.OverallSummary(cmd.Context(), f)
			if err != nil && !(r != nil && errors.Is(err, analysis.ErrDivisionUndefined)) {
				return err
			}
			renderOverallSummary(cmd.OutOrStdout(), r.Data)
			return nil
		}),
		c.delayCmd(),
		c.reportCmd("sequence", "Share of orders reaching the Nth purchase", func(cmd *cobra.Command, a *app.App, f models.RetentionFilter) error {
			r, err := a.Retention.PurchaseSequence(cmd.Context(), f)
			if err != nil {
				return err
			}
			renderPurchaseSequence(cmd.OutOrStdout(), r.Data)
			return nil
		}),
	)

	return cmd
}

func (c *RetentionCmd) delayCmd() *cobra.Command {
	cmd := c.reportCmd("delay", "Week-delay distributions of repurchases per bucket", func(cmd *cobra.Command, a *app.App, f models.RetentionFilter) error {
		var err error
		if f.Buckets, err = cmd.Flags().GetStringSlice("buckets"); err != nil {
			return fmt.Errorf("failed to get buckets flag: %w", err)
		}
		if f.Month, err = cmd.Flags().GetString("month"); err != nil {
			return fmt.Errorf("failed to get month flag: %w", err)
		}
		if f.BinWidth, err = cmd.Flags().GetFloat64("bin-width"); err != nil {
			return fmt.Errorf("failed to get bin-width flag: %w", err)
		}

		r, err := a.Retention.DelayHistogram(cmd.Context(), f)
		if err != nil {
			return err
		}
		renderDelayHistogram(cmd.OutOrStdout(), r.Data)
		return nil
	})

	cmd.Flags().StringSlice("buckets", nil, "buckets to show: baseline, recent, selected (default from dashboard)")
	cmd.Flags().String("month", "", "month of the selected bucket, YYYY-MM (default newest)")
	cmd.Flags().Float64("bin-width", 0, "histogram bin width in weeks (default from dashboard)")
	return cmd
}

func (c *RetentionCmd) reportCmd(use, short string, run func(*cobra.Command, *app.App, models.RetentionFilter) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := retentionFilter(cmd)
			if err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			return run(cmd, a, f)
		},
	}
}

func retentionFilter(cmd *cobra.Command) (models.RetentionFilter, error) {
	var f models.RetentionFilter

	start, err := cmd.Flags().GetString("start")
	if err != nil {
		return f, fmt.Errorf("failed to get start flag: %w", err)
	}
	if f.Start, err = parseDate(start); err != nil {
		return f, fmt.Errorf("invalid start date: %w", err)
	}

	end, err := cmd.Flags().GetString("end")
	if err != nil {
		return f, fmt.Errorf("failed to get end flag: %w", err)
	}
	if f.End, err = parseDate(end); err != nil {
		return f, fmt.Errorf("invalid end date: %w", err)
	}

	if f.RemoveShortTerm, err = cmd.Flags().GetBool("remove-short-term"); err != nil {
		return f, fmt.Errorf("failed to get remove-short-term flag: %w", err)
	}

	product, err := cmd.Flags().GetString("product")
	if err != nil {
		return f, fmt.Errorf("failed to get product flag: %w", err)
	}
	f.Product = models.Product(product)
	return f, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(models.DateLayout, s)
}
