package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jengzang/retention-backend-go/internal/app"
	"github.com/jengzang/retention-backend-go/internal/models"
)

type MarketingCmd struct{}

func NewMarketingCmd() *MarketingCmd {
	return &MarketingCmd{}
}

func (c *MarketingCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "marketing",
		Short: "TV program scoring reports over the ad spot ledger",
	}

	cmd.PersistentFlags().Bool("remove-outliers", false, "drop spots more than 5 std above their timezone's mean users")
	cmd.PersistentFlags().Float64("threshold", 0, "minimum program users as mean + threshold * std of its timezone")

	statsCmd := c.reportCmd("stats", "Spot-level user statistics per timezone", func(cmd *cobra.Command, a *app.App, f models.MarketingFilter) error {
		r, err := a.Marketing.UserStats(cmd.Context(), f)
		if err != nil {
			return err
		}
		renderUserStats(cmd.OutOrStdout(), r.Data)
		return nil
	})

	histogramCmd := c.reportCmd("histogram", "Distribution of spot-level users in one timezone", func(cmd *cobra.Command, a *app.App, f models.MarketingFilter) error {
		var err error
		if f.Timezone, err = cmd.Flags().GetString("timezone"); err != nil {
			return fmt.Errorf("failed to get timezone flag: %w", err)
		}
		r, err := a.Marketing.UserHistogram(cmd.Context(), f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Users per spot in %s\n", r.Data.Timezone)
		renderBins(cmd.OutOrStdout(), r.Data.Bins)
		return nil
	})
	histogramCmd.Flags().String("timezone", "", "timezone to bin (default first)")

	programsCmd := c.reportCmd("programs", "Program aggregates passing the user threshold", func(cmd *cobra.Command, a *app.App, f models.MarketingFilter) error {
		r, err := a.Marketing.Programs(cmd.Context(), f)
		if err != nil {
			return err
		}
		renderPrograms(cmd.OutOrStdout(), r.Data)
		return nil
	})

	rankCmd := c.reportCmd("rank", "Rank programs by cost per user and rating", func(cmd *cobra.Command, a *app.App, f models.MarketingFilter) error {
		var err error
		if f.Exponent, err = cmd.Flags().GetFloat64("exponent"); err != nil {
			return fmt.Errorf("failed to get exponent flag: %w", err)
		}
		if f.Timezones, err = cmd.Flags().GetStringSlice("timezones"); err != nil {
			return fmt.Errorf("failed to get timezones flag: %w", err)
		}
		r, err := a.Marketing.Ranking(cmd.Context(), f)
		if err != nil {
			return err
		}
		renderRanking(cmd.OutOrStdout(), r.Data)
		return nil
	})
	rankCmd.Flags().Float64("exponent", 1, "cost penalty n in cpu^n, at least 1")
	rankCmd.Flags().StringSlice("timezones", nil, "timezones to rank (default all)")

	cmd.AddCommand(statsCmd, histogramCmd, programsCmd, rankCmd)
	return cmd
}

func (c *MarketingCmd) reportCmd(use, short string, run func(*cobra.Command, *app.App, models.MarketingFilter) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			var f models.MarketingFilter
			var err error
			if f.RemoveOutliers, err = cmd.Flags().GetBool("remove-outliers"); err != nil {
				return fmt.Errorf("failed to get remove-outliers flag: %w", err)
			}
			if f.Threshold, err = cmd.Flags().GetFloat64("threshold"); err != nil {
				return fmt.Errorf("failed to get threshold flag: %w", err)
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
