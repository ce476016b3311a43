package cli

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/jengzang/retention-backend-go/internal/models"
	"github.com/jengzang/retention-backend-go/internal/seed"
)

type SeedCmd struct{}

func NewSeedCmd() *SeedCmd {
	return &SeedCmd{}
}

func (c *SeedCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert synthetic orders and ad spots",
		RunE: func(cmd *cobra.Command, args []string) error {
			orderCount, err := cmd.Flags().GetInt("orders")
			if err != nil {
				return fmt.Errorf("failed to get orders flag: %w", err)
			}
			spotCount, err := cmd.Flags().GetInt("spots")
			if err != nil {
				return fmt.Errorf("failed to get spots flag: %w", err)
			}
			randSeed, err := cmd.Flags().GetUint64("seed")
			if err != nil {
				return fmt.Errorf("failed to get seed flag: %w", err)
			}
			noProgress, err := cmd.Flags().GetBool("no-progress")
			if err != nil {
				return fmt.Errorf("failed to get no-progress flag: %w", err)
			}
			if orderCount < 0 || spotCount < 0 {
				return fmt.Errorf("row counts must not be negative")
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			r := rand.New(rand.NewPCG(randSeed, randSeed))
			ctx := cmd.Context()

			orders := seed.Orders(r, orderCount, a.Dashboard.DefaultStart)
			if err := a.Orders.InsertOrders(ctx, orders, progress(cmd, len(orders), "orders", noProgress)); err != nil {
				return fmt.Errorf("failed to seed orders: %w", err)
			}

			spotStart := a.Dashboard.AdTimeFloor.AddDate(0, -6, 0)
			spots := seed.AdSpots(r, spotCount, spotStart)
			if err := a.AdSpots.InsertAdSpotRecords(ctx, spots, progress(cmd, len(spots), "ad spots", noProgress)); err != nil {
				return fmt.Errorf("failed to seed ad spots: %w", err)
			}

			a.Logger.Info("seed complete", "orders", len(orders), "ad_spots", len(spots),
				"order_table", a.Config.OrderTable, "ad_spot_table", a.Config.AdSpotTable,
				"from", a.Dashboard.DefaultStart.Format(models.DateLayout))
			return nil
		},
	}

	cmd.Flags().Int("orders", 10000, "number of orders to generate")
	cmd.Flags().Int("spots", 5000, "number of ad spots to generate")
	cmd.Flags().Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
	cmd.Flags().Bool("no-progress", false, "disable the progress bar")

	return cmd
}

func progress(cmd *cobra.Command, total int, description string, disabled bool) func(int) {
	if disabled || total == 0 {
		return nil
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	return func(n int) {
		_ = bar.Add(n)
	}
}
