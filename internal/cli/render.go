package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/jengzang/retention-backend-go/internal/models"
	"github.com/jengzang/retention-backend-go/internal/stats"
)

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetHeader(header)
	return table
}

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func renderMonths(w io.Writer, months []string) {
	table := newTable(w, []string{"Month"})
	for _, m := range months {
		table.Append([]string{m})
	}
	table.Render()
}

func renderMonthlySummary(w io.Writer, rows []models.MonthlySummaryRow) {
	table := newTable(w, []string{
		"Month", "Orders", "Repurchases", "Mattress", "Accessory",
		"Repurchase %", "Mattress %", "Accessory %",
	})
	for _, r := range rows {
		table.Append([]string{
			r.YearMonth,
			itoa(r.OrderCount),
			itoa(r.RepurchaseCount),
			itoa(r.MattressRepurchaseCount),
			itoa(r.AccessoryRepurchaseCount),
			r.RepurchasePct.String(),
			r.MattressRepurchasePct.String(),
			r.AccessoryRepurchasePct.String(),
		})
	}
	table.Render()
}

func renderOverallSummary(w io.Writer, s models.OverallSummary) {
	table := newTable(w, []string{"Total orders", "Repeat %", "Repeat mattress %", "Repeat accessory %"})
	table.Append([]string{
		itoa(s.TotalOrders),
		s.RepeatPct.String(),
		s.RepeatMattressPct.String(),
		s.RepeatAccessoryPct.String(),
	})
	table.Render()
}

func renderDelayHistogram(w io.Writer, dists []models.DelayDistribution) {
	for _, d := range dists {
		label := d.Label
		if label == "" {
			label = d.Bucket
		}
		fmt.Fprintf(w, "%s (%d repurchases)\n", label, d.Count)
		if d.Empty {
			fmt.Fprintln(w, "  no repurchases")
			continue
		}
		renderBins(w, d.Bins)
	}
}

func renderBins(w io.Writer, bins []stats.Bin) {
	table := newTable(w, []string{"From", "To", "Count", "Percent"})
	for _, b := range bins {
		table.Append([]string{ftoa(b.Lower), ftoa(b.Upper), itoa(b.Count), ftoa(b.Percent)})
	}
	table.Render()
}

func renderPurchaseSequence(w io.Writer, t models.PurchaseSequenceTable) {
	table := newTable(w, []string{"Nth order", "Orders", "% of all orders"})
	for _, r := range t.Rows {
		table.Append([]string{itoa(r.NthOrder), itoa(r.OrderCount), r.PctOfAll.String()})
	}
	table.SetFooter([]string{"Total", itoa(t.TotalOrders), ""})
	table.Render()
}

func renderUserStats(w io.Writer, rows []models.TimezoneUserStats) {
	table := newTable(w, []string{"Timezone", "Spots", "Users mean", "Users std"})
	for _, r := range rows {
		table.Append([]string{r.Timezone, itoa(r.Count), ftoa(r.Mean), ftoa(r.Std)})
	}
	table.Render()
}

func renderPrograms(w io.Writer, o models.ProgramOverview) {
	table := newTable(w, []string{"Timezone", "Channel", "Program", "Spots", "Cost", "Impressions", "Users"})
	for _, p := range o.Programs {
		table.Append([]string{
			p.Timezone, p.Channel, p.Program,
			itoa(p.TotalSpots), ftoa(p.TotalCost), ftoa(p.TotalImpression), ftoa(p.TotalUsers),
		})
	}
	table.Render()

	timezones := make([]string, 0, len(o.CountByTimezone))
	for tz := range o.CountByTimezone {
		timezones = append(timezones, tz)
	}
	sort.Strings(timezones)

	counts := newTable(w, []string{"Timezone", "Programs"})
	for _, tz := range timezones {
		counts.Append([]string{tz, itoa(o.CountByTimezone[tz])})
	}
	counts.Render()

	summary := newTable(w, []string{"", "count", "mean", "std", "min", "25%", "50%", "75%", "max"})
	for _, s := range []struct {
		name string
		sum  stats.Summary
	}{
		{"total_impression", o.Description.TotalImpression},
		{"total_users", o.Description.TotalUsers},
	} {
		summary.Append([]string{
			s.name, itoa(s.sum.Count), ftoa(s.sum.Mean), ftoa(s.sum.Std), ftoa(s.sum.Min),
			ftoa(s.sum.P25), ftoa(s.sum.Median), ftoa(s.sum.P75), ftoa(s.sum.Max),
		})
	}
	summary.Render()
}

func renderRanking(w io.Writer, r models.ProgramRanking) {
	fmt.Fprintln(w, "Most cost effective programs")
	table := newTable(w, []string{"Timezone", "Channel", "Program", "CPU", "UPM", "Cost", "Impressions", "Users"})
	for _, s := range r.CostEffective {
		table.Append([]string{
			s.Timezone, s.Channel, s.Program, ftoa(s.CPU), ftoa(s.UPM),
			ftoa(s.TotalCost), ftoa(s.TotalImpression), ftoa(s.TotalUsers),
		})
	}
	table.Render()

	fmt.Fprintln(w, "Most recommended programs")
	table = newTable(w, []string{"Timezone", "Channel", "Program", "CPU", "UPM", "Rating", "Cost", "Impressions", "Users"})
	for _, s := range r.Recommended {
		table.Append([]string{
			s.Timezone, s.Channel, s.Program, ftoa(s.CPU), ftoa(s.UPM),
			strconv.FormatFloat(s.Rating, 'g', 6, 64),
			ftoa(s.TotalCost), ftoa(s.TotalImpression), ftoa(s.TotalUsers),
		})
	}
	table.Render()
}
