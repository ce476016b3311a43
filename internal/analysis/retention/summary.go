package retention

import (
	"sort"

	"github.com/jengzang/retention-backend-go/internal/analysis"
	"github.com/jengzang/retention-backend-go/internal/models"
)

// orderSet counts distinct order ids
type orderSet map[string]struct{}

func (s orderSet) add(id string) { s[id] = struct{}{} }

// repurchaseCounts holds the distinct order sets behind one summary row
type repurchaseCounts struct {
	orders    orderSet
	repeat    orderSet
	mattress  orderSet
	accessory orderSet
}

func newRepurchaseCounts() *repurchaseCounts {
	return &repurchaseCounts{
		orders:    orderSet{},
		repeat:    orderSet{},
		mattress:  orderSet{},
		accessory: orderSet{},
	}
}

func (c *repurchaseCounts) add(o models.Order) {
	c.orders.add(o.OrderID)
	if !o.IsRepurchase {
		return
	}
	c.repeat.add(o.OrderID)
	if o.HasMattress {
		c.mattress.add(o.OrderID)
	}
	if o.HasAccessory {
		c.accessory.add(o.OrderID)
	}
}

// MonthlySummary groups orders by creation year-month and reports distinct
// order and repurchase counts with their share of the month's orders.
// Rows are sorted by year-month ascending.
func MonthlySummary(orders []models.Order) []models.MonthlySummaryRow {
	byMonth := make(map[string]*repurchaseCounts)
	for _, o := range orders {
		ym := o.YearMonth()
		c, ok := byMonth[ym]
		if !ok {
			c = newRepurchaseCounts()
			byMonth[ym] = c
		}
		c.add(o)
	}

	rows := make([]models.MonthlySummaryRow, 0, len(byMonth))
	for ym, c := range byMonth {
		total := len(c.orders)
		rows = append(rows, models.MonthlySummaryRow{
			YearMonth:                ym,
			OrderCount:               total,
			RepurchaseCount:          len(c.repeat),
			MattressRepurchaseCount:  len(c.mattress),
			AccessoryRepurchaseCount: len(c.accessory),
			RepurchasePct:            models.PercentOf(len(c.repeat), total),
			MattressRepurchasePct:    models.PercentOf(len(c.mattress), total),
			AccessoryRepurchasePct:   models.PercentOf(len(c.accessory), total),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].YearMonth < rows[j].YearMonth
	})
	return rows
}

// OverallSummary reports the repurchase shares over the whole order set.
// With no orders it returns a summary with undefined percentages together
// with analysis.ErrDivisionUndefined.
func OverallSummary(orders []models.Order) (models.OverallSummary, error) {
	c := newRepurchaseCounts()
	for _, o := range orders {
		c.add(o)
	}

	total := len(c.orders)
	summary := models.OverallSummary{
		TotalOrders:        total,
		RepeatPct:          models.PercentOf(len(c.repeat), total),
		RepeatMattressPct:  models.PercentOf(len(c.mattress), total),
		RepeatAccessoryPct: models.PercentOf(len(c.accessory), total),
	}
	if total == 0 {
		return summary, analysis.ErrDivisionUndefined
	}
	return summary, nil
}

// Months lists the distinct creation year-months, newest first
func Months(orders []models.Order) []string {
	seen := make(map[string]struct{})
	months := make([]string, 0)
	for _, o := range orders {
		ym := o.YearMonth()
		if _, ok := seen[ym]; ok {
			continue
		}
		seen[ym] = struct{}{}
		months = append(months, ym)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months
}
