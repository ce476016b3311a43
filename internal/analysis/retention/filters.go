// Package retention derives repurchase metrics from an order ledger.
// Every function returns a new table and leaves its input untouched.
package retention

import (
	"time"

	"github.com/jengzang/retention-backend-go/internal/analysis"
	"github.com/jengzang/retention-backend-go/internal/models"
)

// ShortTermWeeks is the week delay below which a repurchase counts as short-term
const ShortTermWeeks = 2

// ApplyShortTermRepurchaseFilter returns a copy of orders where repurchases made
// less than ShortTermWeeks after the previous order are no longer flagged as
// repurchases. Rows are never dropped.
func ApplyShortTermRepurchaseFilter(orders []models.Order, enabled bool) []models.Order {
	if !enabled {
		return orders
	}

	out := make([]models.Order, len(orders))
	copy(out, orders)
	for i := range out {
		if out[i].WeekDelay != nil && *out[i].WeekDelay < ShortTermWeeks {
			out[i].IsRepurchase = false
		}
	}
	return out
}

// FilterByDateRange keeps orders whose creation date lies in [start, end], both inclusive
func FilterByDateRange(orders []models.Order, start, end time.Time) ([]models.Order, error) {
	from, to := models.DateOf(start), models.DateOf(end)
	if from.After(to) {
		return nil, &analysis.InvalidRangeError{Start: from, End: to}
	}

	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		d := o.Date()
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// FilterByProduct keeps orders containing the given product
func FilterByProduct(orders []models.Order, product models.Product) ([]models.Order, error) {
	if !product.Valid() {
		return nil, analysis.InvalidParameter("product", product)
	}
	if product == models.ProductAll {
		return orders, nil
	}

	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if matchesProduct(o, product) {
			out = append(out, o)
		}
	}
	return out, nil
}

func matchesProduct(o models.Order, product models.Product) bool {
	switch product {
	case models.ProductMattress:
		return o.HasMattress
	case models.ProductAccessory:
		return o.HasAccessory
	default:
		return true
	}
}

// Repurchases keeps orders flagged as repurchases
func Repurchases(orders []models.Order) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if o.IsRepurchase {
			out = append(out, o)
		}
	}
	return out
}
