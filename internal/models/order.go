package models

import "time"

// YearMonthLayout is the layout of the derived year_month key
const YearMonthLayout = "2006-01"

// Order represents one customer purchase event from the order ledger
type Order struct {
	OrderID           string     `json:"order_id" db:"order_id"`
	CustomerID        string     `json:"customer_id" db:"customer_id"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at_tz"`
	PreviousCreatedAt *time.Time `json:"previous_created_at,omitempty" db:"previous_created_at_tz"`
	WeekDelay         *float64   `json:"week_delay,omitempty" db:"week_delay"` // set only for repurchases
	IsRepurchase      bool       `json:"is_repurchase" db:"is_repurchase"`
	HasMattress       bool       `json:"has_mattress" db:"has_mattress"`
	HasAccessory      bool       `json:"has_accessory" db:"has_accessory"`
	PurchaseSequence  int        `json:"purchase_sequence" db:"purchase_sequence"` // 1 = first order
}

// YearMonth returns the cohort key (YYYY-MM) of the order creation time
func (o Order) YearMonth() string {
	return o.CreatedAt.Format(YearMonthLayout)
}

// Date returns the calendar date of the order creation time, as midnight UTC
func (o Order) Date() time.Time {
	return DateOf(o.CreatedAt)
}

// DateOf truncates t to its calendar date in its own location, returned as midnight UTC
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Product selects which orders a product-scoped metric includes
type Product string

const (
	ProductAll       Product = "all"
	ProductMattress  Product = "mattress"
	ProductAccessory Product = "accessory"
)

// Valid reports whether p is one of the known product filters
func (p Product) Valid() bool {
	switch p {
	case ProductAll, ProductMattress, ProductAccessory:
		return true
	}
	return false
}
