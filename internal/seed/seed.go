// Package seed generates synthetic order and ad spot ledgers for local
// development and demos.
package seed

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jengzang/retention-backend-go/internal/models"
	"github.com/jengzang/retention-backend-go/internal/stats"
)

const (
	maxOrdersPerCustomer = 5
	orderSpanDays        = 900
	maxRepurchaseDays    = 180
	spotSpanDays         = 365
)

var (
	timezones = []string{"Australia/Adelaide", "Australia/Brisbane", "Australia/Melbourne", "Australia/Perth", "Australia/Sydney"}
	channels  = []string{"Seven", "Nine", "Ten", "SBS", "ABC"}
	programs  = []string{"Morning News", "Property Ladder UK", "Home and Away", "The Chase", "Late Movie", "Sunday Footy", "Gardening Australia", "Border Security"}
)

// Orders generates n orders from start onwards. Customers place one or more
// orders; every order after a customer's first is a repurchase with its week delay.
func Orders(r *rand.Rand, n int, start time.Time) []models.Order {
	orders := make([]models.Order, 0, n)
	customer := 0

	for len(orders) < n {
		customer++
		customerID := fmt.Sprintf("C%06d", customer)
		count := 1 + r.IntN(maxOrdersPerCustomer)
		if r.Float64() < 0.6 {
			count = 1
		}

		created := start.Add(time.Duration(r.IntN(orderSpanDays*24)) * time.Hour)
		var previous *time.Time
		for seq := 1; seq <= count && len(orders) < n; seq++ {
			o := models.Order{
				OrderID:          fmt.Sprintf("O%08d", len(orders)+1),
				CustomerID:       customerID,
				CreatedAt:        created,
				PurchaseSequence: seq,
			}

			// first orders are mostly mattresses, repurchases mostly accessories
			if seq == 1 {
				o.HasMattress = r.Float64() < 0.9
				o.HasAccessory = !o.HasMattress || r.Float64() < 0.3
			} else {
				o.HasMattress = r.Float64() < 0.25
				o.HasAccessory = !o.HasMattress || r.Float64() < 0.5
			}

			if previous != nil {
				prev := *previous
				weeks := stats.Round(created.Sub(prev).Hours()/(24*7), 1)
				o.IsRepurchase = true
				o.PreviousCreatedAt = &prev
				o.WeekDelay = &weeks
			}
			orders = append(orders, o)

			prev := created
			previous = &prev
			created = created.Add(time.Duration(1+r.IntN(maxRepurchaseDays*24)) * time.Hour)
		}
	}

	return orders
}

// AdSpots generates n ad airings from start onwards, including some free
// and zero-impression spots that the ledger cleaning drops
func AdSpots(r *rand.Rand, n int, start time.Time) []models.AdSpotRecord {
	records := make([]models.AdSpotRecord, 0, n)
	for i := 0; i < n; i++ {
		rec := models.AdSpotRecord{
			Timezone: timezones[r.IntN(len(timezones))],
			Channel:  channels[r.IntN(len(channels))],
			Program:  programs[r.IntN(len(programs))],
			AdTime:   start.Add(time.Duration(r.IntN(spotSpanDays*24*60)) * time.Minute),
			Spots:    1,
		}

		if r.Float64() >= 0.1 {
			rec.Cost = float64(50 + r.IntN(950))
		}
		if r.Float64() >= 0.05 {
			rec.Impression = float64(1 + r.IntN(40))
			rec.Users = float64(1 + r.IntN(int(rec.Impression)*3))
		}
		records = append(records, rec)
	}
	return records
}
