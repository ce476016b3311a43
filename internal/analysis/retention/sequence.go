package retention

import (
	"sort"

	"github.com/jengzang/retention-backend-go/internal/models"
)

// PurchaseSequenceDistribution counts distinct orders per purchase sequence
// number, excluding first orders. Percentages are taken over all distinct
// orders, first orders included, so they sum to at most 100.
func PurchaseSequenceDistribution(orders []models.Order) models.PurchaseSequenceTable {
	all := orderSet{}
	bySeq := make(map[int]orderSet)
	for _, o := range orders {
		all.add(o.OrderID)
		s, ok := bySeq[o.PurchaseSequence]
		if !ok {
			s = orderSet{}
			bySeq[o.PurchaseSequence] = s
		}
		s.add(o.OrderID)
	}

	total := len(all)
	rows := make([]models.PurchaseSequenceRow, 0, len(bySeq))
	for seq, s := range bySeq {
		if seq <= 1 {
			continue
		}
		rows = append(rows, models.PurchaseSequenceRow{
			NthOrder:   seq,
			OrderCount: len(s),
			PctOfAll:   models.PercentOf(len(s), total),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].NthOrder < rows[j].NthOrder
	})

	return models.PurchaseSequenceTable{TotalOrders: total, Rows: rows}
}
