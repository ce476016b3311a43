package seed

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)

func TestOrders(t *testing.T) {
	t.Parallel()

	orders := Orders(rand.New(rand.NewPCG(1, 2)), 500, start)
	require.Len(t, orders, 500)

	ids := make(map[string]struct{}, len(orders))
	for i, o := range orders {
		ids[o.OrderID] = struct{}{}
		assert.False(t, o.CreatedAt.Before(start))
		assert.True(t, o.HasMattress || o.HasAccessory, "order %s has no product", o.OrderID)

		if o.PurchaseSequence == 1 {
			assert.False(t, o.IsRepurchase)
			assert.Nil(t, o.WeekDelay)
			continue
		}

		require.True(t, o.IsRepurchase)
		require.NotNil(t, o.WeekDelay)
		require.NotNil(t, o.PreviousCreatedAt)
		prev := orders[i-1]
		assert.Equal(t, prev.CustomerID, o.CustomerID)
		assert.Equal(t, prev.PurchaseSequence+1, o.PurchaseSequence)
		assert.Equal(t, prev.CreatedAt, *o.PreviousCreatedAt)
		assert.Greater(t, *o.WeekDelay, -0.0001)
	}
	assert.Len(t, ids, 500)
}

func TestOrders_Deterministic(t *testing.T) {
	t.Parallel()

	a := Orders(rand.New(rand.NewPCG(7, 7)), 50, start)
	b := Orders(rand.New(rand.NewPCG(7, 7)), 50, start)
	assert.Equal(t, a, b)
}

func TestAdSpots(t *testing.T) {
	t.Parallel()

	records := AdSpots(rand.New(rand.NewPCG(3, 4)), 300, start)
	require.Len(t, records, 300)

	for _, r := range records {
		assert.Equal(t, 1, r.Spots)
		assert.Contains(t, timezones, r.Timezone)
		assert.GreaterOrEqual(t, r.Cost, 0.0)
		assert.LessOrEqual(t, r.Users, r.Impression*3)
	}
}
