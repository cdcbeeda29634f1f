package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func line(price float64, qty int) CartItem {
	return CartItem{ID: primitive.NewObjectID(), Product: primitive.NewObjectID(), Price: price, Quantity: qty}
}

func TestCartTotals(t *testing.T) {
	c := &Cart{Items: []CartItem{line(19.99, 3), line(0.1, 2), line(5, 1)}}
	got := CartTotals(c)
	assert.Equal(t, 6, got.ItemCount)
	assert.Equal(t, 65.17, got.TotalAmount)

	c.Items = c.Items[:1]
	got = CartTotals(c)
	assert.Equal(t, 3, got.ItemCount)
	assert.Equal(t, 59.97, got.TotalAmount)

	assert.Equal(t, Totals{}, CartTotals(nil))
	assert.Equal(t, Totals{}, CartTotals(&Cart{}))
}

func TestClampQuantity(t *testing.T) {
	assert.Equal(t, 1, ClampQuantity(0))
	assert.Equal(t, 1, ClampQuantity(-4))
	assert.Equal(t, 42, ClampQuantity(42))
	assert.Equal(t, 99, ClampQuantity(500))
}

func TestCartAddMergesSameVariant(t *testing.T) {
	p := &Product{ID: primitive.NewObjectID(), Title: "Linen Top", Price: 20, Images: []string{"a.jpg", "b.jpg"}}
	c := &Cart{}

	c.Add(NewCartItem(p, 60, "M", "white"))
	c.Add(NewCartItem(p, 60, "M", "white"))
	require.Len(t, c.Items, 1)
	assert.Equal(t, 99, c.Items[0].Quantity)
	assert.Equal(t, "a.jpg", c.Items[0].Image)

	c.Add(NewCartItem(p, 1, "L", "white"))
	c.Add(NewCartItem(p, 1, "M", "black"))
	assert.Len(t, c.Items, 3)
}

func TestCartRemove(t *testing.T) {
	a, b := line(1, 1), line(2, 1)
	c := &Cart{Items: []CartItem{a, b}}
	c.Remove(primitive.NewObjectID())
	assert.Len(t, c.Items, 2)
	c.Remove(a.ID)
	require.Len(t, c.Items, 1)
	assert.Equal(t, b.ID, c.Items[0].ID)
}

func TestPriceItems(t *testing.T) {
	p := PriceItems([]CartItem{line(20, 2), line(90, 1)})
	assert.Equal(t, Pricing{Subtotal: 130, Tax: 10.40, Shipping: 0, Total: 140.40}, p)

	p = PriceItems([]CartItem{line(25, 2)})
	assert.Equal(t, Pricing{Subtotal: 50, Tax: 4, Shipping: 15, Total: 69}, p)

	// exactly 100 still pays shipping
	p = PriceItems([]CartItem{line(100, 1)})
	assert.Equal(t, 15.0, p.Shipping)
	assert.Equal(t, 123.0, p.Total)
}

func TestSnapshotItemsIsACopy(t *testing.T) {
	items := []CartItem{line(10, 1)}
	snap := SnapshotItems(items)
	items[0].Price = 99
	assert.Equal(t, 10.0, snap[0].Price)
}

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPending, OrderStatusShipped, true},
		{OrderStatusPending, OrderStatusDelivered, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusDelivered, false},
		{OrderStatusShipped, OrderStatusProcessing, false},
		{OrderStatusProcessing, OrderStatusCancelled, false},
		{OrderStatusProcessing, OrderStatusPending, false},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusShipped, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusPending, OrderStatusPending, false},
		{OrderStatusPending, OrderStatus("lost"), false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, c.from.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestNewOrderNumber(t *testing.T) {
	now := time.Date(2026, 3, 7, 10, 0, 0, 123_000_000, time.UTC)
	got := NewOrderNumber(now, func(int) int { return 7 })
	want := "ROS20260307" + "0123" + "07"
	assert.Equal(t, want[:11], got[:11])
	assert.Len(t, got, len(want))
	assert.Equal(t, "07", got[len(got)-2:])
}

func TestProductNormalize(t *testing.T) {
	p := &Product{Title: "Silk Wrap Dress", Price: 80, Category: "Dresses", Images: []string{"x.jpg"}, Stock: -3}
	require.NoError(t, p.Normalize())
	assert.Equal(t, CategoryDresses, p.Category)
	assert.Equal(t, 0, p.Stock)
	assert.Equal(t, []string{"dresses", "silk", "wrap", "dress"}, p.Tags)

	assert.ErrorIs(t, (&Product{Title: "x", Price: 1, Category: "tops"}).Normalize(), ErrProductNoImages)
	assert.ErrorIs(t, (&Product{Title: "x", Price: 0, Category: "tops", Images: []string{"a"}}).Normalize(), ErrProductBadPrice)
	assert.ErrorIs(t, (&Product{Title: "x", Price: 1, Category: "shoes", Images: []string{"a"}}).Normalize(), ErrProductCategory)
}

func TestProfileUpdateApply(t *testing.T) {
	u := &User{Profile: Profile{FirstName: "Ann", LastName: "Lee"}}
	phone := "555-0101"
	upd := ProfileUpdate{Phone: &phone}
	assert.False(t, upd.Empty())
	upd.Apply(u)
	assert.Equal(t, "Ann", u.Profile.FirstName)
	assert.Equal(t, "555-0101", u.Profile.Phone)
	assert.True(t, ProfileUpdate{}.Empty())
}
