package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinLineQuantity = 1
	MaxLineQuantity = 99
)

// CartItem is a snapshot of the product taken when it was added.
type CartItem struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Title    string             `bson:"title" json:"title"`
	Price    float64            `bson:"price" json:"price"`
	Image    string             `bson:"image" json:"image"`
	Size     string             `bson:"size,omitempty" json:"size,omitempty"`
	Color    string             `bson:"color,omitempty" json:"color,omitempty"`
	Quantity int                `bson:"quantity" json:"quantity"`
}

type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Items     []CartItem         `bson:"items" json:"items"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Totals is recomputed from the items on every read.
type Totals struct {
	ItemCount   int     `json:"totalItems"`
	TotalAmount float64 `json:"totalAmount"`
}

func ClampQuantity(q int) int {
	if q < MinLineQuantity {
		return MinLineQuantity
	}
	if q > MaxLineQuantity {
		return MaxLineQuantity
	}
	return q
}

// NewCartItem snapshots title, price and lead image of p.
func NewCartItem(p *Product, quantity int, size, color string) CartItem {
	return CartItem{
		ID:       primitive.NewObjectID(),
		Product:  p.ID,
		Title:    p.Title,
		Price:    p.Price,
		Image:    p.FirstImage(),
		Size:     size,
		Color:    color,
		Quantity: ClampQuantity(quantity),
	}
}

// Add merges item into an existing line with the same product, size and color,
// or appends it.
func (c *Cart) Add(item CartItem) {
	for i := range c.Items {
		line := &c.Items[i]
		if line.Product == item.Product && line.Size == item.Size && line.Color == item.Color {
			line.Quantity = ClampQuantity(line.Quantity + item.Quantity)
			return
		}
	}
	c.Items = append(c.Items, item)
}

// Item returns the index of the line with the given id, or -1.
func (c *Cart) Item(id primitive.ObjectID) int {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// Remove drops the line with the given id. Missing ids are ignored.
func (c *Cart) Remove(id primitive.ObjectID) {
	if i := c.Item(id); i >= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
}

func CartTotals(c *Cart) Totals {
	var t Totals
	if c == nil {
		return t
	}
	sum := decimal.Zero
	for _, it := range c.Items {
		t.ItemCount += it.Quantity
		sum = sum.Add(lineAmount(it.Price, it.Quantity))
	}
	t.TotalAmount = sum.InexactFloat64()
	return t
}

func lineAmount(price float64, qty int) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(qty)))
}
