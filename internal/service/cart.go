package service

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"rosellea-backend/internal/apperr"
	"rosellea-backend/internal/domain"
	"rosellea-backend/internal/repository"
)

// CartView is a cart with totals computed at read time.
type CartView struct {
	Items []domain.CartItem `json:"items"`
	domain.Totals
}

func NewCartView(c *domain.Cart) *CartView {
	items := []domain.CartItem{}
	if c != nil && c.Items != nil {
		items = c.Items
	}
	return &CartView{Items: items, Totals: domain.CartTotals(c)}
}

type AddItemInput struct {
	ProductID string
	Quantity  int
	Size      string
	Color     string
}

// CartService mutates carts with read-modify-write; concurrent edits of the
// same cart are last-write-wins.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

func (s *CartService) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return c, nil
}

func (s *CartService) AddItem(ctx context.Context, userID primitive.ObjectID, in AddItemInput) (*domain.Cart, error) {
	if strings.TrimSpace(in.ProductID) == "" || in.Quantity < domain.MinLineQuantity {
		return nil, apperr.InvalidInput("productId and quantity are required", "productId", "quantity")
	}
	productID, err := parseID(in.ProductID, "Product not found")
	if err != nil {
		return nil, err
	}
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, storeErr(err, "Product not found")
	}
	if !p.IsActive {
		return nil, apperr.NotFound("Product not found")
	}

	c, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.Add(domain.NewCartItem(p, in.Quantity, strings.TrimSpace(in.Size), strings.TrimSpace(in.Color)))
	if err := s.carts.SaveItems(ctx, c); err != nil {
		return nil, storeErr(err, "Cart not found")
	}
	return c, nil
}

func (s *CartService) UpdateItem(ctx context.Context, userID primitive.ObjectID, rawItemID string, quantity int) (*domain.Cart, error) {
	c, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "Cart not found")
	}
	itemID, err := parseID(rawItemID, "Item not found in cart")
	if err != nil {
		return nil, err
	}
	i := c.Item(itemID)
	if i < 0 {
		return nil, apperr.NotFound("Item not found in cart")
	}
	c.Items[i].Quantity = domain.ClampQuantity(quantity)
	if err := s.carts.SaveItems(ctx, c); err != nil {
		return nil, storeErr(err, "Cart not found")
	}
	return c, nil
}

// RemoveItem drops one line. Removing an absent line is not an error.
func (s *CartService) RemoveItem(ctx context.Context, userID primitive.ObjectID, rawItemID string) (*domain.Cart, error) {
	c, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "Cart not found")
	}
	itemID, err := primitive.ObjectIDFromHex(strings.TrimSpace(rawItemID))
	if err != nil || c.Item(itemID) < 0 {
		return c, nil
	}
	c.Remove(itemID)
	if err := s.carts.SaveItems(ctx, c); err != nil {
		return nil, storeErr(err, "Cart not found")
	}
	return c, nil
}

func (s *CartService) Clear(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	if err := s.carts.Clear(ctx, userID); err != nil {
		return nil, storeErr(err, "Cart not found")
	}
	return &domain.Cart{User: userID, Items: []domain.CartItem{}}, nil
}
