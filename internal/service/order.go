package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rosellea-backend/internal/apperr"
	"rosellea-backend/internal/domain"
	"rosellea-backend/internal/repository"
)

const orderNumberAttempts = 5

type CreateOrderInput struct {
	ShippingAddress *domain.ShippingAddress
	PaymentMethod   string
}

type OrderService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
	tx       repository.TxManager
	log      zerolog.Logger

	now  func() time.Time
	intn func(n int) int
}

func NewOrderService(carts repository.CartRepository, products repository.ProductRepository, orders repository.OrderRepository, tx repository.TxManager, log zerolog.Logger) *OrderService {
	return &OrderService{
		carts:    carts,
		products: products,
		orders:   orders,
		tx:       tx,
		log:      log,
		now:      time.Now,
		intn:     rand.Intn,
	}
}

// CreateOrder turns the user's cart into an order. The order is inserted, stock
// is decremented line by line with a floor of zero, and the cart is cleared. A
// shortage undoes the decrements already applied and deletes the order.
func (s *OrderService) CreateOrder(ctx context.Context, userID primitive.ObjectID, in CreateOrderInput) (*domain.Order, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal(err)
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, apperr.InvalidState("Cart is empty")
	}

	if in.ShippingAddress == nil || strings.TrimSpace(in.PaymentMethod) == "" {
		return nil, apperr.InvalidInput("Shipping address and payment method are required", "shippingAddress", "paymentMethod")
	}
	if missing := missingAddressFields(in.ShippingAddress); len(missing) > 0 {
		return nil, apperr.InvalidInput("Shipping address is incomplete", missing...)
	}
	method := domain.PaymentMethod(strings.ToLower(strings.TrimSpace(in.PaymentMethod)))
	if !method.Valid() {
		return nil, apperr.InvalidInput("Payment method must be card or paypal", "paymentMethod")
	}
	addr := *in.ShippingAddress
	if addr.Country == "" {
		addr.Country = "USA"
	}

	pricing := domain.PriceItems(cart.Items)
	order := &domain.Order{
		User:            userID,
		Items:           domain.SnapshotItems(cart.Items),
		ShippingAddress: addr,
		PaymentMethod:   method,
		Subtotal:        pricing.Subtotal,
		Tax:             pricing.Tax,
		Shipping:        pricing.Shipping,
		Total:           pricing.Total,
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
	}

	for attempt := 1; ; attempt++ {
		order.OrderNumber = domain.NewOrderNumber(s.now(), s.intn)
		err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
			return s.place(ctx, order)
		})
		if !errors.Is(err, repository.ErrDuplicate) {
			break
		}
		s.log.Warn().Str("orderNumber", order.OrderNumber).Int("attempt", attempt).Msg("order number collision")
		if attempt == orderNumberAttempts {
			return nil, apperr.Internal(fmt.Errorf("no unique order number after %d attempts", orderNumberAttempts))
		}
	}
	if err != nil {
		return nil, storeErr(err, "Cart not found")
	}
	return order, nil
}

// place inserts o, reserves its stock and clears the cart as one unit of work.
// A taken order number comes back as repository.ErrDuplicate so the caller
// retries in a fresh transaction; a duplicate key aborts a MongoDB transaction.
func (s *OrderService) place(ctx context.Context, o *domain.Order) error {
	if err := s.orders.Create(ctx, o); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return err
		}
		return apperr.Internal(err)
	}
	if err := s.reserveStock(ctx, o); err != nil {
		return err
	}
	if err := s.carts.Clear(ctx, o.User); err != nil {
		s.log.Error().Err(err).Str("order", o.OrderNumber).Msg("order placed but cart not cleared")
	}
	return nil
}

func (s *OrderService) reserveStock(ctx context.Context, o *domain.Order) error {
	for i, it := range o.Items {
		err := s.products.AdjustStock(ctx, it.Product, -it.Quantity)
		if err == nil {
			continue
		}
		s.rollback(ctx, o, o.Items[:i])
		switch {
		case errors.Is(err, repository.ErrInsufficientStock):
			return apperr.InvalidState("Insufficient stock").Wrap(fmt.Errorf("%s: %w", it.Title, err))
		case errors.Is(err, repository.ErrNotFound):
			return apperr.InvalidState("Product is no longer available").Wrap(err)
		default:
			return apperr.Internal(err)
		}
	}
	return nil
}

// rollback restores stock for the applied lines and removes the order record.
func (s *OrderService) rollback(ctx context.Context, o *domain.Order, applied []domain.OrderItem) {
	for _, it := range applied {
		if err := s.products.AdjustStock(ctx, it.Product, it.Quantity); err != nil {
			s.log.Error().Err(err).Str("order", o.OrderNumber).Str("product", it.Product.Hex()).Int("quantity", it.Quantity).Msg("stock restore failed")
		}
	}
	if err := s.orders.Delete(ctx, o.ID); err != nil {
		s.log.Error().Err(err).Str("order", o.OrderNumber).Msg("failed to delete unfulfillable order")
	}
}

// CancelOrder moves an owned order to the requested status, cancelled by
// default. Only a cancellation gives stock back.
func (s *OrderService) CancelOrder(ctx context.Context, userID primitive.ObjectID, rawOrderID, requested string) (*domain.Order, error) {
	id, err := parseID(rawOrderID, "Order not found")
	if err != nil {
		return nil, err
	}
	target := domain.OrderStatusCancelled
	if r := strings.TrimSpace(requested); r != "" {
		target = domain.OrderStatus(strings.ToLower(r))
	}
	if !target.Valid() {
		return nil, apperr.InvalidInput("Invalid order status", "status")
	}

	var updated *domain.Order
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.FindForUser(ctx, id, userID)
		if err != nil {
			return storeErr(err, "Order not found")
		}
		if !o.Status.CanTransitionTo(target) {
			return transitionErr(o.Status, target)
		}
		updated, err = s.orders.SetStatus(ctx, id, o.Status, target)
		if errors.Is(err, repository.ErrConflict) {
			return apperr.InvalidTransition("Order status changed, please retry").Wrap(err)
		}
		if err != nil {
			return storeErr(err, "Order not found")
		}
		if target == domain.OrderStatusCancelled {
			s.restock(ctx, updated)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "Order not found")
	}
	return updated, nil
}

func (s *OrderService) restock(ctx context.Context, o *domain.Order) {
	for _, it := range o.Items {
		if err := s.products.AdjustStock(ctx, it.Product, it.Quantity); err != nil {
			s.log.Error().Err(err).Str("order", o.OrderNumber).Str("product", it.Product.Hex()).Int("quantity", it.Quantity).Msg("restock after cancel failed")
		}
	}
}

func transitionErr(from, to domain.OrderStatus) error {
	if to == domain.OrderStatusCancelled {
		return apperr.InvalidTransition("Order cannot be cancelled")
	}
	return apperr.InvalidTransition(fmt.Sprintf("Order cannot move from %s to %s", from, to))
}

func (s *OrderService) ListOrders(ctx context.Context, userID primitive.ObjectID) ([]domain.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return orders, nil
}

func (s *OrderService) GetOrder(ctx context.Context, userID primitive.ObjectID, rawOrderID string) (*domain.Order, error) {
	id, err := parseID(rawOrderID, "Order not found")
	if err != nil {
		return nil, err
	}
	o, err := s.orders.FindForUser(ctx, id, userID)
	if err != nil {
		return nil, storeErr(err, "Order not found")
	}
	return o, nil
}

// UpdatePaymentStatus is the back-office hook for payment reconciliation.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, rawOrderID, status string) (*domain.Order, error) {
	id, err := parseID(rawOrderID, "Order not found")
	if err != nil {
		return nil, err
	}
	ps := domain.PaymentStatus(strings.ToLower(strings.TrimSpace(status)))
	if !ps.Valid() {
		return nil, apperr.InvalidInput("Invalid payment status", "paymentStatus")
	}
	o, err := s.orders.SetPaymentStatus(ctx, id, ps)
	if err != nil {
		return nil, storeErr(err, "Order not found")
	}
	return o, nil
}

func missingAddressFields(a *domain.ShippingAddress) []string {
	var missing []string
	for _, f := range []struct {
		name, value string
	}{
		{"shippingAddress.firstName", a.FirstName},
		{"shippingAddress.lastName", a.LastName},
		{"shippingAddress.email", a.Email},
		{"shippingAddress.street", a.Street},
		{"shippingAddress.city", a.City},
		{"shippingAddress.state", a.State},
		{"shippingAddress.zipCode", a.ZipCode},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}
