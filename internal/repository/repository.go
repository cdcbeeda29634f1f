package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"rosellea-backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("duplicate key")
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrConflict is returned when a conditional write finds the document changed.
	ErrConflict = errors.New("conflicting update")
)

// SortField is one key of a product listing sort.
type SortField struct {
	Field string
	Desc  bool
}

// ProductFilter selects and pages products. Zero Limit means no limit.
type ProductFilter struct {
	ActiveOnly  bool
	Category    domain.Category
	NewArrivals bool
	Featured    bool
	Search      string
	Sort        []SortField
	Skip        int64
	Limit       int64
}

type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	List(ctx context.Context, f ProductFilter) ([]domain.Product, error)
	Count(ctx context.Context, f ProductFilter) (int64, error)
	// AdjustStock adds delta to stock. A negative delta only applies while
	// stock stays >= 0, otherwise ErrInsufficientStock.
	AdjustStock(ctx context.Context, id primitive.ObjectID, delta int) error
}

type CartRepository interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error)
	// GetOrCreate returns the user's cart, inserting an empty one atomically.
	GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error)
	SaveItems(ctx context.Context, c *domain.Cart) error
	Clear(ctx context.Context, userID primitive.ObjectID) error
}

type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error)
	FindForUser(ctx context.Context, id, userID primitive.ObjectID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Order, error)
	// SetStatus moves the order from -> to, ErrConflict if it is no longer in from.
	SetStatus(ctx context.Context, id primitive.ObjectID, from, to domain.OrderStatus) (*domain.Order, error)
	SetPaymentStatus(ctx context.Context, id primitive.ObjectID, status domain.PaymentStatus) (*domain.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, upd domain.ProfileUpdate) (*domain.User, error)
}

type ContactRepository interface {
	Create(ctx context.Context, c *domain.Contact) error
}

// TxManager runs fn as one unit of work where the store supports it.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Pinger reports store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
