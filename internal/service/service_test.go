package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"rosellea-backend/internal/apperr"
	"rosellea-backend/internal/auth"
	"rosellea-backend/internal/domain"
	"rosellea-backend/internal/repository"
)

func init() { auth.Cost = bcrypt.MinCost }

type env struct {
	store    *repository.MemoryStore
	products *repository.MemoryProducts
	carts    *repository.MemoryCarts
	orders   *repository.MemoryOrders
	users    *repository.MemoryUsers

	catalog *CatalogService
	cart    *CartService
	order   *OrderService
	user    *UserService
	contact *ContactService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := repository.NewMemoryStore()
	e := &env{
		store:    store,
		products: repository.NewMemoryProducts(store),
		carts:    repository.NewMemoryCarts(store),
		orders:   repository.NewMemoryOrders(store),
		users:    repository.NewMemoryUsers(store),
	}
	e.catalog = NewCatalogService(e.products)
	e.cart = NewCartService(e.carts, e.products)
	e.order = NewOrderService(e.carts, e.products, e.orders, repository.NewMemoryTx(store), zerolog.Nop())
	e.user = NewUserService(e.users, auth.NewTokenMaker("test-secret", time.Hour))
	e.contact = NewContactService(repository.NewMemoryContacts(store))
	return e
}

func (e *env) product(t *testing.T, title string, price float64, stock int) *domain.Product {
	t.Helper()
	p := &domain.Product{
		Title:    title,
		Price:    price,
		Category: domain.CategoryTops,
		Images:   []string{"/img/" + title + ".jpg", "/img/alt.jpg"},
		Stock:    stock,
		IsActive: true,
	}
	require.NoError(t, e.products.Create(context.Background(), p))
	return p
}

func (e *env) stock(t *testing.T, p *domain.Product) int {
	t.Helper()
	got, err := e.products.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	return got.Stock
}

func requireKind(t *testing.T, want apperr.Kind, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, apperr.KindOf(err), "error: %v", err)
}
