package service

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rosellea-backend/internal/apperr"
	"rosellea-backend/internal/domain"
	"rosellea-backend/internal/repository"
)

func seedCatalog(t *testing.T, e *env, n int) {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		p := &domain.Product{
			Title:     fmt.Sprintf("Item %02d", i),
			Price:     float64(10 + i),
			Category:  domain.CategoryDresses,
			Images:    []string{fmt.Sprintf("/img/%d.jpg", i)},
			IsActive:  true,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, e.products.Create(context.Background(), p))
	}
}

func TestCatalogListPaging(t *testing.T) {
	e := newEnv(t)
	seedCatalog(t, e, 25)
	inactive := &domain.Product{Title: "Hidden", Price: 5, Category: "tops", Images: []string{"h.jpg"}}
	require.NoError(t, e.products.Create(context.Background(), inactive))

	page, err := e.catalog.List(context.Background(), ProductQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 25, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)
	require.Len(t, page.Products, DefaultPageSize)
	// newest first by default
	assert.Equal(t, "Item 24", page.Products[0].Title)
	assert.Equal(t, "/img/24.jpg", page.Products[0].Image)

	page, err = e.catalog.List(context.Background(), ProductQuery{Page: 3})
	require.NoError(t, err)
	assert.Len(t, page.Products, 1)
	assert.Equal(t, 1, page.Count)

	page, err = e.catalog.List(context.Background(), ProductQuery{Limit: 1000, Sort: "price"})
	require.NoError(t, err)
	assert.Len(t, page.Products, 25)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, "Item 00", page.Products[0].Title)
}

func TestCatalogListHugePage(t *testing.T) {
	e := newEnv(t)
	seedCatalog(t, e, 3)

	for _, n := range []int{math.MaxInt, math.MaxInt64 / 6, math.MaxInt32} {
		page, err := e.catalog.List(context.Background(), ProductQuery{Page: n})
		require.NoError(t, err)
		assert.Empty(t, page.Products, "page %d", n)
		assert.EqualValues(t, 3, page.Total)
		assert.Equal(t, math.MaxInt32/DefaultPageSize, page.CurrentPage)
	}

	p, l := normalizePage(math.MaxInt64/6, 12)
	assert.Positive(t, int64(p-1)*int64(l))
	assert.LessOrEqual(t, int64(p)*int64(l), int64(math.MaxInt32))
}

func TestCatalogSearchAndCategory(t *testing.T) {
	e := newEnv(t)
	seedCatalog(t, e, 3)
	silk := e.product(t, "Silk Camisole", 45, 2)

	_, err := e.catalog.Search(context.Background(), "  ", 1, 0)
	requireKind(t, apperr.KindInvalidInput, err)

	page, err := e.catalog.Search(context.Background(), "silk", 1, 0)
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, silk.ID, page.Products[0].ID)

	_, err = e.catalog.ByCategory(context.Background(), "", "", 1, 0)
	requireKind(t, apperr.KindInvalidInput, err)

	page, err = e.catalog.ByCategory(context.Background(), "Dresses", "", 1, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, "Dresses", page.Category)
}

func TestCatalogGet(t *testing.T) {
	e := newEnv(t)
	p := e.product(t, "Linen Top", 20, 1)

	got, err := e.catalog.Get(context.Background(), p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "/img/Linen Top.jpg", got.Image)

	_, err = e.catalog.Get(context.Background(), "not-an-id")
	requireKind(t, apperr.KindNotFound, err)
	_, err = e.catalog.Get(context.Background(), primitive.NewObjectID().Hex())
	requireKind(t, apperr.KindNotFound, err)

	hidden := &domain.Product{Title: "Old", Price: 1, Category: "tops", Images: []string{"o.jpg"}}
	require.NoError(t, e.products.Create(context.Background(), hidden))
	_, err = e.catalog.Get(context.Background(), hidden.ID.Hex())
	requireKind(t, apperr.KindNotFound, err)
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, []repository.SortField{{Field: "createdAt", Desc: true}}, parseSort("", false))
	assert.Nil(t, parseSort("", true))
	assert.Equal(t, []repository.SortField{{Field: "price"}, {Field: "rating", Desc: true}}, parseSort("price,-rating,-password", false))
	assert.Equal(t, []repository.SortField{{Field: "createdAt", Desc: true}}, parseSort("bogus", false))
}
